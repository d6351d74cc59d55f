package x86features

// A 64-bit binary only runs on a 64-bit operating system.
func osIs64Bit() bool {
	return true
}
