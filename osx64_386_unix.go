//go:build 386 && (linux || freebsd || netbsd || openbsd)

package x86features

import "golang.org/x/sys/unix"

// osIs64Bit reports whether a 32-bit binary runs on a 64-bit kernel.
func osIs64Bit() bool {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return false
	}
	switch unix.ByteSliceToString(uname.Machine[:]) {
	case "x86_64", "amd64":
		return true
	default:
		return false
	}
}
