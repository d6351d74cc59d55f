//go:build 386 && windows

package x86features

import "golang.org/x/sys/windows"

// osIs64Bit reports whether the process runs under WOW64 on 64-bit Windows.
func osIs64Bit() bool {
	var wow64 bool
	if err := windows.IsWow64Process(windows.CurrentProcess(), &wow64); err != nil {
		return false
	}
	return wow64
}
