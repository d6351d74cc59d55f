//go:build 386 && !(linux || freebsd || netbsd || openbsd || windows)

package x86features

func osIs64Bit() bool {
	return false
}
