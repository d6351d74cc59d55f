//go:build 386 || amd64

package x86features

// cpuid and xgetbv are implemented in cpuid_amd64.s and cpuid_386.s.
func cpuid(eaxArg, ecxArg uint32) (eax, ebx, ecx, edx uint32)

func xgetbv(index uint32) (eax, edx uint32)

// hostQuerier executes CPUID and XGETBV on the current processor.
type hostQuerier struct{}

func (hostQuerier) CPUID(leaf uint32) (eax, ebx, ecx, edx uint32) {
	return cpuid(leaf, 0)
}

func (hostQuerier) XGETBV(index uint32) uint64 {
	eax, edx := xgetbv(index)
	return uint64(edx)<<32 | uint64(eax)
}
