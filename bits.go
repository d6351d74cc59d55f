package x86features

import (
	"fmt"
	"slices"
)

// CPUID leaves queried during detection.
const (
	leafVendor      uint32 = 0x00000000
	leafFeatures    uint32 = 0x00000001
	leafExtFeatures uint32 = 0x00000007
	leafExtended    uint32 = 0x80000000
	leafExtInfo     uint32 = 0x80000001
)

// Register identifies one of the four CPUID output registers.
type Register int

// Indexes into the register values returned by CPUID, in EAX..EDX order.
const (
	EAX Register = iota // leaf maximum on leaves 0 and 0x80000000
	EBX                 // leaf 7 AVX2, BMI and AVX-512 bits
	ECX                 // most leaf 1 and 0x80000001 bits
	EDX                 // legacy leaf 1 bits and long mode
)

func (r Register) String() string {
	switch r {
	case EAX:
		return "EAX"
	case EBX:
		return "EBX"
	case ECX:
		return "ECX"
	case EDX:
		return "EDX"
	default:
		return fmt.Sprintf("Register(%d)", int(r))
	}
}

// Bit locates a hardware feature flag in the CPUID output.
type Bit struct {
	Feature  Feature
	Leaf     uint32
	Register Register
	Index    uint
}

// cpuidBits follows the Intel SDM Vol. 2A (CPUID) and AMD APM Vol. 3 (Appendix E).
var cpuidBits = []Bit{
	{FeatureMMX, leafFeatures, EDX, 23},
	{FeatureSSE, leafFeatures, EDX, 25},
	{FeatureSSE2, leafFeatures, EDX, 26},
	{FeatureSSE3, leafFeatures, ECX, 0},
	{FeatureSSSE3, leafFeatures, ECX, 9},
	{FeatureFMA3, leafFeatures, ECX, 12},
	{FeatureSSE41, leafFeatures, ECX, 19},
	{FeatureSSE42, leafFeatures, ECX, 20},
	{FeatureAES, leafFeatures, ECX, 25},
	{FeatureAVX, leafFeatures, ECX, 28},
	{FeatureRDRAND, leafFeatures, ECX, 30},

	{FeatureBMI1, leafExtFeatures, EBX, 3},
	{FeatureAVX2, leafExtFeatures, EBX, 5},
	{FeatureBMI2, leafExtFeatures, EBX, 8},
	{FeatureMPX, leafExtFeatures, EBX, 14},
	{FeatureAVX512F, leafExtFeatures, EBX, 16},
	{FeatureAVX512DQ, leafExtFeatures, EBX, 17},
	{FeatureADX, leafExtFeatures, EBX, 19},
	{FeatureAVX512IFMA, leafExtFeatures, EBX, 21},
	{FeatureAVX512PF, leafExtFeatures, EBX, 26},
	{FeatureAVX512ER, leafExtFeatures, EBX, 27},
	{FeatureAVX512CD, leafExtFeatures, EBX, 28},
	{FeatureSHA, leafExtFeatures, EBX, 29},
	{FeatureAVX512BW, leafExtFeatures, EBX, 30},
	{FeatureAVX512VL, leafExtFeatures, EBX, 31},
	{FeaturePREFETCHWT1, leafExtFeatures, ECX, 0},
	{FeatureAVX512VBMI, leafExtFeatures, ECX, 1},

	{FeatureX64, leafExtInfo, EDX, 29},
	{FeatureABM, leafExtInfo, ECX, 5},
	{FeatureSSE4a, leafExtInfo, ECX, 6},
	{FeatureXOP, leafExtInfo, ECX, 11},
	{FeatureFMA4, leafExtInfo, ECX, 16},
}

// Bits returns the CPUID bit layout used to decode hardware features.
func Bits() []Bit {
	return slices.Clone(cpuidBits)
}

// BitFor returns the CPUID location of f. OS and vendor features have none.
func BitFor(f Feature) (Bit, bool) {
	for _, b := range cpuidBits {
		if b.Feature == f {
			return b, true
		}
	}
	return Bit{}, false
}

// registers holds EAX, EBX, ECX and EDX indexed by [Register].
type registers [4]uint32

func (r registers) isSet(reg Register, index uint) bool {
	return r[reg]&(1<<index) != 0
}

// decodeLeaf sets every flag of fs whose bit lives in leaf.
func decodeLeaf(fs *FeatureSet, leaf uint32, regs registers) {
	for _, b := range cpuidBits {
		if b.Leaf != leaf {
			continue
		}
		*featureFlag(fs, b.Feature) = regs.isSet(b.Register, b.Index)
	}
}
