package x86features

import "fmt"

// FeatureError represents an error when a required processor feature is unusable.
type FeatureError struct {
	Feature string
	Reason  string
	Err     error
}

func (e *FeatureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feature %s: %s: %v", e.Feature, e.Reason, e.Err)
	}
	return fmt.Sprintf("feature %s: %s", e.Feature, e.Reason)
}

func (e *FeatureError) Unwrap() error {
	return e.Err
}

// FeatureSet holds the result of one detection pass.
//
// The zero value has every flag false and is a valid (never detected) set.
// Hardware flags describe what the processor implements; the OS flags
// describe which extended register state the operating system saves and
// restores. Use [FeatureSet.Usable], [FeatureSet.SafeAVX] or
// [FeatureSet.SafeAVX512] before acting on the vector extensions.
type FeatureSet struct {
	// OS context
	OSx64    bool `json:"os_x64"`
	OSAVX    bool `json:"os_avx"`
	OSAVX512 bool `json:"os_avx512"`

	// Vendor
	VendorAMD   bool `json:"vendor_amd"`
	VendorIntel bool `json:"vendor_intel"`

	// General hardware features
	MMX         bool `json:"mmx"`
	X64         bool `json:"x64"`
	ABM         bool `json:"abm"` // LZCNT and POPCNT
	RDRAND      bool `json:"rdrand"`
	BMI1        bool `json:"bmi1"`
	BMI2        bool `json:"bmi2"`
	ADX         bool `json:"adx"`
	MPX         bool `json:"mpx"`
	PREFETCHWT1 bool `json:"prefetchwt1"`

	// 128-bit SIMD
	SSE   bool `json:"sse"`
	SSE2  bool `json:"sse2"`
	SSE3  bool `json:"sse3"`
	SSSE3 bool `json:"ssse3"`
	SSE4a bool `json:"sse4a"`
	SSE41 bool `json:"sse41"`
	SSE42 bool `json:"sse42"`
	AES   bool `json:"aes"`
	SHA   bool `json:"sha"`

	// 256-bit SIMD
	AVX  bool `json:"avx"`
	XOP  bool `json:"xop"`
	FMA3 bool `json:"fma3"`
	FMA4 bool `json:"fma4"`
	AVX2 bool `json:"avx2"`

	// 512-bit SIMD
	AVX512F    bool `json:"avx512f"`
	AVX512CD   bool `json:"avx512cd"`
	AVX512PF   bool `json:"avx512pf"`
	AVX512ER   bool `json:"avx512er"`
	AVX512VL   bool `json:"avx512vl"`
	AVX512BW   bool `json:"avx512bw"`
	AVX512DQ   bool `json:"avx512dq"`
	AVX512IFMA bool `json:"avx512ifma"`
	AVX512VBMI bool `json:"avx512vbmi"`

	// Highest standard and extended CPUID leaves reported by the processor.
	MaxLeaf         uint32 `json:"max_leaf"`
	MaxExtendedLeaf uint32 `json:"max_extended_leaf"`
}

// Feature names a single flag of a [FeatureSet].
type Feature int

const (
	// FeatureVendorAMD is set when the vendor string is "AuthenticAMD".
	FeatureVendorAMD Feature = iota
	// FeatureVendorIntel is set when the vendor string is "GenuineIntel".
	FeatureVendorIntel
	// FeatureOSx64 reports a 64-bit operating system.
	FeatureOSx64
	// FeatureOSAVX reports that the OS saves SSE and AVX state (XCR0 bits 1-2).
	FeatureOSAVX
	// FeatureOSAVX512 reports that the OS also saves opmask and ZMM state (XCR0 bits 5-7).
	FeatureOSAVX512

	// General hardware features, decoded from CPUID leaves 1, 7 and 0x80000001.
	// FeatureABM covers LZCNT and POPCNT.
	FeatureMMX
	FeatureX64
	FeatureABM
	FeatureRDRAND
	FeatureBMI1
	FeatureBMI2
	FeatureADX
	FeatureMPX
	FeaturePREFETCHWT1

	// 128-bit SIMD extensions. FeatureAES is AES-NI.
	FeatureSSE
	FeatureSSE2
	FeatureSSE3
	FeatureSSSE3
	FeatureSSE4a
	FeatureSSE41
	FeatureSSE42
	FeatureAES
	FeatureSHA

	// 256-bit SIMD extensions. Using them also requires [FeatureOSAVX].
	FeatureAVX
	FeatureXOP
	FeatureFMA3
	FeatureFMA4
	FeatureAVX2

	// 512-bit SIMD extensions. Using them also requires [FeatureOSAVX512].
	FeatureAVX512F
	FeatureAVX512CD
	FeatureAVX512PF
	FeatureAVX512ER
	FeatureAVX512VL
	FeatureAVX512BW
	FeatureAVX512DQ
	FeatureAVX512IFMA
	FeatureAVX512VBMI

	featureCount
)

var featureNames = [featureCount]string{
	FeatureVendorAMD:   "amd",
	FeatureVendorIntel: "intel",
	FeatureOSx64:       "os-x64",
	FeatureOSAVX:       "os-avx",
	FeatureOSAVX512:    "os-avx512",
	FeatureMMX:         "mmx",
	FeatureX64:         "x64",
	FeatureABM:         "abm",
	FeatureRDRAND:      "rdrand",
	FeatureBMI1:        "bmi1",
	FeatureBMI2:        "bmi2",
	FeatureADX:         "adx",
	FeatureMPX:         "mpx",
	FeaturePREFETCHWT1: "prefetchwt1",
	FeatureSSE:         "sse",
	FeatureSSE2:        "sse2",
	FeatureSSE3:        "sse3",
	FeatureSSSE3:       "ssse3",
	FeatureSSE4a:       "sse4a",
	FeatureSSE41:       "sse4.1",
	FeatureSSE42:       "sse4.2",
	FeatureAES:         "aes-ni",
	FeatureSHA:         "sha",
	FeatureAVX:         "avx",
	FeatureXOP:         "xop",
	FeatureFMA3:        "fma3",
	FeatureFMA4:        "fma4",
	FeatureAVX2:        "avx2",
	FeatureAVX512F:     "avx512-f",
	FeatureAVX512CD:    "avx512-cd",
	FeatureAVX512PF:    "avx512-pf",
	FeatureAVX512ER:    "avx512-er",
	FeatureAVX512VL:    "avx512-vl",
	FeatureAVX512BW:    "avx512-bw",
	FeatureAVX512DQ:    "avx512-dq",
	FeatureAVX512IFMA:  "avx512-ifma",
	FeatureAVX512VBMI:  "avx512-vbmi",
}

func (f Feature) String() string {
	if f.valid() {
		return featureNames[f]
	}
	return fmt.Sprintf("Feature(%d)", int(f))
}

func (f Feature) valid() bool {
	return f >= 0 && f < featureCount
}

// FeatureValues returns every known [Feature] in report order.
func FeatureValues() []Feature {
	values := make([]Feature, 0, featureCount)
	for f := Feature(0); f < featureCount; f++ {
		values = append(values, f)
	}
	return values
}

// FeatureNames returns the canonical identifier of every known [Feature] in report order.
func FeatureNames() []string {
	names := make([]string, featureCount)
	copy(names, featureNames[:])
	return names
}

// Has returns the raw flag for f. Unknown features report false.
func (fs FeatureSet) Has(f Feature) bool {
	p := featureFlag(&fs, f)
	return p != nil && *p
}

// Vendor returns "Intel", "AMD" or "unknown".
func (fs FeatureSet) Vendor() string {
	switch {
	case fs.VendorIntel:
		return "Intel"
	case fs.VendorAMD:
		return "AMD"
	default:
		return "unknown"
	}
}

// featureFlag maps a Feature to its field in fs, or nil if f is unknown.
func featureFlag(fs *FeatureSet, f Feature) *bool {
	switch f {
	case FeatureVendorAMD:
		return &fs.VendorAMD
	case FeatureVendorIntel:
		return &fs.VendorIntel
	case FeatureOSx64:
		return &fs.OSx64
	case FeatureOSAVX:
		return &fs.OSAVX
	case FeatureOSAVX512:
		return &fs.OSAVX512
	case FeatureMMX:
		return &fs.MMX
	case FeatureX64:
		return &fs.X64
	case FeatureABM:
		return &fs.ABM
	case FeatureRDRAND:
		return &fs.RDRAND
	case FeatureBMI1:
		return &fs.BMI1
	case FeatureBMI2:
		return &fs.BMI2
	case FeatureADX:
		return &fs.ADX
	case FeatureMPX:
		return &fs.MPX
	case FeaturePREFETCHWT1:
		return &fs.PREFETCHWT1
	case FeatureSSE:
		return &fs.SSE
	case FeatureSSE2:
		return &fs.SSE2
	case FeatureSSE3:
		return &fs.SSE3
	case FeatureSSSE3:
		return &fs.SSSE3
	case FeatureSSE4a:
		return &fs.SSE4a
	case FeatureSSE41:
		return &fs.SSE41
	case FeatureSSE42:
		return &fs.SSE42
	case FeatureAES:
		return &fs.AES
	case FeatureSHA:
		return &fs.SHA
	case FeatureAVX:
		return &fs.AVX
	case FeatureXOP:
		return &fs.XOP
	case FeatureFMA3:
		return &fs.FMA3
	case FeatureFMA4:
		return &fs.FMA4
	case FeatureAVX2:
		return &fs.AVX2
	case FeatureAVX512F:
		return &fs.AVX512F
	case FeatureAVX512CD:
		return &fs.AVX512CD
	case FeatureAVX512PF:
		return &fs.AVX512PF
	case FeatureAVX512ER:
		return &fs.AVX512ER
	case FeatureAVX512VL:
		return &fs.AVX512VL
	case FeatureAVX512BW:
		return &fs.AVX512BW
	case FeatureAVX512DQ:
		return &fs.AVX512DQ
	case FeatureAVX512IFMA:
		return &fs.AVX512IFMA
	case FeatureAVX512VBMI:
		return &fs.AVX512VBMI
	default:
		return nil
	}
}
