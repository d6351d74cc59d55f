package x86features

import "fmt"

// vectorState is the extended register state a feature needs from the OS.
type vectorState int

const (
	stateNone vectorState = iota
	stateAVX
	stateAVX512
)

func requiredState(f Feature) vectorState {
	switch f {
	case FeatureAVX, FeatureAVX2, FeatureFMA3, FeatureFMA4, FeatureXOP:
		return stateAVX
	case FeatureAVX512F, FeatureAVX512CD, FeatureAVX512PF, FeatureAVX512ER,
		FeatureAVX512VL, FeatureAVX512BW, FeatureAVX512DQ, FeatureAVX512IFMA,
		FeatureAVX512VBMI:
		return stateAVX512
	default:
		return stateNone
	}
}

// Usable reports whether f is implemented and, for vector extensions,
// whether the OS saves the register state they use.
// Usable(FeatureAVX) equals [FeatureSet.SafeAVX].
func (fs FeatureSet) Usable(f Feature) bool {
	if !fs.Has(f) {
		return false
	}
	switch requiredState(f) {
	case stateAVX:
		return fs.OSAVX
	case stateAVX512:
		return fs.OSAVX512
	default:
		return true
	}
}

// Check validates the requirements against the host and returns a *[FeatureError]
// for the first unusable feature, or nil if all are usable.
func Check(required ...Requirement) error {
	return Host().Check(required...)
}

// Check validates the requirements against fs and returns a *[FeatureError]
// for the first unusable feature, or nil if all are usable.
func (fs FeatureSet) Check(required ...Requirement) error {
	for _, f := range normalizeRequirements(required) {
		if !f.valid() {
			return &FeatureError{Feature: f.String(), Reason: "unknown feature"}
		}
		if !fs.Usable(f) {
			return &FeatureError{Feature: f.String(), Reason: fs.Diagnose(f)}
		}
	}
	return nil
}

// Diagnose returns a reason string explaining why f is not usable.
func (fs FeatureSet) Diagnose(f Feature) string {
	if !f.valid() {
		return "unknown feature"
	}
	if fs.Usable(f) {
		return "usable"
	}

	switch f {
	case FeatureVendorAMD, FeatureVendorIntel:
		return fmt.Sprintf("processor vendor is %s", fs.Vendor())
	case FeatureOSx64:
		return "operating system is not 64-bit"
	case FeatureOSAVX:
		return "OS does not save AVX register state (XSAVE disabled or XCR0 bits 1-2 clear)"
	case FeatureOSAVX512:
		if !fs.OSAVX {
			return "OS does not save AVX register state, so AVX-512 state is unavailable too"
		}
		return "OS does not save AVX-512 register state (XCR0 bits 5-7 clear)"
	}

	if fs.Has(f) {
		// Implemented by the processor, blocked by the OS.
		if requiredState(f) == stateAVX512 {
			return fmt.Sprintf("processor implements %s but the OS has not enabled AVX-512 register state", f)
		}
		return fmt.Sprintf("processor implements %s but the OS has not enabled AVX register state", f)
	}

	if b, ok := BitFor(f); ok && !fs.leafReported(b.Leaf) {
		return fmt.Sprintf("processor does not report CPUID leaf 0x%X", b.Leaf)
	}
	return "not implemented by this processor"
}

// leafReported tells whether the leaf maxima seen during detection cover leaf.
func (fs FeatureSet) leafReported(leaf uint32) bool {
	if leaf >= leafExtended {
		return fs.MaxExtendedLeaf >= leaf
	}
	return fs.MaxLeaf >= leaf
}
