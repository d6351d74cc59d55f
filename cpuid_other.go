//go:build !386 && !amd64

package x86features

// CPUID exists only on 386 and amd64. Building for any other GOARCH must
// fail here rather than yield an all-false FeatureSet at run time.
var _ = x86features_requires_GOARCH_386_or_amd64
