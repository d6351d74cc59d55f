package x86features

import (
	"os"
	"sync"
)

// Cache for Host() results. Processor features don't change at runtime,
// so we cache after the first detection.
var (
	cachedFeatures *FeatureSet
	cacheMu        sync.Mutex
)

// Querier is the raw processor interface detection reads from.
type Querier interface {
	// CPUID executes CPUID for leaf with sub-leaf 0.
	CPUID(leaf uint32) (eax, ebx, ecx, edx uint32)
	// XGETBV reads the extended control register at index.
	// Callers must check CPUID.1:ECX.OSXSAVE first.
	XGETBV(index uint32) uint64
}

// Vendor strings assembled from CPUID leaf 0 (EBX, EDX, ECX).
const (
	vendorIntel = "GenuineIntel"
	vendorAMD   = "AuthenticAMD"
)

// CPUID.1:ECX bits gating the XGETBV read.
const (
	bitOSXSAVE uint = 27
	bitAVX     uint = 28
)

// XCR0 state components. 0x6 covers SSE and AVX (YMM upper halves);
// 0xE6 adds opmask, ZMM0-15 upper halves and ZMM16-31.
const (
	xcrFeatureEnabledMask uint32 = 0
	xcr0AVXState          uint64 = 0x6
	xcr0AVX512State       uint64 = 0xe6
)

// detectConfig holds the sources for a detection pass.
type detectConfig struct {
	querier Querier
	osx64   func() bool
}

// DetectOption configures where detection reads processor and OS state from.
type DetectOption func(*detectConfig)

// WithQuerier reads CPUID and XGETBV from q instead of the host processor.
// This is primarily for testing and for replaying captured register dumps.
func WithQuerier(q Querier) DetectOption {
	return func(c *detectConfig) {
		c.querier = q
	}
}

// WithOSx64 replaces the platform check for a 64-bit operating system.
func WithOSx64(fn func() bool) DetectOption {
	return func(c *detectConfig) {
		c.osx64 = fn
	}
}

// Detect populates fs from the host processor, overwriting every field.
func (fs *FeatureSet) Detect() {
	fs.DetectWith()
}

// DetectWith populates fs from the configured sources, overwriting every field.
// Without options it reads the host processor like [FeatureSet.Detect].
func (fs *FeatureSet) DetectWith(opts ...DetectOption) {
	cfg := &detectConfig{
		querier: hostQuerier{},
		osx64:   osIs64Bit,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	*fs = detect(cfg)
}

// detect builds a complete FeatureSet so a partial result never reaches the caller.
// Each leaf is queried at most once and XCR0 is read at most once.
func detect(cfg *detectConfig) FeatureSet {
	q := cfg.querier
	var fs FeatureSet

	fs.OSx64 = cfg.osx64()

	leaf0 := query(q, leafVendor)
	fs.MaxLeaf = leaf0[EAX]
	switch vendorString(leaf0) {
	case vendorIntel:
		fs.VendorIntel = true
	case vendorAMD:
		fs.VendorAMD = true
	}

	fs.MaxExtendedLeaf = query(q, leafExtended)[EAX]

	if fs.MaxLeaf >= leafFeatures {
		leaf1 := query(q, leafFeatures)
		decodeLeaf(&fs, leafFeatures, leaf1)
		fs.OSAVX, fs.OSAVX512 = osVectorState(q, leaf1)
	}
	if fs.MaxLeaf >= leafExtFeatures {
		decodeLeaf(&fs, leafExtFeatures, query(q, leafExtFeatures))
	}
	if fs.MaxExtendedLeaf >= leafExtInfo {
		decodeLeaf(&fs, leafExtInfo, query(q, leafExtInfo))
	}

	return fs
}

func query(q Querier, leaf uint32) registers {
	a, b, c, d := q.CPUID(leaf)
	return registers{a, b, c, d}
}

// vendorString concatenates EBX, EDX and ECX of leaf 0 as little-endian bytes.
func vendorString(leaf0 registers) string {
	var name [12]byte
	for i, reg := range [...]Register{EBX, EDX, ECX} {
		v := leaf0[reg]
		name[i*4+0] = byte(v)
		name[i*4+1] = byte(v >> 8)
		name[i*4+2] = byte(v >> 16)
		name[i*4+3] = byte(v >> 24)
	}
	return string(name[:])
}

// osVectorState reports whether the OS saves AVX and AVX-512 register state.
// XGETBV is only executed when CPUID.1:ECX reports both OSXSAVE and AVX.
func osVectorState(q Querier, leaf1 registers) (avx, avx512 bool) {
	if !leaf1.isSet(ECX, bitOSXSAVE) || !leaf1.isSet(ECX, bitAVX) {
		return false, false
	}
	xcr0 := q.XGETBV(xcrFeatureEnabledMask)
	avx = xcr0&xcr0AVXState == xcr0AVXState
	avx512 = avx && xcr0&xcr0AVX512State == xcr0AVX512State
	return avx, avx512
}

// SafeAVX reports whether AVX is implemented and its state is enabled by the OS.
func (fs FeatureSet) SafeAVX() bool {
	return fs.AVX && fs.OSAVX
}

// SafeAVX512 reports whether AVX-512F is implemented and its state is enabled by the OS.
func (fs FeatureSet) SafeAVX512() bool {
	return fs.AVX512F && fs.OSAVX512
}

// Host detects the features of the current machine and caches the result.
// Subsequent calls return the cached result without re-querying.
// Use [HostNoCache] if you need a fresh snapshot.
func Host() FeatureSet {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cachedFeatures == nil {
		fs := HostNoCache()
		cachedFeatures = &fs
	}
	return *cachedFeatures
}

// HostNoCache detects the features of the current machine without using the cache.
func HostNoCache() FeatureSet {
	var fs FeatureSet
	fs.Detect()
	return fs
}

// ResetCache clears the cached [Host] result.
// This is primarily useful for testing.
func ResetCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cachedFeatures = nil
}

// PrintHost detects the current machine and writes the report to standard output.
func PrintHost() error {
	fs := HostNoCache()
	_, err := fs.WriteTo(os.Stdout)
	return err
}
