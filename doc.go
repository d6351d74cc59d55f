// Package x86features reports the instruction-set extensions of the host
// x86/x86-64 processor and whether the operating system has enabled the
// register state needed to use the wider vector extensions.
//
// Hardware capability and OS enablement are independent: a processor may
// implement AVX or AVX-512 while the OS does not save the YMM/ZMM registers
// across context switches. Never act on the hardware flags alone; use
// [FeatureSet.SafeAVX], [FeatureSet.SafeAVX512] or [FeatureSet.Usable].
//
// The package only reports. It never selects code paths.
//
// # Quick Check
//
// Validate that required features are usable:
//
//	if err := x86features.Check(x86features.FeatureAVX2, x86features.FeatureBMI2); err != nil {
//	    var fe *x86features.FeatureError
//	    if errors.As(err, &fe) {
//	        log.Fatalf("cpu not ready: %s: %s", fe.Feature, fe.Reason)
//	    }
//	    log.Fatal(err)
//	}
//
// # Full Detection
//
//	var fs x86features.FeatureSet
//	fs.Detect()
//	fmt.Printf("AVX2: %v\n", fs.AVX2)
//	fmt.Printf("Safe to use AVX-512: %v\n", fs.SafeAVX512())
//	fmt.Print(fs) // human-readable report
//
// [Host] returns a cached snapshot of the current machine.
//
// # Synthetic Input
//
// [FeatureSet.DetectWith] accepts a [Querier] that stands in for the CPUID and
// XGETBV instructions, which is how register dumps captured elsewhere can be
// decoded:
//
//	fs.DetectWith(x86features.WithQuerier(dump), x86features.WithOSx64(func() bool { return true }))
//
// # Bit Layout
//
// Hardware flags are decoded from a declarative table, available through
// [Bits], mapping each [Feature] to a CPUID leaf, register and bit index as
// published in the Intel SDM and AMD APM.
//
// # Platforms
//
// Only GOARCH=386 and GOARCH=amd64 are supported; building for any other
// architecture fails at compile time.
package x86features
