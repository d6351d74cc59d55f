package x86features

import (
	"fmt"
	"io"
	"strings"
)

type reportLine struct {
	label   string
	feature Feature
}

type reportSection struct {
	title string
	lines []reportLine
}

var reportSections = []reportSection{
	{"CPU Vendor", []reportLine{
		{"AMD", FeatureVendorAMD},
		{"Intel", FeatureVendorIntel},
	}},
	{"OS Features", []reportLine{
		{"64-bit", FeatureOSx64},
		{"OS AVX", FeatureOSAVX},
		{"OS AVX512", FeatureOSAVX512},
	}},
	{"Hardware Features", []reportLine{
		{"MMX", FeatureMMX},
		{"x64", FeatureX64},
		{"ABM", FeatureABM},
		{"RDRAND", FeatureRDRAND},
		{"BMI1", FeatureBMI1},
		{"BMI2", FeatureBMI2},
		{"ADX", FeatureADX},
		{"MPX", FeatureMPX},
		{"PREFETCHWT1", FeaturePREFETCHWT1},
	}},
	{"SIMD: 128-bit", []reportLine{
		{"SSE", FeatureSSE},
		{"SSE2", FeatureSSE2},
		{"SSE3", FeatureSSE3},
		{"SSSE3", FeatureSSSE3},
		{"SSE4a", FeatureSSE4a},
		{"SSE4.1", FeatureSSE41},
		{"SSE4.2", FeatureSSE42},
		{"AES-NI", FeatureAES},
		{"SHA", FeatureSHA},
	}},
	{"SIMD: 256-bit", []reportLine{
		{"AVX", FeatureAVX},
		{"XOP", FeatureXOP},
		{"FMA3", FeatureFMA3},
		{"FMA4", FeatureFMA4},
		{"AVX2", FeatureAVX2},
	}},
	{"SIMD: 512-bit", []reportLine{
		{"AVX512-F", FeatureAVX512F},
		{"AVX512-CD", FeatureAVX512CD},
		{"AVX512-PF", FeatureAVX512PF},
		{"AVX512-ER", FeatureAVX512ER},
		{"AVX512-VL", FeatureAVX512VL},
		{"AVX512-BW", FeatureAVX512BW},
		{"AVX512-DQ", FeatureAVX512DQ},
		{"AVX512-IFMA", FeatureAVX512IFMA},
		{"AVX512-VBMI", FeatureAVX512VBMI},
	}},
}

// String returns the human-readable feature report.
func (fs FeatureSet) String() string {
	var b strings.Builder

	for _, s := range reportSections {
		fmt.Fprintf(&b, "%s:\n", s.title)
		for _, l := range s.lines {
			writeFlag(&b, l.label, fs.Has(l.feature))
		}
		b.WriteString("\n")
	}

	b.WriteString("Summary:\n")
	writeSummary(&b, "Safe to use AVX:", fs.SafeAVX())
	writeSummary(&b, "Safe to use AVX512:", fs.SafeAVX512())
	b.WriteString("\n")

	return b.String()
}

// WriteTo writes the report returned by [FeatureSet.String] to w.
func (fs FeatureSet) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, fs.String())
	return int64(n), err
}

func writeFlag(b *strings.Builder, label string, ok bool) {
	fmt.Fprintf(b, "    %-12s= %s\n", label, yesNo(ok))
}

func writeSummary(b *strings.Builder, label string, ok bool) {
	fmt.Fprintf(b, "    %-21s%s\n", label, yesNo(ok))
}

func yesNo(ok bool) string {
	if ok {
		return "Yes"
	}
	return "No"
}
