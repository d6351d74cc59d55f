package x86features

import (
	"errors"
	"strings"
	"testing"
)

func TestFeatureSet_String_ZeroValue(t *testing.T) {
	var fs FeatureSet
	out := fs.String()

	if strings.Contains(out, "Yes") {
		t.Errorf("zero FeatureSet report contains Yes:\n%s", out)
	}
	for _, line := range []string{
		"    Safe to use AVX:     No\n",
		"    Safe to use AVX512:  No\n",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("report missing %q", line)
		}
	}
}

func TestFeatureSet_String_Layout(t *testing.T) {
	fs := FeatureSet{VendorIntel: true, OSx64: true}
	out := fs.String()

	wantPrefix := "CPU Vendor:\n" +
		"    AMD         = No\n" +
		"    Intel       = Yes\n" +
		"\n" +
		"OS Features:\n" +
		"    64-bit      = Yes\n" +
		"    OS AVX      = No\n" +
		"    OS AVX512   = No\n" +
		"\n" +
		"Hardware Features:\n"
	if !strings.HasPrefix(out, wantPrefix) {
		t.Errorf("report prefix mismatch:\n got: %q\nwant: %q", out[:min(len(out), len(wantPrefix))], wantPrefix)
	}

	wantSuffix := "Summary:\n" +
		"    Safe to use AVX:     No\n" +
		"    Safe to use AVX512:  No\n" +
		"\n"
	if !strings.HasSuffix(out, wantSuffix) {
		t.Errorf("report does not end with summary:\n%s", out)
	}

	titles := []string{
		"CPU Vendor:", "OS Features:", "Hardware Features:",
		"SIMD: 128-bit:", "SIMD: 256-bit:", "SIMD: 512-bit:", "Summary:",
	}
	last := -1
	for _, title := range titles {
		i := strings.Index(out, title)
		if i < 0 {
			t.Fatalf("report missing section %q", title)
		}
		if i < last {
			t.Errorf("section %q out of order", title)
		}
		last = i
	}
}

func TestFeatureSet_String_Summary(t *testing.T) {
	tests := []struct {
		name          string
		fs            FeatureSet
		wantAVX       string
		wantAVX512    string
		wantHWAVXLine string
	}{
		{
			name:          "hardware AVX without OS support",
			fs:            FeatureSet{AVX: true},
			wantAVX:       "    Safe to use AVX:     No\n",
			wantAVX512:    "    Safe to use AVX512:  No\n",
			wantHWAVXLine: "    AVX         = Yes\n",
		},
		{
			name:          "OS support without hardware AVX",
			fs:            FeatureSet{OSAVX: true},
			wantAVX:       "    Safe to use AVX:     No\n",
			wantAVX512:    "    Safe to use AVX512:  No\n",
			wantHWAVXLine: "    AVX         = No\n",
		},
		{
			name:          "AVX usable",
			fs:            FeatureSet{AVX: true, OSAVX: true},
			wantAVX:       "    Safe to use AVX:     Yes\n",
			wantAVX512:    "    Safe to use AVX512:  No\n",
			wantHWAVXLine: "    AVX         = Yes\n",
		},
		{
			name:          "AVX-512 hardware with AVX-only OS state",
			fs:            FeatureSet{AVX: true, OSAVX: true, AVX512F: true},
			wantAVX:       "    Safe to use AVX:     Yes\n",
			wantAVX512:    "    Safe to use AVX512:  No\n",
			wantHWAVXLine: "    AVX         = Yes\n",
		},
		{
			name:          "AVX-512 usable",
			fs:            FeatureSet{AVX: true, OSAVX: true, AVX512F: true, OSAVX512: true},
			wantAVX:       "    Safe to use AVX:     Yes\n",
			wantAVX512:    "    Safe to use AVX512:  Yes\n",
			wantHWAVXLine: "    AVX         = Yes\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.fs.String()
			for _, want := range []string{tt.wantAVX, tt.wantAVX512, tt.wantHWAVXLine} {
				if !strings.Contains(out, want) {
					t.Errorf("report missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestReportSections_CoverEveryFeature(t *testing.T) {
	seen := make(map[Feature]int)
	for _, s := range reportSections {
		for _, l := range s.lines {
			seen[l.feature]++
		}
	}
	for _, f := range FeatureValues() {
		if seen[f] != 1 {
			t.Errorf("feature %s appears %d times in the report, want 1", f, seen[f])
		}
	}
}

func TestFeatureSet_WriteTo(t *testing.T) {
	fs := FeatureSet{SSE2: true, SHA: true}

	var b strings.Builder
	n, err := fs.WriteTo(&b)
	if err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if n != int64(b.Len()) {
		t.Errorf("WriteTo() = %d, wrote %d bytes", n, b.Len())
	}
	if b.String() != fs.String() {
		t.Error("WriteTo() output differs from String()")
	}
}

type failingWriter struct{}

var errWrite = errors.New("sink closed")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestFeatureSet_WriteTo_Error(t *testing.T) {
	var fs FeatureSet
	if _, err := fs.WriteTo(failingWriter{}); !errors.Is(err, errWrite) {
		t.Errorf("WriteTo() error = %v, want %v", err, errWrite)
	}
}
