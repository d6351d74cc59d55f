package x86features

import (
	"errors"
	"fmt"
	"testing"
)

func TestFeature_String(t *testing.T) {
	tests := []struct {
		f    Feature
		want string
	}{
		{FeatureVendorAMD, "amd"},
		{FeatureOSAVX512, "os-avx512"},
		{FeatureSSE41, "sse4.1"},
		{FeatureAES, "aes-ni"},
		{FeaturePREFETCHWT1, "prefetchwt1"},
		{FeatureAVX512F, "avx512-f"},
		{FeatureAVX512VBMI, "avx512-vbmi"},
		{Feature(999), "Feature(999)"},
		{Feature(-1), "Feature(-1)"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("Feature(%d).String() = %q, want %q", int(tt.f), got, tt.want)
		}
	}
}

func TestFeatureNames(t *testing.T) {
	names := FeatureNames()
	values := FeatureValues()
	if len(names) != len(values) {
		t.Fatalf("len(FeatureNames()) = %d, len(FeatureValues()) = %d", len(names), len(values))
	}

	seen := make(map[string]bool)
	for i, name := range names {
		if name == "" {
			t.Errorf("feature %d has no name", i)
		}
		if seen[name] {
			t.Errorf("duplicate feature name %q", name)
		}
		seen[name] = true
		if values[i].String() != name {
			t.Errorf("FeatureValues()[%d] = %s, FeatureNames()[%d] = %s", i, values[i], i, name)
		}
	}

	names[0] = "mutated"
	if FeatureNames()[0] == "mutated" {
		t.Error("FeatureNames() exposes internal storage")
	}
}

func TestFeatureSet_Has(t *testing.T) {
	for _, f := range FeatureValues() {
		var fs FeatureSet
		p := featureFlag(&fs, f)
		if p == nil {
			t.Fatalf("featureFlag(%s) = nil", f)
		}
		*p = true
		for _, other := range FeatureValues() {
			if got, want := fs.Has(other), other == f; got != want {
				t.Errorf("after setting %s: Has(%s) = %v, want %v", f, other, got, want)
			}
		}
	}

	var fs FeatureSet
	if featureFlag(&fs, Feature(999)) != nil {
		t.Error("featureFlag(Feature(999)) != nil")
	}
	if fs.Has(Feature(999)) {
		t.Error("Has(Feature(999)) = true")
	}
}

func TestFeatureSet_Vendor(t *testing.T) {
	tests := []struct {
		fs   FeatureSet
		want string
	}{
		{FeatureSet{VendorIntel: true}, "Intel"},
		{FeatureSet{VendorAMD: true}, "AMD"},
		{FeatureSet{}, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.fs.Vendor(); got != tt.want {
			t.Errorf("Vendor() = %q, want %q", got, tt.want)
		}
	}
}

func TestFeatureError(t *testing.T) {
	t.Run("without wrapped error", func(t *testing.T) {
		err := &FeatureError{Feature: "avx2", Reason: "not implemented by this processor"}
		want := "feature avx2: not implemented by this processor"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
		if err.Unwrap() != nil {
			t.Errorf("Unwrap() = %v, want nil", err.Unwrap())
		}
	})

	t.Run("with wrapped error", func(t *testing.T) {
		inner := errors.New("boom")
		err := fmt.Errorf("check: %w", &FeatureError{Feature: "sha", Reason: "r", Err: inner})
		if !errors.Is(err, inner) {
			t.Error("errors.Is() did not find the wrapped error")
		}
		var fe *FeatureError
		if !errors.As(err, &fe) {
			t.Fatal("errors.As() did not find *FeatureError")
		}
		if fe.Error() != "feature sha: r: boom" {
			t.Errorf("Error() = %q", fe.Error())
		}
	})
}
