package config

import (
	"sync"
	"testing"

	"github.com/spf13/pflag"
)

func TestFlagTracker_Basic(t *testing.T) {
	ft := NewFlagTracker()

	if ft.WasSet("threshold") {
		t.Error("Expected flag 'threshold' to not be set initially")
	}

	ft.Set("threshold")
	if !ft.WasSet("threshold") {
		t.Error("Expected flag 'threshold' to be set after Set()")
	}
	if ft.Count() != 1 {
		t.Errorf("Expected count to be 1, got %d", ft.Count())
	}
}

func TestFlagTracker_WithInitialFlags(t *testing.T) {
	initial := map[string]bool{"num-perm": true, "num-bands": false}
	ft := NewFlagTrackerWithFlags(initial)

	if !ft.WasSet("num-perm") {
		t.Error("Expected num-perm to be set")
	}
	if ft.WasSet("num-bands") {
		t.Error("Expected num-bands to not be set")
	}

	// The tracker keeps its own copy
	initial["seed"] = true
	if ft.WasSet("seed") {
		t.Error("Expected tracker to be unaffected by changes to the input map")
	}
}

func TestFlagTracker_FromFlagSet(t *testing.T) {
	fs := pflag.NewFlagSet("dedupe", pflag.ContinueOnError)
	fs.Int("num-perm", 64, "")
	fs.Int("num-bands", 16, "")
	fs.Float64("threshold", 0.49, "")

	if err := fs.Parse([]string{"--num-bands", "8", "--threshold=0.7"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	ft := NewFlagTrackerFromFlagSet(fs)
	if ft.WasSet("num-perm") {
		t.Error("num-perm was not given and must not be tracked")
	}
	if !ft.WasSet("num-bands") || !ft.WasSet("threshold") {
		t.Errorf("expected num-bands and threshold to be tracked, got %v", ft.Flags())
	}

	if NewFlagTrackerFromFlagSet(nil).Count() != 0 {
		t.Error("nil flag set should produce an empty tracker")
	}
}

func TestFlagTracker_Merge(t *testing.T) {
	ft := NewFlagTrackerWithFlags(map[string]bool{"a": true})

	if got := ft.MergeInt(1, 2, "a"); got != 2 {
		t.Errorf("MergeInt with set flag = %d, want 2", got)
	}
	if got := ft.MergeInt(1, 2, "b"); got != 1 {
		t.Errorf("MergeInt with unset flag = %d, want 1", got)
	}
	if got := ft.MergeString("x", "y", "a"); got != "y" {
		t.Errorf("MergeString = %q, want y", got)
	}
	if got := ft.MergeBool(false, true, "b"); got {
		t.Error("MergeBool should keep base for unset flag")
	}

	base, override := 0.5, 0.9
	if got := ft.MergeFloat64Ptr(&base, &override, "a"); got != &override {
		t.Error("MergeFloat64Ptr should return override for set flag")
	}
	if got := ft.MergeFloat64Ptr(&base, nil, "b"); got != &base {
		t.Error("MergeFloat64Ptr should return base for unset flag")
	}

	seed := uint64(7)
	if got := ft.MergeUint64Ptr(nil, &seed, "a"); got == nil || *got != 7 {
		t.Error("MergeUint64Ptr should return override for set flag")
	}

	if got := ft.MergeStringSlice([]string{"x"}, nil, "a"); len(got) != 1 || got[0] != "x" {
		t.Errorf("MergeStringSlice with empty override = %v, want base", got)
	}
}

func TestFlagTracker_Concurrent(t *testing.T) {
	ft := NewFlagTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ft.Set("flag")
		}()
		go func() {
			defer wg.Done()
			_ = ft.WasSet("flag")
		}()
	}
	wg.Wait()

	if !ft.WasSet("flag") {
		t.Error("Expected flag to be set")
	}
}
