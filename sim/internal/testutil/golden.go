// Package testutil provides shared test infrastructure for the FastPass simulator.
// It holds the golden dataset of analytic reference points and assertion
// helpers used across the sim/ and sim/sweep/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one configuration with its expected steady-state residence times.
type GoldenTestCase struct {
	Name             string        `json:"name"`
	ArrivalRate      float64       `json:"arrival_rate"`
	FastpassFraction float64       `json:"fastpass_fraction"`
	ServiceRate      float64       `json:"service_rate"`
	Horizon          float64       `json:"horizon"`
	Warmup           float64       `json:"warmup"`
	Seed             int64         `json:"seed"`
	RelTol           float64       `json:"rel_tol"` // tolerance for simulated vs expected
	Metrics          GoldenMetrics `json:"metrics"`
}

// GoldenMetrics holds expected mean residence times. A nil value means the
// class receives no traffic and its average is undefined.
type GoldenMetrics struct {
	PriorityResidence *float64 `json:"priority_residence"`
	RegularResidence  *float64 `json:"regular_residence"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	if len(dataset.Tests) == 0 {
		t.Fatal("Golden dataset has no test cases")
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertOptionalFloat64 checks an average that may be undefined: a nil want
// requires ok == false, otherwise got must be defined and within relTol.
func AssertOptionalFloat64(t *testing.T, name string, want *float64, got float64, ok bool, relTol float64) {
	t.Helper()
	if want == nil {
		if ok {
			t.Errorf("%s: got %v, want undefined", name, got)
		}
		return
	}
	if !ok {
		t.Errorf("%s: undefined, want %v", name, *want)
		return
	}
	AssertFloat64Equal(t, name, *want, got, relTol)
}
