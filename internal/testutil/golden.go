// Package testutil provides shared test infrastructure: a golden-dataset
// loader and a float tolerance helper, mirroring the teacher's own
// sim/internal/testutil/golden.go so scorer/optimizer tests and CLI tests
// can share one fixture format instead of hand-rolling comparisons.
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
	Rosters []GoldenRoster `json:"rosters"`
}

// GoldenRoster is one named roster scenario with its expected scoring
// outcome under the default configuration.
type GoldenRoster struct {
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	Students           []GoldenStudent    `json:"students"`
	ExpectedFinalScore float64            `json:"expected_final_score"`
	ExpectedScoreFloor float64            `json:"expected_score_floor"` // final score must be >= this
	ExpectedScoreCeil  float64            `json:"expected_score_ceil"`  // final score must be <= this
}

// GoldenStudent is the JSON shape of one fixture roster row.
type GoldenStudent struct {
	ID                string   `json:"id"`
	FirstName         string   `json:"first_name"`
	LastName          string   `json:"last_name"`
	Gender            string   `json:"gender"`
	ClassID           string   `json:"class_id"`
	AcademicScore     float64  `json:"academic_score"`
	BehaviorRank      string   `json:"behavior_rank"`
	StudentialityRank string   `json:"studentiality_rank"`
	AssistancePackage bool     `json:"assistance_package"`
	PreferredFriends  []string `json:"preferred_friends"`
	DislikedPeers     []string `json:"disliked_peers"`
	ForceClass        string   `json:"force_class"`
	ForceFriend       string   `json:"force_friend"`
}

// LoadGoldenDataset loads testdata/goldendataset.json. The path is resolved
// relative to this source file, the same way the teacher's golden loader
// walks up from internal/testutil to the repo root.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("failed to parse golden dataset: %v", err)
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
