// Package scorer implements the three-layer quality score (C3-C6): student
// satisfaction, class balance, school balance, aggregated into a single
// final score. Evaluate is a pure function of (SchoolData, Config) — it
// never mutates its input, matching the determinism/purity properties of
// §8.
package scorer

import "github.com/meshachvetz/meshachvetz/internal/config"

// StudentDetail is the per-student scoring breakdown (§4.1).
type StudentDetail struct {
	Score               float64
	FriendSatisfaction  float64
	ConflictAvoidance   float64
	FriendsRequested    int
	FriendsPlaced       int
	DislikesTotal       int
	ConflictsPresent    []string // disliked peer IDs who ended up in the same class
}

// GenderBalanceDetail is the per-class gender-balance breakdown (§4.2).
type GenderBalanceDetail struct {
	Score       float64
	MaleCount   int
	FemaleCount int
	Size        int
}

// ClassDetail is the per-class scoring breakdown.
type ClassDetail struct {
	Score         float64
	GenderBalance GenderBalanceDetail
}

// SchoolMetricDetail is one school-wide sub-metric's breakdown (§4.3).
type SchoolMetricDetail struct {
	Score  float64
	StdDev float64
}

// SchoolDetail bundles all four school-wide balance sub-metrics.
type SchoolDetail struct {
	AcademicBalance   SchoolMetricDetail
	BehaviorBalance   SchoolMetricDetail
	SizeBalance       SchoolMetricDetail
	AssistanceBalance SchoolMetricDetail
}

// Result is the ScoringResult envelope (§4.4): the final score, each
// layer's score and configured weight, full per-student/per-class/
// per-school detail, total counts, and an echo of the effective
// configuration used to produce it.
type Result struct {
	FinalScore float64

	StudentLayerScore float64
	ClassLayerScore   float64
	SchoolLayerScore  float64

	LayerWeights config.LayerWeights

	StudentScores map[string]StudentDetail // student_id -> detail
	ClassScores   map[string]ClassDetail    // class_id -> detail
	SchoolScores  SchoolDetail

	TotalStudents int
	TotalClasses  int

	Config *config.Config
}
