package scorer

import (
	"github.com/meshachvetz/meshachvetz/internal/config"
	"github.com/meshachvetz/meshachvetz/internal/model"
)

// Evaluate computes the full three-layer ScoringResult for sd under cfg
// (§4.4). It is a pure function: sd is never mutated, and repeated calls
// with the same (sd, cfg) produce a bitwise-identical Result (§8 invariants
// 1-2). This is the hot loop every optimizer strategy calls once per
// candidate assignment.
func Evaluate(sd *model.SchoolData, cfg *config.Config) *Result {
	studentScores, studentLayerScore := studentLayer(sd, cfg)
	classScores, classLayerScore := classLayer(sd)
	schoolScores, schoolLayerScore := schoolLayer(sd, cfg)

	w := cfg.LayerWeights
	final := w.Student*studentLayerScore + w.Class*classLayerScore + w.School*schoolLayerScore

	return &Result{
		FinalScore:        final,
		StudentLayerScore: studentLayerScore,
		ClassLayerScore:   classLayerScore,
		SchoolLayerScore:  schoolLayerScore,
		LayerWeights:      w,
		StudentScores:     studentScores,
		ClassScores:       classScores,
		SchoolScores:      schoolScores,
		TotalStudents:     len(sd.Students),
		TotalClasses:      len(sd.SortedClassIDs()),
		Config:            cfg,
	}
}

// SatisfactionSummary aggregates the per-student detail into the coarse
// buckets the original project's CLI reported (highly/moderately/low
// satisfied, friends placed, conflicts present) — kept here as a pure
// post-processing step over an existing Result, not part of the scoring
// kernel itself.
type SatisfactionSummary struct {
	AverageSatisfaction      float64
	TotalStudents            int
	HighlySatisfiedCount     int // score >= 75
	ModeratelySatisfiedCount int // 50 <= score < 75
	LowSatisfactionCount     int // score < 50
	StudentsWithFriendsPlaced int
	StudentsWithConflicts    int
}

// Summarize computes a SatisfactionSummary from an already-computed Result.
func Summarize(r *Result) SatisfactionSummary {
	var sum SatisfactionSummary
	sum.TotalStudents = len(r.StudentScores)
	var total float64
	for _, d := range r.StudentScores {
		total += d.Score
		switch {
		case d.Score >= 75:
			sum.HighlySatisfiedCount++
		case d.Score >= 50:
			sum.ModeratelySatisfiedCount++
		default:
			sum.LowSatisfactionCount++
		}
		if d.FriendsPlaced > 0 {
			sum.StudentsWithFriendsPlaced++
		}
		if len(d.ConflictsPresent) > 0 {
			sum.StudentsWithConflicts++
		}
	}
	if sum.TotalStudents > 0 {
		sum.AverageSatisfaction = total / float64(sum.TotalStudents)
	}
	return sum
}
