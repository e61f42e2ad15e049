package model

// ClassData holds a class's membership; every derived attribute (size,
// gender counts, mean academic score, mean behavior, assistance count) is
// recomputed on demand rather than cached, so it can never drift from the
// underlying roster after a move.
type ClassData struct {
	ClassID    string
	StudentIDs []string // ascending order is not guaranteed here; callers sort when determinism matters
}

// ClassStats is the bundle of derived, recomputed-on-demand attributes for
// one class, evaluated against a specific roster.
type ClassStats struct {
	Size              int
	MaleCount         int
	FemaleCount       int
	MeanAcademic      float64
	MeanBehaviorRank  float64
	AssistanceCount   int
}

// Stats computes ClassStats for c against roster, a student_id -> *Student
// lookup. Students referenced in c but absent from roster are skipped
// silently — callers are expected to have validated referential integrity
// up front (invariant 2 applies to friend/dislike references, not class
// membership, which the optimizer's representation guarantees).
func (c *ClassData) Stats(roster map[string]*Student) ClassStats {
	var stats ClassStats
	var academicSum, behaviorSum float64
	for _, id := range c.StudentIDs {
		s, ok := roster[id]
		if !ok {
			continue
		}
		stats.Size++
		switch s.Gender {
		case GenderMale:
			stats.MaleCount++
		case GenderFemale:
			stats.FemaleCount++
		}
		academicSum += s.AcademicScore
		behaviorSum += s.BehaviorRank.Numeric()
		if s.AssistancePackage {
			stats.AssistanceCount++
		}
	}
	if stats.Size > 0 {
		stats.MeanAcademic = academicSum / float64(stats.Size)
		stats.MeanBehaviorRank = behaviorSum / float64(stats.Size)
	}
	return stats
}
