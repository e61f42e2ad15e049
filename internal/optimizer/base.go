package optimizer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meshachvetz/meshachvetz/internal/config"
	"github.com/meshachvetz/meshachvetz/internal/model"
	"github.com/meshachvetz/meshachvetz/internal/scorer"
)

// Budget bounds a search run; both fields are checked at iteration
// boundaries only, never mid-iteration (§5).
type Budget struct {
	MaxIterations int
	TimeLimit     time.Duration
}

// Expired reports whether the budget has run out given elapsed time and
// iterations spent so far.
func (b Budget) Expired(elapsed time.Duration, iterations int) bool {
	if b.MaxIterations > 0 && iterations >= b.MaxIterations {
		return true
	}
	if b.TimeLimit > 0 && elapsed >= b.TimeLimit {
		return true
	}
	return false
}

// Base holds the shared assignment representation and move operators every
// strategy builds on: it enforces force_class pinning and force_friend
// atomicity so that any strategy mutating only through its operators
// preserves hard constraints by construction (§4.5).
type Base struct {
	Config *config.Config

	// mutableIDs excludes force_class-pinned students.
	mutableIDs []string
	// groups maps a force_friend token to its member student IDs (a token
	// held by a single student forms a one-member group).
	groups map[string][]string
	// groupOf maps a student ID to its force_friend token, if any.
	groupOf map[string]string
}

// NewBase partitions sd's roster into mutable students and force-friend
// groups (§4.5).
func NewBase(cfg *config.Config, sd *model.SchoolData) *Base {
	b := &Base{
		Config:  cfg,
		groups:  make(map[string][]string),
		groupOf: make(map[string]string),
	}
	for _, id := range sd.SortedStudentIDs() {
		s := sd.Students[id]
		if s.HasForceFriend() {
			b.groups[s.ForceFriend] = append(b.groups[s.ForceFriend], id)
			b.groupOf[id] = s.ForceFriend
		}
		if !s.HasForceClass() {
			b.mutableIDs = append(b.mutableIDs, id)
		}
	}
	return b
}

// MutableIDs returns the student IDs free to move (not force_class-pinned),
// in deterministic ascending order.
func (b *Base) MutableIDs() []string {
	out := make([]string, len(b.mutableIDs))
	copy(out, b.mutableIDs)
	return out
}

// GroupOf returns the force_friend token for id, and ok=false if id is not
// in any group.
func (b *Base) GroupOf(id string) (string, bool) {
	tok, ok := b.groupOf[id]
	return tok, ok
}

// GroupMembers returns every student sharing token.
func (b *Base) GroupMembers(token string) []string {
	return b.groups[token]
}

// Evaluate delegates to the scorer (C6); it is the objective every
// strategy calls once per candidate assignment.
func (b *Base) Evaluate(sd *model.SchoolData) *scorer.Result {
	return scorer.Evaluate(sd, b.Config)
}

// Move relocates a single unpinned student to a different class. If the
// student belongs to a force_friend group, the whole group is relocated
// atomically (RelocateGroup is called instead) so the operator can never
// split a group on its own.
func (b *Base) Move(sd *model.SchoolData, studentID, targetClassID string) error {
	s, ok := sd.StudentByID(studentID)
	if !ok {
		return fmt.Errorf("meshachvetz: internal invariant breach: move of unknown student %q", studentID)
	}
	if s.HasForceClass() {
		return fmt.Errorf("meshachvetz: internal invariant breach: move attempted on force_class-pinned student %q", studentID)
	}
	if token, ok := b.GroupOf(studentID); ok {
		return b.RelocateGroup(sd, token, targetClassID)
	}
	return sd.Reassign(studentID, targetClassID)
}

// Swap exchanges the classes of two unpinned, non-grouped students
// currently in different classes (§4.5's "swap two students" operator).
func (b *Base) Swap(sd *model.SchoolData, aID, bID string) error {
	a, ok := sd.StudentByID(aID)
	if !ok {
		return fmt.Errorf("meshachvetz: internal invariant breach: swap with unknown student %q", aID)
	}
	bs, ok := sd.StudentByID(bID)
	if !ok {
		return fmt.Errorf("meshachvetz: internal invariant breach: swap with unknown student %q", bID)
	}
	if a.HasForceClass() || bs.HasForceClass() {
		return fmt.Errorf("meshachvetz: internal invariant breach: swap attempted on force_class-pinned student")
	}
	if _, grouped := b.GroupOf(aID); grouped {
		return fmt.Errorf("meshachvetz: internal invariant breach: swap attempted on force_friend-grouped student %q; use RelocateGroup", aID)
	}
	if _, grouped := b.GroupOf(bID); grouped {
		return fmt.Errorf("meshachvetz: internal invariant breach: swap attempted on force_friend-grouped student %q; use RelocateGroup", bID)
	}
	if a.ClassID == bs.ClassID {
		return nil
	}
	aClass, bClass := a.ClassID, bs.ClassID
	if err := sd.Reassign(aID, bClass); err != nil {
		return err
	}
	return sd.Reassign(bID, aClass)
}

// RelocateGroup moves every member of a force_friend group to targetClassID
// together (§4.5's "relocate force-friend group" operator), preserving
// atomicity.
func (b *Base) RelocateGroup(sd *model.SchoolData, token, targetClassID string) error {
	members := b.GroupMembers(token)
	if len(members) == 0 {
		return fmt.Errorf("meshachvetz: internal invariant breach: relocate of unknown force_friend group %q", token)
	}
	for _, id := range members {
		if err := sd.Reassign(id, targetClassID); err != nil {
			return err
		}
	}
	return nil
}

// CheckConstraints runs the constraint checker (§4.5, §7): it never raises
// an exception, only reports violations as data.
func CheckConstraints(sd *model.SchoolData) []Violation {
	var violations []Violation
	for _, detail := range sd.ValidateForceConstraints() {
		kind := "force_class_violation"
		if containsSubstr(detail, "force_friend group") {
			kind = "force_friend_split"
		}
		violations = append(violations, Violation{Kind: kind, Detail: detail})
	}
	for _, detail := range sd.ValidateReferences() {
		violations = append(violations, Violation{Kind: "dangling_reference", Detail: detail})
	}
	return violations
}

func containsSubstr(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// BuildResult assembles the OptimizationResult envelope, re-running the
// constraint checker on the final state (§4.5).
func BuildResult(name string, initial, final *scorer.Result, finalSD *model.SchoolData, elapsed time.Duration, iterations int, params map[string]any) *Result {
	violations := CheckConstraints(finalSD)
	return &Result{
		AlgorithmName:        name,
		InitialScore:         initial.FinalScore,
		FinalScore:           final.FinalScore,
		Improvement:          final.FinalScore - initial.FinalScore,
		OptimizedSchoolData:  finalSD,
		ExecutionTime:        elapsed,
		IterationCount:       iterations,
		AlgorithmParameters:  params,
		ConstraintsSatisfied: len(violations) == 0,
		Violations:           violations,
		RunID:                uuid.NewString(),
	}
}
