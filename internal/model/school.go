package model

import (
	"fmt"
	"sort"
)

// SchoolData is the full in-memory roster: every student and every class,
// plus the lookups the scorer and optimizer need. The roster itself is
// fixed for the duration of one run (invariant 6) — only a student's
// ClassID field, and the derived ClassData.StudentIDs slices, change.
type SchoolData struct {
	Students map[string]*Student   // student_id -> Student
	Classes  map[string]*ClassData // class_id -> ClassData
}

// NewSchoolData builds a SchoolData from a flat student list, deriving
// class membership from each student's ClassID. Callers (the loader) are
// responsible for imputation and reference-dropping before calling this;
// NewSchoolData itself performs no imputation.
func NewSchoolData(students []*Student) *SchoolData {
	sd := &SchoolData{
		Students: make(map[string]*Student, len(students)),
		Classes:  make(map[string]*ClassData),
	}
	for _, s := range students {
		sd.Students[s.ID] = s
	}
	sd.rebuildClasses()
	return sd
}

// rebuildClasses recomputes the class_id -> ClassData membership map from
// the current Students map. Called only by NewSchoolData (and so by
// Clone); single moves go through Reassign instead.
func (sd *SchoolData) rebuildClasses() {
	sd.Classes = make(map[string]*ClassData)
	ids := make([]string, 0, len(sd.Students))
	for id := range sd.Students {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s := sd.Students[id]
		c, ok := sd.Classes[s.ClassID]
		if !ok {
			c = &ClassData{ClassID: s.ClassID}
			sd.Classes[s.ClassID] = c
		}
		c.StudentIDs = append(c.StudentIDs, id)
	}
}

// StudentByID looks up a student, ok=false if absent.
func (sd *SchoolData) StudentByID(id string) (*Student, bool) {
	s, ok := sd.Students[id]
	return s, ok
}

// SortedStudentIDs returns every student ID in ascending order, the
// deterministic iteration order required throughout the scorer and
// optimizer (mirrors the teacher's sort.SliceStable tie-break discipline).
func (sd *SchoolData) SortedStudentIDs() []string {
	ids := make([]string, 0, len(sd.Students))
	for id := range sd.Students {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SortedClassIDs returns every non-empty class's ID in ascending order.
func (sd *SchoolData) SortedClassIDs() []string {
	ids := make([]string, 0, len(sd.Classes))
	for id, c := range sd.Classes {
		if len(c.StudentIDs) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Clone produces a deep copy: a new Students map with copied *Student
// values and a freshly rebuilt Classes map. The optimizers clone the input
// before searching, so the caller's SchoolData is never mutated, and clone
// again for each trial candidate; local search applies an accepted move in
// place to its working copy.
func (sd *SchoolData) Clone() *SchoolData {
	students := make([]*Student, 0, len(sd.Students))
	for _, id := range sd.SortedStudentIDs() {
		s := *sd.Students[id]
		cp := s
		cp.PreferredFriends = append([]string(nil), s.PreferredFriends...)
		cp.DislikedPeers = append([]string(nil), s.DislikedPeers...)
		students = append(students, &cp)
	}
	return NewSchoolData(students)
}

// Reassign moves student id to newClassID, updating both the Students map
// and the derived Classes map. It is the only sanctioned way to mutate
// class membership; direct field writes on a Student obtained from
// StudentByID bypass the Classes index and will desync it.
func (sd *SchoolData) Reassign(id, newClassID string) error {
	s, ok := sd.Students[id]
	if !ok {
		return fmt.Errorf("meshachvetz: internal invariant breach: reassign of unknown student %q", id)
	}
	oldClassID := s.ClassID
	if oldClassID == newClassID {
		return nil
	}
	if old, ok := sd.Classes[oldClassID]; ok {
		old.StudentIDs = removeID(old.StudentIDs, id)
	}
	s.ClassID = newClassID
	c, ok := sd.Classes[newClassID]
	if !ok {
		c = &ClassData{ClassID: newClassID}
		sd.Classes[newClassID] = c
	}
	c.StudentIDs = append(c.StudentIDs, id)
	return nil
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

// ValidateReferences checks invariant 2 (dangling preferred_friends /
// disliked_peers) and returns the list of offending (student, peer) pairs.
// It never mutates the roster; the loader decides whether to drop the
// reference after seeing this report.
func (sd *SchoolData) ValidateReferences() []string {
	var warnings []string
	for _, id := range sd.SortedStudentIDs() {
		s := sd.Students[id]
		for _, f := range s.PreferredFriends {
			if _, ok := sd.Students[f]; !ok {
				warnings = append(warnings, fmt.Sprintf("student %s: preferred_friends references unknown student %s", s.ID, f))
			}
		}
		for _, d := range s.DislikedPeers {
			if _, ok := sd.Students[d]; !ok {
				warnings = append(warnings, fmt.Sprintf("student %s: disliked_peers references unknown student %s", s.ID, d))
			}
		}
	}
	return warnings
}

// ValidateForceConstraints checks invariants 3 and 4 against the current
// assignment and returns a human-readable violation per offense.
func (sd *SchoolData) ValidateForceConstraints() []string {
	var violations []string
	for _, id := range sd.SortedStudentIDs() {
		s := sd.Students[id]
		if s.HasForceClass() && s.ClassID != s.ForceClass {
			violations = append(violations, fmt.Sprintf("student %s: force_class=%s but class_id=%s", s.ID, s.ForceClass, s.ClassID))
		}
	}
	groups := make(map[string][]string)
	for _, id := range sd.SortedStudentIDs() {
		s := sd.Students[id]
		if s.HasForceFriend() {
			groups[s.ForceFriend] = append(groups[s.ForceFriend], id)
		}
	}
	tokens := make([]string, 0, len(groups))
	for t := range groups {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	for _, t := range tokens {
		members := groups[t]
		want := sd.Students[members[0]].ClassID
		for _, id := range members[1:] {
			if sd.Students[id].ClassID != want {
				violations = append(violations, fmt.Sprintf("force_friend group %s: student %s not co-assigned with class %s", t, id, want))
			}
		}
	}
	return violations
}
