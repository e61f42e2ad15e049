// Package optimizer implements the search strategies (C7-C10) that drive
// the scorer (internal/scorer) toward a higher-quality assignment. All
// strategies share the same assignment representation, constraint checker,
// and move operators defined in base.go; they differ only in how they pick
// which moves to try.
package optimizer

import (
	"time"

	"github.com/meshachvetz/meshachvetz/internal/model"
)

// Violation is one constraint-checker finding (§4.5).
type Violation struct {
	Kind          string // force_class_violation | force_friend_split | class_size_out_of_range | dangling_reference
	OffendingIDs  []string
	Detail        string
}

// Result is the OptimizationResult envelope (§4.5).
type Result struct {
	AlgorithmName        string
	InitialScore         float64
	FinalScore           float64
	Improvement          float64
	OptimizedSchoolData  *model.SchoolData
	ExecutionTime        time.Duration
	IterationCount       int
	AlgorithmParameters   map[string]any
	ConstraintsSatisfied bool
	Violations           []Violation
	RunID                string
}

// Strategy is the capability contract every search algorithm implements
// (§9 "runtime polymorphism over strategies"): a uniform Optimize entry
// point, a display name, and an echo of its effective parameters. The
// selector dispatching on config.Optimizer.Algorithm is a plain switch in
// registry.go, not subclass dispatch.
type Strategy interface {
	Optimize(sd *model.SchoolData) *Result
	Name() string
	Parameters() map[string]any
}
