package optimizer

import (
	"math/rand"
	"time"

	"github.com/meshachvetz/meshachvetz/internal/config"
	"github.com/meshachvetz/meshachvetz/internal/model"
	"github.com/meshachvetz/meshachvetz/internal/progress"
)

// LocalSearch implements C8: repeated passes of hill-climbing over a
// bounded candidate sample of swaps/moves, accepting only strictly
// improving moves, terminating on max-passes, max-iterations, or a full
// pass with zero improving moves (a local optimum).
type LocalSearch struct {
	cfg     *config.Config
	tracker *progress.Tracker
}

// NewLocalSearch builds a LocalSearch strategy.
func NewLocalSearch(cfg *config.Config, tracker *progress.Tracker) *LocalSearch {
	return &LocalSearch{cfg: cfg, tracker: tracker}
}

func (l *LocalSearch) Name() string { return "Local Search" }

func (l *LocalSearch) Parameters() map[string]any {
	return map[string]any{
		"max_passes":       l.cfg.Optimizer.MaxPasses,
		"max_iterations":   l.cfg.Optimizer.MaxIterations,
		"candidate_sample": l.cfg.Optimizer.CandidateSample,
		"time_limit_s":     l.cfg.Optimizer.TimeLimitSeconds,
		"seed":             l.cfg.Optimizer.Seed,
	}
}

// moveCandidate is an unevaluated move/swap/group-relocate proposal (§4.5's
// three neighborhood operators).
type moveCandidate struct {
	kind        string // "move" | "swap" | "group"
	primaryID   string // the student whose current individual score drives the tie-break
	otherID     string // populated for "swap"
	targetClass string // populated for "move" and "group"
}

func (l *LocalSearch) Optimize(sd *model.SchoolData) *Result {
	start := time.Now()
	base := NewBase(l.cfg, sd)
	current := sd.Clone()
	initial := base.Evaluate(current)
	bestResult := initial

	budget := Budget{
		MaxIterations: l.cfg.Optimizer.MaxIterations,
		TimeLimit:     time.Duration(l.cfg.Optimizer.TimeLimitSeconds * float64(time.Second)),
	}
	rng := NewPartitionedRNG(l.cfg.Optimizer.Seed).For(SubsystemLocalSearch)

	l.tracker.Start(l.Name(), l.cfg.Optimizer.MaxIterations)

	iterations := 0
	maxPasses := l.cfg.Optimizer.MaxPasses
	for pass := 0; maxPasses <= 0 || pass < maxPasses; pass++ {
		if budget.Expired(time.Since(start), iterations) {
			break
		}
		candidates := l.generateCandidates(base, current, rng)
		best, ok := l.pickBestImproving(base, current, candidates)
		if !ok {
			break // full pass with zero improving moves: local optimum
		}
		if err := l.apply(base, current, best); err != nil {
			break // internal invariant breach: stop rather than fabricate a result
		}
		iterations++
		newResult := base.Evaluate(current)
		l.tracker.Iteration(iterations, newResult.FinalScore, newResult.FinalScore)
		if newResult.FinalScore > bestResult.FinalScore {
			l.tracker.Improvement(iterations, bestResult.FinalScore, newResult.FinalScore)
		}
		bestResult = newResult

		if budget.Expired(time.Since(start), iterations) {
			break
		}
	}

	l.tracker.Finish(l.Name(), iterations, initial.FinalScore, bestResult.FinalScore)
	return BuildResult(l.Name(), initial, bestResult, current, time.Since(start), iterations, l.Parameters())
}

// generateCandidates samples up to CandidateSample moves and CandidateSample
// swaps from the current mutable roster, plus one relocation candidate per
// force_friend group, per pass.
func (l *LocalSearch) generateCandidates(base *Base, current *model.SchoolData, rng *rand.Rand) []moveCandidate {
	mutable := base.MutableIDs()
	if len(mutable) == 0 {
		return nil
	}
	classIDs := current.SortedClassIDs()
	if len(classIDs) == 0 {
		return nil
	}
	sample := l.cfg.Optimizer.CandidateSample
	if sample <= 0 {
		sample = len(mutable)
	}

	var candidates []moveCandidate

	// Single-student moves to a random class (possibly the student's current
	// one, which changes nothing and is never picked as improving), skipping grouped students
	// (their moves are represented by the per-group candidate below instead).
	ungrouped := make([]string, 0, len(mutable))
	for _, id := range mutable {
		if _, grouped := base.GroupOf(id); !grouped {
			ungrouped = append(ungrouped, id)
		}
	}
	for i := 0; i < sample && len(ungrouped) > 0; i++ {
		id := ungrouped[rng.Intn(len(ungrouped))]
		target := classIDs[rng.Intn(len(classIDs))]
		candidates = append(candidates, moveCandidate{kind: "move", primaryID: id, targetClass: target})
	}

	// Swaps between two random ungrouped students in different classes.
	for i := 0; i < sample && len(ungrouped) > 1; i++ {
		a := ungrouped[rng.Intn(len(ungrouped))]
		b := ungrouped[rng.Intn(len(ungrouped))]
		if a == b {
			continue
		}
		sa, _ := current.StudentByID(a)
		sb, _ := current.StudentByID(b)
		if sa.ClassID == sb.ClassID {
			continue
		}
		candidates = append(candidates, moveCandidate{kind: "swap", primaryID: a, otherID: b})
	}

	// One relocation candidate per force_friend group representative.
	seenTokens := make(map[string]bool)
	for _, id := range mutable {
		token, grouped := base.GroupOf(id)
		if !grouped || seenTokens[token] {
			continue
		}
		seenTokens[token] = true
		target := classIDs[rng.Intn(len(classIDs))]
		candidates = append(candidates, moveCandidate{kind: "group", primaryID: id, targetClass: target})
	}

	return candidates
}

// pickBestImproving evaluates every candidate on a disposable clone and
// returns the strictly-best-improving one, applying the tie-break rule
// (§4.6): prefer the candidate touching the student with the lower current
// individual score, then lexicographic student ID.
func (l *LocalSearch) pickBestImproving(base *Base, current *model.SchoolData, candidates []moveCandidate) (moveCandidate, bool) {
	baseline := base.Evaluate(current)

	var (
		best      moveCandidate
		bestDelta float64
		bestScore float64 // the touched student's current individual score, for tie-breaking
		found     bool
	)

	for _, c := range candidates {
		trial := current.Clone()
		if err := l.apply(base, trial, c); err != nil {
			continue
		}
		result := base.Evaluate(trial)
		delta := result.FinalScore - baseline.FinalScore
		if delta <= 0 {
			continue
		}
		touchedScore := baseline.StudentScores[c.primaryID].Score

		switch {
		case !found, delta > bestDelta:
			best, bestDelta, bestScore, found = c, delta, touchedScore, true
		case delta == bestDelta:
			if touchedScore < bestScore || (touchedScore == bestScore && c.primaryID < best.primaryID) {
				best, bestDelta, bestScore, found = c, delta, touchedScore, true
			}
		}
	}
	return best, found
}

func (l *LocalSearch) apply(base *Base, sd *model.SchoolData, c moveCandidate) error {
	switch c.kind {
	case "move":
		return base.Move(sd, c.primaryID, c.targetClass)
	case "swap":
		return base.Swap(sd, c.primaryID, c.otherID)
	case "group":
		token, _ := base.GroupOf(c.primaryID)
		return base.RelocateGroup(sd, token, c.targetClass)
	default:
		return nil
	}
}
