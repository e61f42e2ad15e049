package optimizer

import (
	"math/rand"
	"time"

	"github.com/meshachvetz/meshachvetz/internal/config"
	"github.com/meshachvetz/meshachvetz/internal/model"
	"github.com/meshachvetz/meshachvetz/internal/progress"
)

// CPSearch implements C10: a constraint-style assignment search over
// x_s in valid_classes(s), with force_class pinning and force_friend
// equality as hard constraints and class-size bounds enforced directly in
// the candidate domain rather than as a soft penalty. The objective is the
// linear surrogate from §4.8 (friend co-placement reward, conflict
// co-placement penalty, per-class size deviation penalty) because the
// true multi-layer score is not expressible as a CP-SAT-style linear
// objective; BuildResult always reports the true score recomputed through
// the scorer, never this surrogate (Open Question (b)).
//
// There is no CP/MIP solver in the dependency set this project draws
// from, so the search itself is a single bounded descent over the
// surrogate objective, starting from the input assignment and proposing
// one random neighbor per iteration until the wall-clock budget or
// MaxIterations runs out; there are no restarts — the same "local search
// over a scored objective" shape as LocalSearch, but scored by the
// surrogate and constrained to respect size bounds rather than merely
// preferring them.
type CPSearch struct {
	cfg     *config.Config
	tracker *progress.Tracker
}

// NewCPSearch builds a CPSearch strategy.
func NewCPSearch(cfg *config.Config, tracker *progress.Tracker) *CPSearch {
	return &CPSearch{cfg: cfg, tracker: tracker}
}

func (c *CPSearch) Name() string { return "CP Search" }

func (c *CPSearch) Parameters() map[string]any {
	return map[string]any{
		"target_class_size":   c.cfg.ORTools.TargetClassSize,
		"class_size_tolerance": c.cfg.ORTools.ClassSizeTolerance,
		"friend_weight":       c.cfg.ORTools.FriendWeight,
		"conflict_penalty":    c.cfg.ORTools.ConflictPenalty,
		"balance_weight":      c.cfg.ORTools.BalanceWeight,
		"time_limit_s":        c.cfg.Optimizer.TimeLimitSeconds,
		"seed":                c.cfg.Optimizer.Seed,
	}
}

func (c *CPSearch) Optimize(sd *model.SchoolData) *Result {
	start := time.Now()
	base := NewBase(c.cfg, sd)
	initial := base.Evaluate(sd.Clone())

	classIDs := sd.SortedClassIDs()
	rng := NewPartitionedRNG(c.cfg.Optimizer.Seed).For(SubsystemCP)
	budget := time.Duration(c.cfg.Optimizer.TimeLimitSeconds * float64(time.Second))

	c.tracker.Start(c.Name(), c.cfg.Optimizer.MaxIterations)

	if len(classIDs) == 0 {
		return BuildResult(c.Name(), initial, initial, sd.Clone(), time.Since(start), 0, c.Parameters())
	}

	best := sd.Clone()
	bestSurrogate := c.surrogate(base, best, classIDs)
	feasible := c.isSizeFeasible(best, classIDs)
	iterations := 0

	for time.Since(start) < budget && iterations < c.cfg.Optimizer.MaxIterations {
		candidate := c.randomNeighbor(base, best, classIDs, rng)
		iterations++
		if !c.isSizeFeasible(candidate, classIDs) {
			continue // size-bound hard constraint: reject rather than relax
		}
		score := c.surrogate(base, candidate, classIDs)
		if !feasible || score > bestSurrogate {
			if score > bestSurrogate {
				c.tracker.Improvement(iterations, bestSurrogate, score)
			}
			best, bestSurrogate, feasible = candidate, score, true
		}
		c.tracker.Iteration(iterations, score, bestSurrogate)
	}

	if !feasible {
		violations := CheckConstraints(sd)
		violations = append(violations, Violation{
			Kind:   "class_size_out_of_range",
			Detail: "no class-size-feasible assignment was found within the search budget",
		})
		result := BuildResult(c.Name(), initial, initial, sd.Clone(), time.Since(start), iterations, c.Parameters())
		result.ConstraintsSatisfied = false
		result.Violations = violations
		c.tracker.Finish(c.Name(), iterations, initial.FinalScore, initial.FinalScore)
		return result
	}

	final := base.Evaluate(best)
	c.tracker.Finish(c.Name(), iterations, initial.FinalScore, final.FinalScore)
	return BuildResult(c.Name(), initial, final, best, time.Since(start), iterations, c.Parameters())
}

// surrogate computes §4.8's linear objective: a friend-co-placement
// reward, a conflict-co-placement penalty, and a per-class size-deviation
// penalty. It is used only to steer the search; the envelope's score
// always comes from the true scorer (Evaluate), never from here.
func (c *CPSearch) surrogate(base *Base, sd *model.SchoolData, classIDs []string) float64 {
	var score float64
	for _, id := range sd.SortedStudentIDs() {
		s := sd.Students[id]
		for _, friendID := range s.PreferredFriends {
			if friend, ok := sd.Students[friendID]; ok && friend.ClassID == s.ClassID {
				score += c.cfg.ORTools.FriendWeight
			}
		}
		for _, enemyID := range s.DislikedPeers {
			if enemy, ok := sd.Students[enemyID]; ok && enemy.ClassID == s.ClassID {
				score -= c.cfg.ORTools.ConflictPenalty
			}
		}
	}

	target := c.cfg.ORTools.TargetClassSize
	for _, classID := range classIDs {
		size := len(sd.Classes[classID].StudentIDs)
		dev := size - target
		if dev < 0 {
			dev = -dev
		}
		score -= c.cfg.ORTools.BalanceWeight * float64(dev)
	}
	return score
}

// isSizeFeasible enforces the hard class-size-bound constraint: every
// class must fall within target_class_size +/- class_size_tolerance.
func (c *CPSearch) isSizeFeasible(sd *model.SchoolData, classIDs []string) bool {
	target := c.cfg.ORTools.TargetClassSize
	tol := c.cfg.ORTools.ClassSizeTolerance
	for _, classID := range classIDs {
		size := len(sd.Classes[classID].StudentIDs)
		if size < target-tol || size > target+tol {
			return false
		}
	}
	return true
}

// randomNeighbor proposes one candidate move: a relocation of a random
// force_friend group to a random class with probability 1/4 (always, when
// fewer than two ungrouped students exist), otherwise a swap of two random
// ungrouped students; drawing the same student twice, or two classmates,
// leaves the candidate unchanged. Force-class-pinned students are never touched
// (they are excluded from Base.MutableIDs), preserving that hard
// constraint by construction.
func (c *CPSearch) randomNeighbor(base *Base, sd *model.SchoolData, classIDs []string, rng *rand.Rand) *model.SchoolData {
	candidate := sd.Clone()
	mutable := base.MutableIDs()
	if len(mutable) == 0 {
		return candidate
	}

	ungrouped := make([]string, 0, len(mutable))
	groupTokens := make(map[string]bool)
	for _, id := range mutable {
		if token, grouped := base.GroupOf(id); grouped {
			groupTokens[token] = true
		} else {
			ungrouped = append(ungrouped, id)
		}
	}

	useGroup := len(groupTokens) > 0 && (len(ungrouped) < 2 || rng.Intn(4) == 0)
	if useGroup {
		tokens := make([]string, 0, len(groupTokens))
		for token := range groupTokens {
			tokens = append(tokens, token)
		}
		token := tokens[rng.Intn(len(tokens))]
		target := classIDs[rng.Intn(len(classIDs))]
		_ = base.RelocateGroup(candidate, token, target)
		return candidate
	}

	if len(ungrouped) < 2 {
		return candidate
	}
	a := ungrouped[rng.Intn(len(ungrouped))]
	b := ungrouped[rng.Intn(len(ungrouped))]
	if a == b {
		return candidate
	}
	_ = base.Swap(candidate, a, b)
	return candidate
}
