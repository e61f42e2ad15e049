package optimizer

import (
	"math/rand"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/meshachvetz/meshachvetz/internal/config"
	"github.com/meshachvetz/meshachvetz/internal/model"
	"github.com/meshachvetz/meshachvetz/internal/progress"
	"github.com/meshachvetz/meshachvetz/internal/scorer"
)

// Genetic implements C9: a population of complete assignments evolved by
// tournament selection, per-class crossover with conflict repair,
// per-student mutation, and elitism. Score caching is keyed by a canonical
// fingerprint of the assignment (§9 "Score caching in GA").
type Genetic struct {
	cfg     *config.Config
	tracker *progress.Tracker
}

// NewGenetic builds a Genetic strategy.
func NewGenetic(cfg *config.Config, tracker *progress.Tracker) *Genetic {
	return &Genetic{cfg: cfg, tracker: tracker}
}

func (g *Genetic) Name() string { return "Genetic" }

func (g *Genetic) Parameters() map[string]any {
	return map[string]any{
		"population_size":  g.cfg.Genetic.PopulationSize,
		"mutation_rate":    g.cfg.Genetic.MutationRate,
		"tournament_size":  g.cfg.Genetic.TournamentSize,
		"elitism":          g.cfg.Genetic.Elitism,
		"max_generations":  g.cfg.Genetic.MaxGenerations,
		"stagnation_limit": g.cfg.Genetic.StagnationLimit,
		"seed":             g.cfg.Optimizer.Seed,
	}
}

// individual pairs a candidate assignment with its cached score.
type individual struct {
	sd     *model.SchoolData
	result *scorer.Result
}

// fingerprint returns the canonical cache key for sd: its student-ID-sorted
// class assignment, joined, so that two structurally identical assignments
// (even built by different crossover paths) share one cached evaluation.
func fingerprint(sd *model.SchoolData) string {
	ids := sd.SortedStudentIDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id + "=" + sd.Students[id].ClassID
	}
	return strings.Join(parts, ",")
}

func (g *Genetic) Optimize(sd *model.SchoolData) *Result {
	start := time.Now()
	base := NewBase(g.cfg, sd)
	initial := base.Evaluate(sd.Clone())

	classIDs := sd.SortedClassIDs()
	if len(classIDs) == 0 {
		return BuildResult(g.Name(), initial, initial, sd.Clone(), time.Since(start), 0, g.Parameters())
	}

	prng := NewPartitionedRNG(g.cfg.Optimizer.Seed)
	cache := make(map[string]*scorer.Result)

	evaluate := func(candidate *model.SchoolData) *scorer.Result {
		key := fingerprint(candidate)
		if r, ok := cache[key]; ok {
			return r
		}
		r := base.Evaluate(candidate)
		cache[key] = r
		return r
	}

	popSize := g.cfg.Genetic.PopulationSize
	population := make([]individual, popSize)
	for i := 0; i < popSize; i++ {
		ind := sd.Clone()
		g.randomizeAssignment(base, ind, classIDs, prng.For(SubsystemGeneticInit))
		g.repair(base, ind, classIDs, prng.For(SubsystemGeneticInit))
		population[i] = individual{sd: ind, result: evaluate(ind)}
	}

	budget := Budget{
		MaxIterations: g.cfg.Genetic.MaxGenerations,
		TimeLimit:     time.Duration(g.cfg.Optimizer.TimeLimitSeconds * float64(time.Second)),
	}

	g.tracker.Start(g.Name(), g.cfg.Genetic.MaxGenerations)

	best := bestOf(population)
	stagnantFor := 0
	generation := 0

	for ; !budget.Expired(time.Since(start), generation); generation++ {
		scores := make([]float64, len(population))
		for i, ind := range population {
			scores[i] = ind.result.FinalScore
		}
		genBest := floats.Max(scores)
		genMean := floats.Sum(scores) / float64(len(scores))
		_ = genMean // bookkeeping parity with the mean/stagnation fields a richer report would surface

		sort.SliceStable(population, func(i, j int) bool {
			return population[i].result.FinalScore > population[j].result.FinalScore
		})

		if population[0].result.FinalScore > best.result.FinalScore {
			g.tracker.Improvement(generation, best.result.FinalScore, population[0].result.FinalScore)
			best = population[0]
			stagnantFor = 0
		} else {
			stagnantFor++
		}
		g.tracker.Iteration(generation, genBest, best.result.FinalScore)

		if g.cfg.Genetic.StagnationLimit > 0 && stagnantFor >= g.cfg.Genetic.StagnationLimit {
			break
		}

		population = g.nextGeneration(base, population, classIDs, prng, evaluate)
	}

	g.tracker.Finish(g.Name(), generation, initial.FinalScore, best.result.FinalScore)
	return BuildResult(g.Name(), initial, best.result, best.sd, time.Since(start), generation, g.Parameters())
}

func bestOf(population []individual) individual {
	best := population[0]
	for _, ind := range population[1:] {
		if ind.result.FinalScore > best.result.FinalScore {
			best = ind
		}
	}
	return best
}

// randomizeAssignment reassigns every mutable, ungrouped student to a
// uniformly random legal class, and relocates each force_friend group
// (as a unit) to a uniformly random legal class.
func (g *Genetic) randomizeAssignment(base *Base, sd *model.SchoolData, classIDs []string, rng *rand.Rand) {
	seenGroups := make(map[string]bool)
	for _, id := range base.MutableIDs() {
		if token, grouped := base.GroupOf(id); grouped {
			if seenGroups[token] {
				continue
			}
			seenGroups[token] = true
			target := classIDs[rng.Intn(len(classIDs))]
			_ = base.RelocateGroup(sd, token, target)
			continue
		}
		target := classIDs[rng.Intn(len(classIDs))]
		_ = sd.Reassign(id, target)
	}
}

// nextGeneration produces the next population: elitism carries the top E
// individuals unchanged, the rest are filled by tournament-selected
// parents, per-class crossover, conflict repair, and per-student mutation.
func (g *Genetic) nextGeneration(base *Base, population []individual, classIDs []string, prng *PartitionedRNG, evaluate func(*model.SchoolData) *scorer.Result) []individual {
	next := make([]individual, 0, len(population))
	elitism := g.cfg.Genetic.Elitism
	if elitism > len(population) {
		elitism = len(population)
	}
	for i := 0; i < elitism; i++ {
		next = append(next, population[i])
	}

	selectionRNG := prng.For(SubsystemGeneticSelection)
	crossoverRNG := prng.For(SubsystemGeneticCrossover)
	mutationRNG := prng.For(SubsystemGeneticMutation)

	for len(next) < len(population) {
		p1 := g.tournamentSelect(population, selectionRNG)
		p2 := g.tournamentSelect(population, selectionRNG)

		child := g.crossover(base, p1.sd, p2.sd, classIDs, crossoverRNG)
		g.repair(base, child, classIDs, crossoverRNG)
		g.mutate(base, child, classIDs, mutationRNG)
		g.repair(base, child, classIDs, mutationRNG)

		next = append(next, individual{sd: child, result: evaluate(child)})
	}
	return next
}

func (g *Genetic) tournamentSelect(population []individual, rng *rand.Rand) individual {
	k := g.cfg.Genetic.TournamentSize
	if k <= 0 || k > len(population) {
		k = len(population)
	}
	best := population[rng.Intn(len(population))]
	for i := 1; i < k; i++ {
		challenger := population[rng.Intn(len(population))]
		if challenger.result.FinalScore > best.result.FinalScore {
			best = challenger
		}
	}
	return best
}

// crossover builds an offspring by picking, for each class, its membership
// list from one parent uniformly at random (§4.7 step 3). Each student
// carries exactly one ClassID, so a student listed by both chosen parents
// simply ends up in the last class processed; repair then re-pins
// constraints and rebalances class sizes.
func (g *Genetic) crossover(base *Base, p1, p2 *model.SchoolData, classIDs []string, rng *rand.Rand) *model.SchoolData {
	child := p1.Clone()
	for _, classID := range classIDs {
		source := p1
		if rng.Intn(2) == 1 {
			source = p2
		}
		for _, id := range source.Classes[classID].StudentIDs {
			if _, grouped := base.GroupOf(id); grouped {
				continue // groups are repaired as a unit below, not assigned per-member here
			}
			if s, ok := child.StudentByID(id); ok && !s.HasForceClass() {
				_ = child.Reassign(id, classID)
			}
		}
	}
	return child
}

// repair implements §4.7 step 6: re-pins force_class students, re-unifies
// force_friend groups onto one member's class, and then runs a greedy
// size-balancing pass (below), so every generation's individuals satisfy
// the force constraints by construction.
func (g *Genetic) repair(base *Base, sd *model.SchoolData, classIDs []string, rng *rand.Rand) {
	for _, id := range sd.SortedStudentIDs() {
		s := sd.Students[id]
		if s.HasForceClass() && s.ClassID != s.ForceClass {
			_ = sd.Reassign(id, s.ForceClass)
		}
	}

	seenGroups := make(map[string]bool)
	for _, id := range sd.SortedStudentIDs() {
		token, grouped := base.GroupOf(id)
		if !grouped || seenGroups[token] {
			continue
		}
		seenGroups[token] = true
		members := base.GroupMembers(token)
		target := sd.Students[members[0]].ClassID
		for _, m := range members[1:] {
			if sd.Students[m].ClassID != target {
				_ = sd.Reassign(m, target)
			}
		}
	}

	// Greedy load-balancing pass: while the most-loaded class holds more than
	// an even split (len(students)/len(classes), rounded down), relocate one
	// unpinned, ungrouped student from it to the least-loaded class, at most
	// one move per class ID — keeps class sizes from collapsing without
	// re-deriving a full assignment from scratch.
	target := len(sd.Students) / len(classIDs)
	if target == 0 {
		return
	}
	for pass := 0; pass < len(classIDs); pass++ {
		least, most := leastAndMostLoaded(sd, classIDs)
		if len(sd.Classes[most].StudentIDs) <= target {
			break
		}
		moved := false
		for _, id := range sd.Classes[most].StudentIDs {
			s := sd.Students[id]
			if s.HasForceClass() {
				continue
			}
			if _, grouped := base.GroupOf(id); grouped {
				continue
			}
			_ = sd.Reassign(id, least)
			moved = true
			break
		}
		if !moved {
			break
		}
	}
	_ = rng // reserved: future tie-break randomization among equally-loaded classes
}

func leastAndMostLoaded(sd *model.SchoolData, classIDs []string) (least, most string) {
	least, most = classIDs[0], classIDs[0]
	for _, id := range classIDs {
		n := len(sd.Classes[id].StudentIDs)
		if n < len(sd.Classes[least].StudentIDs) {
			least = id
		}
		if n > len(sd.Classes[most].StudentIDs) {
			most = id
		}
	}
	return least, most
}

// mutate implements §4.7 step 4: with probability μ per student, reassign
// to a random legal class or swap with a random peer. Pinned students are
// skipped entirely; grouped students are skipped here and handled only via
// randomizeAssignment/repair's group relocation.
func (g *Genetic) mutate(base *Base, sd *model.SchoolData, classIDs []string, rng *rand.Rand) {
	mu := g.cfg.Genetic.MutationRate
	for _, id := range base.MutableIDs() {
		if _, grouped := base.GroupOf(id); grouped {
			continue
		}
		if rng.Float64() >= mu {
			continue
		}
		if rng.Intn(2) == 0 {
			target := classIDs[rng.Intn(len(classIDs))]
			_ = sd.Reassign(id, target)
		} else {
			peers := base.MutableIDs()
			peer := peers[rng.Intn(len(peers))]
			if _, grouped := base.GroupOf(peer); grouped || peer == id {
				continue
			}
			s, _ := sd.StudentByID(id)
			p, _ := sd.StudentByID(peer)
			sClass, pClass := s.ClassID, p.ClassID
			_ = sd.Reassign(id, pClass)
			_ = sd.Reassign(peer, sClass)
		}
	}
}
