package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshachvetz/meshachvetz/internal/config"
	"github.com/meshachvetz/meshachvetz/internal/progress"
)

func TestLocalSearch_NeverRegressesBelowInitialScore(t *testing.T) {
	sd := twoClassRoster(20)
	// give every even-indexed student a friend in the other class, so there
	// is room for local search to actually improve the assignment.
	for i := 0; i < 20; i += 2 {
		s, _ := sd.StudentByID(sid(i))
		s.PreferredFriends = []string{sid(i + 1)}
	}

	cfg := config.Default()
	cfg.Optimizer.Algorithm = "local_search"
	cfg.Optimizer.MaxPasses = 5
	cfg.Optimizer.CandidateSample = 10

	ls := NewLocalSearch(cfg, progress.NewTracker(progress.LevelMinimal, nil))
	result := ls.Optimize(sd)

	assert.GreaterOrEqual(t, result.FinalScore, result.InitialScore-1e-9)
}

func TestLocalSearch_HonorsForceClassPinning(t *testing.T) {
	sd := twoClassRoster(10)
	s, _ := sd.StudentByID(sid(0))
	s.ForceClass = s.ClassID // already compliant at load time, per invariant 3

	// give the pinned student an attractive reason to move, so the test
	// actually exercises the pin rather than passing by coincidence.
	s.PreferredFriends = []string{sid(1)} // sid(1) is in class B

	cfg := config.Default()
	cfg.Optimizer.MaxPasses = 10
	cfg.Optimizer.CandidateSample = 10

	ls := NewLocalSearch(cfg, progress.NewTracker(progress.LevelMinimal, nil))
	result := ls.Optimize(sd)

	final, ok := result.OptimizedSchoolData.StudentByID(sid(0))
	require.True(t, ok)
	assert.Equal(t, s.ForceClass, final.ClassID)
	assert.True(t, result.ConstraintsSatisfied)
}

func TestLocalSearch_PreservesForceFriendGroupAcrossMoves(t *testing.T) {
	sd := twoClassRoster(12)
	a, _ := sd.StudentByID(sid(0))
	b, _ := sd.StudentByID(sid(2))
	c, _ := sd.StudentByID(sid(4))
	a.ForceFriend, b.ForceFriend, c.ForceFriend = "g1", "g1", "g1"
	b.ClassID, c.ClassID = a.ClassID, a.ClassID // co-assigned at load time, per invariant 4

	// give the group a reason to want to move: a shared dislike of another
	// same-class peer, so the optimizer actually considers relocating it.
	a.DislikedPeers = []string{sid(6)}

	cfg := config.Default()
	cfg.Optimizer.MaxPasses = 10
	cfg.Optimizer.CandidateSample = 10

	ls := NewLocalSearch(cfg, progress.NewTracker(progress.LevelMinimal, nil))
	result := ls.Optimize(sd)

	finalA, _ := result.OptimizedSchoolData.StudentByID(sid(0))
	finalB, _ := result.OptimizedSchoolData.StudentByID(sid(2))
	finalC, _ := result.OptimizedSchoolData.StudentByID(sid(4))
	assert.Equal(t, finalA.ClassID, finalB.ClassID, "force_friend group must stay co-assigned")
	assert.Equal(t, finalA.ClassID, finalC.ClassID, "force_friend group must stay co-assigned")
	assert.True(t, result.ConstraintsSatisfied)
}
