package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshachvetz/meshachvetz/internal/config"
	"github.com/meshachvetz/meshachvetz/internal/progress"
	"github.com/meshachvetz/meshachvetz/internal/scorer"
)

func smallCPConfig(size int) *config.Config {
	cfg := config.Default()
	cfg.Optimizer.Algorithm = "or_tools"
	cfg.Optimizer.Seed = 7
	cfg.Optimizer.TimeLimitSeconds = 1
	cfg.Optimizer.MaxIterations = 200
	cfg.ORTools.TargetClassSize = size
	cfg.ORTools.ClassSizeTolerance = 2
	return cfg
}

func TestCPSearch_ReportsTrueScoreNotSurrogate(t *testing.T) {
	sd := twoClassRoster(10)
	cfg := smallCPConfig(5)

	cp := NewCPSearch(cfg, progress.NewTracker(progress.LevelMinimal, nil))
	result := cp.Optimize(sd)

	want := scorer.Evaluate(result.OptimizedSchoolData, cfg)
	assert.InDelta(t, want.FinalScore, result.FinalScore, 1e-9, "OptimizationResult.FinalScore must be the true scorer output, not the surrogate objective")
}

func TestCPSearch_RespectsClassSizeBounds(t *testing.T) {
	sd := twoClassRoster(10)
	cfg := smallCPConfig(5)

	cp := NewCPSearch(cfg, progress.NewTracker(progress.LevelMinimal, nil))
	result := cp.Optimize(sd)

	require.True(t, result.ConstraintsSatisfied)
	for _, classID := range result.OptimizedSchoolData.SortedClassIDs() {
		size := len(result.OptimizedSchoolData.Classes[classID].StudentIDs)
		assert.GreaterOrEqual(t, size, cfg.ORTools.TargetClassSize-cfg.ORTools.ClassSizeTolerance)
		assert.LessOrEqual(t, size, cfg.ORTools.TargetClassSize+cfg.ORTools.ClassSizeTolerance)
	}
}

func TestCPSearch_HonorsForceClassPinning(t *testing.T) {
	sd := twoClassRoster(10)
	pinned, _ := sd.StudentByID(sid(0))
	pinned.ForceClass = pinned.ClassID

	cfg := smallCPConfig(5)
	cp := NewCPSearch(cfg, progress.NewTracker(progress.LevelMinimal, nil))
	result := cp.Optimize(sd)

	final, _ := result.OptimizedSchoolData.StudentByID(sid(0))
	assert.Equal(t, pinned.ForceClass, final.ClassID)
}
