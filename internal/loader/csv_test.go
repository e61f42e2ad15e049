package loader_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshachvetz/meshachvetz/internal/config"
	"github.com/meshachvetz/meshachvetz/internal/loader"
	"github.com/meshachvetz/meshachvetz/internal/model"
	"github.com/meshachvetz/meshachvetz/internal/scorer"
)

func testdataPath(t *testing.T, name string) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "testdata", name)
}

func TestLoadRoster_ImputesMissingAcademicScoreAsMeanOfPresentValues(t *testing.T) {
	sd, summary, err := loader.LoadRoster(testdataPath(t, "roster_imputation.csv"))
	require.NoError(t, err)

	assert.Len(t, summary.AcademicScoreImputed, 5)
	assert.InDelta(t, 79.733, summary.AcademicScoreMean, 0.01)

	for _, id := range summary.AcademicScoreImputed {
		s, ok := sd.StudentByID(id)
		require.True(t, ok)
		assert.InDelta(t, summary.AcademicScoreMean, s.AcademicScore, 1e-9)
	}
}

func TestLoadRoster_ImputesMissingBehaviorRankAsModeOfPresentValues(t *testing.T) {
	sd, summary, err := loader.LoadRoster(testdataPath(t, "roster_imputation.csv"))
	require.NoError(t, err)

	assert.Len(t, summary.BehaviorRankImputed, 3)
	assert.Equal(t, model.RankB, summary.BehaviorRankMode)

	for _, id := range summary.BehaviorRankImputed {
		s, ok := sd.StudentByID(id)
		require.True(t, ok)
		assert.Equal(t, model.RankB, s.BehaviorRank)
	}
}

func TestLoadRoster_DropsDanglingFriendReferenceWithWarning(t *testing.T) {
	sd, summary, err := loader.LoadRoster(testdataPath(t, "roster_imputation.csv"))
	require.NoError(t, err)

	require.NotEmpty(t, summary.DanglingReferencesDropped)

	s, ok := sd.StudentByID("100000000")
	require.True(t, ok)
	for _, f := range s.PreferredFriends {
		assert.True(t, model.ValidID(f))
		_, known := sd.StudentByID(f)
		assert.True(t, known, "dangling reference %s should have been dropped", f)
	}
}

func TestLoadRoster_PreservesForceFriendGroup(t *testing.T) {
	sd, _, err := loader.LoadRoster(testdataPath(t, "roster_imputation.csv"))
	require.NoError(t, err)

	for _, id := range []string{"100000005", "100000006", "100000007"} {
		s, ok := sd.StudentByID(id)
		require.True(t, ok)
		assert.Equal(t, "groupX", s.ForceFriend)
	}
}

func TestLoadRoster_UnknownFileReturnsError(t *testing.T) {
	_, _, err := loader.LoadRoster(testdataPath(t, "does-not-exist.csv"))
	assert.Error(t, err)
}

func TestRoundTrip_WriteThenReloadReproducesIdenticalScore(t *testing.T) {
	sd, _, err := loader.LoadRoster(testdataPath(t, "roster_imputation.csv"))
	require.NoError(t, err)

	cfg := config.Default()
	before := scorer.Evaluate(sd, cfg)

	outPath := filepath.Join(t.TempDir(), "roundtrip.csv")
	require.NoError(t, loader.WriteRoster(outPath, sd))

	reloaded, _, err := loader.LoadRoster(outPath)
	require.NoError(t, err)
	after := scorer.Evaluate(reloaded, cfg)

	assert.InDelta(t, before.FinalScore, after.FinalScore, 1e-9)
}
