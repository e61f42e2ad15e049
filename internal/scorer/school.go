package scorer

import (
	"gonum.org/v1/gonum/stat"

	"github.com/meshachvetz/meshachvetz/internal/config"
	"github.com/meshachvetz/meshachvetz/internal/model"
)

// balanceScore turns a population standard deviation into a [0,100] score
// via the configured normalization factor (§4.3): max(0, 100 - σ*factor).
func balanceScore(values []float64, factor float64) SchoolMetricDetail {
	if len(values) < 2 {
		// Fewer than two classes: σ is degenerate (undefined or trivially
		// zero), so the sub-score is a clean 100 per §4.3's edge case.
		return SchoolMetricDetail{Score: 100, StdDev: 0}
	}
	_, sigma := stat.PopMeanStdDev(values, nil)
	score := 100 - sigma*factor
	if score < 0 {
		score = 0
	}
	return SchoolMetricDetail{Score: score, StdDev: sigma}
}

// schoolLayer computes the four cross-class balance sub-metrics (§4.3) and
// their weighted mean.
func schoolLayer(sd *model.SchoolData, cfg *config.Config) (SchoolDetail, float64) {
	classIDs := sd.SortedClassIDs()

	academic := make([]float64, 0, len(classIDs))
	behavior := make([]float64, 0, len(classIDs))
	size := make([]float64, 0, len(classIDs))
	assistance := make([]float64, 0, len(classIDs))

	for _, id := range classIDs {
		stats := sd.Classes[id].Stats(sd.Students)
		academic = append(academic, stats.MeanAcademic)
		behavior = append(behavior, stats.MeanBehaviorRank)
		size = append(size, float64(stats.Size))
		assistance = append(assistance, float64(stats.AssistanceCount))
	}

	detail := SchoolDetail{
		AcademicBalance:   balanceScore(academic, cfg.NormalizationFactors.AcademicFactor),
		BehaviorBalance:   balanceScore(behavior, cfg.NormalizationFactors.BehaviorFactor),
		SizeBalance:       balanceScore(size, cfg.NormalizationFactors.SizeFactor),
		AssistanceBalance: balanceScore(assistance, cfg.NormalizationFactors.AssistanceFactor),
	}

	w := cfg.SchoolWeights
	layerScore := w.Academic*detail.AcademicBalance.Score +
		w.Behavior*detail.BehaviorBalance.Score +
		w.Size*detail.SizeBalance.Score +
		w.Assistance*detail.AssistanceBalance.Score

	return detail, layerScore
}
