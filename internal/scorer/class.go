package scorer

import "github.com/meshachvetz/meshachvetz/internal/model"

// genderBalance implements §4.2's formula: 100 * (1 - |m-f|/n), clamped to
// [0,100]. A single-gender class of size n>0 scores 0; that includes any
// class of size 1 (|m-f|=1, n=1 gives 100 * (1 - 1) = 0).
func genderBalance(stats model.ClassStats) GenderBalanceDetail {
	detail := GenderBalanceDetail{
		MaleCount:   stats.MaleCount,
		FemaleCount: stats.FemaleCount,
		Size:        stats.Size,
	}
	if stats.Size == 0 {
		return detail
	}
	diff := stats.MaleCount - stats.FemaleCount
	if diff < 0 {
		diff = -diff
	}
	score := 100 * (1 - float64(diff)/float64(stats.Size))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	detail.Score = score
	return detail
}

// classLayer scores every non-empty class and returns the per-class
// details plus the layer's mean gender-balance score (§4.2).
func classLayer(sd *model.SchoolData) (map[string]ClassDetail, float64) {
	classIDs := sd.SortedClassIDs()
	details := make(map[string]ClassDetail, len(classIDs))
	var sum float64
	for _, id := range classIDs {
		stats := sd.Classes[id].Stats(sd.Students)
		gb := genderBalance(stats)
		details[id] = ClassDetail{Score: gb.Score, GenderBalance: gb}
		sum += gb.Score
	}
	var layerScore float64
	if len(classIDs) > 0 {
		layerScore = sum / float64(len(classIDs))
	}
	return details, layerScore
}
