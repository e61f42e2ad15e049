package scorer

import (
	"github.com/meshachvetz/meshachvetz/internal/config"
	"github.com/meshachvetz/meshachvetz/internal/model"
)

// scoreStudent computes one student's friend-satisfaction and
// conflict-avoidance sub-scores against their current class (§4.1).
func scoreStudent(sd *model.SchoolData, s *model.Student, cfg *config.Config) StudentDetail {
	class := sd.Classes[s.ClassID]
	classmates := make(map[string]bool, len(class.StudentIDs))
	for _, id := range class.StudentIDs {
		if id != s.ID {
			classmates[id] = true
		}
	}

	friendSat, placed := friendSatisfaction(s, classmates)
	conflictAv, conflicts := conflictAvoidance(s, classmates, cfg.PenaltyMultiplier)

	score := cfg.StudentWeights.Friends*friendSat + cfg.StudentWeights.Dislikes*conflictAv

	return StudentDetail{
		Score:              score,
		FriendSatisfaction: friendSat,
		ConflictAvoidance:  conflictAv,
		FriendsRequested:   len(s.PreferredFriends),
		FriendsPlaced:      placed,
		DislikesTotal:      len(s.DislikedPeers),
		ConflictsPresent:   conflicts,
	}
}

// friendSatisfaction implements §4.1's friend-satisfaction formula:
// R=0 scores 100 (nothing requested, nothing to miss); otherwise
// 100 * |preferred ∩ classmates| / R.
func friendSatisfaction(s *model.Student, classmates map[string]bool) (score float64, placed int) {
	r := len(s.PreferredFriends)
	if r == 0 {
		return 100, 0
	}
	for _, f := range s.PreferredFriends {
		if classmates[f] {
			placed++
		}
	}
	return 100 * float64(placed) / float64(r), placed
}

// conflictAvoidance implements §4.1's conflict-avoidance formula, clamped
// to 0 per the spec's resolved Open Question (a): a penalty_multiplier
// greater than 1 can otherwise drive the raw value negative.
func conflictAvoidance(s *model.Student, classmates map[string]bool, penaltyMultiplier float64) (score float64, conflicts []string) {
	d := len(s.DislikedPeers)
	if d == 0 {
		return 100, nil
	}
	for _, peer := range s.DislikedPeers {
		if classmates[peer] {
			conflicts = append(conflicts, peer)
		}
	}
	k := len(conflicts)
	raw := 100 - 100*float64(k)/float64(d)*penaltyMultiplier
	if raw < 0 {
		raw = 0
	}
	return raw, conflicts
}

// studentLayer scores every student and returns the per-student details
// plus the layer's unweighted mean (§4.1).
func studentLayer(sd *model.SchoolData, cfg *config.Config) (map[string]StudentDetail, float64) {
	ids := sd.SortedStudentIDs()
	details := make(map[string]StudentDetail, len(ids))
	var sum float64
	for _, id := range ids {
		d := scoreStudent(sd, sd.Students[id], cfg)
		details[id] = d
		sum += d.Score
	}
	var layerScore float64
	if len(ids) > 0 {
		layerScore = sum / float64(len(ids))
	}
	return details, layerScore
}
