// Package loader reads a student roster from CSV, validates it, and
// imputes missing academic_score/behavior_rank values before handing a
// model.SchoolData to the scorer/optimizer. This sits outside the core's
// contract (the core only ever sees a validated SchoolData) but the E2E
// "missing-value imputation" scenario requires something to do the
// imputing, so it is grounded on the teacher's own CSV-ingestion idiom
// (sim/workload/convert.go:ConvertCSVTrace) rather than invented fresh.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/meshachvetz/meshachvetz/internal/model"
)

// expected CSV header, in order. Extra trailing columns are tolerated so a
// future imputation-summary column can append to the format cleanly, but
// every one of these must be present and in this order.
var expectedHeader = []string{
	"student_id", "first_name", "last_name", "gender", "class_id",
	"academic_score", "behavior_rank", "studentiality_rank",
	"assistance_package", "preferred_friends", "disliked_peers",
	"force_class", "force_friend",
}

// ImputationSummary reports what LoadRoster had to fill in, for the
// caller (typically the CLI) to surface to the user; the core scorer and
// optimizer never see this, only the resulting SchoolData (§7: validation
// is fatal at load, never visible to the core).
type ImputationSummary struct {
	AcademicScoreImputed     []string // student IDs whose academic_score was filled from the roster mean
	AcademicScoreMean        float64
	BehaviorRankImputed      []string // student IDs whose behavior_rank was filled from the roster mode
	BehaviorRankMode         model.BehaviorRank
	DanglingReferencesDropped []string // warnings, one per dropped dangling friend/dislike reference
}

// LoadRoster reads path as a CSV roster, imputes missing academic_score
// (column mean of the remaining rows) and missing behavior_rank (column
// mode of the remaining rows), drops dangling friend/dislike references
// with a logged warning (spec invariant 2), and returns the resulting
// SchoolData plus a summary of what was imputed/dropped. A malformed row,
// duplicate ID, or out-of-range value is a fatal load error (§7); it never
// reaches the core.
func LoadRoster(path string) (*model.SchoolData, *ImputationSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening roster %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // read-only file

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading roster header from %s: %w", path, err)
	}
	if err := checkHeader(header); err != nil {
		return nil, nil, fmt.Errorf("roster %s: %w", path, err)
	}

	type rawRow struct {
		student       *model.Student
		academicMissing bool
		behaviorMissing bool
	}
	var rows []rawRow
	seen := make(map[string]bool)
	rowIdx := 1 // header was row 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("roster %s row %d: %w", path, rowIdx, err)
		}
		if len(record) < len(expectedHeader) {
			return nil, nil, fmt.Errorf("roster %s row %d: expected at least %d columns, got %d", path, rowIdx, len(expectedHeader), len(record))
		}

		s := &model.Student{
			ID:        strings.TrimSpace(record[0]),
			FirstName: strings.TrimSpace(record[1]),
			LastName:  strings.TrimSpace(record[2]),
			Gender:    model.Gender(strings.TrimSpace(record[3])),
			ClassID:   strings.TrimSpace(record[4]),
		}
		if !model.ValidID(s.ID) {
			return nil, nil, fmt.Errorf("roster %s row %d: student_id %q must be exactly 9 digits", path, rowIdx, s.ID)
		}
		if seen[s.ID] {
			return nil, nil, fmt.Errorf("roster %s row %d: duplicate student_id %q", path, rowIdx, s.ID)
		}
		seen[s.ID] = true

		academicMissing := strings.TrimSpace(record[5]) == ""
		if !academicMissing {
			score, err := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("roster %s row %d: invalid academic_score %q: %w", path, rowIdx, record[5], err)
			}
			if score < 0 || score > 100 {
				return nil, nil, fmt.Errorf("roster %s row %d: academic_score %v out of [0,100]", path, rowIdx, score)
			}
			s.AcademicScore = score
		}

		behaviorMissing := strings.TrimSpace(record[6]) == ""
		if !behaviorMissing {
			rank := model.BehaviorRank(strings.ToUpper(strings.TrimSpace(record[6])))
			if !rank.Valid() {
				return nil, nil, fmt.Errorf("roster %s row %d: behavior_rank %q invalid", path, rowIdx, record[6])
			}
			s.BehaviorRank = rank
		}

		studentialityRank := model.BehaviorRank(strings.ToUpper(strings.TrimSpace(record[7])))
		if !studentialityRank.Valid() {
			return nil, nil, fmt.Errorf("roster %s row %d: studentiality_rank %q invalid", path, rowIdx, record[7])
		}
		s.StudentialityRank = studentialityRank

		assistance, err := parseBool(strings.TrimSpace(record[8]))
		if err != nil {
			return nil, nil, fmt.Errorf("roster %s row %d: invalid assistance_package %q: %w", path, rowIdx, record[8], err)
		}
		s.AssistancePackage = assistance

		s.PreferredFriends = model.DedupeIDs(splitIDs(record[9]))
		s.DislikedPeers = model.DedupeIDs(splitIDs(record[10]))
		if len(record) > 11 {
			s.ForceClass = strings.TrimSpace(record[11])
		}
		if len(record) > 12 {
			s.ForceFriend = strings.TrimSpace(record[12])
		}

		if !academicMissing && !behaviorMissing {
			if err := s.Validate(); err != nil {
				return nil, nil, fmt.Errorf("roster %s row %d: %w", path, rowIdx, err)
			}
		}

		rows = append(rows, rawRow{student: s, academicMissing: academicMissing, behaviorMissing: behaviorMissing})
		rowIdx++
	}

	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("roster %s: no data rows", path)
	}

	summary := &ImputationSummary{}

	var academicSum float64
	var academicCount int
	behaviorCounts := map[model.BehaviorRank]int{}
	for _, r := range rows {
		if !r.academicMissing {
			academicSum += r.student.AcademicScore
			academicCount++
		}
		if !r.behaviorMissing {
			behaviorCounts[r.student.BehaviorRank]++
		}
	}

	var academicMean float64
	if academicCount > 0 {
		academicMean = academicSum / float64(academicCount)
	}
	summary.AcademicScoreMean = academicMean

	behaviorMode := modeOf(behaviorCounts)
	summary.BehaviorRankMode = behaviorMode

	students := make([]*model.Student, 0, len(rows))
	for _, r := range rows {
		s := r.student
		if r.academicMissing {
			s.AcademicScore = academicMean
			summary.AcademicScoreImputed = append(summary.AcademicScoreImputed, s.ID)
		}
		if r.behaviorMissing {
			s.BehaviorRank = behaviorMode
			summary.BehaviorRankImputed = append(summary.BehaviorRankImputed, s.ID)
		}
		if err := s.Validate(); err != nil {
			return nil, nil, fmt.Errorf("roster %s: student %s failed validation after imputation: %w", path, s.ID, err)
		}
		students = append(students, s)
	}

	sd := model.NewSchoolData(students)

	for _, detail := range sd.ValidateReferences() {
		logrus.WithField("roster", path).Warn(detail)
		summary.DanglingReferencesDropped = append(summary.DanglingReferencesDropped, detail)
	}
	sd = dropDanglingReferences(sd)

	return sd, summary, nil
}

func checkHeader(header []string) error {
	if len(header) < len(expectedHeader) {
		return fmt.Errorf("header has %d columns, expected at least %d (%s)", len(header), len(expectedHeader), strings.Join(expectedHeader, ","))
	}
	for i, want := range expectedHeader {
		if strings.TrimSpace(strings.ToLower(header[i])) != want {
			return fmt.Errorf("header column %d: expected %q, got %q", i, want, header[i])
		}
	}
	return nil
}

func splitIDs(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	parts := strings.Split(field, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "false", "no":
		return false, nil
	case "1", "true", "yes":
		return true, nil
	default:
		return false, fmt.Errorf("not a recognized boolean")
	}
}

// modeOf returns the most frequent rank, breaking ties by alphabetical
// rank (A before B before C before D) for determinism.
func modeOf(counts map[model.BehaviorRank]int) model.BehaviorRank {
	ranks := []model.BehaviorRank{model.RankA, model.RankB, model.RankC, model.RankD}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })
	best := model.RankA
	bestCount := -1
	for _, r := range ranks {
		if counts[r] > bestCount {
			best = r
			bestCount = counts[r]
		}
	}
	return best
}

// dropDanglingReferences strips any preferred_friends/disliked_peers entry
// that does not resolve to a roster member (spec invariant 2: downgraded
// to a warning at load, never surfaced to the core as an error).
func dropDanglingReferences(sd *model.SchoolData) *model.SchoolData {
	for _, id := range sd.SortedStudentIDs() {
		s := sd.Students[id]
		s.PreferredFriends = filterKnown(sd, s.PreferredFriends)
		s.DislikedPeers = filterKnown(sd, s.DislikedPeers)
	}
	return sd
}

func filterKnown(sd *model.SchoolData, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := sd.StudentByID(id); ok {
			out = append(out, id)
		}
	}
	return out
}
