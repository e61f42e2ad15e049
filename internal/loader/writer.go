package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/meshachvetz/meshachvetz/internal/model"
)

// WriteRoster writes sd back out in the same column layout LoadRoster
// reads, so a load -> score -> write -> reload round trip reproduces an
// identical score (§8 testable property 7). It is not part of the core
// contract; it exists because nothing else in this module can perform the
// round trip the property requires.
func WriteRoster(path string, sd *model.SchoolData) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating roster %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // flushed explicitly below

	w := csv.NewWriter(file)
	if err := w.Write(expectedHeader); err != nil {
		return fmt.Errorf("writing roster header to %s: %w", path, err)
	}

	for _, id := range sd.SortedStudentIDs() {
		s := sd.Students[id]
		record := []string{
			s.ID,
			s.FirstName,
			s.LastName,
			string(s.Gender),
			s.ClassID,
			strconv.FormatFloat(s.AcademicScore, 'f', -1, 64),
			string(s.BehaviorRank),
			string(s.StudentialityRank),
			strconv.FormatBool(s.AssistancePackage),
			strings.Join(s.PreferredFriends, ";"),
			strings.Join(s.DislikedPeers, ";"),
			s.ForceClass,
			s.ForceFriend,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing roster row for student %s: %w", s.ID, err)
		}
	}
	w.Flush()
	return w.Error()
}
