package optimizer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshachvetz/meshachvetz/internal/config"
	"github.com/meshachvetz/meshachvetz/internal/model"
)

func sid(i int) string { return fmt.Sprintf("1%08d", i) }

func twoClassRoster(n int) *model.SchoolData {
	students := make([]*model.Student, 0, n)
	for i := 0; i < n; i++ {
		class := "A"
		if i%2 == 1 {
			class = "B"
		}
		gender := model.GenderMale
		if i%2 == 0 {
			gender = model.GenderFemale
		}
		students = append(students, &model.Student{
			ID:                sid(i),
			FirstName:         "First",
			LastName:          "Last",
			Gender:            gender,
			ClassID:           class,
			AcademicScore:     75,
			BehaviorRank:      model.RankB,
			StudentialityRank: model.RankB,
		})
	}
	return model.NewSchoolData(students)
}

func TestCheckConstraints_DetectsForceClassViolation(t *testing.T) {
	sd := twoClassRoster(4)
	s, ok := sd.StudentByID(sid(0))
	require.True(t, ok)
	s.ForceClass = "Z" // sd.Students[sid(0)].ClassID is "A", not "Z"

	violations := CheckConstraints(sd)
	require.NotEmpty(t, violations)
	assert.Equal(t, "force_class_violation", violations[0].Kind)
}

func TestMove_RedirectsGroupedStudentToRelocateGroup(t *testing.T) {
	sd := twoClassRoster(6)
	a, _ := sd.StudentByID(sid(0))
	b, _ := sd.StudentByID(sid(2))
	a.ForceFriend = "g1"
	b.ForceFriend = "g1"

	base := NewBase(config.Default(), sd)
	require.NoError(t, base.Move(sd, sid(0), "B"))

	aAfter, _ := sd.StudentByID(sid(0))
	bAfter, _ := sd.StudentByID(sid(2))
	assert.Equal(t, "B", aAfter.ClassID)
	assert.Equal(t, "B", bAfter.ClassID, "grouped student should have moved along with sid(0)")
}

func TestSwap_RejectsPinnedStudent(t *testing.T) {
	sd := twoClassRoster(4)
	s, _ := sd.StudentByID(sid(0))
	s.ForceClass = s.ClassID

	base := NewBase(config.Default(), sd)
	err := base.Swap(sd, sid(0), sid(1))
	assert.Error(t, err)
}

func TestBuildResult_StampsNonEmptyRunID(t *testing.T) {
	sd := twoClassRoster(4)
	base := NewBase(config.Default(), sd)
	r := base.Evaluate(sd)
	result := BuildResult("Test", r, r, sd, 0, 0, nil)
	assert.NotEmpty(t, result.RunID)
}
