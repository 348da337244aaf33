package sectioning

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/sectioning/internal/app/models"
	"github.com/campusflow/sectioning/internal/pkg/apperrors"
)

func requested(course models.CourseID, configID int64, sections ...int64) models.Request {
	return &models.CourseRequest{
		Courses: []models.CourseID{course},
		Enrollment: &models.Enrollment{
			StudentID:  9001,
			Course:     course,
			ConfigID:   configID,
			SectionIDs: sections,
		},
	}
}

func codesOf(msgs []ErrorMessage) []string {
	codes := make([]string, 0, len(msgs))
	for _, m := range msgs {
		codes = append(codes, m.Code)
	}
	return codes
}

func TestCheckRequests_CleanSchedule(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering()), nil, Options{})
	student := csStudent()

	msgs, err := engine.CheckRequests(student, []models.Request{requested(cs101ID, 1, 111, 112)})

	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestCheckRequests_BrokenReferencesAreFatal(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering()), nil, Options{})
	student := csStudent()

	t.Run("unknown course", func(t *testing.T) {
		ghost := models.CourseID{ID: 999, OfferingID: 99, Subject: "XX", Number: "999"}
		msgs, err := engine.CheckRequests(student, []models.Request{requested(ghost, 1, 111)})
		assert.Nil(t, msgs)
		assert.True(t, errors.Is(err, apperrors.ErrCourseNotFound))
	})

	t.Run("unknown section", func(t *testing.T) {
		msgs, err := engine.CheckRequests(student, []models.Request{requested(cs101ID, 1, 999)})
		assert.Nil(t, msgs)
		assert.True(t, errors.Is(err, apperrors.ErrSectionNotAvailable))
	})
}

func TestCheckRequests_CancelledSection(t *testing.T) {
	catalog := newMemCatalog(mathOffering())
	math200 := models.CourseID{ID: 201, OfferingID: 20, Subject: "MATH", Number: "200", Title: "Calculus"}

	t.Run("reported for a new enrollment", func(t *testing.T) {
		engine := NewEngine(catalog, nil, Options{})
		msgs, err := engine.CheckRequests(&models.Student{ID: 9001, SessionID: 1}, []models.Request{requested(math200, 2, 211)})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, CodeCancelled, msgs[0].Code)
		assert.Equal(t, "2001", msgs[0].Section)
	})

	t.Run("kept section passes when allowed", func(t *testing.T) {
		engine := NewEngine(catalog, nil, Options{KeepCancelledClasses: true})
		student := &models.Student{ID: 9001, SessionID: 1}
		student.Requests = []models.Request{requested(math200, 2, 211)}

		msgs, err := engine.CheckRequests(student, []models.Request{requested(math200, 2, 211)})
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestCheckRequests_Deadlines(t *testing.T) {
	catalog := newMemCatalog(csOffering(), physOffering())

	t.Run("new enrollment deadline", func(t *testing.T) {
		engine := NewEngine(catalog, closedDeadlines{DeadlineNew: true}, Options{})
		msgs, err := engine.CheckRequests(csStudent(), []models.Request{requested(cs101ID, 1, 111, 112)})
		require.NoError(t, err)
		assert.Equal(t, []string{CodeDeadline, CodeDeadline}, codesOf(msgs))
	})

	t.Run("change deadline hits only added sections", func(t *testing.T) {
		engine := NewEngine(catalog, closedDeadlines{DeadlineChange: true}, Options{})
		msgs, err := engine.CheckRequests(csStudent(111, 112), []models.Request{requested(cs101ID, 1, 113, 112)})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, CodeDeadline, msgs[0].Code)
		assert.Equal(t, "1003", msgs[0].Section)
	})

	t.Run("drop deadline covers implicitly dropped courses", func(t *testing.T) {
		engine := NewEngine(catalog, closedDeadlines{DeadlineDrop: true}, Options{})
		msgs, err := engine.CheckRequests(csStudent(111, 112), []models.Request{requested(phys152ID, 3, 311)})
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "1001", msgs[0].Section)
		assert.Equal(t, "1002", msgs[1].Section)
		for _, m := range msgs {
			assert.Equal(t, CodeDeadline, m.Code)
			assert.Equal(t, "CS 101", m.Course)
		}
	})
}

func TestCheckRequests_SectionCapacity(t *testing.T) {
	taken := models.Enrollment{
		StudentID: 8000,
		Course:    phys152ID,
		ConfigID:  3, SectionIDs: []int64{311},
	}

	t.Run("full section is reported", func(t *testing.T) {
		catalog := newMemCatalog(physOffering()).enroll(taken)
		engine := NewEngine(catalog, nil, Options{})
		msgs, err := engine.CheckRequests(&models.Student{ID: 9001, SessionID: 1}, []models.Request{requested(phys152ID, 3, 311)})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, CodeNotAvailable, msgs[0].Code)
		assert.Equal(t, "3001", msgs[0].Section)
	})

	t.Run("own seat does not count against the student", func(t *testing.T) {
		mine := taken
		mine.StudentID = 9001
		catalog := newMemCatalog(physOffering()).enroll(mine)
		engine := NewEngine(catalog, nil, Options{})
		msgs, err := engine.CheckRequests(&models.Student{ID: 9001, SessionID: 1}, []models.Request{requested(phys152ID, 3, 311)})
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("a 9999 limit means unlimited", func(t *testing.T) {
		offering := physOffering()
		offering.Courses[0].Limit = 9999
		offering.Configs[0].Limit = 9999
		offering.Configs[0].Subparts[0].Sections[0].Limit = 9999
		catalog := newMemCatalog(offering).enroll(taken)
		engine := NewEngine(catalog, nil, Options{})
		msgs, err := engine.CheckRequests(&models.Student{ID: 9001, SessionID: 1}, []models.Request{requested(phys152ID, 3, 311)})
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestCheckRequests_CourseCapacity(t *testing.T) {
	catalog := newMemCatalog(physOffering()).enroll(
		models.Enrollment{StudentID: 8000, Course: phys152ID, ConfigID: 3, SectionIDs: []int64{312}},
		models.Enrollment{StudentID: 8001, Course: phys152ID, ConfigID: 3, SectionIDs: []int64{312}},
	)
	engine := NewEngine(catalog, nil, Options{})

	// Section 3001 still has room but the course limit of 2 is reached.
	msgs, err := engine.CheckRequests(&models.Student{ID: 9001, SessionID: 1}, []models.Request{requested(phys152ID, 3, 311)})

	require.NoError(t, err)
	require.NotEmpty(t, msgs)
	for _, m := range msgs {
		assert.Equal(t, CodeNotAvailable, m.Code)
		assert.Equal(t, "3001", m.Section)
	}
}

func TestCheckRequests_MustUseReservation(t *testing.T) {
	offering := physOffering()
	offering.Reservations = []models.Reservation{{
		ID: 1, Priority: 1, Limit: models.UnlimitedLimit,
		MustBeUsed: true,
		StudentIDs: []int64{7000},
		SectionIDs: map[int64][]int64{31: {311}},
	}}

	t.Run("blocks students outside the reservation", func(t *testing.T) {
		engine := NewEngine(newMemCatalog(offering), nil, Options{})
		msgs, err := engine.CheckRequests(&models.Student{ID: 9001, SessionID: 1}, []models.Request{requested(phys152ID, 3, 311)})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, CodeNotAvailable, msgs[0].Code)
	})

	t.Run("admits reservation holders", func(t *testing.T) {
		engine := NewEngine(newMemCatalog(offering), nil, Options{})
		msgs, err := engine.CheckRequests(&models.Student{ID: 7000, SessionID: 1}, []models.Request{requested(phys152ID, 3, 311)})
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestCheckRequests_OverLimitReservation(t *testing.T) {
	offering := physOffering()
	offering.Reservations = []models.Reservation{{
		ID: 1, Priority: 1, Limit: models.UnlimitedLimit,
		CanAssignOverLimit: true,
		StudentIDs:         []int64{9001},
	}}
	catalog := newMemCatalog(offering).enroll(
		models.Enrollment{StudentID: 8000, Course: phys152ID, ConfigID: 3, SectionIDs: []int64{311}},
		models.Enrollment{StudentID: 8001, Course: phys152ID, ConfigID: 3, SectionIDs: []int64{312}},
	)
	engine := NewEngine(catalog, nil, Options{})

	// Section, config and course are all full; the reservation overrides.
	msgs, err := engine.CheckRequests(&models.Student{ID: 9001, SessionID: 1}, []models.Request{requested(phys152ID, 3, 311)})

	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestCheckRequests_Structure(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering()), nil, Options{})
	student := csStudent()

	t.Run("missing subpart", func(t *testing.T) {
		msgs, err := engine.CheckRequests(student, []models.Request{requested(cs101ID, 1, 111)})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, CodeStructure, msgs[0].Code)
		assert.Equal(t, "1001", msgs[0].Section)
	})

	t.Run("two sections of the same subpart", func(t *testing.T) {
		msgs, err := engine.CheckRequests(student, []models.Request{requested(cs101ID, 1, 111, 113)})
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		for _, m := range msgs {
			assert.Equal(t, CodeStructure, m.Code)
		}
		assert.Equal(t, "1001", msgs[0].Section)
		assert.Equal(t, "1003", msgs[1].Section)
	})

	t.Run("section from another config", func(t *testing.T) {
		offering := csOffering()
		offering.Configs = append(offering.Configs, models.Config{
			ID: 4, Name: "Online", Limit: models.UnlimitedLimit,
			Subparts: []models.Subpart{
				{
					ID: 13, ConfigID: 4, Name: "Lec",
					Sections: []models.Section{
						{ID: 115, SubpartID: 13, Name: "1", Limit: 30, ExternalID: "1005"},
					},
				},
			},
		})
		engine := NewEngine(newMemCatalog(offering), nil, Options{})

		// The first section pins config 1; the online lecture belongs to
		// config 4 and must be flagged.
		msgs, err := engine.CheckRequests(student, []models.Request{requested(cs101ID, 1, 111, 115)})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, CodeStructure, msgs[0].Code)
		assert.Equal(t, "1005", msgs[0].Section)
	})
}

func TestCheckRequests_OverlapWithinCourse(t *testing.T) {
	offering := csOffering()
	// Put the first lab on top of the first lecture.
	offering.Configs[0].Subparts[1].Sections[0].Time = mwf(108)
	engine := NewEngine(newMemCatalog(offering), nil, Options{})

	msgs, err := engine.CheckRequests(csStudent(), []models.Request{requested(cs101ID, 1, 111, 112)})

	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "1001", msgs[0].Section)
	assert.Equal(t, "1002", msgs[1].Section)
	for _, m := range msgs {
		assert.Equal(t, CodeTimeConflict, m.Code)
	}
}

func TestCheckRequests_LinkedSectionsDoNotConflict(t *testing.T) {
	offering := csOffering()
	offering.Configs[0].Subparts[1].Sections[0].Time = mwf(108)
	offering.Distributions = []models.Distribution{{
		Type:       models.DistributionLinked,
		SectionIDs: []int64{111, 112},
	}}
	engine := NewEngine(newMemCatalog(offering), nil, Options{})

	msgs, err := engine.CheckRequests(csStudent(), []models.Request{requested(cs101ID, 1, 111, 112)})

	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestCheckRequests_OverlapAcrossCourses(t *testing.T) {
	phys := physOffering()
	// PHYS lecture 3001 meets at the same time as CS lecture 1001.
	phys.Configs[0].Subparts[0].Sections[0].Time = mwf(108)
	catalog := newMemCatalog(csOffering(), phys)
	student := &models.Student{ID: 9001, SessionID: 1}

	t.Run("conflict is reported on both courses", func(t *testing.T) {
		engine := NewEngine(catalog, nil, Options{})
		msgs, err := engine.CheckRequests(student, []models.Request{
			requested(cs101ID, 1, 111, 112),
			requested(phys152ID, 3, 311),
		})
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "CS 101", msgs[0].Course)
		assert.Equal(t, "1001", msgs[0].Section)
		assert.Equal(t, "PHYS 152", msgs[1].Course)
		assert.Equal(t, "3001", msgs[1].Section)
		for _, m := range msgs {
			assert.Equal(t, CodeTimeConflict, m.Code)
		}
	})

	t.Run("allow-overlap reservation lifts the check for the pair", func(t *testing.T) {
		phys.Reservations = []models.Reservation{{
			ID: 1, Priority: 1, Limit: models.UnlimitedLimit,
			AllowOverlap: true,
			StudentIDs:   []int64{9001},
		}}
		defer func() { phys.Reservations = nil }()

		engine := NewEngine(catalog, nil, Options{})
		msgs, err := engine.CheckRequests(student, []models.Request{
			requested(cs101ID, 1, 111, 112),
			requested(phys152ID, 3, 311),
		})
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}
