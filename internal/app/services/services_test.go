package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campusflow/sectioning/internal/app/models"
	"github.com/campusflow/sectioning/internal/app/sectioning"
)

// stubCatalog serves fixed snapshots for projector tests.
type stubCatalog struct {
	offerings map[int64]*models.Offering
}

func (c *stubCatalog) Course(int64) *models.Course { return nil }

func (c *stubCatalog) Offering(offeringID int64) *models.Offering {
	return c.offerings[offeringID]
}

func (c *stubCatalog) Enrollments(int64) *models.OfferingEnrollments { return nil }

func demoOffering() *models.Offering {
	return &models.Offering{
		ID:        10,
		SessionID: 1,
		Courses: []models.Course{
			{CourseID: models.CourseID{ID: 101, OfferingID: 10, Subject: "CS", Number: "101", Title: "Intro to Programming"}, Limit: models.UnlimitedLimit},
		},
		Configs: []models.Config{
			{
				ID:    1,
				Name:  "Lec-Lab",
				Limit: models.UnlimitedLimit,
				Subparts: []models.Subpart{
					{
						ID: 11, ConfigID: 1, Name: "Lec",
						Sections: []models.Section{
							{ID: 111, SubpartID: 11, Name: "1", Limit: 60, ExternalID: "1001",
								Time: &models.TimeBlock{Days: models.DayMonday | models.DayWednesday | models.DayFriday, StartSlot: 108, Length: 12}},
							{ID: 113, SubpartID: 11, Name: "2", Limit: 60, ExternalID: "1003"},
						},
					},
					{
						ID: 12, ConfigID: 1, Name: "Lab",
						Sections: []models.Section{
							{ID: 112, SubpartID: 12, Name: "1", Limit: 30, ExternalID: "1002"},
						},
					},
				},
			},
		},
	}
}

func TestScheduleProjector(t *testing.T) {
	catalog := &stubCatalog{offerings: map[int64]*models.Offering{10: demoOffering()}}
	course := models.CourseID{ID: 101, OfferingID: 10, Subject: "CS", Number: "101", Title: "Intro to Programming"}

	enrollment := &models.Enrollment{
		StudentID:  9001,
		Course:     course,
		ConfigID:   1,
		SectionIDs: []int64{111, 112},
	}
	committed := &models.CourseRequest{Priority: 0, Courses: []models.CourseID{course}, Enrollment: enrollment}
	student := &models.Student{ID: 9001, SessionID: 1, Requests: []models.Request{committed}}

	t.Run("renders the committed schedule", func(t *testing.T) {
		entries := NewScheduleProjector().Project(student, student.Requests, catalog)

		assert.Len(t, entries, 1)
		assert.Equal(t, "CS", entries[0].Subject)
		assert.Equal(t, "101", entries[0].CourseNbr)
		assert.Len(t, entries[0].Classes, 2)

		lecture := entries[0].Classes[0]
		assert.Equal(t, int64(111), lecture.ClassID)
		assert.Equal(t, "1001", lecture.CRN)
		assert.Equal(t, "Lec", lecture.Subpart)
		assert.Equal(t, "MWF", lecture.Days)
		assert.Equal(t, 540, lecture.Start)
		assert.Equal(t, 600, lecture.End)
		assert.True(t, lecture.Saved)

		lab := entries[0].Classes[1]
		assert.Equal(t, "Lab", lab.Subpart)
		assert.Empty(t, lab.Days)
		assert.True(t, lab.Saved)
	})

	t.Run("marks proposed sections as not saved", func(t *testing.T) {
		proposed := committed.WithEnrollment(&models.Enrollment{
			StudentID:  9001,
			Course:     course,
			ConfigID:   1,
			SectionIDs: []int64{112, 113},
		})
		entries := NewScheduleProjector().Project(student, []models.Request{proposed}, catalog)

		assert.Len(t, entries, 1)
		assert.Len(t, entries[0].Classes, 2)
		assert.Equal(t, int64(112), entries[0].Classes[0].ClassID)
		assert.True(t, entries[0].Classes[0].Saved)
		assert.Equal(t, int64(113), entries[0].Classes[1].ClassID)
		assert.False(t, entries[0].Classes[1].Saved)
	})

	t.Run("skips requests without an enrollment", func(t *testing.T) {
		open := &models.CourseRequest{Priority: 0, Courses: []models.CourseID{course}}
		entries := NewScheduleProjector().Project(student, []models.Request{open}, catalog)
		assert.Empty(t, entries)
	})
}

func TestSessionDeadlinePolicy(t *testing.T) {
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	session := &models.AcademicSession{
		ID:                    1,
		NewEnrollmentDeadline: base.AddDate(0, 0, -1),
		ChangeDeadline:        base.AddDate(0, 0, 7),
	}

	policy := newSessionDeadlinePolicy(session)
	policy.now = func() time.Time { return base }

	assert.False(t, policy.CheckDeadline(101, nil, sectioning.DeadlineNew))
	assert.True(t, policy.CheckDeadline(101, nil, sectioning.DeadlineChange))
	// no drop deadline configured means drops stay open
	assert.True(t, policy.CheckDeadline(101, nil, sectioning.DeadlineDrop))

	t.Run("deadline day itself is still allowed", func(t *testing.T) {
		session := &models.AcademicSession{ID: 1, ChangeDeadline: base}
		policy := newSessionDeadlinePolicy(session)
		policy.now = func() time.Time { return base }
		assert.True(t, policy.CheckDeadline(101, nil, sectioning.DeadlineChange))
	})
}

func TestDescribeChanges(t *testing.T) {
	cs := models.CourseID{ID: 101, OfferingID: 10, Subject: "CS", Number: "101"}
	math := models.CourseID{ID: 201, OfferingID: 20, Subject: "MATH", Number: "200"}

	t.Run("adds-only course is an add", func(t *testing.T) {
		adds := map[models.CourseID][]sectioning.ClassRef{cs: {{ClassID: 111, ConfigID: 1}}}
		assert.Equal(t, "CS 101 (add)", describeChanges(adds, nil))
	})

	t.Run("adding sections to an enrolled course is still an add", func(t *testing.T) {
		adds := map[models.CourseID][]sectioning.ClassRef{
			math: {{ClassID: 212, ConfigID: 2}, {ClassID: 213, ConfigID: 2}},
		}
		assert.Equal(t, "MATH 200 (add)", describeChanges(adds, nil))
	})

	t.Run("drops-only course is a drop", func(t *testing.T) {
		drops := map[models.CourseID][]sectioning.ClassRef{math: {{ClassID: 211, ConfigID: 2}}}
		assert.Equal(t, "MATH 200 (drop)", describeChanges(nil, drops))
	})

	t.Run("mixed adds and drops within a course is a change", func(t *testing.T) {
		adds := map[models.CourseID][]sectioning.ClassRef{math: {{ClassID: 212, ConfigID: 2}}}
		drops := map[models.CourseID][]sectioning.ClassRef{math: {{ClassID: 211, ConfigID: 2}}}
		assert.Equal(t, "MATH 200 (change)", describeChanges(adds, drops))
	})

	t.Run("courses are listed in subject and number order", func(t *testing.T) {
		adds := map[models.CourseID][]sectioning.ClassRef{cs: {{ClassID: 111, ConfigID: 1}}}
		drops := map[models.CourseID][]sectioning.ClassRef{math: {{ClassID: 211, ConfigID: 2}}}
		assert.Equal(t, "CS 101 (add), MATH 200 (drop)", describeChanges(adds, drops))
	})
}
