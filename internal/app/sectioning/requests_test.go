package sectioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/sectioning/internal/app/models"
)

var (
	cs101ID   = models.CourseID{ID: 101, OfferingID: 10, Subject: "CS", Number: "101", Title: "Intro to Programming"}
	phys152ID = models.CourseID{ID: 301, OfferingID: 30, Subject: "PHYS", Number: "152", Title: "Mechanics"}
)

func TestMergeRequests_PassThrough(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering()), nil, Options{})
	student := csStudent(111, 112)
	free := &models.FreeTimeRequest{Priority: 1, Time: mwf(108)}
	student.Requests = append(student.Requests, free)

	merged := engine.MergeRequests(student, nil, nil)

	require.Len(t, merged, 2)
	assert.Same(t, student.Requests[0], merged[0])
	assert.Same(t, free, merged[1])
}

func TestMergeRequests_SectionSwap(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering()), nil, Options{})
	student := csStudent(111, 112)

	merged := engine.MergeRequests(student,
		map[models.CourseID][]ClassRef{cs101ID: {{ClassID: 113, ConfigID: 1}}},
		map[models.CourseID][]ClassRef{cs101ID: {{ClassID: 111, ConfigID: 1}}},
	)

	require.Len(t, merged, 1)
	cr := merged[0].(*models.CourseRequest)
	require.NotNil(t, cr.Enrollment)
	assert.Equal(t, []int64{112, 113}, cr.Enrollment.SectionIDs)
	assert.Equal(t, int64(1), cr.Enrollment.ConfigID)

	// Input must stay untouched.
	original := student.Requests[0].(*models.CourseRequest)
	assert.Equal(t, []int64{111, 112}, original.Enrollment.SectionIDs)
}

func TestMergeRequests_ConfigSwitchDropsHeldSections(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering()), nil, Options{})
	student := csStudent(111, 112)

	merged := engine.MergeRequests(student,
		map[models.CourseID][]ClassRef{cs101ID: {{ClassID: 113, ConfigID: 7}}},
		nil,
	)

	require.Len(t, merged, 1)
	cr := merged[0].(*models.CourseRequest)
	require.NotNil(t, cr.Enrollment)
	assert.Equal(t, []int64{113}, cr.Enrollment.SectionIDs)
	assert.Equal(t, int64(7), cr.Enrollment.ConfigID)
}

func TestMergeRequests_FullDropKeepsDemand(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering()), nil, Options{})
	student := csStudent(111, 112)

	merged := engine.MergeRequests(student, nil,
		map[models.CourseID][]ClassRef{cs101ID: {{ClassID: 111, ConfigID: 1}, {ClassID: 112, ConfigID: 1}}},
	)

	require.Len(t, merged, 1)
	cr := merged[0].(*models.CourseRequest)
	assert.Nil(t, cr.Enrollment)
	assert.Equal(t, []models.CourseID{cs101ID}, cr.Courses)
}

func TestMergeRequests_DifferentCourseWithoutDrop(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering(), physOffering()), nil, Options{})
	student := &models.Student{ID: 9001, SessionID: 1}
	student.Requests = []models.Request{&models.CourseRequest{
		Priority: 0,
		Courses:  []models.CourseID{cs101ID, phys152ID},
		Enrollment: &models.Enrollment{
			StudentID: 9001, Course: cs101ID, ConfigID: 1, SectionIDs: []int64{111, 112},
		},
	}}

	// PHYS is an alternative of the same request, but nothing of CS is
	// dropped: the old request survives and PHYS becomes a new one.
	merged := engine.MergeRequests(student,
		map[models.CourseID][]ClassRef{phys152ID: {{ClassID: 311, ConfigID: 3}}},
		nil,
	)

	require.Len(t, merged, 2)
	assert.Same(t, student.Requests[0], merged[0])

	appended := merged[1].(*models.CourseRequest)
	assert.Equal(t, 1, appended.Priority)
	assert.Equal(t, []models.CourseID{phys152ID}, appended.Courses)
	require.NotNil(t, appended.Enrollment)
	assert.Equal(t, []int64{311}, appended.Enrollment.SectionIDs)
	assert.Equal(t, int64(3), appended.Enrollment.ConfigID)
}

func TestMergeRequests_NewCoursesAppendedInOrder(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering(), physOffering()), nil, Options{})
	student := &models.Student{ID: 9001, SessionID: 1}

	merged := engine.MergeRequests(student,
		map[models.CourseID][]ClassRef{
			phys152ID: {{ClassID: 311, ConfigID: 3}},
			cs101ID:   {{ClassID: 111, ConfigID: 1}, {ClassID: 112, ConfigID: 1}},
		},
		nil,
	)

	require.Len(t, merged, 2)
	first := merged[0].(*models.CourseRequest)
	second := merged[1].(*models.CourseRequest)

	assert.Equal(t, 0, first.Priority)
	assert.Equal(t, []models.CourseID{cs101ID}, first.Courses)
	assert.Equal(t, []int64{111, 112}, first.Enrollment.SectionIDs)

	assert.Equal(t, 1, second.Priority)
	assert.Equal(t, []models.CourseID{phys152ID}, second.Courses)
	assert.Equal(t, []int64{311}, second.Enrollment.SectionIDs)
}

func TestMergeRequests_AddToUnenrolledRequest(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering()), nil, Options{})
	student := csStudent()

	merged := engine.MergeRequests(student,
		map[models.CourseID][]ClassRef{cs101ID: {{ClassID: 111, ConfigID: 1}, {ClassID: 112, ConfigID: 1}}},
		nil,
	)

	require.Len(t, merged, 1)
	cr := merged[0].(*models.CourseRequest)
	require.NotNil(t, cr.Enrollment)
	assert.Equal(t, []int64{111, 112}, cr.Enrollment.SectionIDs)
	assert.Equal(t, int64(1), cr.Enrollment.ConfigID)
}
