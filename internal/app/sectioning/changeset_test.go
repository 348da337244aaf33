package sectioning

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/sectioning/internal/app/models"
	"github.com/campusflow/sectioning/internal/pkg/apperrors"
)

func TestBuildChangeList_NoChange(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering()), nil, Options{})
	student := csStudent(111, 112)

	changes, err := engine.BuildChangeList(student, []*ClassAssignment{
		assignment(101, 111, "CS", "101", "Lec", "1"),
		assignment(101, 112, "CS", "101", "Lab", "1"),
	}, nil)

	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestBuildChangeList_LectureSwap(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering()), nil, Options{})
	student := csStudent(111, 112)

	// Keep the lab, move to the other lecture.
	changes, err := engine.BuildChangeList(student, []*ClassAssignment{
		assignment(101, 113, "CS", "101", "Lec", "2"),
		assignment(101, 112, "CS", "101", "Lab", "1"),
	}, nil)

	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, Change{Subject: "CS", CourseNbr: "101", CRN: "1003", Operation: OperationAdd}, changes[0])
	assert.Equal(t, Change{Subject: "CS", CourseNbr: "101", CRN: "1001", Operation: OperationDrop}, changes[1])
}

func TestBuildChangeList_NewCourse(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering()), nil, Options{})
	student := csStudent()

	changes, err := engine.BuildChangeList(student, []*ClassAssignment{
		assignment(101, 111, "CS", "101", "Lec", "1"),
		assignment(101, 112, "CS", "101", "Lab", "1"),
	}, nil)

	require.NoError(t, err)
	require.Len(t, changes, 2)
	for _, ch := range changes {
		assert.Equal(t, OperationAdd, ch.Operation)
	}
	assert.Equal(t, "1001", changes[0].CRN)
	assert.Equal(t, "1002", changes[1].CRN)
}

func TestBuildChangeList_DroppedCourse(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering(), physOffering()), nil, Options{})
	student := csStudent(111, 112)

	// PHYS only in the assignment: CS 101 is dropped in full.
	changes, err := engine.BuildChangeList(student, []*ClassAssignment{
		assignment(301, 311, "PHYS", "152", "Lec", "1"),
	}, nil)

	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, Change{Subject: "PHYS", CourseNbr: "152", CRN: "3001", Operation: OperationAdd}, changes[0])
	assert.Equal(t, Change{Subject: "CS", CourseNbr: "101", CRN: "1001", Operation: OperationDrop}, changes[1])
	assert.Equal(t, Change{Subject: "CS", CourseNbr: "101", CRN: "1002", Operation: OperationDrop}, changes[2])
}

func TestBuildChangeList_SkipsNonEnrollablePicks(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering()), nil, Options{})
	student := csStudent()

	changes, err := engine.BuildChangeList(student, []*ClassAssignment{
		nil,
		{FreeTime: true},
		{CourseID: 101, ClassID: 0},
		{CourseID: 101, ClassID: 111, Dummy: true},
		{CourseID: 101, ClassID: 111, TeachingAssignment: true},
	}, nil)

	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestBuildChangeList_CRNNotDuplicated(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering()), nil, Options{})
	student := csStudent()

	// The same pick twice must still yield a single add.
	changes, err := engine.BuildChangeList(student, []*ClassAssignment{
		assignment(101, 111, "CS", "101", "Lec", "1"),
		assignment(101, 111, "CS", "101", "Lec", "1"),
	}, nil)

	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "1001", changes[0].CRN)
}

func TestBuildChangeList_BrokenReferences(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering()), nil, Options{})
	student := csStudent()

	tests := []struct {
		name string
		pick *ClassAssignment
		want error
	}{
		{"unknown course", assignment(999, 111, "XX", "999", "Lec", "1"), apperrors.ErrCourseNotFound},
		{"unknown class", assignment(101, 999, "CS", "101", "Lec", "9"), apperrors.ErrSectionNotAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes, err := engine.BuildChangeList(student, []*ClassAssignment{tt.pick}, nil)
			assert.Nil(t, changes)
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}

func TestBuildChangeList_CancelledSection(t *testing.T) {
	catalog := newMemCatalog(csOffering(), mathOffering())

	t.Run("fails for a new enrollment", func(t *testing.T) {
		engine := NewEngine(catalog, nil, Options{})
		_, err := engine.BuildChangeList(csStudent(), []*ClassAssignment{
			assignment(201, 211, "MATH", "200", "Lec", "1"),
		}, nil)
		assert.True(t, errors.Is(err, apperrors.ErrEnrollCancelled))
	})

	t.Run("kept section passes when allowed", func(t *testing.T) {
		engine := NewEngine(catalog, nil, Options{KeepCancelledClasses: true})
		student := &models.Student{ID: 9001, SessionID: 1}
		mathID := models.CourseID{ID: 201, OfferingID: 20, Subject: "MATH", Number: "200"}
		student.Requests = []models.Request{&models.CourseRequest{
			Courses:    []models.CourseID{mathID},
			Enrollment: &models.Enrollment{StudentID: 9001, Course: mathID, ConfigID: 2, SectionIDs: []int64{211}},
		}}

		changes, err := engine.BuildChangeList(student, []*ClassAssignment{
			assignment(201, 211, "MATH", "200", "Lec", "1"),
		}, nil)
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("kept section still fails when not allowed", func(t *testing.T) {
		engine := NewEngine(catalog, nil, Options{})
		student := &models.Student{ID: 9001, SessionID: 1}
		mathID := models.CourseID{ID: 201, OfferingID: 20, Subject: "MATH", Number: "200"}
		student.Requests = []models.Request{&models.CourseRequest{
			Courses:    []models.CourseID{mathID},
			Enrollment: &models.Enrollment{StudentID: 9001, Course: mathID, ConfigID: 2, SectionIDs: []int64{211}},
		}}

		_, err := engine.BuildChangeList(student, []*ClassAssignment{
			assignment(201, 211, "MATH", "200", "Lec", "1"),
		}, nil)
		assert.True(t, errors.Is(err, apperrors.ErrEnrollCancelled))
	})
}

func TestBuildChangeList_AttachesErrorsOncePerMessage(t *testing.T) {
	engine := NewEngine(newMemCatalog(csOffering()), nil, Options{})
	student := csStudent(111, 112)

	msgs := []ErrorMessage{
		{Course: "CS 101", Section: "1003", Code: CodeNotAvailable, Message: "Enrollment not available: CS 101 Lec 2."},
		{Course: "CS 101", Section: "1003", Code: CodeTimeConflict, Message: "Enrollment of CS 101 contains overlapping classes."},
		{Course: "CS 101", Section: "9999", Code: CodeNotAvailable, Message: "unmatched"},
	}

	changes, err := engine.BuildChangeList(student, []*ClassAssignment{
		assignment(101, 113, "CS", "101", "Lec", "2"),
		assignment(101, 112, "CS", "101", "Lab", "1"),
	}, msgs)

	require.NoError(t, err)
	require.Len(t, changes, 2)

	add := changes[0]
	require.Equal(t, "1003", add.CRN)
	require.Len(t, add.Errors, 2)
	assert.Equal(t, CodeNotAvailable, add.Errors[0].Code)
	assert.Equal(t, CodeTimeConflict, add.Errors[1].Code)

	drop := changes[1]
	assert.Equal(t, "1001", drop.CRN)
	assert.Empty(t, drop.Errors)
}
