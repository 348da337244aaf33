package sectioning

import (
	"fmt"

	"github.com/campusflow/sectioning/internal/app/models"
	"github.com/campusflow/sectioning/internal/pkg/apperrors"
)

// ChangeOperation is the direction of a single section-level change.
type ChangeOperation string

// Change operations.
const (
	OperationAdd  ChangeOperation = "ADD"
	OperationDrop ChangeOperation = "DROP"
)

// ChangeError is an error message attached to a change for display by the
// external registration system.
type ChangeError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Change is one section-level add or drop, expressed in the registrar's
// vocabulary (subject, course number, CRN). No CRN appears twice with the
// same operation in one change list.
type Change struct {
	Subject   string          `json:"subject"`
	CourseNbr string          `json:"courseNbr"`
	CRN       string          `json:"crn"`
	Operation ChangeOperation `json:"operation"`
	Errors    []ChangeError   `json:"errors,omitempty"`
}

// ClassAssignment is one section pick of a proposed schedule. Picks flagged
// as free time, dummy placeholders or teaching assignments are ignored by the
// change-set builder.
type ClassAssignment struct {
	CourseID           int64
	ClassID            int64
	Subject            string
	CourseNbr          string
	Subpart            string
	Section            string
	FreeTime           bool
	Dummy              bool
	TeachingAssignment bool
}

func (a *ClassAssignment) skip() bool {
	return a == nil || a.FreeTime || a.ClassID == 0 || a.Dummy || a.TeachingAssignment
}

// targetCourse keeps the sections picked for one course, in pick order.
type targetCourse struct {
	course   *models.Course
	sections []*models.Section
}

// BuildChangeList computes the add/drop operations that move the student's
// committed enrollment state to the proposed assignment. Errors from a prior
// feasibility check are attached to the matching changes, each at most once.
//
// The call fails outright on broken references and on cancelled sections the
// student may not keep; those conditions invalidate the change request as a
// whole, so no partial change list is returned.
func (e *Engine) BuildChangeList(student *models.Student, assignment []*ClassAssignment, errors []ErrorMessage) ([]Change, error) {
	targets := make([]*targetCourse, 0, len(assignment))
	targetByCourse := make(map[int64]*targetCourse)
	offerings := make(map[int64]*models.Offering)

	for _, ca := range assignment {
		if ca.skip() {
			continue
		}

		course := e.catalog.Course(ca.CourseID)
		if course == nil {
			return nil, fmt.Errorf("%w: %s %s", apperrors.ErrCourseNotFound, ca.Subject, ca.CourseNbr)
		}
		offering := e.catalog.Offering(course.OfferingID)
		if offering == nil {
			return nil, fmt.Errorf("%w: %s %s", apperrors.ErrCourseNotFound, ca.Subject, ca.CourseNbr)
		}

		section := offering.Section(ca.ClassID)
		if section == nil {
			return nil, fmt.Errorf("%w: %s %s %s %s", apperrors.ErrSectionNotAvailable, ca.Subject, ca.CourseNbr, ca.Subpart, ca.Section)
		}

		if section.Cancelled {
			if !e.opts.KeepCancelledClasses || !student.EnrolledInSection(section.ID) {
				return nil, fmt.Errorf("%w: %s %s %s %s", apperrors.ErrEnrollCancelled, ca.Subject, ca.CourseNbr, ca.Subpart, ca.Section)
			}
		}

		target := targetByCourse[course.ID]
		if target == nil {
			target = &targetCourse{course: course}
			targetByCourse[course.ID] = target
			targets = append(targets, target)
		}
		target.sections = append(target.sections, section)
		offerings[course.ID] = offering
	}

	var changes []Change
	crns := make(map[string]bool)

	for _, target := range targets {
		course := target.course

		enrollment := student.EnrollmentFor(course.ID)
		if enrollment != nil {
			// Course change: symmetric difference of the section sets.
			for _, s := range target.sections {
				if !enrollment.HasSection(s.ID) {
					ch := Change{
						Subject:   course.Subject,
						CourseNbr: course.Number,
						CRN:       s.ExternalID,
						Operation: OperationAdd,
					}
					if !crns[ch.CRN] {
						crns[ch.CRN] = true
						changes = append(changes, ch)
					}
				}
			}
			for _, id := range enrollment.SectionIDs {
				s := offerings[course.ID].Section(id)
				if s == nil || containsSection(target.sections, s.ID) {
					continue
				}
				ch := Change{
					Subject:   course.Subject,
					CourseNbr: course.Number,
					CRN:       s.ExternalID,
					Operation: OperationDrop,
				}
				if !crns[ch.CRN] {
					crns[ch.CRN] = true
					changes = append(changes, ch)
				}
			}
			continue
		}

		// New course: every picked section is an add.
		for _, s := range target.sections {
			ch := Change{
				Subject:   course.Subject,
				CourseNbr: course.Number,
				CRN:       s.ExternalID,
				Operation: OperationAdd,
			}
			if !crns[ch.CRN] {
				crns[ch.CRN] = true
				changes = append(changes, ch)
			}
		}
	}

	// Courses enrolled but absent from the target are dropped in full.
	for _, cr := range student.CourseRequests() {
		enrollment := cr.Enrollment
		if enrollment == nil || offerings[enrollment.Course.ID] != nil {
			continue
		}
		offering := e.catalog.Offering(enrollment.Course.OfferingID)
		if offering == nil {
			continue
		}
		course := offering.Course(enrollment.Course.ID)
		if course == nil {
			continue
		}
		for _, s := range offering.SectionsOf(enrollment) {
			changes = append(changes, Change{
				Subject:   course.Subject,
				CourseNbr: course.Number,
				CRN:       s.ExternalID,
				Operation: OperationDrop,
			})
		}
	}

	if len(errors) > 0 {
		attached := make(map[ErrorMessage]bool)
		for i := range changes {
			ch := &changes[i]
			for _, m := range errors {
				if ch.CRN == m.Section && !attached[m] {
					attached[m] = true
					ch.Errors = append(ch.Errors, ChangeError{Code: m.Code, Message: m.Message})
				}
			}
		}
	}

	return changes, nil
}

func containsSection(sections []*models.Section, id int64) bool {
	for _, s := range sections {
		if s.ID == id {
			return true
		}
	}
	return false
}
