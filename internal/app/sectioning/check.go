package sectioning

import (
	"fmt"

	"github.com/campusflow/sectioning/internal/app/models"
	"github.com/campusflow/sectioning/internal/pkg/apperrors"
)

// enrollmentRequest is one course of the reconciled list resolved against the
// catalog: the course plus its target sections in request order.
type enrollmentRequest struct {
	course   *models.Course
	sections []*models.Section
}

// CheckRequests validates a reconciled request list against cancellation,
// deadline, reservation, capacity, structure and time-conflict rules. All
// violations are accumulated and returned as one deterministic, deduplicated
// list so the UI can present every problem at once; only unresolvable course
// or section references fail the call, since they indicate broken data rather
// than a student-correctable condition.
func (e *Engine) CheckRequests(student *models.Student, requests []models.Request) ([]ErrorMessage, error) {
	errors := make(errorSet)

	var enrollmentRequests []*enrollmentRequest
	courseOfferings := make(map[int64]*models.Offering)

	for _, req := range requests {
		cr, ok := req.(*models.CourseRequest)
		if !ok || cr.Enrollment == nil {
			continue
		}
		enrollment := cr.Enrollment

		course := e.catalog.Course(enrollment.Course.ID)
		if course == nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrCourseNotFound, enrollment.Course.Name())
		}
		offering := e.catalog.Offering(course.OfferingID)
		if offering == nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrCourseNotFound, enrollment.Course.Name())
		}

		request := &enrollmentRequest{course: course}
		enrollmentRequests = append(enrollmentRequests, request)

		for _, sectionID := range enrollment.SectionIDs {
			section := offering.Section(sectionID)
			if section == nil {
				return nil, fmt.Errorf("%w: %s %d", apperrors.ErrSectionNotAvailable, course.Name(), sectionID)
			}

			if section.Cancelled {
				if !e.opts.KeepCancelledClasses || !student.EnrolledInSection(section.ID) {
					errors.add(ErrorMessage{
						Course:  course.Name(),
						Section: section.ExternalID,
						Code:    CodeCancelled,
						Message: msgCancelled(classLabel(course, section, subpartName(offering, section))),
					})
				}
			}
			request.sections = append(request.sections, section)
			courseOfferings[course.ID] = offering
		}
	}

	e.checkDeadlines(student, enrollmentRequests, courseOfferings, errors)
	e.checkAvailability(student, enrollmentRequests, courseOfferings, errors)
	e.checkStructureAndConflicts(student, enrollmentRequests, courseOfferings, errors)

	return errors.sorted(), nil
}

// checkDeadlines applies the NEW, CHANGE and DROP deadline rules. Deadline
// misses are accumulated, never fatal.
func (e *Engine) checkDeadlines(student *models.Student, requests []*enrollmentRequest, courseOfferings map[int64]*models.Offering, errors errorSet) {
requests:
	for _, request := range requests {
		course := request.course

		if enrollment := student.EnrollmentFor(course.ID); enrollment != nil {
			// Course change: only newly added sections are deadline-checked.
			for _, s := range request.sections {
				if !enrollment.HasSection(s.ID) && !e.checkDeadline(course.ID, s.Time, DeadlineChange) {
					errors.add(ErrorMessage{
						Course:  course.Name(),
						Section: s.ExternalID,
						Code:    CodeDeadline,
						Message: msgDeadlineChange(classLabel(course, s, subpartName(courseOfferings[course.ID], s))),
					})
				}
			}
			continue requests
		}

		// New course: every section is checked against the offering.
		for _, s := range request.sections {
			if !e.checkDeadline(course.OfferingID, s.Time, DeadlineNew) {
				errors.add(ErrorMessage{
					Course:  course.Name(),
					Section: s.ExternalID,
					Code:    CodeDeadline,
					Message: msgDeadlineNew(classLabel(course, s, subpartName(courseOfferings[course.ID], s))),
				})
			}
		}
	}

	// Implicit drops: currently enrolled courses absent from the reconciled
	// list must pass the DROP deadline for every held section.
	for _, cr := range student.CourseRequests() {
		enrollment := cr.Enrollment
		if enrollment == nil || courseOfferings[enrollment.Course.ID] != nil {
			continue
		}
		offering := e.catalog.Offering(enrollment.Course.OfferingID)
		if offering == nil {
			continue
		}
		for _, s := range offering.SectionsOf(enrollment) {
			if !e.checkDeadline(offering.ID, s.Time, DeadlineDrop) {
				errors.add(ErrorMessage{
					Course:  enrollment.Course.Name(),
					Section: s.ExternalID,
					Code:    CodeDeadline,
					Message: msgDeadlineDrop(enrollment.Course.Name()),
				})
			}
		}
	}
}

// checkAvailability applies the reservation and capacity rules: the single
// best applicable reservation is picked per course, and unless it can assign
// over limits, the section, config and course fill counts are all checked.
func (e *Engine) checkAvailability(student *models.Student, requests []*enrollmentRequest, courseOfferings map[int64]*models.Offering, errors errorSet) {
	for _, request := range requests {
		course := request.course
		offering := courseOfferings[course.ID]
		enrollments := e.catalog.Enrollments(course.OfferingID)
		sections := request.sections
		if len(sections) == 0 {
			continue
		}
		subpart := offering.Subpart(sections[0].SubpartID)
		if subpart == nil {
			continue
		}
		config := offering.Config(subpart.ConfigID)
		if config == nil {
			continue
		}

		reservation := e.bestReservation(student, course, config, sections, offering, enrollments)

		if reservation != nil && reservation.CanAssignOverLimit {
			continue
		}

		for _, section := range sections {
			if !models.IsUnlimited(section.Limit) && section.Limit <= enrollments.CountForSection(section.ID) &&
				!studentCounted(enrollments.ForSection(section.ID), student.ID) {
				errors.add(ErrorMessage{
					Course:  course.Name(),
					Section: section.ExternalID,
					Code:    CodeNotAvailable,
					Message: msgNotAvailable(classLabel(course, section, subpartName(offering, section))),
				})
			}
			if (reservation == nil || !reservationIn(offering.SectionReservations(section.ID), reservation)) &&
				offering.UnreservedSectionSpace(section.ID, enrollments) <= 0 &&
				!studentCounted(enrollments.ForSection(section.ID), student.ID) {
				errors.add(ErrorMessage{
					Course:  course.Name(),
					Section: section.ExternalID,
					Code:    CodeNotAvailable,
					Message: msgNotAvailable(classLabel(course, section, subpartName(offering, section))),
				})
			}
		}

		if !models.IsUnlimited(config.Limit) && config.Limit <= enrollments.CountForConfig(config.ID) &&
			!studentCounted(enrollments.ForConfig(config.ID), student.ID) {
			for _, section := range sections {
				errors.add(ErrorMessage{
					Course:  course.Name(),
					Section: section.ExternalID,
					Code:    CodeNotAvailable,
					Message: msgNotAvailable(course.Name() + " " + config.Name),
				})
			}
		}
		if (reservation == nil || !reservationIn(offering.ConfigReservations(config.ID), reservation)) &&
			offering.UnreservedConfigSpace(config.ID, enrollments) <= 0 &&
			!studentCounted(enrollments.ForConfig(config.ID), student.ID) {
			for _, section := range sections {
				errors.add(ErrorMessage{
					Course:  course.Name(),
					Section: section.ExternalID,
					Code:    CodeNotAvailable,
					Message: msgNotAvailable(course.Name() + " " + config.Name),
				})
			}
		}

		if !models.IsUnlimited(course.Limit) && course.Limit <= enrollments.CountForCourse(course.ID) &&
			!studentCounted(enrollments.ForCourse(course.ID), student.ID) {
			for _, section := range sections {
				errors.add(ErrorMessage{
					Course:  course.Name(),
					Section: section.ExternalID,
					Code:    CodeNotAvailable,
					Message: msgNotAvailable(course.Name()),
				})
			}
		}
	}
}

// bestReservation returns the lowest-ordered reservation applicable to the
// student and the target config/sections, or nil.
func (e *Engine) bestReservation(student *models.Student, course *models.Course, config *models.Config, sections []*models.Section, offering *models.Offering, enrollments *models.OfferingEnrollments) *models.Reservation {
	var best *models.Reservation
reservations:
	for i := range offering.Reservations {
		r := &offering.Reservations[i]
		if !r.IsApplicable(student, course) {
			continue
		}
		if !models.IsUnlimited(r.Limit) && r.Limit <= enrollments.CountForReservation(r.ID) &&
			!studentCounted(enrollments.ForReservation(r.ID), student.ID) {
			continue
		}
		if len(r.ConfigIDs) > 0 && !r.RestrictsToConfig(config.ID) {
			continue
		}
		for _, section := range sections {
			if restricted := r.SectionIDsOf(section.SubpartID); restricted != nil && !idIn(restricted, section.ID) {
				continue reservations
			}
		}
		if best == nil || r.Compare(best) < 0 {
			best = r
		}
	}
	return best
}

// checkStructureAndConflicts applies the completeness, exclusivity and
// time-overlap rules.
func (e *Engine) checkStructureAndConflicts(student *models.Student, requests []*enrollmentRequest, courseOfferings map[int64]*models.Offering, errors errorSet) {
	courseConfigs := make(map[int64]*models.Config)
	for _, request := range requests {
		offering := courseOfferings[request.course.ID]
		if len(request.sections) == 0 {
			continue
		}
		if subpart := offering.Subpart(request.sections[0].SubpartID); subpart != nil {
			courseConfigs[request.course.ID] = offering.Config(subpart.ConfigID)
		}
	}

	for _, request := range requests {
		course := request.course
		offering := courseOfferings[course.ID]
		sections := request.sections
		config := courseConfigs[course.ID]
		if config == nil {
			continue
		}

		if len(sections) < len(config.Subparts) {
			for _, s := range sections {
				errors.add(ErrorMessage{Course: course.Name(), Section: s.ExternalID, Code: CodeStructure, Message: msgIncomplete(course.Name())})
			}
		} else if len(sections) > len(config.Subparts) {
			for _, s := range sections {
				errors.add(ErrorMessage{Course: course.Name(), Section: s.ExternalID, Code: CodeStructure, Message: msgInvalid(course.Name())})
			}
		}

		for _, s1 := range sections {
			for _, s2 := range sections {
				if s1.ID < s2.ID && models.Overlapping(offering.Distributions, s1, s2) {
					errors.add(ErrorMessage{Course: course.Name(), Section: s1.ExternalID, Code: CodeTimeConflict, Message: msgOverlapping(course.Name())})
					errors.add(ErrorMessage{Course: course.Name(), Section: s2.ExternalID, Code: CodeTimeConflict, Message: msgOverlapping(course.Name())})
				}
				if s1.ID != s2.ID && s1.SubpartID == s2.SubpartID {
					errors.add(ErrorMessage{Course: course.Name(), Section: s1.ExternalID, Code: CodeStructure, Message: msgInvalid(course.Name())})
					errors.add(ErrorMessage{Course: course.Name(), Section: s2.ExternalID, Code: CodeStructure, Message: msgInvalid(course.Name())})
				}
			}
			if subpart := offering.Subpart(s1.SubpartID); subpart == nil || subpart.ConfigID != config.ID {
				errors.add(ErrorMessage{Course: course.Name(), Section: s1.ExternalID, Code: CodeStructure, Message: msgInvalid(course.Name())})
			}
		}

		if offering.AllowOverlap(student, config.ID, course, sections) {
			continue
		}
		for _, other := range requests {
			otherOffering := courseOfferings[other.course.ID]
			otherConfig := courseConfigs[other.course.ID]
			if otherOffering == offering || otherConfig == nil {
				continue
			}
			if otherOffering.AllowOverlap(student, otherConfig.ID, other.course, other.sections) {
				continue
			}
			for _, section := range sections {
				if models.OverlappingAny(offering.Distributions, section, other.sections) {
					errors.add(ErrorMessage{Course: course.Name(), Section: section.ExternalID, Code: CodeTimeConflict, Message: msgConflicting(course.Name())})
				}
			}
		}
	}
}

func subpartName(offering *models.Offering, section *models.Section) string {
	if offering == nil {
		return ""
	}
	if sp := offering.Subpart(section.SubpartID); sp != nil {
		return sp.Name
	}
	return ""
}

func studentCounted(enrollments []*models.Enrollment, studentID int64) bool {
	for _, e := range enrollments {
		if e.StudentID == studentID {
			return true
		}
	}
	return false
}

func reservationIn(reservations []*models.Reservation, r *models.Reservation) bool {
	for _, candidate := range reservations {
		if candidate.ID == r.ID {
			return true
		}
	}
	return false
}

func idIn(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
