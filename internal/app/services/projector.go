package services

import (
	"github.com/campusflow/sectioning/internal/app/models"
	"github.com/campusflow/sectioning/internal/app/models/dto"
	"github.com/campusflow/sectioning/internal/app/sectioning"
)

// AssignmentProjector renders a request list into schedule view entries. The
// default projector is a plain renderer; a different implementation can
// reorder or regroup without touching the engine.
type AssignmentProjector interface {
	Project(student *models.Student, requests []models.Request, catalog sectioning.Catalog) []dto.CourseScheduleEntry
}

// scheduleProjector is the default renderer: one entry per enrolled course in
// request order, classes in enrollment order. The saved flag marks classes
// the student already holds in the committed schedule.
type scheduleProjector struct{}

// NewScheduleProjector creates the default assignment projector.
func NewScheduleProjector() AssignmentProjector {
	return &scheduleProjector{}
}

// Project implements AssignmentProjector.
func (p *scheduleProjector) Project(student *models.Student, requests []models.Request, catalog sectioning.Catalog) []dto.CourseScheduleEntry {
	var entries []dto.CourseScheduleEntry

	for _, request := range requests {
		cr, ok := request.(*models.CourseRequest)
		if !ok || cr.Enrollment == nil {
			continue
		}
		enrollment := cr.Enrollment

		offering := catalog.Offering(enrollment.Course.OfferingID)
		if offering == nil {
			continue
		}

		entry := dto.CourseScheduleEntry{
			Subject:   enrollment.Course.Subject,
			CourseNbr: enrollment.Course.Number,
			Title:     enrollment.Course.Title,
		}
		for _, section := range offering.SectionsOf(enrollment) {
			class := dto.ClassScheduleEntry{
				ClassID:   section.ID,
				CRN:       section.ExternalID,
				Section:   section.Name,
				Cancelled: section.Cancelled,
				Saved:     student.EnrolledInSection(section.ID),
			}
			if subpart := offering.Subpart(section.SubpartID); subpart != nil {
				class.Subpart = subpart.Name
			}
			if section.Time != nil {
				class.Days = section.Time.DayString()
				class.Start = section.Time.StartTime()
				class.End = section.Time.EndTime()
			}
			entry.Classes = append(entry.Classes, class)
		}
		entries = append(entries, entry)
	}

	return entries
}
