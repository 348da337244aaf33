package sectioning

import (
	"sort"

	"github.com/campusflow/sectioning/internal/app/models"
)

// ClassRef identifies one class of a catalog course together with the config
// it belongs to, the way the registrar-facing lookup resolves a CRN.
type ClassRef struct {
	ClassID  int64
	ConfigID int64
}

// MergeRequests folds section-level add and drop operations back into the
// student's full ranked request list. Requests untouched by either map pass
// through unchanged, free-time requests always pass through, and courses that
// appear only in the add map are appended at the end of the ranking.
//
// An add that targets a different course than the request's current
// enrollment, with no matching drop, does not replace the old request: the
// old request is kept and a new one is appended for the added course.
//
// The input request list and its enrollments are never mutated; every changed
// entry is a fresh value.
func (e *Engine) MergeRequests(student *models.Student, adds, drops map[models.CourseID][]ClassRef) []models.Request {
	requests := make([]models.Request, 0, len(student.Requests)+len(adds))
	remaining := make(map[models.CourseID]bool, len(adds))
	for course := range adds {
		remaining[course] = true
	}

	for _, request := range student.Requests {
		cr, ok := request.(*models.CourseRequest)
		if !ok {
			// Free time: no change.
			requests = append(requests, request)
			continue
		}

		var add, drop []ClassRef
		var courseID *models.CourseID
		var configID int64
		for _, choice := range cr.Courses {
			for course, classes := range adds {
				if choice.ID == course.ID {
					add = classes
					c := course
					courseID = &c
					configID = classes[0].ConfigID
					delete(remaining, course)
				}
			}
			for course, classes := range drops {
				if choice.ID == course.ID {
					drop = classes
				}
			}
		}

		if add == nil && drop == nil {
			// No change detected.
			requests = append(requests, request)
			continue
		}

		enrollment := cr.Enrollment
		classIDs := make(map[int64]bool)
		if enrollment != nil {
			for _, id := range enrollment.SectionIDs {
				classIDs[id] = true
			}
			if courseID != nil {
				if enrollment.Course.ID != courseID.ID && drop == nil {
					// Different course and no drop: keep the old request and
					// let the added course become a brand-new one.
					requests = append(requests, request)
					remaining[*courseID] = true
					continue
				} else if enrollment.ConfigID != configID {
					// Same course, different config: a config switch drops
					// every previously held section.
					classIDs = make(map[int64]bool)
				}
			} else {
				courseID = &enrollment.Course
				configID = enrollment.ConfigID
			}
		}

		for _, c := range add {
			classIDs[c.ClassID] = true
		}
		for _, c := range drop {
			delete(classIDs, c.ClassID)
		}

		if len(classIDs) == 0 || courseID == nil {
			// Demand is retained, enrollment is cleared.
			requests = append(requests, cr.WithEnrollment(nil))
		} else {
			requests = append(requests, cr.WithEnrollment(&models.Enrollment{
				StudentID:  student.ID,
				Course:     *courseID,
				ConfigID:   configID,
				SectionIDs: sortedIDs(classIDs),
			}))
		}
	}

	// Brand-new courses, appended in a stable order.
	newCourses := make([]models.CourseID, 0, len(remaining))
	for course := range remaining {
		newCourses = append(newCourses, course)
	}
	sort.Slice(newCourses, func(i, j int) bool { return newCourses[i].ID < newCourses[j].ID })

	for _, course := range newCourses {
		classIDs := make(map[int64]bool)
		var configID int64
		for _, c := range adds[course] {
			if configID == 0 {
				configID = c.ConfigID
			}
			classIDs[c.ClassID] = true
		}
		requests = append(requests, &models.CourseRequest{
			Priority: len(requests),
			Courses:  []models.CourseID{course},
			Enrollment: &models.Enrollment{
				StudentID:  student.ID,
				Course:     course,
				ConfigID:   configID,
				SectionIDs: sortedIDs(classIDs),
			},
		})
	}

	return requests
}

func sortedIDs(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
