package sectioning

import (
	"github.com/campusflow/sectioning/internal/app/models"
)

// memCatalog is an in-memory snapshot used by the engine tests.
type memCatalog struct {
	courses     map[int64]*models.Course
	offerings   map[int64]*models.Offering
	enrollments map[int64]*models.OfferingEnrollments
}

func newMemCatalog(offerings ...*models.Offering) *memCatalog {
	c := &memCatalog{
		courses:     make(map[int64]*models.Course),
		offerings:   make(map[int64]*models.Offering),
		enrollments: make(map[int64]*models.OfferingEnrollments),
	}
	for _, o := range offerings {
		c.offerings[o.ID] = o
		for i := range o.Courses {
			c.courses[o.Courses[i].ID] = &o.Courses[i]
		}
	}
	return c
}

func (c *memCatalog) enroll(e ...models.Enrollment) *memCatalog {
	for _, enrollment := range e {
		offeringID := c.courses[enrollment.Course.ID].OfferingID
		oe := c.enrollments[offeringID]
		if oe == nil {
			oe = &models.OfferingEnrollments{OfferingID: offeringID}
			c.enrollments[offeringID] = oe
		}
		oe.Enrollments = append(oe.Enrollments, enrollment)
	}
	return c
}

func (c *memCatalog) Course(courseID int64) *models.Course { return c.courses[courseID] }

func (c *memCatalog) Offering(offeringID int64) *models.Offering { return c.offerings[offeringID] }

func (c *memCatalog) Enrollments(offeringID int64) *models.OfferingEnrollments {
	if oe := c.enrollments[offeringID]; oe != nil {
		return oe
	}
	return &models.OfferingEnrollments{}
}

// closedDeadlines fails the listed deadline kinds for every course.
type closedDeadlines map[DeadlineKind]bool

func (d closedDeadlines) CheckDeadline(_ int64, _ *models.TimeBlock, kind DeadlineKind) bool {
	return !d[kind]
}

func mwf(startSlot int) *models.TimeBlock {
	return &models.TimeBlock{
		Days:      models.DayMonday | models.DayWednesday | models.DayFriday,
		StartSlot: startSlot,
		Length:    12,
	}
}

// csOffering builds the introductory programming offering used across the
// tests: one config with a lecture subpart (CRNs 1001, 1003) and a lab
// subpart (CRNs 1002, 1004).
func csOffering() *models.Offering {
	return &models.Offering{
		ID:        10,
		SessionID: 1,
		Courses: []models.Course{
			{CourseID: models.CourseID{ID: 101, OfferingID: 10, Subject: "CS", Number: "101", Title: "Intro to Programming"}, Limit: models.UnlimitedLimit},
		},
		Configs: []models.Config{
			{
				ID: 1, Name: "Lec-Lab", Limit: models.UnlimitedLimit,
				Subparts: []models.Subpart{
					{
						ID: 11, ConfigID: 1, Name: "Lec",
						Sections: []models.Section{
							{ID: 111, SubpartID: 11, Name: "1", Limit: 30, ExternalID: "1001", Time: mwf(108)},
							{ID: 113, SubpartID: 11, Name: "2", Limit: 30, ExternalID: "1003", Time: mwf(120)},
						},
					},
					{
						ID: 12, ConfigID: 1, Name: "Lab",
						Sections: []models.Section{
							{ID: 112, SubpartID: 12, Name: "1", Limit: 15, ExternalID: "1002", Time: mwf(132)},
							{ID: 114, SubpartID: 12, Name: "2", Limit: 15, ExternalID: "1004", Time: mwf(144)},
						},
					},
				},
			},
		},
	}
}

// mathOffering builds a single-section offering whose only section is
// cancelled (CRN 2001).
func mathOffering() *models.Offering {
	return &models.Offering{
		ID:        20,
		SessionID: 1,
		Courses: []models.Course{
			{CourseID: models.CourseID{ID: 201, OfferingID: 20, Subject: "MATH", Number: "200", Title: "Calculus"}, Limit: models.UnlimitedLimit},
		},
		Configs: []models.Config{
			{
				ID: 2, Name: "Lec", Limit: models.UnlimitedLimit,
				Subparts: []models.Subpart{
					{
						ID: 21, ConfigID: 2, Name: "Lec",
						Sections: []models.Section{
							{ID: 211, SubpartID: 21, Name: "1", Limit: 40, ExternalID: "2001", Time: mwf(156), Cancelled: true},
						},
					},
				},
			},
		},
	}
}

// physOffering builds a tightly limited offering used by the capacity and
// reservation tests: one lecture subpart with sections 3001 (limit 1) and
// 3002 (limit 2), and an overall course limit of 2.
func physOffering() *models.Offering {
	return &models.Offering{
		ID:        30,
		SessionID: 1,
		Courses: []models.Course{
			{CourseID: models.CourseID{ID: 301, OfferingID: 30, Subject: "PHYS", Number: "152", Title: "Mechanics"}, Limit: 2},
		},
		Configs: []models.Config{
			{
				ID: 3, Name: "Lec", Limit: 2,
				Subparts: []models.Subpart{
					{
						ID: 31, ConfigID: 3, Name: "Lec",
						Sections: []models.Section{
							{ID: 311, SubpartID: 31, Name: "1", Limit: 1, ExternalID: "3001", Time: mwf(168)},
							{ID: 312, SubpartID: 31, Name: "2", Limit: 2, ExternalID: "3002", Time: mwf(180)},
						},
					},
				},
			},
		},
	}
}

func csStudent(sectionIDs ...int64) *models.Student {
	student := &models.Student{ID: 9001, ExternalID: "000009001", Name: "Test Student", SessionID: 1}
	cr := &models.CourseRequest{
		Priority: 0,
		Courses:  []models.CourseID{{ID: 101, OfferingID: 10, Subject: "CS", Number: "101", Title: "Intro to Programming"}},
	}
	if len(sectionIDs) > 0 {
		cr.Enrollment = &models.Enrollment{
			StudentID:  student.ID,
			Course:     cr.Courses[0],
			ConfigID:   1,
			SectionIDs: sectionIDs,
		}
	}
	student.Requests = []models.Request{cr}
	return student
}

func assignment(courseID, classID int64, subject, courseNbr, subpart, section string) *ClassAssignment {
	return &ClassAssignment{
		CourseID:  courseID,
		ClassID:   classID,
		Subject:   subject,
		CourseNbr: courseNbr,
		Subpart:   subpart,
		Section:   section,
	}
}
