package models

// Student is a read-only snapshot of one student: identity, group
// memberships and the full ranked request list with current enrollments.
type Student struct {
	ID         int64
	ExternalID string
	Name       string
	SessionID  int64
	Groups     []string
	Requests   []Request
}

// CourseRequests returns the course requests of the student in rank order.
func (s *Student) CourseRequests() []*CourseRequest {
	var ret []*CourseRequest
	for _, r := range s.Requests {
		if cr, ok := r.(*CourseRequest); ok {
			ret = append(ret, cr)
		}
	}
	return ret
}

// EnrollmentFor returns the student's current enrollment in the given course,
// or nil.
func (s *Student) EnrollmentFor(courseID int64) *Enrollment {
	for _, cr := range s.CourseRequests() {
		if cr.Enrollment != nil && cr.Enrollment.Course.ID == courseID {
			return cr.Enrollment
		}
	}
	return nil
}

// EnrolledInSection reports whether any of the student's current enrollments
// includes the given section.
func (s *Student) EnrolledInSection(sectionID int64) bool {
	for _, cr := range s.CourseRequests() {
		if cr.Enrollment.HasSection(sectionID) {
			return true
		}
	}
	return false
}
