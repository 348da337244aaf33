package models

// Request is one entry of a student's ranked demand list: either a course
// request or a free-time request.
type Request interface {
	// RequestPriority is the position in the ranked list, 0 first.
	RequestPriority() int
}

// CourseRequest is a ranked demand for a course (with optional alternative
// course choices), optionally bound to a committed Enrollment.
type CourseRequest struct {
	Priority    int
	Alternative bool
	Courses     []CourseID
	Enrollment  *Enrollment
}

// RequestPriority implements Request.
func (r *CourseRequest) RequestPriority() int { return r.Priority }

// HasCourse reports whether the request includes the given course among its
// choices.
func (r *CourseRequest) HasCourse(courseID int64) bool {
	for _, c := range r.Courses {
		if c.ID == courseID {
			return true
		}
	}
	return false
}

// WithEnrollment returns a copy of the request bound to a different
// enrollment (possibly nil). The original request is left untouched.
func (r *CourseRequest) WithEnrollment(e *Enrollment) *CourseRequest {
	clone := *r
	clone.Enrollment = e
	return &clone
}

// FreeTimeRequest asks to keep a weekly time window free of classes.
type FreeTimeRequest struct {
	Priority int
	Time     *TimeBlock
}

// RequestPriority implements Request.
func (r *FreeTimeRequest) RequestPriority() int { return r.Priority }
