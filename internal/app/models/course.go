package models

// UnlimitedLimit is the sentinel value for an unlimited enrollment limit.
const UnlimitedLimit = -1

// IsUnlimited reports whether a limit value means "no limit". Besides the -1
// sentinel, legacy data uses very large limits (9999 and up) for the same
// purpose.
func IsUnlimited(limit int) bool {
	return limit < 0 || limit >= 9999
}

// CourseID identifies one course variant of an instructional offering.
type CourseID struct {
	ID         int64
	OfferingID int64
	Subject    string
	Number     string
	Title      string
}

// Name returns the course name in the usual "SUBJ 101" form.
func (c CourseID) Name() string {
	return c.Subject + " " + c.Number
}

// Course is a read-only course snapshot taken from the catalog for one
// request cycle.
type Course struct {
	CourseID
	Limit int // UnlimitedLimit means no course-level cap
}
