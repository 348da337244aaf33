package models

// Reservation carves out (or guarantees) seats of an offering for a subset of
// students. Reservations on one offering are totally ordered by Priority,
// with the id breaking ties; a lower-ordered applicable reservation wins.
type Reservation struct {
	ID       int64
	Priority int
	Limit    int // UnlimitedLimit means the reservation has no cap of its own

	// CanAssignOverLimit lets the winning reservation bypass section, config
	// and course limits entirely.
	CanAssignOverLimit bool
	// MustBeUsed makes the reserved space unavailable to students outside the
	// reservation even while the nominal limit has room.
	MustBeUsed bool
	// AllowOverlap lifts time-conflict checks for matched enrollments.
	AllowOverlap bool

	// Applicability. Empty student and group lists make this a course-wide
	// reservation that applies to anybody requesting a restricted course.
	StudentIDs []int64
	Groups     []string
	CourseIDs  []int64

	// Restrictions. Empty means unrestricted at that level; SectionIDs maps a
	// subpart id to the allowed sections of that subpart.
	ConfigIDs  []int64
	SectionIDs map[int64][]int64
}

// IsApplicable reports whether the reservation applies to the student
// requesting the given course.
func (r *Reservation) IsApplicable(student *Student, course *Course) bool {
	if len(r.CourseIDs) > 0 && (course == nil || !containsID(r.CourseIDs, course.ID)) {
		return false
	}
	if len(r.StudentIDs) == 0 && len(r.Groups) == 0 {
		return len(r.CourseIDs) > 0
	}
	if student == nil {
		return false
	}
	if containsID(r.StudentIDs, student.ID) {
		return true
	}
	for _, g := range r.Groups {
		for _, sg := range student.Groups {
			if g == sg {
				return true
			}
		}
	}
	return false
}

// RestrictsToConfig reports whether the reservation is restricted to the
// given config.
func (r *Reservation) RestrictsToConfig(configID int64) bool {
	return containsID(r.ConfigIDs, configID)
}

// RestrictsToSection reports whether the reservation is restricted to the
// given section in any subpart.
func (r *Reservation) RestrictsToSection(sectionID int64) bool {
	for _, ids := range r.SectionIDs {
		if containsID(ids, sectionID) {
			return true
		}
	}
	return false
}

// SectionIDsOf returns the allowed sections of a subpart, or nil when the
// reservation does not restrict that subpart.
func (r *Reservation) SectionIDsOf(subpartID int64) []int64 {
	if r.SectionIDs == nil {
		return nil
	}
	return r.SectionIDs[subpartID]
}

// Compare defines the total order among reservations of one offering.
func (r *Reservation) Compare(other *Reservation) int {
	switch {
	case r.Priority < other.Priority:
		return -1
	case r.Priority > other.Priority:
		return 1
	case r.ID < other.ID:
		return -1
	case r.ID > other.ID:
		return 1
	}
	return 0
}
