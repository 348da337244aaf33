package models

// Enrollment is a student's committed assignment within one course: the
// chosen config and one section per subpart of that config. Enrollments are
// value snapshots; a change produces a new Enrollment, never an edit.
type Enrollment struct {
	StudentID     int64
	Course        CourseID
	ConfigID      int64
	SectionIDs    []int64
	ReservationID int64 // 0 when no reservation was used
}

// HasSection reports whether the enrollment includes the given section.
func (e *Enrollment) HasSection(sectionID int64) bool {
	if e == nil {
		return false
	}
	return containsID(e.SectionIDs, sectionID)
}

// OfferingEnrollments holds all current enrollments of one offering, used for
// capacity and reservation accounting.
type OfferingEnrollments struct {
	OfferingID  int64
	Enrollments []Enrollment
}

// CountForSection returns the number of students enrolled in a section.
func (e *OfferingEnrollments) CountForSection(sectionID int64) int {
	if e == nil {
		return 0
	}
	count := 0
	for i := range e.Enrollments {
		if e.Enrollments[i].HasSection(sectionID) {
			count++
		}
	}
	return count
}

// ForSection returns the enrollments that include a section.
func (e *OfferingEnrollments) ForSection(sectionID int64) []*Enrollment {
	if e == nil {
		return nil
	}
	var ret []*Enrollment
	for i := range e.Enrollments {
		if e.Enrollments[i].HasSection(sectionID) {
			ret = append(ret, &e.Enrollments[i])
		}
	}
	return ret
}

// CountForConfig returns the number of students enrolled in a config.
func (e *OfferingEnrollments) CountForConfig(configID int64) int {
	if e == nil {
		return 0
	}
	count := 0
	for i := range e.Enrollments {
		if e.Enrollments[i].ConfigID == configID {
			count++
		}
	}
	return count
}

// ForConfig returns the enrollments of a config.
func (e *OfferingEnrollments) ForConfig(configID int64) []*Enrollment {
	if e == nil {
		return nil
	}
	var ret []*Enrollment
	for i := range e.Enrollments {
		if e.Enrollments[i].ConfigID == configID {
			ret = append(ret, &e.Enrollments[i])
		}
	}
	return ret
}

// CountForCourse returns the number of students enrolled in a course variant.
func (e *OfferingEnrollments) CountForCourse(courseID int64) int {
	if e == nil {
		return 0
	}
	count := 0
	for i := range e.Enrollments {
		if e.Enrollments[i].Course.ID == courseID {
			count++
		}
	}
	return count
}

// ForCourse returns the enrollments of a course variant.
func (e *OfferingEnrollments) ForCourse(courseID int64) []*Enrollment {
	if e == nil {
		return nil
	}
	var ret []*Enrollment
	for i := range e.Enrollments {
		if e.Enrollments[i].Course.ID == courseID {
			ret = append(ret, &e.Enrollments[i])
		}
	}
	return ret
}

// CountForReservation returns the number of enrollments counted against a
// reservation.
func (e *OfferingEnrollments) CountForReservation(reservationID int64) int {
	if e == nil {
		return 0
	}
	count := 0
	for i := range e.Enrollments {
		if e.Enrollments[i].ReservationID == reservationID {
			count++
		}
	}
	return count
}

// ForReservation returns the enrollments counted against a reservation.
func (e *OfferingEnrollments) ForReservation(reservationID int64) []*Enrollment {
	if e == nil {
		return nil
	}
	var ret []*Enrollment
	for i := range e.Enrollments {
		if e.Enrollments[i].ReservationID == reservationID {
			ret = append(ret, &e.Enrollments[i])
		}
	}
	return ret
}
