package models

import "time"

// AcademicSession describes one term of one campus, including the external
// (registrar) identifiers used by the student-records system and the
// enrollment deadline dates.
type AcademicSession struct {
	ID             int64
	Term           string
	Year           string
	Campus         string
	ExternalTerm   string
	ExternalCampus string

	// Enrollment deadlines; zero value means no deadline of that kind.
	NewEnrollmentDeadline time.Time
	ChangeDeadline        time.Time
	DropDeadline          time.Time
}

// Name returns a human-readable session label, e.g. "Fall 2026 (PWL)".
func (s *AcademicSession) Name() string {
	return s.Term + " " + s.Year + " (" + s.Campus + ")"
}
