package sectioning

import (
	"fmt"
	"sort"

	"github.com/campusflow/sectioning/internal/app/models"
)

// Error codes understood by the scheduling assistant UI and the external
// registration system.
const (
	CodeCancelled    = "UT_CANCEL"
	CodeDeadline     = "UT_DEADLINE"
	CodeNotAvailable = "UT_NOT_AVAILABLE"
	CodeStructure    = "UT_STRUCTURE"
	CodeTimeConflict = "UT_TIME_CNF"
)

// ErrorMessage is one student-correctable violation, scoped to a section of a
// course. The type is comparable so a set of messages collapses duplicates,
// and totally ordered so output is deterministic.
type ErrorMessage struct {
	Course  string `json:"course"`
	Section string `json:"section"` // registrar section id (CRN)
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Compare defines the natural order of error messages: by course, then
// section, then code, then text.
func (m ErrorMessage) Compare(other ErrorMessage) int {
	if m.Course != other.Course {
		if m.Course < other.Course {
			return -1
		}
		return 1
	}
	if m.Section != other.Section {
		if m.Section < other.Section {
			return -1
		}
		return 1
	}
	if m.Code != other.Code {
		if m.Code < other.Code {
			return -1
		}
		return 1
	}
	if m.Message != other.Message {
		if m.Message < other.Message {
			return -1
		}
		return 1
	}
	return 0
}

func (m ErrorMessage) String() string {
	return m.Course + " " + m.Section + " [" + m.Code + "] " + m.Message
}

// errorSet accumulates deduplicated error messages.
type errorSet map[ErrorMessage]struct{}

func (s errorSet) add(m ErrorMessage) {
	s[m] = struct{}{}
}

// sorted returns the set as a deterministically ordered slice.
func (s errorSet) sorted() []ErrorMessage {
	ret := make([]ErrorMessage, 0, len(s))
	for m := range s {
		ret = append(ret, m)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Compare(ret[j]) < 0 })
	return ret
}

// Human-readable message helpers. The class label follows the usual
// "SUBJ 101 Lec 1" form.

func classLabel(course *models.Course, section *models.Section, subpartName string) string {
	if subpartName == "" {
		return fmt.Sprintf("%s %s %s", course.Subject, course.Number, section.Name)
	}
	return fmt.Sprintf("%s %s %s %s", course.Subject, course.Number, subpartName, section.Name)
}

func msgNotAvailable(label string) string {
	return fmt.Sprintf("Enrollment not available: %s.", label)
}

func msgCancelled(label string) string {
	return fmt.Sprintf("Unable to enroll into %s, the class is cancelled.", label)
}

func msgDeadlineNew(label string) string {
	return fmt.Sprintf("Unable to enroll into %s, the deadline for new enrollments has passed.", label)
}

func msgDeadlineChange(label string) string {
	return fmt.Sprintf("Unable to change enrollment of %s, the deadline for changes has passed.", label)
}

func msgDeadlineDrop(course string) string {
	return fmt.Sprintf("Unable to drop %s, the deadline for course drops has passed.", course)
}

func msgIncomplete(course string) string {
	return fmt.Sprintf("Enrollment of %s is incomplete.", course)
}

func msgInvalid(course string) string {
	return fmt.Sprintf("Enrollment of %s is invalid.", course)
}

func msgOverlapping(course string) string {
	return fmt.Sprintf("Enrollment of %s contains overlapping classes.", course)
}

func msgConflicting(course string) string {
	return fmt.Sprintf("Enrollment of %s conflicts with another requested course.", course)
}
