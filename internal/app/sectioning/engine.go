package sectioning

import (
	"github.com/campusflow/sectioning/internal/app/models"
)

// Catalog is the read side the engine computes against: course, offering and
// enrollment snapshots taken under one consistent read. The engine never
// re-fetches mid-computation, so implementations are expected to serve all
// calls from the same snapshot.
type Catalog interface {
	// Course returns the course with the given id, or nil when unknown.
	Course(courseID int64) *models.Course
	// Offering returns the offering with the given id, or nil when unknown.
	Offering(offeringID int64) *models.Offering
	// Enrollments returns the current enrollment counts of an offering.
	// A nil result is treated as an empty offering.
	Enrollments(offeringID int64) *models.OfferingEnrollments
}

// DeadlineKind distinguishes the three institutional deadline checks.
type DeadlineKind int

// Deadline kinds.
const (
	DeadlineNew DeadlineKind = iota
	DeadlineChange
	DeadlineDrop
)

func (k DeadlineKind) String() string {
	switch k {
	case DeadlineNew:
		return "NEW"
	case DeadlineChange:
		return "CHANGE"
	case DeadlineDrop:
		return "DROP"
	}
	return "UNKNOWN"
}

// DeadlinePolicy decides whether an enrollment operation is still allowed.
// The meeting time is passed through so a policy can be week-sensitive; the
// default session-date policy ignores it.
type DeadlinePolicy interface {
	CheckDeadline(courseOrOfferingID int64, meeting *models.TimeBlock, kind DeadlineKind) bool
}

// Options carries the institutional configuration flags the engine honors.
type Options struct {
	// KeepCancelledClasses lets a student keep a cancelled section they are
	// already enrolled in instead of being forced out of it.
	KeepCancelledClasses bool
}

// Engine is the enrollment-change computation core: it diffs a student's
// committed state against a proposed assignment, folds add/drop operations
// back into a full request list, and checks that list for feasibility.
//
// The engine is a pure function of its inputs. It holds no mutable state and
// may be shared across goroutines as long as the Catalog behind it is a
// stable snapshot.
type Engine struct {
	catalog   Catalog
	deadlines DeadlinePolicy
	opts      Options
}

// NewEngine creates an engine over the given snapshot and deadline policy.
func NewEngine(catalog Catalog, deadlines DeadlinePolicy, opts Options) *Engine {
	return &Engine{
		catalog:   catalog,
		deadlines: deadlines,
		opts:      opts,
	}
}

func (e *Engine) checkDeadline(courseOrOfferingID int64, meeting *models.TimeBlock, kind DeadlineKind) bool {
	if e.deadlines == nil {
		return true
	}
	return e.deadlines.CheckDeadline(courseOrOfferingID, meeting, kind)
}
