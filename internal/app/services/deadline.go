package services

import (
	"time"

	"github.com/campusflow/sectioning/internal/app/models"
	"github.com/campusflow/sectioning/internal/app/sectioning"
)

// sessionDeadlinePolicy enforces the session-level enrollment deadlines: last
// day for new enrollments, for changes, and for drops. A zero deadline date
// means that kind of change is always allowed. The policy is session wide, so
// the meeting time and course id are ignored.
type sessionDeadlinePolicy struct {
	session *models.AcademicSession
	now     func() time.Time
}

func newSessionDeadlinePolicy(session *models.AcademicSession) *sessionDeadlinePolicy {
	return &sessionDeadlinePolicy{
		session: session,
		now:     time.Now,
	}
}

// CheckDeadline implements sectioning.DeadlinePolicy.
func (p *sessionDeadlinePolicy) CheckDeadline(_ int64, _ *models.TimeBlock, kind sectioning.DeadlineKind) bool {
	if p.session == nil {
		return true
	}

	var deadline time.Time
	switch kind {
	case sectioning.DeadlineNew:
		deadline = p.session.NewEnrollmentDeadline
	case sectioning.DeadlineChange:
		deadline = p.session.ChangeDeadline
	case sectioning.DeadlineDrop:
		deadline = p.session.DropDeadline
	}
	if deadline.IsZero() {
		return true
	}
	return !p.now().After(deadline)
}
