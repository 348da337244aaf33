package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusflow/sectioning/internal/app/models"
	"github.com/campusflow/sectioning/internal/pkg/apperrors"
)

// SessionRepository loads academic sessions and their enrollment deadlines.
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		db: db,
	}
}

// Deadline columns are nullable; NULL means no deadline and maps to the zero
// time.
const sessionColumns = `
	id, term, year, campus, external_term, external_campus,
	COALESCE(new_enrollment_deadline, '0001-01-01'::timestamp),
	COALESCE(change_deadline, '0001-01-01'::timestamp),
	COALESCE(drop_deadline, '0001-01-01'::timestamp)
`

// GetSession retrieves an academic session by ID
func (r *SessionRepository) GetSession(ctx context.Context, id int64) (*models.AcademicSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	var session models.AcademicSession
	err := r.db.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.Term,
		&session.Year,
		&session.Campus,
		&session.ExternalTerm,
		&session.ExternalCampus,
		&session.NewEnrollmentDeadline,
		&session.ChangeDeadline,
		&session.DropDeadline,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving session: %w", err)
	}

	return &session, nil
}
