package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusflow/sectioning/internal/app/models"
	"github.com/campusflow/sectioning/internal/pkg/apperrors"
	"github.com/campusflow/sectioning/internal/pkg/dberrors"
)

// SubmissionRepository records special-registration submissions locally so a
// student's submission history survives independently of the remote system.
type SubmissionRepository struct {
	db *pgxpool.Pool
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{
		db: db,
	}
}

// Create records one submission. The client-generated reference is unique; a
// duplicate reference means the same submission was retried.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	query := `
		INSERT INTO submissions (reference, student_id, session_id, request_id, status, submitted)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		submission.Reference,
		submission.StudentID,
		submission.SessionID,
		submission.RequestID,
		submission.Status,
		submission.Submitted,
	).Scan(&submission.ID)
	if dberrors.IsDuplicateConstraintError(err, "submissions_reference_key") {
		return fmt.Errorf("%w: submission %s already recorded", apperrors.ErrConflict, submission.Reference)
	}
	if err != nil {
		return fmt.Errorf("error recording submission: %w", err)
	}

	return nil
}

// GetByStudent retrieves the student's submissions, newest first.
func (r *SubmissionRepository) GetByStudent(ctx context.Context, studentID int64) ([]*models.Submission, error) {
	query := `
		SELECT id, reference, student_id, session_id, request_id, status, submitted
		FROM submissions
		WHERE student_id = $1
		ORDER BY submitted DESC
	`

	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*models.Submission
	for rows.Next() {
		var submission models.Submission
		if err := rows.Scan(
			&submission.ID,
			&submission.Reference,
			&submission.StudentID,
			&submission.SessionID,
			&submission.RequestID,
			&submission.Status,
			&submission.Submitted,
		); err != nil {
			return nil, err
		}
		submissions = append(submissions, &submission)
	}

	return submissions, rows.Err()
}
