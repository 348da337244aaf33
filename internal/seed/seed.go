package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/campusflow/sectioning/internal/db"
)

// CreateDefaultData seeds a demo session with a small catalog when the
// database is empty. Development convenience only; a populated database is
// left untouched.
func CreateDefaultData(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) error {
	var hasSessions bool
	err := database.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM sessions)`).Scan(&hasSessions)
	if err != nil {
		return fmt.Errorf("failed to check for existing sessions: %w", err)
	}
	if hasSessions {
		lgr.Info().Msg("Sessions already present, skipping default data")
		return nil
	}

	lgr.Info().Msg("Creating default demo session and catalog...")

	var sessionID, studentID int64
	err = database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		sessionID, studentID, err = seedDemoData(ctx, tx)
		return err
	})
	if err != nil {
		return err
	}

	lgr.Info().
		Int64("sessionId", sessionID).
		Int64("studentId", studentID).
		Msg("Default demo data created")
	return nil
}

type seedSection struct {
	name      string
	crn       string
	limit     int
	days      int
	startSlot int
	length    int
}

type seedSubpart struct {
	name     string
	sections []seedSection
}

// seedDemoData inserts one session, one course with a lecture and a lab
// subpart, and one student requesting it.
func seedDemoData(ctx context.Context, tx pgx.Tx) (int64, int64, error) {
	deadline := time.Now().AddDate(0, 3, 0)

	var sessionID int64
	err := tx.QueryRow(ctx, `
		INSERT INTO sessions (term, year, campus, external_term, external_campus,
			new_enrollment_deadline, change_deadline, drop_deadline)
		VALUES ('Fall', '2026', 'Main', '202710', 'MAIN', $1, $1, $1)
		RETURNING id
	`, deadline).Scan(&sessionID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to seed session: %w", err)
	}

	var offeringID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO offerings (session_id) VALUES ($1) RETURNING id`,
		sessionID).Scan(&offeringID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to seed offering: %w", err)
	}

	var courseID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO courses (offering_id, subject, course_nbr, title, course_limit)
		VALUES ($1, 'CS', '101', 'Intro to Programming', -1)
		RETURNING id
	`, offeringID).Scan(&courseID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to seed course: %w", err)
	}

	var configID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO configs (offering_id, name, config_limit)
		VALUES ($1, 'Lec-Lab', -1)
		RETURNING id
	`, offeringID).Scan(&configID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to seed config: %w", err)
	}

	// Meeting times use five-minute slots: 108 is 9:00, 132 is 11:00.
	// Day masks: Monday is 64 down to Sunday at 1, so MWF is 84, TTh is 40.
	subparts := []seedSubpart{
		{
			name: "Lec",
			sections: []seedSection{
				{"1", "10001", 60, 84, 108, 12},
				{"2", "10002", 60, 84, 120, 12},
			},
		},
		{
			name: "Lab",
			sections: []seedSection{
				{"1", "10003", 30, 40, 132, 24},
				{"2", "10004", 30, 40, 168, 24},
			},
		},
	}

	for _, sp := range subparts {
		var subpartID int64
		err = tx.QueryRow(ctx,
			`INSERT INTO subparts (config_id, name) VALUES ($1, $2) RETURNING id`,
			configID, sp.name).Scan(&subpartID)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to seed subpart: %w", err)
		}
		for _, s := range sp.sections {
			_, err = tx.Exec(ctx, `
				INSERT INTO sections (subpart_id, name, section_limit, crn, days, start_slot, length)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, subpartID, s.name, s.limit, s.crn, s.days, s.startSlot, s.length)
			if err != nil {
				return 0, 0, fmt.Errorf("failed to seed section: %w", err)
			}
		}
	}

	var studentID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO students (external_id, name, session_id)
		VALUES ('9001', 'Demo Student', $1)
		RETURNING id
	`, sessionID).Scan(&studentID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to seed student: %w", err)
	}

	var requestID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO course_requests (student_id, priority, alternative)
		VALUES ($1, 0, FALSE)
		RETURNING id
	`, studentID).Scan(&requestID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to seed course request: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO course_request_courses (request_id, course_id, ord)
		VALUES ($1, $2, 0)
	`, requestID, courseID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to seed request course: %w", err)
	}

	return sessionID, studentID, nil
}
