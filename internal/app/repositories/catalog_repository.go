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

// CatalogRepository loads the course catalog: courses, offerings with their
// full structure, and current enrollment counts. Everything it returns is a
// value snapshot; callers never write through this repository.
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{
		db: db,
	}
}

// GetCourse retrieves a course by ID
func (r *CatalogRepository) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	query := `
		SELECT id, offering_id, subject, course_nbr, title, course_limit
		FROM courses
		WHERE id = $1
	`

	var course models.Course
	err := r.db.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.OfferingID,
		&course.Subject,
		&course.Number,
		&course.Title,
		&course.Limit,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrCourseNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	return &course, nil
}

// SearchCourses retrieves courses of a session whose subject, number or title
// matches the query, in subject and number order.
func (r *CatalogRepository) SearchCourses(ctx context.Context, sessionID int64, search string, limit int) ([]*models.Course, error) {
	query := `
		SELECT c.id, c.offering_id, c.subject, c.course_nbr, c.title, c.course_limit
		FROM courses c
		JOIN offerings o ON o.id = c.offering_id
		WHERE o.session_id = $1
		  AND (c.subject || ' ' || c.course_nbr ILIKE '%' || $2 || '%' OR c.title ILIKE '%' || $2 || '%')
		ORDER BY c.subject, c.course_nbr
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, sessionID, search, limit)
	if err != nil {
		return nil, fmt.Errorf("error searching courses: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		var course models.Course
		if err := rows.Scan(
			&course.ID,
			&course.OfferingID,
			&course.Subject,
			&course.Number,
			&course.Title,
			&course.Limit,
		); err != nil {
			return nil, err
		}
		courses = append(courses, &course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

// ClassLookup resolves a registrar CRN within a session: the catalog course it
// belongs to plus the class and config ids.
type ClassLookup struct {
	Course   models.CourseID
	ClassID  int64
	ConfigID int64
}

// FindClassByCRN resolves a CRN to its course, class and config.
func (r *CatalogRepository) FindClassByCRN(ctx context.Context, sessionID int64, crn string) (*ClassLookup, error) {
	query := `
		SELECT c.id, c.offering_id, c.subject, c.course_nbr, c.title, s.id, sp.config_id
		FROM sections s
		JOIN subparts sp ON sp.id = s.subpart_id
		JOIN configs cf ON cf.id = sp.config_id
		JOIN offerings o ON o.id = cf.offering_id
		JOIN courses c ON c.offering_id = o.id
		WHERE o.session_id = $1 AND s.crn = $2
		ORDER BY c.id
		LIMIT 1
	`

	var lookup ClassLookup
	err := r.db.QueryRow(ctx, query, sessionID, crn).Scan(
		&lookup.Course.ID,
		&lookup.Course.OfferingID,
		&lookup.Course.Subject,
		&lookup.Course.Number,
		&lookup.Course.Title,
		&lookup.ClassID,
		&lookup.ConfigID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: crn %s", apperrors.ErrSectionNotAvailable, crn)
	}
	if err != nil {
		return nil, fmt.Errorf("error resolving crn: %w", err)
	}

	return &lookup, nil
}

// GetOffering retrieves an offering with its full structure: course variants,
// configs, subparts, sections, reservations and distributions.
func (r *CatalogRepository) GetOffering(ctx context.Context, id int64) (*models.Offering, error) {
	offering := &models.Offering{ID: id}

	err := r.db.QueryRow(ctx, `SELECT session_id FROM offerings WHERE id = $1`, id).
		Scan(&offering.SessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: offering %d", apperrors.ErrCourseNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving offering: %w", err)
	}

	if offering.Courses, err = r.offeringCourses(ctx, id); err != nil {
		return nil, err
	}
	if offering.Configs, err = r.offeringConfigs(ctx, id); err != nil {
		return nil, err
	}
	if offering.Reservations, err = r.offeringReservations(ctx, id); err != nil {
		return nil, err
	}
	if offering.Distributions, err = r.offeringDistributions(ctx, id); err != nil {
		return nil, err
	}

	return offering, nil
}

func (r *CatalogRepository) offeringCourses(ctx context.Context, offeringID int64) ([]models.Course, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, offering_id, subject, course_nbr, title, course_limit
		FROM courses
		WHERE offering_id = $1
		ORDER BY id
	`, offeringID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving offering courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var course models.Course
		if err := rows.Scan(
			&course.ID,
			&course.OfferingID,
			&course.Subject,
			&course.Number,
			&course.Title,
			&course.Limit,
		); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	return courses, rows.Err()
}

func (r *CatalogRepository) offeringConfigs(ctx context.Context, offeringID int64) ([]models.Config, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, config_limit
		FROM configs
		WHERE offering_id = $1
		ORDER BY id
	`, offeringID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving offering configs: %w", err)
	}
	defer rows.Close()

	var configs []models.Config
	for rows.Next() {
		var config models.Config
		if err := rows.Scan(&config.ID, &config.Name, &config.Limit); err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range configs {
		subparts, err := r.configSubparts(ctx, configs[i].ID)
		if err != nil {
			return nil, err
		}
		configs[i].Subparts = subparts
	}

	return configs, nil
}

func (r *CatalogRepository) configSubparts(ctx context.Context, configID int64) ([]models.Subpart, error) {
	rows, err := r.db.Query(ctx, `
		SELECT sp.id, sp.name,
		       s.id, s.name, s.section_limit, s.crn, s.days, s.start_slot, s.length, s.cancelled
		FROM subparts sp
		JOIN sections s ON s.subpart_id = sp.id
		WHERE sp.config_id = $1
		ORDER BY sp.id, s.id
	`, configID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving subparts: %w", err)
	}
	defer rows.Close()

	var subparts []models.Subpart
	for rows.Next() {
		var (
			subpartID   int64
			subpartName string
			section     models.Section
			days        int16
			startSlot   int
			length      int
		)
		if err := rows.Scan(
			&subpartID,
			&subpartName,
			&section.ID,
			&section.Name,
			&section.Limit,
			&section.ExternalID,
			&days,
			&startSlot,
			&length,
			&section.Cancelled,
		); err != nil {
			return nil, err
		}
		section.SubpartID = subpartID
		if days != 0 && length > 0 {
			section.Time = &models.TimeBlock{
				Days:      models.DayCode(days),
				StartSlot: startSlot,
				Length:    length,
			}
		}

		if len(subparts) == 0 || subparts[len(subparts)-1].ID != subpartID {
			subparts = append(subparts, models.Subpart{
				ID:       subpartID,
				ConfigID: configID,
				Name:     subpartName,
			})
		}
		last := &subparts[len(subparts)-1]
		last.Sections = append(last.Sections, section)
	}

	return subparts, rows.Err()
}

func (r *CatalogRepository) offeringReservations(ctx context.Context, offeringID int64) ([]models.Reservation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, priority, reservation_limit, over_limit, must_be_used, allow_overlap
		FROM reservations
		WHERE offering_id = $1
		ORDER BY priority, id
	`, offeringID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving reservations: %w", err)
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var reservation models.Reservation
		if err := rows.Scan(
			&reservation.ID,
			&reservation.Priority,
			&reservation.Limit,
			&reservation.CanAssignOverLimit,
			&reservation.MustBeUsed,
			&reservation.AllowOverlap,
		); err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range reservations {
		if err := r.loadReservationScope(ctx, &reservations[i]); err != nil {
			return nil, err
		}
	}

	return reservations, nil
}

func (r *CatalogRepository) loadReservationScope(ctx context.Context, reservation *models.Reservation) error {
	var err error
	if reservation.StudentIDs, err = r.int64Column(ctx,
		`SELECT student_id FROM reservation_students WHERE reservation_id = $1 ORDER BY student_id`,
		reservation.ID); err != nil {
		return err
	}
	if reservation.CourseIDs, err = r.int64Column(ctx,
		`SELECT course_id FROM reservation_courses WHERE reservation_id = $1 ORDER BY course_id`,
		reservation.ID); err != nil {
		return err
	}
	if reservation.ConfigIDs, err = r.int64Column(ctx,
		`SELECT config_id FROM reservation_configs WHERE reservation_id = $1 ORDER BY config_id`,
		reservation.ID); err != nil {
		return err
	}

	rows, err := r.db.Query(ctx,
		`SELECT group_code FROM reservation_groups WHERE reservation_id = $1 ORDER BY group_code`,
		reservation.ID)
	if err != nil {
		return fmt.Errorf("error retrieving reservation groups: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var group string
		if err := rows.Scan(&group); err != nil {
			return err
		}
		reservation.Groups = append(reservation.Groups, group)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	sectionRows, err := r.db.Query(ctx,
		`SELECT subpart_id, section_id FROM reservation_sections WHERE reservation_id = $1 ORDER BY subpart_id, section_id`,
		reservation.ID)
	if err != nil {
		return fmt.Errorf("error retrieving reservation sections: %w", err)
	}
	defer sectionRows.Close()
	for sectionRows.Next() {
		var subpartID, sectionID int64
		if err := sectionRows.Scan(&subpartID, &sectionID); err != nil {
			return err
		}
		if reservation.SectionIDs == nil {
			reservation.SectionIDs = make(map[int64][]int64)
		}
		reservation.SectionIDs[subpartID] = append(reservation.SectionIDs[subpartID], sectionID)
	}

	return sectionRows.Err()
}

func (r *CatalogRepository) offeringDistributions(ctx context.Context, offeringID int64) ([]models.Distribution, error) {
	rows, err := r.db.Query(ctx, `
		SELECT d.id, d.dist_type, ds.section_id
		FROM distributions d
		JOIN distribution_sections ds ON ds.distribution_id = d.id
		WHERE d.offering_id = $1
		ORDER BY d.id, ds.section_id
	`, offeringID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving distributions: %w", err)
	}
	defer rows.Close()

	var (
		distributions []models.Distribution
		lastID        int64
	)
	for rows.Next() {
		var (
			id        int64
			distType  string
			sectionID int64
		)
		if err := rows.Scan(&id, &distType, &sectionID); err != nil {
			return nil, err
		}
		if len(distributions) == 0 || lastID != id {
			distributions = append(distributions, models.Distribution{
				Type: models.DistributionType(distType),
			})
			lastID = id
		}
		last := &distributions[len(distributions)-1]
		last.SectionIDs = append(last.SectionIDs, sectionID)
	}

	return distributions, rows.Err()
}

// GetOfferingEnrollments retrieves the current enrollments of an offering.
func (r *CatalogRepository) GetOfferingEnrollments(ctx context.Context, offeringID int64) (*models.OfferingEnrollments, error) {
	rows, err := r.db.Query(ctx, `
		SELECT e.id, e.student_id, e.config_id, COALESCE(e.reservation_id, 0),
		       c.id, c.offering_id, c.subject, c.course_nbr, c.title
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE c.offering_id = $1
		ORDER BY e.id
	`, offeringID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving enrollments: %w", err)
	}
	defer rows.Close()

	result := &models.OfferingEnrollments{OfferingID: offeringID}
	enrollmentIDs := make([]int64, 0)
	for rows.Next() {
		var (
			enrollmentID int64
			enrollment   models.Enrollment
		)
		if err := rows.Scan(
			&enrollmentID,
			&enrollment.StudentID,
			&enrollment.ConfigID,
			&enrollment.ReservationID,
			&enrollment.Course.ID,
			&enrollment.Course.OfferingID,
			&enrollment.Course.Subject,
			&enrollment.Course.Number,
			&enrollment.Course.Title,
		); err != nil {
			return nil, err
		}
		enrollmentIDs = append(enrollmentIDs, enrollmentID)
		result.Enrollments = append(result.Enrollments, enrollment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, enrollmentID := range enrollmentIDs {
		sectionIDs, err := r.int64Column(ctx,
			`SELECT section_id FROM enrollment_sections WHERE enrollment_id = $1 ORDER BY section_id`,
			enrollmentID)
		if err != nil {
			return nil, err
		}
		result.Enrollments[i].SectionIDs = sectionIDs
	}

	return result, nil
}

func (r *CatalogRepository) int64Column(ctx context.Context, query string, args ...interface{}) ([]int64, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
