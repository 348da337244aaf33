package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusflow/sectioning/internal/app/models"
	"github.com/campusflow/sectioning/internal/pkg/apperrors"
)

// StudentRepository loads student snapshots: identity, group memberships and
// the full ranked request list with current enrollments.
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
	}
}

// GetStudent retrieves a student by ID with groups, requests and enrollments.
func (r *StudentRepository) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	query := `
		SELECT id, external_id, name, session_id
		FROM students
		WHERE id = $1
	`

	var student models.Student
	err := r.db.QueryRow(ctx, query, id).Scan(
		&student.ID,
		&student.ExternalID,
		&student.Name,
		&student.SessionID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrStudentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	if student.Groups, err = r.studentGroups(ctx, id); err != nil {
		return nil, err
	}
	if student.Requests, err = r.studentRequests(ctx, &student); err != nil {
		return nil, err
	}

	return &student, nil
}

func (r *StudentRepository) studentGroups(ctx context.Context, studentID int64) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT group_code FROM student_groups WHERE student_id = $1 ORDER BY group_code`,
		studentID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving student groups: %w", err)
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var group string
		if err := rows.Scan(&group); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}

	return groups, rows.Err()
}

// requestEntry keeps a request together with its rank while the two request
// tables are merged.
type requestEntry struct {
	priority int
	request  models.Request
}

func (r *StudentRepository) studentRequests(ctx context.Context, student *models.Student) ([]models.Request, error) {
	courseRequests, err := r.courseRequests(ctx, student)
	if err != nil {
		return nil, err
	}
	freeTimeRequests, err := r.freeTimeRequests(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]requestEntry, 0, len(courseRequests)+len(freeTimeRequests))
	for _, cr := range courseRequests {
		entries = append(entries, requestEntry{priority: cr.Priority, request: cr})
	}
	for _, ft := range freeTimeRequests {
		entries = append(entries, requestEntry{priority: ft.Priority, request: ft})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].priority < entries[j].priority })

	requests := make([]models.Request, 0, len(entries))
	for _, entry := range entries {
		requests = append(requests, entry.request)
	}
	return requests, nil
}

func (r *StudentRepository) courseRequests(ctx context.Context, student *models.Student) ([]*models.CourseRequest, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, priority, alternative
		FROM course_requests
		WHERE student_id = $1
		ORDER BY priority, id
	`, student.ID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving course requests: %w", err)
	}
	defer rows.Close()

	var (
		requests   []*models.CourseRequest
		requestIDs []int64
	)
	for rows.Next() {
		var (
			requestID int64
			request   models.CourseRequest
		)
		if err := rows.Scan(&requestID, &request.Priority, &request.Alternative); err != nil {
			return nil, err
		}
		requestIDs = append(requestIDs, requestID)
		requests = append(requests, &request)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, requestID := range requestIDs {
		courses, err := r.requestCourses(ctx, requestID)
		if err != nil {
			return nil, err
		}
		requests[i].Courses = courses
	}

	enrollments, err := r.studentEnrollments(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	for _, enrollment := range enrollments {
		for _, request := range requests {
			if request.HasCourse(enrollment.Course.ID) {
				request.Enrollment = enrollment
				break
			}
		}
	}

	return requests, nil
}

func (r *StudentRepository) requestCourses(ctx context.Context, requestID int64) ([]models.CourseID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.offering_id, c.subject, c.course_nbr, c.title
		FROM course_request_courses rc
		JOIN courses c ON c.id = rc.course_id
		WHERE rc.request_id = $1
		ORDER BY rc.ord
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving request courses: %w", err)
	}
	defer rows.Close()

	var courses []models.CourseID
	for rows.Next() {
		var course models.CourseID
		if err := rows.Scan(
			&course.ID,
			&course.OfferingID,
			&course.Subject,
			&course.Number,
			&course.Title,
		); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	return courses, rows.Err()
}

func (r *StudentRepository) freeTimeRequests(ctx context.Context, studentID int64) ([]*models.FreeTimeRequest, error) {
	rows, err := r.db.Query(ctx, `
		SELECT priority, days, start_slot, length
		FROM free_time_requests
		WHERE student_id = $1
		ORDER BY priority, id
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving free time requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.FreeTimeRequest
	for rows.Next() {
		var (
			request models.FreeTimeRequest
			days    int16
			slot    int
			length  int
		)
		if err := rows.Scan(&request.Priority, &days, &slot, &length); err != nil {
			return nil, err
		}
		request.Time = &models.TimeBlock{Days: models.DayCode(days), StartSlot: slot, Length: length}
		requests = append(requests, &request)
	}

	return requests, rows.Err()
}

func (r *StudentRepository) studentEnrollments(ctx context.Context, studentID int64) ([]*models.Enrollment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT e.id, e.config_id, COALESCE(e.reservation_id, 0),
		       c.id, c.offering_id, c.subject, c.course_nbr, c.title
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.student_id = $1
		ORDER BY e.id
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving student enrollments: %w", err)
	}
	defer rows.Close()

	var (
		enrollments   []*models.Enrollment
		enrollmentIDs []int64
	)
	for rows.Next() {
		var (
			enrollmentID int64
			enrollment   models.Enrollment
		)
		if err := rows.Scan(
			&enrollmentID,
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
		enrollment.StudentID = studentID
		enrollmentIDs = append(enrollmentIDs, enrollmentID)
		enrollments = append(enrollments, &enrollment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, enrollmentID := range enrollmentIDs {
		sectionRows, err := r.db.Query(ctx,
			`SELECT section_id FROM enrollment_sections WHERE enrollment_id = $1 ORDER BY section_id`,
			enrollmentID)
		if err != nil {
			return nil, fmt.Errorf("error retrieving enrollment sections: %w", err)
		}
		for sectionRows.Next() {
			var sectionID int64
			if err := sectionRows.Scan(&sectionID); err != nil {
				sectionRows.Close()
				return nil, err
			}
			enrollments[i].SectionIDs = append(enrollments[i].SectionIDs, sectionID)
		}
		err = sectionRows.Err()
		sectionRows.Close()
		if err != nil {
			return nil, err
		}
	}

	return enrollments, nil
}
