package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusflow/sectioning/internal/app/models"
	"github.com/campusflow/sectioning/internal/app/models/dto"
	"github.com/campusflow/sectioning/internal/app/repositories"
	"github.com/campusflow/sectioning/internal/app/sectioning"
	"github.com/campusflow/sectioning/internal/app/specreg"
	"github.com/campusflow/sectioning/internal/pkg/apperrors"
	"github.com/campusflow/sectioning/internal/pkg/validation"
)

// RegistrationProvider is the remote special-registration API used by the
// service. Satisfied by specreg.Provider.
type RegistrationProvider interface {
	CheckEligibility(ctx context.Context, request *specreg.SpecialRegistrationRequest) (*specreg.SpecialRegistrationResponse, error)
	Submit(ctx context.Context, request *specreg.SpecialRegistrationRequest) (*specreg.SpecialRegistrationResponse, error)
	Retrieve(ctx context.Context, term, campus, studentID, requestID string) (*specreg.SpecialRegistrationRequest, error)
	RetrieveAll(ctx context.Context, term, campus, studentID string) ([]specreg.SpecialRegistrationRequest, error)
	HasRequests(ctx context.Context, term, campus, studentID string) (bool, error)
}

// SectioningService implements the registration use cases: course search,
// schedule rendering, schedule validation, and the special-registration round
// trips to the external student-records system.
type SectioningService struct {
	catalogRepo    *repositories.CatalogRepository
	studentRepo    *repositories.StudentRepository
	sessionRepo    *repositories.SessionRepository
	submissionRepo *repositories.SubmissionRepository
	provider       RegistrationProvider
	projector      AssignmentProjector
	opts           sectioning.Options
	logger         zerolog.Logger
}

// NewSectioningService creates a new sectioning service instance
func NewSectioningService(
	repos *repositories.Repositories,
	provider RegistrationProvider,
	projector AssignmentProjector,
	opts sectioning.Options,
	logger zerolog.Logger,
) *SectioningService {
	return &SectioningService{
		catalogRepo:    repos.CatalogRepository,
		studentRepo:    repos.StudentRepository,
		sessionRepo:    repos.SessionRepository,
		submissionRepo: repos.SubmissionRepository,
		provider:       provider,
		projector:      projector,
		opts:           opts,
		logger:         logger.With().Str("service", "sectioning").Logger(),
	}
}

// ListCourses searches the catalog of a session.
func (s *SectioningService) ListCourses(ctx context.Context, sessionID int64, query string, limit int) ([]dto.CourseResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	courses, err := s.catalogRepo.SearchCourses(ctx, sessionID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error searching courses: %w", err)
	}

	responses := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, dto.CourseResponse{
			ID:        course.ID,
			Subject:   course.Subject,
			CourseNbr: course.Number,
			Title:     course.Title,
			Limit:     course.Limit,
			Unlimited: models.IsUnlimited(course.Limit),
		})
	}
	return responses, nil
}

// GetSchedule renders the student's committed schedule.
func (s *SectioningService) GetSchedule(ctx context.Context, studentID int64) (*dto.ScheduleResponse, error) {
	student, err := s.studentRepo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	snapshot := newCatalogSnapshot(ctx, s.catalogRepo, s.logger)
	return &dto.ScheduleResponse{
		StudentID:  student.ID,
		ExternalID: specreg.FormatStudentID(student.ExternalID),
		Courses:    s.projector.Project(student, student.Requests, snapshot),
	}, nil
}

// validationResult is the outcome of running a proposed schedule through the
// engine: the change list against the committed state plus every rule
// violation.
type validationResult struct {
	student *models.Student
	session *models.AcademicSession
	merged  []models.Request
	changes []sectioning.Change
	errors  []sectioning.ErrorMessage
}

// validatePicks runs the full pipeline: resolve picks, fold them into the
// request list, check feasibility, and diff against the committed schedule.
func (s *SectioningService) validatePicks(ctx context.Context, studentID int64, picks []dto.SchedulePick) (*validationResult, error) {
	student, err := s.studentRepo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	session, err := s.sessionRepo.GetSession(ctx, student.SessionID)
	if err != nil {
		return nil, err
	}

	snapshot := newCatalogSnapshot(ctx, s.catalogRepo, s.logger)
	engine := sectioning.NewEngine(snapshot, newSessionDeadlinePolicy(session), s.opts)

	assignment := make([]*sectioning.ClassAssignment, 0, len(picks))
	adds := make(map[models.CourseID][]sectioning.ClassRef)
	pickedSections := make(map[int64]map[int64]bool)

	for _, pick := range picks {
		ca := &sectioning.ClassAssignment{CourseID: pick.CourseID, ClassID: pick.ClassID}
		assignment = append(assignment, ca)

		course := snapshot.Course(pick.CourseID)
		if course == nil {
			// Left for the change-set builder, which reports broken
			// references with full context.
			continue
		}
		ca.Subject = course.Subject
		ca.CourseNbr = course.Number

		offering := snapshot.Offering(course.OfferingID)
		if offering == nil {
			continue
		}
		section := offering.Section(pick.ClassID)
		if section == nil {
			continue
		}
		ca.Section = section.Name
		if subpart := offering.Subpart(section.SubpartID); subpart != nil {
			ca.Subpart = subpart.Name
			adds[course.CourseID] = append(adds[course.CourseID], sectioning.ClassRef{
				ClassID:  section.ID,
				ConfigID: subpart.ConfigID,
			})
			if pickedSections[course.ID] == nil {
				pickedSections[course.ID] = make(map[int64]bool)
			}
			pickedSections[course.ID][section.ID] = true
		}
	}

	// Held sections that the proposed schedule no longer includes are drops,
	// including whole courses absent from the picks.
	drops := make(map[models.CourseID][]sectioning.ClassRef)
	for _, cr := range student.CourseRequests() {
		enrollment := cr.Enrollment
		if enrollment == nil {
			continue
		}
		for _, sectionID := range enrollment.SectionIDs {
			if !pickedSections[enrollment.Course.ID][sectionID] {
				drops[enrollment.Course] = append(drops[enrollment.Course], sectioning.ClassRef{
					ClassID:  sectionID,
					ConfigID: enrollment.ConfigID,
				})
			}
		}
	}

	merged := engine.MergeRequests(student, adds, drops)
	errs, err := engine.CheckRequests(student, merged)
	if err != nil {
		return nil, err
	}
	changes, err := engine.BuildChangeList(student, assignment, errs)
	if err != nil {
		return nil, err
	}

	return &validationResult{
		student: student,
		session: session,
		merged:  merged,
		changes: changes,
		errors:  errs,
	}, nil
}

// ValidateSchedule checks a proposed schedule locally and returns the change
// list it would produce together with every violation found.
func (s *SectioningService) ValidateSchedule(ctx context.Context, studentID int64, request *dto.ValidateScheduleRequest) (*dto.ValidateScheduleResponse, error) {
	result, err := s.validatePicks(ctx, studentID, request.Picks)
	if err != nil {
		return nil, err
	}

	return &dto.ValidateScheduleResponse{
		Valid:   len(result.errors) == 0,
		Changes: result.changes,
		Errors:  result.errors,
	}, nil
}

// CheckEligibility validates the proposed schedule locally and asks the
// external system whether the resulting changes may be requested.
func (s *SectioningService) CheckEligibility(ctx context.Context, studentID int64, request *dto.EligibilityRequest) (*dto.EligibilityResponse, error) {
	result, err := s.validatePicks(ctx, studentID, request.Picks)
	if err != nil {
		return nil, err
	}

	response, err := s.provider.CheckEligibility(ctx, s.remoteRequest(result, ""))
	if err != nil {
		return nil, err
	}

	return &dto.EligibilityResponse{
		Eligible: response.Success(),
		Message:  response.Message,
		Errors:   result.errors,
	}, nil
}

// SubmitRegistration submits the change list of a proposed schedule to the
// external system and records the submission locally.
func (s *SectioningService) SubmitRegistration(ctx context.Context, studentID int64, request *dto.SubmitRegistrationRequest) (*dto.SubmitRegistrationResponse, error) {
	result, err := s.validatePicks(ctx, studentID, request.Picks)
	if err != nil {
		return nil, err
	}
	if len(result.changes) == 0 {
		return nil, apperrors.NewBadRequestError("proposed schedule matches the current enrollment")
	}

	response, err := s.provider.Submit(ctx, s.remoteRequest(result, request.RequestID))
	if err != nil {
		return nil, err
	}

	submission := &models.Submission{
		Reference: uuid.New(),
		StudentID: result.student.ID,
		SessionID: result.session.ID,
		RequestID: response.RequestID,
		Status:    string(response.RequestStatus),
		Submitted: time.Now(),
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		// The remote request went through; losing the audit row must not
		// fail the submission.
		s.logger.Error().Err(err).Str("requestId", response.RequestID).Msg("Failed to record submission")
	}

	return &dto.SubmitRegistrationResponse{
		RequestID:     response.RequestID,
		RequestStatus: string(response.RequestStatus),
		Reference:     submission.Reference,
		Changes:       result.changes,
	}, nil
}

// RetrieveRegistration fetches one registration request from the external
// system and converts it into local schedule terms.
func (s *SectioningService) RetrieveRegistration(ctx context.Context, studentID int64, requestID string) (*dto.RetrievedRegistration, error) {
	student, session, err := s.studentSession(ctx, studentID)
	if err != nil {
		return nil, err
	}

	remote, err := s.provider.Retrieve(ctx, session.ExternalTerm, session.ExternalCampus, student.ExternalID, requestID)
	if err != nil {
		return nil, err
	}
	return s.convertRetrieved(ctx, student, remote)
}

// RetrieveAllRegistrations fetches and converts every registration request of
// the student.
func (s *SectioningService) RetrieveAllRegistrations(ctx context.Context, studentID int64) ([]*dto.RetrievedRegistration, error) {
	student, session, err := s.studentSession(ctx, studentID)
	if err != nil {
		return nil, err
	}

	remotes, err := s.provider.RetrieveAll(ctx, session.ExternalTerm, session.ExternalCampus, student.ExternalID)
	if err != nil {
		return nil, err
	}

	registrations := make([]*dto.RetrievedRegistration, 0, len(remotes))
	for i := range remotes {
		registration, err := s.convertRetrieved(ctx, student, &remotes[i])
		if err != nil {
			return nil, err
		}
		registrations = append(registrations, registration)
	}
	return registrations, nil
}

// HasOpenRequests reports whether the student has open registration requests
// in the external system.
func (s *SectioningService) HasOpenRequests(ctx context.Context, studentID int64) (*dto.HasRequestsResponse, error) {
	student, session, err := s.studentSession(ctx, studentID)
	if err != nil {
		return nil, err
	}

	has, err := s.provider.HasRequests(ctx, session.ExternalTerm, session.ExternalCampus, student.ExternalID)
	if err != nil {
		return nil, err
	}
	return &dto.HasRequestsResponse{HasRequests: has}, nil
}

// GetSubmissions returns the student's local submission history.
func (s *SectioningService) GetSubmissions(ctx context.Context, studentID int64) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissionRepo.GetByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.SubmissionResponse{
			Reference: submission.Reference,
			RequestID: submission.RequestID,
			Status:    submission.Status,
			Submitted: submission.Submitted,
		})
	}
	return responses, nil
}

func (s *SectioningService) studentSession(ctx context.Context, studentID int64) (*models.Student, *models.AcademicSession, error) {
	student, err := s.studentRepo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	session, err := s.sessionRepo.GetSession(ctx, student.SessionID)
	if err != nil {
		return nil, nil, err
	}
	return student, session, nil
}

func (s *SectioningService) remoteRequest(result *validationResult, requestID string) *specreg.SpecialRegistrationRequest {
	return &specreg.SpecialRegistrationRequest{
		Term:      result.session.ExternalTerm,
		Campus:    result.session.ExternalCampus,
		StudentID: specreg.FormatStudentID(result.student.ExternalID),
		RequestID: requestID,
		Changes:   result.changes,
	}
}

// convertRetrieved folds a remote registration request back into local terms:
// its changes are applied to the student's request list, checked, and
// rendered as a schedule.
func (s *SectioningService) convertRetrieved(ctx context.Context, student *models.Student, remote *specreg.SpecialRegistrationRequest) (*dto.RetrievedRegistration, error) {
	snapshot := newCatalogSnapshot(ctx, s.catalogRepo, s.logger)
	session, err := s.sessionRepo.GetSession(ctx, student.SessionID)
	if err != nil {
		return nil, err
	}
	engine := sectioning.NewEngine(snapshot, newSessionDeadlinePolicy(session), s.opts)

	adds := make(map[models.CourseID][]sectioning.ClassRef)
	drops := make(map[models.CourseID][]sectioning.ClassRef)
	for _, change := range remote.Changes {
		if !validation.CompiledPatterns.CRN.MatchString(change.CRN) {
			s.logger.Warn().Str("crn", change.CRN).Msg("Malformed CRN in retrieved registration")
			continue
		}
		lookup, err := s.catalogRepo.FindClassByCRN(ctx, student.SessionID, change.CRN)
		if err != nil {
			// A CRN the catalog no longer knows cannot be converted; the
			// change is still shown verbatim in the change list.
			s.logger.Warn().Str("crn", change.CRN).Msg("Unknown CRN in retrieved registration")
			continue
		}
		ref := sectioning.ClassRef{ClassID: lookup.ClassID, ConfigID: lookup.ConfigID}
		switch change.Operation {
		case sectioning.OperationAdd:
			adds[lookup.Course] = append(adds[lookup.Course], ref)
		case sectioning.OperationDrop:
			drops[lookup.Course] = append(drops[lookup.Course], ref)
		}
	}

	merged := engine.MergeRequests(student, adds, drops)
	errs, err := engine.CheckRequests(student, merged)
	if err != nil {
		return nil, err
	}

	registration := &dto.RetrievedRegistration{
		RequestID:   remote.RequestID,
		Status:      string(remote.Status),
		Description: describeChanges(adds, drops),
		CanEnroll:   remote.Status == specreg.RequestStatusMaySubmit,
		CanSubmit:   remote.Status == specreg.RequestStatusMayEdit,
		Changes:     remote.Changes,
		Schedule:    s.projector.Project(student, merged, snapshot),
		Errors:      errs,
	}
	if remote.Submitted != nil && !remote.Submitted.IsZero() {
		submitted := remote.Submitted.Time
		registration.Submitted = &submitted
	}
	return registration, nil
}

// describeChanges renders the "CS 101 (change), MATH 200 (drop)" summary of a
// registration request, courses in subject and number order. A course with
// only adds is an add, only drops a drop, both a change.
func describeChanges(adds, drops map[models.CourseID][]sectioning.ClassRef) string {
	courses := make(map[models.CourseID]bool)
	for course := range adds {
		courses[course] = true
	}
	for course := range drops {
		courses[course] = true
	}

	ordered := make([]models.CourseID, 0, len(courses))
	for course := range courses {
		ordered = append(ordered, course)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Subject != ordered[j].Subject {
			return ordered[i].Subject < ordered[j].Subject
		}
		if ordered[i].Number != ordered[j].Number {
			return ordered[i].Number < ordered[j].Number
		}
		return ordered[i].ID < ordered[j].ID
	})

	description := ""
	for _, course := range ordered {
		verb := "change"
		switch {
		case len(adds[course]) > 0 && len(drops[course]) == 0:
			verb = "add"
		case len(drops[course]) > 0 && len(adds[course]) == 0:
			verb = "drop"
		}
		if description != "" {
			description += ", "
		}
		description += course.Name() + " (" + verb + ")"
	}
	return description
}
