package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/campusflow/sectioning/internal/app/models/dto"
	"github.com/campusflow/sectioning/internal/app/services"
	"github.com/campusflow/sectioning/internal/middleware"
	"github.com/gin-gonic/gin"
)

// SectioningController handles course search, schedules and registration
// requests
type SectioningController struct {
	sectioningService *services.SectioningService
}

// NewSectioningController creates a new SectioningController
func NewSectioningController(sectioningService *services.SectioningService) *SectioningController {
	return &SectioningController{
		sectioningService: sectioningService,
	}
}

// ListCourses searches the course catalog
// @Summary Search courses
// @Description Searches the course catalog of an academic session by subject, course number or title
// @Tags courses
// @Accept json
// @Produce json
// @Param sessionId query int true "Academic session ID"
// @Param q query string false "Search text"
// @Param limit query int false "Maximum number of results (default 20, max 100)"
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse} "Courses retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses [get]
func (c *SectioningController) ListCourses(ctx *gin.Context) {
	sessionID, err := strconv.ParseInt(ctx.Query("sessionId"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid session ID")
		errorDetail = errorDetail.WithField("sessionId")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	limit := 20
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	courses, err := c.sectioningService.ListCourses(ctx, sessionID, ctx.Query("q"), limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      courses,
		Timestamp: time.Now(),
	})
}

// GetSchedule renders a student's committed schedule
// @Summary Get student schedule
// @Description Retrieves the student's currently enrolled schedule
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.ScheduleResponse} "Schedule retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not your schedule"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/schedule [get]
func (c *SectioningController) GetSchedule(ctx *gin.Context) {
	studentID, ok := c.studentID(ctx)
	if !ok {
		return
	}

	schedule, err := c.sectioningService.GetSchedule(ctx, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      schedule,
		Timestamp: time.Now(),
	})
}

// ValidateSchedule checks a proposed schedule
// @Summary Validate a proposed schedule
// @Description Checks a proposed schedule against deadlines, availability and structure rules and returns the change list it would produce
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.ValidateScheduleRequest true "Proposed schedule"
// @Success 200 {object} dto.APIResponse{data=dto.ValidateScheduleResponse} "Validation result"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student, course or class not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/schedule/validate [post]
func (c *SectioningController) ValidateSchedule(ctx *gin.Context) {
	studentID, ok := c.studentID(ctx)
	if !ok {
		return
	}

	var request dto.ValidateScheduleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid schedule data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result, err := c.sectioningService.ValidateSchedule(ctx, studentID, &request)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}

// CheckEligibility asks the registration system whether changes may be requested
// @Summary Check registration eligibility
// @Description Validates the proposed schedule locally and asks the external registration system whether the resulting changes may be requested
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.EligibilityRequest true "Proposed schedule"
// @Success 200 {object} dto.APIResponse{data=dto.EligibilityResponse} "Eligibility result"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student, course or class not found"
// @Failure 502 {object} dto.ErrorResponse "Registration service unavailable"
// @Router /students/{id}/special-registrations/eligibility [post]
func (c *SectioningController) CheckEligibility(ctx *gin.Context) {
	studentID, ok := c.studentID(ctx)
	if !ok {
		return
	}

	var request dto.EligibilityRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid schedule data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result, err := c.sectioningService.CheckEligibility(ctx, studentID, &request)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}

// SubmitRegistration submits a registration request
// @Summary Submit a registration request
// @Description Submits the change list of a proposed schedule to the external registration system and records the submission
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.SubmitRegistrationRequest true "Proposed schedule"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitRegistrationResponse} "Registration request submitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or no changes to submit"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student, course or class not found"
// @Failure 502 {object} dto.ErrorResponse "Registration service unavailable"
// @Router /students/{id}/special-registrations [post]
func (c *SectioningController) SubmitRegistration(ctx *gin.Context) {
	studentID, ok := c.studentID(ctx)
	if !ok {
		return
	}

	var request dto.SubmitRegistrationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid schedule data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result, err := c.sectioningService.SubmitRegistration(ctx, studentID, &request)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}

// GetRegistrations retrieves the student's registration requests
// @Summary List registration requests
// @Description Retrieves every special-registration request of the student from the external system
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.RetrievedRegistration} "Registration requests retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 502 {object} dto.ErrorResponse "Registration service unavailable"
// @Router /students/{id}/special-registrations [get]
func (c *SectioningController) GetRegistrations(ctx *gin.Context) {
	studentID, ok := c.studentID(ctx)
	if !ok {
		return
	}

	registrations, err := c.sectioningService.RetrieveAllRegistrations(ctx, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      registrations,
		Timestamp: time.Now(),
	})
}

// CheckRegistrations reports whether the student has open registration requests
// @Summary Check for open registration requests
// @Description Reports whether the student has open special-registration requests in the external system
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.HasRequestsResponse} "Check result"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 502 {object} dto.ErrorResponse "Registration service unavailable"
// @Router /students/{id}/special-registrations/check [get]
func (c *SectioningController) CheckRegistrations(ctx *gin.Context) {
	studentID, ok := c.studentID(ctx)
	if !ok {
		return
	}

	result, err := c.sectioningService.HasOpenRequests(ctx, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}

// GetRegistration retrieves one registration request
// @Summary Get a registration request
// @Description Retrieves a specific special-registration request from the external system, converted into schedule terms
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param requestId path string true "Registration request ID"
// @Success 200 {object} dto.APIResponse{data=dto.RetrievedRegistration} "Registration request retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student or request not found"
// @Failure 502 {object} dto.ErrorResponse "Registration service unavailable"
// @Router /students/{id}/special-registrations/{requestId} [get]
func (c *SectioningController) GetRegistration(ctx *gin.Context) {
	studentID, ok := c.studentID(ctx)
	if !ok {
		return
	}

	requestID := ctx.Param("requestId")
	if requestID == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request ID")
		errorDetail = errorDetail.WithField("requestId")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	registration, err := c.sectioningService.RetrieveRegistration(ctx, studentID, requestID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      registration,
		Timestamp: time.Now(),
	})
}

// GetSubmissions retrieves the local submission history
// @Summary List submissions
// @Description Retrieves the student's locally recorded submission history, newest first
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.SubmissionResponse} "Submissions retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/submissions [get]
func (c *SectioningController) GetSubmissions(ctx *gin.Context) {
	studentID, ok := c.studentID(ctx)
	if !ok {
		return
	}

	submissions, err := c.sectioningService.GetSubmissions(ctx, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      submissions,
		Timestamp: time.Now(),
	})
}

// studentID parses the :id path parameter. Writes the error response itself
// when the parameter is not a valid ID.
func (c *SectioningController) studentID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student ID")
		errorDetail = errorDetail.WithDetails("Student ID must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
