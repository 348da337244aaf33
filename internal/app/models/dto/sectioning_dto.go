package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/campusflow/sectioning/internal/app/sectioning"
)

// CourseResponse represents one catalog course in search results
type CourseResponse struct {
	ID        int64  `json:"id" example:"101"`
	Subject   string `json:"subject" example:"CS"`
	CourseNbr string `json:"courseNbr" example:"101"`
	Title     string `json:"title" example:"Intro to Programming"`
	Limit     int    `json:"limit" example:"120"`
	Unlimited bool   `json:"unlimited" example:"false"`
}

// SchedulePick is one class selection of a proposed schedule.
type SchedulePick struct {
	CourseID int64 `json:"courseId" binding:"required,gt=0" example:"101"`
	ClassID  int64 `json:"classId" binding:"required,gt=0" example:"111"`
}

// ValidateScheduleRequest carries a full proposed schedule for validation.
type ValidateScheduleRequest struct {
	Picks []SchedulePick `json:"picks" binding:"required,min=1,dive"`
}

// ValidateScheduleResponse is the result of a schedule validation: the change
// list that would be requested plus every rule violation found.
type ValidateScheduleResponse struct {
	Valid   bool                      `json:"valid"`
	Changes []sectioning.Change       `json:"changes"`
	Errors  []sectioning.ErrorMessage `json:"errors,omitempty"`
}

// EligibilityRequest carries a proposed schedule for a remote eligibility
// check.
type EligibilityRequest struct {
	Picks []SchedulePick `json:"picks" binding:"required,min=1,dive"`
}

// EligibilityResponse is the remote eligibility answer.
type EligibilityResponse struct {
	Eligible bool                      `json:"eligible"`
	Message  string                    `json:"message,omitempty"`
	Errors   []sectioning.ErrorMessage `json:"errors,omitempty"`
}

// SubmitRegistrationRequest submits a proposed schedule to the external
// registration system. The request id is set when resubmitting an existing
// registration request.
type SubmitRegistrationRequest struct {
	Picks     []SchedulePick `json:"picks" binding:"required,min=1,dive"`
	RequestID string         `json:"requestId,omitempty"`
}

// SubmitRegistrationResponse reports the accepted submission.
type SubmitRegistrationResponse struct {
	RequestID     string              `json:"requestId" example:"REQ-1"`
	RequestStatus string              `json:"requestStatus" example:"mayEdit"`
	Reference     uuid.UUID           `json:"reference"`
	Changes       []sectioning.Change `json:"changes"`
}

// ClassScheduleEntry is one rendered class of a schedule.
type ClassScheduleEntry struct {
	ClassID   int64  `json:"classId" example:"111"`
	CRN       string `json:"crn" example:"1001"`
	Subpart   string `json:"subpart" example:"Lec"`
	Section   string `json:"section" example:"1"`
	Days      string `json:"days,omitempty" example:"MWF"`
	Start     int    `json:"start,omitempty" example:"540"`
	End       int    `json:"end,omitempty" example:"600"`
	Cancelled bool   `json:"cancelled,omitempty"`
	Saved     bool   `json:"saved"`
}

// CourseScheduleEntry is one rendered course of a schedule.
type CourseScheduleEntry struct {
	Subject   string               `json:"subject" example:"CS"`
	CourseNbr string               `json:"courseNbr" example:"101"`
	Title     string               `json:"title" example:"Intro to Programming"`
	Classes   []ClassScheduleEntry `json:"classes"`
}

// ScheduleResponse is a student's rendered schedule.
type ScheduleResponse struct {
	StudentID  int64                 `json:"studentId" example:"9001"`
	ExternalID string                `json:"externalId" example:"000009001"`
	Courses    []CourseScheduleEntry `json:"courses"`
}

// RetrievedRegistration is one special-registration request fetched from the
// external system, converted into local schedule terms.
type RetrievedRegistration struct {
	RequestID   string                    `json:"requestId" example:"REQ-1"`
	Status      string                    `json:"status" example:"pending"`
	Submitted   *time.Time                `json:"submitted,omitempty"`
	Description string                    `json:"description" example:"CS 101 (change)"`
	CanEnroll   bool                      `json:"canEnroll"`
	CanSubmit   bool                      `json:"canSubmit"`
	Changes     []sectioning.Change       `json:"changes,omitempty"`
	Schedule    []CourseScheduleEntry     `json:"schedule"`
	Errors      []sectioning.ErrorMessage `json:"errors,omitempty"`
}

// HasRequestsResponse reports whether the student has open registration
// requests.
type HasRequestsResponse struct {
	HasRequests bool `json:"hasRequests"`
}

// SubmissionResponse is one entry of the local submission history.
type SubmissionResponse struct {
	Reference uuid.UUID `json:"reference"`
	RequestID string    `json:"requestId" example:"REQ-1"`
	Status    string    `json:"status" example:"mayEdit"`
	Submitted time.Time `json:"submitted"`
}
