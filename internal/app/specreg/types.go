// Package specreg talks to the external student-records system that reviews
// and approves registration changes. It is a thin JSON-over-HTTPS adapter;
// all scheduling semantics live in the sectioning package.
package specreg

import (
	"fmt"
	"strings"
	"time"

	"github.com/campusflow/sectioning/internal/app/sectioning"
)

// ResponseStatus is the outcome field of every remote response.
type ResponseStatus string

// Response statuses.
const (
	StatusSuccess ResponseStatus = "success"
	StatusFailure ResponseStatus = "failure"
)

// RequestStatus is the review state of a submitted registration request.
type RequestStatus string

// Request statuses. The remote system owns this vocabulary; only the two
// "may" states drive behavior on our side, the rest are display-only.
const (
	RequestStatusMayEdit   RequestStatus = "mayEdit"
	RequestStatusMaySubmit RequestStatus = "maySubmit"
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCancelled RequestStatus = "cancelled"
)

const (
	apiTimeLayout      = "2006-01-02T15:04:05Z"
	apiTimeLocalLayout = "2006-01-02 15:04:05"
)

// APITime marshals as UTC "2006-01-02T15:04:05Z". On unmarshal it also
// accepts the local "2006-01-02 15:04:05" pattern, which the remote system
// uses for the submitted timestamp.
type APITime struct {
	time.Time
}

// MarshalJSON renders the canonical UTC layout.
func (t APITime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(apiTimeLayout) + `"`), nil
}

// UnmarshalJSON accepts the canonical layout and the local fallback.
func (t *APITime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(apiTimeLayout, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(apiTimeLocalLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("unsupported time value %q", s)
	}
	t.Time = parsed
	return nil
}

// SpecialRegistrationRequest is the request body of the eligibility and
// submit calls, and the shape echoed back by the retrieve calls.
type SpecialRegistrationRequest struct {
	Term      string              `json:"term"`
	Campus    string              `json:"campus"`
	StudentID string              `json:"studentId"`
	RequestID string              `json:"requestId,omitempty"`
	Changes   []sectioning.Change `json:"changes,omitempty"`
	Status    RequestStatus       `json:"status,omitempty"`
	Submitted *APITime            `json:"submitted,omitempty"`
}

// SpecialRegistrationResponse is the response of the eligibility and submit
// calls.
type SpecialRegistrationResponse struct {
	Status        ResponseStatus `json:"status"`
	Message       string         `json:"message,omitempty"`
	RequestID     string         `json:"requestId,omitempty"`
	RequestStatus RequestStatus  `json:"requestStatus,omitempty"`
}

// Success reports whether the remote call was accepted.
func (r *SpecialRegistrationResponse) Success() bool {
	return r != nil && r.Status == StatusSuccess
}
