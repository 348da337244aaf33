package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission is the local audit record of one special-registration submission
// to the external system. The reference is generated client-side before the
// remote call, so a retried submission can be recognized.
type Submission struct {
	ID        int64
	Reference uuid.UUID
	StudentID int64
	SessionID int64
	RequestID string
	Status    string
	Submitted time.Time
}
