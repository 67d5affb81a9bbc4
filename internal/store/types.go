// Package store defines the persisted data model of the attendance system
// and the repository interfaces its backends implement.
package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/faceattend/faceattend/internal/constants"
)

// EnrolledIdentity maps a person's name to their enrolled face descriptor.
// Names are exact, case-sensitive keys; at most one identity per name.
type EnrolledIdentity struct {
	Name       string    `json:"name"`
	Descriptor []float32 `json:"descriptor"`
	Dim        int       `json:"dim"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
	UpdatedAt  time.Time `json:"updated_at,omitzero"`
}

// AttendanceEvent records one attendance marking. Date and Time are local
// to the capturing device; Time is informational only and never used for
// deduplication.
type AttendanceEvent struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// NewAttendanceEvent builds an event for the given identity at the given
// local wall-clock moment.
func NewAttendanceEvent(name string, now time.Time) AttendanceEvent {
	return AttendanceEvent{
		ID:        uuid.New().String(),
		Name:      name,
		Date:      now.Format(constants.DateLayout),
		Time:      now.Format(constants.TimeLayout),
		CreatedAt: now,
	}
}
