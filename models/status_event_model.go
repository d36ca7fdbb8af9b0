package models

import (
	"time"

	"github.com/google/uuid"
)

// StatusEvent is the append-only audit trail of appointment transitions.
// Rows are written in the same transaction as the status change and never
// updated afterwards.
type StatusEvent struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AppointmentID uuid.UUID         `gorm:"not null;index" json:"appointment_id"`
	FromStatus    AppointmentStatus `gorm:"size:20;not null" json:"from_status"`
	ToStatus      AppointmentStatus `gorm:"size:20;not null" json:"to_status"`
	Actor         string            `gorm:"size:20;not null" json:"actor"`
	Reason        *string           `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}
