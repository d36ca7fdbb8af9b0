package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentApproved  PaymentStatus = "approved"
	PaymentRejected  PaymentStatus = "rejected"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
)

// IsTerminal reports whether the processor will not change the status
// again without a new attempt.
func (s PaymentStatus) IsTerminal() bool {
	return s != PaymentPending
}

// PaymentAttempt is one charge request against the external processor.
// An appointment may accumulate several rejected attempts but at most one
// approved one.
type PaymentAttempt struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AppointmentID uuid.UUID `gorm:"not null;index" json:"appointment_id"`

	Reference string          `gorm:"size:100;not null;unique" json:"reference"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status    PaymentStatus   `gorm:"size:20;not null;default:'pending'" json:"status"`

	PayerName  string `gorm:"size:255" json:"payer_name"`
	PayerEmail string `gorm:"size:255" json:"payer_email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
