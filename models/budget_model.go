package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BudgetStatus string

const (
	BudgetPending  BudgetStatus = "pending"
	BudgetApproved BudgetStatus = "approved"
	BudgetRejected BudgetStatus = "rejected"
)

// Budget is the mechanic's itemized estimate for one appointment.
// Subtotal, platform fee and total are always recomputed from the items
// server-side; client-supplied totals are never trusted.
type Budget struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AppointmentID uuid.UUID `gorm:"not null;uniqueIndex" json:"appointment_id"`

	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	PlatformFee decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"platform_fee"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`

	Status          BudgetStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	RejectionReason *string      `gorm:"type:text" json:"rejection_reason,omitempty"`

	Items []BudgetItem `gorm:"foreignkey:BudgetID" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BudgetItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BudgetID    uuid.UUID       `gorm:"not null;index" json:"-"`
	Position    int             `gorm:"not null;default:0" json:"position"`
	Description string          `gorm:"size:200;not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
}
