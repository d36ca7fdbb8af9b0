package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AppointmentStatus string

const (
	StatusPending        AppointmentStatus = "pending"
	StatusConfirmed      AppointmentStatus = "confirmed"
	StatusBudgetPending  AppointmentStatus = "budget_pending"
	StatusBudgetSent     AppointmentStatus = "budget_sent"
	StatusBudgetApproved AppointmentStatus = "budget_approved"
	StatusBudgetRejected AppointmentStatus = "budget_rejected"
	StatusPaymentPending AppointmentStatus = "payment_pending"
	StatusPaid           AppointmentStatus = "paid"
	StatusInProgress     AppointmentStatus = "in_progress"
	StatusCompleted      AppointmentStatus = "completed"
	StatusCancelled      AppointmentStatus = "cancelled"
)

// IsTerminal reports whether no further transition can leave the status.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

const (
	UrgencyLow    = "low"
	UrgencyNormal = "normal"
	UrgencyHigh   = "high"
)

type Appointment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CustomerID uuid.UUID  `gorm:"not null;index" json:"customer_id"`
	MechanicID uuid.UUID  `gorm:"not null;index" json:"mechanic_id"`
	BikeID     *uuid.UUID `json:"bike_id"`

	ScheduledAt time.Time         `gorm:"not null" json:"scheduled_at"`
	Urgency     string            `gorm:"size:10;not null;default:'normal'" json:"urgency"`
	Description string            `gorm:"type:text" json:"description"`
	Status      AppointmentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`

	CancellationReason *string `gorm:"type:text" json:"cancellation_reason,omitempty"`
	PhotoURL           *string `gorm:"size:255" json:"photo_url,omitempty"`

	RequestedServices []RequestedService `gorm:"foreignkey:AppointmentID" json:"requested_services"`

	Customer User  `gorm:"foreignkey:CustomerID" json:"customer,omitempty"`
	Mechanic User  `gorm:"foreignkey:MechanicID" json:"mechanic,omitempty"`
	Bike     *Bike `gorm:"foreignkey:BikeID" json:"bike,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RequestedService is one catalogue item the customer asked for when
// creating the appointment. Reference price is informational; the binding
// amounts live on the budget the mechanic submits.
type RequestedService struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AppointmentID    uuid.UUID       `gorm:"not null;index" json:"-"`
	Name             string          `gorm:"size:200;not null" json:"name"`
	ReferencePrice   decimal.Decimal `gorm:"type:numeric(12,2);default:0.00" json:"reference_price"`
	EstimatedMinutes int             `gorm:"not null;default:0" json:"estimated_minutes"`
}
