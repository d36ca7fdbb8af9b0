package services

import (
	"time"

	"github.com/nyongesa254/velofix/models"
)

// CancellationWindow is how far ahead of the scheduled time a customer
// may still cancel.
const CancellationWindow = 24 * time.Hour

// CanCancel is a pure guard: a customer may cancel only while the
// appointment is still pending or confirmed and the scheduled time is more
// than the window away. Once money is in flight the appointment has to be
// resolved through the budget/payment flow instead.
func CanCancel(appointment *models.Appointment, now time.Time) bool {
	switch appointment.Status {
	case models.StatusPending, models.StatusConfirmed:
	default:
		return false
	}
	return appointment.ScheduledAt.Sub(now) > CancellationWindow
}
