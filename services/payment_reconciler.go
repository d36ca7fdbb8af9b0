package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nyongesa254/velofix/database"
	"github.com/nyongesa254/velofix/models"
	"github.com/nyongesa254/velofix/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// PollInterval is how often the reconciler asks the processor for the
	// attempt's status.
	PollInterval = 5 * time.Second
	// PollTimeout bounds the whole loop; after this the attempt stays
	// pending and a later explicit status check reconciles it.
	PollTimeout = 10 * time.Minute
)

// PaymentProcessor is the slice of the external processor this service
// needs: open a checkout and read back its status. The Paystack client in
// the payments package implements it.
type PaymentProcessor interface {
	InitializePayment(amount decimal.Decimal, email, reference string) (authorizationURL string, err error)
	VerifyPayment(reference string) (models.PaymentStatus, error)
}

// PaymentInitiation is what the customer gets back from InitiatePayment.
type PaymentInitiation struct {
	Attempt          models.PaymentAttempt `json:"attempt"`
	AuthorizationURL string                `json:"authorization_url"`
}

// InitiatePayment opens a new payment attempt for the appointment's
// approved budget. Allowed from budget_approved, or from payment_pending
// when a previous attempt failed and the customer retries. The amount is
// always the budget's stored total.
func InitiatePayment(processor PaymentProcessor, appointmentID, customerID uuid.UUID) (*PaymentInitiation, error) {
	var appointment models.Appointment
	if err := database.DB.Preload("Customer").First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if appointment.CustomerID != customerID {
		return nil, ErrForbidden
	}
	if appointment.Status != models.StatusBudgetApproved && appointment.Status != models.StatusPaymentPending {
		return nil, ErrInvalidState
	}

	var budget models.Budget
	if err := database.DB.Where("appointment_id = ?", appointmentID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if budget.Status != models.BudgetApproved {
		return nil, ErrInvalidState
	}

	var approved int64
	if err := database.DB.Model(&models.PaymentAttempt{}).
		Where("appointment_id = ? AND status = ?", appointmentID, models.PaymentApproved).
		Count(&approved).Error; err != nil {
		return nil, err
	}
	if approved > 0 {
		return nil, ErrDuplicatePayment
	}

	attempt := models.PaymentAttempt{
		AppointmentID: appointmentID,
		Reference:     utils.GeneratePaymentReference(appointmentID),
		Amount:        budget.Total,
		Status:        models.PaymentPending,
		PayerName:     appointment.Customer.FullName,
		PayerEmail:    appointment.Customer.Email,
	}
	if err := database.DB.Create(&attempt).Error; err != nil {
		return nil, err
	}

	authorizationURL, err := processor.InitializePayment(attempt.Amount, attempt.PayerEmail, attempt.Reference)
	if err != nil {
		log.Printf("🔥 Payment initialization failed for %s: %v", attempt.Reference, err)
		database.DB.Model(&attempt).Update("status", models.PaymentCancelled)
		return nil, ErrUpstreamUnavailable
	}

	if appointment.Status == models.StatusBudgetApproved {
		if _, err := TransitionAppointment(appointmentID, ActorSystem, models.StatusPaymentPending, nil); err != nil {
			return nil, err
		}
	}

	return &PaymentInitiation{Attempt: attempt, AuthorizationURL: authorizationURL}, nil
}

// PollPayment queries the processor at a fixed interval until the attempt
// reaches a terminal status, the timeout elapses, or the context is
// cancelled. Transient processor errors are logged and swallowed; only the
// timeout is surfaced, as ErrPaymentPending. The function performs no
// writes, so abandoning it never loses the payment's eventual truth.
func PollPayment(ctx context.Context, processor PaymentProcessor, reference string, interval, timeout time.Duration) (models.PaymentStatus, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return models.PaymentPending, ctx.Err()
		case <-deadline.C:
			return models.PaymentPending, ErrPaymentPending
		case <-ticker.C:
			status, err := processor.VerifyPayment(reference)
			if err != nil {
				log.Printf("Payment verify failed for %s (will retry): %v", reference, err)
				continue
			}
			if status.IsTerminal() {
				return status, nil
			}
		}
	}
}

// StartPolling runs the bounded reconciliation loop for one attempt in its
// own goroutine and applies the outcome. One poll loop per attempt; loops
// for different appointments never coordinate.
func StartPolling(ctx context.Context, processor PaymentProcessor, reference string) {
	go func() {
		status, err := PollPayment(ctx, processor, reference, PollInterval, PollTimeout)
		switch {
		case errors.Is(err, ErrPaymentPending):
			log.Printf("Payment %s still pending after %s, leaving for later reconciliation", reference, PollTimeout)
			return
		case err != nil:
			log.Printf("Payment polling for %s stopped: %v", reference, err)
			return
		}
		if err := ApplyPaymentResult(reference, status); err != nil {
			log.Printf("🔥 Failed to apply payment result for %s: %v", reference, err)
		}
	}()
}

// ApplyPaymentResult records a terminal processor status on the attempt
// and, on approval, drives the appointment to paid. Idempotent: a second
// call for an already-settled attempt is a no-op, so the poller, the
// webhook and the sweep job may all race on the same reference safely.
func ApplyPaymentResult(reference string, status models.PaymentStatus) error {
	if !status.IsTerminal() {
		return nil
	}

	var attempt models.PaymentAttempt
	if err := database.DB.Where("reference = ?", reference).First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if attempt.Status.IsTerminal() {
		return nil
	}

	result := database.DB.Model(&models.PaymentAttempt{}).
		Where("id = ? AND status = ?", attempt.ID, models.PaymentPending).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// somebody else settled it first
		return nil
	}

	if status != models.PaymentApproved {
		log.Printf("Payment %s finished %s; appointment stays payment_pending until retry or cancel", reference, status)
		return nil
	}

	_, err := TransitionAppointment(attempt.AppointmentID, ActorSystem, models.StatusPaid, nil)
	if errors.Is(err, ErrIllegalTransition) {
		// already paid through another reconciliation path
		return nil
	}
	return err
}

// PaymentStatusFor returns the reconciled attempt snapshot for a
// participant in the attempt's appointment. References are not secrets;
// the guard keeps one customer's payer details away from everyone else.
func PaymentStatusFor(processor PaymentProcessor, reference string, userID uuid.UUID) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	if err := database.DB.Where("reference = ?", reference).First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var appointment models.Appointment
	if err := database.DB.First(&appointment, "id = ?", attempt.AppointmentID).Error; err != nil {
		return nil, err
	}
	if !isParticipant(&appointment, userID) {
		return nil, ErrForbidden
	}

	return ReconcilePayment(processor, reference)
}

// ReconcilePayment asks the processor once for the attempt's current
// status and applies it. Used by the status endpoint and the sweep job for
// attempts whose poll loop has long ended.
func ReconcilePayment(processor PaymentProcessor, reference string) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	if err := database.DB.Where("reference = ?", reference).First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !attempt.Status.IsTerminal() {
		status, err := processor.VerifyPayment(reference)
		if err != nil {
			log.Printf("Reconcile verify failed for %s: %v", reference, err)
			return &attempt, nil
		}
		if status.IsTerminal() {
			if err := ApplyPaymentResult(reference, status); err != nil {
				return nil, err
			}
			database.DB.Where("reference = ?", reference).First(&attempt)
		}
	}
	return &attempt, nil
}
