package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyongesa254/velofix/database"
	"github.com/nyongesa254/velofix/models"
	"gorm.io/gorm"
)

// Actor identifies who is asking for a transition. It is always passed
// explicitly; the services never infer identity from ambient state.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorMechanic Actor = "mechanic"
	ActorSystem   Actor = "system"
)

type transition struct {
	from models.AppointmentStatus
	to   models.AppointmentStatus
}

// transitionActors is the single source of truth for which actor may move
// an appointment between which statuses. Status is never written outside
// transitionTx.
var transitionActors = map[transition][]Actor{
	{models.StatusPending, models.StatusConfirmed}: {ActorMechanic},

	{models.StatusConfirmed, models.StatusBudgetSent}:      {ActorMechanic},
	{models.StatusBudgetPending, models.StatusBudgetSent}:  {ActorMechanic},
	{models.StatusBudgetRejected, models.StatusBudgetSent}: {ActorMechanic},
	// after a rejection the mechanic may also park the appointment while
	// reworking the estimate
	{models.StatusBudgetRejected, models.StatusBudgetPending}: {ActorMechanic},

	{models.StatusBudgetSent, models.StatusBudgetApproved}: {ActorCustomer},
	{models.StatusBudgetSent, models.StatusBudgetRejected}: {ActorCustomer},

	// payment outcomes are reconciliation results, never a free user action
	{models.StatusBudgetApproved, models.StatusPaymentPending}: {ActorSystem},
	{models.StatusBudgetApproved, models.StatusPaid}:           {ActorSystem},
	{models.StatusPaymentPending, models.StatusPaid}:           {ActorSystem},
	{models.StatusPaymentPending, models.StatusBudgetApproved}: {ActorSystem},

	{models.StatusPaid, models.StatusInProgress}:      {ActorMechanic},
	{models.StatusInProgress, models.StatusCompleted}: {ActorMechanic},

	// customers cancel only from the early statuses, and only within the
	// window enforced by CanCancel; the system may cancel from any
	// non-terminal status
	{models.StatusPending, models.StatusCancelled}:        {ActorCustomer, ActorSystem},
	{models.StatusConfirmed, models.StatusCancelled}:      {ActorCustomer, ActorSystem},
	{models.StatusBudgetPending, models.StatusCancelled}:  {ActorSystem},
	{models.StatusBudgetSent, models.StatusCancelled}:     {ActorSystem},
	{models.StatusBudgetApproved, models.StatusCancelled}: {ActorSystem},
	{models.StatusBudgetRejected, models.StatusCancelled}: {ActorSystem},
	{models.StatusPaymentPending, models.StatusCancelled}: {ActorSystem},
	{models.StatusPaid, models.StatusCancelled}:           {ActorSystem},
	{models.StatusInProgress, models.StatusCancelled}:     {ActorSystem},
}

// CheckTransition validates (from, to) for the given actor against the
// table. ErrIllegalTransition means nobody may make that move;
// ErrForbidden means the move exists but belongs to a different actor.
func CheckTransition(from, to models.AppointmentStatus, actor Actor) error {
	actors, ok := transitionActors[transition{from, to}]
	if !ok {
		return ErrIllegalTransition
	}
	for _, a := range actors {
		if a == actor {
			return nil
		}
	}
	return ErrForbidden
}

// CanTransition reports whether the actor may move from one status to the
// other.
func CanTransition(from, to models.AppointmentStatus, actor Actor) bool {
	return CheckTransition(from, to, actor) == nil
}

type AppointmentRequest struct {
	MechanicID  uuid.UUID
	BikeID      *uuid.UUID
	ScheduledAt time.Time
	Urgency     string
	Description string
	PhotoURL    *string
	Services    []models.RequestedService
}

// CreateAppointment opens a new appointment in status pending on behalf of
// the customer.
func CreateAppointment(customerID uuid.UUID, req AppointmentRequest) (*models.Appointment, error) {
	if req.ScheduledAt.Before(time.Now()) {
		return nil, ErrValidation
	}
	switch req.Urgency {
	case models.UrgencyLow, models.UrgencyNormal, models.UrgencyHigh:
	default:
		return nil, ErrValidation
	}

	var mechanic models.User
	if err := database.DB.First(&mechanic, "id = ?", req.MechanicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if mechanic.Role != "mechanic" {
		return nil, ErrValidation
	}

	appointment := models.Appointment{
		CustomerID:        customerID,
		MechanicID:        req.MechanicID,
		BikeID:            req.BikeID,
		ScheduledAt:       req.ScheduledAt,
		Urgency:           req.Urgency,
		Description:       req.Description,
		PhotoURL:          req.PhotoURL,
		Status:            models.StatusPending,
		RequestedServices: req.Services,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&appointment).Error; err != nil {
			return err
		}
		event := models.StatusEvent{
			AppointmentID: appointment.ID,
			FromStatus:    models.StatusPending,
			ToStatus:      models.StatusPending,
			Actor:         string(ActorCustomer),
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}

	database.DB.Preload("RequestedServices").Preload("Mechanic").First(&appointment, "id = ?", appointment.ID)
	return &appointment, nil
}

// TransitionAppointment moves the appointment to the target status on
// behalf of the actor. The status write is a compare-and-swap on the
// status read at the start; a lost race is retried once before surfacing
// ErrConcurrentModification.
func TransitionAppointment(appointmentID uuid.UUID, actor Actor, target models.AppointmentStatus, reason *string) (*models.Appointment, error) {
	var appointment *models.Appointment
	err := retryOnConflict(func() error {
		var err error
		appointment, err = transitionOnce(appointmentID, actor, target, reason)
		return err
	})
	return appointment, err
}

// retryOnConflict reruns op once when it loses the status compare-and-swap.
// op must re-read its rows on every call so the second attempt sees the
// winner's state.
func retryOnConflict(op func() error) error {
	err := op()
	if errors.Is(err, ErrConcurrentModification) {
		log.Println("Lost a status race, retrying once")
		err = op()
	}
	return err
}

func transitionOnce(appointmentID uuid.UUID, actor Actor, target models.AppointmentStatus, reason *string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := database.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	from := appointment.Status
	if err := CheckTransition(from, target, actor); err != nil {
		return nil, err
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return transitionTx(tx, &appointment, actor, target, reason)
	})
	if err != nil {
		return nil, err
	}

	database.DB.Preload("Customer").Preload("Mechanic").First(&appointment, "id = ?", appointment.ID)
	go NotifyStatusChange(appointment, from, target)
	return &appointment, nil
}

// transitionTx performs the conditional status update plus audit insert
// inside the caller's transaction. appointment.Status must hold the status
// the caller read; it is updated to the target on success.
func transitionTx(tx *gorm.DB, appointment *models.Appointment, actor Actor, target models.AppointmentStatus, reason *string) error {
	updates := map[string]interface{}{"status": target}
	if target == models.StatusCancelled && reason != nil {
		updates["cancellation_reason"] = *reason
	}

	result := tx.Model(&models.Appointment{}).
		Where("id = ? AND status = ?", appointment.ID, appointment.Status).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConcurrentModification
	}

	event := models.StatusEvent{
		AppointmentID: appointment.ID,
		FromStatus:    appointment.Status,
		ToStatus:      target,
		Actor:         string(actor),
		Reason:        reason,
	}
	if err := tx.Create(&event).Error; err != nil {
		return err
	}

	appointment.Status = target
	return nil
}

// CancelAppointment is the customer-facing cancellation. The policy guard
// runs before the state machine so that a too-late cancel fails loudly
// instead of silently succeeding.
func CancelAppointment(appointmentID, customerID uuid.UUID, reason *string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := database.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if appointment.CustomerID != customerID {
		return nil, ErrForbidden
	}
	if !CanCancel(&appointment, time.Now()) {
		if appointment.Status == models.StatusPending || appointment.Status == models.StatusConfirmed {
			return nil, ErrCancellationWindow
		}
		return nil, ErrIllegalTransition
	}
	if reason != nil && strings.TrimSpace(*reason) == "" {
		reason = nil
	}
	return TransitionAppointment(appointmentID, ActorCustomer, models.StatusCancelled, reason)
}

// GetAppointment returns the appointment if the user participates in it.
func GetAppointment(appointmentID, userID uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	err := database.DB.
		Preload("RequestedServices").
		Preload("Customer").
		Preload("Mechanic").
		Preload("Bike").
		First(&appointment, "id = ?", appointmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !isParticipant(&appointment, userID) {
		return nil, ErrForbidden
	}
	return &appointment, nil
}

// isParticipant reports whether the user is one of the appointment's two
// parties.
func isParticipant(appointment *models.Appointment, userID uuid.UUID) bool {
	return appointment.CustomerID == userID || appointment.MechanicID == userID
}

// StatusHistory returns the audit trail for a participant.
func StatusHistory(appointmentID, userID uuid.UUID) ([]models.StatusEvent, error) {
	if _, err := GetAppointment(appointmentID, userID); err != nil {
		return nil, err
	}
	var events []models.StatusEvent
	err := database.DB.
		Where("appointment_id = ?", appointmentID).
		Order("created_at asc").
		Find(&events).Error
	return events, err
}
