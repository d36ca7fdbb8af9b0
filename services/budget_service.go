package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/nyongesa254/velofix/database"
	"github.com/nyongesa254/velofix/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlatformFeeRate is the surcharge retained by the platform on every
// budget, applied to the subtotal.
var PlatformFeeRate = decimal.RequireFromString("0.05")

// BudgetTotals is the result of computing a budget's line items.
type BudgetTotals struct {
	Subtotal    decimal.Decimal
	PlatformFee decimal.Decimal
	Total       decimal.Decimal
}

// ComputeTotals derives subtotal, platform fee and total from the line
// items. All arithmetic stays in decimal; the fee is rounded to two
// decimals half-up once, at this boundary, and the total is built from the
// rounded fee so that total == subtotal + platform_fee holds exactly as
// stored.
func ComputeTotals(items []models.BudgetItem) (BudgetTotals, error) {
	if len(items) == 0 {
		return BudgetTotals{}, ErrInvalidLineItem
	}

	subtotal := decimal.Zero
	for _, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			return BudgetTotals{}, ErrInvalidLineItem
		}
		if item.Quantity < 1 {
			return BudgetTotals{}, ErrInvalidLineItem
		}
		if item.UnitPrice.IsNegative() {
			return BudgetTotals{}, ErrInvalidLineItem
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	fee := subtotal.Mul(PlatformFeeRate).Round(2)
	return BudgetTotals{
		Subtotal:    subtotal.Round(2),
		PlatformFee: fee,
		Total:       subtotal.Round(2).Add(fee),
	}, nil
}

// budgetEditableStatuses are the appointment statuses in which the
// mechanic may submit or replace a budget.
var budgetEditableStatuses = map[models.AppointmentStatus]bool{
	models.StatusConfirmed:      true,
	models.StatusBudgetPending:  true,
	models.StatusBudgetRejected: true,
}

// SubmitBudget creates the appointment's budget, or replaces its items
// wholesale while negotiation is still open, and drives the appointment to
// budget_sent. Totals are recomputed here; the caller's numbers are only
// the items themselves. A lost status race is retried once on a fresh
// read, since the appointment may still be editable after the winner's
// move.
func SubmitBudget(appointmentID, mechanicID uuid.UUID, items []models.BudgetItem) (*models.Budget, error) {
	var budget *models.Budget
	err := retryOnConflict(func() error {
		var err error
		budget, err = submitBudgetOnce(appointmentID, mechanicID, items)
		return err
	})
	return budget, err
}

func submitBudgetOnce(appointmentID, mechanicID uuid.UUID, items []models.BudgetItem) (*models.Budget, error) {
	var appointment models.Appointment
	if err := database.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if appointment.MechanicID != mechanicID {
		return nil, ErrForbidden
	}
	if !budgetEditableStatuses[appointment.Status] {
		return nil, ErrInvalidState
	}

	totals, err := ComputeTotals(items)
	if err != nil {
		return nil, err
	}

	var budget models.Budget
	from := appointment.Status
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("appointment_id = ?", appointmentID).First(&budget).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			budget = models.Budget{
				AppointmentID: appointmentID,
				Subtotal:      totals.Subtotal,
				PlatformFee:   totals.PlatformFee,
				Total:         totals.Total,
				Status:        models.BudgetPending,
			}
			if err := tx.Create(&budget).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if budget.Status == models.BudgetApproved {
				// approved budgets are immutable; the appointment status
				// check above should already have caught this
				return ErrInvalidState
			}
			if err := tx.Where("budget_id = ?", budget.ID).Delete(&models.BudgetItem{}).Error; err != nil {
				return err
			}
			updates := map[string]interface{}{
				"subtotal":         totals.Subtotal,
				"platform_fee":     totals.PlatformFee,
				"total":            totals.Total,
				"status":           models.BudgetPending,
				"rejection_reason": nil,
			}
			if err := tx.Model(&budget).Updates(updates).Error; err != nil {
				return err
			}
			budget.Status = models.BudgetPending
			budget.RejectionReason = nil
			budget.Subtotal = totals.Subtotal
			budget.PlatformFee = totals.PlatformFee
			budget.Total = totals.Total
		}

		for i := range items {
			items[i].ID = uuid.Nil
			items[i].BudgetID = budget.ID
			items[i].Position = i
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		budget.Items = items

		return transitionTx(tx, &appointment, ActorMechanic, models.StatusBudgetSent, nil)
	})
	if err != nil {
		return nil, err
	}

	database.DB.Preload("Customer").Preload("Mechanic").First(&appointment, "id = ?", appointment.ID)
	go NotifyStatusChange(appointment, from, models.StatusBudgetSent)
	return &budget, nil
}

// ApproveBudget records the customer's acceptance. The budget becomes
// immutable and the appointment moves to budget_approved.
func ApproveBudget(appointmentID, customerID uuid.UUID) (*models.Budget, error) {
	return resolveBudget(appointmentID, customerID, models.BudgetApproved, nil)
}

// RejectBudget records the customer's rejection with a mandatory reason
// and moves the appointment to budget_rejected so the mechanic can
// resubmit.
func RejectBudget(appointmentID, customerID uuid.UUID, reason string) (*models.Budget, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrValidation
	}
	return resolveBudget(appointmentID, customerID, models.BudgetRejected, &reason)
}

// resolveBudget applies the customer's decision, retrying once on a fresh
// read when the budget or appointment swap is lost to a concurrent writer.
func resolveBudget(appointmentID, customerID uuid.UUID, decision models.BudgetStatus, reason *string) (*models.Budget, error) {
	var budget *models.Budget
	err := retryOnConflict(func() error {
		var err error
		budget, err = resolveBudgetOnce(appointmentID, customerID, decision, reason)
		return err
	})
	return budget, err
}

func resolveBudgetOnce(appointmentID, customerID uuid.UUID, decision models.BudgetStatus, reason *string) (*models.Budget, error) {
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

	var budget models.Budget
	if err := database.DB.Preload("Items").Where("appointment_id = ?", appointmentID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if budget.Status != models.BudgetPending || appointment.Status != models.StatusBudgetSent {
		return nil, ErrInvalidState
	}

	target := models.StatusBudgetApproved
	if decision == models.BudgetRejected {
		target = models.StatusBudgetRejected
	}

	from := appointment.Status
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": decision}
		if reason != nil {
			updates["rejection_reason"] = *reason
		}
		result := tx.Model(&models.Budget{}).
			Where("id = ? AND status = ?", budget.ID, models.BudgetPending).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConcurrentModification
		}
		budget.Status = decision
		budget.RejectionReason = reason

		return transitionTx(tx, &appointment, ActorCustomer, target, reason)
	})
	if err != nil {
		return nil, err
	}

	database.DB.Preload("Customer").Preload("Mechanic").First(&appointment, "id = ?", appointment.ID)
	go NotifyStatusChange(appointment, from, target)
	return &budget, nil
}

// GetBudget returns the appointment's budget for either participant.
func GetBudget(appointmentID, userID uuid.UUID) (*models.Budget, error) {
	if _, err := GetAppointment(appointmentID, userID); err != nil {
		return nil, err
	}
	var budget models.Budget
	err := database.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("budget_items.position asc")
	}).Where("appointment_id = ?", appointmentID).First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &budget, nil
}
