package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nyongesa254/velofix/models"
)

func TestCheckTransitionAllowed(t *testing.T) {
	tests := []struct {
		name  string
		from  models.AppointmentStatus
		to    models.AppointmentStatus
		actor Actor
	}{
		{"mechanic confirms", models.StatusPending, models.StatusConfirmed, ActorMechanic},
		{"mechanic sends first budget", models.StatusConfirmed, models.StatusBudgetSent, ActorMechanic},
		{"mechanic resubmits after rejection", models.StatusBudgetRejected, models.StatusBudgetSent, ActorMechanic},
		{"mechanic parks rejected budget", models.StatusBudgetRejected, models.StatusBudgetPending, ActorMechanic},
		{"customer approves budget", models.StatusBudgetSent, models.StatusBudgetApproved, ActorCustomer},
		{"customer rejects budget", models.StatusBudgetSent, models.StatusBudgetRejected, ActorCustomer},
		{"system opens payment", models.StatusBudgetApproved, models.StatusPaymentPending, ActorSystem},
		{"system settles payment", models.StatusPaymentPending, models.StatusPaid, ActorSystem},
		{"system rolls back unpaid attempt", models.StatusPaymentPending, models.StatusBudgetApproved, ActorSystem},
		{"mechanic starts work", models.StatusPaid, models.StatusInProgress, ActorMechanic},
		{"mechanic completes work", models.StatusInProgress, models.StatusCompleted, ActorMechanic},
		{"customer cancels pending", models.StatusPending, models.StatusCancelled, ActorCustomer},
		{"customer cancels confirmed", models.StatusConfirmed, models.StatusCancelled, ActorCustomer},
		{"system cancels mid-negotiation", models.StatusBudgetSent, models.StatusCancelled, ActorSystem},
		{"system cancels in-progress work", models.StatusInProgress, models.StatusCancelled, ActorSystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckTransition(tt.from, tt.to, tt.actor); err != nil {
				t.Errorf("CheckTransition(%s -> %s, %s) = %v, want nil", tt.from, tt.to, tt.actor, err)
			}
		})
	}
}

func TestCheckTransitionWrongActor(t *testing.T) {
	tests := []struct {
		name  string
		from  models.AppointmentStatus
		to    models.AppointmentStatus
		actor Actor
	}{
		{"customer cannot confirm", models.StatusPending, models.StatusConfirmed, ActorCustomer},
		{"mechanic cannot approve own budget", models.StatusBudgetSent, models.StatusBudgetApproved, ActorMechanic},
		{"customer cannot mark paid", models.StatusPaymentPending, models.StatusPaid, ActorCustomer},
		{"mechanic cannot mark paid", models.StatusPaymentPending, models.StatusPaid, ActorMechanic},
		{"customer cannot cancel after approval", models.StatusBudgetApproved, models.StatusCancelled, ActorCustomer},
		{"customer cannot cancel paid work", models.StatusPaid, models.StatusCancelled, ActorCustomer},
		{"customer cannot complete", models.StatusInProgress, models.StatusCompleted, ActorCustomer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckTransition(tt.from, tt.to, tt.actor); !errors.Is(err, ErrForbidden) {
				t.Errorf("CheckTransition(%s -> %s, %s) = %v, want ErrForbidden", tt.from, tt.to, tt.actor, err)
			}
		})
	}
}

func TestCheckTransitionIllegal(t *testing.T) {
	tests := []struct {
		name string
		from models.AppointmentStatus
		to   models.AppointmentStatus
	}{
		{"skip confirmation", models.StatusPending, models.StatusBudgetSent},
		{"skip negotiation", models.StatusConfirmed, models.StatusPaid},
		{"backwards from paid", models.StatusPaid, models.StatusBudgetSent},
		{"out of completed", models.StatusCompleted, models.StatusInProgress},
		{"out of cancelled", models.StatusCancelled, models.StatusPending},
		{"pay without approval", models.StatusBudgetSent, models.StatusPaid},
		{"self transition", models.StatusPaymentPending, models.StatusPaymentPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, actor := range []Actor{ActorCustomer, ActorMechanic, ActorSystem} {
				if err := CheckTransition(tt.from, tt.to, actor); !errors.Is(err, ErrIllegalTransition) {
					t.Errorf("CheckTransition(%s -> %s, %s) = %v, want ErrIllegalTransition", tt.from, tt.to, actor, err)
				}
			}
		})
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for tr := range transitionActors {
		if tr.from.IsTerminal() {
			t.Errorf("terminal status %s has outgoing transition to %s", tr.from, tr.to)
		}
	}
}

func TestRetryOnConflict(t *testing.T) {
	t.Run("second attempt wins", func(t *testing.T) {
		calls := 0
		err := retryOnConflict(func() error {
			calls++
			if calls == 1 {
				return ErrConcurrentModification
			}
			return nil
		})
		if err != nil {
			t.Errorf("retryOnConflict = %v, want nil", err)
		}
		if calls != 2 {
			t.Errorf("op calls = %d, want 2", calls)
		}
	})

	t.Run("both attempts lose", func(t *testing.T) {
		calls := 0
		err := retryOnConflict(func() error {
			calls++
			return ErrConcurrentModification
		})
		if !errors.Is(err, ErrConcurrentModification) {
			t.Errorf("retryOnConflict = %v, want ErrConcurrentModification", err)
		}
		if calls != 2 {
			t.Errorf("op calls = %d, want 2", calls)
		}
	})

	t.Run("success is not retried", func(t *testing.T) {
		calls := 0
		if err := retryOnConflict(func() error {
			calls++
			return nil
		}); err != nil {
			t.Errorf("retryOnConflict = %v, want nil", err)
		}
		if calls != 1 {
			t.Errorf("op calls = %d, want 1", calls)
		}
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		if err := retryOnConflict(func() error {
			calls++
			return boom
		}); !errors.Is(err, boom) {
			t.Errorf("retryOnConflict = %v, want boom", err)
		}
		if calls != 1 {
			t.Errorf("op calls = %d, want 1", calls)
		}
	})
}

func TestIsParticipant(t *testing.T) {
	customerID := uuid.New()
	mechanicID := uuid.New()
	appointment := &models.Appointment{CustomerID: customerID, MechanicID: mechanicID}

	if !isParticipant(appointment, customerID) {
		t.Error("customer should be a participant")
	}
	if !isParticipant(appointment, mechanicID) {
		t.Error("mechanic should be a participant")
	}
	if isParticipant(appointment, uuid.New()) {
		t.Error("unrelated user should not be a participant")
	}
}

func TestEveryNonTerminalStatusIsCancellable(t *testing.T) {
	statuses := []models.AppointmentStatus{
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusBudgetPending,
		models.StatusBudgetSent,
		models.StatusBudgetApproved,
		models.StatusBudgetRejected,
		models.StatusPaymentPending,
		models.StatusPaid,
		models.StatusInProgress,
	}
	for _, from := range statuses {
		if !CanTransition(from, models.StatusCancelled, ActorSystem) {
			t.Errorf("system cannot cancel from %s", from)
		}
	}
}
