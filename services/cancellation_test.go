package services

import (
	"testing"
	"time"

	"github.com/nyongesa254/velofix/models"
)

func TestCanCancel(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status models.AppointmentStatus
		lead   time.Duration
		want   bool
	}{
		{"pending well ahead", models.StatusPending, 72 * time.Hour, true},
		{"confirmed well ahead", models.StatusConfirmed, 48 * time.Hour, true},
		{"confirmed just past the window", models.StatusConfirmed, 24*time.Hour + time.Minute, true},
		{"exactly at the window", models.StatusConfirmed, 24 * time.Hour, false},
		{"confirmed 20 hours out", models.StatusConfirmed, 20 * time.Hour, false},
		{"pending one hour out", models.StatusPending, time.Hour, false},
		{"already started", models.StatusPending, -time.Hour, false},
		{"budget sent", models.StatusBudgetSent, 72 * time.Hour, false},
		{"budget approved", models.StatusBudgetApproved, 72 * time.Hour, false},
		{"payment pending", models.StatusPaymentPending, 72 * time.Hour, false},
		{"paid", models.StatusPaid, 72 * time.Hour, false},
		{"in progress", models.StatusInProgress, 72 * time.Hour, false},
		{"completed", models.StatusCompleted, 72 * time.Hour, false},
		{"already cancelled", models.StatusCancelled, 72 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appointment := &models.Appointment{
				Status:      tt.status,
				ScheduledAt: now.Add(tt.lead),
			}
			if got := CanCancel(appointment, now); got != tt.want {
				t.Errorf("CanCancel(%s, %s ahead) = %v, want %v", tt.status, tt.lead, got, tt.want)
			}
		})
	}
}
