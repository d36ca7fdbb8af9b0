package payments

import (
	"testing"

	"github.com/nyongesa254/velofix/models"
)

func TestMapStatus(t *testing.T) {
	tests := []struct {
		paystack string
		want     models.PaymentStatus
	}{
		{"success", models.PaymentApproved},
		{"failed", models.PaymentRejected},
		{"abandoned", models.PaymentCancelled},
		{"reversed", models.PaymentRefunded},
		{"refunded", models.PaymentRefunded},
		{"pending", models.PaymentPending},
		{"ongoing", models.PaymentPending},
		{"", models.PaymentPending},
	}

	for _, tt := range tests {
		if got := MapStatus(tt.paystack); got != tt.want {
			t.Errorf("MapStatus(%q) = %s, want %s", tt.paystack, got, tt.want)
		}
	}
}
