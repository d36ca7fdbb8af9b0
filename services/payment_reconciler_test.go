package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nyongesa254/velofix/models"
	"github.com/shopspring/decimal"
)

// scriptedProcessor replays a fixed sequence of verify results, holding the
// last one once the script runs out.
type scriptedProcessor struct {
	results []verifyResult
	calls   int
}

type verifyResult struct {
	status models.PaymentStatus
	err    error
}

func (p *scriptedProcessor) InitializePayment(amount decimal.Decimal, email, reference string) (string, error) {
	return "https://checkout.example/" + reference, nil
}

func (p *scriptedProcessor) VerifyPayment(reference string) (models.PaymentStatus, error) {
	i := p.calls
	if i >= len(p.results) {
		i = len(p.results) - 1
	}
	p.calls++
	r := p.results[i]
	return r.status, r.err
}

func TestPollPaymentReturnsTerminalStatus(t *testing.T) {
	tests := []struct {
		name string
		want models.PaymentStatus
	}{
		{"approved", models.PaymentApproved},
		{"rejected", models.PaymentRejected},
		{"cancelled", models.PaymentCancelled},
		{"refunded", models.PaymentRefunded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := &scriptedProcessor{results: []verifyResult{
				{status: models.PaymentPending},
				{status: tt.want},
			}}

			status, err := PollPayment(context.Background(), processor, "VFX-test", time.Millisecond, time.Second)
			if err != nil {
				t.Fatalf("PollPayment returned error: %v", err)
			}
			if status != tt.want {
				t.Errorf("status = %s, want %s", status, tt.want)
			}
			if processor.calls < 2 {
				t.Errorf("expected at least 2 verify calls, got %d", processor.calls)
			}
		})
	}
}

func TestPollPaymentSwallowsTransientErrors(t *testing.T) {
	processor := &scriptedProcessor{results: []verifyResult{
		{err: errors.New("connection reset")},
		{err: errors.New("gateway timeout")},
		{status: models.PaymentApproved},
	}}

	status, err := PollPayment(context.Background(), processor, "VFX-test", time.Millisecond, time.Second)
	if err != nil {
		t.Fatalf("PollPayment returned error: %v", err)
	}
	if status != models.PaymentApproved {
		t.Errorf("status = %s, want approved", status)
	}
	if processor.calls != 3 {
		t.Errorf("verify calls = %d, want 3", processor.calls)
	}
}

func TestPollPaymentTimesOut(t *testing.T) {
	processor := &scriptedProcessor{results: []verifyResult{
		{status: models.PaymentPending},
	}}

	status, err := PollPayment(context.Background(), processor, "VFX-test", time.Millisecond, 20*time.Millisecond)
	if !errors.Is(err, ErrPaymentPending) {
		t.Fatalf("PollPayment error = %v, want ErrPaymentPending", err)
	}
	if status != models.PaymentPending {
		t.Errorf("status = %s, want pending", status)
	}
}

func TestPollPaymentHonoursContext(t *testing.T) {
	processor := &scriptedProcessor{results: []verifyResult{
		{status: models.PaymentPending},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := PollPayment(ctx, processor, "VFX-test", time.Millisecond, time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("PollPayment error = %v, want context.Canceled", err)
	}
}
