package jobs

import (
	"log"
	"time"

	"github.com/nyongesa254/velofix/database"
	"github.com/nyongesa254/velofix/models"
	"github.com/nyongesa254/velofix/services"
)

// SweepStalePayments re-verifies attempts whose poll loop has long
// expired. Customers sometimes finish checkout after the ten-minute
// window; the processor's answer stays valid indefinitely, so one extra
// verify per sweep reconciles them.
func SweepStalePayments(processor services.PaymentProcessor) func() {
	return func() {
		log.Println("Running job: SweepStalePayments...")

		cutoff := time.Now().Add(-services.PollTimeout)

		var stale []models.PaymentAttempt
		err := database.DB.
			Where("status = ? AND created_at < ?", models.PaymentPending, cutoff).
			Order("created_at asc").
			Limit(100).
			Find(&stale).Error
		if err != nil {
			log.Printf("Error fetching stale payment attempts: %v", err)
			return
		}

		for _, attempt := range stale {
			if _, err := services.ReconcilePayment(processor, attempt.Reference); err != nil {
				log.Printf("Sweep reconcile failed for %s: %v", attempt.Reference, err)
			}
		}
	}
}
