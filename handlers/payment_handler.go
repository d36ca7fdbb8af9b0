package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"log"

	config "github.com/nyongesa254/velofix/configs"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nyongesa254/velofix/middleware"
	"github.com/nyongesa254/velofix/payments"
	"github.com/nyongesa254/velofix/services"
)

var processor services.PaymentProcessor

// UsePaymentProcessor wires the processor client shared with the cron
// jobs. Called once from main before routes are registered.
func UsePaymentProcessor(p services.PaymentProcessor) {
	processor = p
}

// InitiatePayment opens a payment attempt for the appointment's approved
// budget, hands the checkout URL back to the customer and starts the
// bounded server-side reconciliation loop for the new attempt.
func InitiatePayment(c *fiber.Ctx) error {
	customerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	appointmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment ID"})
	}

	initiation, err := services.InitiatePayment(processor, appointmentID, customerID)
	if err != nil {
		return serviceError(c, err)
	}

	services.StartPolling(context.Background(), processor, initiation.Attempt.Reference)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"reference":         initiation.Attempt.Reference,
		"authorization_url": initiation.AuthorizationURL,
		"attempt":           initiation.Attempt,
	})
}

// GetPaymentStatus returns the attempt snapshot to a participant in its
// appointment, reconciling once against the processor when the attempt is
// still pending. Clients may poll this endpoint independently of the
// server-side loop.
func GetPaymentStatus(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	reference := c.Params("reference")
	if reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing payment reference"})
	}

	attempt, err := services.PaymentStatusFor(processor, reference, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(attempt)
}

type paystackWebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

// HandlePaymentWebhook reconciles processor callbacks that arrive while no
// poll loop is watching the attempt. The signature check rejects anything
// not signed with our secret.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	signature := c.Get("X-Paystack-Signature")
	body := c.Body()

	mac := hmac.New(sha512.New, []byte(config.Config("PAYSTACK_SECRET_KEY")))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid signature"})
	}

	var payload paystackWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}

	status := payments.MapStatus(payload.Data.Status)
	if !status.IsTerminal() {
		return c.SendStatus(fiber.StatusOK)
	}

	if err := services.ApplyPaymentResult(payload.Data.Reference, status); err != nil {
		log.Printf("🔥 Webhook reconciliation failed for %s: %v", payload.Data.Reference, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook"})
	}

	return c.SendStatus(fiber.StatusOK)
}
