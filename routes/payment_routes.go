package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nyongesa254/velofix/handlers"
	"github.com/nyongesa254/velofix/middleware"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// the webhook authenticates via its HMAC signature, not a JWT
	api.Post("/payments/webhook", handlers.HandlePaymentWebhook)

	payments := api.Group("/payments", middleware.Protected())
	payments.Get("/:reference", handlers.GetPaymentStatus)

	appointments := api.Group("/appointments", middleware.Protected())
	appointments.Post("/:id/payments", handlers.InitiatePayment)
}
