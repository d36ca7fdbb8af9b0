package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nyongesa254/velofix/handlers"
	"github.com/nyongesa254/velofix/middleware"
)

func AppointmentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	appointments := api.Group("/appointments", middleware.Protected())
	appointments.Post("", handlers.CreateAppointment)
	appointments.Get("/me", handlers.GetMyAppointments)
	appointments.Get("/:id", handlers.GetAppointment)
	appointments.Get("/:id/history", handlers.GetAppointmentHistory)
	appointments.Post("/:id/cancel", handlers.CancelAppointment)

	mechanic := api.Group("/mechanic/appointments", middleware.Protected(), middleware.MechanicRequired())
	mechanic.Get("", handlers.GetMechanicAppointments)
	mechanic.Post("/:id/confirm", handlers.ConfirmAppointment)
	mechanic.Post("/:id/start", handlers.StartWork)
	mechanic.Post("/:id/complete", handlers.CompleteAppointment)
}
