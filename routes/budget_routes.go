package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nyongesa254/velofix/handlers"
	"github.com/nyongesa254/velofix/middleware"
)

func BudgetRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	budget := api.Group("/appointments/:id/budget", middleware.Protected())
	budget.Get("", handlers.GetBudget)
	budget.Post("/approve", handlers.ApproveBudget)
	budget.Post("/reject", handlers.RejectBudget)

	mechanic := api.Group("/mechanic/appointments", middleware.Protected(), middleware.MechanicRequired())
	mechanic.Put("/:id/budget", handlers.SubmitBudget)
}
