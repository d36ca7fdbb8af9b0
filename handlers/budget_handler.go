package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nyongesa254/velofix/middleware"
	"github.com/nyongesa254/velofix/models"
	"github.com/nyongesa254/velofix/services"
	"github.com/shopspring/decimal"
)

type BudgetItemRequest struct {
	Description string          `json:"description" validate:"required,max=200"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type SubmitBudgetRequest struct {
	Items []BudgetItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SubmitBudget lets the mechanic send (or resend) the itemized estimate.
// Totals are recomputed server-side; only the items travel in.
func SubmitBudget(c *fiber.Ctx) error {
	mechanicID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	appointmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment ID"})
	}

	var req SubmitBudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	items := make([]models.BudgetItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.BudgetItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	budget, err := services.SubmitBudget(appointmentID, mechanicID, items)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(budget)
}

func GetBudget(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	appointmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment ID"})
	}

	budget, err := services.GetBudget(appointmentID, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(budget)
}

func ApproveBudget(c *fiber.Ctx) error {
	customerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	appointmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment ID"})
	}

	budget, err := services.ApproveBudget(appointmentID, customerID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(budget)
}

type RejectBudgetRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

func RejectBudget(c *fiber.Ctx) error {
	customerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	appointmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment ID"})
	}

	var req RejectBudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	budget, err := services.RejectBudget(appointmentID, customerID, req.Reason)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(budget)
}
