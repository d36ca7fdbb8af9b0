package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nyongesa254/velofix/database"
	"github.com/nyongesa254/velofix/middleware"
	"github.com/nyongesa254/velofix/models"
	"github.com/nyongesa254/velofix/services"
	"github.com/shopspring/decimal"
)

type RequestedServiceRequest struct {
	Name             string          `json:"name" validate:"required,max=200"`
	ReferencePrice   decimal.Decimal `json:"reference_price"`
	EstimatedMinutes int             `json:"estimated_minutes" validate:"min=0"`
}

type CreateAppointmentRequest struct {
	MechanicID  string                    `json:"mechanic_id" validate:"required,uuid"`
	BikeID      *string                   `json:"bike_id,omitempty" validate:"omitempty,uuid"`
	ScheduledAt string                    `json:"scheduled_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Urgency     string                    `json:"urgency" validate:"required,oneof=low normal high"`
	Description string                    `json:"description" validate:"max=2000"`
	PhotoURL    *string                   `json:"photo_url,omitempty" validate:"omitempty,url"`
	Services    []RequestedServiceRequest `json:"requested_services" validate:"dive"`
}

func CreateAppointment(c *fiber.Ctx) error {
	customerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req CreateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	mechanicID, err := uuid.Parse(req.MechanicID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mechanic ID"})
	}
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid scheduled time"})
	}

	var bikeID *uuid.UUID
	if req.BikeID != nil {
		parsed, err := uuid.Parse(*req.BikeID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bike ID"})
		}
		bikeID = &parsed
	}

	requested := make([]models.RequestedService, 0, len(req.Services))
	for _, s := range req.Services {
		requested = append(requested, models.RequestedService{
			Name:             s.Name,
			ReferencePrice:   s.ReferencePrice,
			EstimatedMinutes: s.EstimatedMinutes,
		})
	}

	appointment, err := services.CreateAppointment(customerID, services.AppointmentRequest{
		MechanicID:  mechanicID,
		BikeID:      bikeID,
		ScheduledAt: scheduledAt,
		Urgency:     req.Urgency,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
		Services:    requested,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(appointment)
}

func GetAppointment(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	appointmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment ID"})
	}

	appointment, err := services.GetAppointment(appointmentID, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(appointment)
}

func GetAppointmentHistory(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	appointmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment ID"})
	}

	events, err := services.StatusHistory(appointmentID, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(events)
}

func GetMyAppointments(c *fiber.Ctx) error {
	customerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	return listAppointments(c, "customer_id = ?", customerID)
}

func GetMechanicAppointments(c *fiber.Ctx) error {
	mechanicID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	return listAppointments(c, "mechanic_id = ?", mechanicID)
}

func listAppointments(c *fiber.Ctx, cond string, userID uuid.UUID) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize := 50

	query := database.DB.Model(&models.Appointment{}).Where(cond, userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var appointments []models.Appointment
	if err := query.
		Preload("RequestedServices").
		Preload("Customer").
		Preload("Mechanic").
		Order("scheduled_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error retrieving appointments"})
	}

	return c.JSON(fiber.Map{
		"appointments": appointments,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
	})
}

type CancelRequest struct {
	Reason *string `json:"reason,omitempty"`
}

func CancelAppointment(c *fiber.Ctx) error {
	customerID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	appointmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment ID"})
	}

	var req CancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
	}

	appointment, err := services.CancelAppointment(appointmentID, customerID, req.Reason)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(appointment)
}

// ConfirmAppointment, StartWork and CompleteAppointment are the mechanic's
// transitions; permissions beyond role are enforced by the state machine
// plus the ownership check below.
func ConfirmAppointment(c *fiber.Ctx) error {
	return mechanicTransition(c, models.StatusConfirmed)
}

func StartWork(c *fiber.Ctx) error {
	return mechanicTransition(c, models.StatusInProgress)
}

func CompleteAppointment(c *fiber.Ctx) error {
	return mechanicTransition(c, models.StatusCompleted)
}

func mechanicTransition(c *fiber.Ctx, target models.AppointmentStatus) error {
	mechanicID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	appointmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment ID"})
	}

	appointment, err := services.GetAppointment(appointmentID, mechanicID)
	if err != nil {
		return serviceError(c, err)
	}
	if appointment.MechanicID != mechanicID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the mechanic for this appointment"})
	}

	updated, err := services.TransitionAppointment(appointmentID, services.ActorMechanic, target, nil)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(updated)
}
