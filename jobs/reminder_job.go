package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/nyongesa254/velofix/database"
	"github.com/nyongesa254/velofix/models"
	"github.com/nyongesa254/velofix/notifications"
)

// SendAppointmentReminders mails both parties about appointments starting
// in roughly an hour. The five-minute band matches the cron cadence so an
// appointment is picked up exactly once.
func SendAppointmentReminders() {
	log.Println("Running job: SendAppointmentReminders...")

	now := time.Now()
	lowerBound := now.Add(60 * time.Minute)
	upperBound := now.Add(65 * time.Minute)

	var upcoming []models.Appointment
	err := database.DB.
		Preload("Customer").
		Preload("Mechanic").
		Where("status IN ? AND scheduled_at BETWEEN ? AND ?",
			[]models.AppointmentStatus{models.StatusConfirmed, models.StatusPaid}, lowerBound, upperBound).
		Find(&upcoming).Error
	if err != nil {
		log.Printf("Error checking for upcoming appointments: %v", err)
		return
	}

	for _, appointment := range upcoming {
		log.Printf("Sending reminder for appointment ID: %s", appointment.ID)

		subject := "Reminder: Your Repair Appointment Starts in 1 Hour!"
		body := fmt.Sprintf(
			"<h1>Appointment Reminder</h1><p>This is a friendly reminder that your repair appointment is scheduled for %s.</p>",
			appointment.ScheduledAt.Format(time.Kitchen),
		)

		go notifications.SendEmail(appointment.Customer.FullName, appointment.Customer.Email, subject, body)
		go notifications.SendEmail(appointment.Mechanic.FullName, appointment.Mechanic.Email, subject, body)
	}
}
