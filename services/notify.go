package services

import (
	"fmt"

	"github.com/nyongesa254/velofix/models"
	"github.com/nyongesa254/velofix/notifications"
	"github.com/nyongesa254/velofix/websocket"
)

// NotifyStatusChange fans a transition out to both participants over email
// and the websocket hub. It is always called in a goroutine after the
// transaction has committed; failures here are logged by the senders and
// never affect the transition itself.
func NotifyStatusChange(appointment models.Appointment, from, to models.AppointmentStatus) {
	websocket.PushStatusEvent(appointment.CustomerID, appointment.MechanicID, websocket.StatusEvent{
		AppointmentID: appointment.ID.String(),
		FromStatus:    string(from),
		ToStatus:      string(to),
	})

	subject, customerBody, mechanicBody := statusEmail(appointment, to)
	if subject == "" {
		return
	}
	if customerBody != "" && appointment.Customer.Email != "" {
		go notifications.SendEmail(appointment.Customer.FullName, appointment.Customer.Email, subject, customerBody)
	}
	if mechanicBody != "" && appointment.Mechanic.Email != "" {
		go notifications.SendEmail(appointment.Mechanic.FullName, appointment.Mechanic.Email, subject, mechanicBody)
	}
}

func statusEmail(appointment models.Appointment, to models.AppointmentStatus) (subject, customerBody, mechanicBody string) {
	when := appointment.ScheduledAt.Format("Mon, 02 Jan 2006 15:04")

	switch to {
	case models.StatusConfirmed:
		return "Your Repair Appointment is Confirmed!",
			fmt.Sprintf("<h1>Appointment Confirmed</h1><p>Your mechanic has confirmed the appointment scheduled for %s. You will receive an itemized estimate shortly.</p>", when),
			""
	case models.StatusBudgetSent:
		return "Repair Estimate Ready",
			"<h1>Estimate Ready</h1><p>Your mechanic has sent an itemized estimate for your repair. Please review and approve or reject it from your dashboard.</p>",
			""
	case models.StatusBudgetApproved:
		return "Estimate Approved",
			"<h1>Estimate Approved</h1><p>You approved the estimate. Complete the payment to lock in your appointment.</p>",
			"<h1>Estimate Approved</h1><p>The customer approved your estimate. Work can start once payment is confirmed.</p>"
	case models.StatusBudgetRejected:
		return "Estimate Rejected",
			"",
			"<h1>Estimate Rejected</h1><p>The customer rejected your estimate. You can review their reason and submit a revised one.</p>"
	case models.StatusPaid:
		return "Payment Received",
			"<h1>Payment Received</h1><p>Your payment was confirmed. Your mechanic will start the repair as scheduled.</p>",
			"<h1>Payment Received</h1><p>The customer has paid. You are clear to start the repair.</p>"
	case models.StatusCompleted:
		return "Repair Completed",
			"<h1>Repair Completed</h1><p>Your mechanic marked the repair as completed. Thank you for using VeloFix!</p>",
			""
	case models.StatusCancelled:
		return "Appointment Cancelled",
			fmt.Sprintf("<h1>Appointment Cancelled</h1><p>The appointment scheduled for %s has been cancelled.</p>", when),
			fmt.Sprintf("<h1>Appointment Cancelled</h1><p>The appointment scheduled for %s has been cancelled.</p>", when)
	}
	return "", "", ""
}
