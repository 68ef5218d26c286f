package services

import (
	"fmt"

	"go.uber.org/zap"

	"dementia-tracker/internal/models"
)

// EmailService is a placeholder for a real email sending service.
type EmailService struct {
	log *zap.Logger
}

func NewEmailService(log *zap.Logger) *EmailService {
	return &EmailService{log: log}
}

// SendScheduleReminder simulates sending a reminder for a scheduled test.
func (s *EmailService) SendScheduleReminder(user models.User, schedule models.TestSchedule) {
	s.log.Info("Sending schedule reminder",
		zap.String("to", user.Email),
		zap.String("name", user.FirstName),
		zap.String("testType", schedule.TestType),
	)
	// A real deployment would plug an SMTP client in here.
	fmt.Printf("--- SIMULATING EMAIL ---\nTo: %s\nSubject: Reminder: %s test scheduled today\nHi %s,\nYou have a %s test scheduled for today (%s). Taking it at a consistent time keeps your trend data comparable.\n\n",
		user.Email, schedule.TestType, user.FirstName, schedule.TestType, schedule.ScheduledTime)
}
