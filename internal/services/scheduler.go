package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"dementia-tracker/internal/models"
	"dementia-tracker/internal/repository"
)

// Scheduler fires reminders for tests scheduled today. Reminders are marked
// sent before delivery, so a crashed delivery is dropped rather than
// repeated on every tick.
type Scheduler struct {
	log          *zap.Logger
	repo         *repository.Repository
	emailService *EmailService
	stop         chan struct{}
}

func NewScheduler(log *zap.Logger, repo *repository.Repository, emailService *EmailService) *Scheduler {
	return &Scheduler{
		log:          log,
		repo:         repo,
		emailService: emailService,
		stop:         make(chan struct{}),
	}
}

// Start runs the scheduler in a goroutine.
func (s *Scheduler) Start() {
	s.log.Info("Starting reminder scheduler...")
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.runReminderCheck()
			}
		}
	}()
}

// Stop terminates the scheduler loop.
func (s *Scheduler) Stop() {
	close(s.stop)
}

func (s *Scheduler) runReminderCheck() {
	now := time.Now().UTC()
	currentTime := now.Format("15:04")
	s.log.Debug("Running reminder check", zap.String("utc_time", currentTime))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	schedules, err := s.repo.DueReminders(ctx, now)
	if err != nil {
		s.log.Error("Failed to query due reminders", zap.Error(err))
		return
	}

	for _, schedule := range schedules {
		// A schedule with a time of day waits until that minute; one
		// without fires on the first check of the day.
		if schedule.ScheduledTime != "" && schedule.ScheduledTime > currentTime {
			continue
		}

		if err := s.repo.MarkReminderSent(ctx, schedule.ID); err != nil {
			s.log.Error("Failed to mark reminder sent",
				zap.Uint("scheduleID", schedule.ID), zap.Error(err))
			continue
		}
		go s.sendReminder(schedule.User, schedule)
	}
}

func (s *Scheduler) sendReminder(user models.User, schedule models.TestSchedule) {
	s.emailService.SendScheduleReminder(user, schedule)
}
