package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"

	"dementia-tracker/internal/models"
)

var timeOfDayRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func (r *Repository) CreateSchedule(ctx context.Context, s *models.TestSchedule) error {
	if !models.KnownTestType(s.TestType) {
		return fmt.Errorf("%w: unknown test type %q", ErrValidation, s.TestType)
	}
	if s.ScheduledDate.IsZero() {
		return fmt.Errorf("%w: scheduled date is required", ErrValidation)
	}
	if s.ScheduledTime != "" && !timeOfDayRe.MatchString(s.ScheduledTime) {
		return fmt.Errorf("%w: scheduled time must be HH:MM", ErrValidation)
	}
	if s.Status == "" {
		s.Status = models.ScheduleStatusScheduled
	}
	return r.db.WithContext(ctx).Create(s).Error
}

// ListSchedules returns the user's schedules, soonest first.
func (r *Repository) ListSchedules(ctx context.Context, userID uint, upcomingOnly bool) ([]models.TestSchedule, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if upcomingOnly {
		q = q.Where("status = ? AND scheduled_date >= ?",
			models.ScheduleStatusScheduled, time.Now().UTC().Truncate(24*time.Hour))
	}
	var schedules []models.TestSchedule
	err := q.Order("scheduled_date ASC").Find(&schedules).Error
	return schedules, err
}

func (r *Repository) UpdateScheduleStatus(ctx context.Context, userID, scheduleID uint, status string) error {
	switch status {
	case models.ScheduleStatusScheduled, models.ScheduleStatusCompleted, models.ScheduleStatusCancelled:
	default:
		return fmt.Errorf("%w: unknown schedule status %q", ErrValidation, status)
	}
	res := r.db.WithContext(ctx).Model(&models.TestSchedule{}).
		Where("id = ? AND user_id = ?", scheduleID, userID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteSchedule(ctx context.Context, userID, scheduleID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", scheduleID, userID).
		Delete(&models.TestSchedule{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DueReminders returns schedules due today whose reminder has not fired yet,
// with the owning user preloaded for the notification text.
func (r *Repository) DueReminders(ctx context.Context, now time.Time) ([]models.TestSchedule, error) {
	dayStart := now.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	var schedules []models.TestSchedule
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ? AND reminder_sent = false AND scheduled_date >= ? AND scheduled_date < ?",
			models.ScheduleStatusScheduled, dayStart, dayEnd).
		Find(&schedules).Error
	return schedules, err
}

func (r *Repository) MarkReminderSent(ctx context.Context, scheduleID uint) error {
	err := r.db.WithContext(ctx).Model(&models.TestSchedule{}).
		Where("id = ?", scheduleID).
		Update("reminder_sent", true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
