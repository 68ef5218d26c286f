package models

import "time"

// Schedule statuses.
const (
	ScheduleStatusScheduled = "scheduled"
	ScheduleStatusCompleted = "completed"
	ScheduleStatusCancelled = "cancelled"
)

// TestSchedule is a planned future test used by the reminder scheduler.
type TestSchedule struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID" json:"-"`
	TestType      string    `json:"test_type"`
	ScheduledDate time.Time `gorm:"index" json:"scheduled_date"`
	ScheduledTime string    `json:"scheduled_time"` // HH:MM, informational
	Frequency     string    `gorm:"default:weekly" json:"frequency"`
	Status        string    `gorm:"default:scheduled" json:"status"`
	ReminderSent  bool      `json:"reminder_sent"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
