package models

import (
	"encoding/json"
	"time"
)

// Test type identifiers as stored in test_results.test_type.
const (
	TestTypeWordRecall         = "word_recall"
	TestTypeStroop             = "stroop"
	TestTypePatternRecognition = "pattern_recognition"
)

// MaxScore is the common normalized scale ceiling across all test types.
const MaxScore = 10.0

// KnownTestType reports whether s is one of the registered test types.
func KnownTestType(s string) bool {
	switch s {
	case TestTypeWordRecall, TestTypeStroop, TestTypePatternRecognition:
		return true
	}
	return false
}

// TestResult is a persisted normalized test result. SessionKey is the
// client-visible session UUID and carries the save-idempotency guarantee
// through a unique index.
type TestResult struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserID           uint            `gorm:"index" json:"user_id"`
	User             User            `gorm:"foreignKey:UserID" json:"-"`
	SessionKey       string          `json:"session_key"`
	TestType         string          `json:"test_type"`
	Score            float64         `json:"score"`
	MaxScore         float64         `json:"max_score"`
	Percentage       int             `json:"percentage"`
	PerformanceLevel string          `json:"performance_level"`
	TimeTaken        *int            `json:"time_taken"` // seconds, nullable
	Metadata         json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	CompletedAt      time.Time       `gorm:"index" json:"completed_at"`
	CreatedAt        time.Time       `json:"-"`
}
