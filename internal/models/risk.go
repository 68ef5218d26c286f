package models

import (
	"time"

	"github.com/lib/pq"
)

// Risk categories as stored in risk_evaluations.risk_category.
const (
	RiskCategoryLow      = "Low"
	RiskCategoryModerate = "Moderate"
	RiskCategoryHigh     = "High"
)

// RiskEvaluation is a persisted risk assessment. Per-session evaluations
// carry the session key of the test result they were computed alongside;
// standalone evaluations (the /evaluation/evaluate flow) leave it empty.
type RiskEvaluation struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"index" json:"user_id"`
	User            User           `gorm:"foreignKey:UserID" json:"-"`
	SessionKey      string         `json:"session_key,omitempty"`
	RiskScore       int            `json:"risk_score"`
	RiskCategory    string         `json:"risk_category"`
	TestRisk        int            `json:"test_risk"`
	DemoRisk        int            `json:"demo_risk"`
	TestsWeight     float64        `json:"tests_weight"`
	DemoWeight      float64        `json:"demo_weight"`
	Factors         pq.StringArray `gorm:"type:text[]" json:"factors"`
	Recommendations pq.StringArray `gorm:"type:text[]" json:"recommendations"`
	EvaluatedAt     time.Time      `gorm:"index" json:"evaluated_at"`
	CreatedAt       time.Time      `json:"-"`
}
