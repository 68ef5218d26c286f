package handlers

import (
	"testing"
	"time"

	"dementia-tracker/internal/risk"
)

func TestSessionRiskRecord(t *testing.T) {
	assessment := &risk.Assessment{
		FinalRisk: 30,
		Category:  "Moderate",
		TestRisk:  25,
		DemoRisk:  40,
		AvgScore:  7.5,
	}
	evaluatedAt := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	rec := sessionRiskRecord(9, "abc-123", assessment, evaluatedAt)

	if rec.UserID != 9 {
		t.Errorf("user id = %d, want 9", rec.UserID)
	}
	if rec.SessionKey != "abc-123" {
		t.Errorf("session key = %q, want abc-123", rec.SessionKey)
	}
	if rec.RiskScore != 30 || rec.RiskCategory != "Moderate" {
		t.Errorf("risk = %d %q, want 30 Moderate", rec.RiskScore, rec.RiskCategory)
	}
	if rec.TestRisk != 25 || rec.DemoRisk != 40 {
		t.Errorf("components = %d/%d, want 25/40", rec.TestRisk, rec.DemoRisk)
	}
	if rec.TestsWeight != risk.TestsWeight || rec.DemoWeight != risk.DemoWeight {
		t.Errorf("weights = %v/%v, want %v/%v",
			rec.TestsWeight, rec.DemoWeight, risk.TestsWeight, risk.DemoWeight)
	}
	// The factors and recommendations lists belong to the standalone
	// evaluation flow; per-session rows leave them empty.
	if len(rec.Factors) != 0 {
		t.Errorf("factors = %v, want empty", rec.Factors)
	}
	if len(rec.Recommendations) != 0 {
		t.Errorf("recommendations = %v, want empty", rec.Recommendations)
	}
	if !rec.EvaluatedAt.Equal(evaluatedAt) {
		t.Errorf("evaluated at = %v, want %v", rec.EvaluatedAt, evaluatedAt)
	}
}
