package repository

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"dementia-tracker/internal/models"
)

// Validation runs before any query, so a nil-DB repository is enough to
// exercise the rejection paths.
func TestSaveResultValidation(t *testing.T) {
	r := New(nil, zap.NewNop())

	tests := []struct {
		name   string
		result models.TestResult
	}{
		{"unknown test type", models.TestResult{UserID: 1, SessionKey: "k", TestType: "sudoku", Score: 5}},
		{"score above range", models.TestResult{UserID: 1, SessionKey: "k", TestType: models.TestTypeStroop, Score: 10.01}},
		{"negative score", models.TestResult{UserID: 1, SessionKey: "k", TestType: models.TestTypeStroop, Score: -0.5}},
		{"missing session key", models.TestResult{UserID: 1, TestType: models.TestTypeStroop, Score: 5}},
		{"missing user", models.TestResult{SessionKey: "k", TestType: models.TestTypeStroop, Score: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.result
			if _, err := r.SaveResult(context.Background(), &res); !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSaveRiskValidation(t *testing.T) {
	r := New(nil, zap.NewNop())

	tests := []struct {
		name string
		eval models.RiskEvaluation
	}{
		{"score above range", models.RiskEvaluation{UserID: 1, RiskScore: 101, RiskCategory: models.RiskCategoryHigh}},
		{"negative score", models.RiskEvaluation{UserID: 1, RiskScore: -1, RiskCategory: models.RiskCategoryLow}},
		{"bad category", models.RiskEvaluation{UserID: 1, RiskScore: 40, RiskCategory: "Severe"}},
		{"missing user", models.RiskEvaluation{RiskScore: 40, RiskCategory: models.RiskCategoryModerate}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := tt.eval
			if _, err := r.SaveRisk(context.Background(), &eval); !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateScheduleValidation(t *testing.T) {
	r := New(nil, zap.NewNop())

	if err := r.CreateSchedule(context.Background(), &models.TestSchedule{
		UserID: 1, TestType: "chess",
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown test type err = %v, want ErrValidation", err)
	}

	if err := r.CreateSchedule(context.Background(), &models.TestSchedule{
		UserID: 1, TestType: models.TestTypeStroop,
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("missing date err = %v, want ErrValidation", err)
	}
}

func TestScheduledTimeFormat(t *testing.T) {
	valid := []string{"00:00", "09:30", "23:59"}
	invalid := []string{"24:00", "9:30", "12:60", "noon", "12:3"}
	for _, s := range valid {
		if !timeOfDayRe.MatchString(s) {
			t.Errorf("%q rejected, want accepted", s)
		}
	}
	for _, s := range invalid {
		if timeOfDayRe.MatchString(s) {
			t.Errorf("%q accepted, want rejected", s)
		}
	}
}
