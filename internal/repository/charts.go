package repository

import (
	"context"
	"fmt"
	"time"

	"dementia-tracker/internal/models"
)

// TimelineDataPoint is one dated score for trend charts.
type TimelineDataPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ScoreTimeline returns a user's scores over time, oldest first, optionally
// narrowed to one test type. Feeds the dashboard trend chart and the report.
func (r *Repository) ScoreTimeline(ctx context.Context, userID uint, testType string) ([]TimelineDataPoint, error) {
	if testType != "" && !models.KnownTestType(testType) {
		return nil, fmt.Errorf("%w: unknown test type %q", ErrValidation, testType)
	}

	query := `
		SELECT completed_at AS date, score AS value
		FROM test_results
		WHERE user_id = ?`
	args := []interface{}{userID}
	if testType != "" {
		query += ` AND test_type = ?`
		args = append(args, testType)
	}
	query += ` ORDER BY completed_at ASC`

	var data []TimelineDataPoint
	err := r.db.WithContext(ctx).Raw(query, args...).Scan(&data).Error
	return data, err
}

// RiskTimeline returns risk scores over time, oldest first.
func (r *Repository) RiskTimeline(ctx context.Context, userID uint) ([]TimelineDataPoint, error) {
	var data []TimelineDataPoint
	err := r.db.WithContext(ctx).Raw(`
		SELECT evaluated_at AS date, risk_score::float AS value
		FROM risk_evaluations
		WHERE user_id = ?
		ORDER BY evaluated_at ASC`, userID).Scan(&data).Error
	return data, err
}
