package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dementia-tracker/internal/models"
)

// SaveResult persists a normalized result. The session key is an idempotency
// key: saving the same session twice returns the original record instead of
// creating a duplicate, so a double-clicked save button is harmless.
func (r *Repository) SaveResult(ctx context.Context, result *models.TestResult) (*models.TestResult, error) {
	if !models.KnownTestType(result.TestType) {
		return nil, fmt.Errorf("%w: unknown test type %q", ErrValidation, result.TestType)
	}
	if result.Score < 0 || result.Score > models.MaxScore {
		return nil, fmt.Errorf("%w: score %.2f outside [0,%.0f]", ErrValidation, result.Score, models.MaxScore)
	}
	if result.SessionKey == "" {
		return nil, fmt.Errorf("%w: session key is required", ErrValidation)
	}
	if result.UserID == 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_key"}},
			DoNothing: true,
		}).
		Create(result)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Conflict: this session was already saved. Hand back the stored row.
		var existing models.TestResult
		if err := r.db.WithContext(ctx).
			First(&existing, "session_key = ?", result.SessionKey).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	return result, nil
}

// ListRecentResults returns the user's results, most recent first.
func (r *Repository) ListRecentResults(ctx context.Context, userID uint, limit int) ([]models.TestResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var results []models.TestResult
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&results).Error
	return results, err
}

// HistoryFilter narrows a history query.
type HistoryFilter struct {
	TestType string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

// History returns a filtered page of results plus the total match count.
func (r *Repository) History(ctx context.Context, userID uint, f HistoryFilter) ([]models.TestResult, int64, error) {
	if f.TestType != "" && !models.KnownTestType(f.TestType) {
		return nil, 0, fmt.Errorf("%w: unknown test type %q", ErrValidation, f.TestType)
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	q := r.db.WithContext(ctx).Model(&models.TestResult{}).Where("user_id = ?", userID)
	if f.TestType != "" {
		q = q.Where("test_type = ?", f.TestType)
	}
	if !f.From.IsZero() {
		q = q.Where("completed_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("completed_at <= ?", f.To)
	}

	// Separate sessions so the count finisher does not poison the page query.
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []models.TestResult
	err := q.Session(&gorm.Session{}).
		Order("completed_at DESC").Limit(f.Limit).Offset(f.Offset).
		Find(&results).Error
	return results, total, err
}

// GetResult returns one result owned by the user.
func (r *Repository) GetResult(ctx context.Context, userID, resultID uint) (*models.TestResult, error) {
	var result models.TestResult
	err := r.db.WithContext(ctx).
		First(&result, "id = ? AND user_id = ?", resultID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &result, err
}

// TestTypeStats is the per-test aggregate backing the dashboard cards.
type TestTypeStats struct {
	TestType      string     `json:"test_type"`
	Count         int64      `json:"count"`
	AvgPercentage float64    `json:"avg_percentage"`
	BestScore     float64    `json:"best_score"`
	LastTakenAt   *time.Time `json:"last_taken_at"`
}

// DashboardStats aggregates each test type's history in one query.
func (r *Repository) DashboardStats(ctx context.Context, userID uint) ([]TestTypeStats, error) {
	var stats []TestTypeStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			test_type,
			COUNT(*) AS count,
			AVG(percentage) AS avg_percentage,
			MAX(score) AS best_score,
			MAX(completed_at) AS last_taken_at
		FROM test_results
		WHERE user_id = ?
		GROUP BY test_type
		ORDER BY test_type`, userID).Scan(&stats).Error
	return stats, err
}

// CognitiveAverageSince returns the count and mean percentage of results
// completed on or after the cutoff. The standalone risk evaluation runs it
// over the last three months.
func (r *Repository) CognitiveAverageSince(ctx context.Context, userID uint, since time.Time) (int64, float64, error) {
	var row struct {
		Count int64
		Avg   *float64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS count, AVG(percentage) AS avg
		FROM test_results
		WHERE user_id = ? AND completed_at >= ?`, userID, since).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	var avg float64
	if row.Avg != nil {
		avg = *row.Avg
	}
	return row.Count, avg, nil
}
