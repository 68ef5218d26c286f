package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dementia-tracker/internal/models"
)

// SaveRisk persists a risk evaluation. Per-session evaluations carry the
// session key and dedupe the same way results do; standalone evaluations
// from the evaluate flow have no key and always insert.
func (r *Repository) SaveRisk(ctx context.Context, eval *models.RiskEvaluation) (*models.RiskEvaluation, error) {
	if eval.RiskScore < 0 || eval.RiskScore > 100 {
		return nil, fmt.Errorf("%w: risk score %d outside [0,100]", ErrValidation, eval.RiskScore)
	}
	switch eval.RiskCategory {
	case models.RiskCategoryLow, models.RiskCategoryModerate, models.RiskCategoryHigh:
	default:
		return nil, fmt.Errorf("%w: unknown risk category %q", ErrValidation, eval.RiskCategory)
	}
	if eval.UserID == 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	if eval.SessionKey == "" {
		return eval, r.db.WithContext(ctx).Create(eval).Error
	}

	// The unique index on session_key is partial, so the conflict target
	// must carry the same predicate.
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "session_key"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{gorm.Expr("session_key <> ''")}},
			DoNothing:   true,
		}).
		Create(eval)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var existing models.RiskEvaluation
		if err := r.db.WithContext(ctx).
			First(&existing, "session_key = ?", eval.SessionKey).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	return eval, nil
}

// LatestRisk returns the user's most recent evaluation.
func (r *Repository) LatestRisk(ctx context.Context, userID uint) (*models.RiskEvaluation, error) {
	var eval models.RiskEvaluation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("evaluated_at DESC").
		First(&eval).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &eval, err
}

// ListRiskHistory returns evaluations most recent first.
func (r *Repository) ListRiskHistory(ctx context.Context, userID uint, limit int) ([]models.RiskEvaluation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var evals []models.RiskEvaluation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("evaluated_at DESC").
		Limit(limit).
		Find(&evals).Error
	return evals, err
}
