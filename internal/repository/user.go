package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"dementia-tracker/internal/models"
	"dementia-tracker/internal/risk"
)

// ErrEmailTaken is returned when registration hits an existing account.
var ErrEmailTaken = errors.New("email already registered")

func (r *Repository) CreateUser(ctx context.Context, user *models.User, password string) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrEmailTaken
	}
	return err
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &user, err
}

func (r *Repository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &user, err
}

// UpdateProfile updates the mutable profile fields only; email and password
// have their own flows.
func (r *Repository) UpdateProfile(ctx context.Context, userID uint, fields map[string]interface{}) error {
	allowed := map[string]bool{
		"first_name": true, "last_name": true, "age": true,
		"gender": true, "family_history": true, "medical_conditions": true,
	}
	updates := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if allowed[k] {
			updates[k] = v
		}
	}
	if len(updates) == 0 {
		return fmt.Errorf("%w: no updatable fields provided", ErrValidation)
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRiskProfile supplies the demographic slice the session engine feeds
// into the risk assessment.
func (r *Repository) GetRiskProfile(userID uint) (risk.Profile, error) {
	user, err := r.GetUserByID(context.Background(), userID)
	if err != nil {
		return risk.Profile{}, err
	}
	return risk.Profile{
		Age:               user.Age,
		Gender:            user.Gender,
		FamilyHistory:     user.FamilyHistory,
		MedicalConditions: user.MedicalConditions,
	}, nil
}
