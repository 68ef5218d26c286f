package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is the account record plus the demographic profile consumed by the
// risk aggregator. The profile fields are read-only during a test session.
type User struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Email             string `gorm:"uniqueIndex" json:"email"`
	Password          string `json:"-"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Age               int    `json:"age"`
	Gender            string `json:"gender"`
	FamilyHistory     string `json:"family_history"`
	MedicalConditions string `json:"medical_conditions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetPassword hashes and stores the given plaintext password.
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword reports whether the given plaintext matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
