// Package repository is the persistence gateway. All database access goes
// through a Repository so handlers and services never touch gorm directly.
package repository

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrValidation wraps input problems that must block a write. Values
	// outside their documented ranges are rejected, never clamped and stored.
	ErrValidation = errors.New("validation failed")
)

type Repository struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Repository {
	return &Repository{db: db, log: log}
}
