package database

import (
	"fmt"

	"dementia-tracker/internal/config"
	logging "dementia-tracker/internal/logging"
	"dementia-tracker/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init opens the Postgres connection and runs migrations. The handle is
// returned rather than stored in a package variable so callers can inject it
// where it is needed.
func Init(log *zap.Logger) (*gorm.DB, error) {
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logger.Warn

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Database connection established successfully.")
	if err := runMigrations(db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func runMigrations(db *gorm.DB, log *zap.Logger) error {
	// GORM's AutoMigrate will create tables, columns, and foreign keys.
	// It will NOT create custom indexes, so we handle that separately.
	err := db.AutoMigrate(
		&models.User{},
		&models.TestResult{},
		&models.RiskEvaluation{},
		&models.TestSchedule{},
	)
	if err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	log.Info("Database migrations completed successfully.")

	// The session key indexes are what make save idempotent: a retried save
	// for the same session hits the unique constraint instead of creating a
	// duplicate row.
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_test_results_session_key ON test_results (session_key);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_risk_evaluations_session_key ON risk_evaluations (session_key) WHERE session_key <> '';`,
		`CREATE INDEX IF NOT EXISTS idx_test_results_history ON test_results (user_id, completed_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_risk_evaluations_latest ON risk_evaluations (user_id, evaluated_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_test_schedules_due ON test_schedules (status, scheduled_date);`,
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create custom index: %w", err)
		}
	}
	log.Info("Custom indexes ensured successfully.")
	return nil
}
