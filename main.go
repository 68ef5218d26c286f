package main

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"dementia-tracker/internal/config"
	"dementia-tracker/internal/database"
	logger "dementia-tracker/internal/logging"
	"dementia-tracker/internal/repository"
	"dementia-tracker/internal/router"
	"dementia-tracker/internal/services"
	"dementia-tracker/internal/session"
	"dementia-tracker/internal/trials"
)

func main() {
	// Initialize Logger
	log, err := logger.Init(".")
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Local overrides from .env, if present
	if err := godotenv.Load(); err == nil {
		log.Debug("Loaded environment from .env")
	}

	// Initialize configuration
	if err := config.Init(".", log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize database
	db, err := database.Init(log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	repo := repository.New(db, log)

	// Load the trial bank at startup
	bank, err := trials.Load(config.Conf.Trials.BankFile)
	if err != nil {
		log.Fatal("Failed to load trial bank", zap.Error(err))
	}

	// Session engine owns all live test sessions
	engine := session.NewEngine(bank, repo, log)
	defer engine.Close()

	// Reminder scheduler
	if config.Conf.Scheduler.Enabled {
		scheduler := services.NewScheduler(log, repo, services.NewEmailService(log))
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Setup router and start the server
	r := router.Setup(log, db, repo, engine)

	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
