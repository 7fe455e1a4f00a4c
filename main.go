// main.go
package main

import (
	"context"
	"log"

	"restaurant-booking/cmd"
	"restaurant-booking/internal/data/repository"
	"restaurant-booking/internal/metrics"
	"restaurant-booking/internal/sweeper"
	"restaurant-booking/internal/wire"
	"restaurant-booking/pkg/database"
	"restaurant-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Register Prometheus collectors
	metrics.Register()

	// Wire all dependencies
	app := wire.Wiring(repos, config, logger)

	// Background sweeper for abandoned pending reservations
	sw := sweeper.New(repos.Reservation, config.Booking.SweepInterval, config.Booking.ExpiryTimeout, logger)
	go sw.Start(context.Background())
	defer sw.Stop()

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
