package db

import (
	"database/sql"
	"fmt"
	"modesta-resort-api/config"
	"modesta-resort-api/logger"
	"time"

	_ "github.com/lib/pq"
)

// DSN builds the lib/pq connection string for the configured database.
func DSN() string {
	cfg := config.AppConfig.Database
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

func Connect() (*sql.DB, error) {
	cfg := config.AppConfig.Database

	safeConnStr := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Name, cfg.SSLMode)

	logger.Log.WithField("connection", safeConnStr).Info("Attempting to connect to the database")

	db, err := sql.Open("postgres", DSN())
	if err != nil {
		logger.Log.WithError(err).Error("Failed to open database connection")
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		logger.Log.WithError(err).Error("Failed to ping database")
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Log.Info("Database connection established successfully")
	return db, nil
}
