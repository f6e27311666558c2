// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"modesta-resort-api/config"
	"modesta-resort-api/db"
	"modesta-resort-api/handler"
	"modesta-resort-api/logger"
	"modesta-resort-api/messaging"
	"modesta-resort-api/middleware"
	"modesta-resort-api/realtime"
	"modesta-resort-api/repository"
	"modesta-resort-api/router"
	"modesta-resort-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
)

// NewHandler wires repositories, services and handlers into the HTTP router.
// A nil notifier logs reset links instead of publishing them.
func NewHandler(cfg config.Config, database *sql.DB, rdb *redis.Client, notifier service.ResetNotifier) http.Handler {
	// Repositories
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)
	resetRepo := repository.NewResetRepository(database)
	roomRepo := repository.NewRoomRepository(database)

	// Services
	hasher := service.NewPasswordHasher(cfg.Auth.BcryptCost)
	issuer := service.NewTokenIssuer(cfg.JWT)
	authService := service.NewAuthService(database, userRepo, tokenRepo, resetRepo, hasher, issuer, rdb, notifier, service.AuthOptions{
		ResetTokenTTL: cfg.Auth.ResetTokenTTL,
		FrontendURL:   cfg.Server.FrontendURL,
	})
	roomService := service.NewRoomService(roomRepo, rdb)
	userService := service.NewUserService(database, userRepo, tokenRepo, rdb)

	origins := cfg.Server.CORSAllowedOrigins
	hub := realtime.NewHub(func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || middleware.OriginAllowed(origin, origins)
	})

	return router.NewRouter(router.Deps{
		AuthHandler:    handler.NewAuthHandler(authService),
		RoomHandler:    handler.NewRoomHandler(roomService),
		AdminHandler:   handler.NewAdminHandler(userService),
		Authenticator:  handler.NewAuthenticator(authService),
		Hub:            hub,
		Redis:          rdb,
		APIVersion:     cfg.Server.APIVersion,
		AllowedOrigins: origins,
		Production:     cfg.IsProduction(),
		TrustedProxies: cfg.Server.TrustedProxies,
		Limits: router.Limits{
			APIMax:     cfg.RateLimit.APILimit,
			APIWindow:  cfg.RateLimit.APIWindow,
			AuthMax:    cfg.RateLimit.AuthLimit,
			AuthWindow: cfg.RateLimit.AuthWindow,
		},
	})
}

func Run() {
	logger.Init()
	config.LoadConfig(".")
	cfg := config.AppConfig
	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	logger.Log.WithField("env", cfg.Server.Env).Info("Configuration loaded successfully")

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Server.Env,
		}); err != nil {
			logger.Log.WithError(err).Warn("Sentry initialization failed")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(database); err != nil {
			logger.Log.Fatalf("Error applying migrations: %v", err)
		}
	}

	rdb, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer rdb.Close()

	var notifier service.ResetNotifier
	if cfg.RabbitMQ.URL != "" {
		conn, ch, err := messaging.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			logger.Log.WithError(err).Warn("RabbitMQ unavailable, reset links will be logged")
		} else {
			defer conn.Close()
			defer ch.Close()
			notifier = messaging.NewPublisher(ch, cfg.RabbitMQ.Exchange)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           NewHandler(cfg, database, rdb, notifier),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Errorf("Server forced to shutdown: %v", err)
		return
	}

	logger.Log.Info("Server exited properly")
}
