package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventteams/config"
	_ "eventteams/docs"
	"eventteams/internal/adapters/auth"
	"eventteams/internal/adapters/broker"
	deliveryhttp "eventteams/internal/delivery/http"
	"eventteams/internal/delivery/http/controllers"
	"eventteams/internal/delivery/http/middleware"
	"eventteams/internal/domain"
	"eventteams/internal/notify"
	"eventteams/internal/repository/memory"
	"eventteams/internal/repository/postgres"
	"eventteams/internal/services"
)

const devTokenExpiry = 24 * time.Hour

// userDirectory is what startup needs from a directory beyond domain.UserDirectory.
type userDirectory interface {
	domain.UserDirectory
	GrantRole(ctx context.Context, userID, role string) error
}

// @title Event Teams API
// @version 1.0
// @description Event registration, team formation, invitations and notifications.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, users, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := bootstrapUsers(ctx, cfg, users, logger); err != nil {
		return err
	}

	publisher, err := broker.NewPublisher(broker.Config{
		Kind:               cfg.Notify.Broker,
		AMQPURL:            cfg.Notify.AMQPURL,
		AMQPQueue:          cfg.Notify.AMQPQueue,
		KafkaBrokers:       cfg.Notify.KafkaBrokers,
		KafkaTopic:         cfg.Notify.KafkaTopic,
		RedisAddr:          cfg.Notify.RedisAddr,
		RedisChannelPrefix: cfg.Notify.RedisChannelPrefix,
	}, logger)
	if err != nil {
		return fmt.Errorf("create notification publisher: %w", err)
	}
	clock := domain.SystemClock{}
	dispatcher := notify.NewDispatcher(store.Notifications(), publisher, logger, clock, cfg.Notify.Buffer, cfg.Notify.Workers)
	dispatcher.Start()

	timeout := cfg.RequestTimeout
	eventService := services.NewEventService(store, clock, timeout)
	registrationService := services.NewRegistrationService(store, users, clock, timeout)
	teamService := services.NewTeamService(store, users, dispatcher, clock, timeout)
	invitationService := services.NewInvitationService(store, users, teamService, dispatcher, clock, timeout)
	notificationService := services.NewNotificationService(store.Notifications(), dispatcher, timeout)

	tokens := auth.NewJWT(cfg.JWTSecret)
	if !cfg.IsProduction() && cfg.AdminUserID != "" {
		token, err := tokens.Issue(cfg.AdminUserID, []string{domain.RoleAdmin}, devTokenExpiry)
		if err != nil {
			return fmt.Errorf("issue development token: %w", err)
		}
		logger.Info("development admin token", "user_id", cfg.AdminUserID, "token", token)
	}

	router := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Events:        controllers.NewEventController(logger, eventService, users),
		Participants:  controllers.NewParticipantController(logger, registrationService, users),
		Teams:         controllers.NewTeamController(logger, teamService, users),
		Invitations:   controllers.NewInvitationController(logger, invitationService, teamService, users),
		Notifications: controllers.NewNotificationController(logger, notificationService, users),
	}, tokens, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, router)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver, "broker", cfg.Notify.Broker)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error("notification dispatcher shutdown", "err", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.Store, userDirectory, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.NewStore(), memory.NewUserDirectory(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Error("close database", "err", err)
		}
	}
	return postgres.NewStore(db), postgres.NewUserDirectory(db), closeDB, nil
}

// bootstrapUsers grants the configured admin and seed users their roles so they exist in the directory.
func bootstrapUsers(ctx context.Context, cfg *config.Config, users userDirectory, logger *slog.Logger) error {
	if cfg.AdminUserID != "" {
		if err := users.GrantRole(ctx, cfg.AdminUserID, domain.RoleAdmin); err != nil {
			return fmt.Errorf("grant admin role: %w", err)
		}
		logger.Info("admin role granted", "user_id", cfg.AdminUserID)
	}
	for _, id := range cfg.SeedUserIDs {
		if id == "" {
			continue
		}
		if err := users.GrantRole(ctx, id, domain.RoleAttendee); err != nil {
			return fmt.Errorf("grant attendee role to %s: %w", id, err)
		}
	}
	return nil
}
