package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/reverio/leadgen/internal/config"
	"github.com/reverio/leadgen/internal/infra/auth"
	"github.com/reverio/leadgen/internal/infra/database"
	"github.com/reverio/leadgen/internal/infra/feed"
	"github.com/reverio/leadgen/internal/infra/http/handlers"
	"github.com/reverio/leadgen/internal/infra/logging"
	"github.com/reverio/leadgen/internal/infra/mail"
	"github.com/reverio/leadgen/internal/infra/queue"
	"github.com/reverio/leadgen/internal/infra/worker"
	"github.com/reverio/leadgen/internal/usecase"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	db, err := database.NewDBConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		return err
	}

	// 1. Repositories
	tx := database.NewTransactor(db)
	userRepo := database.NewUserRepository(db)
	leadRepo := database.NewLeadRepository(db)
	ledger := database.NewCreditLedger(db)

	// 2. Adapters
	hasher := auth.NewBcryptHasher()
	sessions := auth.NewSessionManager(cfg.JWTSecret, cfg.SessionTTL)

	var emailService usecase.EmailService
	if cfg.MailEnabled() {
		sender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
		sender.LockDays = cfg.LeadLockDays
		emailService = sender
	}

	// 3. Use cases
	registerUC := usecase.NewRegisterUserUseCase(userRepo, hasher, emailService, logger)
	authUC := usecase.NewAuthenticateUserUseCase(userRepo, hasher)
	creditsUC := usecase.NewAddCreditsUseCase(ledger, logger)
	queryUC := usecase.NewQueryLeadsUseCase(leadRepo, ledger)
	updateUC := usecase.NewUpdateLeadStatusUseCase(tx, leadRepo, logger)
	ingestUC := usecase.NewIngestRecordsUseCase(leadRepo, logger)

	assignUC := usecase.NewAssignLeadsUseCase(tx, leadRepo, ledger, logger)
	assignUC.LockFor = cfg.LeadLockDuration()
	assignUC.MaxAttempts = cfg.AssignMaxAttempts
	assignUC.MaxPerRequest = cfg.MaxLeadsPerRequest

	if cfg.SeedAdmin() {
		if err := registerUC.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	// 4. Workers
	updater := worker.NewFeedUpdater(ingestUC, cfg.UpdateInterval, logger,
		feed.NewExcelSource(cfg.LeadsDir, logger),
	)
	go updater.Start(ctx)

	var mqState handlers.ConnectionState
	if cfg.QueueEnabled() {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		mqState = rabbitMQ.Conn

		consumer := queue.NewWorker(rabbitMQ.Ch, ingestUC, logger)
		go func() {
			if err := consumer.Start(ctx, queue.QueueName); err != nil {
				logger.Error("queue worker stopped", zap.Error(err))
			}
		}()
	}

	// 5. Handlers
	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:     handlers.NewAuthHandler(registerUC, authUC, sessions, logger),
		Leads:    handlers.NewLeadHandler(assignUC, updateUC, queryUC, logger),
		Admin:    handlers.NewAdminHandler(creditsUC, authUC, queryUC, updater, logger),
		Health:   handlers.NewHealthHandler(db, mqState, version),
		Sessions: sessions,
		Limiter:  handlers.NewRateLimiter(10, 5),
		Origins:  cfg.CORSOrigins,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := registerUC.Drain(shutdownCtx); err != nil {
		logger.Warn("welcome e-mails still pending at shutdown", zap.Error(err))
	}
	return nil
}
