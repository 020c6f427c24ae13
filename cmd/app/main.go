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

	"companion-marketplace/internal/config"
	"companion-marketplace/internal/domain/model"
	pg "companion-marketplace/internal/infra/db/postgres"
	"companion-marketplace/internal/infra/logging"
	"companion-marketplace/internal/infra/metrics"
	"companion-marketplace/internal/infra/notify"
	"companion-marketplace/internal/infra/payment"
	red "companion-marketplace/internal/infra/redis"
	"companion-marketplace/internal/infra/sched"
	"companion-marketplace/internal/infra/web"
	"companion-marketplace/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	explorerRepo := pg.NewExplorerRepo(pool)
	tripRepo := pg.NewTripRepo(pool)
	matchRepo := pg.NewMatchRepo(pool)
	subRepo := pg.NewSubscriptionRepoCacheDecorator(pg.NewSubscriptionRepo(pool), redisClient, cfg.Redis.TTL)
	payRepo := pg.NewPaymentRepo(pool)
	reviewRepo := pg.NewReviewRepo(pool)

	// ---- Adapters ----
	catalog := model.DefaultCatalog()
	notifier := notify.NewLogNotifier(logger)
	gateway := payment.NewSSLCommerzGateway(
		cfg.Payment.SSLCommerz.StoreID,
		cfg.Payment.SSLCommerz.StorePassword,
		cfg.Payment.SSLCommerz.APIBase,
	)

	// ---- Use cases ----
	explorerUC := usecase.NewExplorerUseCase(explorerRepo, txManager, logger)
	subUC := usecase.NewSubscriptionUseCase(catalog, subRepo, explorerRepo, txManager, notifier, logger)
	tripUC := usecase.NewTripUseCase(tripRepo, matchRepo, txManager, logger)
	matchUC := usecase.NewMatchUseCase(matchRepo, tripRepo, subUC, txManager, logger)
	paymentUC := usecase.NewPaymentUseCase(payRepo, explorerRepo, catalog, subUC, gateway, notifier, txManager, usecase.CheckoutURLs{
		Success: cfg.Payment.SSLCommerz.SuccessURL,
		Fail:    cfg.Payment.SSLCommerz.FailURL,
		Cancel:  cfg.Payment.SSLCommerz.CancelURL,
		IPN:     cfg.Payment.SSLCommerz.IPNURL,
	}, logger)
	reviewUC := usecase.NewReviewUseCase(reviewRepo, matchRepo, tripRepo, logger)
	analysisUC := usecase.NewAnalysisUseCase(explorerRepo, tripRepo, matchRepo, reviewRepo, logger)

	metrics.MustRegister()

	// ---- Background workers ----
	expiryWorker := sched.NewExpiryWorker(cfg.Scheduler.ExpiryInterval, subUC, logger)
	go func() { _ = expiryWorker.Run(ctx) }()

	reconciler := sched.NewPaymentReconciler(
		paymentUC, gateway,
		cfg.Scheduler.ReconcileInterval,
		cfg.Scheduler.ReconcileStaleAge,
		cfg.Scheduler.ReconcileBatchSize,
		logger,
	)
	go func() { _ = reconciler.Run(ctx) }()

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, 24*time.Hour)
	server := web.NewServer(cfg, auth, explorerUC, tripUC, matchUC, subUC, paymentUC, reviewUC, analysisUC, logger)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}
