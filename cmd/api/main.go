package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qrpay-gateway/config"
	httpHandler "qrpay-gateway/internal/adapter/http/handler"
	pgStorage "qrpay-gateway/internal/adapter/storage/postgres"
	redisStorage "qrpay-gateway/internal/adapter/storage/redis"
	"qrpay-gateway/internal/adapter/wallet"
	"qrpay-gateway/internal/core/ports"
	"qrpay-gateway/internal/service"
	"qrpay-gateway/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting QR Pay Gateway")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	merchantRepo := pgStorage.NewMerchantRepo(pool)
	orderRepo := pgStorage.NewOrderRepo(pool)
	credRepo := pgStorage.NewCredentialRepo(pool)
	operatorRepo := pgStorage.NewOperatorRepo(pool)
	balanceLogRepo := pgStorage.NewBalanceLogRepo(pool)
	callbackLogRepo := pgStorage.NewCallbackLogRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	signSvc := service.NewMD5SignService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Wallet open-API client and per-credential serialization
	walletClient := wallet.NewClient(cfg.Wallet.GatewayURL, cfg.Wallet.Timeout, log)
	resolver := service.NewCredentialResolver(credRepo, encSvc)
	credState := service.NewCredentialState()

	// Initialize business services
	callbackSvc := service.NewCallbackService(
		orderRepo,
		merchantRepo,
		callbackLogRepo,
		signSvc,
		&http.Client{Timeout: cfg.Payment.NotifyTimeout},
		cfg.Payment.NotifyTimeout,
		log,
	)
	reconcileSvc := service.NewReconcileService(
		orderRepo,
		merchantRepo,
		balanceLogRepo,
		resolver,
		walletClient,
		credState,
		callbackSvc,
		transactor,
		log,
	)
	orderSvc := service.NewOrderService(
		orderRepo,
		merchantRepo,
		signSvc,
		resolver,
		walletClient,
		credState,
		cfg.Payment.PayType,
		cfg.Payment.OrderTTL,
		log,
	)
	pollers := service.NewPollerRegistry(orderRepo, reconcileSvc, cfg.Payment.PollInterval, cfg.Payment.OrderTTL, log)
	adminSvc := service.NewAdminService(operatorRepo, merchantRepo, credRepo, balanceLogRepo, hashSvc, tokenSvc, encSvc, walletClient, log)
	sweeper := service.NewExpirySweeper(orderSvc, reconcileSvc, cfg.Payment.SweepInterval, log)

	// Seed the bootstrap operator account
	if cfg.Admin.Password != "" {
		if err := adminSvc.EnsureOperator(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed operator account")
		}
	}

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		OrderSvc:       orderSvc,
		ReconcileSvc:   reconcileSvc,
		CallbackSvc:    callbackSvc,
		AdminSvc:       adminSvc,
		CredResolver:   resolver,
		TokenSvc:       tokenSvc,
		Pollers:        pollers,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// Background workers: stale order sweeper and callback retry scanner
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	go sweeper.Run(workerCtx)
	go callbackSvc.RunRetryScanner(workerCtx, cfg.Payment.CallbackScanInterval)

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	stopWorkers()
	pollers.StopAll()

	log.Info().Msg("Server exited")
}
