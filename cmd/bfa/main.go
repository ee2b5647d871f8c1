package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/config"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/handler"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/cache"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/client"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/sessionstore"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/port"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/service"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/session"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("merchant_api", cfg.MerchantAPIURL),
		zap.String("payment_api", cfg.PaymentAPIURL),
		zap.String("party_api", cfg.PartyAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("page_cache_ttl", cfg.PageCacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Bool("redis_session_store", cfg.RedisURL != ""),
		zap.Bool("verify_tokens", cfg.JWTSecret != ""),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, observability.ServiceName)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	merchantClient := client.NewMerchantClient(
		client.NewBackend("merchant", httpClient, cfg.MerchantAPIURL, resilienceCfg, metrics, logger),
	)
	paymentClient := client.NewPaymentClient(
		client.NewBackend("payment", httpClient, cfg.PaymentAPIURL, resilienceCfg, metrics, logger),
	)
	partyClient := client.NewPartyClient(
		client.NewBackend("party", httpClient, cfg.PartyAPIURL, resilienceCfg, metrics, logger),
	)

	// --- Session store ---
	var store port.SessionStore
	var storePinger handler.Pinger
	if cfg.RedisURL != "" {
		dialCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisStore, err := sessionstore.Dial(dialCtx, cfg.RedisURL, cfg.SessionStateTTL)
		cancel()
		if err != nil {
			logger.Fatal("failed to connect session store", zap.Error(err))
		}
		defer redisStore.Close()
		store = redisStore
		storePinger = redisStore
		logger.Info("session store: redis")
	} else {
		store = sessionstore.NewMemory(cfg.SessionStateTTL)
		logger.Warn("session store: in-memory, state is lost on restart")
	}

	// --- Events & alerts ---
	tracker := observability.NewEventTracker(metrics, logger)
	alerts := observability.NewAlertLogger(metrics, logger)

	// --- Services ---
	resolver := session.NewPartyResolver(partyClient, store, tracker, cfg.LogoutURL, metrics, logger)
	parties := service.NewPartyDirectory(partyClient, store, logger)

	merchantSvc := service.NewMerchantService(
		merchantClient,
		merchantClient,
		cache.New[any](cfg.CacheTTL),
		alerts,
		metrics,
		logger,
	)
	transactionSvc := service.NewTransactionService(
		merchantClient,
		paymentClient,
		paymentClient,
		alerts,
		cache.New[any](cfg.PageCacheTTL),
		cfg.MagicLinkDomain,
		metrics,
		logger,
	)
	consentSvc := service.NewConsentService(
		merchantClient,
		cache.New[*service.TCAgreement](cfg.SessionStateTTL),
		alerts,
		metrics,
		logger,
	)
	posSvc := service.NewPointsOfSaleService(merchantClient, logger)

	var verifier *session.Verifier
	if cfg.JWTSecret != "" {
		verifier = session.NewVerifier(cfg.JWTSecret)
	} else {
		logger.Warn("JWT_SECRET not set, token signatures are not verified")
	}

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Resolver:     resolver,
		Parties:      parties,
		Merchant:     merchantSvc,
		Transactions: transactionSvc,
		Consent:      consentSvc,
		PointsOfSale: posSvc,
		Verifier:     verifier,
		SessionStore: storePinger,
	}, handler.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		LoginURL:    cfg.LoginURL,
		LogoutURL:   cfg.LogoutURL,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
