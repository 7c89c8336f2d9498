package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portal_wallet/internal/app/service"
	"portal_wallet/internal/infrastructure/balancecache"
	"portal_wallet/internal/infrastructure/configloader"
	clientprovider "portal_wallet/internal/infrastructure/network/client"
	networkdefinition "portal_wallet/internal/infrastructure/network/definition"
	"portal_wallet/internal/infrastructure/portalapi"
	"portal_wallet/internal/infrastructure/portalsdk"
	"portal_wallet/internal/infrastructure/restapi"
	"portal_wallet/internal/pkg/logger"
	"portal_wallet/internal/pkg/metrics"
	"portal_wallet/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultConfigPath     = "config/config.yml"
	maxConcurrentSnapshot = 2
)

func main() {
	configPath := utils.GetEnv("CONFIG_PATH", defaultConfigPath)
	cfg, err := configloader.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	zapLogger := logger.Init(cfg.Logging.Level)
	defer logger.Sync()

	logger.Info("Wallet server starting", "config", configPath, "variant", cfg.Portal.Variant)

	variant, err := cfg.VariantDefinition()
	if err != nil {
		logger.Fatal("Invalid product variant", "error", err)
	}

	metrics.MustRegisterMetrics()

	registry := networkdefinition.NewChainRegistry(cfg.Portal.GatewayBaseURL)
	logger.Info("Chain registry initialized", "networks", len(registry.All()))

	assetsAPI := portalapi.NewClient(portalapi.Options{
		BaseURL:    cfg.Portal.APIBaseURL,
		Timeout:    cfg.RequestTimeout(),
		RateLimit:  cfg.RpcClient.RateLimit,
		Burst:      cfg.RpcClient.BurstLimit,
		MaxRetries: cfg.RpcClient.MaxRetries,
		RetryDelay: time.Duration(cfg.RpcClient.RetryDelayMs) * time.Millisecond,
	}, zapLogger)

	sdkFactory := portalsdk.NewFactory(portalsdk.Options{
		APIBaseURL: cfg.Portal.APIBaseURL,
		BridgeURL:  cfg.Bridge.BaseURL,
		Timeout:    time.Duration(cfg.Bridge.RequestTimeoutMillis) * time.Millisecond,
		MaxRetries: cfg.Bridge.MaxRetries,
	}, logger.Named("SignerBridge"))

	balanceCache := balancecache.New(
		time.Duration(cfg.Cache.DefaultExpirationMinutes)*time.Minute,
		time.Duration(cfg.Cache.CleanupIntervalMinutes)*time.Minute,
	)

	statusClients := clientprovider.NewGatewayClientProvider(cfg.RequestTimeout(), logger.Named("GatewayClientProvider"))

	sessionClient := service.NewSessionClient(
		registry,
		assetsAPI,
		sdkFactory,
		statusClients,
		balanceCache,
		logger.Named("SessionClient"),
		service.SessionClientOptions{
			Variant:        variant,
			SignTimeout:    cfg.SignTimeout(),
			DisableFunding: cfg.Portal.DisableFunding,
		},
	)

	if cfg.Portal.APIKey != "" {
		if _, err := sessionClient.InitSession(cfg.Portal.APIKey); err != nil {
			logger.Fatal("Failed to initialize wallet session", "error", err)
		}
	} else {
		logger.Warn("No API key configured; waiting for POST /api/v1/session", "env", configloader.APIKeyEnv)
	}

	summaries := service.NewBalanceSummaryService(sessionClient, registry, logger.Named("BalanceSummary"), maxConcurrentSnapshot)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	defaultTarget, err := variant.Target(cfg.Portal.DefaultTarget)
	if err != nil {
		logger.Fatal("Invalid default target", "error", err)
	}
	handler := restapi.NewWalletHandler(sessionClient, summaries, registry, logger.Named("WalletHandler"),
		restapi.WithDefaultTarget(defaultTarget))
	router := restapi.SetupRouter(handler, restapi.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         zapLogger.Named("http"),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	} else {
		logger.Info("HTTP server stopped")
	}
}
