package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-balance/internal/adapter"
	"github.com/feral-file/ff-balance/internal/api/server"
	"github.com/feral-file/ff-balance/internal/cache"
	"github.com/feral-file/ff-balance/internal/chain"
	"github.com/feral-file/ff-balance/internal/config"
	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/importer"
	"github.com/feral-file/ff-balance/internal/logger"
	"github.com/feral-file/ff-balance/internal/normalizer"
	"github.com/feral-file/ff-balance/internal/providers/ethereum"
	"github.com/feral-file/ff-balance/internal/providers/tezos"
	"github.com/feral-file/ff-balance/internal/ratelimit"
	"github.com/feral-file/ff-balance/internal/registry"
	"github.com/feral-file/ff-balance/internal/report"
	"github.com/feral-file/ff-balance/internal/store"
	"github.com/feral-file/ff-balance/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "balance-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Feral File Balance API")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if cfg.Database.HasReadReplica() {
		if err := store.RegisterReadReplica(db, postgres.Open(cfg.Database.ReadDSN())); err != nil {
			logger.FatalCtx(ctx, "Failed to register read replica", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Registered read replica", zap.String("host", cfg.Database.ReadHost))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clock := adapter.NewClock()
	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()
	httpClient := adapter.NewHTTPClient(cfg.HTTPTimeout)

	// Initialize rate limiter shared by the chain providers
	rateLimitProxy, err := ratelimit.NewProxy(cfg.RateLimit)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create rate limit proxy", zap.Error(err))
	}
	defer func() {
		if err := rateLimitProxy.Close(); err != nil {
			logger.ErrorCtx(ctx, err)
		}
	}()

	// Initialize chain providers
	ethereumClient := ethereum.NewExplorerClient(httpClient, rateLimitProxy, jsonAdapter,
		cfg.Ethereum.ExplorerURL, cfg.Ethereum.ExplorerAPIKey, cfg.Ethereum.ChainID,
		ethereum.WithPageSize(cfg.Ethereum.ExplorerPageSize))
	tzktClient := tezos.NewTzKTClient(cfg.Tezos.APIURL, httpClient, rateLimitProxy)
	source := chain.NewRouter(ethereumClient, tzktClient)

	fallbacks := map[domain.Blockchain]chain.BalanceReader{}
	if cfg.Ethereum.RPCURL != "" {
		fallbacks[domain.BlockchainEthereum] = ethereum.NewRPCBalanceReader(adapter.NewEthClientDialer(), cfg.Ethereum.RPCURL)
	} else {
		logger.WarnCtx(ctx, "Ethereum RPC URL not configured, the balance oracle has no fallback")
	}
	oracle := chain.NewBalanceOracle(source, fallbacks, cfg.Oracle.FallbackRetryDelay)

	// Load spam policy
	spamPolicy := registry.DefaultSpamPolicy()
	if cfg.SpamPolicyPath != "" {
		spamPolicy, err = registry.NewSpamPolicyLoader(fs, jsonAdapter).Load(cfg.SpamPolicyPath)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to load spam policy",
				zap.Error(err),
				zap.String("path", cfg.SpamPolicyPath))
		}
		logger.InfoCtx(ctx, "Loaded spam policy", zap.String("path", cfg.SpamPolicyPath))
	} else {
		logger.WarnCtx(ctx, "Spam policy path not configured, using default thresholds only")
	}

	// Initialize services
	reportCache := cache.NewMemoryCache(cfg.Cache.TTL)
	reportService := report.NewService(report.Config{
		CacheTTL:        cfg.Cache.TTL,
		WorkerPoolSize:  cfg.Worker.WorkerPoolSize,
		WorkerQueueSize: cfg.Worker.WorkerQueueSize,
	}, dataStore, reportCache, clock, jsonAdapter)
	defer reportService.Close()

	txNormalizer := normalizer.New(spamPolicy, oracle, clock, jsonAdapter)
	importService := importer.NewService(dataStore, source, txNormalizer, reportService, clock)

	// Start the cache sweeper
	cacheSweeper := sweeper.NewCacheSweeper(reportCache, cfg.Cache.SweepInterval, clock)
	errCh := make(chan error, 2)
	go func() {
		if err := cacheSweeper.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	// Create server config
	serverConfig := server.Config{
		Debug:              cfg.Debug,
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		ReadTimeout:        time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:       time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:        time.Duration(cfg.Server.IdleTimeout) * time.Second,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	}

	// Create and start server
	srv := server.New(serverConfig, reportService, importService)

	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
	}
	cancel()

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("component", "server"))
	}
	if err := cacheSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("component", cacheSweeper.Name()))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
