package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-balance/internal/adapter"
	"github.com/feral-file/ff-balance/internal/chain"
	"github.com/feral-file/ff-balance/internal/config"
	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/importer"
	"github.com/feral-file/ff-balance/internal/ledger"
	"github.com/feral-file/ff-balance/internal/logger"
	"github.com/feral-file/ff-balance/internal/normalizer"
	"github.com/feral-file/ff-balance/internal/providers/ethereum"
	"github.com/feral-file/ff-balance/internal/providers/tezos"
	"github.com/feral-file/ff-balance/internal/ratelimit"
	"github.com/feral-file/ff-balance/internal/registry"
	"github.com/feral-file/ff-balance/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	walletID   = flag.String("wallet", "", "ID of the crypto wallet to import")
	startDate  = flag.String("start", "", "First day to import (YYYY-MM-DD)")
	endDate    = flag.String("end", "", "Last day to import (YYYY-MM-DD)")
	currencies = flag.String("currencies", "", "Comma separated currencies, defaults to the wallet's currencies")
	limit      = flag.Int("limit", 0, "Maximum raw transactions per currency")
	overwrite  = flag.Bool("overwrite", false, "Overwrite already imported transactions")
)

func main() {
	flag.Parse()

	if *walletID == "" {
		fmt.Fprintln(os.Stderr, "-wallet is required")
		flag.Usage()
		os.Exit(2)
	}

	req, err := buildRequest()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadImporterConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "import-wallet",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clock := adapter.NewClock()
	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()
	httpClient := adapter.NewHTTPClient(cfg.HTTPTimeout)

	rateLimitProxy, err := ratelimit.NewProxy(cfg.RateLimit)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create rate limit proxy", zap.Error(err))
	}
	defer func() {
		_ = rateLimitProxy.Close()
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
	}
	oracle := chain.NewBalanceOracle(source, fallbacks, cfg.Oracle.FallbackRetryDelay)

	spamPolicy := registry.DefaultSpamPolicy()
	if cfg.SpamPolicyPath != "" {
		spamPolicy, err = registry.NewSpamPolicyLoader(fs, jsonAdapter).Load(cfg.SpamPolicyPath)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to load spam policy", zap.Error(err), zap.String("path", cfg.SpamPolicyPath))
		}
	}

	// No report cache lives in this process, so there is nothing to invalidate
	importService := importer.NewService(dataStore, source, normalizer.New(spamPolicy, oracle, clock, jsonAdapter), nil, clock)

	result, err := importService.ImportWallet(ctx, req)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("walletID", req.WalletID))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out, err := jsonAdapter.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if !result.Success {
		os.Exit(1)
	}
}

func buildRequest() (importer.Request, error) {
	req := importer.Request{
		WalletID:            *walletID,
		Limit:               *limit,
		OverwriteDuplicates: *overwrite,
	}

	if *startDate != "" {
		t, err := time.Parse("2006-01-02", *startDate)
		if err != nil {
			return req, fmt.Errorf("invalid -start: %w", err)
		}
		req.StartDate = &t
	}
	if *endDate != "" {
		t, err := time.Parse("2006-01-02", *endDate)
		if err != nil {
			return req, fmt.Errorf("invalid -end: %w", err)
		}
		t = ledger.EndOfDay(t)
		req.EndDate = &t
	}
	if *currencies != "" {
		req.Currencies = strings.Split(*currencies, ",")
	}

	return req, nil
}
