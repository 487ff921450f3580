package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Rate limiter provider names
const (
	ProviderEtherscan = "etherscan"
	ProviderTzKT      = "tzkt"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	ReadHost        string        `mapstructure:"read_host"`          // Optional read replica, reads go to the primary when empty
	ReadPort        int           `mapstructure:"read_port"`          // Defaults to Port
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// EthereumConfig holds Ethereum-specific configuration
type EthereumConfig struct {
	// RPCURL is the JSON-RPC endpoint used as the fallback balance oracle
	RPCURL string `mapstructure:"rpc_url"`
	// ExplorerURL is the Etherscan-compatible API used for history and the primary balance
	ExplorerURL      string `mapstructure:"explorer_url"`
	ExplorerAPIKey   string `mapstructure:"explorer_api_key"`
	ExplorerPageSize int    `mapstructure:"explorer_page_size"`
	ChainID          int64  `mapstructure:"chain_id"`
}

// TezosConfig holds Tezos-specific configuration
type TezosConfig struct {
	APIURL string `mapstructure:"api_url"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host               string   `mapstructure:"host"`
	Port               int      `mapstructure:"port"`
	ReadTimeout        int      `mapstructure:"read_timeout"`         // in seconds
	WriteTimeout       int      `mapstructure:"write_timeout"`        // in seconds
	IdleTimeout        int      `mapstructure:"idle_timeout"`         // in seconds
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"` // empty allows all origins
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// CacheConfig holds the balance report cache configuration
type CacheConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// OracleConfig holds the live balance oracle configuration
type OracleConfig struct {
	// FallbackRetryDelay is the wait before the single retry of the fallback call
	FallbackRetryDelay time.Duration `mapstructure:"fallback_retry_delay"`
}

// RateLimitConfig holds the rate limit of a single upstream provider
type RateLimitConfig struct {
	RequestsPerSecond int           `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxQueueTime      time.Duration `mapstructure:"max_queue_time"`
}

// RateLimiterConfig holds the rate limits of all upstream providers
type RateLimiterConfig struct {
	Providers map[string]RateLimitConfig `mapstructure:"providers"`
}

// ChainConfig groups everything needed to talk to the chains
type ChainConfig struct {
	Ethereum       EthereumConfig    `mapstructure:"ethereum"`
	Tezos          TezosConfig       `mapstructure:"tezos"`
	Oracle         OracleConfig      `mapstructure:"oracle"`
	RateLimit      RateLimiterConfig `mapstructure:"rate_limit"`
	HTTPTimeout    time.Duration     `mapstructure:"http_timeout"`
	SpamPolicyPath string            `mapstructure:"spam_policy_path"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig  `mapstructure:",squash"`
	ChainConfig `mapstructure:",squash"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Worker      WorkerConfig   `mapstructure:"worker"`
}

// ImporterConfig holds configuration for the one-shot wallet importer
type ImporterConfig struct {
	BaseConfig  `mapstructure:",squash"`
	ChainConfig `mapstructure:",squash"`
	Database    DatabaseConfig `mapstructure:"database"`
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)
	setChainDefaults(v)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("cache.sweep_interval", "1m")
	v.SetDefault("worker.pool_size", 8)
	v.SetDefault("worker.queue_size", 256)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadImporterConfig loads configuration for the wallet importer
func LoadImporterConfig(configFile string, envPath string) (*ImporterConfig, error) {
	v := configureViper("import-wallet", configFile, envPath)

	// Set defaults
	setDatabaseDefaults(v)
	setChainDefaults(v)
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg ImporterConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if cfg.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if cfg.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}

	return &cfg, nil
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
}

func setChainDefaults(v *viper.Viper) {
	v.SetDefault("ethereum.explorer_url", "https://api.etherscan.io/v2/api")
	v.SetDefault("ethereum.chain_id", 1)
	v.SetDefault("ethereum.explorer_page_size", 10000)
	v.SetDefault("tezos.api_url", "https://api.tzkt.io")
	v.SetDefault("oracle.fallback_retry_delay", "1s")
	v.SetDefault("http_timeout", "30s")
	v.SetDefault("rate_limit.providers", map[string]interface{}{
		ProviderEtherscan: map[string]interface{}{"requests_per_second": 5, "burst": 5, "max_queue_time": "1m"},
		ProviderTzKT:      map[string]interface{}{"requests_per_second": 10, "burst": 10, "max_queue_time": "1m"},
	})
}

// readConfig reads the config file, a missing file falls back to environment variables
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_BALANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.read_host",
		"database.read_port",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Ethereum
		"ethereum.rpc_url",
		"ethereum.explorer_url",
		"ethereum.explorer_api_key",
		"ethereum.explorer_page_size",
		"ethereum.chain_id",
		// Tezos
		"tezos.api_url",
		// Oracle
		"oracle.fallback_retry_delay",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_allowed_origins",
		// Cache
		"cache.ttl",
		"cache.sweep_interval",
		// Worker
		"worker.pool_size",
		"worker.queue_size",
		// Misc
		"http_timeout",
		"spam_policy_path",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// HasReadReplica reports whether a read replica is configured
func (c *DatabaseConfig) HasReadReplica() bool {
	return c.ReadHost != ""
}

// ReadDSN returns the read-replica database connection string.
// If ReadPort is not configured, it falls back to Port.
func (c *DatabaseConfig) ReadDSN() string {
	port := c.ReadPort
	if port == 0 {
		port = c.Port
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.ReadHost, port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Limit returns the configured limit of a provider, false if it is not rate limited
func (c RateLimiterConfig) Limit(provider string) (RateLimitConfig, bool) {
	limit, ok := c.Providers[provider]
	return limit, ok
}
