package configloader

import (
	"fmt"
	"os"
	"strings"
	"time"

	"portal_wallet/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv overrides portal.apiKey when set.
const APIKeyEnv = "PORTAL_CLIENT_API_KEY"

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port           string   `yaml:"port"`
	ReadTimeout    int      `yaml:"readTimeout"`
	WriteTimeout   int      `yaml:"writeTimeout"`
	IdleTimeout    int      `yaml:"idleTimeout"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
}

// PortalConfig holds the wallet provider settings.
type PortalConfig struct {
	APIKey               string `yaml:"apiKey"`
	APIBaseURL           string `yaml:"apiBaseURL"`
	GatewayBaseURL       string `yaml:"gatewayBaseURL"`
	Variant              string `yaml:"variant"`       // "solana" or "celo"
	DefaultTarget        string `yaml:"defaultTarget"` // "mainnet", "testnet" or the variant's alias
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	SignTimeoutMillis    int64  `yaml:"signTimeoutMillis"`
	DisableFunding       bool   `yaml:"disableFunding"`
}

// BridgeConfig holds the signer bridge the SDK handle talks to.
type BridgeConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	MaxRetries           int    `yaml:"maxRetries"`
}

// RpcClientConfig holds limits for outbound provider calls.
type RpcClientConfig struct {
	RateLimit    float64 `yaml:"rateLimit"`
	BurstLimit   int     `yaml:"burstLimit"`
	MaxRetries   int     `yaml:"maxRetries"`
	RetryDelayMs int64   `yaml:"retryDelayMs"`
}

// CacheConfig holds configuration for the balance snapshot cache.
type CacheConfig struct {
	DefaultExpirationMinutes int `yaml:"defaultExpirationMinutes"`
	CleanupIntervalMinutes   int `yaml:"cleanupIntervalMinutes"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Portal    PortalConfig    `yaml:"portal"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	RpcClient RpcClientConfig `yaml:"rpcClient"`
	Cache     CacheConfig     `yaml:"cache"`
}

// VariantDefinition resolves portal.variant.
func (c *Config) VariantDefinition() (entity.Variant, error) {
	return entity.ParseVariant(c.Portal.Variant)
}

// RequestTimeout is the per-call deadline for provider REST requests.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Portal.RequestTimeoutMillis) * time.Millisecond
}

// SignTimeout is the deadline for a signing/broadcast call.
func (c *Config) SignTimeout() time.Duration {
	return time.Duration(c.Portal.SignTimeoutMillis) * time.Millisecond
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML, applies environment overrides and defaults, and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		cfg.Portal.APIKey = key
		logrus.Infof("portal.apiKey taken from %s", APIKeyEnv)
	}

	applyDefaults(&cfg)

	variant, err := cfg.VariantDefinition()
	if err != nil {
		return nil, fmt.Errorf("invalid portal.variant: %w", err)
	}
	if _, err := variant.Target(cfg.Portal.DefaultTarget); err != nil {
		return nil, fmt.Errorf("invalid portal.defaultTarget %q for variant %s: %w", cfg.Portal.DefaultTarget, variant.Name, err)
	}
	if cfg.Portal.APIKey == "" {
		logrus.Warnf("portal.apiKey is empty; a session must be initialized through the API before wallet calls")
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		// Long enough to cover a signing round trip.
		cfg.Server.WriteTimeout = 90
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Portal.APIBaseURL == "" {
		cfg.Portal.APIBaseURL = "https://api.portalhq.io"
		logrus.Infof("portal.apiBaseURL not set, defaulting to %s", cfg.Portal.APIBaseURL)
	}
	cfg.Portal.APIBaseURL = strings.TrimRight(cfg.Portal.APIBaseURL, "/")
	if cfg.Portal.GatewayBaseURL == "" {
		cfg.Portal.GatewayBaseURL = cfg.Portal.APIBaseURL + "/rpc/v1"
		logrus.Infof("portal.gatewayBaseURL not set, defaulting to %s", cfg.Portal.GatewayBaseURL)
	}
	if cfg.Portal.Variant == "" {
		cfg.Portal.Variant = entity.SolanaVariant.Name
		logrus.Infof("portal.variant not set, defaulting to %s", cfg.Portal.Variant)
	}
	if cfg.Portal.DefaultTarget == "" {
		cfg.Portal.DefaultTarget = "testnet"
	}
	if cfg.Portal.RequestTimeoutMillis <= 0 {
		cfg.Portal.RequestTimeoutMillis = 10000
	}
	if cfg.Portal.SignTimeoutMillis <= 0 {
		cfg.Portal.SignTimeoutMillis = 60000
	}

	if cfg.Bridge.BaseURL == "" {
		cfg.Bridge.BaseURL = "http://127.0.0.1:3000"
		logrus.Infof("bridge.baseURL not set, defaulting to %s", cfg.Bridge.BaseURL)
	}
	if cfg.Bridge.RequestTimeoutMillis <= 0 {
		cfg.Bridge.RequestTimeoutMillis = cfg.Portal.SignTimeoutMillis
	}
	if cfg.Bridge.MaxRetries < 0 {
		cfg.Bridge.MaxRetries = 0
	}

	if cfg.RpcClient.RateLimit <= 0 {
		cfg.RpcClient.RateLimit = 5
	}
	if cfg.RpcClient.BurstLimit <= 0 {
		cfg.RpcClient.BurstLimit = 5
	}
	if cfg.RpcClient.MaxRetries <= 0 {
		cfg.RpcClient.MaxRetries = 3
	}
	if cfg.RpcClient.RetryDelayMs <= 0 {
		cfg.RpcClient.RetryDelayMs = 500
	}

	if cfg.Cache.DefaultExpirationMinutes <= 0 {
		cfg.Cache.DefaultExpirationMinutes = 10
	}
	if cfg.Cache.CleanupIntervalMinutes <= 0 {
		cfg.Cache.CleanupIntervalMinutes = 5
	}
}
