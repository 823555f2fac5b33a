package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Hedera    HederaConfig    `mapstructure:"hedera"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding" validate:"omitempty,oneof=json console"`
	Output   string `mapstructure:"output" validate:"omitempty,oneof=stdout stderr"`
}

// StorageConfig selects where the last connected wallet kind is persisted.
type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=file memory"`
	Path   string `mapstructure:"path" validate:"required_if=Driver file"`
	Key    string `mapstructure:"key" validate:"required"`
}

// CacheConfig holds settings for the in-memory storage driver.
type CacheConfig struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// ProvidersConfig describes the wallet bridge endpoints visible to this process.
// An empty URL means the wallet is not present in the environment.
type ProvidersConfig struct {
	RequestTimeout time.Duration       `mapstructure:"request_timeout"`
	EVM            EVMProviderConfig   `mapstructure:"evm"`
	HashPack       BridgeConfig        `mapstructure:"hashpack"`
	Blade          BridgeConfig        `mapstructure:"blade"`
	WalletConnect  WalletConnectConfig `mapstructure:"walletconnect"`
}

// EVMProviderConfig describes the injected EVM provider bridge.
type EVMProviderConfig struct {
	URL    string `mapstructure:"url" validate:"omitempty,url"`
	Vendor string `mapstructure:"vendor"`
}

// BridgeConfig is a JSON-RPC bridge endpoint for a Hedera wallet extension.
type BridgeConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// WalletConnectConfig describes the universal provider relay.
type WalletConnectConfig struct {
	URL       string `mapstructure:"url" validate:"omitempty,url"`
	ProjectID string `mapstructure:"project_id"`
}

// HederaConfig holds Hedera network access settings.
type HederaConfig struct {
	MirrorURL string `mapstructure:"mirror_url" validate:"omitempty,url"`
}

// RegistryConfig controls the optional chainlist import into the network registry.
type RegistryConfig struct {
	ChainlistURL   string        `mapstructure:"chainlist_url" validate:"omitempty,url"`
	ImportChainIDs []int64       `mapstructure:"import_chain_ids"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// MetricsConfig toggles the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("app.name", "yield-wallet")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "data/session.yaml")
	v.SetDefault("storage.key", "connectedWalletType")
	v.SetDefault("cache.default_expiration", "0s")
	v.SetDefault("cache.cleanup_interval", "1h")
	v.SetDefault("providers.request_timeout", "2m")
	v.SetDefault("providers.evm.vendor", "metamask")
	v.SetDefault("hedera.mirror_url", "https://mainnet.mirrornode.hedera.com")
	v.SetDefault("registry.chainlist_url", "https://chainid.network/chains.json")
	v.SetDefault("registry.timeout", "15s")
	v.SetDefault("metrics.enabled", true)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		fmt.Printf("Warning: Config file not found in %s or '.', using defaults/env vars\n", configPath)
	}

	v.SetEnvPrefix("YIELD_WALLET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c ProvidersConfig) GetRequestTimeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 2 * time.Minute
	}
	return c.RequestTimeout
}

func (c RegistryConfig) GetTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 15 * time.Second
	}
	return c.Timeout
}

func (c CacheConfig) GetDefaultExpiration() time.Duration {
	return c.DefaultExpiration
}

func (c CacheConfig) GetCleanupInterval() time.Duration {
	return c.CleanupInterval
}
