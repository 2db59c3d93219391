// Package config loads service settings from a YAML file and FOODFLOW_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "FOODFLOW"

// Store types.
const (
	StoreCosmos   = "cosmos"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// CosmosPartitionKeyPath is the only partition key path the cosmos store
// supports; records are partitioned by food group.
const CosmosPartitionKeyPath = "/foodGroup"

type Config struct {
	Service string        `mapstructure:"service"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Store   StoreConfig   `mapstructure:"store"`
	Auth    AuthConfig    `mapstructure:"auth"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// RateLimit is requests per second; 0 disables limiting.
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	TLSCert        string  `mapstructure:"tls_cert"`
	TLSKey         string  `mapstructure:"tls_key"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type TracingConfig struct {
	// Host of the OTLP collector; empty disables export.
	Host        string  `mapstructure:"host"`
	Probability float64 `mapstructure:"probability"`
}

type StoreConfig struct {
	Type     string         `mapstructure:"type"` // cosmos | postgres | memory
	Cosmos   CosmosConfig   `mapstructure:"cosmos"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type CosmosConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	Endpoint         string `mapstructure:"endpoint"`
	Key              string `mapstructure:"key"`
	Database         string `mapstructure:"database"`
	Container        string `mapstructure:"container"`
	PartitionKeyPath string `mapstructure:"partition_key_path"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type AuthConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	RedisAddr  string        `mapstructure:"redis_addr"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service", "foodflow")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 15*time.Second)
	v.SetDefault("http.rate_limit", 0)
	v.SetDefault("http.rate_limit_burst", 20)
	v.SetDefault("http.tls_cert", "")
	v.SetDefault("http.tls_key", "")

	v.SetDefault("log.level", "info")

	v.SetDefault("tracing.host", "")
	v.SetDefault("tracing.probability", 1.0)

	v.SetDefault("store.type", StoreCosmos)
	v.SetDefault("store.cosmos.connection_string", "")
	v.SetDefault("store.cosmos.endpoint", "")
	v.SetDefault("store.cosmos.key", "")
	v.SetDefault("store.cosmos.database", "DemoDB")
	v.SetDefault("store.cosmos.container", "NutritionFoods")
	v.SetDefault("store.cosmos.partition_key_path", CosmosPartitionKeyPath)
	v.SetDefault("store.postgres.dsn", "")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.redis_addr", "localhost:6379")
	v.SetDefault("auth.session_ttl", time.Hour)
}

// Load reads path when it is not empty, applies environment overrides such
// as FOODFLOW_STORE_TYPE and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Type {
	case StoreCosmos:
		cc := c.Store.Cosmos
		if cc.ConnectionString == "" && (cc.Endpoint == "" || cc.Key == "") {
			errs = append(errs, errors.New("store.cosmos: connection_string or endpoint and key are required"))
		}
		if cc.Database == "" || cc.Container == "" {
			errs = append(errs, errors.New("store.cosmos: database and container are required"))
		}
		if cc.PartitionKeyPath != CosmosPartitionKeyPath {
			errs = append(errs, fmt.Errorf("store.cosmos: partition_key_path %q must be %s", cc.PartitionKeyPath, CosmosPartitionKeyPath))
		}
	case StorePostgres:
		if c.Store.Postgres.DSN == "" {
			errs = append(errs, errors.New("store.postgres: dsn is required"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("store.type: unknown store %q", c.Store.Type))
	}
	if c.HTTP.RateLimit < 0 {
		errs = append(errs, errors.New("http.rate_limit must not be negative"))
	}
	if c.Tracing.Probability < 0 || c.Tracing.Probability > 1 {
		errs = append(errs, errors.New("tracing.probability must be within [0, 1]"))
	}
	if (c.HTTP.TLSCert == "") != (c.HTTP.TLSKey == "") {
		errs = append(errs, errors.New("http: tls_cert and tls_key must be set together"))
	}
	if c.Auth.Enabled && c.Auth.RedisAddr == "" {
		errs = append(errs, errors.New("auth.redis_addr is required when auth is enabled"))
	}
	return errors.Join(errs...)
}
