package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FOODFLOW_STORE_TYPE", "memory")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "foodflow", cfg.Service)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "DemoDB", cfg.Store.Cosmos.Database)
	assert.Equal(t, "NutritionFoods", cfg.Store.Cosmos.Container)
	assert.Equal(t, "/foodGroup", cfg.Store.Cosmos.PartitionKeyPath)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.False(t, cfg.Auth.Enabled)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foodflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9090"
  rate_limit: 50
store:
  type: cosmos
  cosmos:
    endpoint: https://localhost:8081
    key: c2VjcmV0
    database: Foods
log:
  level: debug
`), 0o600))
	t.Setenv("FOODFLOW_STORE_COSMOS_CONTAINER", "Staging")
	t.Setenv("FOODFLOW_HTTP_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.InDelta(t, 50, cfg.HTTP.RateLimit, 0)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "Foods", cfg.Store.Cosmos.Database)
	assert.Equal(t, "Staging", cfg.Store.Cosmos.Container)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Store: StoreConfig{
				Type: StoreCosmos,
				Cosmos: CosmosConfig{
					ConnectionString: "AccountEndpoint=https://localhost:8081/;AccountKey=a2V5;",
					Database:         "DemoDB",
					Container:        "NutritionFoods",
					PartitionKeyPath: "/foodGroup",
				},
			},
			Tracing: TracingConfig{Probability: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no credentials", func(c *Config) { c.Store.Cosmos.ConnectionString = "" }, "connection_string"},
		{"endpoint and key", func(c *Config) {
			c.Store.Cosmos.ConnectionString = ""
			c.Store.Cosmos.Endpoint = "https://localhost:8081"
			c.Store.Cosmos.Key = "a2V5"
		}, ""},
		{"bad partition path", func(c *Config) { c.Store.Cosmos.PartitionKeyPath = "foodGroup" }, "partition_key_path"},
		{"other partition path", func(c *Config) { c.Store.Cosmos.PartitionKeyPath = "/category" }, "partition_key_path"},
		{"postgres without dsn", func(c *Config) { c.Store.Type = StorePostgres }, "dsn"},
		{"memory", func(c *Config) { c.Store = StoreConfig{Type: StoreMemory} }, ""},
		{"unknown store", func(c *Config) { c.Store.Type = "mongo" }, "unknown store"},
		{"negative rate", func(c *Config) { c.HTTP.RateLimit = -1 }, "rate_limit"},
		{"probability", func(c *Config) { c.Tracing.Probability = 2 }, "probability"},
		{"half tls", func(c *Config) { c.HTTP.TLSCert = "server.crt" }, "tls_cert"},
		{"auth without redis", func(c *Config) { c.Auth.Enabled = true }, "redis_addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
