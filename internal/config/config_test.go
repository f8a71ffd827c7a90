package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           "postgres",
			Database:       "lastbite",
			MaxConnections: 25,
			MinConnections: 5,
		},
		Logger:  LoggerConfig{Level: "info", Format: "json"},
		Auth:    AuthConfig{JWTSecret: "secret", TokenExpiryMins: 60},
		Backend: BackendConfig{BaseURL: "https://api.example.com"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("BACKEND_BASE_URL", "https://api.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "lastbite", cfg.Database.Database)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.Voucher.Enabled)
	assert.Equal(t, "checkout-events", cfg.Kafka.Topic)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("BACKEND_BASE_URL", "https://api.example.com")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("BACKEND_BASE_URL", "https://api.example.com")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad server port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, "database host is required"},
		{"missing db user", func(c *Config) { c.Database.User = "" }, "database user is required"},
		{"min above max conns", func(c *Config) { c.Database.MinConnections = 50 }, "cannot exceed max"},
		{"missing jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }, "JWT secret is required"},
		{"missing backend url", func(c *Config) { c.Backend.BaseURL = "" }, "backend base URL is required"},
		{"bad log level", func(c *Config) { c.Logger.Level = "verbose" }, "invalid log level"},
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }, "invalid log format"},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }, "kafka brokers are required"},
		{"vouchers without files", func(c *Config) { c.Voucher.Enabled = true }, "voucher file paths are required"},
		{
			"voucher s3 without bucket",
			func(c *Config) {
				c.Voucher.Enabled = true
				c.Voucher.FilePaths = []string{"a.gz"}
				c.Voucher.S3Enabled = true
			},
			"S3 bucket is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := validConfig().Database
	cfg.Password = "pw"

	assert.Equal(t,
		"postgres://postgres:pw@localhost:5432/lastbite?sslmode=disable",
		cfg.ConnectionString(),
	)
}

func TestServerConfig_Address(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", validConfig().Server.Address())
}
