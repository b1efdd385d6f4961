// Package config defines the darksave service configuration and provides
// defaults and validation.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by DARKSAVE_* environment
// variables.
type Config struct {
	Amberdata  AmberdataConfig  `toml:"amberdata"`
	Simulation SimulationConfig `toml:"simulation"`
	Redis      RedisConfig      `toml:"redis"`
	Postgres   PostgresConfig   `toml:"postgres"`
	S3         S3Config         `toml:"s3"`
	Server     ServerConfig     `toml:"server"`
	LogLevel   string           `toml:"log_level"`
}

// AmberdataConfig holds the market-data API endpoint and credentials.
type AmberdataConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// SimulationConfig holds the venue and instrument parameters for the
// simulation engine.
type SimulationConfig struct {
	// DefaultExchange is the venue whose book is reconstructed when the
	// request does not name one.
	DefaultExchange string `toml:"default_exchange"`

	// VenueFees overrides or extends the built-in taker fee schedule
	// (venue name -> fractional fee, e.g. 0.001).
	VenueFees map[string]float64 `toml:"venue_fees"`

	// Tokens maps base-asset mint addresses (lowercase hex) to tickers.
	Tokens map[string]string `toml:"tokens"`

	// PriceCacheTTL bounds how long a cached spot price may be reused for
	// amount normalization.
	PriceCacheTTL duration `toml:"price_cache_ttl"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	PoolSize int    `toml:"pool_size"`
}

// PostgresConfig holds the estimate-store connection parameters. An empty
// DSN disables estimate recording.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	MaxConns      int    `toml:"max_conns"`
	MinConns      int    `toml:"min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds snapshot-archive object storage parameters. An empty
// Bucket disables archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port            int      `toml:"port"`
	CORSOrigins     []string `toml:"cors_origins"`
	APIKey          string   `toml:"api_key"`
	RateLimitPerMin int      `toml:"rate_limit_per_min"`
}

// duration wraps time.Duration to support TOML string decoding ("30s", "5m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for the TOML decoder.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Amberdata: AmberdataConfig{
			BaseURL: "https://api.amberdata.com",
		},
		Simulation: SimulationConfig{
			DefaultExchange: "binance",
			VenueFees:       map[string]float64{},
			Tokens: map[string]string{
				"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2": "weth",
				"0x2260fac5e5542a773aa44fbcfedf7c193bc2c599": "wbtc",
			},
			PriceCacheTTL: duration{30 * time.Second},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			DB:       0,
			PoolSize: 20,
		},
		Postgres: PostgresConfig{
			MaxConns:      10,
			MinConns:      2,
			RunMigrations: true,
		},
		S3: S3Config{
			Region:         "us-east-1",
			UseSSL:         true,
			ForcePathStyle: false,
		},
		Server: ServerConfig{
			Port:            8080,
			CORSOrigins:     []string{"*"},
			RateLimitPerMin: 120,
		},
		LogLevel: "info",
	}
}

// Validate checks that the configuration is internally consistent. It is
// called after Load and env overrides have been applied.
func (c *Config) Validate() error {
	if c.Amberdata.BaseURL == "" {
		return fmt.Errorf("config: amberdata.base_url is required")
	}
	if c.Amberdata.APIKey == "" {
		return fmt.Errorf("config: amberdata.api_key is required")
	}
	if c.Simulation.DefaultExchange == "" {
		return fmt.Errorf("config: simulation.default_exchange is required")
	}
	if len(c.Simulation.Tokens) == 0 {
		return fmt.Errorf("config: simulation.tokens must map at least one mint address")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	for venue, fee := range c.Simulation.VenueFees {
		if fee < 0 || fee >= 1 {
			return fmt.Errorf("config: simulation.venue_fees[%s] = %v out of range [0, 1)", venue, fee)
		}
	}
	return nil
}
