package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies DARKSAVE_* environment variable overrides, and
// returns the final Config. The caller should invoke Config.Validate() after
// Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known DARKSAVE_* environment variables and
// overwrites the corresponding Config fields when set, letting operators
// inject secrets at deploy time without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Amberdata.BaseURL, "DARKSAVE_AMBERDATA_BASE_URL")
	setStr(&cfg.Amberdata.APIKey, "DARKSAVE_AMBERDATA_API_KEY")

	setStr(&cfg.Simulation.DefaultExchange, "DARKSAVE_SIMULATION_DEFAULT_EXCHANGE")
	setDuration(&cfg.Simulation.PriceCacheTTL, "DARKSAVE_SIMULATION_PRICE_CACHE_TTL")

	setStr(&cfg.Redis.Addr, "DARKSAVE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "DARKSAVE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "DARKSAVE_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "DARKSAVE_REDIS_POOL_SIZE")

	setStr(&cfg.Postgres.DSN, "DARKSAVE_POSTGRES_DSN")
	setInt(&cfg.Postgres.MaxConns, "DARKSAVE_POSTGRES_MAX_CONNS")
	setInt(&cfg.Postgres.MinConns, "DARKSAVE_POSTGRES_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "DARKSAVE_POSTGRES_RUN_MIGRATIONS")

	setStr(&cfg.S3.Endpoint, "DARKSAVE_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "DARKSAVE_S3_REGION")
	setStr(&cfg.S3.Bucket, "DARKSAVE_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "DARKSAVE_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "DARKSAVE_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "DARKSAVE_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "DARKSAVE_S3_FORCE_PATH_STYLE")

	setInt(&cfg.Server.Port, "DARKSAVE_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "DARKSAVE_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimitPerMin, "DARKSAVE_SERVER_RATE_LIMIT_PER_MIN")
	setStringSlice(&cfg.Server.CORSOrigins, "DARKSAVE_SERVER_CORS_ORIGINS")

	setStr(&cfg.LogLevel, "DARKSAVE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
