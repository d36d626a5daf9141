package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Ledger backend names accepted in LEDGER_BACKEND.
const (
	BackendMemory   = "memory"
	BackendLevelDB  = "leveldb"
	BackendPostgres = "postgres"
)

type Config struct {
	Port          string   `mapstructure:"PORT"`
	Env           string   `mapstructure:"ENV"`
	LedgerBackend string   `mapstructure:"LEDGER_BACKEND"`
	LedgerPath    string   `mapstructure:"LEDGER_PATH"`
	DatabaseURL   string   `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`
	SeedOnStart   bool     `mapstructure:"SEED_ON_START"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LEDGER_BACKEND", BackendMemory)
	v.SetDefault("LEDGER_PATH", "./data/medtrace")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SEED_ON_START", false)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("LEDGER_BACKEND")
	v.BindEnv("LEDGER_PATH")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("SEED_ON_START")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks backend-specific requirements: the Postgres backend
// needs DATABASE_URL, the LevelDB backend needs LEDGER_PATH.
func (c *Config) Validate() error {
	switch c.LedgerBackend {
	case BackendMemory:
	case BackendLevelDB:
		if c.LedgerPath == "" {
			return fmt.Errorf("LEDGER_PATH is required when LEDGER_BACKEND is %q", BackendLevelDB)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when LEDGER_BACKEND is %q", BackendPostgres)
		}
	default:
		return fmt.Errorf("LEDGER_BACKEND must be %q, %q or %q, got %q",
			BackendMemory, BackendLevelDB, BackendPostgres, c.LedgerBackend)
	}
	return nil
}
