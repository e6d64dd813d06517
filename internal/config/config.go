package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config captures all runtime configuration derived from environment variables
// and, optionally, a YAML file named by CONFIG_FILE.
type Config struct {
	Port              string `yaml:"port" env:"PORT" env-default:"8080"`
	DBURL             string `yaml:"db_url" env:"DB_URL"`
	JSONEnsureASCII   bool   `yaml:"json_ensure_ascii" env:"JSON_ENSURE_ASCII" env-default:"false"`
	DBMigrate         bool   `yaml:"db_migrate" env:"DB_MIGRATE" env-default:"false"`
	DBLogQueries      bool   `yaml:"db_log_queries" env:"DB_LOG_QUERIES" env-default:"false"`
	ReadTimeoutSecs   int    `yaml:"read_timeout_secs" env:"SERVER_READ_TIMEOUT" env-default:"15"`
	WriteTimeoutSecs  int    `yaml:"write_timeout_secs" env:"SERVER_WRITE_TIMEOUT" env-default:"15"`
	IdleTimeoutSecs   int    `yaml:"idle_timeout_secs" env:"SERVER_IDLE_TIMEOUT" env-default:"60"`
	DBMaxConns        int    `yaml:"db_max_conns" env:"DB_MAX_CONNS" env-default:"20"`
	DBMinConns        int    `yaml:"db_min_conns" env:"DB_MIN_CONNS" env-default:"2"`
	DBMaxIdleSecs     int    `yaml:"db_max_conn_idle_secs" env:"DB_MAX_CONN_IDLE_SECS" env-default:"300"`
	DBMaxLifeSecs     int    `yaml:"db_max_conn_lifetime_secs" env:"DB_MAX_CONN_LIFETIME_SECS" env-default:"3600"`
	DBConnTimeoutSecs int    `yaml:"db_conn_timeout_secs" env:"DB_CONN_TIMEOUT_SECS" env-default:"10"`
	DBStatementCache  int    `yaml:"db_statement_cache_capacity" env:"DB_STATEMENT_CACHE_CAPACITY" env-default:"256"`
}

// Load reads configuration from CONFIG_FILE (when set) and the environment,
// applying defaults and validation. Environment variables win over the file.
func Load() (Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	if cfg.DBURL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	if cfg.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if cfg.ReadTimeoutSecs < 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be non-negative")
	}
	if cfg.WriteTimeoutSecs < 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be non-negative")
	}
	if cfg.IdleTimeoutSecs < 0 {
		return fmt.Errorf("SERVER_IDLE_TIMEOUT must be non-negative")
	}
	if cfg.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBConnTimeoutSecs < 0 {
		return fmt.Errorf("DB_CONN_TIMEOUT_SECS must be non-negative")
	}
	if cfg.DBStatementCache < 0 {
		return fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	return nil
}
