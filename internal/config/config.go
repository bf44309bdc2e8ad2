package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Ingestion
	InputDir         string
	LedgerPath       string
	FiscalStartMonth int
	StrictIngest     bool
	PersistMandatory bool
	RulesFile        string

	// Server behavior
	ReloadOnStart bool
	CacheTTL      time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		InputDir:         getEnv("INPUT_DIR", "./data/exports"),
		LedgerPath:       getEnv("LEDGER_PATH", "./data/ledger.csv"),
		FiscalStartMonth: getEnvInt("FISCAL_START_MONTH", 8),
		StrictIngest:     getEnvBool("STRICT_INGEST", false),
		PersistMandatory: getEnvBool("PERSIST_MANDATORY", false),
		RulesFile:        getEnv("RULES_FILE", ""),

		ReloadOnStart: getEnvBool("RELOAD_ON_START", true),
		CacheTTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.FiscalStartMonth < 1 || c.FiscalStartMonth > 12 {
		errors = append(errors, fmt.Sprintf("invalid fiscal start month %d: must be between 1 and 12", c.FiscalStartMonth))
	}

	if c.InputDir == "" {
		errors = append(errors, "input directory cannot be empty")
	}

	if c.LedgerPath == "" {
		errors = append(errors, "ledger path cannot be empty")
	}

	if c.RulesFile != "" {
		if _, err := os.Stat(c.RulesFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("rules file does not exist: %s", c.RulesFile))
		}
	}

	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	} else if c.CacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at most 24 hours", c.CacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
