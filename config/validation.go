package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		add("SERVER_PORT", fmt.Sprintf("invalid port %q", cfg.ServerPort))
	}
	if cfg.APIPrefix != "" && !strings.HasPrefix(cfg.APIPrefix, "/") {
		add("API_PREFIX", "must start with /")
	}

	switch cfg.DBDriver {
	case "sqlite":
		if cfg.DBPath == "" {
			add("DB_PATH", "required for the sqlite driver")
		}
	case "postgres":
		if cfg.DatabaseURL == "" && (cfg.DBHost == "" || cfg.DBName == "" || cfg.DBUser == "") {
			add("DATABASE_URL", "DATABASE_URL or DB_HOST, DB_NAME and DB_USER are required for the postgres driver")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		add("JWT_SECRET", "is required")
	} else if cfg.Env.IsProduction() && cfg.JWTSecret == DefaultJWTSecret {
		add("JWT_SECRET", "the default secret cannot be used in production")
	}
	if cfg.JWTExpiresIn <= 0 {
		add("JWT_EXPIRES_IN", "must be positive")
	}
	if cfg.RateLimitCreatePerHour < 0 {
		add("RATE_LIMIT_CREATE_PER_HOUR", "must not be negative")
	}
	if cfg.UploadMaxBytes <= 0 {
		add("UPLOAD_MAX_BYTES", "must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "\n"))
	}

	return nil
}
