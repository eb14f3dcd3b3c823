package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading an
// optional .env file first. Unset variables leave the current values alone.
//
// Recognized variables: ADDRESS, DATABASE_DSN, SECRET_KEY, TOKEN_VALIDITY,
// ORACLE_URL, ORACLE_API_KEY, ORACLE_TIMEOUT. Durations use the
// time.ParseDuration syntax ("1h", "5s").
func parseEnv(config *Config) {
	// missing .env is fine, real env vars still apply
	_ = godotenv.Load()

	if v := os.Getenv("ADDRESS"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("TOKEN_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.TokenValidityDuration = d
		}
	}
	if v := os.Getenv("ORACLE_URL"); v != "" {
		config.OracleBaseURL = v
	}
	if v := os.Getenv("ORACLE_API_KEY"); v != "" {
		config.OracleAPIKey = v
	}
	if v := os.Getenv("ORACLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.OracleTimeout = d
		}
	}
}
