// Package config handles configuration for the gateway server, including
// defaults, a .env/environment overlay, a JSON file overlay, and
// command-line flags.
package config

import "time"

// Config holds runtime settings for the CredShield gateway.
//
// Fields:
//   - EndpointAddr: bind address for the public HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty means the in-memory store.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the test
//     default in prod.
//   - TokenValidityDuration: session token lifetime.
//   - OracleBaseURL: base URL of the crypto oracle service.
//   - OracleAPIKey: optional X-API-Key sent on oracle calls.
//   - OracleTimeout: per-call timeout for oracle requests.
type Config struct {
	EndpointAddr          string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	OracleBaseURL         string
	OracleAPIKey          string
	OracleTimeout         time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 1 * time.Hour
	c.OracleBaseURL = "http://127.0.0.1:8000"
	c.OracleAPIKey = ""
	c.OracleTimeout = 5 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment (including an optional .env file), an optional JSON
// file, and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
