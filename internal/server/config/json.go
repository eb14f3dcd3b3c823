package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/itoqsky/credshield/internal/flagx"
	"github.com/itoqsky/credshield/internal/timex"
)

// JsonConfig is the DTO for reading JSON configuration files. Interval fields
// use timex.Duration, which accepts both strings such as "1h" and integer
// nanoseconds. After unmarshalling, values are copied into the runtime
// Config.
type JsonConfig struct {
	EndpointAddr          string         `json:"endpoint_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	OracleBaseURL         string         `json:"oracle_base_url"`
	OracleAPIKey          string         `json:"oracle_api_key"`
	OracleTimeout         timex.Duration `json:"oracle_timeout"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. If no file is named, nothing is
// loaded. An unreadable or invalid file panics: a named config file that
// cannot be applied is a startup error.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	}
	if c.OracleBaseURL != "" {
		config.OracleBaseURL = c.OracleBaseURL
	}
	if c.OracleAPIKey != "" {
		config.OracleAPIKey = c.OracleAPIKey
	}
	if c.OracleTimeout.Duration != 0 {
		config.OracleTimeout = time.Duration(c.OracleTimeout.Duration)
	}
}
