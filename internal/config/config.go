// Package config defines the global configuration structure for the
// riverWatch service. Configuration is loaded once at process initialization
// and is immutable thereafter. It follows 12-Factor App principles by
// strictly separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// Any missing required value or invalid format causes the application to
// fail immediately on startup.
package config

import (
	"time"

	"github.com/k-devoe/riverWatch/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the riverWatch service.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server   ServerConfig
	Database DatabaseConfig
	Gauge    GaugeConfig
	Twilio   TwilioConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// GaugeConfig holds the gauge page source configuration.
type GaugeConfig struct {
	// URL of the gauge forecast page to scrape.
	URL string `envconfig:"GAUGE_URL" validate:"required,url"`
	// GraphURL is the public gauge graph link appended to alert messages.
	GraphURL     string        `envconfig:"GAUGE_GRAPH_URL" validate:"required,url"`
	FetchTimeout time.Duration `envconfig:"GAUGE_FETCH_TIMEOUT" default:"30s"`
	UserAgent    string        `envconfig:"GAUGE_USER_AGENT" default:"riverWatch/1.0"`
}

// TwilioConfig holds SMS delivery credentials.
type TwilioConfig struct {
	AccountSID string       `envconfig:"TWILIO_ACCOUNT_SID" validate:"required"`
	AuthToken  SecretString `envconfig:"TWILIO_AUTH_TOKEN" validate:"required"`
	FromNumber string       `envconfig:"TWILIO_FROM_NUMBER" validate:"required,e164"`
	// BaseURL overrides the Twilio API endpoint; empty means production.
	BaseURL string `envconfig:"TWILIO_BASE_URL"`
}
