package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// streamhub server. It aggregates all sub-configurations and is populated by
// merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the public frontend URL
	// and the allowed cross-origin list.
	App App `envPrefix:"APP_"`

	// Storage holds configuration for the persistence backend.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address and timeout settings for the HTTP
	// server.
	Server Server `envPrefix:"SERVER_"`

	// SMTP holds settings for the outbound registration mailer.
	SMTP SMTP `envPrefix:"SMTP_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// FrontendURL is the public base URL of the web frontend. It is
	// embedded in registration emails and used as the default allowed
	// origin for state-changing requests.
	// Env: APP_FRONTEND_URL
	FrontendURL string `env:"FRONTEND_URL"`

	// CORSOrigins lists additional origins accepted by the origin filter,
	// comma separated in the environment.
	// Env: APP_CORS_ORIGINS
	CORSOrigins []string `env:"CORS_ORIGINS"`
}

// Storage groups the configuration for the storage backend.
type Storage struct {
	// DB holds the database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection and command-queue settings for the SQLite backend.
type DB struct {
	// DSN is the SQLite data source name, typically a file path
	// (e.g. "file:streamhub.db?_fk=on").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`

	// ConnectRetries is how many times opening the database is attempted
	// before startup fails.
	// Env: STORAGE_DB_CONNECT_RETRIES
	ConnectRetries uint64 `env:"CONNECT_RETRIES"`

	// RetryInterval is the pause between connection attempts.
	// Env: STORAGE_DB_RETRY_INTERVAL
	RetryInterval time.Duration `env:"RETRY_INTERVAL"`

	// QueueSize bounds the database command queue. Submissions beyond the
	// bound fail fast instead of blocking.
	// Env: STORAGE_DB_QUEUE_SIZE
	QueueSize int `env:"QUEUE_SIZE"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address on which the HTTP server listens,
	// in "host:port" format (e.g. "0.0.0.0:8080").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request before the server cancels it (e.g. "30s", "1m").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// SMTP holds settings for the mail relay used to deliver account
// registration messages.
type SMTP struct {
	// Host is the SMTP relay hostname.
	// Env: SMTP_HOST
	Host string `env:"HOST"`

	// Port is the SMTP relay port.
	// Env: SMTP_PORT
	Port int `env:"PORT"`

	// Username authenticates against the relay. Empty disables auth.
	// Env: SMTP_USERNAME
	Username string `env:"USERNAME"`

	// Password authenticates against the relay.
	// Env: SMTP_PASSWORD
	Password string `env:"PASSWORD"`

	// From is the sender address placed on outgoing messages.
	// Env: SMTP_FROM
	From string `env:"FROM"`

	// SendPeriod is how often the queued outgoing messages are drained.
	// Env: SMTP_SEND_PERIOD
	SendPeriod time.Duration `env:"SEND_PERIOD"`

	// QueueSize bounds the outgoing message queue.
	// Env: SMTP_QUEUE_SIZE
	QueueSize int `env:"QUEUE_SIZE"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (first source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
