package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, empty DSN or a non-positive queue size).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidServerConfigs indicates invalid HTTP server settings
	// (for example, missing listen address or zero request timeout).
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidSMTPConfigs indicates invalid mailer settings
	// (for example, missing relay host or sender address).
	ErrInvalidSMTPConfigs = errors.New("invalid SMTP configuration")
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, missing frontend URL).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
)
