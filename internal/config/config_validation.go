package config

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || cfg.Storage.DB.QueueSize < 1 || cfg.Storage.DB.ConnectRetries < 1 {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 {
		return ErrInvalidServerConfigs
	}

	if cfg.SMTP.Host == "" || cfg.SMTP.Port < 1 || cfg.SMTP.From == "" ||
		cfg.SMTP.SendPeriod <= 0 || cfg.SMTP.QueueSize < 1 {
		return ErrInvalidSMTPConfigs
	}

	if cfg.App.FrontendURL == "" {
		return ErrInvalidAppConfigs
	}

	return nil
}
