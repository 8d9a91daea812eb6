package config

// validate checks that the final merged [StructuredConfig] satisfies the
// invariants the daemon relies on at startup.
//
// The sync interval is deliberately not required here: a zero value falls
// back to the engine's five-minute default.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Remote.BaseURL == "" {
		return ErrInvalidRemoteConfigs
	}

	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	return nil
}
