package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:         30000, // 30 seconds
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    10,
		ValidateSSL:     BoolPtr(true),
		Output:          "console",
		Bail:            BoolPtr(false),
		Verbose:         BoolPtr(false),
		NoColor:         BoolPtr(false),
		LogLevel:        "warn",
		LogFormat:       "console",
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Timeout == defaults.Timeout &&
		c.GetFollowRedirects() == defaults.GetFollowRedirects() &&
		c.MaxRedirects == defaults.MaxRedirects &&
		c.GetValidateSSL() == defaults.GetValidateSSL() &&
		c.Proxy == defaults.Proxy &&
		len(c.Headers) == 0 &&
		c.EnvFile == defaults.EnvFile &&
		c.Output == defaults.Output &&
		c.GetBail() == defaults.GetBail() &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor() &&
		c.LogLevel == defaults.LogLevel &&
		c.LogFormat == defaults.LogFormat
}
