package config

// DefaultDatabase is the store used when none is configured.
const DefaultDatabase = ".resptag/resptag.db"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Database:         DefaultDatabase,
		Timeout:          30000, // 30 seconds
		Retries:          0,
		RetryDelay:       1000, // 1 second
		FollowRedirects:  BoolPtr(true),
		MaxRedirects:     10,
		ValidateSSL:      BoolPtr(true),
		QueryMode:        "auto",
		MarkupParser:     "auto",
		StrictTransforms: BoolPtr(false),
		LogLevel:         "",
		Verbose:          BoolPtr(false),
		NoColor:          BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Database == defaults.Database &&
		c.Timeout == defaults.Timeout &&
		c.Retries == defaults.Retries &&
		c.RetryDelay == defaults.RetryDelay &&
		c.GetFollowRedirects() == defaults.GetFollowRedirects() &&
		c.MaxRedirects == defaults.MaxRedirects &&
		c.GetValidateSSL() == defaults.GetValidateSSL() &&
		c.Proxy == defaults.Proxy &&
		len(c.Headers) == 0 &&
		c.QueryMode == defaults.QueryMode &&
		c.MarkupParser == defaults.MarkupParser &&
		c.GetStrictTransforms() == defaults.GetStrictTransforms() &&
		c.LogLevel == defaults.LogLevel &&
		c.LogFile == defaults.LogFile &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor()
}
