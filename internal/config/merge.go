package config

// Merge layers override on top of base and returns a new Config. Zero-value
// override fields fall through to base. The CLI merges global, then project
// file, then flags, so the most specific source wins.
func Merge(base, override *Config) *Config {
	result := &Config{}
	if base != nil {
		*result = *base
	}
	if override == nil {
		return result
	}

	if override.Provider != "" {
		result.Provider = override.Provider
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	if override.BaseURL != "" {
		result.BaseURL = override.BaseURL
	}
	if override.MaxRetries > 0 {
		result.MaxRetries = override.MaxRetries
	}
	if override.BatchLimit > 0 {
		result.BatchLimit = override.BatchLimit
	}
	if override.Timeout != "" {
		result.Timeout = override.Timeout
	}
	if override.BatchDescription != "" {
		result.BatchDescription = override.BatchDescription
	}
	return result
}
