package config

import "time"

// Config structure
type Config struct {
	LLMProvider string `json:"llmProvider"`
	APIKey      string `json:"apiKey"`
	BaseURL     string `json:"baseUrl"`
	ModelName   string `json:"modelName"`
	MaxTokens   int    `json:"maxTokens"`

	// Dataset ceilings enforced at ingest time.
	MaxRows    int `json:"maxRows"`
	MaxColumns int `json:"maxColumns"`

	// Row cap applied to query_data results.
	MaxQueryRows int `json:"maxQueryRows"`

	MaxPreviewRows int `json:"maxPreviewRows"`

	// Session lifecycle.
	MaxSessions          int `json:"maxSessions"`
	SessionTTLMinutes    int `json:"sessionTtlMinutes"`
	SweepIntervalSeconds int `json:"sweepIntervalSeconds"`

	// Agent turn processing.
	MaxToolDepth    int `json:"maxToolDepth"`
	ModelRetries    int `json:"modelRetries"`
	RetryBaseMillis int `json:"retryBaseMillis"`

	DataCacheDir string `json:"dataCacheDir"`

	// DetailedLog turns on per-tool and per-query log lines. Lifecycle
	// events are logged regardless.
	DetailedLog bool `json:"detailedLog"`
}

// Default returns a Config with working defaults for every ceiling and bound.
// Provider credentials are intentionally left empty.
func Default() Config {
	return Config{
		LLMProvider:          "OpenAI",
		ModelName:            "gpt-4o",
		MaxTokens:            4096,
		MaxRows:              100000,
		MaxColumns:           256,
		MaxQueryRows:         1000,
		MaxPreviewRows:       100,
		MaxSessions:          64,
		SessionTTLMinutes:    60,
		SweepIntervalSeconds: 30,
		MaxToolDepth:         6,
		ModelRetries:         3,
		RetryBaseMillis:      500,
	}
}

// ApplyDefaults fills zero-valued limits so a partially written config file
// cannot disable the ceilings.
func (c *Config) ApplyDefaults() {
	d := Default()
	if c.LLMProvider == "" {
		c.LLMProvider = d.LLMProvider
	}
	if c.ModelName == "" {
		c.ModelName = d.ModelName
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.MaxRows <= 0 {
		c.MaxRows = d.MaxRows
	}
	if c.MaxColumns <= 0 {
		c.MaxColumns = d.MaxColumns
	}
	if c.MaxQueryRows <= 0 {
		c.MaxQueryRows = d.MaxQueryRows
	}
	if c.MaxPreviewRows <= 0 {
		c.MaxPreviewRows = d.MaxPreviewRows
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = d.MaxSessions
	}
	if c.SessionTTLMinutes <= 0 {
		c.SessionTTLMinutes = d.SessionTTLMinutes
	}
	if c.SweepIntervalSeconds <= 0 {
		c.SweepIntervalSeconds = d.SweepIntervalSeconds
	}
	if c.MaxToolDepth <= 0 {
		c.MaxToolDepth = d.MaxToolDepth
	}
	if c.ModelRetries <= 0 {
		c.ModelRetries = d.ModelRetries
	}
	if c.RetryBaseMillis <= 0 {
		c.RetryBaseMillis = d.RetryBaseMillis
	}
}

// SessionTTL returns the session time-to-live as a duration.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// SweepInterval returns the expiry sweep interval as a duration.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// RetryBase returns the base backoff interval for model retries.
func (c Config) RetryBase() time.Duration {
	return time.Duration(c.RetryBaseMillis) * time.Millisecond
}
