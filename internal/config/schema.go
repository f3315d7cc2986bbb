package config

// Config holds invox configuration.
// Stored at: ~/.invox/config.yaml
type Config struct {
	LLM           LLMCfg        `mapstructure:"llm" yaml:"llm"`
	Grid          GridCfg       `mapstructure:"grid" yaml:"grid"`
	Validation    ValidationCfg `mapstructure:"validation" yaml:"validation"`
	ColumnHeaders ColumnsCfg    `mapstructure:"column_headers" yaml:"column_headers"`
	Cache         CacheCfg      `mapstructure:"cache" yaml:"cache"`
	Pricing       PricingCfg    `mapstructure:"pricing" yaml:"pricing"`
	Limits        LimitsCfg     `mapstructure:"limits" yaml:"limits"`
	Server        ServerCfg     `mapstructure:"server" yaml:"server"`
}

// LLMCfg configures the extraction model provider.
type LLMCfg struct {
	Model          string  `mapstructure:"model" yaml:"model"`                     // OpenAI model name
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"`                 // Supports ${ENV_VAR} syntax
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`         // 0 = deterministic
	MaxTokens      int     `mapstructure:"max_tokens" yaml:"max_tokens"`           // Response token limit
	RateLimit      int     `mapstructure:"rate_limit" yaml:"rate_limit"`           // Requests per minute
	MaxRetries     int     `mapstructure:"max_retries" yaml:"max_retries"`         // Attempts for transient failures
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // Per-request timeout
	Mock           bool    `mapstructure:"mock" yaml:"mock"`                       // Canned data, no API calls
}

// GridCfg tunes the spatial text grid builder.
type GridCfg struct {
	// ScaleFactor compresses horizontal PDF coordinates into character
	// columns. Lower values produce narrower grids.
	ScaleFactor float64 `mapstructure:"scale_factor" yaml:"scale_factor"`

	// TolerancePx groups tokens onto one row when their vertical positions
	// differ by at most this many points.
	TolerancePx float64 `mapstructure:"tolerance_px" yaml:"tolerance_px"`
}

// ValidationCfg tunes extraction result validation.
type ValidationCfg struct {
	AllowedCurrencies []string `mapstructure:"allowed_currencies" yaml:"allowed_currencies"`
	Categories        []string `mapstructure:"categories" yaml:"categories"`

	// MathTolerance is the relative quantity*unit_price vs total_price
	// divergence accepted before a row's confidence gets penalized.
	MathTolerance float64 `mapstructure:"math_tolerance" yaml:"math_tolerance"`
}

// ColumnsCfg names the invoice table columns the extraction prompt anchors on.
type ColumnsCfg struct {
	Quantity   string `mapstructure:"quantity" yaml:"quantity"`
	UnitPrice  string `mapstructure:"unit_price" yaml:"unit_price"`
	TotalPrice string `mapstructure:"total_price" yaml:"total_price"`
}

// CacheCfg configures the extraction result cache.
type CacheCfg struct {
	Enabled    bool `mapstructure:"enabled" yaml:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds" yaml:"ttl_seconds"`
	MaxEntries int  `mapstructure:"max_entries" yaml:"max_entries"`
}

// PricingCfg holds landed-cost computation constants.
type PricingCfg struct {
	FxLeiToEUR         float64 `mapstructure:"fx_lei_to_eur" yaml:"fx_lei_to_eur"`
	TransportRatePerKg float64 `mapstructure:"transport_rate_per_kg" yaml:"transport_rate_per_kg"`
}

// LimitsCfg bounds resource usage.
type LimitsCfg struct {
	MaxPDFSizeMB int `mapstructure:"max_pdf_size_mb" yaml:"max_pdf_size_mb"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}
