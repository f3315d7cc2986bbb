package config

// DefaultConfig returns the baseline configuration. Every value can be
// overridden by config.yaml or INVOX_-prefixed environment variables.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMCfg{
			Model:          "gpt-4o-mini",
			APIKey:         "${OPENAI_API_KEY}",
			Temperature:    0.0,
			MaxTokens:      4096,
			RateLimit:      150,
			MaxRetries:     3,
			TimeoutSeconds: 120,
			Mock:           false,
		},
		Grid: GridCfg{
			ScaleFactor: 0.2,
			TolerancePx: 3,
		},
		Validation: ValidationCfg{
			AllowedCurrencies: []string{"MDL", "EUR", "USD", "RUB"},
			Categories: []string{
				"Lactate",
				"Dulciuri",
				"Bauturi",
				"Panificatie",
				"Carne",
				"Fructe si legume",
				"Conserve",
				"Igiena",
				"Altele",
			},
			MathTolerance: 0.05,
		},
		ColumnHeaders: ColumnsCfg{
			Quantity:   "Cant.",
			UnitPrice:  "Pret unitar",
			TotalPrice: "Valoare incl.TVA",
		},
		Cache: CacheCfg{
			Enabled:    true,
			TTLSeconds: 3600,
			MaxEntries: 128,
		},
		Pricing: PricingCfg{
			FxLeiToEUR:         19.5,
			TransportRatePerKg: 2.5,
		},
		Limits: LimitsCfg{
			MaxPDFSizeMB: 10,
		},
		Server: ServerCfg{
			Host: "0.0.0.0",
			Port: "8080",
		},
	}
}
