package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "${OPENAI_API_KEY}" {
		t.Error("expected API key placeholder")
	}
	if cfg.Grid.ScaleFactor != 0.2 || cfg.Grid.TolerancePx != 3 {
		t.Errorf("grid defaults = %+v", cfg.Grid)
	}
	if len(cfg.Validation.AllowedCurrencies) == 0 {
		t.Error("expected default currencies")
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTLSeconds == 0 {
		t.Errorf("cache defaults = %+v", cfg.Cache)
	}
	if cfg.ColumnHeaders.Quantity != "Cant." {
		t.Errorf("column headers = %+v", cfg.ColumnHeaders)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		os.Setenv("TEST_API_KEY", "secret123")
		defer os.Unsetenv("TEST_API_KEY")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestConfig_ResolveAPIKey(t *testing.T) {
	os.Setenv("TEST_OPENAI_KEY", "sk-test-123")
	defer os.Unsetenv("TEST_OPENAI_KEY")

	cfg := &Config{LLM: LLMCfg{APIKey: "${TEST_OPENAI_KEY}"}}
	if got := cfg.ResolveAPIKey(); got != "sk-test-123" {
		t.Errorf("expected sk-test-123, got %s", got)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		configContent := `
llm:
  model: gpt-4o
  mock: true
cache:
  ttl_seconds: 60
`
		if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
			t.Fatal(err)
		}

		cm, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("NewManager: %v", err)
		}

		cfg := cm.Get()
		if cfg.LLM.Model != "gpt-4o" {
			t.Errorf("model = %q", cfg.LLM.Model)
		}
		if !cfg.LLM.Mock {
			t.Error("mock should be true")
		}
		if cfg.Cache.TTLSeconds != 60 {
			t.Errorf("ttl = %d", cfg.Cache.TTLSeconds)
		}
		// Untouched sections keep defaults.
		if cfg.Grid.ScaleFactor != 0.2 {
			t.Errorf("scale factor = %v", cfg.Grid.ScaleFactor)
		}
	})

	t.Run("works without config file", func(t *testing.T) {
		cm, err := NewManager("")
		if err != nil {
			t.Fatalf("NewManager: %v", err)
		}
		if cm.Get() == nil {
			t.Fatal("expected config")
		}
	})
}

func TestPipelineSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.TimeoutSeconds = 30
	cfg.Cache.TTLSeconds = 90

	s := cfg.PipelineSettings()
	if s.Model != cfg.LLM.Model {
		t.Errorf("model = %q", s.Model)
	}
	if s.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", s.Timeout)
	}
	if s.CacheTTL != 90*time.Second {
		t.Errorf("cache ttl = %v", s.CacheTTL)
	}
	if s.Headers.Quantity != "Cant." {
		t.Errorf("headers = %+v", s.Headers)
	}
	if len(s.AllowedCurrencies) != len(cfg.Validation.AllowedCurrencies) {
		t.Error("currencies not propagated")
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("empty config written")
	}
}
