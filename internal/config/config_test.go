package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Auth:     AuthConfig{JWTSecret: "test-secret"},
	}
}

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Budget = BudgetConfig{DailyTokenLimit: 1000000, Action: "invalid_action"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `embedding.budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	for _, action := range []string{"", "warn", "reject"} {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.Embedding.Budget.Action = action
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing jwt secret")
	}
}

func TestValidate_DefaultLimitAboveMax(t *testing.T) {
	cfg := validConfig()
	cfg.Matching = MatchingConfig{DefaultLimit: 50, MaxLimit: 20}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for default_limit > max_limit")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Storage.KeyPrefix != "barter:" {
		t.Errorf("expected KeyPrefix=barter:, got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Embedding.Model != "text-embedding-ada-002" {
		t.Errorf("expected default embedding model, got %q", cfg.Embedding.Model)
	}
	if cfg.Matching.DefaultLimit != 10 {
		t.Errorf("expected DefaultLimit=10, got %d", cfg.Matching.DefaultLimit)
	}
	if cfg.Matching.MaxLimit != 100 {
		t.Errorf("expected MaxLimit=100, got %d", cfg.Matching.MaxLimit)
	}
	if cfg.Matching.EmbedWorkers != 8 {
		t.Errorf("expected EmbedWorkers=8, got %d", cfg.Matching.EmbedWorkers)
	}
}

func TestSemanticEnabled(t *testing.T) {
	cfg := validConfig()
	if cfg.SemanticEnabled() {
		t.Error("semantic strategy should be disabled without an api key")
	}
	cfg.Embedding.APIKey = "sk-test"
	if !cfg.SemanticEnabled() {
		t.Error("semantic strategy should be enabled with an api key")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TRADEMATCH_TEST_SECRET", "s3cret")
	os.Unsetenv("TRADEMATCH_TEST_MISSING")

	in := []byte("secret: ${TRADEMATCH_TEST_SECRET}\nfallback: ${TRADEMATCH_TEST_MISSING:-def}\n")
	got := string(expandEnvVars(in))
	want := "secret: s3cret\nfallback: def\n"
	if got != want {
		t.Errorf("expandEnvVars:\ngot  %q\nwant %q", got, want)
	}
}
