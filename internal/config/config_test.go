package config

import "testing"

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := Config{
		Embedding: EmbeddingConfig{
			Provider: "hash",
			Budget: BudgetConfig{
				DailyTokenLimit: 1000000,
				Action:          "invalid_action",
			},
		},
	}

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
	validActions := []string{"", "warn", "reject"}

	for _, action := range validActions {
		t.Run("action="+action, func(t *testing.T) {
			cfg := Config{
				Embedding: EmbeddingConfig{
					Provider: "hash",
					Budget: BudgetConfig{
						Action: action,
					},
				},
			}

			err := cfg.Validate()
			if err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_NegativeDimension(t *testing.T) {
	cfg := Config{
		Index:     IndexConfig{Dimension: -1},
		Embedding: EmbeddingConfig{Provider: "hash"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for negative dimension")
	}
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := Config{
		Embedding: EmbeddingConfig{Provider: "quantum"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestValidate_OpenAIRequiresCredentials(t *testing.T) {
	cfg := Config{
		Embedding: EmbeddingConfig{Provider: "openai"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for openai provider without api key")
	}

	cfg.Embedding.APIKey = "test-key"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for openai provider without model")
	}

	cfg.Embedding.Model = "test-model"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with full openai credentials: %v", err)
	}
}

func TestValidate_CacheRequiresAddrs(t *testing.T) {
	cfg := Config{
		Embedding: EmbeddingConfig{Provider: "hash"},
		Cache:     CacheConfig{Enabled: true},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for enabled cache without addrs")
	}

	cfg.Cache.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with cache addrs set: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Index.MaxBatchSize != 100 {
		t.Errorf("expected MaxBatchSize=100, got %d", cfg.Index.MaxBatchSize)
	}
	if cfg.Embedding.Provider != "hash" {
		t.Errorf("expected Provider='hash', got %q", cfg.Embedding.Provider)
	}
	if cfg.Cache.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Cache.ReadinessTimeout)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Index:     IndexConfig{MaxBatchSize: 50},
		Embedding: EmbeddingConfig{Provider: "openai"},
		Cache:     CacheConfig{ReadinessTimeout: 15},
	}
	cfg.ApplyDefaults()

	if cfg.Index.MaxBatchSize != 50 {
		t.Errorf("expected MaxBatchSize=50, got %d", cfg.Index.MaxBatchSize)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("expected Provider='openai', got %q", cfg.Embedding.Provider)
	}
	if cfg.Cache.ReadinessTimeout != 15 {
		t.Errorf("expected ReadinessTimeout=15, got %d", cfg.Cache.ReadinessTimeout)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MATCH_TEST_KEY", "secret-value")

	got := string(expandEnvVars([]byte("api_key: ${MATCH_TEST_KEY}")))
	if got != "api_key: secret-value" {
		t.Errorf("expected substituted value, got %q", got)
	}

	got = string(expandEnvVars([]byte("model: ${MATCH_UNSET_VAR:-fallback-model}")))
	if got != "model: fallback-model" {
		t.Errorf("expected default value, got %q", got)
	}

	got = string(expandEnvVars([]byte("addr: ${MATCH_UNSET_VAR}")))
	if got != "addr: " {
		t.Errorf("expected empty substitution, got %q", got)
	}
}
