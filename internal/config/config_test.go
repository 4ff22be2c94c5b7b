package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t, "CONFIG_FILE", "VECTOR_BACKEND", "VECTOR_COLLECTION", "CHUNK_SIZE", "CHUNK_OVERLAP",
		"COMPLIANCE_THRESHOLD", "COMPLIANCE_TOP_K", "NATS_SUBJECT", "OLLAMA_EMBED_MODEL", "RESILIENCE_RETRY_MAX_ATTEMPTS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.VectorBackend != VectorBackendQdrant || cfg.VectorCollection != "legal_documents" {
		t.Fatalf("unexpected vector defaults %q / %q", cfg.VectorBackend, cfg.VectorCollection)
	}
	if cfg.ChunkSize != 1000 || cfg.ChunkOverlap != 200 {
		t.Fatalf("expected chunking 1000/200, got %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.ComplianceThreshold != 0.7 || cfg.ComplianceTopK != 5 {
		t.Fatalf("expected compliance defaults 0.7/5, got %v/%d", cfg.ComplianceThreshold, cfg.ComplianceTopK)
	}
	if cfg.NATSSubject != "documents.index" || cfg.OllamaEmbedModel != "all-minilm" {
		t.Fatalf("unexpected defaults %q / %q", cfg.NATSSubject, cfg.OllamaEmbedModel)
	}
	if cfg.Resilience.RetryMaxAttempts != 3 || cfg.Resilience.BreakerOpenTimeout != 30*time.Second {
		t.Fatalf("unexpected resilience defaults %+v", cfg.Resilience)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	clearEnv(t, "CONFIG_FILE")
	t.Setenv("VECTOR_BACKEND", "Memory")
	t.Setenv("COMPLIANCE_THRESHOLD", "0.55")
	t.Setenv("COMPLIANCE_TOP_K", "12")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("RESILIENCE_RETRY_INITIAL_BACKOFF", "250ms")
	t.Setenv("CHUNK_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.VectorBackend != VectorBackendMemory {
		t.Fatalf("expected memory backend, got %q", cfg.VectorBackend)
	}
	if cfg.ComplianceThreshold != 0.55 || cfg.ComplianceTopK != 12 || cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if cfg.Resilience.RetryInitialBackoff != 250*time.Millisecond {
		t.Fatalf("expected 250ms backoff, got %v", cfg.Resilience.RetryInitialBackoff)
	}
	if cfg.ChunkSize != 1000 {
		t.Fatalf("expected fallback chunk size on parse error, got %d", cfg.ChunkSize)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"VECTOR_BACKEND":       "pinecone",
		"COMPLIANCE_THRESHOLD": "1.5",
		"COMPLIANCE_TOP_K":     "21",

		"RESILIENCE_BREAKER_FAILURE_RATIO": "1.5",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t, "CONFIG_FILE", "VECTOR_BACKEND", "COMPLIANCE_THRESHOLD", "COMPLIANCE_TOP_K", "RESILIENCE_BREAKER_FAILURE_RATIO")
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoadUsesYAMLOverlayBelowEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compliance.yaml")
	overlay := "VECTOR_COLLECTION: contracts\nCOMPLIANCE_TOP_K: 8\nAPI_PORT: 9000\n"
	if err := os.WriteFile(path, []byte(overlay), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	clearEnv(t, "VECTOR_BACKEND", "VECTOR_COLLECTION", "COMPLIANCE_THRESHOLD", "COMPLIANCE_TOP_K")
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_PORT", "8081")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.VectorCollection != "contracts" || cfg.ComplianceTopK != 8 {
		t.Fatalf("expected overlay values, got %q / %d", cfg.VectorCollection, cfg.ComplianceTopK)
	}
	if cfg.APIPort != "8081" {
		t.Fatalf("expected environment to win over overlay, got %q", cfg.APIPort)
	}
}

func TestLoadFailsOnUnreadableOverlay(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing overlay file")
	}
}
