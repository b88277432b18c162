package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ENTITLEMENT_BACKEND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.DefaultCredits != 5 {
		t.Fatalf("expected 5 default credits, got %d", cfg.DefaultCredits)
	}
	if cfg.EntitlementBackend != "memory" {
		t.Fatalf("expected memory backend without DATABASE_URL, got %q", cfg.EntitlementBackend)
	}
	if cfg.LLMModel != "gpt-4o" {
		t.Fatalf("expected gpt-4o model, got %q", cfg.LLMModel)
	}
	if cfg.LLMTimeout != time.Minute {
		t.Fatalf("expected 60s timeout, got %s", cfg.LLMTimeout)
	}
	if cfg.RefundPolicy != "none" {
		t.Fatalf("expected refund policy none, got %q", cfg.RefundPolicy)
	}
}

func TestLoadNormalizesValues(t *testing.T) {
	t.Setenv("ENV", "Prod")
	t.Setenv("DATABASE_URL", "postgres://localhost/resumeflow")
	t.Setenv("ENTITLEMENT_BACKEND", "")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("CREDIT_REFUND_POLICY", " On_Failure ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.EntitlementBackend != "postgres" {
		t.Fatalf("expected postgres backend, got %q", cfg.EntitlementBackend)
	}
	if cfg.ObjectStoreType != "s3" {
		t.Fatalf("expected s3 store, got %q", cfg.ObjectStoreType)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowOrigin)
	}
	if cfg.RefundPolicy != "on_failure" {
		t.Fatalf("expected on_failure, got %q", cfg.RefundPolicy)
	}
}
