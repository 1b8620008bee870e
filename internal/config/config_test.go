package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadMinimal(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.App.Port != 8080 {
		t.Fatalf("unexpected port: %d", cfg.App.Port)
	}
	// Forwarding fields are optional; absence must not fail boot.
	if cfg.Routing.OwnerNumber != "" || cfg.Routing.BaseURL != "" {
		t.Fatalf("expected empty routing config")
	}
	if cfg.Routing.DialTimeout != 20*time.Second {
		t.Fatalf("expected default dial timeout, got %s", cfg.Routing.DialTimeout)
	}
	if cfg.Routing.CallerSMSBody == "" || cfg.Routing.OwnerSMSBody == "" {
		t.Fatalf("expected default sms bodies")
	}
	if !strings.Contains(cfg.Routing.OwnerSMSBody, "{caller}") {
		t.Fatalf("owner body must carry the caller placeholder: %q", cfg.Routing.OwnerSMSBody)
	}
}

func TestLoadFull(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "10000")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "secret")
	t.Setenv("TWILIO_FROM_NUMBER", "+15550001111")
	t.Setenv("OWNER_NUMBER", "+15552223333")
	t.Setenv("PUBLIC_BASE_URL", "https://calls.example.com/")
	t.Setenv("DIAL_TIMEOUT_SECONDS", "25")
	t.Setenv("OWNER_SMS_BODY", "call from {caller}")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production")
	}
	if cfg.Routing.DialTimeout != 25*time.Second {
		t.Fatalf("unexpected dial timeout: %s", cfg.Routing.DialTimeout)
	}
	if cfg.Routing.OwnerSMSBody != "call from {caller}" {
		t.Fatalf("unexpected owner body: %q", cfg.Routing.OwnerSMSBody)
	}
	if cfg.HTTPAddr() != ":10000" {
		t.Fatalf("unexpected addr: %q", cfg.HTTPAddr())
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("APP_ENV", "qa")
	t.Setenv("APP_PORT", "8080")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoadRejectsMissingPort(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing APP_PORT")
	}
}

func TestValidateSignatureRequiresKey(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("TWILIO_VALIDATE_SIGNATURE", "true")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when signature validation has no key")
	}

	t.Setenv("TWILIO_AUTH_TOKEN", "secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.SignatureKey() != "secret" {
		t.Fatalf("unexpected signature key")
	}
}

func TestSignatureKeyPrefersWebhookSecret(t *testing.T) {
	cfg := Config{}
	cfg.Twilio.AuthToken = "token"
	cfg.Twilio.WebhookSecret = "override"
	if cfg.SignatureKey() != "override" {
		t.Fatalf("expected webhook secret to win")
	}
}
