package main

import (
	"strings"
	"testing"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/crypto"
)

func TestValidateCount(t *testing.T) {
	if err := validateCount(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validateCount(0); err == nil {
		t.Fatal("expected error for zero count")
	}
	if err := validateCount(101); err == nil {
		t.Fatal("expected error for excessive count")
	}
}

func TestBuildCredential(t *testing.T) {
	secret, digest, err := buildCredential()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(secret, crypto.ApiKeyPrefix) {
		t.Fatalf("unexpected secret format: %s", secret)
	}
	if digest != crypto.HashSecret(secret) {
		t.Fatal("digest does not match secret")
	}

	secret2, _, err := buildCredential()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret == secret2 {
		t.Fatal("expected unique secrets")
	}
}
