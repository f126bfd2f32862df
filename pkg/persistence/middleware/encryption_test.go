package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/courier/pkg/adapters/memory"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/persistence/middleware"
	"github.com/aretw0/courier/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func wrap(t *testing.T, store ports.ClaimStore, cfg middleware.EncryptionConfig) ports.ClaimStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	if err != nil {
		t.Fatalf("NewEncryptionMiddleware failed: %v", err)
	}
	return middleware.Chain(store, mw)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewClaimStore()
	secure := wrap(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	ctx := context.Background()
	claim := domain.NewClaim("c-1", "jane@example.com", "CD555666777", time.Now().UTC())
	if err := secure.Create(ctx, claim); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stored, err := underlying.Get(ctx, "c-1")
	if err != nil {
		t.Fatalf("underlying Get failed: %v", err)
	}
	if strings.Contains(stored.Email, "jane") {
		t.Fatalf("expected email to be hidden, found %q", stored.Email)
	}
	if stored.TrackingNumber != "CD555666777" {
		t.Errorf("tracking number should stay readable, got %q", stored.TrackingNumber)
	}

	loaded, err := secure.Get(ctx, "c-1")
	if err != nil {
		t.Fatalf("Get via middleware failed: %v", err)
	}
	if loaded != claim {
		t.Errorf("expected %+v, got %+v", claim, loaded)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewClaimStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	old := wrap(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	if err := old.Create(ctx, domain.NewClaim("c-1", "jane@example.com", "CD555666777", time.Now())); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rotated := wrap(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	got, err := rotated.Get(ctx, "c-1")
	if err != nil {
		t.Fatalf("Get with fallback key failed: %v", err)
	}
	if got.Email != "jane@example.com" {
		t.Errorf("expected decrypted email, got %q", got.Email)
	}

	strict := wrap(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey})
	if _, err := strict.Get(ctx, "c-1"); err == nil {
		t.Error("expected decryption to fail without the old key")
	}
}

func TestEncryptionMiddleware_RejectsPlainRecords(t *testing.T) {
	underlying := memory.NewClaimStore()
	ctx := context.Background()
	if err := underlying.Create(ctx, domain.NewClaim("c-1", "jane@example.com", "CD555666777", time.Now())); err != nil {
		t.Fatal(err)
	}

	secure := wrap(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if _, err := secure.Get(ctx, "c-1"); err == nil {
		t.Error("expected plain record to be rejected")
	}
	if _, err := secure.Get(ctx, "missing"); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNewEncryptionMiddleware_KeyValidation(t *testing.T) {
	if _, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")}); err == nil {
		t.Error("expected short key to be rejected")
	}

	key := generateKey(t)
	decoded, err := middleware.DecodeKey(base64.StdEncoding.EncodeToString(key))
	if err != nil {
		t.Fatalf("DecodeKey failed: %v", err)
	}
	if string(decoded) != string(key) {
		t.Error("decoded key differs")
	}
	if _, err := middleware.DecodeKey("c2hvcnQ="); err == nil {
		t.Error("expected 5-byte key to be rejected")
	}
}
