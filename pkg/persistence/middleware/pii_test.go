package middleware_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/courier/internal/logging"
	"github.com/aretw0/courier/pkg/adapters/memory"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/persistence/middleware"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"jane@example.com": "j***@example.com",
		"a@b.co":           "a***@b.co",
		"élodie@mail.fr":   "é***@mail.fr",
		"no-at-sign":       "***",
		"@example.com":     "***",
	}
	for in, want := range cases {
		if got := middleware.MaskEmail(in); got != want {
			t.Errorf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAuditMiddleware_MasksEmail(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelDebug, "json")
	store := middleware.Chain(memory.NewClaimStore(), middleware.NewAuditMiddleware(logger))

	ctx := context.Background()
	claim := domain.NewClaim("c-1", "jane@example.com", "CD555666777", time.Now())
	if err := store.Create(ctx, claim); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, err := store.Get(ctx, "c-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// The store itself keeps the real value.
	if got.Email != "jane@example.com" {
		t.Errorf("expected stored email to be untouched, got %q", got.Email)
	}

	out := buf.String()
	if strings.Contains(out, "jane@example.com") {
		t.Fatalf("log leaked the email: %s", out)
	}
	if !strings.Contains(out, "j***@example.com") {
		t.Errorf("expected masked email in log, got: %s", out)
	}
	if err := store.Create(ctx, claim); err != domain.ErrClaimExists {
		t.Errorf("expected ErrClaimExists to pass through, got %v", err)
	}
}
