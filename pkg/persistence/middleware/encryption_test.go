package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/persistence/middleware"
	"github.com/aretw0/canopy/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

const screen = `{"id":"account","type":"text","content":"IBAN DE00 1234"}`

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore(nil)
	key := generateKey(t)
	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(underlyingStore)
	ctx := context.Background()

	if err := secureStore.Save(ctx, "account", []byte(screen)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The underlying store only sees the envelope.
	stored, err := underlyingStore.Fetch(ctx, "account")
	if err != nil {
		t.Fatalf("Underlying fetch failed: %v", err)
	}
	if strings.Contains(string(stored), "IBAN") {
		t.Fatalf("Expected content to be hidden, found: %s", stored)
	}
	if !strings.Contains(string(stored), "__encrypted__") {
		t.Fatal("Expected __encrypted__ envelope")
	}

	loaded, err := secureStore.Fetch(ctx, "account")
	if err != nil {
		t.Fatalf("Fetch via middleware failed: %v", err)
	}
	if string(loaded) != screen {
		t.Errorf("Expected original payload, got %s", loaded)
	}

	names, err := secureStore.List(ctx)
	if err != nil || len(names) != 1 || names[0] != "account" {
		t.Errorf("List passthrough failed: %v %v", names, err)
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunDocumentStoreContract(t, mw(memory.NewStore(nil)))
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore(nil)
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)
	if err := secureStoreOld.Save(ctx, "account", []byte(screen)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	if _, err := secureStoreNew.Fetch(ctx, "account"); err != nil {
		t.Fatalf("Fetch with rotated key failed: %v", err)
	}

	// Re-save with the new key; the old key alone can no longer read it.
	if err := secureStoreNew.Save(ctx, "account", []byte(screen)); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}
	if _, err := secureStoreOld.Fetch(ctx, "account"); !errors.Is(err, middleware.ErrUndecryptable) {
		t.Errorf("Expected ErrUndecryptable with the old key alone, got %v", err)
	}
}

func TestEncryptionMiddleware_RejectsPlainPayload(t *testing.T) {
	underlyingStore := memory.NewStore(map[string]string{"plain": screen})
	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)

	if _, err := secureStore.Fetch(context.Background(), "plain"); !errors.Is(err, middleware.ErrNotSealed) {
		t.Errorf("Expected plain payload to be rejected with ErrNotSealed, got %v", err)
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid key size")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	got, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	if err != nil || string(got) != string(key) {
		t.Fatalf("ParseKey round trip failed: %v", err)
	}
	if _, err := middleware.ParseKey("c2hvcnQ="); err == nil {
		t.Error("Expected short key to be rejected")
	}
}

func TestValidationMiddleware(t *testing.T) {
	store := middleware.Chain(memory.NewStore(nil), middleware.NewValidationMiddleware())
	ctx := context.Background()

	if err := store.Save(ctx, "ok", []byte(screen)); err != nil {
		t.Fatalf("valid screen rejected: %v", err)
	}
	err := store.Save(ctx, "bad", []byte(`{"id":"x","type":"hologram"}`))
	if err == nil {
		t.Fatal("invalid screen accepted")
	}
	if !strings.Contains(err.Error(), "hologram") {
		t.Errorf("error should carry the decode cause: %v", err)
	}
	if _, err := store.Fetch(ctx, "bad"); err == nil {
		t.Error("rejected screen must not be stored")
	}
}

func TestChain_KeepsChangeFeed(t *testing.T) {
	store := middleware.Chain(memory.NewStore(nil),
		middleware.NewValidationMiddleware(),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}))

	w, ok := store.(ports.Watchable)
	if !ok {
		t.Fatal("chained store lost Watch")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := w.Watch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "account", []byte(screen)); err != nil {
		t.Fatal(err)
	}
	if got := <-changes; got != "account" {
		t.Errorf("got change %q, want account", got)
	}
}
