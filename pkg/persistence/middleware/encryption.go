package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/canopy/pkg/ports"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

var (
	// ErrNotSealed is returned when a stored screen lacks the encryption envelope.
	ErrNotSealed = errors.New("screen is missing encrypted data envelope")
	// ErrUndecryptable is returned when no configured key opens the envelope.
	ErrUndecryptable = errors.New("decryption failed with all available keys")
)

// envelope is what the wrapped store actually holds.
type envelope struct {
	Encrypted string `json:"__encrypted__"`
}

type encryptionMiddleware struct {
	ports.DocumentStore
	active cipher.AEAD
	// open holds the active key first, then the fallbacks in order.
	open []cipher.AEAD
}

// NewEncryptionMiddleware creates a middleware that encrypts payloads at rest using AES-GCM.
// It panics when ActiveKey is not 32 bytes; fallback keys of another size are skipped.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	active, err := newGCM(config.ActiveKey)
	if err != nil {
		panic(fmt.Sprintf("encryption: %v", err))
	}
	open := []cipher.AEAD{active}
	for _, key := range config.FallbackKeys {
		if aead, err := newGCM(key); err == nil {
			open = append(open, aead)
		}
	}
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &encryptionMiddleware{DocumentStore: next, active: active, open: open}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, name string, data []byte) error {
	nonce := make([]byte, m.active.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to encrypt screen %s: %w", name, err)
	}
	sealed := m.active.Seal(nonce, nonce, data, nil)

	doc, err := json.Marshal(envelope{Encrypted: base64.StdEncoding.EncodeToString(sealed)})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return m.DocumentStore.Save(ctx, name, doc)
}

func (m *encryptionMiddleware) Fetch(ctx context.Context, name string) ([]byte, error) {
	doc, err := m.DocumentStore.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(doc, &env); err != nil || env.Encrypted == "" {
		// Plain payloads are not served once encryption is on.
		return nil, fmt.Errorf("%w: %s", ErrNotSealed, name)
	}
	sealed, err := base64.StdEncoding.DecodeString(env.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	for _, aead := range m.open {
		n := aead.NonceSize()
		if len(sealed) < n {
			break
		}
		if plain, err := aead.Open(nil, sealed[:n], sealed[n:], nil); err == nil {
			return plain, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUndecryptable, name)
}

// ParseKey decodes a base64 AES-256 key, as found in configuration.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
