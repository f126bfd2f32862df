package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/ports"
)

// envelopePrefix marks an encrypted email value.
const envelopePrefix = "enc:v1:"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.ClaimStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts the claimant's email at rest
// using AES-GCM. The rest of the claim stays readable so stores can index it.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.ClaimStore) ports.ClaimStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

// DecodeKey parses a base64 encoded AES-256 key.
func DecodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid encryption key: got %d bytes, want 32", len(key))
	}
	return key, nil
}

func (m *encryptionMiddleware) Create(ctx context.Context, claim domain.Claim) error {
	ciphertext, err := encrypt([]byte(claim.Email), m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt claim: %w", err)
	}
	claim.Email = envelopePrefix + base64.StdEncoding.EncodeToString(ciphertext)
	return m.next.Create(ctx, claim)
}

func (m *encryptionMiddleware) Get(ctx context.Context, claimID string) (domain.Claim, error) {
	claim, err := m.next.Get(ctx, claimID)
	if err != nil {
		return claim, err
	}

	encoded, ok := strings.CutPrefix(claim.Email, envelopePrefix)
	if !ok {
		return domain.Claim{}, errors.New("claim is missing encrypted email envelope")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return domain.Claim{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return domain.Claim{}, fmt.Errorf("failed to decrypt claim: %w", err)
	}
	claim.Email = string(plainText)
	return claim, nil
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
