// Package credentials resolves per-account exchange keys. Keys are
// stored as AES-256-GCM blobs encrypted under a key derived from the
// master passphrase; the decrypted result lives only for the cycle that
// requested it.
package credentials

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"nexus-trading-bot/internal/interfaces"
	"nexus-trading-bot/internal/logger"
	"nexus-trading-bot/internal/store"
	"nexus-trading-bot/internal/types"
)

const (
	saltLen    = 16
	keyLen     = 32
	iterations = 100_000
)

// Store is an in-memory credential resolver backed by the account
// entries of the loaded configuration.
type Store struct {
	passphrase string
	accounts   map[string]store.AccountConfig
}

var _ interfaces.CredentialResolver = (*Store)(nil)

func NewStore(passphrase string, accounts []store.AccountConfig) *Store {
	m := make(map[string]store.AccountConfig, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a
	}
	return &Store{passphrase: passphrase, accounts: m}
}

// Resolve returns the decrypted keys for an account, or
// types.ErrCredentialsMissing when the account has none configured or
// the blobs cannot be decrypted.
func (s *Store) Resolve(ctx context.Context, accountID string) (types.Credentials, error) {
	a, ok := s.accounts[accountID]
	if !ok || a.EncryptedAPIKey == "" || a.EncryptedAPISecret == "" {
		return types.Credentials{}, fmt.Errorf("%w: account %s", types.ErrCredentialsMissing, accountID)
	}

	key, err := Decrypt(s.passphrase, a.EncryptedAPIKey)
	if err != nil {
		logger.Warn(ctx, "Failed to decrypt stored API key", "account", accountID, "error", err)
		return types.Credentials{}, fmt.Errorf("%w: account %s: undecryptable", types.ErrCredentialsMissing, accountID)
	}
	secret, err := Decrypt(s.passphrase, a.EncryptedAPISecret)
	if err != nil {
		logger.Warn(ctx, "Failed to decrypt stored API secret", "account", accountID, "error", err)
		return types.Credentials{}, fmt.Errorf("%w: account %s: undecryptable", types.ErrCredentialsMissing, accountID)
	}

	return types.Credentials{APIKey: key, APISecret: secret}, nil
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, iterations, keyLen, sha256.New)
}

// Encrypt seals plaintext under the passphrase and returns a base64
// blob of salt || nonce || ciphertext. Used by provisioning tooling and
// tests; the bot itself only decrypts.
func Encrypt(passphrase, plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	blob := append(append(salt, nonce...), sealed...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt opens a blob produced by Encrypt.
func Decrypt(passphrase, blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("decoding credential blob: %w", err)
	}
	if len(raw) < saltLen {
		return "", fmt.Errorf("credential blob too short")
	}
	salt, rest := raw[:saltLen], raw[saltLen:]

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(rest) < gcm.NonceSize() {
		return "", fmt.Errorf("credential blob too short")
	}
	nonce, ct := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	pt, err := gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("opening credential blob: %w", err)
	}
	return string(pt), nil
}
