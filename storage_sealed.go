package session

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/argon2"
)

const sealedNonceSize = 12

// SealedBackend wraps another backend and encrypts values at rest with
// AES-GCM. The key is derived from a device secret with argon2id, so a
// copied sqlite file or redis dump does not leak the bearer token.
type SealedBackend struct {
	inner StorageBackend
	key   []byte
}

// DeriveSealKey derives a 256-bit sealing key from a secret and salt.
func DeriveSealKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

// NewSealedBackend wraps inner with at-rest encryption. The key must be a
// valid AES key length; DeriveSealKey output always qualifies.
func NewSealedBackend(inner StorageBackend, key []byte) (*SealedBackend, error) {
	if _, err := aes.NewCipher(key); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid sealing key")
	}
	return &SealedBackend{inner: inner, key: key}, nil
}

func (b *SealedBackend) Get(ctx context.Context, key string) (string, error) {
	sealed, err := b.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}

	plain, err := b.open(sealed)
	if err != nil {
		return "", err
	}
	return plain, nil
}

func (b *SealedBackend) Set(ctx context.Context, key, value string) error {
	sealed, err := b.seal(value)
	if err != nil {
		return err
	}
	return b.inner.Set(ctx, key, sealed)
}

func (b *SealedBackend) Delete(ctx context.Context, key string) error {
	return b.inner.Delete(ctx, key)
}

func (b *SealedBackend) seal(value string) (string, error) {
	gcm, err := b.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, sealedNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate nonce")
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(value), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (b *SealedBackend) open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < sealedNonceSize {
		return "", goerrors.New("sealed value is corrupted", goerrors.CategoryInternal)
	}

	gcm, err := b.gcm()
	if err != nil {
		return "", err
	}

	plain, err := gcm.Open(nil, raw[:sealedNonceSize], raw[sealedNonceSize:], nil)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to unseal stored value")
	}

	return string(plain), nil
}

func (b *SealedBackend) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "invalid sealing key")
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize cipher")
	}
	return gcm, nil
}
