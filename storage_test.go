package session_test

import (
	"context"
	"testing"

	session "github.com/eventify/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()
	backend := session.NewMemoryBackend()

	_, err := backend.Get(ctx, "missing")
	assert.ErrorIs(t, err, session.ErrKeyNotFound)

	require.NoError(t, backend.Set(ctx, "k", "v"))

	got, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, backend.Delete(ctx, "k"))
	_, err = backend.Get(ctx, "k")
	assert.ErrorIs(t, err, session.ErrKeyNotFound)

	// deleting a missing key is not an error
	assert.NoError(t, backend.Delete(ctx, "k"))
}

func TestNullBackend(t *testing.T) {
	ctx := context.Background()
	backend := session.NullBackend{}

	assert.NoError(t, backend.Set(ctx, "k", "v"))

	_, err := backend.Get(ctx, "k")
	assert.ErrorIs(t, err, session.ErrKeyNotFound)

	assert.NoError(t, backend.Delete(ctx, "k"))
}

func TestSealedBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	inner := session.NewMemoryBackend()

	key := session.DeriveSealKey([]byte("device-secret"), []byte("device-salt"))
	backend, err := session.NewSealedBackend(inner, key)
	require.NoError(t, err)

	require.NoError(t, backend.Set(ctx, "k", "sensitive-token"))

	// the inner backend never sees the plaintext
	raw, err := inner.Get(ctx, "k")
	require.NoError(t, err)
	assert.NotEqual(t, "sensitive-token", raw)
	assert.NotContains(t, raw, "sensitive")

	got, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "sensitive-token", got)

	require.NoError(t, backend.Delete(ctx, "k"))
	_, err = backend.Get(ctx, "k")
	assert.ErrorIs(t, err, session.ErrKeyNotFound)
}

func TestSealedBackendRejectsTamperedValue(t *testing.T) {
	ctx := context.Background()
	inner := session.NewMemoryBackend()

	key := session.DeriveSealKey([]byte("device-secret"), []byte("device-salt"))
	backend, err := session.NewSealedBackend(inner, key)
	require.NoError(t, err)

	require.NoError(t, backend.Set(ctx, "k", "sensitive-token"))
	require.NoError(t, inner.Set(ctx, "k", "bm90LXJlYWwtY2lwaGVydGV4dA=="))

	_, err = backend.Get(ctx, "k")
	require.Error(t, err)
}

func TestSealedBackendRejectsBadKey(t *testing.T) {
	_, err := session.NewSealedBackend(session.NewMemoryBackend(), []byte("short"))
	require.Error(t, err)
}

func TestSealedBackendKeysDiffer(t *testing.T) {
	ctx := context.Background()
	inner := session.NewMemoryBackend()

	first, err := session.NewSealedBackend(inner, session.DeriveSealKey([]byte("secret-a"), []byte("salt")))
	require.NoError(t, err)
	second, err := session.NewSealedBackend(inner, session.DeriveSealKey([]byte("secret-b"), []byte("salt")))
	require.NoError(t, err)

	require.NoError(t, first.Set(ctx, "k", "value"))

	// a backend with a different device secret cannot read the value
	_, err = second.Get(ctx, "k")
	require.Error(t, err)
}

func TestTokenStoreOverSealedBackend(t *testing.T) {
	ctx := context.Background()

	key := session.DeriveSealKey([]byte("device-secret"), []byte("device-salt"))
	backend, err := session.NewSealedBackend(session.NewMemoryBackend(), key)
	require.NoError(t, err)

	store := session.NewTokenStore(backend)

	require.NoError(t, store.Save(ctx, "header.payload.signature"))

	got, ok := store.Read(ctx)
	assert.True(t, ok)
	assert.Equal(t, "header.payload.signature", got)
}
