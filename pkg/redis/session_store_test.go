package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	return mr
}

func TestNewSessionStore_BadKey(t *testing.T) {
	_, err := NewSessionStore("not-hex")
	assert.Error(t, err)

	_, err = NewSessionStore("abcd") // too short
	assert.Error(t, err)
}

func TestSessionStore_RoundTrip(t *testing.T) {
	setupMiniredis(t)
	store, err := NewSessionStore(testKeyHex)
	require.NoError(t, err)

	ctx := context.Background()
	data := &SessionData{AccessToken: "token-123"}
	require.NoError(t, store.CreateSession(ctx, "sess-1", data, time.Minute))

	got, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "token-123", got.AccessToken)

	require.NoError(t, store.DeleteSession(ctx, "sess-1"))
	_, err = store.GetSession(ctx, "sess-1")
	assert.Error(t, err)
}

func TestSessionStore_StoredValueIsEncrypted(t *testing.T) {
	mr := setupMiniredis(t)
	store, err := NewSessionStore(testKeyHex)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.CreateSession(ctx, "sess-2", &SessionData{AccessToken: "plain-token"}, time.Minute))

	raw, err := mr.Get("session:sess-2")
	require.NoError(t, err)
	assert.False(t, strings.Contains(raw, "plain-token"))
}

func TestSessionStore_Expiry(t *testing.T) {
	mr := setupMiniredis(t)
	store, err := NewSessionStore(testKeyHex)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.CreateSession(ctx, "sess-3", &SessionData{AccessToken: "t"}, time.Second))

	mr.FastForward(2 * time.Second)
	_, err = store.GetSession(ctx, "sess-3")
	assert.Error(t, err)
}
