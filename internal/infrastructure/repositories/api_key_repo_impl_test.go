package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
)

func TestApiKeyRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	repo := NewApiKeyRepository(db)
	ctx := context.Background()

	key := &entities.ApiKey{
		KeyHash:   "hash-1",
		UserID:    "alice",
		Name:      "laptop",
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, key))

	found, err := repo.FindByKeyHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", found.UserID)
	assert.Equal(t, "laptop", found.Name)
	assert.False(t, found.LastUsedAt.Valid)

	_, err = repo.FindByKeyHash(ctx, "hash-unknown")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestApiKeyRepository_UniqueNamePerUser(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	repo := NewApiKeyRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.ApiKey{
		KeyHash: "hash-1", UserID: "alice", Name: "laptop", CreatedAt: time.Now(),
	}))

	err := repo.Create(ctx, &entities.ApiKey{
		KeyHash: "hash-2", UserID: "alice", Name: "laptop", CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	// Same name is fine for a different user.
	require.NoError(t, repo.Create(ctx, &entities.ApiKey{
		KeyHash: "hash-3", UserID: "bob", Name: "laptop", CreatedAt: time.Now(),
	}))
}

func TestApiKeyRepository_CountAndList(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	repo := NewApiKeyRepository(db)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &entities.ApiKey{
			KeyHash: "hash-" + name, UserID: "alice", Name: name, CreatedAt: time.Now(),
		}))
	}

	count, err := repo.CountByUserID(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	keys, err := repo.FindByUserID(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, keys, 3)

	count, err = repo.CountByUserID(ctx, "bob")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestApiKeyRepository_TouchLastUsed(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	repo := NewApiKeyRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.ApiKey{
		KeyHash: "hash-1", UserID: "alice", Name: "laptop", CreatedAt: time.Now(),
	}))

	require.NoError(t, repo.TouchLastUsed(ctx, "hash-1"))

	found, err := repo.FindByKeyHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.True(t, found.LastUsedAt.Valid)
}

func TestApiKeyRepository_DeleteByName(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	repo := NewApiKeyRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.ApiKey{
		KeyHash: "hash-1", UserID: "alice", Name: "laptop", CreatedAt: time.Now(),
	}))

	deleted, err := repo.DeleteByName(ctx, "alice", "laptop")
	require.NoError(t, err)
	assert.True(t, deleted)

	// Idempotent: second delete is a no-op, not an error.
	deleted, err = repo.DeleteByName(ctx, "alice", "laptop")
	require.NoError(t, err)
	assert.False(t, deleted)
}
