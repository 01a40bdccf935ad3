package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/usecases"
)

func TestReadContextToolReturnsEntry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	contexts := &stubContexts{
		get: func(ctx context.Context, userID, key string) (*entities.ContextEntry, error) {
			assert.Equal(t, "alice", userID)
			assert.Equal(t, "project-plan", key)
			return &entities.ContextEntry{
				UserID:    userID,
				Key:       key,
				Content:   "ship it",
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		},
	}
	s := newTestServer(contexts, nil, nil)
	bindTestSession(t, s, aliceTestPrincipal)

	_, out, err := s.handleReadContext(context.Background(), nil, readContextInput{Key: "project-plan"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "project-plan", out.Data.Key)
	assert.Equal(t, "ship it", out.Data.Content)
	assert.Equal(t, "2025-03-01T12:00:00Z", out.Data.UpdatedAt)
	assert.NotEmpty(t, out.Timestamp)
}

func TestReadContextToolRejectsUnboundSession(t *testing.T) {
	s := newTestServer(nil, nil, nil)
	// no binding for the session id sessionIDFn resolves

	_, _, err := s.handleReadContext(context.Background(), nil, readContextInput{Key: "anything"})
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeUnauthorized, domainerrors.From(err).Code)
}

func TestWriteContextToolSurfacesPastTenseAction(t *testing.T) {
	now := time.Now()
	contexts := &stubContexts{
		set: func(ctx context.Context, userID, key, content string) (*entities.WriteContextResult, error) {
			return &entities.WriteContextResult{
				Entry:  &entities.ContextEntry{UserID: userID, Key: key, Content: content, CreatedAt: now, UpdatedAt: now},
				Action: entities.ContextActionCreate,
			}, nil
		},
	}
	s := newTestServer(contexts, nil, nil)
	bindTestSession(t, s, aliceTestPrincipal)

	_, out, err := s.handleWriteContext(context.Background(), nil, writeContextInput{Key: "notes", Content: "remember"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "created", out.Data.Action)
	assert.Equal(t, "notes", out.Data.Key)
}

func TestWriteContextToolPropagatesValidationErrors(t *testing.T) {
	contexts := &stubContexts{
		set: func(ctx context.Context, userID, key, content string) (*entities.WriteContextResult, error) {
			return nil, domainerrors.BadRequest("key may only contain letters, digits, '_', '.' and '-'")
		},
	}
	s := newTestServer(contexts, nil, nil)
	bindTestSession(t, s, aliceTestPrincipal)

	_, _, err := s.handleWriteContext(context.Background(), nil, writeContextInput{Key: "bad key", Content: "x"})
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeInvalidInput, domainerrors.From(err).Code)
}

func TestDeleteContextToolReportsWhetherEntryExisted(t *testing.T) {
	existed := true
	contexts := &stubContexts{
		delete: func(ctx context.Context, userID, key string) (bool, error) {
			return existed, nil
		},
	}
	s := newTestServer(contexts, nil, nil)
	bindTestSession(t, s, aliceTestPrincipal)

	_, out, err := s.handleDeleteContext(context.Background(), nil, deleteContextInput{Key: "notes"})
	require.NoError(t, err)
	assert.True(t, out.Data.Deleted)

	existed = false
	_, out, err = s.handleDeleteContext(context.Background(), nil, deleteContextInput{Key: "notes"})
	require.NoError(t, err)
	assert.False(t, out.Data.Deleted, "deleting an absent key is a no-op, not an error")
}

func TestListContextToolAppliesDefaultLimit(t *testing.T) {
	var gotLimit int
	var gotSearch string
	contexts := &stubContexts{
		list: func(ctx context.Context, userID string, limit int, search string) ([]*entities.ContextEntryMeta, error) {
			gotLimit = limit
			gotSearch = search
			return []*entities.ContextEntryMeta{
				{Key: "b", UpdatedAt: time.Now()},
				{Key: "a", UpdatedAt: time.Now().Add(-time.Hour)},
			}, nil
		},
	}
	s := newTestServer(contexts, nil, nil)
	bindTestSession(t, s, aliceTestPrincipal)

	_, out, err := s.handleListContext(context.Background(), nil, listContextInput{Search: "plan"})
	require.NoError(t, err)
	assert.Equal(t, usecases.ListDefaultLimit, gotLimit)
	assert.Equal(t, "plan", gotSearch)
	assert.Equal(t, 2, out.Data.Count)
	assert.Equal(t, "b", out.Data.Keys[0].Key)
}

func TestListContextToolForwardsExplicitLimit(t *testing.T) {
	var gotLimit int
	contexts := &stubContexts{
		list: func(ctx context.Context, userID string, limit int, search string) ([]*entities.ContextEntryMeta, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	s := newTestServer(contexts, nil, nil)
	bindTestSession(t, s, aliceTestPrincipal)

	_, out, err := s.handleListContext(context.Background(), nil, listContextInput{Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, gotLimit)
	assert.Equal(t, 0, out.Data.Count)
	assert.NotNil(t, out.Data.Keys)
}

func TestReadAllContextToolReturnsFullEntries(t *testing.T) {
	var gotLimit int
	contexts := &stubContexts{
		listAll: func(ctx context.Context, userID string, limit int) ([]*entities.ContextEntry, error) {
			gotLimit = limit
			return []*entities.ContextEntry{
				{Key: "notes", Content: "remember", UpdatedAt: time.Now()},
			}, nil
		},
	}
	s := newTestServer(contexts, nil, nil)
	bindTestSession(t, s, aliceTestPrincipal)

	_, out, err := s.handleReadAllContext(context.Background(), nil, readAllContextInput{})
	require.NoError(t, err)
	assert.Equal(t, usecases.ListAllDefaultLimit, gotLimit)
	assert.Equal(t, 1, out.Data.Count)
	assert.Equal(t, "remember", out.Data.Entries[0].Content)
}
