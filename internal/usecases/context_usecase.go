package usecases

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/repositories"
)

const (
	// MaxKeyLength caps key length in characters.
	MaxKeyLength = 255
	// MaxContentBytes caps content size, measured in bytes not characters.
	MaxContentBytes = 100 * 1024

	// ListDefaultLimit / ListMaxLimit bound metadata listings.
	ListDefaultLimit = 50
	ListMaxLimit     = 200
	// ListAllDefaultLimit / ListAllMaxLimit are lower because full content
	// is returned.
	ListAllDefaultLimit = 20
	ListAllMaxLimit     = 50
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ContextUsecase is the transactional CRUD+audit engine for context entries.
// Every operation takes the owning user id explicitly; there is no implicit
// current user.
type ContextUsecase struct {
	contextRepo repositories.ContextRepository
	uow         repositories.UnitOfWork
}

func NewContextUsecase(contextRepo repositories.ContextRepository, uow repositories.UnitOfWork) *ContextUsecase {
	return &ContextUsecase{
		contextRepo: contextRepo,
		uow:         uow,
	}
}

// ValidateKey reports INVALID_INPUT for malformed keys before any storage
// call happens.
func ValidateKey(key string) error {
	if key == "" {
		return domainerrors.BadRequest("key is required")
	}
	if len(key) > MaxKeyLength {
		return domainerrors.BadRequest(fmt.Sprintf("key must be at most %d characters", MaxKeyLength))
	}
	if !keyPattern.MatchString(key) {
		return domainerrors.BadRequest("key may only contain letters, digits, '_', '.' and '-'")
	}
	return nil
}

func validateContent(content string) error {
	if len(content) > MaxContentBytes {
		return domainerrors.BadRequest(fmt.Sprintf("content must be at most %d bytes", MaxContentBytes))
	}
	return nil
}

// Get fetches one entry; a missing key is NOT_FOUND.
func (u *ContextUsecase) Get(ctx context.Context, userID, key string) (*entities.ContextEntry, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	entry, err := u.contextRepo.Get(ctx, userID, key)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound(fmt.Sprintf("context entry %q not found", key))
		}
		return nil, domainerrors.DatabaseError(err)
	}
	return entry, nil
}

// Set writes an entry and its history record in one transaction: classify
// the action, upsert in a single atomic statement, append the audit row.
// Either both writes commit or neither does.
func (u *ContextUsecase) Set(ctx context.Context, userID, key, content string) (*entities.WriteContextResult, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	var result *entities.WriteContextResult
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		now := time.Now()
		action := entities.ContextActionCreate
		createdAt := now

		existing, err := u.contextRepo.Get(txCtx, userID, key)
		if err == nil {
			action = entities.ContextActionUpdate
			createdAt = existing.CreatedAt
		} else if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}

		entry := &entities.ContextEntry{
			UserID:    userID,
			Key:       key,
			Content:   content,
			CreatedAt: createdAt,
			UpdatedAt: now,
		}
		if err := u.contextRepo.Upsert(txCtx, entry); err != nil {
			return err
		}
		if err := u.contextRepo.AppendHistory(txCtx, &entities.ContextHistoryRecord{
			UserID:    userID,
			Key:       key,
			Content:   content,
			Action:    action,
			ChangedAt: now,
		}); err != nil {
			return err
		}

		result = &entities.WriteContextResult{Entry: entry, Action: action}
		return nil
	})
	if err != nil {
		return nil, domainerrors.DatabaseError(err)
	}
	return result, nil
}

// Delete removes an entry, snapshotting its content into history inside the
// same transaction. Deleting an absent key is a no-op returning false.
func (u *ContextUsecase) Delete(ctx context.Context, userID, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}

	deleted := false
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		existing, err := u.contextRepo.Get(txCtx, userID, key)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return nil
			}
			return err
		}

		if _, err := u.contextRepo.Delete(txCtx, userID, key); err != nil {
			return err
		}
		if err := u.contextRepo.AppendHistory(txCtx, &entities.ContextHistoryRecord{
			UserID:    userID,
			Key:       key,
			Content:   existing.Content,
			Action:    entities.ContextActionDelete,
			ChangedAt: time.Now(),
		}); err != nil {
			return err
		}

		deleted = true
		return nil
	})
	if err != nil {
		return false, domainerrors.DatabaseError(err)
	}
	return deleted, nil
}

// List returns entry metadata, newest first. The limit is clamped to
// [1, ListMaxLimit]; the search substring is matched case-insensitively
// and literally.
func (u *ContextUsecase) List(ctx context.Context, userID string, limit int, search string) ([]*entities.ContextEntryMeta, error) {
	limit = clampLimit(limit, ListMaxLimit)

	metas, err := u.contextRepo.List(ctx, userID, limit, search)
	if err != nil {
		return nil, domainerrors.DatabaseError(err)
	}
	return metas, nil
}

// ListAll returns full entries, newest first, with a lower cap than List
// because payloads carry content.
func (u *ContextUsecase) ListAll(ctx context.Context, userID string, limit int) ([]*entities.ContextEntry, error) {
	limit = clampLimit(limit, ListAllMaxLimit)

	entries, err := u.contextRepo.ListAll(ctx, userID, limit)
	if err != nil {
		return nil, domainerrors.DatabaseError(err)
	}
	return entries, nil
}

func clampLimit(limit, max int) int {
	if limit < 1 {
		return 1
	}
	if limit > max {
		return max
	}
	return limit
}
