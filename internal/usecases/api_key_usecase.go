package usecases

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/repositories"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/crypto"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/logger"
)

// runAsync detaches fire-and-forget side effects; overridden in tests to run
// synchronously.
var runAsync = func(fn func()) { go fn() }

// ApiKeyUsecase is the credential store boundary: it mints, authenticates
// and revokes API keys, persisting only SHA-256 digests of secrets.
type ApiKeyUsecase struct {
	apiKeyRepo repositories.ApiKeyRepository
	userRepo   repositories.UserRepository
	maxKeys    int
}

func NewApiKeyUsecase(
	apiKeyRepo repositories.ApiKeyRepository,
	userRepo repositories.UserRepository,
	maxKeysPerUser int,
) *ApiKeyUsecase {
	if maxKeysPerUser <= 0 {
		maxKeysPerUser = 10
	}
	return &ApiKeyUsecase{
		apiKeyRepo: apiKeyRepo,
		userRepo:   userRepo,
		maxKeys:    maxKeysPerUser,
	}
}

// CreateApiKey mints a new key for the user. The plaintext secret is returned
// exactly once; afterwards only its hash exists.
func (u *ApiKeyUsecase) CreateApiKey(ctx context.Context, userID, name string) (*entities.CreateApiKeyResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, domainerrors.BadRequest("api key name must be 1-100 characters")
	}

	if _, err := u.userRepo.GetByID(ctx, userID); err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, domainerrors.DatabaseError(err)
	}

	count, err := u.apiKeyRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, domainerrors.DatabaseError(err)
	}
	if count >= int64(u.maxKeys) {
		return nil, domainerrors.BadRequest("api key limit reached")
	}

	secret, err := crypto.GenerateApiKeySecret()
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	entity := &entities.ApiKey{
		KeyHash:   crypto.HashSecret(secret),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := u.apiKeyRepo.Create(ctx, entity); err != nil {
		if err == domainerrors.ErrAlreadyExists {
			return nil, domainerrors.Conflict("an api key with this name already exists")
		}
		return nil, domainerrors.DatabaseError(err)
	}

	return &entities.CreateApiKeyResponse{
		Name:      entity.Name,
		ApiKey:    secret, // shown once
		CreatedAt: entity.CreatedAt,
	}, nil
}

// Authenticate resolves a presented secret to a principal. A hit records
// last_used_at asynchronously; a failure to record it never fails the
// authentication itself.
func (u *ApiKeyUsecase) Authenticate(ctx context.Context, secret string) (*entities.Principal, error) {
	if secret == "" {
		return nil, domainerrors.Unauthorized("authentication required")
	}

	keyHash := crypto.HashSecret(secret)
	key, err := u.apiKeyRepo.FindByKeyHash(ctx, keyHash)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, domainerrors.Unauthorized("invalid api key")
		}
		return nil, domainerrors.DatabaseError(err)
	}

	user, err := u.userRepo.GetByID(ctx, key.UserID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, domainerrors.Unauthorized("invalid api key")
		}
		return nil, domainerrors.DatabaseError(err)
	}

	runAsync(func() {
		if err := u.apiKeyRepo.TouchLastUsed(context.Background(), keyHash); err != nil {
			logger.Warn(context.Background(), "failed to record api key use",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	})

	return &entities.Principal{UserID: user.ID, IsAdmin: user.IsAdmin}, nil
}

// ListApiKeys returns key metadata for a user; secrets are not retrievable.
func (u *ApiKeyUsecase) ListApiKeys(ctx context.Context, userID string) ([]*entities.ApiKey, error) {
	keys, err := u.apiKeyRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, domainerrors.DatabaseError(err)
	}
	return keys, nil
}

// RevokeApiKey deletes a key by name. Idempotent: revoking an absent key
// returns false, never an error.
func (u *ApiKeyUsecase) RevokeApiKey(ctx context.Context, userID, name string) (bool, error) {
	deleted, err := u.apiKeyRepo.DeleteByName(ctx, userID, name)
	if err != nil {
		return false, domainerrors.DatabaseError(err)
	}
	return deleted, nil
}
