package repositories

import (
	"context"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
)

type ApiKeyRepository interface {
	Create(ctx context.Context, apiKey *entities.ApiKey) error
	FindByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error)
	FindByUserID(ctx context.Context, userID string) ([]*entities.ApiKey, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)
	TouchLastUsed(ctx context.Context, keyHash string) error
	DeleteByName(ctx context.Context, userID, name string) (bool, error)
}
