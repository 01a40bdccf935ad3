package repositories

import (
	"context"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
)

type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByExternalPrincipalID(ctx context.Context, externalID string) (*entities.User, error)
	List(ctx context.Context) ([]*entities.User, error)
	Delete(ctx context.Context, id string) error
}
