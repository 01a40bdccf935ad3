package repositories

import (
	"context"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
)

// ContextRepository persists context entries and their append-only history.
// Every method scopes by the owning user id; there is no unscoped access.
type ContextRepository interface {
	Get(ctx context.Context, userID, key string) (*entities.ContextEntry, error)
	// Upsert inserts or replaces the entry in a single atomic statement keyed
	// on the (user_id, key) uniqueness constraint.
	Upsert(ctx context.Context, entry *entities.ContextEntry) error
	Delete(ctx context.Context, userID, key string) (bool, error)
	List(ctx context.Context, userID string, limit int, search string) ([]*entities.ContextEntryMeta, error)
	ListAll(ctx context.Context, userID string, limit int) ([]*entities.ContextEntry, error)
	AppendHistory(ctx context.Context, record *entities.ContextHistoryRecord) error
	HistoryCount(ctx context.Context, userID, key string) (int64, error)
}
