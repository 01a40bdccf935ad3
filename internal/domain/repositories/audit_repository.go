package repositories

import (
	"context"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
)

type AdminAuditRepository interface {
	Append(ctx context.Context, record *entities.AdminAuditRecord) error
}
