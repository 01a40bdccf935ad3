package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/infrastructure/models"
)

// AdminAuditRepository implements the admin audit log
type AdminAuditRepository struct {
	db *gorm.DB
}

// NewAdminAuditRepository creates a new admin audit repository
func NewAdminAuditRepository(db *gorm.DB) *AdminAuditRepository {
	return &AdminAuditRepository{db: db}
}

// Append writes one audit row
func (r *AdminAuditRepository) Append(ctx context.Context, record *entities.AdminAuditRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	m := &models.AdminAuditLog{
		ID:           record.ID,
		AdminUserID:  record.AdminUserID,
		Action:       record.Action,
		TargetUserID: record.TargetUserID,
		Details:      record.Details,
		CreatedAt:    record.CreatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}
