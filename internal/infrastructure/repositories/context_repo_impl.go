package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/infrastructure/models"
)

// ContextRepository implements context entry and history data operations
type ContextRepository struct {
	db *gorm.DB
}

// NewContextRepository creates a new context repository
func NewContextRepository(db *gorm.DB) *ContextRepository {
	return &ContextRepository{db: db}
}

// Get fetches a single entry scoped to its owner
func (r *ContextRepository) Get(ctx context.Context, userID, key string) (*entities.ContextEntry, error) {
	var m models.SharedContext
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// Upsert inserts or replaces the entry as a single atomic statement keyed on
// the (user_id, key) primary key, so two concurrent writers cannot both
// insert.
func (r *ContextRepository) Upsert(ctx context.Context, entry *entities.ContextEntry) error {
	m := &models.SharedContext{
		UserID:    entry.UserID,
		Key:       entry.Key,
		Content:   entry.Content,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"content":    entry.Content,
				"updated_at": entry.UpdatedAt,
			}),
		}).
		Create(m).Error
}

// Delete removes the live row; false means the key did not exist
func (r *ContextRepository) Delete(ctx context.Context, userID, key string) (bool, error) {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		Delete(&models.SharedContext{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List returns metadata only, newest first, with a case-insensitive
// substring filter on the key. LIKE metacharacters in the search string are
// escaped so the filter never behaves as a wildcard.
func (r *ContextRepository) List(ctx context.Context, userID string, limit int, search string) ([]*entities.ContextEntryMeta, error) {
	query := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.SharedContext{}).
		Where("user_id = ?", userID)

	if search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query = query.Where(`LOWER(key) LIKE LOWER(?) ESCAPE '\'`, pattern)
	}

	var rows []models.SharedContext
	if err := query.Order("updated_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	metas := make([]*entities.ContextEntryMeta, 0, len(rows))
	for i := range rows {
		metas = append(metas, &entities.ContextEntryMeta{
			Key:       rows[i].Key,
			UpdatedAt: rows[i].UpdatedAt,
		})
	}
	return metas, nil
}

// ListAll returns full entries, newest first
func (r *ContextRepository) ListAll(ctx context.Context, userID string, limit int) ([]*entities.ContextEntry, error) {
	var rows []models.SharedContext
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]*entities.ContextEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, r.toEntity(&rows[i]))
	}
	return entries, nil
}

// AppendHistory writes one immutable audit row
func (r *ContextRepository) AppendHistory(ctx context.Context, record *entities.ContextHistoryRecord) error {
	m := &models.ContextHistory{
		UserID:    record.UserID,
		Key:       record.Key,
		Content:   record.Content,
		Action:    string(record.Action),
		ChangedAt: record.ChangedAt,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	record.ID = m.ID
	return nil
}

// HistoryCount counts audit rows for one user+key pair
func (r *ContextRepository) HistoryCount(ctx context.Context, userID, key string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.ContextHistory{}).
		Where("user_id = ? AND key = ?", userID, key).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ContextRepository) toEntity(m *models.SharedContext) *entities.ContextEntry {
	return &entities.ContextEntry{
		UserID:    m.UserID,
		Key:       m.Key,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
