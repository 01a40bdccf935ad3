package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/infrastructure/models"
)

// ApiKeyRepository implements API key data operations
type ApiKeyRepository struct {
	db *gorm.DB
}

// NewApiKeyRepository creates a new API key repository
func NewApiKeyRepository(db *gorm.DB) *ApiKeyRepository {
	return &ApiKeyRepository{db: db}
}

// Create creates a new API key row
func (r *ApiKeyRepository) Create(ctx context.Context, apiKey *entities.ApiKey) error {
	m := &models.ApiKey{
		KeyHash:   apiKey.KeyHash,
		UserID:    apiKey.UserID,
		Name:      apiKey.Name,
		CreatedAt: apiKey.CreatedAt,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByKeyHash resolves a presented secret's digest to its key row
func (r *ApiKeyRepository) FindByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error) {
	var m models.ApiKey
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("key_hash = ?", keyHash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// FindByUserID lists a user's keys, newest first
func (r *ApiKeyRepository) FindByUserID(ctx context.Context, userID string) ([]*entities.ApiKey, error) {
	var keyModels []models.ApiKey
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&keyModels).Error; err != nil {
		return nil, err
	}

	keys := make([]*entities.ApiKey, 0, len(keyModels))
	for i := range keyModels {
		keys = append(keys, r.toEntity(&keyModels[i]))
	}
	return keys, nil
}

// CountByUserID counts a user's live keys
func (r *ApiKeyRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.ApiKey{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// TouchLastUsed records a successful authentication
func (r *ApiKeyRepository) TouchLastUsed(ctx context.Context, keyHash string) error {
	return GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.ApiKey{}).
		Where("key_hash = ?", keyHash).
		Update("last_used_at", time.Now()).Error
}

// DeleteByName revokes a key; idempotent, false when nothing matched
func (r *ApiKeyRepository) DeleteByName(ctx context.Context, userID, name string) (bool, error) {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		Delete(&models.ApiKey{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ApiKeyRepository) toEntity(m *models.ApiKey) *entities.ApiKey {
	return &entities.ApiKey{
		KeyHash:    m.KeyHash,
		UserID:     m.UserID,
		Name:       m.Name,
		CreatedAt:  m.CreatedAt,
		LastUsedAt: null.TimeFromPtr(m.LastUsedAt),
	}
}
