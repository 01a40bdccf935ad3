package models

import (
	"time"
)

type ApiKey struct {
	KeyHash    string `gorm:"type:varchar(64);primaryKey"` // SHA256 of the secret
	UserID     string `gorm:"type:varchar(255);not null;uniqueIndex:idx_api_keys_user_name"`
	Name       string `gorm:"type:varchar(100);not null;uniqueIndex:idx_api_keys_user_name"`
	CreatedAt  time.Time
	LastUsedAt *time.Time
}
