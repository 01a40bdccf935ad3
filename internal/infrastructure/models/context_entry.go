package models

import (
	"time"
)

// SharedContext is the live entry table; composite primary key (user_id, key).
type SharedContext struct {
	UserID    string `gorm:"type:varchar(255);primaryKey"`
	Key       string `gorm:"type:varchar(255);primaryKey"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

func (SharedContext) TableName() string {
	return "shared_context"
}

// ContextHistory is append-only; rows are never updated or deleted except
// by cascading user deletion.
type ContextHistory struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"type:varchar(255);not null;index"`
	Key       string `gorm:"type:varchar(255);not null"`
	Content   string `gorm:"type:text;not null"`
	Action    string `gorm:"type:varchar(10);not null"`
	ChangedAt time.Time
}

func (ContextHistory) TableName() string {
	return "context_history"
}
