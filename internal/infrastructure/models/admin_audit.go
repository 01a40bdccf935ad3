package models

import (
	"time"

	"github.com/google/uuid"
)

type AdminAuditLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	AdminUserID  string    `gorm:"type:varchar(255);not null;index"`
	Action       string    `gorm:"type:varchar(100);not null"`
	TargetUserID string    `gorm:"type:varchar(255)"`
	Details      string    `gorm:"type:text"`
	CreatedAt    time.Time
}

func (AdminAuditLog) TableName() string {
	return "admin_audit_log"
}
