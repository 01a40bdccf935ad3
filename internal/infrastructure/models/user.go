package models

import (
	"time"
)

type User struct {
	ID                  string  `gorm:"type:varchar(255);primaryKey"`
	Email               string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	IsAdmin             bool    `gorm:"not null;default:false"`
	ExternalPrincipalID *string `gorm:"type:varchar(255);uniqueIndex"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
