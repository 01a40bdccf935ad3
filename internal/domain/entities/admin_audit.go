package entities

import (
	"time"

	"github.com/google/uuid"
)

// AdminAuditRecord logs an admin-surface action for later review.
type AdminAuditRecord struct {
	ID           uuid.UUID `json:"id"`
	AdminUserID  string    `json:"adminUserId"`
	Action       string    `json:"action"`
	TargetUserID string    `json:"targetUserId,omitempty"`
	Details      string    `json:"details,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
