package entities

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// User represents a tenant of the context store. The ID is a stable,
// operator-visible identifier (a slug), not a generated surrogate key.
type User struct {
	ID                  string      `json:"id"`
	Email               string      `json:"email"`
	IsAdmin             bool        `json:"isAdmin"`
	ExternalPrincipalID null.String `json:"externalPrincipalId,omitempty"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`
}

// CreateUserInput represents input for the admin create-user operation
type CreateUserInput struct {
	UserID     string `json:"user_id" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	ApiKeyName string `json:"api_key_name"`
}

// CreateUserResponse carries the created user plus an optional bootstrap
// API key, shown exactly once.
type CreateUserResponse struct {
	User   *User  `json:"user"`
	ApiKey string `json:"apiKey,omitempty"`
}
