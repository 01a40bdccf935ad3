package entities

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// ApiKey represents an API key for a user. Only the SHA-256 hash of the
// secret is ever stored; the plaintext is returned once at creation time.
type ApiKey struct {
	KeyHash    string    `json:"-"`
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	LastUsedAt null.Time `json:"lastUsedAt,omitempty"`
}

type CreateApiKeyInput struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type CreateApiKeyResponse struct {
	Name      string    `json:"name"`
	ApiKey    string    `json:"apiKey"` // shown once
	CreatedAt time.Time `json:"createdAt"`
}
