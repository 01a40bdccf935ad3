package entities

import "time"

// CredentialKind discriminates the two supported authentication schemes.
type CredentialKind string

const (
	CredentialOAuth  CredentialKind = "oauth"
	CredentialApiKey CredentialKind = "api_key"
)

// Credential is the tagged union of inbound auth evidence: an OAuth-derived
// bearer token or a long-lived API key secret. Exactly one field is set.
type Credential struct {
	Kind         CredentialKind
	OAuthToken   string
	ApiKeySecret string
}

func OAuthCredential(token string) Credential {
	return Credential{Kind: CredentialOAuth, OAuthToken: token}
}

func ApiKeyCredential(secret string) Credential {
	return Credential{Kind: CredentialApiKey, ApiKeySecret: secret}
}

// Principal is the single resolved identity shape every handler and tool
// depends on, regardless of which credential scheme produced it.
type Principal struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
}

// SessionBinding maps a protocol session to its resolved principal.
// Process-local and ephemeral; losing it forces re-authentication.
type SessionBinding struct {
	SessionID string
	UserID    string
	IsAdmin   bool
	BoundAt   time.Time
}
