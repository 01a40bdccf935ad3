package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/repositories"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/logger"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/oauth"
)

// AuthUsecase collapses the two credential schemes (OAuth bearer token,
// API key secret) into one resolved principal shape, auto-provisioning users
// on first OAuth login.
type AuthUsecase struct {
	userRepo      repositories.UserRepository
	apiKeyUsecase *ApiKeyUsecase
	verifier      oauth.Verifier
	adminEmail    string
}

func NewAuthUsecase(
	userRepo repositories.UserRepository,
	apiKeyUsecase *ApiKeyUsecase,
	verifier oauth.Verifier,
	adminEmail string,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:      userRepo,
		apiKeyUsecase: apiKeyUsecase,
		verifier:      verifier,
		adminEmail:    strings.ToLower(strings.TrimSpace(adminEmail)),
	}
}

// Resolve authenticates a credential and returns the principal. The three
// failure shapes stay distinct: no credential and rejected credential map to
// UNAUTHORIZED, while a lookup failure during provisioning surfaces as a
// 500-class error.
func (u *AuthUsecase) Resolve(ctx context.Context, cred entities.Credential) (*entities.Principal, error) {
	switch cred.Kind {
	case entities.CredentialOAuth:
		return u.resolveOAuth(ctx, cred.OAuthToken)
	case entities.CredentialApiKey:
		return u.apiKeyUsecase.Authenticate(ctx, cred.ApiKeySecret)
	default:
		return nil, domainerrors.Unauthorized("authentication required")
	}
}

// GetUser loads the full user record behind a resolved principal.
func (u *AuthUsecase) GetUser(ctx context.Context, userID string) (*entities.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, domainerrors.DatabaseError(err)
	}
	return user, nil
}

func (u *AuthUsecase) resolveOAuth(ctx context.Context, rawToken string) (*entities.Principal, error) {
	if rawToken == "" {
		return nil, domainerrors.Unauthorized("authentication required")
	}

	identity, err := u.verifier.Verify(ctx, rawToken)
	if err != nil {
		if errors.Is(err, oauth.ErrExpiredToken) {
			return nil, domainerrors.Unauthorized("token has expired")
		}
		return nil, domainerrors.Unauthorized("invalid token")
	}

	user, err := u.userRepo.GetByExternalPrincipalID(ctx, identity.Subject)
	if err == nil {
		return &entities.Principal{UserID: user.ID, IsAdmin: user.IsAdmin}, nil
	}
	if err != domainerrors.ErrNotFound {
		return nil, domainerrors.DatabaseError(err)
	}

	return u.provision(ctx, identity)
}

// provision creates the user row on first login. The unique constraint on
// external_principal_id arbitrates concurrent first-logins: the loser
// reselects the row the winner created.
func (u *AuthUsecase) provision(ctx context.Context, identity *oauth.Identity) (*entities.Principal, error) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return nil, domainerrors.Unauthorized("oauth profile has no email")
	}

	now := time.Now()
	user := &entities.User{
		ID:                  deriveUserID(email, identity.Subject),
		Email:               email,
		IsAdmin:             email == u.adminEmail,
		ExternalPrincipalID: null.StringFrom(identity.Subject),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err := u.userRepo.Create(ctx, user)
	if err == nil {
		logger.Info(ctx, "auto-provisioned user",
			zap.String("user_id", user.ID), zap.Bool("is_admin", user.IsAdmin))
		return &entities.Principal{UserID: user.ID, IsAdmin: user.IsAdmin}, nil
	}
	if err != domainerrors.ErrAlreadyExists {
		return nil, domainerrors.DatabaseError(err)
	}

	// Lost the race (or the derived id/email collided with the winner's row).
	existing, selErr := u.userRepo.GetByExternalPrincipalID(ctx, identity.Subject)
	if selErr != nil {
		return nil, domainerrors.InternalServerError("failed to provision user")
	}
	return &entities.Principal{UserID: existing.ID, IsAdmin: existing.IsAdmin}, nil
}

// deriveUserID builds the internal user id for an auto-provisioned account
// from the email local part, suffixed with a slice of the OAuth subject to
// keep ids distinct when local parts collide.
func deriveUserID(email, subject string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}

	var b strings.Builder
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	slug := b.String()
	if slug == "" {
		slug = "user"
	}

	suffix := subject
	if idx := strings.IndexByte(suffix, '|'); idx >= 0 && idx+1 < len(suffix) {
		suffix = suffix[idx+1:]
	}
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	if suffix == "" {
		return slug
	}
	return slug + "-" + strings.ToLower(suffix)
}
