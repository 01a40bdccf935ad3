package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/interfaces/http/response"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/usecases"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/crypto"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/jwt"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/logger"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/redis"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// ApiKeyHeader carries a raw API key secret
	ApiKeyHeader = "X-Api-Key"
	// SessionIDHeader carries a web-session id issued at login
	SessionIDHeader = "x-session-id"
	// PrincipalKey is the gin context key for the resolved principal
	PrincipalKey = "principal"
)

// DualAuthMiddleware authenticates a request through any of the accepted
// credential carriers and leaves one resolved principal in the context:
//
//   - X-Api-Key, or a Bearer token with the api key prefix, resolves through
//     the credential store;
//   - x-session-id resolves a web session to its stored OAuth token;
//   - any other Bearer token is treated as a session JWT first, then as a
//     raw OAuth token.
func DualAuthMiddleware(authUsecase *usecases.AuthUsecase, jwtService *jwt.JWTService, sessionStore *redis.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if secret := c.GetHeader(ApiKeyHeader); secret != "" {
			principal, err := authUsecase.Resolve(ctx, entities.ApiKeyCredential(secret))
			if err != nil {
				response.AbortError(c, err)
				return
			}
			setPrincipal(c, principal)
			c.Next()
			return
		}

		if sessionID := c.GetHeader(SessionIDHeader); sessionID != "" {
			session, err := sessionStore.GetSession(ctx, sessionID)
			if err != nil || session == nil {
				response.AbortError(c, domainerrors.Unauthorized("invalid or expired session"))
				return
			}
			claims, err := jwtService.ValidateToken(session.AccessToken)
			if err != nil {
				logger.Warn(ctx, "session held an unusable access token", zap.Error(err))
				response.AbortError(c, domainerrors.Unauthorized("invalid or expired session"))
				return
			}
			setPrincipal(c, &entities.Principal{UserID: claims.UserID, IsAdmin: claims.IsAdmin})
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthorizationHeader)
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.AbortError(c, domainerrors.Unauthorized("authentication required"))
			return
		}
		token := strings.TrimPrefix(authHeader, BearerPrefix)

		if strings.HasPrefix(token, crypto.ApiKeyPrefix) {
			principal, err := authUsecase.Resolve(ctx, entities.ApiKeyCredential(token))
			if err != nil {
				response.AbortError(c, err)
				return
			}
			setPrincipal(c, principal)
			c.Next()
			return
		}

		if claims, err := jwtService.ValidateToken(token); err == nil {
			setPrincipal(c, &entities.Principal{UserID: claims.UserID, IsAdmin: claims.IsAdmin})
			c.Next()
			return
		} else if err == jwt.ErrExpiredToken {
			response.AbortError(c, domainerrors.Unauthorized("token has expired"))
			return
		}

		principal, err := authUsecase.Resolve(ctx, entities.OAuthCredential(token))
		if err != nil {
			response.AbortError(c, err)
			return
		}
		setPrincipal(c, principal)
		c.Next()
	}
}

// RequireAdmin gates a route group on the resolved admin flag. It must run
// after DualAuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			response.AbortError(c, domainerrors.Unauthorized("authentication required"))
			return
		}
		if !principal.IsAdmin {
			response.AbortError(c, domainerrors.Forbidden("admin privileges required"))
			return
		}
		c.Next()
	}
}

func setPrincipal(c *gin.Context, p *entities.Principal) {
	c.Set(PrincipalKey, p)
}

// GetPrincipal gets the resolved principal from context
func GetPrincipal(c *gin.Context) (*entities.Principal, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*entities.Principal)
	return p, ok
}
