package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/interfaces/http/middleware"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/interfaces/http/response"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/crypto"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/jwt"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/logger"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/redis"
)

type authService interface {
	Resolve(ctx context.Context, cred entities.Credential) (*entities.Principal, error)
	GetUser(ctx context.Context, userID string) (*entities.User, error)
}

// AuthHandler exchanges OAuth tokens for web sessions used by the browser
// UI. The protocol transport authenticates per session instead and never
// goes through these routes.
type AuthHandler struct {
	auth         authService
	jwtService   *jwt.JWTService
	sessionStore *redis.SessionStore
	sessionTTL   time.Duration
}

func NewAuthHandler(auth authService, jwtService *jwt.JWTService, sessionStore *redis.SessionStore, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		jwtService:   jwtService,
		sessionStore: sessionStore,
		sessionTTL:   sessionTTL,
	}
}

// Login verifies an OAuth token, provisioning the user on first login, and
// opens a server-side session
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("token is required"))
		return
	}

	ctx := c.Request.Context()
	principal, err := h.auth.Resolve(ctx, entities.OAuthCredential(input.Token))
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.auth.GetUser(ctx, principal.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	accessToken, err := h.jwtService.GenerateToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		response.Error(c, domainerrors.InternalError(err))
		return
	}

	sessionID, err := crypto.GenerateRandomToken(32)
	if err != nil {
		response.Error(c, domainerrors.InternalError(err))
		return
	}
	if err := h.sessionStore.CreateSession(ctx, sessionID, &redis.SessionData{AccessToken: accessToken}, h.sessionTTL); err != nil {
		logger.Error(ctx, "failed to create web session", zap.Error(err))
		response.Error(c, domainerrors.InternalServerError("failed to create session"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"sessionId": sessionID,
		"expiresIn": int(h.sessionTTL.Seconds()),
		"user":      user,
	})
}

// Logout drops the web session named by the session header
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := c.GetHeader(middleware.SessionIDHeader)
	if sessionID == "" {
		response.Error(c, domainerrors.BadRequest("session header is required"))
		return
	}

	if err := h.sessionStore.DeleteSession(c.Request.Context(), sessionID); err != nil {
		logger.Warn(c.Request.Context(), "failed to delete web session", zap.Error(err))
	}

	response.Success(c, http.StatusOK, gin.H{"loggedOut": true})
}

// GetMe returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), principal.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}
