package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/interfaces/http/middleware"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/interfaces/http/response"
)

type apiKeyService interface {
	CreateApiKey(ctx context.Context, userID, name string) (*entities.CreateApiKeyResponse, error)
	ListApiKeys(ctx context.Context, userID string) ([]*entities.ApiKey, error)
	RevokeApiKey(ctx context.Context, userID, name string) (bool, error)
}

// ApiKeyHandler serves the self-service key management routes.
type ApiKeyHandler struct {
	apiKeys apiKeyService
}

func NewApiKeyHandler(apiKeys apiKeyService) *ApiKeyHandler {
	return &ApiKeyHandler{apiKeys: apiKeys}
}

// CreateApiKey mints a key for the authenticated user
// POST /api/v1/keys
func (h *ApiKeyHandler) CreateApiKey(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var input entities.CreateApiKeyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("api key name must be 1-100 characters"))
		return
	}

	resp, err := h.apiKeys.CreateApiKey(c.Request.Context(), principal.UserID, input.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// ListApiKeys lists key metadata for the authenticated user
// GET /api/v1/keys
func (h *ApiKeyHandler) ListApiKeys(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	keys, err := h.apiKeys.ListApiKeys(c.Request.Context(), principal.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"keys": keys, "count": len(keys)})
}

// RevokeApiKey revokes a key by name; idempotent
// DELETE /api/v1/keys/:name
func (h *ApiKeyHandler) RevokeApiKey(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	revoked, err := h.apiKeys.RevokeApiKey(c.Request.Context(), principal.UserID, c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"revoked": revoked})
}
