package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/interfaces/http/middleware"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/interfaces/http/response"
)

type adminService interface {
	ListUsers(ctx context.Context, admin *entities.Principal) ([]*entities.User, error)
	CreateUser(ctx context.Context, admin *entities.Principal, input *entities.CreateUserInput) (*entities.CreateUserResponse, error)
	CreateApiKey(ctx context.Context, admin *entities.Principal, userID, name string) (*entities.CreateApiKeyResponse, error)
	RevokeApiKey(ctx context.Context, admin *entities.Principal, userID, name string) (bool, error)
	DeleteUser(ctx context.Context, admin *entities.Principal, userID string, confirm bool) error
}

// AdminHandler serves the admin-only user and key management routes. The
// routes sit behind RequireAdmin, but the usecase re-checks the flag so the
// privilege decision never rests on routing alone.
type AdminHandler struct {
	admin adminService
}

func NewAdminHandler(admin adminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// ListUsers lists all users
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	users, err := h.admin.ListUsers(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// CreateUser provisions a user, optionally with a bootstrap key
// POST /api/v1/admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	var input entities.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("user_id and a valid email are required"))
		return
	}

	resp, err := h.admin.CreateUser(c.Request.Context(), principal, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// DeleteUser deletes a user and cascades to everything they own
// DELETE /api/v1/admin/users/:id?confirm=true
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	confirm, _ := strconv.ParseBool(c.Query("confirm"))
	if err := h.admin.DeleteUser(c.Request.Context(), principal, c.Param("id"), confirm); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// CreateUserApiKey mints a key on behalf of a user
// POST /api/v1/admin/users/:id/keys
func (h *AdminHandler) CreateUserApiKey(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	var input entities.CreateApiKeyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("api key name must be 1-100 characters"))
		return
	}

	resp, err := h.admin.CreateApiKey(c.Request.Context(), principal, c.Param("id"), input.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// RevokeUserApiKey revokes a user's key by name
// DELETE /api/v1/admin/users/:id/keys/:name
func (h *AdminHandler) RevokeUserApiKey(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	revoked, err := h.admin.RevokeApiKey(c.Request.Context(), principal, c.Param("id"), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"revoked": revoked})
}
