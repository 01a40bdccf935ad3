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
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/usecases"
)

type contextService interface {
	Get(ctx context.Context, userID, key string) (*entities.ContextEntry, error)
	Set(ctx context.Context, userID, key, content string) (*entities.WriteContextResult, error)
	Delete(ctx context.Context, userID, key string) (bool, error)
	List(ctx context.Context, userID string, limit int, search string) ([]*entities.ContextEntryMeta, error)
	ListAll(ctx context.Context, userID string, limit int) ([]*entities.ContextEntry, error)
}

// ContextHandler serves the per-user context entry routes.
type ContextHandler struct {
	contexts contextService
}

func NewContextHandler(contexts contextService) *ContextHandler {
	return &ContextHandler{contexts: contexts}
}

// GetEntry fetches one entry
// GET /api/v1/context/:key
func (h *ContextHandler) GetEntry(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	entry, err := h.contexts.Get(c.Request.Context(), principal.UserID, c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, entry)
}

// PutEntry creates or replaces an entry
// PUT /api/v1/context/:key
func (h *ContextHandler) PutEntry(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var input struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("request body must be JSON with a content field"))
		return
	}

	result, err := h.contexts.Set(c.Request.Context(), principal.UserID, c.Param("key"), input.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if result.Action == entities.ContextActionCreate {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{
		"key":       result.Entry.Key,
		"action":    result.Action.PastTense(),
		"updatedAt": result.Entry.UpdatedAt,
	})
}

// DeleteEntry removes an entry; deleting an absent key reports deleted=false
// DELETE /api/v1/context/:key
func (h *ContextHandler) DeleteEntry(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	deleted, err := h.contexts.Delete(c.Request.Context(), principal.UserID, c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": deleted})
}

// ListEntries lists entry metadata, newest first
// GET /api/v1/context?limit=&search=
func (h *ContextHandler) ListEntries(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	limit, err := limitQuery(c, usecases.ListDefaultLimit)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries, err := h.contexts.List(c.Request.Context(), principal.UserID, limit, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// ListAllEntries lists full entries including content
// GET /api/v1/context/all?limit=
func (h *ContextHandler) ListAllEntries(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	limit, err := limitQuery(c, usecases.ListAllDefaultLimit)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries, err := h.contexts.ListAll(c.Request.Context(), principal.UserID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

func limitQuery(c *gin.Context, def int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domainerrors.BadRequest("limit must be an integer")
	}
	return limit, nil
}
