package mcp

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/usecases"
)

const (
	toolReadContext    = "read_context"
	toolWriteContext   = "write_context"
	toolDeleteContext  = "delete_context"
	toolListContext    = "list_context"
	toolReadAllContext = "read_all_context"
)

// toolOutput is the success envelope every tool returns.
type toolOutput[T any] struct {
	Success   bool   `json:"success"`
	Data      T      `json:"data"`
	Timestamp string `json:"timestamp"`
}

func okOutput[T any](data T) toolOutput[T] {
	return toolOutput[T]{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *Server) registerTools(srv *mcpsdk.Server) {
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        toolReadContext,
		Description: "Read the content stored under a key.",
	}, withToolErrors(s.handleReadContext))
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        toolWriteContext,
		Description: "Store content under a key, creating or updating the entry.",
	}, withToolErrors(s.handleWriteContext))
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        toolDeleteContext,
		Description: "Delete the entry stored under a key.",
	}, withToolErrors(s.handleDeleteContext))
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        toolListContext,
		Description: "List your context keys with timestamps, newest first.",
	}, withToolErrors(s.handleListContext))
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        toolReadAllContext,
		Description: "Read your context entries with full content, newest first.",
	}, withToolErrors(s.handleReadAllContext))

	s.registerAdminTools(srv)
}

type readContextInput struct {
	Key string `json:"key" jsonschema:"Key of the entry to read"`
}

type contextEntryData struct {
	Key       string `json:"key"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (s *Server) handleReadContext(ctx context.Context, req *mcpsdk.CallToolRequest, input readContextInput) (*mcpsdk.CallToolResult, toolOutput[contextEntryData], error) {
	var zero toolOutput[contextEntryData]

	principal, err := s.principalFromRequest(req)
	if err != nil {
		return nil, zero, err
	}

	entry, err := s.contexts.Get(ctx, principal.UserID, input.Key)
	if err != nil {
		return nil, zero, err
	}

	return nil, okOutput(contextEntryData{
		Key:       entry.Key,
		Content:   entry.Content,
		CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: entry.UpdatedAt.UTC().Format(time.RFC3339),
	}), nil
}

type writeContextInput struct {
	Key     string `json:"key" jsonschema:"Key to store the content under"`
	Content string `json:"content" jsonschema:"Content to store (up to 100 KiB)"`
}

type writeContextData struct {
	Key       string `json:"key"`
	Action    string `json:"action"`
	UpdatedAt string `json:"updatedAt"`
}

func (s *Server) handleWriteContext(ctx context.Context, req *mcpsdk.CallToolRequest, input writeContextInput) (*mcpsdk.CallToolResult, toolOutput[writeContextData], error) {
	var zero toolOutput[writeContextData]

	principal, err := s.principalFromRequest(req)
	if err != nil {
		return nil, zero, err
	}

	result, err := s.contexts.Set(ctx, principal.UserID, input.Key, input.Content)
	if err != nil {
		return nil, zero, err
	}

	return nil, okOutput(writeContextData{
		Key:       result.Entry.Key,
		Action:    result.Action.PastTense(),
		UpdatedAt: result.Entry.UpdatedAt.UTC().Format(time.RFC3339),
	}), nil
}

type deleteContextInput struct {
	Key string `json:"key" jsonschema:"Key of the entry to delete"`
}

type deleteContextData struct {
	Key     string `json:"key"`
	Deleted bool   `json:"deleted"`
}

func (s *Server) handleDeleteContext(ctx context.Context, req *mcpsdk.CallToolRequest, input deleteContextInput) (*mcpsdk.CallToolResult, toolOutput[deleteContextData], error) {
	var zero toolOutput[deleteContextData]

	principal, err := s.principalFromRequest(req)
	if err != nil {
		return nil, zero, err
	}

	deleted, err := s.contexts.Delete(ctx, principal.UserID, input.Key)
	if err != nil {
		return nil, zero, err
	}

	return nil, okOutput(deleteContextData{Key: input.Key, Deleted: deleted}), nil
}

type listContextInput struct {
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum entries to return (default 50, max 200)"`
	Search string `json:"search,omitempty" jsonschema:"Case-insensitive substring filter on keys"`
}

type contextKeyData struct {
	Key       string `json:"key"`
	UpdatedAt string `json:"updatedAt"`
}

type listContextData struct {
	Keys  []contextKeyData `json:"keys"`
	Count int              `json:"count"`
}

func (s *Server) handleListContext(ctx context.Context, req *mcpsdk.CallToolRequest, input listContextInput) (*mcpsdk.CallToolResult, toolOutput[listContextData], error) {
	var zero toolOutput[listContextData]

	principal, err := s.principalFromRequest(req)
	if err != nil {
		return nil, zero, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = usecases.ListDefaultLimit
	}
	metas, err := s.contexts.List(ctx, principal.UserID, limit, input.Search)
	if err != nil {
		return nil, zero, err
	}

	keys := make([]contextKeyData, 0, len(metas))
	for _, meta := range metas {
		keys = append(keys, contextKeyData{
			Key:       meta.Key,
			UpdatedAt: meta.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return nil, okOutput(listContextData{Keys: keys, Count: len(keys)}), nil
}

type readAllContextInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum entries to return (default 20, max 50)"`
}

type readAllContextData struct {
	Entries []contextEntryData `json:"entries"`
	Count   int                `json:"count"`
}

func (s *Server) handleReadAllContext(ctx context.Context, req *mcpsdk.CallToolRequest, input readAllContextInput) (*mcpsdk.CallToolResult, toolOutput[readAllContextData], error) {
	var zero toolOutput[readAllContextData]

	principal, err := s.principalFromRequest(req)
	if err != nil {
		return nil, zero, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = usecases.ListAllDefaultLimit
	}
	entries, err := s.contexts.ListAll(ctx, principal.UserID, limit)
	if err != nil {
		return nil, zero, err
	}

	out := make([]contextEntryData, 0, len(entries))
	for _, entry := range entries {
		out = append(out, contextEntryData{
			Key:       entry.Key,
			Content:   entry.Content,
			CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt: entry.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return nil, okOutput(readAllContextData{Entries: out, Count: len(out)}), nil
}
