package mcp

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
)

const (
	toolAdminListUsers    = "admin_list_users"
	toolAdminCreateUser   = "admin_create_user"
	toolAdminCreateApiKey = "admin_create_api_key"
	toolAdminRevokeApiKey = "admin_revoke_api_key"
	toolAdminDeleteUser   = "admin_delete_user"
)

func (s *Server) registerAdminTools(srv *mcpsdk.Server) {
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        toolAdminListUsers,
		Description: "List all users. Admin only.",
	}, withToolErrors(s.handleAdminListUsers))
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        toolAdminCreateUser,
		Description: "Create a user, optionally minting a bootstrap API key. Admin only.",
	}, withToolErrors(s.handleAdminCreateUser))
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        toolAdminCreateApiKey,
		Description: "Create a named API key for a user. The secret is returned once. Admin only.",
	}, withToolErrors(s.handleAdminCreateApiKey))
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        toolAdminRevokeApiKey,
		Description: "Revoke a user's named API key. Admin only.",
	}, withToolErrors(s.handleAdminRevokeApiKey))
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        toolAdminDeleteUser,
		Description: "Delete a user and all their data. Requires confirm=true. Admin only.",
	}, withToolErrors(s.handleAdminDeleteUser))
}

type adminListUsersInput struct{}

type adminUserData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
	CreatedAt string `json:"createdAt"`
}

type adminListUsersData struct {
	Users []adminUserData `json:"users"`
	Count int             `json:"count"`
}

func (s *Server) handleAdminListUsers(ctx context.Context, req *mcpsdk.CallToolRequest, _ adminListUsersInput) (*mcpsdk.CallToolResult, toolOutput[adminListUsersData], error) {
	var zero toolOutput[adminListUsersData]

	principal, err := s.principalFromRequest(req)
	if err != nil {
		return nil, zero, err
	}

	users, err := s.admin.ListUsers(ctx, principal)
	if err != nil {
		return nil, zero, err
	}

	out := make([]adminUserData, 0, len(users))
	for _, user := range users {
		out = append(out, adminUserData{
			ID:        user.ID,
			Email:     user.Email,
			IsAdmin:   user.IsAdmin,
			CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return nil, okOutput(adminListUsersData{Users: out, Count: len(out)}), nil
}

type adminCreateUserInput struct {
	UserID     string `json:"user_id" jsonschema:"Operator-chosen user id (lowercase slug)"`
	Email      string `json:"email" jsonschema:"User email address"`
	ApiKeyName string `json:"api_key_name,omitempty" jsonschema:"Optional name for a bootstrap API key"`
}

type adminCreateUserData struct {
	User   adminUserData `json:"user"`
	ApiKey string        `json:"apiKey,omitempty"`
}

func (s *Server) handleAdminCreateUser(ctx context.Context, req *mcpsdk.CallToolRequest, input adminCreateUserInput) (*mcpsdk.CallToolResult, toolOutput[adminCreateUserData], error) {
	var zero toolOutput[adminCreateUserData]

	principal, err := s.principalFromRequest(req)
	if err != nil {
		return nil, zero, err
	}

	resp, err := s.admin.CreateUser(ctx, principal, &entities.CreateUserInput{
		UserID:     input.UserID,
		Email:      input.Email,
		ApiKeyName: input.ApiKeyName,
	})
	if err != nil {
		return nil, zero, err
	}

	return nil, okOutput(adminCreateUserData{
		User: adminUserData{
			ID:        resp.User.ID,
			Email:     resp.User.Email,
			IsAdmin:   resp.User.IsAdmin,
			CreatedAt: resp.User.CreatedAt.UTC().Format(time.RFC3339),
		},
		ApiKey: resp.ApiKey,
	}), nil
}

type adminCreateApiKeyInput struct {
	UserID string `json:"user_id" jsonschema:"Id of the user to mint the key for"`
	Name   string `json:"name" jsonschema:"Name of the key, unique per user"`
}

type adminApiKeyData struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	ApiKey    string `json:"apiKey"`
	CreatedAt string `json:"createdAt"`
}

func (s *Server) handleAdminCreateApiKey(ctx context.Context, req *mcpsdk.CallToolRequest, input adminCreateApiKeyInput) (*mcpsdk.CallToolResult, toolOutput[adminApiKeyData], error) {
	var zero toolOutput[adminApiKeyData]

	principal, err := s.principalFromRequest(req)
	if err != nil {
		return nil, zero, err
	}

	resp, err := s.admin.CreateApiKey(ctx, principal, input.UserID, input.Name)
	if err != nil {
		return nil, zero, err
	}

	return nil, okOutput(adminApiKeyData{
		UserID:    input.UserID,
		Name:      resp.Name,
		ApiKey:    resp.ApiKey,
		CreatedAt: resp.CreatedAt.UTC().Format(time.RFC3339),
	}), nil
}

type adminRevokeApiKeyInput struct {
	UserID     string `json:"user_id" jsonschema:"Id of the user owning the key"`
	ApiKeyName string `json:"api_key_name" jsonschema:"Name of the key to revoke"`
}

type adminRevokeApiKeyData struct {
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Revoked bool   `json:"revoked"`
}

func (s *Server) handleAdminRevokeApiKey(ctx context.Context, req *mcpsdk.CallToolRequest, input adminRevokeApiKeyInput) (*mcpsdk.CallToolResult, toolOutput[adminRevokeApiKeyData], error) {
	var zero toolOutput[adminRevokeApiKeyData]

	principal, err := s.principalFromRequest(req)
	if err != nil {
		return nil, zero, err
	}

	revoked, err := s.admin.RevokeApiKey(ctx, principal, input.UserID, input.ApiKeyName)
	if err != nil {
		return nil, zero, err
	}

	return nil, okOutput(adminRevokeApiKeyData{
		UserID:  input.UserID,
		Name:    input.ApiKeyName,
		Revoked: revoked,
	}), nil
}

type adminDeleteUserInput struct {
	UserID  string `json:"user_id" jsonschema:"Id of the user to delete"`
	Confirm bool   `json:"confirm" jsonschema:"Must be true; deletion cascades to all the user's data"`
}

type adminDeleteUserData struct {
	UserID  string `json:"userId"`
	Deleted bool   `json:"deleted"`
}

func (s *Server) handleAdminDeleteUser(ctx context.Context, req *mcpsdk.CallToolRequest, input adminDeleteUserInput) (*mcpsdk.CallToolResult, toolOutput[adminDeleteUserData], error) {
	var zero toolOutput[adminDeleteUserData]

	principal, err := s.principalFromRequest(req)
	if err != nil {
		return nil, zero, err
	}

	if err := s.admin.DeleteUser(ctx, principal, input.UserID, input.Confirm); err != nil {
		return nil, zero, err
	}

	return nil, okOutput(adminDeleteUserData{UserID: input.UserID, Deleted: true}), nil
}
