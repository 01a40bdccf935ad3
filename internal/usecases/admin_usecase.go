package usecases

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/repositories"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/logger"
)

const (
	auditActionListUsers    = "list_users"
	auditActionCreateUser   = "create_user"
	auditActionDeleteUser   = "delete_user"
	auditActionCreateApiKey = "create_api_key"
	auditActionRevokeApiKey = "revoke_api_key"
)

var userIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,63}$`)

// AdminUsecase implements the admin surface: user provisioning, key
// management on behalf of users, and destructive user deletion. Every
// mutation writes an admin_audit_log row in the same transaction; reads
// audit fire-and-forget.
type AdminUsecase struct {
	userRepo      repositories.UserRepository
	apiKeyUsecase *ApiKeyUsecase
	auditRepo     repositories.AdminAuditRepository
	uow           repositories.UnitOfWork
}

func NewAdminUsecase(
	userRepo repositories.UserRepository,
	apiKeyUsecase *ApiKeyUsecase,
	auditRepo repositories.AdminAuditRepository,
	uow repositories.UnitOfWork,
) *AdminUsecase {
	return &AdminUsecase{
		userRepo:      userRepo,
		apiKeyUsecase: apiKeyUsecase,
		auditRepo:     auditRepo,
		uow:           uow,
	}
}

// ListUsers returns every user. The audit row is detached so a logging
// failure never breaks the read.
func (u *AdminUsecase) ListUsers(ctx context.Context, admin *entities.Principal) ([]*entities.User, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	users, err := u.userRepo.List(ctx)
	if err != nil {
		return nil, domainerrors.DatabaseError(err)
	}

	adminID := admin.UserID
	runAsync(func() {
		u.appendAudit(context.Background(), adminID, auditActionListUsers, "", "")
	})

	return users, nil
}

// CreateUser provisions a user with an explicit, operator-chosen id. When
// apiKeyName is set, a bootstrap key is minted in the same call and its
// plaintext returned once.
func (u *AdminUsecase) CreateUser(ctx context.Context, admin *entities.Principal, input *entities.CreateUserInput) (*entities.CreateUserResponse, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	userID := strings.TrimSpace(input.UserID)
	if !userIDPattern.MatchString(userID) {
		return nil, domainerrors.BadRequest("user id must be 1-64 lowercase letters, digits, '_', '.' or '-'")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, domainerrors.BadRequest("email is required")
	}

	now := time.Now()
	user := &entities.User{
		ID:        userID,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var resp *entities.CreateUserResponse
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Create(txCtx, user); err != nil {
			if err == domainerrors.ErrAlreadyExists {
				return domainerrors.Conflict("a user with this id or email already exists")
			}
			return domainerrors.DatabaseError(err)
		}

		resp = &entities.CreateUserResponse{User: user}
		if name := strings.TrimSpace(input.ApiKeyName); name != "" {
			key, err := u.apiKeyUsecase.CreateApiKey(txCtx, userID, name)
			if err != nil {
				return err
			}
			resp.ApiKey = key.ApiKey
		}

		return u.appendAudit(txCtx, admin.UserID, auditActionCreateUser, userID,
			fmt.Sprintf("email=%s", email))
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "admin created user",
		zap.String("admin_user_id", admin.UserID), zap.String("user_id", userID))
	return resp, nil
}

// CreateApiKey mints a key for an arbitrary user on the admin's authority.
func (u *AdminUsecase) CreateApiKey(ctx context.Context, admin *entities.Principal, userID, name string) (*entities.CreateApiKeyResponse, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	var resp *entities.CreateApiKeyResponse
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		key, err := u.apiKeyUsecase.CreateApiKey(txCtx, userID, name)
		if err != nil {
			return err
		}
		resp = key
		return u.appendAudit(txCtx, admin.UserID, auditActionCreateApiKey, userID,
			fmt.Sprintf("name=%s", key.Name))
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RevokeApiKey revokes a named key for any user. Idempotent like the
// self-service path; only actual revocations are audited.
func (u *AdminUsecase) RevokeApiKey(ctx context.Context, admin *entities.Principal, userID, name string) (bool, error) {
	if err := requireAdmin(admin); err != nil {
		return false, err
	}

	revoked := false
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		deleted, err := u.apiKeyUsecase.RevokeApiKey(txCtx, userID, name)
		if err != nil {
			return err
		}
		revoked = deleted
		if !deleted {
			return nil
		}
		return u.appendAudit(txCtx, admin.UserID, auditActionRevokeApiKey, userID,
			fmt.Sprintf("name=%s", name))
	})
	if err != nil {
		return false, err
	}
	return revoked, nil
}

// DeleteUser removes a user and everything they own: entries, history,
// API keys. The confirm flag must be explicitly true, and admin accounts
// (the caller's own included) cannot be deleted.
func (u *AdminUsecase) DeleteUser(ctx context.Context, admin *entities.Principal, userID string, confirm bool) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	if !confirm {
		return domainerrors.BadRequest("deletion requires confirm=true")
	}
	if userID == admin.UserID {
		return domainerrors.Forbidden("cannot delete your own account")
	}

	target, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return domainerrors.NotFound("user not found")
		}
		return domainerrors.DatabaseError(err)
	}
	if target.IsAdmin {
		return domainerrors.Forbidden("cannot delete an admin account")
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Delete(txCtx, userID); err != nil {
			if err == domainerrors.ErrNotFound {
				return domainerrors.NotFound("user not found")
			}
			return domainerrors.DatabaseError(err)
		}
		return u.appendAudit(txCtx, admin.UserID, auditActionDeleteUser, userID, "")
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "admin deleted user",
		zap.String("admin_user_id", admin.UserID), zap.String("user_id", userID))
	return nil
}

func (u *AdminUsecase) appendAudit(ctx context.Context, adminID, action, targetID, details string) error {
	err := u.auditRepo.Append(ctx, &entities.AdminAuditRecord{
		AdminUserID:  adminID,
		Action:       action,
		TargetUserID: targetID,
		Details:      details,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		logger.Warn(ctx, "failed to append admin audit record",
			zap.String("action", action), zap.Error(err))
		return domainerrors.DatabaseError(err)
	}
	return nil
}

func requireAdmin(p *entities.Principal) error {
	if p == nil {
		return domainerrors.Unauthorized("authentication required")
	}
	if !p.IsAdmin {
		return domainerrors.Forbidden("admin privileges required")
	}
	return nil
}
