package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/crypto"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/logger"
)

const (
	serverName    = "shared-context"
	serverVersion = "1.0.0"

	sessionHeader       = "Mcp-Session-Id"
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
	apiKeyHeader        = "X-Api-Key"
)

const serverInstructions = `Shared context store. Use write_context to save durable notes under a key,
read_context to fetch them back, list_context to browse keys, and delete_context
to remove them. Entries are private to the authenticated user and survive
across sessions.`

type contextService interface {
	Get(ctx context.Context, userID, key string) (*entities.ContextEntry, error)
	Set(ctx context.Context, userID, key, content string) (*entities.WriteContextResult, error)
	Delete(ctx context.Context, userID, key string) (bool, error)
	List(ctx context.Context, userID string, limit int, search string) ([]*entities.ContextEntryMeta, error)
	ListAll(ctx context.Context, userID string, limit int) ([]*entities.ContextEntry, error)
}

type adminService interface {
	ListUsers(ctx context.Context, admin *entities.Principal) ([]*entities.User, error)
	CreateUser(ctx context.Context, admin *entities.Principal, input *entities.CreateUserInput) (*entities.CreateUserResponse, error)
	CreateApiKey(ctx context.Context, admin *entities.Principal, userID, name string) (*entities.CreateApiKeyResponse, error)
	RevokeApiKey(ctx context.Context, admin *entities.Principal, userID, name string) (bool, error)
	DeleteUser(ctx context.Context, admin *entities.Principal, userID string, confirm bool) error
}

type authService interface {
	Resolve(ctx context.Context, cred entities.Credential) (*entities.Principal, error)
}

// sessionIDFn extracts the transport session id from a tool request.
// Overridable from tests, where a real ServerSession cannot be built.
var sessionIDFn = func(req *mcpsdk.CallToolRequest) string {
	if req == nil || req.Session == nil {
		return ""
	}
	return req.Session.ID()
}

// Server is the MCP facade: a streamable HTTP transport whose sessions are
// authenticated once at establishment and bound to a principal for every
// subsequent tool call.
type Server struct {
	contexts contextService
	admin    adminService
	auth     authService
	bindings *SessionBindings
	mcpSrv   *mcpsdk.Server
}

func NewServer(contexts contextService, admin adminService, auth authService) *Server {
	s := &Server{
		contexts: contexts,
		admin:    admin,
		auth:     auth,
		bindings: NewSessionBindings(),
	}

	s.mcpSrv = mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, &mcpsdk.ServerOptions{
		Instructions: serverInstructions,
	})
	s.registerTools(s.mcpSrv)

	return s
}

// Bindings exposes the session binding store, mainly for shutdown wiring
// and tests.
func (s *Server) Bindings() *SessionBindings {
	return s.bindings
}

// Shutdown drops every session binding as a unit; clients must
// re-initialize and re-authenticate afterwards.
func (s *Server) Shutdown() {
	s.bindings.Clear()
}

// principalFromRequest resolves the calling principal from the session
// binding store. No I/O: an unknown session is simply unauthenticated.
func (s *Server) principalFromRequest(req *mcpsdk.CallToolRequest) (*entities.Principal, error) {
	sessionID := sessionIDFn(req)
	if sessionID == "" {
		return nil, domainerrors.Unauthorized("no session")
	}
	principal, ok := s.bindings.Resolve(sessionID)
	if !ok {
		return nil, domainerrors.Unauthorized("session is not authenticated")
	}
	return principal, nil
}

// Handler wraps the streamable HTTP transport with session-bound
// authentication:
//   - a request without a session id must carry credentials; on success the
//     transport-assigned session id is bound to the resolved principal
//   - a request with a session id is an O(1) binding lookup, no
//     re-authentication
//   - DELETE tears the session down and unbinds it in the same step
func (s *Server) Handler() http.Handler {
	streamable := mcpsdk.NewStreamableHTTPHandler(func(_ *http.Request) *mcpsdk.Server {
		return s.mcpSrv
	}, nil)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(sessionHeader)
		if sessionID == "" {
			principal, err := s.authenticate(r)
			if err != nil {
				writeAuthError(w, err)
				return
			}
			streamable.ServeHTTP(w, r)
			if assigned := w.Header().Get(sessionHeader); assigned != "" {
				s.bindings.Bind(assigned, principal)
				s.pruneStaleBindings(r.Context())
				logger.Debug(r.Context(), "mcp session bound",
					zap.String("user_id", principal.UserID))
			}
			return
		}

		if _, ok := s.bindings.Resolve(sessionID); !ok {
			writeAuthError(w, domainerrors.Unauthorized("unknown session, re-initialize"))
			return
		}

		streamable.ServeHTTP(w, r)
		if r.Method == http.MethodDelete {
			s.bindings.Unbind(sessionID)
		}
	})
}

// pruneStaleBindings reconciles the binding store against the transport's
// session registry. DELETE unbinds eagerly, but the transport can also close
// a session on its own (keepalive timeout); running this on every new bind
// keeps the two from drifting apart.
func (s *Server) pruneStaleBindings(ctx context.Context) {
	live := make(map[string]struct{})
	for session := range s.mcpSrv.Sessions() {
		if id := session.ID(); id != "" {
			live[id] = struct{}{}
		}
	}
	if removed := s.bindings.Retain(live); removed > 0 {
		logger.Debug(ctx, "pruned stale mcp session bindings",
			zap.Int("removed", removed))
	}
}

// authenticate resolves the credentials carried on a session-establishing
// request. API keys travel in X-Api-Key or as a Bearer value with the key
// prefix; any other Bearer value is treated as an OAuth access token.
func (s *Server) authenticate(r *http.Request) (*entities.Principal, error) {
	if secret := r.Header.Get(apiKeyHeader); secret != "" {
		return s.auth.Resolve(r.Context(), entities.ApiKeyCredential(secret))
	}

	authz := r.Header.Get(authorizationHeader)
	if !strings.HasPrefix(authz, bearerPrefix) {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	token := strings.TrimPrefix(authz, bearerPrefix)
	if strings.HasPrefix(token, crypto.ApiKeyPrefix) {
		return s.auth.Resolve(r.Context(), entities.ApiKeyCredential(token))
	}
	return s.auth.Resolve(r.Context(), entities.OAuthCredential(token))
}

func writeAuthError(w http.ResponseWriter, err error) {
	appErr := domainerrors.From(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	_ = json.NewEncoder(w).Encode(toolErrorEnvelope{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
	})
}
