package mcp

import (
	"context"
	"errors"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
)

// stubContexts implements contextService with function fields so each test
// wires only the calls it expects.
type stubContexts struct {
	get     func(ctx context.Context, userID, key string) (*entities.ContextEntry, error)
	set     func(ctx context.Context, userID, key, content string) (*entities.WriteContextResult, error)
	delete  func(ctx context.Context, userID, key string) (bool, error)
	list    func(ctx context.Context, userID string, limit int, search string) ([]*entities.ContextEntryMeta, error)
	listAll func(ctx context.Context, userID string, limit int) ([]*entities.ContextEntry, error)
}

func (s *stubContexts) Get(ctx context.Context, userID, key string) (*entities.ContextEntry, error) {
	return s.get(ctx, userID, key)
}

func (s *stubContexts) Set(ctx context.Context, userID, key, content string) (*entities.WriteContextResult, error) {
	return s.set(ctx, userID, key, content)
}

func (s *stubContexts) Delete(ctx context.Context, userID, key string) (bool, error) {
	return s.delete(ctx, userID, key)
}

func (s *stubContexts) List(ctx context.Context, userID string, limit int, search string) ([]*entities.ContextEntryMeta, error) {
	return s.list(ctx, userID, limit, search)
}

func (s *stubContexts) ListAll(ctx context.Context, userID string, limit int) ([]*entities.ContextEntry, error) {
	return s.listAll(ctx, userID, limit)
}

type stubAdmin struct {
	listUsers    func(ctx context.Context, admin *entities.Principal) ([]*entities.User, error)
	createUser   func(ctx context.Context, admin *entities.Principal, input *entities.CreateUserInput) (*entities.CreateUserResponse, error)
	createApiKey func(ctx context.Context, admin *entities.Principal, userID, name string) (*entities.CreateApiKeyResponse, error)
	revokeApiKey func(ctx context.Context, admin *entities.Principal, userID, name string) (bool, error)
	deleteUser   func(ctx context.Context, admin *entities.Principal, userID string, confirm bool) error
}

func (s *stubAdmin) ListUsers(ctx context.Context, admin *entities.Principal) ([]*entities.User, error) {
	return s.listUsers(ctx, admin)
}

func (s *stubAdmin) CreateUser(ctx context.Context, admin *entities.Principal, input *entities.CreateUserInput) (*entities.CreateUserResponse, error) {
	return s.createUser(ctx, admin, input)
}

func (s *stubAdmin) CreateApiKey(ctx context.Context, admin *entities.Principal, userID, name string) (*entities.CreateApiKeyResponse, error) {
	return s.createApiKey(ctx, admin, userID, name)
}

func (s *stubAdmin) RevokeApiKey(ctx context.Context, admin *entities.Principal, userID, name string) (bool, error) {
	return s.revokeApiKey(ctx, admin, userID, name)
}

func (s *stubAdmin) DeleteUser(ctx context.Context, admin *entities.Principal, userID string, confirm bool) error {
	return s.deleteUser(ctx, admin, userID, confirm)
}

type stubAuth struct {
	resolve func(ctx context.Context, cred entities.Credential) (*entities.Principal, error)
}

func (s *stubAuth) Resolve(ctx context.Context, cred entities.Credential) (*entities.Principal, error) {
	if s.resolve == nil {
		return nil, errors.New("unexpected Resolve call")
	}
	return s.resolve(ctx, cred)
}

func newTestServer(contexts *stubContexts, admin *stubAdmin, auth *stubAuth) *Server {
	if contexts == nil {
		contexts = &stubContexts{}
	}
	if admin == nil {
		admin = &stubAdmin{}
	}
	if auth == nil {
		auth = &stubAuth{}
	}
	return NewServer(contexts, admin, auth)
}

const testSessionID = "sess-test"

// bindTestSession binds a principal under a fixed session id and points
// sessionIDFn at it, since a real ServerSession cannot be fabricated.
func bindTestSession(t *testing.T, s *Server, principal *entities.Principal) {
	t.Helper()
	s.bindings.Bind(testSessionID, principal)
	prev := sessionIDFn
	sessionIDFn = func(*mcpsdk.CallToolRequest) string { return testSessionID }
	t.Cleanup(func() { sessionIDFn = prev })
}

var (
	aliceTestPrincipal = &entities.Principal{UserID: "alice"}
	adminTestPrincipal = &entities.Principal{UserID: "root", IsAdmin: true}
)
