package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/oauth"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByExternalPrincipalID(ctx context.Context, externalID string) (*entities.User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*entities.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockApiKeyRepository struct {
	mock.Mock
}

func (m *MockApiKeyRepository) Create(ctx context.Context, apiKey *entities.ApiKey) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

func (m *MockApiKeyRepository) FindByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error) {
	args := m.Called(ctx, keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) FindByUserID(ctx context.Context, userID string) ([]*entities.ApiKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockApiKeyRepository) TouchLastUsed(ctx context.Context, keyHash string) error {
	args := m.Called(ctx, keyHash)
	return args.Error(0)
}

func (m *MockApiKeyRepository) DeleteByName(ctx context.Context, userID, name string) (bool, error) {
	args := m.Called(ctx, userID, name)
	return args.Bool(0), args.Error(1)
}

type MockContextRepository struct {
	mock.Mock
}

func (m *MockContextRepository) Get(ctx context.Context, userID, key string) (*entities.ContextEntry, error) {
	args := m.Called(ctx, userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ContextEntry), args.Error(1)
}

func (m *MockContextRepository) Upsert(ctx context.Context, entry *entities.ContextEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockContextRepository) Delete(ctx context.Context, userID, key string) (bool, error) {
	args := m.Called(ctx, userID, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockContextRepository) List(ctx context.Context, userID string, limit int, search string) ([]*entities.ContextEntryMeta, error) {
	args := m.Called(ctx, userID, limit, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ContextEntryMeta), args.Error(1)
}

func (m *MockContextRepository) ListAll(ctx context.Context, userID string, limit int) ([]*entities.ContextEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ContextEntry), args.Error(1)
}

func (m *MockContextRepository) AppendHistory(ctx context.Context, record *entities.ContextHistoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockContextRepository) HistoryCount(ctx context.Context, userID, key string) (int64, error) {
	args := m.Called(ctx, userID, key)
	return args.Get(0).(int64), args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, record *entities.AdminAuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, rawToken string) (*oauth.Identity, error) {
	args := m.Called(ctx, rawToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.Identity), args.Error(1)
}

// fakeUnitOfWork runs the function directly, without a transaction. Tests
// that care about rollback semantics use the real gorm-backed implementation.
type fakeUnitOfWork struct{}

func (fakeUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// syncAsync makes fire-and-forget side effects run inline for the duration
// of a test.
func syncAsync(t *testing.T) {
	t.Helper()
	prev := runAsync
	runAsync = func(f func()) { f() }
	t.Cleanup(func() { runAsync = prev })
}
