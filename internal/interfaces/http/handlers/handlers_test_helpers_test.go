package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/entities"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/interfaces/http/middleware"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/interfaces/http/response"
)

func testRouter(principal *entities.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if principal != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.PrincipalKey, principal)
			c.Next()
		})
	}
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doJSONWithHeaders(t *testing.T, r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func dataField(t *testing.T, env response.Envelope, field string) interface{} {
	t.Helper()
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok, "data is not an object")
	return data[field]
}

// stubContextService implements contextService with function fields.
type stubContextService struct {
	get     func(ctx context.Context, userID, key string) (*entities.ContextEntry, error)
	set     func(ctx context.Context, userID, key, content string) (*entities.WriteContextResult, error)
	delete  func(ctx context.Context, userID, key string) (bool, error)
	list    func(ctx context.Context, userID string, limit int, search string) ([]*entities.ContextEntryMeta, error)
	listAll func(ctx context.Context, userID string, limit int) ([]*entities.ContextEntry, error)
}

func (s *stubContextService) Get(ctx context.Context, userID, key string) (*entities.ContextEntry, error) {
	return s.get(ctx, userID, key)
}

func (s *stubContextService) Set(ctx context.Context, userID, key, content string) (*entities.WriteContextResult, error) {
	return s.set(ctx, userID, key, content)
}

func (s *stubContextService) Delete(ctx context.Context, userID, key string) (bool, error) {
	return s.delete(ctx, userID, key)
}

func (s *stubContextService) List(ctx context.Context, userID string, limit int, search string) ([]*entities.ContextEntryMeta, error) {
	return s.list(ctx, userID, limit, search)
}

func (s *stubContextService) ListAll(ctx context.Context, userID string, limit int) ([]*entities.ContextEntry, error) {
	return s.listAll(ctx, userID, limit)
}

var alicePrincipal = &entities.Principal{UserID: "alice"}
