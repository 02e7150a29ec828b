package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yourorg/tag-service/internal/cooldown"
	"github.com/yourorg/tag-service/internal/middleware"
	"github.com/yourorg/tag-service/internal/model"
	"github.com/yourorg/tag-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubStore implements service.TagStore with overridable behaviors.
type stubStore struct {
	tags map[string]*model.Tag
}

func newStubStore(tags ...*model.Tag) *stubStore {
	s := &stubStore{tags: make(map[string]*model.Tag)}
	for _, tag := range tags {
		s.tags[tag.Name] = tag
	}
	return s
}

func (s *stubStore) Create(_ context.Context, spaceID, ownerID int64, name, content string) (*model.Tag, error) {
	if _, ok := s.tags[name]; ok {
		return nil, model.ErrDuplicateName
	}
	if len(s.tags) >= model.MaxTagsPerSpace {
		return nil, model.ErrQuotaExceeded
	}
	tag := &model.Tag{SpaceID: spaceID, OwnerID: ownerID, Name: name, Content: content, Aliases: []string{}}
	s.tags[name] = tag
	return tag, nil
}

func (s *stubStore) Get(_ context.Context, _ int64, name string, _ bool) (*model.Tag, error) {
	if tag, ok := s.tags[name]; ok {
		return tag, nil
	}
	return nil, model.ErrNotFound
}

func (s *stubStore) Edit(_ context.Context, _ int64, name, content string) (*model.Tag, error) {
	tag, ok := s.tags[name]
	if !ok {
		return nil, model.ErrNotFound
	}
	tag.Content = content
	return tag, nil
}

func (s *stubStore) Delete(_ context.Context, _ int64, name string) error {
	if _, ok := s.tags[name]; !ok {
		return model.ErrNotFound
	}
	delete(s.tags, name)
	return nil
}

func (s *stubStore) Purge(_ context.Context, _, ownerID int64) (int64, error) {
	var deleted int64
	for name, tag := range s.tags {
		if tag.OwnerID == ownerID {
			delete(s.tags, name)
			deleted++
		}
	}
	return deleted, nil
}

func (s *stubStore) List(_ context.Context, _, _ int64) ([]model.TagSummary, error) {
	out := []model.TagSummary{}
	for _, tag := range s.tags {
		out = append(out, model.TagSummary{Index: len(out) + 1, Name: tag.Name, OwnerID: tag.OwnerID})
	}
	return out, nil
}

func (s *stubStore) Count(_ context.Context, _, _ int64) (int, error) {
	return len(s.tags), nil
}

func (s *stubStore) Search(_ context.Context, _ int64, query string) ([]string, error) {
	out := []string{}
	for name := range s.tags {
		if strings.Contains(name, query) {
			out = append(out, name)
		}
	}
	return out, nil
}

func (s *stubStore) AddAlias(_ context.Context, _ int64, name, alias string) (*model.Tag, error) {
	tag, ok := s.tags[name]
	if !ok {
		return nil, model.ErrNotFound
	}
	tag.Aliases = append(tag.Aliases, alias)
	return tag, nil
}

func (s *stubStore) UpdateOwner(_ context.Context, _ int64, name string, _, toOwner int64) (bool, error) {
	tag, ok := s.tags[name]
	if !ok {
		return false, nil
	}
	tag.OwnerID = toOwner
	return true, nil
}

type allowAllRoster struct{}

func (allowAllRoster) IsMember(context.Context, int64, int64) (bool, error) { return false, nil }

type neverPremium struct{}

func (neverPremium) IsPremiumUser(context.Context, int64) (bool, error) { return false, nil }

const testServiceKey = "test-key"

func buildRouter(t *testing.T, store *stubStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidations())

	logger := zap.NewNop()
	gate := cooldown.NewGate(neverPremium{}, cooldown.NewMemoryStore(), nil, nil, logger)
	tagService := service.NewTagService(store, allowAllRoster{}, nil, logger)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.Use(middleware.ServiceAuth(testServiceKey, logger))

	tags := v1.Group("/spaces/:space_id")
	tags.Use(middleware.Cooldown(gate, cooldown.Tier0, logger))

	h := NewTagHandler(tagService, logger)
	tags.POST("/tags", h.Create)
	tags.GET("/tags", h.List)
	tags.GET("/tags/:name", h.Get)
	tags.PUT("/tags/:name", h.Edit)
	tags.DELETE("/tags/:name", h.Delete)
	tags.POST("/tags/:name/aliases", h.AddAlias)
	tags.POST("/tags/:name/claim", h.Claim)
	tags.GET("/tag-search", h.Search)

	return router
}

func doRequest(router *gin.Engine, method, path, callerID, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Service-Key", testServiceKey)
	req.Header.Set("Content-Type", "application/json")
	if callerID != "" {
		req.Header.Set("X-Caller-ID", callerID)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestServiceKeyRequired(t *testing.T) {
	router := buildRouter(t, newStubStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/spaces/1/tags/welcome", nil)
	req.Header.Set("X-Caller-ID", "10")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCallerIDRequired(t *testing.T) {
	router := buildRouter(t, newStubStore())

	w := doRequest(router, http.MethodGet, "/api/v1/spaces/1/tags/welcome", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTag(t *testing.T) {
	store := newStubStore(&model.Tag{SpaceID: 1, OwnerID: 10, Name: "welcome", Content: "hi"})
	router := buildRouter(t, store)

	w := doRequest(router, http.MethodGet, "/api/v1/spaces/1/tags/welcome", "10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.Tag `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "welcome", resp.Data.Name)
	assert.Equal(t, "hi", resp.Data.Content)
}

func TestGetMissingTagIs404(t *testing.T) {
	router := buildRouter(t, newStubStore())

	w := doRequest(router, http.MethodGet, "/api/v1/spaces/1/tags/ghost", "10", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTag(t *testing.T) {
	router := buildRouter(t, newStubStore())

	w := doRequest(router, http.MethodPost, "/api/v1/spaces/1/tags", "10",
		`{"name":"welcome","content":"hi"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateDuplicateIs409(t *testing.T) {
	store := newStubStore(&model.Tag{SpaceID: 1, OwnerID: 10, Name: "welcome", Content: "hi"})
	router := buildRouter(t, store)

	w := doRequest(router, http.MethodPost, "/api/v1/spaces/1/tags", "11",
		`{"name":"welcome","content":"hi"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateInvalidNameIs400(t *testing.T) {
	router := buildRouter(t, newStubStore())

	w := doRequest(router, http.MethodPost, "/api/v1/spaces/1/tags", "10",
		`{"name":"wel,come","content":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSecondCallWithinWindowIs429(t *testing.T) {
	store := newStubStore(&model.Tag{SpaceID: 1, OwnerID: 10, Name: "welcome", Content: "hi"})
	router := buildRouter(t, store)

	w := doRequest(router, http.MethodGet, "/api/v1/spaces/1/tags/welcome", "10", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/spaces/1/tags/welcome", "10", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// A different caller has an independent bucket.
	w = doRequest(router, http.MethodGet, "/api/v1/spaces/1/tags/welcome", "11", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClaimConflictWhenAlreadyOwner(t *testing.T) {
	store := newStubStore(&model.Tag{SpaceID: 1, OwnerID: 10, Name: "welcome", Content: "hi"})
	router := buildRouter(t, store)

	w := doRequest(router, http.MethodPost, "/api/v1/spaces/1/tags/welcome/claim", "10", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestClaimReassignsOwner(t *testing.T) {
	store := newStubStore(&model.Tag{SpaceID: 1, OwnerID: 10, Name: "welcome", Content: "hi"})
	router := buildRouter(t, store)

	w := doRequest(router, http.MethodPost, "/api/v1/spaces/1/tags/welcome/claim", "20", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(20), store.tags["welcome"].OwnerID)
}

func TestSearchEmptyMatchIsEmptyList(t *testing.T) {
	router := buildRouter(t, newStubStore())

	w := doRequest(router, http.MethodGet, "/api/v1/spaces/1/tag-search?q=zzz", "10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
}
