package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creatorpulse/internal/adapter/cache"
	"creatorpulse/internal/config"
	"creatorpulse/internal/domain/post"
	insightService "creatorpulse/internal/service/insight"
	"creatorpulse/internal/service/recommendation"
)

type memoryStore struct {
	posts   []post.Post
	findErr error
}

func (m *memoryStore) SavePosts(ctx context.Context, posts []post.Post) error {
	m.posts = append(m.posts, posts...)
	return nil
}

func (m *memoryStore) FindPostsByUser(ctx context.Context, userID string) ([]post.Post, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []post.Post
	for _, p := range m.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryStore) DeletePostsByUser(ctx context.Context, userID string) (int64, error) {
	var kept []post.Post
	for _, p := range m.posts {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	deleted := int64(len(m.posts) - len(kept))
	m.posts = kept
	return deleted, nil
}

func newTestServer(store recommendation.PostStore) (http.Handler, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	entry := logrus.NewEntry(logger)

	engine := insightService.NewEngine(insightService.EngineConfig{
		Now: func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
	svc := recommendation.NewService(engine, store, cache.NewMemoryCache(), nil,
		recommendation.ServiceConfig{CacheTTL: time.Hour}, entry)

	srv := NewServer(config.ServerConfig{CorsOrigins: []string{"*"}}, svc, Options{}, entry)
	return srv.Handler(), hook
}

func doRequest(t *testing.T, h http.Handler, method, path, userID string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func uploadBody() map[string]interface{} {
	return map[string]interface{}{
		"platform": "YouTube",
		"items": []map[string]interface{}{
			{"title": "Intro", "views": 1000, "likes": 50, "comments": 5, "postedAt": "2026-05-20T10:00:00Z"},
			{"title": "Deep dive", "views": 2500, "likes": 200, "comments": 20, "postedAt": "2026-05-25T18:00:00Z"},
		},
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(&memoryStore{})

	rec, _ := doRequest(t, h, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(&memoryStore{})

	rec, _ := doRequest(t, h, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUploadThenRecommend(t *testing.T) {
	h, _ := newTestServer(&memoryStore{})

	rec, body := doRequest(t, h, http.MethodPost, "/api/v1/uploads", "user-1", uploadBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["inserted"])

	rec, body = doRequest(t, h, http.MethodGet, "/api/v1/recommendations", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["cached"])

	recommendationBody, ok := body["recommendation"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "user-1", recommendationBody["userId"])
	report, ok := recommendationBody["report"].(map[string]interface{})
	require.True(t, ok)
	focus, ok := report["platformFocus"].([]interface{})
	require.True(t, ok)
	require.Len(t, focus, 1)
	assert.Equal(t, "youtube", focus[0].(map[string]interface{})["platform"])

	rec, body = doRequest(t, h, http.MethodGet, "/api/v1/recommendations?user_id=user-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["cached"])

	rec, body = doRequest(t, h, http.MethodDelete, "/api/v1/recommendations/cache", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	_, body = doRequest(t, h, http.MethodGet, "/api/v1/recommendations", "user-1", nil)
	assert.Equal(t, false, body["cached"])
}

func TestUpload_BadRequests(t *testing.T) {
	h, _ := newTestServer(&memoryStore{})

	rec, body := doRequest(t, h, http.MethodPost, "/api/v1/uploads", "", uploadBody())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, body = doRequest(t, h, http.MethodPost, "/api/v1/uploads", "user-1", map[string]interface{}{"platform": "youtube"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "items failed required", body["error"])

	rec, body = doRequest(t, h, http.MethodPost, "/api/v1/uploads", "user-1", map[string]interface{}{
		"platform": "youtube",
		"items":    []interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "items failed min=1", body["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", strings.NewReader("{not json"))
	req.Header.Set("X-User-ID", "user-1")
	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRecommendations_MissingUser(t *testing.T) {
	h, _ := newTestServer(&memoryStore{})

	rec, body := doRequest(t, h, http.MethodGet, "/api/v1/recommendations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing user ID", body["error"])
}

func TestRecommendations_InvalidUser(t *testing.T) {
	h, _ := newTestServer(&memoryStore{})

	for _, userID := range []string{"*", ">", "a.b", "user\tone"} {
		rec, body := doRequest(t, h, http.MethodGet, "/api/v1/recommendations", userID, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, userID)
		assert.Equal(t, "Invalid user ID", body["error"])
	}

	rec, _ := doRequest(t, h, http.MethodPost, "/api/v1/uploads", "a.b", uploadBody())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendations_StoreFailureIsLogged(t *testing.T) {
	h, hook := newTestServer(&memoryStore{findErr: errors.New("db down")})

	rec, body := doRequest(t, h, http.MethodGet, "/api/v1/recommendations", "user-1", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to generate recommendations", body["error"])

	var logged bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel && entry.Message == "Failed to generate recommendations" {
			logged = true
		}
	}
	assert.True(t, logged)
}

func TestAnalyze(t *testing.T) {
	h, _ := newTestServer(&memoryStore{})

	rec, body := doRequest(t, h, http.MethodPost, "/api/v1/analyze", "", map[string]interface{}{
		"platforms": map[string]interface{}{
			"tiktok": uploadBody()["items"],
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "postingSchedule")
	assert.Contains(t, body, "meta")

	focus, ok := body["platformFocus"].([]interface{})
	require.True(t, ok)
	require.Len(t, focus, 1)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	h, _ := newTestServer(&memoryStore{})

	rec, body := doRequest(t, h, http.MethodPost, "/api/v1/analyze", "", map[string]interface{}{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, body["platformFocus"])
	assert.Equal(t, []interface{}{}, body["alerts"])
}

func TestOverview(t *testing.T) {
	h, _ := newTestServer(&memoryStore{})

	rec, body := doRequest(t, h, http.MethodGet, "/api/v1/analytics/overview", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No analytics data yet", body["message"])
	assert.Nil(t, body["overview"])

	doRequest(t, h, http.MethodPost, "/api/v1/uploads", "user-1", uploadBody())

	rec, body = doRequest(t, h, http.MethodGet, "/api/v1/analytics/overview", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	overview, ok := body["overview"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, overview["totalPosts"])
	assert.EqualValues(t, 3500, overview["totalViews"])
}

func TestDeleteUploads(t *testing.T) {
	store := &memoryStore{}
	h, _ := newTestServer(store)

	doRequest(t, h, http.MethodPost, "/api/v1/uploads", "user-1", uploadBody())

	rec, body := doRequest(t, h, http.MethodDelete, "/api/v1/uploads", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["deleted"])
	assert.Empty(t, store.posts)
}

func TestWebSocketRouteRequiresSubscriber(t *testing.T) {
	h, _ := newTestServer(&memoryStore{})

	rec, _ := doRequest(t, h, http.MethodGet, "/ws/recommendations", "user-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
