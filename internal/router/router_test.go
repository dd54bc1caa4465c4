package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/whatsyourrecipe/backend/internal/handlers"
	"github.com/anonto42/whatsyourrecipe/backend/internal/testutil"
	"github.com/anonto42/whatsyourrecipe/backend/internal/validators"
)

type testServer struct {
	e     *echo.Echo
	store *testutil.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := testutil.NewStore()
	e := echo.New()
	e.Validator = validators.NewValidator()

	SetupRoutes(e, Options{
		Repos: Repositories{
			Accounts: s, Profiles: s, Recipes: s, Votes: s, Follows: s,
			Saved: s, Hashtags: s, Activities: s, Avatars: s,
		},
		Cache:      testutil.NewMemoryCache(),
		JWTSecret:  "test-secret",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
		Health:     handlers.HealthInfo{Environment: "test", Port: "8080"},
		Probe: func(context.Context) (int64, error) {
			return int64(len(s.Recipes)), nil
		},
	})
	return &testServer{e: e, store: s}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// login signs up a fresh account and returns its access token.
func (ts *testServer) login(t *testing.T, email, username string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/auth/signup", "", echo.Map{
		"email": email, "password": "correct-horse", "username": username,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/auth/login", "", echo.Map{"email": email, "password": "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode(t, rec)["access_token"].(string)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["environment"])

	rec = ts.do(t, http.MethodGet, "/test-db", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", decode(t, rec)["status"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/recipes"},
		{http.MethodPost, "/recipes"},
		{http.MethodPost, "/votes"},
		{http.MethodGet, "/activity-feed"},
		{http.MethodGet, "/users/profile"},
		{http.MethodPost, "/auth/logout"},
	} {
		rec := ts.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}

	// Public routes stay reachable anonymously.
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/trending-hashtags", "", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/users/search/anyone", "", nil).Code)
}

func TestRecipeLifecycle(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.login(t, "alice@example.com", "alice")
	bob := ts.login(t, "bob@example.com", "bob")

	rec := ts.do(t, http.MethodPost, "/recipes", alice, echo.Map{
		"recipe_name": "Morning V60",
		"description": "Bright and clean #pourover",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	recipeID := decode(t, rec)["id"].(string)

	// Bob sees Alice's public recipe in his default feed.
	rec = ts.do(t, http.MethodGet, "/recipes", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decode(t, rec)
	data := feed["data"].(map[string]interface{})
	recipes := data["recipes"].([]interface{})
	require.Len(t, recipes, 1)
	assert.Equal(t, recipeID, recipes[0].(map[string]interface{})["id"])
	assert.Equal(t, "feed", data["view"])
	assert.Nil(t, feed["meta"].(map[string]interface{})["degraded"])

	// Vote, then withdraw by voting the same way again.
	rec = ts.do(t, http.MethodPost, "/votes", bob, echo.Map{"recipe_id": recipeID, "vote_type": "up"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Vote cast", decode(t, rec)["message"])
	rec = ts.do(t, http.MethodPost, "/votes", bob, echo.Map{"recipe_id": recipeID, "vote_type": "up"})
	assert.Equal(t, "Vote removed", decode(t, rec)["message"])

	// Only the owner may edit.
	rec = ts.do(t, http.MethodPut, "/recipes/"+recipeID, bob, echo.Map{"recipe_name": "Stolen"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(t, http.MethodPut, "/recipes/"+recipeID, alice, echo.Map{"is_public": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Private now: hidden from Bob and anonymous callers, visible to Alice.
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/recipes/"+recipeID, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/recipes/"+recipeID, "", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/recipes/"+recipeID, alice, nil).Code)

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/recipes/"+recipeID, alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/recipes/"+recipeID, alice, nil).Code)
}

func TestFollowFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.login(t, "alice@example.com", "alice")
	bob := ts.login(t, "bob@example.com", "bob")

	rec := ts.do(t, http.MethodGet, "/users/profile", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	bobID := decode(t, rec)["id"].(string)

	rec = ts.do(t, http.MethodPost, "/follow/"+bobID, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["following"])

	rec = ts.do(t, http.MethodGet, "/follow-status/"+bobID, alice, nil)
	assert.Equal(t, true, decode(t, rec)["following"])

	rec = ts.do(t, http.MethodGet, "/user-stats/"+bobID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["followers_count"])

	rec = ts.do(t, http.MethodGet, "/activity-feed", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])
}

func TestValidationErrorsAreReported(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth/signup", "", echo.Map{"email": "not-an-email", "password": "short"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Validation failed", body["message"])
	assert.NotEmpty(t, body["errors"])
	assert.Empty(t, ts.store.Accounts)
}

func TestLogoutRevokesToken(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "alice@example.com", "alice")

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/users/profile", token, nil).Code)
}
