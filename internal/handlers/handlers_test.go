package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/whatsyourrecipe/backend/internal/middleware"
	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/services"
	"github.com/anonto42/whatsyourrecipe/backend/internal/testutil"
	"github.com/anonto42/whatsyourrecipe/backend/internal/validators"
)

// tokenAuth treats the bearer token itself as the user id.
type tokenAuth struct{}

func (tokenAuth) Authenticate(_ context.Context, bearer string) (models.Identity, *models.JwtCustomClaims, error) {
	return models.Identity{ID: bearer, Email: bearer + "@example.com"}, nil, nil
}

type harness struct {
	e     *echo.Echo
	store *testutil.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	s := testutil.NewStore()
	c := testutil.NewMemoryCache()
	e := echo.New()
	e.Validator = validators.NewValidator()

	guard := Guards{
		Require:  middleware.RequireAuth(tokenAuth{}),
		Optional: middleware.OptionalAuth(tokenAuth{}),
	}
	activities := services.NewActivityService(s, s, s)
	profiles := services.NewProfileService(s, s, s, s, s, c)
	recipes := services.NewRecipeService(s, s, s, s, s, profiles, activities, c)
	social := services.NewSocialService(s, s, s, s, profiles, activities)

	g := e.Group("")
	NewUserHandler(profiles).RegisterProfileRoutes(g, guard)
	NewFeedHandler(services.NewFeedService(s, s, s, s, s)).RegisterFeedRoutes(g, guard)
	NewRecipeHandler(recipes).RegisterRecipeRoutes(g, guard)
	NewVoteHandler(social).RegisterVoteRoutes(g, guard)
	NewFollowHandler(social, services.NewRecommendationService(s, s, s, s)).RegisterFollowRoutes(g, guard)
	NewSavedRecipeHandler(social).RegisterSavedRecipeRoutes(g, guard)
	NewActivityHandler(activities).RegisterActivityRoutes(g, guard)
	return &harness{e: e, store: s}
}

func (h *harness) request(t *testing.T, req *http.Request, user string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	if user != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+user)
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)

	var body map[string]interface{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func (h *harness) json(t *testing.T, method, path, user string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return h.request(t, req, user)
}

func TestHTTPError_Mapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{services.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrSelfFollow, http.StatusBadRequest},
		{services.ErrEmailTaken, http.StatusConflict},
		{services.ErrConflict, http.StatusConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrInvalidToken, http.StatusUnauthorized},
		{services.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("pq: connection refused"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			e.HTTPErrorHandler(httpError(c, tt.err), c)

			assert.Equal(t, tt.status, rec.Code)
			assert.NotContains(t, rec.Body.String(), "pq:")
		})
	}
}

func TestValidationFailure_StopsHandler(t *testing.T) {
	h := newHarness(t)

	rec, body := h.json(t, http.MethodPost, "/recipes", "u1", echo.Map{"recipe_name": "", "rating": 42})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", body["message"])

	fields := map[string]bool{}
	for _, raw := range body["errors"].([]interface{}) {
		fields[raw.(map[string]interface{})["field"].(string)] = true
	}
	assert.True(t, fields["recipe_name"])
	assert.True(t, fields["rating"])
	assert.Empty(t, h.store.Recipes)
}

func TestFeed_DegradesOnStoreFailure(t *testing.T) {
	h := newHarness(t)
	h.store.Fail["GetFollowingIDs"] = errors.New("postgres down")

	rec, body := h.json(t, http.MethodGet, "/recipes?view=following&limit=5", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]interface{})
	assert.Empty(t, data["recipes"])
	assert.Equal(t, "following", data["view"])
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, true, meta["degraded"])
	assert.Equal(t, float64(5), meta["itemsPerPage"])
}

func TestHashtagRecipes_Envelope(t *testing.T) {
	h := newHarness(t)
	h.store.AddProfile("author", "author")
	r := h.store.AddRecipe("22222222-2222-2222-2222-222222222222", "author", true, h.store.Profiles["author"].CreatedAt)
	r.Description = "Fruity #ethiopia natural"

	rec, body := h.json(t, http.MethodGet, "/recipes/hashtag/ethiopia?limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ethiopia", data["hashtag"])
	require.Len(t, data["recipes"], 1)
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, float64(1), meta["totalItems"])
	assert.Nil(t, meta["degraded"])
}

func TestUserStats_DegradesToZero(t *testing.T) {
	h := newHarness(t)
	h.store.Fail["GetFollowersCount"] = errors.New("timeout")

	rec, body := h.json(t, http.MethodGet, "/user-stats/u9", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u9", body["user_id"])
	assert.Equal(t, float64(0), body["followers_count"])
}

func TestSelfFollow_BadRequest(t *testing.T) {
	h := newHarness(t)
	rec, _ := h.json(t, http.MethodPost, "/follow/u1", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveRecipe_Toggle(t *testing.T) {
	h := newHarness(t)
	h.store.AddProfile("author", "author")
	r := h.store.AddRecipe("11111111-1111-1111-1111-111111111111", "author", true, h.store.Profiles["author"].CreatedAt)

	rec, body := h.json(t, http.MethodPost, "/save-recipe/"+r.ID, "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["saved"])

	_, body = h.json(t, http.MethodGet, "/save-status/"+r.ID, "u1", nil)
	assert.Equal(t, true, body["saved"])

	_, body = h.json(t, http.MethodPost, "/save-recipe/"+r.ID, "u1", nil)
	assert.Equal(t, false, body["saved"])
}

func avatarRequest(t *testing.T, contentType string, size int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="avatar"; filename="me.png"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0x89}, size))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/avatar", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestUploadAvatar(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.request(t, avatarRequest(t, "text/plain", 10), "u1")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec, _ = h.request(t, avatarRequest(t, "image/png", MaxAvatarBytes+1), "u1")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, h.store.Avatars)

	rec, body := h.request(t, avatarRequest(t, "image/png", 64), "u1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	url := body["avatar_url"].(string)
	assert.Equal(t, url, h.store.Profiles["u1"].AvatarURL)

	rec, _ = h.request(t, httptest.NewRequest(http.MethodGet, url, nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 64, rec.Body.Len())
}

func TestGetAvatar_NotFound(t *testing.T) {
	h := newHarness(t)
	rec, _ := h.request(t, httptest.NewRequest(http.MethodGet, "/avatars/000000000000000000000042", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPageMeta(t *testing.T) {
	meta := pageMeta(2, 10, 25)
	assert.Equal(t, 3, meta["totalPages"])
	assert.Equal(t, true, meta["hasNextPage"])
	assert.Equal(t, true, meta["hasPreviousPage"])

	meta = pageMeta(1, 10, 0)
	assert.Equal(t, 0, meta["totalPages"])
	assert.Equal(t, false, meta["hasNextPage"])
	assert.Equal(t, false, meta["hasPreviousPage"])
}

func TestRecommendedUsers_ColdStart(t *testing.T) {
	h := newHarness(t)
	h.store.AddProfile("u1", "me")
	h.store.AddProfile("u2", "second")
	h.store.AddProfile("u3", "third")

	rec, body := h.json(t, http.MethodGet, "/recommended-users?limit=5", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ids []string
	for _, p := range body["profiles"].([]interface{}) {
		ids = append(ids, p.(map[string]interface{})["id"].(string))
	}
	assert.ElementsMatch(t, []string{"u2", "u3"}, ids)
}
