package api_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/recipe-organizer/backend/internal/api"
	"github.com/pageza/recipe-organizer/backend/internal/middleware"
	"github.com/pageza/recipe-organizer/backend/internal/mocks"
	"github.com/pageza/recipe-organizer/backend/internal/service"
	"github.com/pageza/recipe-organizer/backend/internal/testhelpers"
	"github.com/pageza/recipe-organizer/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
}

type recipeBody struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Ingredients []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"ingredients"`
	Instructions string    `json:"instructions"`
	ImageDataURL *string   `json:"imageDataUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	UserID       *string   `json:"userId"`
}

type testServer struct {
	router *gin.Engine
	auth   *service.AuthService
}

func setupServer(t *testing.T, opts ...func(*api.Dependencies)) *testServer {
	t.Helper()
	store := testhelpers.NewSQLiteStore(t)
	auth := service.NewAuthService(store.DB, "test-secret", time.Hour, service.WithHashCost(bcrypt.MinCost))

	deps := api.Dependencies{
		Recipes:        service.NewRecipeService(store.DB),
		Auth:           auth,
		Images:         service.NewImageService(service.DataURLBackend{}, 1<<20),
		APIPrefix:      "/api",
		MaxUploadBytes: 1 << 20,
		HealthChecks:   []api.HealthCheck{{Name: "database", Check: store.Ping}},
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &testServer{router: api.NewRouter(deps), auth: auth}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// login registers a user and returns a bearer token for it.
func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	email := username + "@example.com"
	w, _ := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	return result.Token
}

func (s *testServer) createRecipe(t *testing.T, token, title string, ingredients any) recipeBody {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/recipes", token, map[string]any{
		"title": title, "ingredients": ingredients, "instructions": "Cook it",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var r recipeBody
	require.NoError(t, json.Unmarshal(env.Data, &r))
	return r
}

func decodeRecipes(t *testing.T, env envelope) []recipeBody {
	t.Helper()
	var out []recipeBody
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestRecipeCRUD(t *testing.T) {
	s := setupServer(t)

	created := s.createRecipe(t, "", "Pancakes", []any{"flour", map[string]string{"name": "milk"}})
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Pancakes", created.Title)
	require.Len(t, created.Ingredients, 2)
	assert.Equal(t, "milk", created.Ingredients[1].Name)
	assert.Nil(t, created.UserID)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	w, env := s.do(t, http.MethodGet, "/api/recipes/"+created.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env.Status)

	w, env = s.do(t, http.MethodPut, "/api/recipes/"+created.ID, "", map[string]any{"title": "Crepes"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated recipeBody
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Crepes", updated.Title)
	assert.Equal(t, created.Ingredients[0].ID, updated.Ingredients[0].ID)

	w, env = s.do(t, http.MethodGet, "/api/recipes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	w, env = s.do(t, http.MethodDelete, "/api/recipes/"+created.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Recipe deleted successfully", env.Message)

	w, env = s.do(t, http.MethodGet, "/api/recipes/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Recipe with ID "+created.ID+" not found", env.Message)
}

func TestCreateRecipeValidation(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		name    string
		body    any
		message string
	}{
		{"missing title", map[string]any{"ingredients": []string{"a"}, "instructions": "x"}, "Title is required"},
		{"blank ingredients", map[string]any{"title": "T", "ingredients": []string{" ", ""}, "instructions": "x"}, "At least one ingredient is required"},
		{"missing instructions", map[string]any{"title": "T", "ingredients": []string{"a"}}, "Instructions are required"},
		{"ingredients not a list", map[string]any{"title": "T", "ingredients": "a", "instructions": "x"}, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.do(t, http.MethodPost, "/api/recipes", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestUpdateAndDeleteMissingRecipe(t *testing.T) {
	s := setupServer(t)

	w, _ := s.do(t, http.MethodPut, "/api/recipes/missing", "", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/recipes/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOwnershipOverHTTP(t *testing.T) {
	s := setupServer(t)
	alice := s.login(t, "alice")
	bob := s.login(t, "bob")

	owned := s.createRecipe(t, alice, "Alice Soup", []string{"leek"})
	require.NotNil(t, owned.UserID)
	s.createRecipe(t, "", "Public Bread", []string{"flour"})

	w, env := s.do(t, http.MethodGet, "/api/recipes", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decodeRecipes(t, env)
	require.Len(t, mine, 1)
	assert.Equal(t, "Alice Soup", mine[0].Title)

	w, env = s.do(t, http.MethodGet, "/api/recipes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeRecipes(t, env), 2)

	w, env = s.do(t, http.MethodPut, "/api/recipes/"+owned.ID, bob, map[string]any{"title": "Bob Soup"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized to update this recipe", env.Message)

	w, env = s.do(t, http.MethodDelete, "/api/recipes/"+owned.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized to delete this recipe", env.Message)

	w, _ = s.do(t, http.MethodPut, "/api/recipes/"+owned.ID, alice, map[string]any{"ingredients": []string{"leek", "potato"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/recipes/"+owned.ID, alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInvalidTokenIsRejected(t *testing.T) {
	s := setupServer(t)

	w, env := s.do(t, http.MethodGet, "/api/recipes", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "error", env.Status)
}

func TestSearchOverHTTP(t *testing.T) {
	s := setupServer(t)
	s.createRecipe(t, "", "Milkshake", []string{"ice cream"})
	s.createRecipe(t, "", "Soup", []string{"milk"})
	s.createRecipe(t, "", "Tea", []string{"leaves"})

	w, env := s.do(t, http.MethodGet, "/api/recipes?search=MILK", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decodeRecipes(t, env)
	titles := make([]string, len(found))
	for i, r := range found {
		titles[i] = r.Title
	}
	assert.ElementsMatch(t, []string{"Milkshake", "Soup"}, titles)
	assert.Equal(t, 2, *env.Count)
}

func TestAuthEndpoints(t *testing.T) {
	s := setupServer(t)
	register := func(body map[string]string) (*httptest.ResponseRecorder, envelope) {
		return s.do(t, http.MethodPost, "/api/auth/register", "", body)
	}

	w, env := register(map[string]string{"username": "alice", "email": "alice@example.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "User created successfully", env.Message)
	var user map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, user, "password_hash")

	w, env = register(map[string]string{"username": "alice2", "email": "alice@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User with this email or username already exists", env.Message)

	w, env = register(map[string]string{"username": "carol", "email": "carol@example.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Password must be at least 6 characters", env.Message)

	w, env = register(map[string]string{"username": "carol"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username, email, and password are required", env.Message)

	w, env = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", env.Message)

	w, env = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", env.Message)
}

// 1x1 transparent PNG.
var pngPixel, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func multipartRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	s := setupServer(t)

	t.Run("image", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, multipartRequest(t, "image", "pixel.png", pngPixel))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var env envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		var data struct {
			ImageDataURL string `json:"imageDataUrl"`
			Filename     string `json:"filename"`
			Size         int    `json:"size"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.True(t, strings.HasPrefix(data.ImageDataURL, "data:image/png;base64,"))
		assert.Equal(t, "pixel.png", data.Filename)
		assert.Equal(t, len(pngPixel), data.Size)
	})

	t.Run("no file", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, multipartRequest(t, "", "", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "No file uploaded")
	})

	t.Run("not an image", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, multipartRequest(t, "image", "notes.txt", []byte("hello there")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Only image files are allowed")
	})
}

func TestHealthRootAndNotFound(t *testing.T) {
	s := setupServer(t)

	for _, path := range []string{"/health", "/api/health"} {
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, map[string]any{"database": "up"}, body["checks"])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome to Recipe Organizer API")

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Route not found")

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recipes_http_requests_total")
}

func TestHealthDegraded(t *testing.T) {
	s := setupServer(t, func(d *api.Dependencies) {
		d.HealthChecks = append(d.HealthChecks, api.HealthCheck{
			Name:  "redis",
			Check: func(context.Context) error { return errors.New("connection refused") },
		})
	})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded"`)
}

func TestCreateRecipeIsRateLimited(t *testing.T) {
	s := setupServer(t, func(d *api.Dependencies) {
		d.RecipeLimiter = middleware.NewLocalRateLimiter(middleware.RecipeCreationLimit(1))
	})

	s.createRecipe(t, "", "First", []string{"a"})

	w, env := s.do(t, http.MethodPost, "/api/recipes", "", map[string]any{
		"title": "Second", "ingredients": []string{"a"}, "instructions": "x",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "error", env.Status)
}

func TestUnexpectedErrorsAreHidden(t *testing.T) {
	recipes := new(mocks.MockRecipeService)
	recipes.On("ListRecipes", mock.Anything, (*string)(nil)).
		Return(nil, errors.New("database is locked: /var/lib/recipes.db"))

	router := api.NewRouter(api.Dependencies{
		Recipes:   recipes,
		Auth:      new(mocks.MockAuthService),
		Images:    service.NewImageService(service.DataURLBackend{}, 1<<20),
		APIPrefix: "/api",
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recipes", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"Internal server error"}`, w.Body.String())
	recipes.AssertExpectations(t)
}

func TestTokenFromMockValidator(t *testing.T) {
	recipes := new(mocks.MockRecipeService)
	auth := new(mocks.MockAuthService)
	owner := "user-1"

	auth.On("ValidateToken", "tok").Return(testClaims(owner), nil)
	recipes.On("DeleteRecipe", mock.Anything, "r1", &owner).Return(false, &service.AuthorizationError{Action: "delete"})

	router := api.NewRouter(api.Dependencies{Recipes: recipes, Auth: auth, APIPrefix: "/api"})

	req := httptest.NewRequest(http.MethodDelete, "/api/recipes/r1", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	recipes.AssertExpectations(t)
	auth.AssertExpectations(t)
}

func testClaims(userID string) *types.TokenClaims {
	return &types.TokenClaims{UserID: userID, Email: userID + "@example.com"}
}
