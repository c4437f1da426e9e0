package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/auth"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/config"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/db/dbtest"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/models"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/service"
)

const testPassword = "Coderacademy1!"

type testServer struct {
	*HTTPServer
	tokens *auth.Tokens
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gdb := dbtest.New(t)
	l := zap.NewNop().Sugar()
	cfg := &config.Config{
		JWTSecret:  "secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	tokens := auth.NewTokens(cfg)

	s := newServer(Deps{
		Users:       service.NewUsers(gdb, tokens, cfg, l),
		Ingredients: service.NewIngredients(gdb, l),
		Allergies:   service.NewAllergies(gdb, l),
		Recipes:     service.NewRecipes(gdb, l),
		Reviews:     service.NewReviews(gdb, l),
		Tokens:      tokens,
	}, l)
	return &testServer{HTTPServer: s, tokens: tokens}
}

// user registers an account and returns its id with a valid token.
func (s *testServer) user(t *testing.T, email string, admin bool) (uint64, string) {
	t.Helper()
	u, err := s.users.Register(context.Background(), service.RegisterInput{
		Email:    email,
		Password: testPassword,
		IsAdmin:  admin,
	})
	require.NoError(t, err)

	token, err := s.tokens.Issue(u.ID)
	require.NoError(t, err)
	return u.ID, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func TestCensorBody(t *testing.T) {
	b := `{
		"email": "email@email.com",
		"password": "123456789123"
	}`

	got := censorBody([]byte(b))
	assert.JSONEq(t, `{
		"email": "email@email.com",
		"password": "$censored"
	}`, string(got))

	assert.Equal(t, "not json", string(censorBody([]byte("not json"))))
	assert.Equal(t, `{"title":"Pie"}`, string(censorBody([]byte(`{"title":"Pie"}`))))
}

func TestIndexAndPing(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pong", string(body))

	status, body = s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "/recipes/search")

	status, body = s.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), `"error"`)
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodPost, "/recipes/create", "", models.RecipeReq{Title: "Pie"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodGet, "/recipes", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	ghost, err := s.tokens.Issue(4242)
	require.NoError(t, err)
	status, body := s.do(t, http.MethodPost, "/ingredient", ghost, models.NameReq{Name: "Salt"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, string(body), "please check your token")
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t)

	t.Run("register", func(t *testing.T) {
		status, body := s.do(t, http.MethodPost, "/auth/register", "", models.RegisterReq{
			Name:     strPtr("Simon"),
			Email:    "simon@email.com",
			Password: testPassword,
		})
		require.Equal(t, http.StatusCreated, status, string(body))
		assert.NotContains(t, string(body), "password")

		got := decode[models.UserResp](t, body)
		assert.Equal(t, "simon@email.com", got.Email)
		assert.False(t, got.IsAdmin)
	})

	t.Run("register duplicate", func(t *testing.T) {
		status, _ := s.do(t, http.MethodPost, "/auth/register", "", models.RegisterReq{
			Email:    "simon@email.com",
			Password: testPassword,
		})
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("register reports every field", func(t *testing.T) {
		status, body := s.do(t, http.MethodPost, "/auth/register", "", models.RegisterReq{Email: "nope", Password: "weak"})
		require.Equal(t, http.StatusBadRequest, status)

		got := decode[errorResp](t, body)
		assert.NotEmpty(t, got.Error)
		assert.Contains(t, got.Fields, "email")
		assert.Contains(t, got.Fields, "password")
	})

	t.Run("login", func(t *testing.T) {
		status, body := s.do(t, http.MethodPost, "/auth/login", "", models.LoginReq{Email: "simon@email.com", Password: testPassword})
		require.Equal(t, http.StatusOK, status)

		got := decode[models.LoginResp](t, body)
		assert.Equal(t, "simon@email.com", got.Email)
		assert.NotEmpty(t, got.Token)

		status, _ = s.do(t, http.MethodGet, "/auth/user/1", got.Token, nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		status, body := s.do(t, http.MethodPost, "/auth/login", "", models.LoginReq{Email: "simon@email.com", Password: "Wrong1234"})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.JSONEq(t, `{"error": "invalid email or password"}`, string(body))
	})

	t.Run("admin lists users", func(t *testing.T) {
		_, adminToken := s.user(t, "admin@email.com", true)
		_, userToken := s.user(t, "ben@email.com", false)

		status, body := s.do(t, http.MethodGet, "/auth/user", adminToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, decode[[]models.UserResp](t, body), 3)

		status, _ = s.do(t, http.MethodGet, "/auth/user", userToken, nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("update and delete self", func(t *testing.T) {
		id, token := s.user(t, "luis@email.com", false)
		path := "/auth/user/" + itoa(id)

		status, body := s.do(t, http.MethodPatch, path, token, models.UserPatchReq{Name: strPtr("Luis")})
		require.Equal(t, http.StatusOK, status, string(body))
		assert.Equal(t, "Luis", *decode[models.UserResp](t, body).Name)

		status, _ = s.do(t, http.MethodPatch, path, token, models.UserPatchReq{IsAdmin: boolPtr(true)})
		assert.Equal(t, http.StatusForbidden, status)

		status, _ = s.do(t, http.MethodDelete, path, token, nil)
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestRecipeRoutes(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.user(t, "admin@email.com", true)
	_, benToken := s.user(t, "ben@email.com", false)
	_, luisToken := s.user(t, "luis@email.com", false)

	status, body := s.do(t, http.MethodPost, "/recipes/create", benToken, models.RecipeReq{
		Title:        "Carbonara",
		Difficulty:   intPtr(3),
		ServingSize:  intPtr(2),
		Instructions: "Boil pasta. Whisk eggs and cheese.",
		Ingredients:  map[string]string{"Pasta": "200g", "Eggs": "3"},
		Allergies:    []string{"Gluten"},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	created := decode[models.RecipeResp](t, body)
	path := "/recipes/" + itoa(created.ID)

	t.Run("get nests owner ingredients and allergies", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, status)

		got := decode[models.RecipeResp](t, body)
		assert.Equal(t, "ben@email.com", got.User.Email)
		assert.ElementsMatch(t, []models.RecipeIngredientResp{
			{Name: "Eggs", Amount: "3"},
			{Name: "Pasta", Amount: "200g"},
		}, got.Ingredients)
		assert.Equal(t, []models.RecipeAllergyResp{{Name: "Gluten"}}, got.Allergies)
		assert.Empty(t, got.Reviews)
	})

	t.Run("list", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/recipes/", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, decode[[]models.RecipeResp](t, body), 1)
	})

	t.Run("search", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/recipes/search?ingredient=EGG", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, decode[[]models.RecipeResp](t, body), 1)

		status, _ = s.do(t, http.MethodGet, "/recipes/search", "", nil)
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = s.do(t, http.MethodGet, "/recipes/search?title=lasagne", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("stranger cannot update", func(t *testing.T) {
		status, _ := s.do(t, http.MethodPatch, path, luisToken, models.RecipePatchReq{Title: strPtr("Mine now")})
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("missing ingredients key keeps links", func(t *testing.T) {
		status, body := s.do(t, http.MethodPatch, path, benToken, map[string]interface{}{"title": "Creamy Carbonara"})
		require.Equal(t, http.StatusOK, status, string(body))

		got := decode[models.RecipeResp](t, body)
		assert.Equal(t, "Creamy Carbonara", got.Title)
		assert.Len(t, got.Ingredients, 2)
	})

	t.Run("admin replaces ingredients", func(t *testing.T) {
		status, body := s.do(t, http.MethodPut, path, adminToken, map[string]interface{}{
			"ingredients": map[string]string{"Rice": "1 cup"},
			"allergies":   []string{},
		})
		require.Equal(t, http.StatusOK, status, string(body))

		got := decode[models.RecipeResp](t, body)
		assert.Equal(t, []models.RecipeIngredientResp{{Name: "Rice", Amount: "1 cup"}}, got.Ingredients)
		assert.Empty(t, got.Allergies)
	})

	t.Run("delete", func(t *testing.T) {
		status, _ := s.do(t, http.MethodDelete, path, luisToken, nil)
		assert.Equal(t, http.StatusForbidden, status)

		status, _ = s.do(t, http.MethodDelete, path, benToken, nil)
		assert.Equal(t, http.StatusNoContent, status)

		status, _ = s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestReviewRoutes(t *testing.T) {
	s := newTestServer(t)
	_, benToken := s.user(t, "ben@email.com", false)
	_, luisToken := s.user(t, "luis@email.com", false)
	_, simonToken := s.user(t, "simon@email.com", false)

	status, body := s.do(t, http.MethodPost, "/recipes/create", benToken, models.RecipeReq{
		Title:        "Omelette",
		Instructions: "Whisk and fry.",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	recipePath := "/review/" + itoa(decode[models.RecipeResp](t, body).ID)

	status, body = s.do(t, http.MethodPost, recipePath, benToken, models.ReviewReq{Details: "Perfect", Rating: intPtr(10)})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "your own recipe")

	status, body = s.do(t, http.MethodPost, recipePath, luisToken, models.ReviewReq{Details: "Fluffy", Rating: intPtr(6)})
	require.Equal(t, http.StatusCreated, status, string(body))
	luisReview := decode[models.ReviewResp](t, body)
	assert.Equal(t, "luis@email.com", luisReview.User.Email)

	status, _ = s.do(t, http.MethodPost, recipePath, simonToken, models.ReviewReq{Details: "Great", Rating: intPtr(9)})
	require.Equal(t, http.StatusCreated, status)

	status, body = s.do(t, http.MethodGet, recipePath+"?highest=true", "", nil)
	require.Equal(t, http.StatusOK, status)
	reviews := decode[[]models.ReviewResp](t, body)
	require.Len(t, reviews, 2)
	assert.Equal(t, 9, reviews[0].Rating)

	status, _ = s.do(t, http.MethodGet, "/review/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	reviewPath := "/review/" + itoa(luisReview.ID)
	status, _ = s.do(t, http.MethodPatch, reviewPath, simonToken, models.ReviewPatchReq{Rating: intPtr(1)})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(t, http.MethodPatch, reviewPath, luisToken, models.ReviewPatchReq{Rating: intPtr(7)})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 7, decode[models.ReviewResp](t, body).Rating)

	status, _ = s.do(t, http.MethodDelete, reviewPath, luisToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodGet, "/review", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.ReviewResp](t, body), 1)
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.user(t, "admin@email.com", true)
	_, benToken := s.user(t, "ben@email.com", false)

	status, body := s.do(t, http.MethodPost, "/recipes/create", benToken, models.RecipeReq{
		Title:        "Toast",
		Instructions: "Toast the bread.",
		Ingredients:  map[string]string{"Bread": "2 slices"},
		Allergies:    []string{"Gluten"},
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = s.do(t, http.MethodPost, "/ingredient", benToken, models.NameReq{Name: "Saffron"})
	require.Equal(t, http.StatusCreated, status, string(body))
	saffron := decode[models.NamedResp](t, body)

	status, _ = s.do(t, http.MethodPost, "/ingredient", benToken, models.NameReq{Name: "Saffron"})
	assert.Equal(t, http.StatusConflict, status)

	status, body = s.do(t, http.MethodGet, "/ingredient?search=SAF", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []models.NamedResp{saffron}, decode[[]models.NamedResp](t, body))

	status, _ = s.do(t, http.MethodGet, "/allergy?search=peanut", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPatch, "/ingredient/"+itoa(saffron.ID), benToken, models.NameReq{Name: "Turmeric"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(t, http.MethodPatch, "/ingredient/"+itoa(saffron.ID), adminToken, models.NameReq{Name: "Turmeric"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Turmeric", decode[models.NamedResp](t, body).Name)

	status, body = s.do(t, http.MethodGet, "/allergy", "", nil)
	require.Equal(t, http.StatusOK, status)
	gluten := decode[[]models.NamedResp](t, body)
	require.Len(t, gluten, 1)

	status, _ = s.do(t, http.MethodDelete, "/allergy/delete/"+itoa(gluten[0].ID), adminToken, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = s.do(t, http.MethodDelete, "/ingredient/delete", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message": "1 ingredients without relations successfully deleted"}`, string(body))

	status, body = s.do(t, http.MethodGet, "/ingredient", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.NamedResp](t, body), 1)
}

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
