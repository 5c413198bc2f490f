package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	db := testhelpers.SetupSQLiteDB(t)
	store, err := storage.NewDiskStore(t.TempDir(), "/media/")
	require.NoError(t, err)

	auth := service.NewAuthService(db, "test-secret", time.Hour, service.NewMemoryDenylist())
	router := gin.New()
	api.SetupAPI(router, api.Services{
		Auth:        auth,
		Users:       service.NewUserService(db),
		Recipes:     service.NewRecipeService(db, store),
		Tags:        service.NewTagService(db),
		Ingredients: service.NewIngredientService(db),
	}, api.Options{})

	return &testServer{router: router, db: db, auth: auth}
}

func (s *testServer) login(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := s.auth.Login(context.Background(), user.Email, testhelpers.TestPassword)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRegisterLoginLogout(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodPost, "/api/users/", "", map[string]string{
		"email":      "Cook@Example.com",
		"username":   "cook",
		"first_name": "Ann",
		"last_name":  "Cook",
		"password":   "long-enough-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "cook@example.com", created["email"])
	assert.Equal(t, "cook", created["username"])
	assert.NotContains(t, created, "is_subscribed")
	assert.NotContains(t, created, "password")

	w = s.do(t, http.MethodPost, "/api/auth/token/login/", "", map[string]string{
		"email":    "cook@example.com",
		"password": "long-enough-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decode(t, w)["auth_token"].(string)
	require.NotEmpty(t, token)

	w = s.do(t, http.MethodGet, "/api/users/me/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, "cook", me["username"])
	assert.Equal(t, false, me["is_subscribed"])

	w = s.do(t, http.MethodPost, "/api/auth/token/logout/", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/users/me/", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, middleware.MsgBadToken, decode(t, w)["error"])
}

func TestLoginWrongPassword(t *testing.T) {
	s := setupServer(t)
	testhelpers.CreateUser(t, s.db, "cook")

	w := s.do(t, http.MethodPost, "/api/auth/token/login/", "", map[string]string{
		"email":    "cook@example.com",
		"password": "nope",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unable to log in with provided credentials.", decode(t, w)["error"])
}

func TestRegisterValidation(t *testing.T) {
	s := setupServer(t)
	testhelpers.CreateUser(t, s.db, "taken")

	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{
			name:  "missing last name",
			body:  map[string]string{"email": "a@example.com", "username": "a", "first_name": "A", "password": "long-enough-pass"},
			field: "last_name",
		},
		{
			name:  "bad username",
			body:  map[string]string{"email": "a@example.com", "username": "bad name!", "first_name": "A", "last_name": "B", "password": "long-enough-pass"},
			field: "username",
		},
		{
			name:  "bad email",
			body:  map[string]string{"email": "nope", "username": "a", "first_name": "A", "last_name": "B", "password": "long-enough-pass"},
			field: "email",
		},
		{
			name:  "duplicate username",
			body:  map[string]string{"email": "new@example.com", "username": "taken", "first_name": "A", "last_name": "B", "password": "long-enough-pass"},
			field: "username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/users/", "", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			fields, _ := decode(t, w)["fields"].(map[string]interface{})
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestSetPassword(t *testing.T) {
	s := setupServer(t)
	user := testhelpers.CreateUser(t, s.db, "cook")
	token := s.login(t, user)

	w := s.do(t, http.MethodPost, "/api/users/set_password/", token, map[string]string{
		"current_password": "wrong",
		"new_password":     "another-long-pass",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/users/set_password/", token, map[string]string{
		"current_password": testhelpers.TestPassword,
		"new_password":     "another-long-pass",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, err := s.auth.Login(context.Background(), user.Email, "another-long-pass")
	assert.NoError(t, err)
}

func TestAuthenticationErrors(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodPost, "/api/recipes/", "", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, middleware.MsgNoCredentials, decode(t, w)["error"])

	req := httptest.NewRequest(http.MethodGet, "/api/recipes/", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, middleware.MsgBadHeader, decode(t, rec)["error"])

	w = s.do(t, http.MethodGet, "/api/recipes/", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecipeLifecycle(t *testing.T) {
	s := setupServer(t)
	author := testhelpers.CreateUser(t, s.db, "author")
	reader := testhelpers.CreateUser(t, s.db, "reader")
	apple := testhelpers.CreateIngredient(t, s.db, "apple", "pcs")
	butter := testhelpers.CreateIngredient(t, s.db, "butter", "g")
	tag := testhelpers.CreateTag(t, s.db, "breakfast")
	authorToken := s.login(t, author)
	readerToken := s.login(t, reader)

	w := s.do(t, http.MethodPost, "/api/recipes/", authorToken, map[string]interface{}{
		"ingredients":  []map[string]interface{}{{"id": apple.ID, "amount": 2}, {"id": butter.ID, "amount": 50}},
		"tags":         []uint{tag.ID},
		"image":        testhelpers.PNGDataURI,
		"name":         "Apple pie",
		"text":         "Bake it.",
		"cooking_time": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recipe := decode(t, w)
	id := uint(recipe["id"].(float64))
	assert.Equal(t, false, recipe["is_favorited"])
	assert.Equal(t, false, recipe["is_in_shopping_cart"])
	assert.True(t, strings.HasPrefix(recipe["image"].(string), "/media/"))
	ingredients := recipe["ingredients"].([]interface{})
	require.Len(t, ingredients, 2)
	first := ingredients[0].(map[string]interface{})
	assert.Equal(t, float64(apple.ID), first["id"])
	assert.Equal(t, "apple", first["name"])
	assert.Equal(t, "pcs", first["measurement_unit"])
	assert.Equal(t, float64(2), first["amount"])
	tags := recipe["tags"].([]interface{})
	require.Len(t, tags, 1)
	assert.Equal(t, "breakfast", tags[0].(map[string]interface{})["slug"])

	recipePath := fmt.Sprintf("/api/recipes/%d/", id)

	w = s.do(t, http.MethodPatch, recipePath, readerToken, map[string]interface{}{"name": "Mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPatch, recipePath, authorToken, map[string]interface{}{
		"ingredients": []map[string]interface{}{{"id": butter.ID, "amount": 100}},
		"tags":        []uint{tag.ID},
		"name":        "Butter pie",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)
	assert.Equal(t, "Butter pie", updated["name"])
	assert.Len(t, updated["ingredients"], 1)

	w = s.do(t, http.MethodPost, recipePath+"favorite/", readerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	short := decode(t, w)
	assert.Equal(t, "Butter pie", short["name"])
	assert.NotContains(t, short, "ingredients")

	w = s.do(t, http.MethodPost, recipePath+"favorite/", readerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrAlreadyFavorited.Message, decode(t, w)["error"])

	w = s.do(t, http.MethodGet, recipePath, readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["is_favorited"])

	w = s.do(t, http.MethodPost, recipePath+"shopping_cart/", readerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart/", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shopping_list.txt")
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, w.Body.String(), "1. butter (g) - 100")

	w = s.do(t, http.MethodDelete, recipePath+"shopping_cart/", readerToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodDelete, recipePath+"shopping_cart/", readerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, recipePath, readerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, recipePath, authorToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, recipePath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRecipeValidation(t *testing.T) {
	s := setupServer(t)
	author := testhelpers.CreateUser(t, s.db, "author")
	token := s.login(t, author)

	w := s.do(t, http.MethodPost, "/api/recipes/", token, map[string]interface{}{
		"name":         "No ingredients",
		"cooking_time": 0,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	fields := body["fields"].(map[string]interface{})
	for _, field := range []string{"ingredients", "tags", "image", "text", "cooking_time"} {
		assert.Contains(t, fields, field)
	}

	w = s.do(t, http.MethodPost, "/api/recipes/", token, map[string]interface{}{"cooking_time": "ten"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields = decode(t, w)["fields"].(map[string]interface{})
	assert.Equal(t, "Incorrect type.", fields["cooking_time"])

	var count int64
	require.NoError(t, s.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecipeListPaginationAndFilters(t *testing.T) {
	s := setupServer(t)
	author := testhelpers.CreateUser(t, s.db, "author")
	other := testhelpers.CreateUser(t, s.db, "other")
	lunch := testhelpers.CreateTag(t, s.db, "lunch")
	for i := 0; i < 7; i++ {
		recipe := testhelpers.CreateRecipe(t, s.db, author, fmt.Sprintf("recipe %d", i), []*models.Tag{lunch}, nil)
		testhelpers.Age(t, s.db, recipe, time.Duration(7-i)*time.Minute)
	}
	testhelpers.CreateRecipe(t, s.db, other, "untagged", nil, nil)

	w := s.do(t, http.MethodGet, "/api/recipes/?tags=lunch", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Equal(t, float64(7), page["count"])
	assert.Len(t, page["results"], 6)
	assert.Equal(t, "http://example.com/api/recipes/?page=2&tags=lunch", page["next"])
	assert.Nil(t, page["previous"])

	w = s.do(t, http.MethodGet, "/api/recipes/?tags=lunch&page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode(t, w)
	results := page["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, "recipe 0", results[0].(map[string]interface{})["name"])
	assert.Nil(t, page["next"])
	assert.Equal(t, "http://example.com/api/recipes/?tags=lunch", page["previous"])

	for _, q := range []string{"page=3&tags=lunch", "page=0", "page=abc"} {
		w = s.do(t, http.MethodGet, "/api/recipes/?"+q, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, q)
		assert.Equal(t, "Invalid page.", decode(t, w)["error"])
	}

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/?author=%d", other.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])

	w = s.do(t, http.MethodGet, "/api/recipes/?author=me", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/recipes/?tags=lunch&tags=brunch", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid input.","fields":{"tags":"Select a valid choice. brunch is not one of the available choices."}}`, w.Body.String())

	// Anonymous viewers ignore the favorites filter.
	w = s.do(t, http.MethodGet, "/api/recipes/?is_favorited=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(8), decode(t, w)["count"])

	w = s.do(t, http.MethodGet, "/api/recipes/?is_favorited=1", s.login(t, other), nil)
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode(t, w)
	assert.Equal(t, float64(0), empty["count"])
	assert.Equal(t, []interface{}{}, empty["results"])
}

func TestSubscriptions(t *testing.T) {
	s := setupServer(t)
	reader := testhelpers.CreateUser(t, s.db, "reader")
	author := testhelpers.CreateUser(t, s.db, "author")
	older := testhelpers.CreateRecipe(t, s.db, author, "older", nil, nil)
	testhelpers.Age(t, s.db, older, time.Hour)
	testhelpers.CreateRecipe(t, s.db, author, "newer", nil, nil)
	token := s.login(t, reader)
	subscribe := fmt.Sprintf("/api/users/%d/subscribe/", author.ID)

	w := s.do(t, http.MethodPost, subscribe+"?recipes_limit=1", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decode(t, w)
	assert.Equal(t, true, sub["is_subscribed"])
	assert.Equal(t, float64(2), sub["recipes_count"])
	recipes := sub["recipes"].([]interface{})
	require.Len(t, recipes, 1)
	assert.Equal(t, "newer", recipes[0].(map[string]interface{})["name"])

	w = s.do(t, http.MethodPost, subscribe, token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe/", reader.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrFollowSelf.Message, decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/users/9999/subscribe/", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/users/subscriptions/?recipes_limit=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/users/subscriptions/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Equal(t, float64(1), page["count"])
	results := page["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Len(t, results[0].(map[string]interface{})["recipes"], 2)

	w = s.do(t, http.MethodGet, "/api/users/subscriptions/?recipes_limit=0", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	results = decode(t, w)["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, []interface{}{}, results[0].(map[string]interface{})["recipes"])
	assert.Equal(t, float64(2), results[0].(map[string]interface{})["recipes_count"])

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/", author.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["is_subscribed"])

	w = s.do(t, http.MethodDelete, subscribe, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodDelete, subscribe, token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrNotFollowing.Message, decode(t, w)["error"])
}

func TestUserList(t *testing.T) {
	s := setupServer(t)
	testhelpers.CreateUser(t, s.db, "one")
	testhelpers.CreateUser(t, s.db, "two")

	w := s.do(t, http.MethodGet, "/api/users/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Equal(t, float64(2), page["count"])
	assert.Len(t, page["results"], 2)

	w = s.do(t, http.MethodGet, "/api/users/9999/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodGet, "/api/users/abc/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogAdministration(t *testing.T) {
	s := setupServer(t)
	user := testhelpers.CreateUser(t, s.db, "user")
	admin := testhelpers.CreateUser(t, s.db, "admin")
	require.NoError(t, s.db.Model(admin).Update("is_staff", true).Error)
	userToken := s.login(t, user)
	adminToken := s.login(t, admin)

	tag := map[string]string{"name": "Dinner", "color": "#abcdef", "slug": "dinner"}
	w := s.do(t, http.MethodPost, "/api/tags/", userToken, tag)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/tags/", adminToken, tag)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "#ABCDEF", created["color"])

	w = s.do(t, http.MethodPost, "/api/tags/", adminToken, map[string]string{"name": "X", "color": "blue", "slug": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "color")

	w = s.do(t, http.MethodGet, "/api/tags/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tags []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tags))
	require.Len(t, tags, 1)

	tagPath := fmt.Sprintf("/api/tags/%d/", uint(created["id"].(float64)))
	w = s.do(t, http.MethodPatch, tagPath, adminToken, map[string]string{"name": "Supper"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Supper", decode(t, w)["name"])
	w = s.do(t, http.MethodDelete, tagPath, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, tagPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, name := range []string{"Tomato", "Potato", "tofu"} {
		w = s.do(t, http.MethodPost, "/api/ingredients/", adminToken, map[string]string{"name": name, "measurement_unit": "g"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/ingredients/?name=to", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ingredients []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ingredients))
	names := make([]string, len(ingredients))
	for i, ing := range ingredients {
		names[i] = ing["name"].(string)
	}
	assert.ElementsMatch(t, []string{"Tomato", "tofu"}, names)

	w = s.do(t, http.MethodPost, "/api/ingredients/", userToken, map[string]string{"name": "salt", "measurement_unit": "g"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
