package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Env: config.Test,
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: "0",
		},
		API: config.APIConfig{
			PageSize:    6,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Storage: config.StorageConfig{MediaURL: "/media/"},
	}
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	db := testhelpers.SetupSQLiteDB(t)
	mediaDir := t.TempDir()
	auth := service.NewAuthService(db, "test-secret", time.Hour, service.NewMemoryDenylist())

	srv := New(testConfig(), Deps{
		DB: db,
		Services: api.Services{
			Auth:        auth,
			Users:       service.NewUserService(db),
			Recipes:     service.NewRecipeService(db, nil),
			Tags:        service.NewTagService(db),
			Ingredients: service.NewIngredientService(db),
		},
		MediaDir: mediaDir,
	})
	return srv, mediaDir
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(t, srv, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestHealthDatabaseDown(t *testing.T) {
	srv, _ := newTestServer(t)
	sqlDB, err := srv.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := get(t, srv, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	get(t, srv, "/api/tags/")

	w := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "foodgram_api_requests_total")
}

func TestMediaIsServed(t *testing.T) {
	srv, mediaDir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(mediaDir, "pie.png"), []byte("png-bytes"), 0o644))

	w := get(t, srv, "/media/pie.png")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(t, srv, "/api/nothing-here/")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found."}`, w.Body.String())
}

func TestAPIRoutesMounted(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(t, srv, "/api/recipes/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), `{"count":0`))
}
