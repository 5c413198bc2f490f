package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/middleware"
)

// Deps are the collaborators the server routes requests to.
type Deps struct {
	DB       *gorm.DB
	Services api.Services
	// Limiter is optional; nil disables rate limiting.
	Limiter middleware.Limiter
	// MediaDir is served under the configured media URL when images are
	// stored on local disk. Empty disables static media.
	MediaDir string
}

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
}

// New creates a new server instance with every route registered
func New(cfg *config.Config, deps Deps) *Server {
	if cfg.Env == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.CORS(cfg.API.CORSOrigins),
	)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	})

	s := &Server{
		cfg:    cfg,
		router: router,
		db:     deps.DB,
	}

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if deps.MediaDir != "" && cfg.Storage.MediaURL != "" {
		router.Static(cfg.Storage.MediaURL, deps.MediaDir)
	}

	api.SetupAPI(router, deps.Services, api.Options{
		PageSize: cfg.API.PageSize,
		Limiter:  deps.Limiter,
	})

	s.http = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	if err := database.HealthCheck(c.Request.Context(), s.db); err != nil {
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// Start serves HTTP until the server is shut down. It returns nil after a
// graceful shutdown.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.http.Addr).Msg("server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
