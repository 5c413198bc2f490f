package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/metrics"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// AuthHandler issues and revokes tokens.
type AuthHandler struct {
	authService service.IAuthService
	guards      Guards
}

func NewAuthHandler(authService service.IAuthService, guards Guards) *AuthHandler {
	return &AuthHandler{authService: authService, guards: guards}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	token := router.Group("/auth/token")
	{
		token.POST("/login/", with(h.guards.anon(), h.Login)...)
		token.POST("/logout/", with(h.guards.user(), h.Logout)...)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if !bind(c, &req) {
		metrics.RecordAuthEvent("login", service.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	metrics.RecordAuthEvent("login", err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.TokenResponse{AuthToken: token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.authService.Logout(c.Request.Context(), middleware.Claims(c))
	metrics.RecordAuthEvent("logout", err)
	if err != nil {
		respondError(c, err)
		return
	}

	logging.Ctx(c.Request.Context()).Info().Msg("token revoked")
	c.Status(http.StatusNoContent)
}
