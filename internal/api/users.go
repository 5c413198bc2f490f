package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/metrics"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// UserHandler serves registration, profiles and subscriptions.
type UserHandler struct {
	authService service.IAuthService
	userService service.IUserService
	guards      Guards
	pageSize    int
}

func NewUserHandler(authService service.IAuthService, userService service.IUserService, guards Guards, pageSize int) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
		guards:      guards,
		pageSize:    pageSize,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/", with(h.guards.anon(), h.ListUsers)...)
		users.POST("/", with(h.guards.anon(), h.Register)...)
		users.GET("/me/", with(h.guards.user(), h.Me)...)
		users.POST("/set_password/", with(h.guards.user(), h.SetPassword)...)
		users.GET("/subscriptions/", with(h.guards.user(), h.Subscriptions)...)
		users.GET("/:id/", with(h.guards.anon(), h.GetUser)...)
		users.POST("/:id/subscribe/", with(h.guards.user(), h.Subscribe)...)
		users.DELETE("/:id/subscribe/", with(h.guards.user(), h.Unsubscribe)...)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, ok := pagination(c, h.pageSize)
	if !ok {
		return
	}

	users, total, err := h.userService.List(c.Request.Context(), middleware.UserID(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	writePage(c, page, total, users)
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	metrics.RecordAuthEvent("register", err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.RegisteredUser{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.UserID(c)
	user, err := h.userService.Get(c.Request.Context(), userID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bind(c, &req) {
		return
	}

	err := h.authService.SetPassword(c.Request.Context(), middleware.UserID(c), req)
	metrics.RecordAuthEvent("set_password", err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := pathID(c)
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}

	sub, err := h.userService.Subscribe(c.Request.Context(), middleware.UserID(c), authorID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.RecordRelation("subscription", "add")
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.userService.Unsubscribe(c.Request.Context(), middleware.UserID(c), authorID); err != nil {
		respondError(c, err)
		return
	}

	metrics.RecordRelation("subscription", "remove")
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	page, ok := pagination(c, h.pageSize)
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}

	subs, total, err := h.userService.Subscriptions(c.Request.Context(), middleware.UserID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	writePage(c, page, total, subs)
}
