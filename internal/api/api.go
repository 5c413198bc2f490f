package api

import (
	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
)

// DefaultPageSize is the number of items on one page of a paginated list.
const DefaultPageSize = 6

// Services are the domain services the handlers delegate to.
type Services struct {
	Auth        service.IAuthService
	Users       service.IUserService
	Recipes     service.IRecipeService
	Tags        service.ITagService
	Ingredients service.IIngredientService
}

type Options struct {
	PageSize int
	// Limiter throttles authenticated and anonymous clients. Nil disables
	// rate limiting.
	Limiter middleware.Limiter
}

// Guards bundles the middleware chains the handlers attach to their routes.
type Guards struct {
	Optional gin.HandlerFunc
	Required gin.HandlerFunc
	Staff    gin.HandlerFunc
	Limit    gin.HandlerFunc
}

func newGuards(auth service.IAuthService, limiter middleware.Limiter) Guards {
	limit := func(c *gin.Context) { c.Next() }
	if limiter != nil {
		limit = middleware.RateLimitMiddleware(limiter)
	}
	return Guards{
		Optional: middleware.OptionalAuth(auth),
		Required: middleware.AuthMiddleware(auth),
		Staff:    middleware.RequireStaff(),
		Limit:    limit,
	}
}

// anon runs for routes open to everyone.
func (g Guards) anon() gin.HandlersChain { return gin.HandlersChain{g.Optional, g.Limit} }

// user runs for routes that need a signed-in user.
func (g Guards) user() gin.HandlersChain { return gin.HandlersChain{g.Required, g.Limit} }

// staff runs for catalog administration.
func (g Guards) staff() gin.HandlersChain { return gin.HandlersChain{g.Required, g.Staff, g.Limit} }

func with(chain gin.HandlersChain, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(chain)+1)
	out = append(out, chain...)
	return append(out, h)
}

// SetupAPI registers every /api route on router.
func SetupAPI(router *gin.Engine, svc Services, opts Options) {
	RegisterValidators()

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	guards := newGuards(svc.Auth, opts.Limiter)

	api := router.Group("/api")
	{
		NewAuthHandler(svc.Auth, guards).RegisterRoutes(api)
		NewUserHandler(svc.Auth, svc.Users, guards, pageSize).RegisterRoutes(api)
		NewRecipeHandler(svc.Recipes, guards, pageSize).RegisterRoutes(api)
		NewTagHandler(svc.Tags, guards).RegisterRoutes(api)
		NewIngredientHandler(svc.Ingredients, guards).RegisterRoutes(api)
	}
}
