package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/metrics"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

const shoppingListFilename = "shopping_list.txt"

type RecipeHandler struct {
	recipeService service.IRecipeService
	guards        Guards
	pageSize      int
}

func NewRecipeHandler(recipeService service.IRecipeService, guards Guards, pageSize int) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		guards:        guards,
		pageSize:      pageSize,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("/", with(h.guards.anon(), h.ListRecipes)...)
		recipes.POST("/", with(h.guards.user(), h.CreateRecipe)...)
		recipes.GET("/download_shopping_cart/", with(h.guards.user(), h.DownloadShoppingCart)...)
		recipes.GET("/:id/", with(h.guards.anon(), h.GetRecipe)...)
		recipes.PATCH("/:id/", with(h.guards.user(), h.UpdateRecipe)...)
		recipes.DELETE("/:id/", with(h.guards.user(), h.DeleteRecipe)...)
		recipes.POST("/:id/favorite/", with(h.guards.user(), h.AddFavorite)...)
		recipes.DELETE("/:id/favorite/", with(h.guards.user(), h.RemoveFavorite)...)
		recipes.POST("/:id/shopping_cart/", with(h.guards.user(), h.AddToCart)...)
		recipes.DELETE("/:id/shopping_cart/", with(h.guards.user(), h.RemoveFromCart)...)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, ok := pagination(c, h.pageSize)
	if !ok {
		return
	}
	filter, err := service.ParseRecipeFilter(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	recipes, total, err := h.recipeService.List(c.Request.Context(), middleware.UserID(c), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	writePage(c, page, total, recipes)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeWriteRequest
	if !bind(c, &req) {
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.RecordRecipeOperation("create")
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req types.RecipeWriteRequest
	if !bind(c, &req) {
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.RecordRecipeOperation("update")
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}

	metrics.RecordRecipeOperation("delete")
	c.Status(http.StatusNoContent)
}

type relationAdd func(c *gin.Context, userID, recipeID uint) (*types.ShortRecipeResponse, error)
type relationRemove func(c *gin.Context, userID, recipeID uint) error

func (h *RecipeHandler) addRelation(c *gin.Context, relation string, add relationAdd) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	short, err := add(c, middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.RecordRelation(relation, "add")
	c.JSON(http.StatusCreated, short)
}

func (h *RecipeHandler) removeRelation(c *gin.Context, relation string, remove relationRemove) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := remove(c, middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}

	metrics.RecordRelation(relation, "remove")
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addRelation(c, "favorite", func(c *gin.Context, userID, recipeID uint) (*types.ShortRecipeResponse, error) {
		return h.recipeService.AddFavorite(c.Request.Context(), userID, recipeID)
	})
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeRelation(c, "favorite", func(c *gin.Context, userID, recipeID uint) error {
		return h.recipeService.RemoveFavorite(c.Request.Context(), userID, recipeID)
	})
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addRelation(c, "shopping_cart", func(c *gin.Context, userID, recipeID uint) (*types.ShortRecipeResponse, error) {
		return h.recipeService.AddToCart(c.Request.Context(), userID, recipeID)
	})
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeRelation(c, "shopping_cart", func(c *gin.Context, userID, recipeID uint) error {
		return h.recipeService.RemoveFromCart(c.Request.Context(), userID, recipeID)
	})
}

// DownloadShoppingCart serves the summed ingredients of every recipe in the
// user's cart as a text attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	items, err := h.recipeService.ShoppingList(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.ShoppingListDownloads.Inc()
	c.Header("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", service.RenderShoppingList(items))
}
