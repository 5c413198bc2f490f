package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// TagHandler serves the tag catalog. Writes are restricted to staff.
type TagHandler struct {
	tagService service.ITagService
	guards     Guards
}

func NewTagHandler(tagService service.ITagService, guards Guards) *TagHandler {
	return &TagHandler{tagService: tagService, guards: guards}
}

func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags")
	{
		tags.GET("/", with(h.guards.anon(), h.ListTags)...)
		tags.GET("/:id/", with(h.guards.anon(), h.GetTag)...)
		tags.POST("/", with(h.guards.staff(), h.CreateTag)...)
		tags.PATCH("/:id/", with(h.guards.staff(), h.UpdateTag)...)
		tags.DELETE("/:id/", with(h.guards.staff(), h.DeleteTag)...)
	}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tagService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) GetTag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tag, err := h.tagService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) CreateTag(c *gin.Context) {
	var req types.TagRequest
	if !bind(c, &req) {
		return
	}
	tag, err := h.tagService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	logging.Ctx(c.Request.Context()).Info().Str("slug", tag.Slug).Msg("tag created")
	c.JSON(http.StatusCreated, tag)
}

func (h *TagHandler) UpdateTag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req types.TagRequest
	if !bind(c, &req) {
		return
	}
	tag, err := h.tagService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) DeleteTag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.tagService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// IngredientHandler serves the ingredient catalog. Writes are restricted to
// staff.
type IngredientHandler struct {
	ingredientService service.IIngredientService
	guards            Guards
}

func NewIngredientHandler(ingredientService service.IIngredientService, guards Guards) *IngredientHandler {
	return &IngredientHandler{ingredientService: ingredientService, guards: guards}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("/", with(h.guards.anon(), h.ListIngredients)...)
		ingredients.GET("/:id/", with(h.guards.anon(), h.GetIngredient)...)
		ingredients.POST("/", with(h.guards.staff(), h.CreateIngredient)...)
		ingredients.PATCH("/:id/", with(h.guards.staff(), h.UpdateIngredient)...)
		ingredients.DELETE("/:id/", with(h.guards.staff(), h.DeleteIngredient)...)
	}
}

// ListIngredients returns every ingredient whose name starts with the name
// query parameter, ignoring case.
func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.ingredientService.List(c.Request.Context(), strings.TrimSpace(c.Query("name")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ingredient, err := h.ingredientService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *IngredientHandler) CreateIngredient(c *gin.Context) {
	var req types.IngredientRequest
	if !bind(c, &req) {
		return
	}
	ingredient, err := h.ingredientService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

func (h *IngredientHandler) UpdateIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req types.IngredientRequest
	if !bind(c, &req) {
		return
	}
	ingredient, err := h.ingredientService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *IngredientHandler) DeleteIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.ingredientService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
