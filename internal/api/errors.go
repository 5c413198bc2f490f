package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
)

const (
	msgInvalidInput = "Invalid input."
	msgNotFound     = "Not found."
	msgInternal     = "internal server error"
)

var notFound = map[error]string{
	service.ErrRecipeNotFound:     "Recipe not found.",
	service.ErrUserNotFound:       "User not found.",
	service.ErrTagNotFound:        "Tag not found.",
	service.ErrIngredientNotFound: "Ingredient not found.",
}

// respondError writes the response for an error returned by a service.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	var conflict *service.ConflictError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidInput, "fields": verr.Fields})
		return
	case errors.As(err, &conflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": conflict.Message})
		return
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": middleware.MsgForbidden})
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to log in with provided credentials."})
		return
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"error": middleware.MsgBadToken})
		return
	}

	for sentinel, msg := range notFound {
		if errors.Is(err, sentinel) {
			c.JSON(http.StatusNotFound, gin.H{"error": msg})
			return
		}
	}

	_ = c.Error(err)
	logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
}
