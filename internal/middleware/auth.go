package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/types"
)

// Context keys set by the auth middleware
const (
	ContextUserID = "user_id"
	ContextClaims = "claims"
)

// Messages returned with 401 and 403 responses
const (
	MsgNoCredentials = "Authentication credentials were not provided."
	MsgBadHeader     = "Invalid token header."
	MsgBadToken      = "Invalid token."
	MsgForbidden     = "You do not have permission to perform this action."
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// bearerToken extracts the token from "Bearer <token>" or "Token <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", false
	}
	switch strings.ToLower(parts[0]) {
	case "bearer", "token":
		return parts[1], true
	}
	return "", false
}

// authenticate validates the Authorization header and stores the claims. It
// returns the rejection message, or "" when the token is valid or absent.
func authenticate(c *gin.Context, validator TokenValidator) (sent bool, reject string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return false, ""
	}
	token, ok := bearerToken(header)
	if !ok {
		return true, MsgBadHeader
	}
	claims, err := validator.ValidateToken(c.Request.Context(), token)
	if err != nil {
		logging.Ctx(c.Request.Context()).Debug().Err(err).Msg("token rejected")
		return true, MsgBadToken
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextClaims, claims)

	l := logging.Ctx(c.Request.Context()).With().Uint("user_id", claims.UserID).Logger()
	c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), l))
	return true, ""
}

// AuthMiddleware creates a middleware that rejects requests without a valid token
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sent, reject := authenticate(c, validator)
		if !sent {
			reject = MsgNoCredentials
		}
		if reject != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reject})
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the user when a token is sent. A request without
// a token continues anonymously; a request with a bad token is rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, reject := authenticate(c, validator); reject != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reject})
			return
		}
		c.Next()
	}
}

// RequireStaff allows only staff users. It must run after AuthMiddleware.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": MsgNoCredentials})
			return
		}
		if !claims.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": MsgForbidden})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or 0 for anonymous requests.
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func Claims(c *gin.Context) *types.TokenClaims {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(*types.TokenClaims); ok {
			return claims
		}
	}
	return nil
}
