package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	domainerrors "github.com/pageza/foodgram/backend/internal/errors"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextClaims   = "token_claims"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// extractToken reads "Token <jwt>" or "Bearer <jwt>". ok is false when the
// header is present but malformed.
func extractToken(header string) (token string, present, ok bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false, true
	}
	scheme, value, found := strings.Cut(header, " ")
	if !found || strings.TrimSpace(value) == "" {
		return "", true, false
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return "", true, false
	}
	return strings.TrimSpace(value), true, true
}

func authenticate(c *gin.Context, validator TokenValidator, required bool) {
	token, present, ok := extractToken(c.GetHeader("Authorization"))
	if !present {
		if required {
			AbortWithError(c, domainerrors.Unauthorized("Authentication credentials were not provided."))
			return
		}
		c.Next()
		return
	}
	if !ok {
		AbortWithError(c, domainerrors.Unauthorized("Invalid authorization header format."))
		return
	}

	claims, err := validator.ValidateToken(c.Request.Context(), token)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Store user info in context
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUsername, claims.Username)
	c.Set(ContextClaims, claims)
	c.Next()
}

// AuthMiddleware rejects requests without a valid token.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, validator, true)
	}
}

// OptionalAuthMiddleware lets anonymous requests through but rejects invalid tokens.
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, validator, false)
	}
}

// CurrentUserID returns the authenticated user's id, or zero for anonymous requests.
func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func CurrentUsername(c *gin.Context) string {
	return c.GetString(ContextUsername)
}

func CurrentClaims(c *gin.Context) *types.TokenClaims {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(*types.TokenClaims); ok {
			return claims
		}
	}
	return nil
}
