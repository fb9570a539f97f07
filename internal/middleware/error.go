package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "github.com/pageza/foodgram/backend/internal/errors"
	"github.com/pageza/foodgram/backend/internal/logging"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    domainerrors.Code `json:"code"`
	Details any               `json:"details,omitempty"`
}

// WriteError renders err as JSON. Domain errors keep their message; anything
// else is logged and hidden behind a generic 500.
func WriteError(c *gin.Context, err error) {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		domainErr = domainerrors.Internal("internal server error", err)
	}

	status := domainErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(status, ErrorResponse{Error: "Internal Server Error", Code: domainerrors.CodeInternal})
		return
	}

	c.JSON(status, ErrorResponse{Error: domainErr.Message, Code: domainErr.Code, Details: domainErr.Details})
}

// AbortWithError writes err and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	WriteError(c, err)
	c.Abort()
}

// Recovery turns panics into a JSON 500 response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.Ctx(c.Request.Context()).Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal Server Error",
			Code:  domainerrors.CodeInternal,
		})
	})
}
