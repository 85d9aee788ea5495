package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-organizer/backend/internal/service"
	"github.com/pageza/recipe-organizer/backend/internal/types"
)

const internalErrorMessage = "Internal server error"

// respondError maps service errors to status codes. Unexpected errors are
// logged and reported to the client without detail.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var verr *service.ValidationError
	var aerr *service.AuthorizationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, types.Error(verr.Message))
	case errors.As(err, &aerr):
		c.JSON(http.StatusForbidden, types.Error("Not authorized to "+aerr.Action+" this recipe"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, types.Error("Forbidden"))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, types.Error("User with this email or username already exists"))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, types.Error("Invalid email or password"))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, types.Error("Resource not found"))
	default:
		_ = c.Error(err)
		log.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusInternalServerError, types.Error(internalErrorMessage))
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, types.Error(message))
}
