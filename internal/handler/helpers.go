package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/credoauth/credo/internal/middleware"
	appErr "github.com/credoauth/credo/internal/pkg/errors"
	"github.com/credoauth/credo/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(string)
	return userID
}

// bindJSON decodes and validates the request body; on failure it writes
// the 422 field-error payload and reports false.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ValidationFailed(c, err)
		return false
	}
	return true
}

// unknownEmail mirrors the validation-layer answer for an email that has
// no account, keeping it indistinguishable from a shape failure.
func unknownEmail(c *gin.Context) {
	response.FieldError(c, "email", "The selected email is invalid.")
}

// handleError maps the residual error set; endpoint-specific messages are
// handled before this is reached.
func handleError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case err == appErr.ErrUnauthorized:
		response.Message(c, http.StatusUnauthorized, "Unauthenticated.")
	case err == appErr.ErrNotFound:
		response.Message(c, http.StatusNotFound, "Not found.")
	case err == appErr.ErrInvalid:
		response.Message(c, http.StatusBadRequest, "Invalid request.")
	default:
		logutil.GetLogger(c.Request.Context()).Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.Message(c, http.StatusInternalServerError, "Internal error.")
	}
}
