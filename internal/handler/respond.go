package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unicorn-hrms/backend/internal/model"
	"github.com/unicorn-hrms/backend/internal/service"
)

func respondOK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, model.SuccessResponse(data, message))
}

// respondError maps service error kinds to HTTP statuses. Anything outside
// the known kinds is logged in full and surfaced as a generic failure, so
// store errors never reach the caller.
func respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrAuthentication), errors.Is(err, service.ErrToken):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	default:
		log.Printf("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, model.FailureResponse("internal server error"))
		return
	}
	c.JSON(status, model.FailureResponse(err.Error()))
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, model.FailureResponse(message))
}
