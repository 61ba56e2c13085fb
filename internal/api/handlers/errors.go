// Package handlers provides HTTP request handlers.
package handlers

import (
	"errors"
	"net/http"

	"ai-config-console/internal/service/generation"
	"ai-config-console/internal/service/lifecycle"
	"ai-config-console/internal/service/llm"
	"ai-config-console/internal/service/playground"
	"ai-config-console/internal/service/ranker"

	"github.com/gin-gonic/gin"
)

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound),
		errors.Is(err, ranker.ErrNotFound),
		errors.Is(err, generation.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lifecycle.ErrConflict),
		errors.Is(err, lifecycle.ErrDuplicateVersion),
		errors.Is(err, lifecycle.ErrHasActiveGenerations):
		return http.StatusConflict
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrEditLocked),
		errors.Is(err, generation.ErrInactiveResource):
		return http.StatusUnprocessableEntity
	case errors.Is(err, lifecycle.ErrInvalidVersion),
		errors.Is(err, lifecycle.ErrInvalidType),
		errors.Is(err, ranker.ErrInvalidPriority),
		errors.Is(err, playground.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, generation.ErrProvider),
		errors.Is(err, llm.ErrNoCredential):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a typed failure as a single error message.
func respondError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}
