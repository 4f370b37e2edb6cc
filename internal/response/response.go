package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medirank/service-hospital/internal/domain"
)

// Success writes the payload with status 200.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes the payload with status 201.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// BadRequest writes a 400 with an error message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// NotFound writes a 404 with an error message.
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"error": message})
}

// Error maps a domain error to its HTTP status. Provider errors surface the
// provider's own status so the caller sees what the upstream said.
func Error(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		return
	}

	var notFoundErr *domain.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Message})
		return
	}

	var providerErr *domain.ProviderError
	if errors.As(err, &providerErr) {
		status := providerErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"error":    providerErr.Detail,
			"provider": providerErr.Provider,
		})
		return
	}

	var unavailableErr *domain.OccupancyUnavailableError
	if errors.As(err, &unavailableErr) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": unavailableErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
