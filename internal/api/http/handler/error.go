package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akorchak/urlstash-server/internal/model"
)

// respondError maps domain sentinels to HTTP status codes in one place.
// Not-found, not-owned and not-yet-fetched all share the same 404 body.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, model.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect email or password"})
	case errors.Is(err, model.ErrInvalidSourceURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source url"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
