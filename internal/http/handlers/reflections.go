package handlers

import (
	"errors"
	"net/http"

	"streaksage/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetReflection(c *gin.Context) {
	r, err := h.Habits.Reflection(c.Request.Context(), c.Param("date"))
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		badRequest(c, "invalid date")
	case errors.Is(err, service.ErrReflectionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Reflection not found"})
	case err != nil:
		internalError(c, "failed to get reflection", err)
	default:
		c.JSON(http.StatusOK, r)
	}
}

type saveReflectionRequest struct {
	Content *string `json:"content" binding:"required,max=10000"`
	Date    string  `json:"date" binding:"required,isodate"`
}

// SaveReflection creates or overwrites the reflection of a day.
func (h *Handler) SaveReflection(c *gin.Context) {
	var req saveReflectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid reflection data")
		return
	}

	r, err := h.Habits.SaveReflection(c.Request.Context(), req.Date, *req.Content)
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		badRequest(c, "invalid reflection data")
	case err != nil:
		internalError(c, "failed to save reflection", err)
	default:
		c.JSON(http.StatusOK, r)
	}
}
