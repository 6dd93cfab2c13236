package handlers

import (
	"errors"
	"net/http"

	"streaksage/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Profile(c *gin.Context) {
	u, err := h.Habits.Profile(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		internalError(c, "failed to get user", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.Habits.Stats(c.Request.Context())
	if err != nil {
		internalError(c, "failed to get stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
