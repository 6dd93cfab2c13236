package handlers

import (
	"errors"
	"net/http"

	"streaksage/internal/service"

	"github.com/gin-gonic/gin"
)

type historyQuery struct {
	StartDate string `form:"startDate" binding:"omitempty,isodate"`
	EndDate   string `form:"endDate" binding:"omitempty,isodate"`
}

func (h *Handler) StreakHistory(c *gin.Context) {
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid date range")
		return
	}

	rows, err := h.Habits.StreakHistory(c.Request.Context(), q.StartDate, q.EndDate)
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		badRequest(c, "invalid date range")
	case err != nil:
		internalError(c, "failed to get streak history", err)
	default:
		c.JSON(http.StatusOK, rows)
	}
}

type calendarQuery struct {
	Month string `form:"month" binding:"omitempty,yearmonth"`
}

func (h *Handler) Calendar(c *gin.Context) {
	var q calendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid month")
		return
	}

	cal, err := h.Habits.Calendar(c.Request.Context(), q.Month)
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		badRequest(c, "invalid month")
	case err != nil:
		internalError(c, "failed to build calendar", err)
	default:
		c.JSON(http.StatusOK, cal)
	}
}

func (h *Handler) CurrentDate(c *gin.Context) {
	c.JSON(http.StatusOK, h.Habits.CurrentDate())
}
