package handlers

import (
	"errors"
	"net/http"

	"streaksage/internal/domain"
	"streaksage/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) DailyQuote(c *gin.Context) {
	q, err := h.Habits.DailyQuote(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoQuote) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No quotes available"})
			return
		}
		internalError(c, "failed to get daily quote", err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *Handler) Quotes(c *gin.Context) {
	quotes, err := h.Habits.Quotes(c.Request.Context())
	if err != nil {
		internalError(c, "failed to list quotes", err)
		return
	}
	c.JSON(http.StatusOK, quotes)
}

type createQuoteRequest struct {
	Text    string  `json:"text" binding:"required"`
	Source  string  `json:"source" binding:"required"`
	Chapter *string `json:"chapter"`
	Verse   *string `json:"verse"`
}

func (h *Handler) CreateQuote(c *gin.Context) {
	var req createQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid quote data")
		return
	}

	q, err := h.Habits.CreateQuote(c.Request.Context(), &domain.Quote{
		Text:    req.Text,
		Source:  req.Source,
		Chapter: req.Chapter,
		Verse:   req.Verse,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuote) {
			badRequest(c, "invalid quote data")
			return
		}
		internalError(c, "failed to create quote", err)
		return
	}
	c.JSON(http.StatusCreated, q)
}
