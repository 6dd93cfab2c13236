package handlers

import (
	"net/http"
	"strconv"

	"streaksage/internal/logger"
	"streaksage/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Habits *service.HabitService
}

func NewHandler(habits *service.HabitService) *Handler {
	RegisterValidators()
	return &Handler{Habits: habits}
}

// taskID parses the :taskId path parameter.
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("taskId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return 0, false
	}
	return id, true
}

// internalError logs err with the request logger and answers 500.
func internalError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	logger.WithContext(c.Request.Context()).Errorw(msg, "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
