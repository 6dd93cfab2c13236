package handlers

import (
	"errors"
	"net/http"

	"streaksage/internal/domain"
	"streaksage/internal/service"

	"github.com/gin-gonic/gin"
)

// ListTasks returns today's active tasks. Only weekend=true counts as set,
// and the flag does not filter.
func (h *Handler) ListTasks(c *gin.Context) {
	var weekend *bool
	if v, ok := c.GetQuery("weekend"); ok {
		on := v == "true"
		weekend = &on
	}

	tasks, err := h.Habits.ListTasks(c.Request.Context(), weekend)
	if err != nil {
		internalError(c, "failed to list tasks", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

type createTaskRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=1000"`
	Emoji       string `json:"emoji" binding:"required,max=32"`
	IsWeekend   bool   `json:"isWeekend"`
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid task data")
		return
	}

	task, err := h.Habits.CreateTask(c.Request.Context(), service.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Emoji:       req.Emoji,
		IsWeekend:   req.IsWeekend,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidTask) {
			badRequest(c, "invalid task data")
			return
		}
		internalError(c, "failed to create task", err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

type updateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Emoji       *string `json:"emoji" binding:"omitempty,min=1,max=32"`
	IsWeekend   *bool   `json:"isWeekend"`
	IsActive    *bool   `json:"isActive"`
}

func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid task data")
		return
	}

	task, err := h.Habits.UpdateTask(c.Request.Context(), id, domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Emoji:       req.Emoji,
		IsWeekend:   req.IsWeekend,
		IsActive:    req.IsActive,
	})
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, service.ErrInvalidTask):
		badRequest(c, "invalid task data")
	case err != nil:
		internalError(c, "failed to update task", err)
	default:
		c.JSON(http.StatusOK, task)
	}
}

func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	err := h.Habits.DeleteTask(c.Request.Context(), id)
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case err != nil:
		internalError(c, "failed to delete task", err)
	default:
		c.Status(http.StatusNoContent)
	}
}

func (h *Handler) TaskCompletions(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	list, err := h.Habits.TaskCompletions(c.Request.Context(), id)
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case err != nil:
		internalError(c, "failed to list completions", err)
	default:
		c.JSON(http.StatusOK, list)
	}
}

// CompleteTask marks the task done for today. Unknown, inactive and
// already completed tasks are all client errors.
func (h *Handler) CompleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	completion, err := h.Habits.CompleteTask(c.Request.Context(), id)
	switch {
	case errors.Is(err, service.ErrAlreadyCompleted):
		badRequest(c, "Task already completed today")
	case errors.Is(err, service.ErrTaskNotFound):
		badRequest(c, "task not found")
	case err != nil:
		internalError(c, "failed to complete task", err)
	default:
		c.JSON(http.StatusCreated, completion)
	}
}
