package http

import (
	"time"

	"streaksage/internal/http/handlers"
	"streaksage/internal/http/middleware"
	"streaksage/internal/service"
	"streaksage/internal/ws"

	"github.com/gin-gonic/gin"
)

// Options tunes route registration.
type Options struct {
	Version       string
	Backend       string
	RateLimit     int
	RateWindow    time.Duration
	AllowedOrigin string
}

// RegisterRoutes mounts the health probes, the JSON API and the live feed.
func RegisterRoutes(r *gin.Engine, habits *service.HabitService, hub *ws.Hub, opts Options) {
	h := handlers.NewHandler(habits)
	healthHandler := handlers.NewHealthHandler(habits, opts.Backend, opts.Version, hub.Count)

	if opts.RateLimit <= 0 {
		opts.RateLimit = 120
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(opts.RateLimit, opts.RateWindow))
	registerAPIRoutes(api, h)

	// Live updates
	r.GET("/ws", ws.HandleWS(hub, opts.AllowedOrigin))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler) {
	// User
	api.GET("/user/profile", h.Profile)
	api.GET("/user/stats", h.Stats)

	// Tasks
	api.GET("/tasks", h.ListTasks)
	api.POST("/tasks", h.CreateTask)
	api.PATCH("/tasks/:taskId", h.UpdateTask)
	api.DELETE("/tasks/:taskId", h.DeleteTask)
	api.GET("/tasks/:taskId/completions", h.TaskCompletions)
	api.POST("/tasks/:taskId/complete", h.CompleteTask)

	// Quotes
	api.GET("/quote/daily", h.DailyQuote)
	api.GET("/quotes", h.Quotes)
	api.POST("/quotes", h.CreateQuote)

	// Reflections
	api.GET("/reflections/:date", h.GetReflection)
	api.POST("/reflections", h.SaveReflection)

	// Streaks
	api.GET("/streak/history", h.StreakHistory)
	api.GET("/streak/calendar", h.Calendar)

	api.GET("/date/current", h.CurrentDate)
}
