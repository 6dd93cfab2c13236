package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything whose reachability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store   Pinger
	backend string
	version string
	started time.Time
	// live update subscribers, may be nil
	clients func() int
}

func NewHealthHandler(store Pinger, backend, version string, clients func() int) *HealthHandler {
	return &HealthHandler{
		store:   store,
		backend: backend,
		version: version,
		started: time.Now(),
		clients: clients,
	}
}

type StorageStatus struct {
	Backend   string `json:"backend"`
	Healthy   bool   `json:"healthy"`
	LatencyMS int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

type ReadinessResponse struct {
	Status      string        `json:"status"`
	Version     string        `json:"version,omitempty"`
	Uptime      string        `json:"uptime"`
	Storage     StorageStatus `json:"storage"`
	LiveClients *int          `json:"liveClients,omitempty"`
}

func (h *HealthHandler) pingStorage(ctx context.Context, timeout time.Duration) StorageStatus {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	st := StorageStatus{Backend: h.backend, Healthy: true}
	start := time.Now()
	if err := h.store.Ping(ctx); err != nil {
		st.Healthy = false
		st.Error = err.Error()
	}
	st.LatencyMS = time.Since(start).Milliseconds()
	return st
}

// Liveness only proves the process answers.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness reports storage reachability and live feed subscribers.
func (h *HealthHandler) Readiness(c *gin.Context) {
	resp := ReadinessResponse{
		Status:  "ready",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Storage: h.pingStorage(c.Request.Context(), 5*time.Second),
	}
	if h.clients != nil {
		n := h.clients()
		resp.LiveClients = &n
	}

	code := http.StatusOK
	if !resp.Storage.Healthy {
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

func (h *HealthHandler) Health(c *gin.Context) {
	if st := h.pingStorage(c.Request.Context(), 3*time.Second); !st.Healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}
