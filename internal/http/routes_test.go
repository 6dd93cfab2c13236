package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"streaksage/internal/domain"
	"streaksage/internal/repository"
	"streaksage/internal/service"
	"streaksage/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.March, 12, 21, 40, 0, 0, time.UTC)

type testAPI struct {
	router *gin.Engine
	store  *repository.MemoryStore
	hub    *ws.Hub
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	require.NoError(t, repository.Seed(context.Background(), store))
	hub := ws.NewHub()
	t.Cleanup(hub.Close)
	habits := service.NewHabitService(store, time.UTC, hub).WithClock(func() time.Time { return testNow })

	r := gin.New()
	RegisterRoutes(r, habits, hub, Options{Version: "test", Backend: "memory"})
	return &testAPI{router: r, store: store, hub: hub}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/health", nil).Code)

	w := api.do(t, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ready", body["status"])
	storage := body["storage"].(map[string]any)
	assert.Equal(t, "memory", storage["backend"])
	assert.Equal(t, true, storage["healthy"])
	assert.Equal(t, float64(0), body["liveClients"])
}

func TestUserEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/user/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	u := decode[map[string]any](t, w)
	assert.Equal(t, "user", u["username"])
	assert.Equal(t, float64(47), u["currentStreak"])

	w = api.do(t, http.MethodGet, "/api/user/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[domain.UserStats](t, w)
	assert.Len(t, stats.WeekProgress, 7)
	assert.Equal(t, 50, stats.NextMilestone)
	assert.Equal(t, "🔥 Unstoppable", stats.Momentum)
}

func TestProfileMissingUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := ws.NewHub()
	habits := service.NewHabitService(repository.NewMemoryStore(), time.UTC, hub)
	r := gin.New()
	RegisterRoutes(r, habits, hub, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"user not found"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/quote/daily", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompleteTaskEndpoint(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/tasks/1/complete", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	c := decode[domain.TaskCompletion](t, w)
	assert.Equal(t, int64(1), c.TaskID)
	assert.Equal(t, "2025-03-12", c.CompletedAt)

	w = api.do(t, http.MethodPost, "/api/tasks/1/complete", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Task already completed today"}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/api/tasks/abc/complete", nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/api/tasks/404/complete", nil).Code)

	w = api.do(t, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decode[[]map[string]any](t, w)
	require.Len(t, tasks, 6)
	assert.Equal(t, true, tasks[0]["isCompletedToday"])
	assert.Equal(t, "2025-03-12", tasks[0]["completionDate"])
	assert.Equal(t, float64(8), tasks[0]["streak"])
	assert.Equal(t, false, tasks[1]["isCompletedToday"])
	assert.NotContains(t, tasks[1], "completionDate")
}

func TestListTasksWeekendParam(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/tasks?weekend=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 6)

	for _, v := range []string{"maybe", "yes", "1", ""} {
		w := api.do(t, http.MethodGet, "/api/tasks?weekend="+v, nil)
		require.Equal(t, http.StatusOK, w.Code, "weekend=%q", v)
		assert.Len(t, decode[[]map[string]any](t, w), 6)
	}
}

func TestTaskCRUD(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/api/tasks", map[string]any{"title": "No emoji"}).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/api/tasks", "{not json").Code)

	w := api.do(t, http.MethodPost, "/api/tasks", map[string]any{"title": "Walk", "emoji": "🚶", "isWeekend": true})
	require.Equal(t, http.StatusCreated, w.Code)
	task := decode[domain.Task](t, w)
	assert.Equal(t, int64(7), task.ID)
	assert.Equal(t, 0, task.Streak)
	assert.True(t, task.IsWeekend)

	w = api.do(t, http.MethodPatch, "/api/tasks/7", map[string]any{"title": "Long walk", "isActive": false})
	require.Equal(t, http.StatusOK, w.Code)
	patched := decode[domain.Task](t, w)
	assert.Equal(t, "Long walk", patched.Title)
	assert.False(t, patched.IsActive)

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPatch, "/api/tasks/7", map[string]any{"title": ""}).Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodPatch, "/api/tasks/99", map[string]any{"title": "x"}).Code)

	w = api.do(t, http.MethodGet, "/api/tasks/7/completions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, "/api/tasks/7", nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodDelete, "/api/tasks/7", nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/tasks/7/completions", nil).Code)
}

func TestQuoteEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/quote/daily", nil)
	require.Equal(t, http.StatusOK, w.Code)
	q := decode[domain.Quote](t, w)
	// 2025-03-12 is day 71; 71 % 5 = 1
	assert.Equal(t, int64(2), q.ID)
	assert.Equal(t, "Bhagavad Gita", q.Source)

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/api/quotes", map[string]any{"text": "x"}).Code)
	w = api.do(t, http.MethodPost, "/api/quotes", map[string]any{"text": "Keep going.", "source": "Anon"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[map[string]any](t, w)
	assert.Nil(t, created["chapter"])

	w = api.do(t, http.MethodGet, "/api/quotes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Quote](t, w), 6)
}

func TestReflectionEndpoints(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/reflections/2025-03-12", nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/reflections/March", nil).Code)

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/api/reflections", map[string]any{"date": "2025-03-12"}).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/api/reflections", map[string]any{"content": "x", "date": "12/03/2025"}).Code)

	w := api.do(t, http.MethodPost, "/api/reflections", map[string]any{"content": "steady", "date": "2025-03-12"})
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[domain.Reflection](t, w)

	w = api.do(t, http.MethodPost, "/api/reflections", map[string]any{"content": "", "date": "2025-03-12"})
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[domain.Reflection](t, w)
	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, second.Content)

	w = api.do(t, http.MethodGet, "/api/reflections/2025-03-12", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first.ID, decode[domain.Reflection](t, w).ID)
}

func TestStreakEndpoints(t *testing.T) {
	api := newTestAPI(t)

	for id := 1; id <= 3; id++ {
		require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/tasks/"+strconv.Itoa(id)+"/complete", nil).Code)
	}

	w := api.do(t, http.MethodGet, "/api/streak/history?startDate=2025-03-01&endDate=2025-03-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode[[]domain.StreakHistory](t, w)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].CompletedTasks)
	assert.Equal(t, 50, rows[0].CompletionRate)

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/streak/history?startDate=2025-3-1", nil).Code)

	w = api.do(t, http.MethodGet, "/api/streak/calendar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cal := decode[domain.Calendar](t, w)
	assert.Equal(t, "2025-03", cal.Month)
	assert.Len(t, cal.Days, 31)
	assert.Equal(t, domain.CalendarStatusToday, cal.Days[11].Status)
	assert.Equal(t, 50, cal.Days[11].CompletionRate)

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/streak/calendar?month=2025-13", nil).Code)

	w = api.do(t, http.MethodGet, "/api/date/current", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[domain.DateInfo](t, w)
	assert.Equal(t, "2025-03-12", info.Date)
	assert.Equal(t, 21, info.Hour)
	assert.True(t, info.IsEveningReminderTime)
	assert.False(t, info.IsWeekend)
}

func TestCompletionIsPushedToLiveClients(t *testing.T) {
	api := newTestAPI(t)
	srv := httptest.NewServer(api.router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() ws.Event {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var e ws.Event
		require.NoError(t, conn.ReadJSON(&e))
		return e
	}
	assert.Equal(t, ws.MsgReady, read().Type)

	res, err := http.Post(srv.URL+"/api/tasks/2/complete", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	assert.Equal(t, service.EventTaskCompleted, read().Type)
	assert.Equal(t, service.EventProgressUpdated, read().Type)
}
