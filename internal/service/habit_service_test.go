package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"streaksage/internal/domain"
	"streaksage/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	typ  string
	data any
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Publish(eventType string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{eventType, data})
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.typ)
	}
	return out
}

var fixedNow = time.Date(2025, time.March, 12, 9, 15, 0, 0, time.UTC)

func newTestService(t *testing.T) (*HabitService, *repository.MemoryStore, *recorder) {
	t.Helper()
	store := repository.NewMemoryStore()
	require.NoError(t, repository.Seed(context.Background(), store))
	rec := &recorder{}
	svc := NewHabitService(store, time.UTC, rec).WithClock(func() time.Time { return fixedNow })
	return svc, store, rec
}

func TestCompleteTask(t *testing.T) {
	svc, store, rec := newTestService(t)
	ctx := context.Background()

	c, err := svc.CompleteTask(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.TaskID)
	assert.Equal(t, "2025-03-12", c.CompletedAt)

	task, err := store.GetTask(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, task.Streak)

	hist, err := store.ListStreakHistory(ctx, domain.DefaultUserID, "2025-03-12", "2025-03-12")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, 1, hist[0].CompletedTasks)
	assert.Equal(t, 6, hist[0].TotalTasks)
	assert.Equal(t, 17, hist[0].CompletionRate)
	assert.False(t, hist[0].IsPerfectDay)

	u, err := store.GetUser(ctx, domain.DefaultUserID)
	require.NoError(t, err)
	assert.Equal(t, 47, u.CurrentStreak, "partial day leaves the user streak alone")

	assert.Equal(t, []string{EventTaskCompleted, EventProgressUpdated}, rec.types())
}

func TestCompleteTaskTwiceSameDay(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CompleteTask(ctx, 2)
	require.NoError(t, err)
	_, err = svc.CompleteTask(ctx, 2)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	task, err := store.GetTask(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 13, task.Streak, "rejected completion must not mutate")

	list, err := store.ListCompletionsByTask(ctx, domain.DefaultUserID, 2)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCompleteTaskRejectsUnknownAndInactive(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CompleteTask(ctx, 999)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	inactive := false
	_, err = svc.UpdateTask(ctx, 3, domain.TaskPatch{IsActive: &inactive})
	require.NoError(t, err)
	_, err = svc.CompleteTask(ctx, 3)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestPerfectDayBumpsUserStreak(t *testing.T) {
	svc, store, rec := newTestService(t)
	ctx := context.Background()

	for id := int64(1); id <= 6; id++ {
		_, err := svc.CompleteTask(ctx, id)
		require.NoError(t, err)
	}

	u, err := store.GetUser(ctx, domain.DefaultUserID)
	require.NoError(t, err)
	assert.Equal(t, 48, u.CurrentStreak)
	assert.Equal(t, 48, u.BestStreak)
	assert.Equal(t, 1248, u.TotalTasks)
	assert.Equal(t, 35, u.PerfectDays)

	hist, err := svc.StreakHistory(ctx, "2025-03-12", "")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, 100, hist[0].CompletionRate)
	assert.True(t, hist[0].IsPerfectDay)

	last := rec.events[len(rec.events)-1]
	require.Equal(t, EventProgressUpdated, last.typ)
	evt := last.data.(ProgressEvent)
	require.NotNil(t, evt.User)
	assert.Equal(t, 48, evt.User.CurrentStreak)
}

func TestCompleteTaskConcurrent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		dup     int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CompleteTask(ctx, 4)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, ErrAlreadyCompleted):
				dup++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, 15, dup)
}

func TestListTasksAnnotatesToday(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CompleteTask(ctx, 5)
	require.NoError(t, err)

	weekend := true
	tasks, err := svc.ListTasks(ctx, &weekend)
	require.NoError(t, err)
	require.Len(t, tasks, 6, "weekend flag does not filter")
	for _, task := range tasks {
		if task.ID == 5 {
			assert.True(t, task.IsCompletedToday)
			assert.Equal(t, "2025-03-12", task.CompletionDate)
		} else {
			assert.False(t, task.IsCompletedToday)
			assert.Empty(t, task.CompletionDate)
		}
	}
}

func TestTaskLifecycle(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, NewTask{Title: "  ", Emoji: "x"})
	assert.ErrorIs(t, err, ErrInvalidTask)

	task, err := svc.CreateTask(ctx, NewTask{Title: "Stretch", Emoji: "🤸", IsWeekend: true})
	require.NoError(t, err)
	assert.Equal(t, int64(7), task.ID)
	assert.True(t, task.IsActive)

	title := "Stretch more"
	updated, err := svc.UpdateTask(ctx, task.ID, domain.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Stretch more", updated.Title)
	assert.Equal(t, "🤸", updated.Emoji)

	_, err = svc.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	completions, err := svc.TaskCompletions(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, completions, 1)

	require.NoError(t, svc.DeleteTask(ctx, task.ID))
	assert.ErrorIs(t, svc.DeleteTask(ctx, task.ID), ErrTaskNotFound)
	_, err = svc.UpdateTask(ctx, task.ID, domain.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = svc.TaskCompletions(ctx, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	again, err := svc.CreateTask(ctx, NewTask{Title: "Again", Emoji: "🔁"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), again.ID, "ids are never reused")

	assert.Contains(t, rec.types(), EventTaskDeleted)
}

func TestDailyQuote(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		now    time.Time
		wantID int64
	}{
		{time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC), 2},   // day 1
		{time.Date(2025, time.January, 5, 12, 0, 0, 0, time.UTC), 1},   // day 5
		{time.Date(2024, time.December, 31, 12, 0, 0, 0, time.UTC), 2}, // day 366
	}
	for _, tc := range cases {
		now := tc.now
		svc.WithClock(func() time.Time { return now })
		q, err := svc.DailyQuote(ctx)
		require.NoError(t, err)
		assert.Equal(t, tc.wantID, q.ID, now.Format(time.DateOnly))

		again, err := svc.DailyQuote(ctx)
		require.NoError(t, err)
		assert.Equal(t, q.ID, again.ID, "selection is stable within a day")
	}
}

func TestDailyQuoteEmpty(t *testing.T) {
	svc := NewHabitService(repository.NewMemoryStore(), time.UTC, nil)
	_, err := svc.DailyQuote(context.Background())
	assert.ErrorIs(t, err, ErrNoQuote)
}

func TestCreateQuote(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateQuote(ctx, &domain.Quote{Text: "x"})
	assert.ErrorIs(t, err, ErrInvalidQuote)

	q, err := svc.CreateQuote(ctx, &domain.Quote{Text: "Act.", Source: "Me"})
	require.NoError(t, err)
	assert.True(t, q.IsActive)

	all, err := svc.Quotes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestReflections(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	_, err := svc.Reflection(ctx, "2025-03-12")
	assert.ErrorIs(t, err, ErrReflectionNotFound)

	first, err := svc.SaveReflection(ctx, "2025-03-12", "good day")
	require.NoError(t, err)
	second, err := svc.SaveReflection(ctx, "2025-03-12", "great day")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := svc.Reflection(ctx, "2025-03-12")
	require.NoError(t, err)
	assert.Equal(t, "great day", got.Content)

	_, err = svc.SaveReflection(ctx, "2025-3-12", "bad")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = svc.Reflection(ctx, "yesterday")
	assert.ErrorIs(t, err, ErrInvalidDate)

	assert.Contains(t, rec.types(), EventReflectionSaved)
}

func TestStreakHistoryRejectsBadBounds(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.StreakHistory(context.Background(), "2025-13-01", "")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestStats(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	for _, p := range []domain.StreakHistory{
		domain.NewDailyProgress(domain.DefaultUserID, "2025-03-05", 6, 6), // outside the week
		domain.NewDailyProgress(domain.DefaultUserID, "2025-03-06", 5, 6),
		domain.NewDailyProgress(domain.DefaultUserID, "2025-03-09", 6, 6),
		domain.NewDailyProgress(domain.DefaultUserID, "2025-03-12", 3, 6),
	} {
		_, err := store.UpsertDailyProgress(ctx, &p)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{83, 0, 0, 100, 0, 0, 50}, stats.WeekProgress)
	assert.Equal(t, 50, stats.TodayProgress)
	assert.Equal(t, 2, stats.StrongDaysThisWeek)
	assert.Equal(t, 47, stats.CurrentStreak)
	assert.Equal(t, 50, stats.NextMilestone)
	assert.Equal(t, "🔥 Unstoppable", stats.Momentum)
	assert.Equal(t, "Monthly Master! 📅", stats.Achievement.Title)
}

func TestStatsWithoutUser(t *testing.T) {
	svc := NewHabitService(repository.NewMemoryStore(), time.UTC, nil)
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, make([]int, 7), stats.WeekProgress)
	assert.Equal(t, 7, stats.NextMilestone)
	assert.Zero(t, stats.CurrentStreak)

	_, err = svc.Profile(context.Background())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCalendar(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	for _, p := range []domain.StreakHistory{
		domain.NewDailyProgress(domain.DefaultUserID, "2025-03-01", 6, 6),
		domain.NewDailyProgress(domain.DefaultUserID, "2025-03-02", 2, 6),
		domain.NewDailyProgress(domain.DefaultUserID, "2025-03-03", 0, 6),
	} {
		_, err := store.UpsertDailyProgress(ctx, &p)
		require.NoError(t, err)
	}

	cal, err := svc.Calendar(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2025-03", cal.Month)
	require.Len(t, cal.Days, 31)
	assert.Equal(t, domain.CalendarStatusPerfect, cal.Days[0].Status)
	assert.Equal(t, domain.CalendarStatusPartial, cal.Days[1].Status)
	assert.Equal(t, 33, cal.Days[1].CompletionRate)
	assert.Equal(t, domain.CalendarStatusMissed, cal.Days[2].Status)
	assert.Equal(t, domain.CalendarStatusNone, cal.Days[3].Status)
	assert.Equal(t, domain.CalendarStatusToday, cal.Days[11].Status)
	assert.Equal(t, domain.CalendarStatusFuture, cal.Days[12].Status)

	feb, err := svc.Calendar(ctx, "2024-02")
	require.NoError(t, err)
	assert.Len(t, feb.Days, 29)

	_, err = svc.Calendar(ctx, "2025-3")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestTodayUsesConfiguredZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	late := time.Date(2025, time.March, 10, 21, 45, 0, 0, time.UTC)
	svc := NewHabitService(repository.NewMemoryStore(), tokyo, nil).WithClock(func() time.Time { return late })

	assert.Equal(t, "2025-03-11", svc.Today())
	info := svc.CurrentDate()
	assert.Equal(t, "2025-03-11", info.Date)
	assert.Equal(t, 6, info.Hour)
	assert.True(t, info.IsMorningQuoteTime)
	assert.False(t, info.IsEveningReminderTime)
}

func TestThreeOfSixCompletedIsHalfDone(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		_, err := svc.CompleteTask(ctx, id)
		require.NoError(t, err)
	}

	hist, err := svc.StreakHistory(ctx, "2025-03-12", "2025-03-12")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, 3, hist[0].CompletedTasks)
	assert.Equal(t, 6, hist[0].TotalTasks)
	assert.Equal(t, 50, hist[0].CompletionRate)
	assert.False(t, hist[0].IsPerfectDay)

	u, err := store.GetUser(ctx, domain.DefaultUserID)
	require.NoError(t, err)
	assert.Equal(t, 47, u.CurrentStreak)
	assert.Equal(t, 34, u.PerfectDays)

	tasks, err := svc.ListTasks(ctx, nil)
	require.NoError(t, err)
	done := 0
	for _, task := range tasks {
		if task.IsCompletedToday {
			done++
		}
	}
	assert.Equal(t, 3, done)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, stats.WeekProgress[6])
}

// pausingStore holds the first GetTask after arm() until release is closed.
type pausingStore struct {
	*repository.MemoryStore
	armed   atomic.Bool
	reached chan struct{}
	release chan struct{}
}

func (p *pausingStore) arm() {
	p.reached = make(chan struct{})
	p.release = make(chan struct{})
	p.armed.Store(true)
}

func (p *pausingStore) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := p.MemoryStore.GetTask(ctx, id)
	if p.armed.CompareAndSwap(true, false) {
		close(p.reached)
		<-p.release
	}
	return t, err
}

func TestUpdateTaskKeepsConcurrentStreakBump(t *testing.T) {
	mem := repository.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, repository.Seed(ctx, mem))
	store := &pausingStore{MemoryStore: mem}
	svc := NewHabitService(store, time.UTC, nil).WithClock(func() time.Time { return fixedNow })

	store.arm()
	title := "Sunrise Meditation"
	patchErr := make(chan error, 1)
	go func() {
		_, err := svc.UpdateTask(ctx, 1, domain.TaskPatch{Title: &title})
		patchErr <- err
	}()
	<-store.reached

	completeErr := make(chan error, 1)
	go func() {
		_, err := svc.CompleteTask(ctx, 1)
		completeErr <- err
	}()

	// let the completion either finish or queue behind the update
	select {
	case err := <-completeErr:
		completeErr <- err
	case <-time.After(50 * time.Millisecond):
	}
	close(store.release)

	require.NoError(t, <-patchErr)
	require.NoError(t, <-completeErr)

	task, err := mem.GetTask(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, title, task.Title)
	assert.Equal(t, 8, task.Streak)

	completions, err := svc.TaskCompletions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, completions, 1)
}
