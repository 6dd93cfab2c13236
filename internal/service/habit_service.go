package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"streaksage/internal/domain"
	"streaksage/internal/logger"
	"streaksage/internal/repository"
)

// HabitService implements the tracker's operations for the default user.
type HabitService struct {
	store  repository.Store
	events Publisher
	loc    *time.Location
	clock  func() time.Time
	userID int64

	// serializes task writes and the completion flow
	taskMu sync.Mutex
}

// NewHabitService wires the service. A nil events publisher discards events
// and a nil loc means time.Local.
func NewHabitService(store repository.Store, loc *time.Location, events Publisher) *HabitService {
	if loc == nil {
		loc = time.Local
	}
	if events == nil {
		events = nopPublisher{}
	}
	return &HabitService{
		store:  store,
		events: events,
		loc:    loc,
		clock:  time.Now,
		userID: domain.DefaultUserID,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *HabitService) WithClock(now func() time.Time) *HabitService {
	s.clock = now
	return s
}

func (s *HabitService) now() time.Time {
	return s.clock().In(s.loc)
}

// Today returns the current date in the configured time zone.
func (s *HabitService) Today() string {
	return domain.FormatDate(s.now())
}

// --- User ---

func (s *HabitService) Profile(ctx context.Context) (*domain.User, error) {
	u, err := s.store.GetUser(ctx, s.userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Stats aggregates the dashboard numbers. A missing user yields zero stats.
func (s *HabitService) Stats(ctx context.Context) (domain.UserStats, error) {
	u, err := s.Profile(ctx)
	if errors.Is(err, ErrUserNotFound) {
		return domain.NewUserStats(nil, nil), nil
	}
	if err != nil {
		return domain.UserStats{}, err
	}

	week, err := s.weekProgress(ctx)
	if err != nil {
		return domain.UserStats{}, err
	}
	return domain.NewUserStats(u, week), nil
}

// weekProgress returns the completion rates of the 7 days ending today.
func (s *HabitService) weekProgress(ctx context.Context) ([]int, error) {
	today := s.now()
	start := domain.FormatDate(today.AddDate(0, 0, -6))
	rows, err := s.store.ListStreakHistory(ctx, s.userID, start, domain.FormatDate(today))
	if err != nil {
		return nil, fmt.Errorf("list week history: %w", err)
	}

	rates := make(map[string]int, len(rows))
	for _, h := range rows {
		rates[h.Date] = h.CompletionRate
	}
	week := make([]int, 7)
	for i := range week {
		week[i] = rates[domain.FormatDate(today.AddDate(0, 0, i-6))]
	}
	return week, nil
}

// --- Tasks ---

// ListTasks returns active tasks annotated with today's completion state.
// weekend is accepted for API compatibility and does not filter.
func (s *HabitService) ListTasks(ctx context.Context, weekend *bool) ([]domain.TaskWithCompletion, error) {
	_ = weekend

	tasks, err := s.store.ListActiveTasks(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	today := s.Today()
	done, err := s.store.ListCompletionsByDate(ctx, s.userID, today)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	completed := make(map[int64]bool, len(done))
	for _, c := range done {
		completed[c.TaskID] = true
	}

	out := make([]domain.TaskWithCompletion, 0, len(tasks))
	for _, t := range tasks {
		item := domain.TaskWithCompletion{Task: *t}
		if completed[t.ID] {
			item.IsCompletedToday = true
			item.CompletionDate = today
		}
		out = append(out, item)
	}
	return out, nil
}

type NewTask struct {
	Title       string
	Description string
	Emoji       string
	IsWeekend   bool
}

func (s *HabitService) CreateTask(ctx context.Context, in NewTask) (*domain.Task, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Emoji) == "" {
		return nil, ErrInvalidTask
	}
	t := &domain.Task{
		UserID:      s.userID,
		Title:       in.Title,
		Description: in.Description,
		Emoji:       in.Emoji,
		IsWeekend:   in.IsWeekend,
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.events.Publish(EventTaskCreated, t)
	return t, nil
}

// ownTask loads a task of the default user, active or not.
func (s *HabitService) ownTask(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	if t.UserID != s.userID {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

func (s *HabitService) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, ErrInvalidTask
	}
	if patch.Emoji != nil && strings.TrimSpace(*patch.Emoji) == "" {
		return nil, ErrInvalidTask
	}

	s.taskMu.Lock()
	defer s.taskMu.Unlock()

	t, err := s.ownTask(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(t)
	if err := s.store.UpdateTask(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	s.events.Publish(EventTaskUpdated, t)
	return t, nil
}

func (s *HabitService) DeleteTask(ctx context.Context, id int64) error {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()

	if _, err := s.ownTask(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	s.events.Publish(EventTaskDeleted, map[string]int64{"id": id})
	return nil
}

// TaskCompletions lists every recorded completion of a task.
func (s *HabitService) TaskCompletions(ctx context.Context, id int64) ([]*domain.TaskCompletion, error) {
	if _, err := s.ownTask(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.store.ListCompletionsByTask(ctx, s.userID, id)
	if err != nil {
		return nil, fmt.Errorf("list completions of task %d: %w", id, err)
	}
	return list, nil
}

// CompleteTask records that the task was done today, bumps its streak,
// refreshes today's progress snapshot and, when the day becomes perfect,
// the user's streak counters.
func (s *HabitService) CompleteTask(ctx context.Context, taskID int64) (*domain.TaskCompletion, error) {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()

	task, err := s.ownTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsActive {
		return nil, ErrTaskNotFound
	}

	today := s.Today()
	done, err := s.store.ListCompletionsByDate(ctx, s.userID, today)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	for _, c := range done {
		if c.TaskID == taskID {
			return nil, ErrAlreadyCompleted
		}
	}

	completion := &domain.TaskCompletion{TaskID: taskID, UserID: s.userID, CompletedAt: today}
	if err := s.store.CreateCompletion(ctx, completion); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyCompleted
		}
		return nil, fmt.Errorf("create completion: %w", err)
	}
	TaskCompletions.Inc()

	if _, err := s.store.IncrementTaskStreak(ctx, taskID); err != nil {
		return nil, fmt.Errorf("bump task streak: %w", err)
	}

	progress, err := s.refreshProgress(ctx, today, append(done, completion))
	if err != nil {
		return nil, err
	}

	evt := ProgressEvent{Progress: progress}
	if progress.IsPerfectDay {
		u, err := s.Profile(ctx)
		if err != nil {
			return nil, err
		}
		u.RecordPerfectDay()
		if err := s.store.UpdateUserStats(ctx, u); err != nil {
			return nil, fmt.Errorf("update user stats: %w", err)
		}
		PerfectDays.Inc()
		evt.User = u
		logger.WithContext(ctx).Infow("perfect day", "date", today, "streak", u.CurrentStreak)
	}

	s.events.Publish(EventTaskCompleted, completion)
	s.events.Publish(EventProgressUpdated, evt)
	return completion, nil
}

// refreshProgress recomputes and stores the snapshot for date. Only
// completions of currently active tasks count.
func (s *HabitService) refreshProgress(ctx context.Context, date string, done []*domain.TaskCompletion) (*domain.StreakHistory, error) {
	tasks, err := s.store.ListActiveTasks(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	active := make(map[int64]bool, len(tasks))
	for _, t := range tasks {
		active[t.ID] = true
	}
	completed := 0
	for _, c := range done {
		if active[c.TaskID] {
			completed++
		}
	}

	p := domain.NewDailyProgress(s.userID, date, completed, len(tasks))
	stored, err := s.store.UpsertDailyProgress(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("upsert daily progress: %w", err)
	}
	return stored, nil
}

// --- Quotes ---

// DailyQuote picks the active quote at dayOfYear(today) mod count.
func (s *HabitService) DailyQuote(ctx context.Context) (*domain.Quote, error) {
	quotes, err := s.store.ListActiveQuotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	if len(quotes) == 0 {
		return nil, ErrNoQuote
	}
	return quotes[s.now().YearDay()%len(quotes)], nil
}

func (s *HabitService) Quotes(ctx context.Context) ([]*domain.Quote, error) {
	quotes, err := s.store.ListActiveQuotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return quotes, nil
}

func (s *HabitService) CreateQuote(ctx context.Context, q *domain.Quote) (*domain.Quote, error) {
	if strings.TrimSpace(q.Text) == "" || strings.TrimSpace(q.Source) == "" {
		return nil, ErrInvalidQuote
	}
	q.IsActive = true
	if err := s.store.CreateQuote(ctx, q); err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}
	return q, nil
}

// --- Reflections ---

func (s *HabitService) Reflection(ctx context.Context, date string) (*domain.Reflection, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}
	r, err := s.store.GetReflection(ctx, s.userID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReflectionNotFound
		}
		return nil, fmt.Errorf("get reflection: %w", err)
	}
	return r, nil
}

// SaveReflection creates or overwrites the reflection for date.
func (s *HabitService) SaveReflection(ctx context.Context, date, content string) (*domain.Reflection, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}
	r, err := s.store.SaveReflection(ctx, &domain.Reflection{UserID: s.userID, Content: content, Date: date})
	if err != nil {
		return nil, fmt.Errorf("save reflection: %w", err)
	}
	ReflectionsSaved.Inc()
	s.events.Publish(EventReflectionSaved, r)
	return r, nil
}

// --- Streaks ---

// StreakHistory returns snapshots in the inclusive [startDate, endDate]
// range; empty bounds are open.
func (s *HabitService) StreakHistory(ctx context.Context, startDate, endDate string) ([]*domain.StreakHistory, error) {
	for _, d := range []string{startDate, endDate} {
		if d == "" {
			continue
		}
		if _, err := domain.ParseDate(d); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDate, d)
		}
	}
	rows, err := s.store.ListStreakHistory(ctx, s.userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return rows, nil
}

// Calendar lays out month (YYYY-MM, default current) day by day.
func (s *HabitService) Calendar(ctx context.Context, month string) (domain.Calendar, error) {
	now := s.now()
	if month == "" {
		month = now.Format(domain.MonthLayout)
	}
	first, err := domain.ParseMonth(month, s.loc)
	if err != nil {
		return domain.Calendar{}, fmt.Errorf("%w: %s", ErrInvalidDate, month)
	}
	last := first.AddDate(0, 1, -1)

	rows, err := s.store.ListStreakHistory(ctx, s.userID, domain.FormatDate(first), domain.FormatDate(last))
	if err != nil {
		return domain.Calendar{}, fmt.Errorf("list history: %w", err)
	}
	history := make([]domain.StreakHistory, 0, len(rows))
	for _, h := range rows {
		history = append(history, *h)
	}
	return domain.BuildCalendar(first, domain.FormatDate(now), history), nil
}

// CurrentDate describes the wall clock in the configured time zone.
func (s *HabitService) CurrentDate() domain.DateInfo {
	return domain.NewDateInfo(s.now())
}

// Ping reports whether the backing store is reachable.
func (s *HabitService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
