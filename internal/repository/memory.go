package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"streaksage/internal/domain"
)

// MemoryStore keeps everything in process memory. State is lost on restart.
type MemoryStore struct {
	mu sync.RWMutex

	users         map[int64]*domain.User
	tasks         map[int64]*domain.Task
	completions   map[int64]*domain.TaskCompletion
	quotes        map[int64]*domain.Quote
	reflections   map[int64]*domain.Reflection
	streakHistory map[int64]*domain.StreakHistory

	// next id per entity
	userSeq, taskSeq, completionSeq, quoteSeq, reflectionSeq, streakSeq int64

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[int64]*domain.User),
		tasks:         make(map[int64]*domain.Task),
		completions:   make(map[int64]*domain.TaskCompletion),
		quotes:        make(map[int64]*domain.Quote),
		reflections:   make(map[int64]*domain.Reflection),
		streakHistory: make(map[int64]*domain.StreakHistory),
		now:           time.Now,
	}
}

// sortedByID returns copies of the map values matching keep, ordered by id.
func sortedByID[T any](m map[int64]*T, keep func(*T) bool) []*T {
	ids := make([]int64, 0, len(m))
	for id, v := range m {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		cp := *m[id]
		out = append(out, &cp)
	}
	return out
}

// --- Users ---

func (s *MemoryStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userSeq++
	u.ID = s.userSeq
	u.CreatedAt = s.now()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) UpdateUserStats(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	existing.CurrentStreak = u.CurrentStreak
	existing.BestStreak = u.BestStreak
	existing.TotalTasks = u.TotalTasks
	existing.PerfectDays = u.PerfectDays
	return nil
}

// --- Tasks ---

func (s *MemoryStore) ListActiveTasks(ctx context.Context, userID int64) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByID(s.tasks, func(t *domain.Task) bool {
		return t.UserID == userID && t.IsActive
	}), nil
}

func (s *MemoryStore) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) CreateTask(ctx context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskSeq++
	t.ID = s.taskSeq
	t.CreatedAt = s.now()
	t.Streak = 0
	t.IsActive = true
	cp := *t
	s.tasks[t.ID] = &cp
	return nil
}

func (s *MemoryStore) UpdateTask(ctx context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tasks[t.ID]
	if !ok {
		return ErrNotFound
	}
	t.Streak = cur.Streak
	cp := *t
	s.tasks[t.ID] = &cp
	return nil
}

func (s *MemoryStore) IncrementTaskStreak(ctx context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return 0, ErrNotFound
	}
	t.Streak++
	return t.Streak, nil
}

func (s *MemoryStore) DeleteTask(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// --- Completions ---

func (s *MemoryStore) CreateCompletion(ctx context.Context, c *domain.TaskCompletion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.completions {
		if existing.UserID == c.UserID && existing.TaskID == c.TaskID && existing.CompletedAt == c.CompletedAt {
			return ErrDuplicate
		}
	}
	s.completionSeq++
	c.ID = s.completionSeq
	c.CreatedAt = s.now()
	cp := *c
	s.completions[c.ID] = &cp
	return nil
}

func (s *MemoryStore) ListCompletionsByDate(ctx context.Context, userID int64, date string) ([]*domain.TaskCompletion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByID(s.completions, func(c *domain.TaskCompletion) bool {
		return c.UserID == userID && c.CompletedAt == date
	}), nil
}

func (s *MemoryStore) ListCompletionsByTask(ctx context.Context, userID, taskID int64) ([]*domain.TaskCompletion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByID(s.completions, func(c *domain.TaskCompletion) bool {
		return c.UserID == userID && c.TaskID == taskID
	}), nil
}

// --- Quotes ---

func (s *MemoryStore) ListActiveQuotes(ctx context.Context) ([]*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByID(s.quotes, func(q *domain.Quote) bool { return q.IsActive }), nil
}

func (s *MemoryStore) CreateQuote(ctx context.Context, q *domain.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quoteSeq++
	q.ID = s.quoteSeq
	cp := *q
	s.quotes[q.ID] = &cp
	return nil
}

// --- Reflections ---

func (s *MemoryStore) findReflection(userID int64, date string) *domain.Reflection {
	for _, r := range s.reflections {
		if r.UserID == userID && r.Date == date {
			return r
		}
	}
	return nil
}

func (s *MemoryStore) GetReflection(ctx context.Context, userID int64, date string) (*domain.Reflection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.findReflection(userID, date)
	if r == nil {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) SaveReflection(ctx context.Context, r *domain.Reflection) (*domain.Reflection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	if existing := s.findReflection(r.UserID, r.Date); existing != nil {
		existing.Content = r.Content
		existing.UpdatedAt = now
		cp := *existing
		return &cp, nil
	}

	s.reflectionSeq++
	stored := &domain.Reflection{
		ID:        s.reflectionSeq,
		UserID:    r.UserID,
		Content:   r.Content,
		Date:      r.Date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.reflections[stored.ID] = stored
	cp := *stored
	return &cp, nil
}

// --- Streak history ---

func (s *MemoryStore) ListStreakHistory(ctx context.Context, userID int64, startDate, endDate string) ([]*domain.StreakHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := sortedByID(s.streakHistory, func(h *domain.StreakHistory) bool {
		if h.UserID != userID {
			return false
		}
		if startDate != "" && h.Date < startDate {
			return false
		}
		if endDate != "" && h.Date > endDate {
			return false
		}
		return true
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows, nil
}

func (s *MemoryStore) UpsertDailyProgress(ctx context.Context, p *domain.StreakHistory) (*domain.StreakHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.streakHistory {
		if h.UserID == p.UserID && h.Date == p.Date {
			id := h.ID
			*h = *p
			h.ID = id
			cp := *h
			return &cp, nil
		}
	}

	s.streakSeq++
	stored := *p
	stored.ID = s.streakSeq
	s.streakHistory[stored.ID] = &stored
	cp := stored
	return &cp, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
