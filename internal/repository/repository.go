package repository

import (
	"context"
	"errors"

	"streaksage/internal/domain"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the persistence contract shared by the memory, Postgres and
// SQLite backends. Ids are assigned by the store and never reused.
type Store interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
	UpdateUserStats(ctx context.Context, u *domain.User) error

	// ListActiveTasks returns the user's active tasks in id order.
	ListActiveTasks(ctx context.Context, userID int64) ([]*domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	CreateTask(ctx context.Context, t *domain.Task) error
	// UpdateTask writes every field but Streak and reloads t.Streak.
	UpdateTask(ctx context.Context, t *domain.Task) error
	// IncrementTaskStreak adds one to the task's streak and returns the new value.
	IncrementTaskStreak(ctx context.Context, id int64) (int, error)
	DeleteTask(ctx context.Context, id int64) error

	CreateCompletion(ctx context.Context, c *domain.TaskCompletion) error
	ListCompletionsByDate(ctx context.Context, userID int64, date string) ([]*domain.TaskCompletion, error)
	ListCompletionsByTask(ctx context.Context, userID, taskID int64) ([]*domain.TaskCompletion, error)

	// ListActiveQuotes returns active quotes in id order.
	ListActiveQuotes(ctx context.Context) ([]*domain.Quote, error)
	CreateQuote(ctx context.Context, q *domain.Quote) error

	GetReflection(ctx context.Context, userID int64, date string) (*domain.Reflection, error)
	// SaveReflection upserts by (UserID, Date) and returns the stored record.
	SaveReflection(ctx context.Context, r *domain.Reflection) (*domain.Reflection, error)

	// ListStreakHistory returns rows sorted by date; empty bounds are open.
	ListStreakHistory(ctx context.Context, userID int64, startDate, endDate string) ([]*domain.StreakHistory, error)
	// UpsertDailyProgress upserts by (UserID, Date) and returns the stored row.
	UpsertDailyProgress(ctx context.Context, p *domain.StreakHistory) (*domain.StreakHistory, error)

	Ping(ctx context.Context) error
	Close() error
}
