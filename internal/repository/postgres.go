package repository

import (
	"context"
	"errors"
	"fmt"

	"streaksage/internal/domain"
	"streaksage/internal/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate applies the embedded Postgres migrations.
func (r *PostgresStore) Migrate(ctx context.Context) error {
	migs, err := migrations.Load(migrations.DialectPostgres)
	if err != nil {
		return err
	}
	for _, m := range migs {
		if _, err := r.db.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Name, err)
		}
	}
	return nil
}

func pgErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pe.ConstraintName)
	}
	return err
}

// --- Users ---

func (r *PostgresStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, current_streak, best_streak, total_tasks, perfect_days, created_at
		 FROM users
		 WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.CurrentStreak, &u.BestStreak, &u.TotalTasks, &u.PerfectDays, &u.CreatedAt)
	if err != nil {
		return nil, pgErr(err)
	}
	return &u, nil
}

func (r *PostgresStore) CreateUser(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username) VALUES ($1) RETURNING id, created_at`,
		u.Username,
	).Scan(&u.ID, &u.CreatedAt)
	return pgErr(err)
}

func (r *PostgresStore) UpdateUserStats(ctx context.Context, u *domain.User) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users
		 SET current_streak = $2, best_streak = $3, total_tasks = $4, perfect_days = $5
		 WHERE id = $1`,
		u.ID, u.CurrentStreak, u.BestStreak, u.TotalTasks, u.PerfectDays,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Tasks ---

const pgTaskColumns = `id, user_id, title, description, emoji, is_weekend, streak, is_active, created_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Emoji,
		&t.IsWeekend, &t.Streak, &t.IsActive, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresStore) ListActiveTasks(ctx context.Context, userID int64) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+pgTaskColumns+`
		 FROM tasks
		 WHERE user_id = $1 AND is_active = true
		 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r *PostgresStore) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, `SELECT `+pgTaskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return nil, pgErr(err)
	}
	return t, nil
}

func (r *PostgresStore) CreateTask(ctx context.Context, t *domain.Task) error {
	t.Streak = 0
	t.IsActive = true
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (user_id, title, description, emoji, is_weekend)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		t.UserID, t.Title, t.Description, t.Emoji, t.IsWeekend,
	).Scan(&t.ID, &t.CreatedAt)
	return pgErr(err)
}

func (r *PostgresStore) UpdateTask(ctx context.Context, t *domain.Task) error {
	err := r.db.QueryRow(ctx,
		`UPDATE tasks
		 SET title = $2, description = $3, emoji = $4, is_weekend = $5, is_active = $6
		 WHERE id = $1
		 RETURNING streak`,
		t.ID, t.Title, t.Description, t.Emoji, t.IsWeekend, t.IsActive,
	).Scan(&t.Streak)
	return pgErr(err)
}

func (r *PostgresStore) IncrementTaskStreak(ctx context.Context, id int64) (int, error) {
	var streak int
	err := r.db.QueryRow(ctx,
		`UPDATE tasks SET streak = streak + 1 WHERE id = $1 RETURNING streak`, id,
	).Scan(&streak)
	return streak, pgErr(err)
}

func (r *PostgresStore) DeleteTask(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Completions ---

func (r *PostgresStore) CreateCompletion(ctx context.Context, c *domain.TaskCompletion) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO task_completions (task_id, user_id, completed_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		c.TaskID, c.UserID, c.CompletedAt,
	).Scan(&c.ID, &c.CreatedAt)
	return pgErr(err)
}

func (r *PostgresStore) listCompletions(ctx context.Context, where string, args ...any) ([]*domain.TaskCompletion, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, task_id, user_id, completed_at, created_at
		 FROM task_completions
		 WHERE `+where+`
		 ORDER BY id`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []*domain.TaskCompletion{}
	for rows.Next() {
		var c domain.TaskCompletion
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.CompletedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &c)
	}
	return res, rows.Err()
}

func (r *PostgresStore) ListCompletionsByDate(ctx context.Context, userID int64, date string) ([]*domain.TaskCompletion, error) {
	return r.listCompletions(ctx, `user_id = $1 AND completed_at = $2`, userID, date)
}

func (r *PostgresStore) ListCompletionsByTask(ctx context.Context, userID, taskID int64) ([]*domain.TaskCompletion, error) {
	return r.listCompletions(ctx, `user_id = $1 AND task_id = $2`, userID, taskID)
}

// --- Quotes ---

func (r *PostgresStore) ListActiveQuotes(ctx context.Context) ([]*domain.Quote, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, text, source, chapter, verse, is_active
		 FROM quotes
		 WHERE is_active = true
		 ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []*domain.Quote{}
	for rows.Next() {
		var q domain.Quote
		if err := rows.Scan(&q.ID, &q.Text, &q.Source, &q.Chapter, &q.Verse, &q.IsActive); err != nil {
			return nil, err
		}
		res = append(res, &q)
	}
	return res, rows.Err()
}

func (r *PostgresStore) CreateQuote(ctx context.Context, q *domain.Quote) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO quotes (text, source, chapter, verse, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		q.Text, q.Source, q.Chapter, q.Verse, q.IsActive,
	).Scan(&q.ID)
}

// --- Reflections ---

const pgReflectionColumns = `id, user_id, content, date, created_at, updated_at`

func scanReflection(row pgx.Row) (*domain.Reflection, error) {
	var rf domain.Reflection
	if err := row.Scan(&rf.ID, &rf.UserID, &rf.Content, &rf.Date, &rf.CreatedAt, &rf.UpdatedAt); err != nil {
		return nil, pgErr(err)
	}
	return &rf, nil
}

func (r *PostgresStore) GetReflection(ctx context.Context, userID int64, date string) (*domain.Reflection, error) {
	return scanReflection(r.db.QueryRow(ctx,
		`SELECT `+pgReflectionColumns+` FROM reflections WHERE user_id = $1 AND date = $2`,
		userID, date,
	))
}

func (r *PostgresStore) SaveReflection(ctx context.Context, rf *domain.Reflection) (*domain.Reflection, error) {
	return scanReflection(r.db.QueryRow(ctx,
		`INSERT INTO reflections (user_id, content, date)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, date)
		 DO UPDATE SET content = EXCLUDED.content, updated_at = now()
		 RETURNING `+pgReflectionColumns,
		rf.UserID, rf.Content, rf.Date,
	))
}

// --- Streak history ---

const pgStreakColumns = `id, user_id, date, completed_tasks, total_tasks, completion_rate, is_perfect_day`

func scanStreak(row pgx.Row) (*domain.StreakHistory, error) {
	var h domain.StreakHistory
	if err := row.Scan(&h.ID, &h.UserID, &h.Date, &h.CompletedTasks, &h.TotalTasks,
		&h.CompletionRate, &h.IsPerfectDay); err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *PostgresStore) ListStreakHistory(ctx context.Context, userID int64, startDate, endDate string) ([]*domain.StreakHistory, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+pgStreakColumns+`
		 FROM streak_history
		 WHERE user_id = $1
		   AND ($2 = '' OR date >= $2)
		   AND ($3 = '' OR date <= $3)
		 ORDER BY date`,
		userID, startDate, endDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []*domain.StreakHistory{}
	for rows.Next() {
		h, err := scanStreak(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, h)
	}
	return res, rows.Err()
}

func (r *PostgresStore) UpsertDailyProgress(ctx context.Context, p *domain.StreakHistory) (*domain.StreakHistory, error) {
	h, err := scanStreak(r.db.QueryRow(ctx,
		`INSERT INTO streak_history (user_id, date, completed_tasks, total_tasks, completion_rate, is_perfect_day)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, date)
		 DO UPDATE SET completed_tasks = EXCLUDED.completed_tasks,
		               total_tasks = EXCLUDED.total_tasks,
		               completion_rate = EXCLUDED.completion_rate,
		               is_perfect_day = EXCLUDED.is_perfect_day
		 RETURNING `+pgStreakColumns,
		p.UserID, p.Date, p.CompletedTasks, p.TotalTasks, p.CompletionRate, p.IsPerfectDay,
	))
	if err != nil {
		return nil, pgErr(err)
	}
	return h, nil
}

func (r *PostgresStore) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *PostgresStore) Close() error {
	r.db.Close()
	return nil
}

var _ Store = (*PostgresStore)(nil)
