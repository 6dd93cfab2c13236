package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"streaksage/internal/domain"
	"streaksage/internal/migrations"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteStore persists to a single SQLite file. Timestamps are stored as
// RFC3339 text in UTC.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Migrate applies the embedded SQLite migrations one statement at a time.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	migs, err := migrations.Load(migrations.DialectSQLite)
	if err != nil {
		return err
	}
	for _, m := range migs {
		for _, stmt := range strings.Split(m.SQL, ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", m.Name, err)
			}
		}
	}
	return nil
}

func (s *SQLiteStore) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func parseStamp(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", v, err)
	}
	return t, nil
}

func sqliteErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return fmt.Errorf("%w: %s", ErrDuplicate, se.Error())
	}
	return err
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// --- Users ---

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var (
		u       domain.User
		created string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, current_streak, best_streak, total_tasks, perfect_days, created_at
		FROM users
		WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Username, &u.CurrentStreak, &u.BestStreak, &u.TotalTasks, &u.PerfectDays, &created)
	if err != nil {
		return nil, sqliteErr(err)
	}
	if u.CreatedAt, err = parseStamp(created); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u *domain.User) error {
	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, created_at) VALUES (?, ?)`,
		u.Username, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return sqliteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	u.CreatedAt = now
	return nil
}

func (s *SQLiteStore) UpdateUserStats(ctx context.Context, u *domain.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET current_streak = ?, best_streak = ?, total_tasks = ?, perfect_days = ?
		WHERE id = ?`,
		u.CurrentStreak, u.BestStreak, u.TotalTasks, u.PerfectDays, u.ID,
	)
	if err != nil {
		return err
	}
	return affected(res)
}

// --- Tasks ---

const sqliteTaskColumns = `id, user_id, title, description, emoji, is_weekend, streak, is_active, created_at`

func scanSQLiteTask(row rowScanner) (*domain.Task, error) {
	var (
		t       domain.Task
		created string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Emoji,
		&t.IsWeekend, &t.Streak, &t.IsActive, &created); err != nil {
		return nil, err
	}
	var err error
	if t.CreatedAt, err = parseStamp(created); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *SQLiteStore) ListActiveTasks(ctx context.Context, userID int64) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sqliteTaskColumns+`
		FROM tasks
		WHERE user_id = ? AND is_active = 1
		ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []*domain.Task{}
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := scanSQLiteTask(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteTaskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		return nil, sqliteErr(err)
	}
	return t, nil
}

func (s *SQLiteStore) CreateTask(ctx context.Context, t *domain.Task) error {
	now := s.now().UTC()
	t.Streak = 0
	t.IsActive = true
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (user_id, title, description, emoji, is_weekend, streak, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, 0, 1, ?)`,
		t.UserID, t.Title, t.Description, t.Emoji, t.IsWeekend, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return sqliteErr(err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	t.CreatedAt = now
	return nil
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, t *domain.Task) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, emoji = ?, is_weekend = ?, is_active = ?
		WHERE id = ?
		RETURNING streak`,
		t.Title, t.Description, t.Emoji, t.IsWeekend, t.IsActive, t.ID,
	).Scan(&t.Streak)
	return sqliteErr(err)
}

func (s *SQLiteStore) IncrementTaskStreak(ctx context.Context, id int64) (int, error) {
	var streak int
	err := s.db.QueryRowContext(ctx,
		`UPDATE tasks SET streak = streak + 1 WHERE id = ? RETURNING streak`, id,
	).Scan(&streak)
	return streak, sqliteErr(err)
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// --- Completions ---

func (s *SQLiteStore) CreateCompletion(ctx context.Context, c *domain.TaskCompletion) error {
	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO task_completions (task_id, user_id, completed_at, created_at)
		VALUES (?, ?, ?, ?)`,
		c.TaskID, c.UserID, c.CompletedAt, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return sqliteErr(err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	c.CreatedAt = now
	return nil
}

func (s *SQLiteStore) listCompletions(ctx context.Context, where string, args ...any) ([]*domain.TaskCompletion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, user_id, completed_at, created_at
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
		var (
			c       domain.TaskCompletion
			created string
		)
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.CompletedAt, &created); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = parseStamp(created); err != nil {
			return nil, err
		}
		res = append(res, &c)
	}
	return res, rows.Err()
}

func (s *SQLiteStore) ListCompletionsByDate(ctx context.Context, userID int64, date string) ([]*domain.TaskCompletion, error) {
	return s.listCompletions(ctx, `user_id = ? AND completed_at = ?`, userID, date)
}

func (s *SQLiteStore) ListCompletionsByTask(ctx context.Context, userID, taskID int64) ([]*domain.TaskCompletion, error) {
	return s.listCompletions(ctx, `user_id = ? AND task_id = ?`, userID, taskID)
}

// --- Quotes ---

func (s *SQLiteStore) ListActiveQuotes(ctx context.Context) ([]*domain.Quote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, source, chapter, verse, is_active
		FROM quotes
		WHERE is_active = 1
		ORDER BY id`)
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

func (s *SQLiteStore) CreateQuote(ctx context.Context, q *domain.Quote) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (text, source, chapter, verse, is_active)
		VALUES (?, ?, ?, ?, ?)`,
		q.Text, q.Source, q.Chapter, q.Verse, q.IsActive,
	)
	if err != nil {
		return err
	}
	q.ID, err = res.LastInsertId()
	return err
}

// --- Reflections ---

const sqliteReflectionColumns = `id, user_id, content, date, created_at, updated_at`

func scanSQLiteReflection(row rowScanner) (*domain.Reflection, error) {
	var (
		rf               domain.Reflection
		created, updated string
	)
	if err := row.Scan(&rf.ID, &rf.UserID, &rf.Content, &rf.Date, &created, &updated); err != nil {
		return nil, sqliteErr(err)
	}
	var err error
	if rf.CreatedAt, err = parseStamp(created); err != nil {
		return nil, err
	}
	if rf.UpdatedAt, err = parseStamp(updated); err != nil {
		return nil, err
	}
	return &rf, nil
}

func (s *SQLiteStore) GetReflection(ctx context.Context, userID int64, date string) (*domain.Reflection, error) {
	return scanSQLiteReflection(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteReflectionColumns+` FROM reflections WHERE user_id = ? AND date = ?`,
		userID, date,
	))
}

func (s *SQLiteStore) SaveReflection(ctx context.Context, rf *domain.Reflection) (*domain.Reflection, error) {
	now := s.stamp()
	return scanSQLiteReflection(s.db.QueryRowContext(ctx, `
		INSERT INTO reflections (user_id, content, date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at
		RETURNING `+sqliteReflectionColumns,
		rf.UserID, rf.Content, rf.Date, now, now,
	))
}

// --- Streak history ---

const sqliteStreakColumns = `id, user_id, date, completed_tasks, total_tasks, completion_rate, is_perfect_day`

func scanSQLiteStreak(row rowScanner) (*domain.StreakHistory, error) {
	var h domain.StreakHistory
	if err := row.Scan(&h.ID, &h.UserID, &h.Date, &h.CompletedTasks, &h.TotalTasks,
		&h.CompletionRate, &h.IsPerfectDay); err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *SQLiteStore) ListStreakHistory(ctx context.Context, userID int64, startDate, endDate string) ([]*domain.StreakHistory, error) {
	query := `SELECT ` + sqliteStreakColumns + ` FROM streak_history WHERE user_id = ?`
	args := []any{userID}
	if startDate != "" {
		query += ` AND date >= ?`
		args = append(args, startDate)
	}
	if endDate != "" {
		query += ` AND date <= ?`
		args = append(args, endDate)
	}
	query += ` ORDER BY date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []*domain.StreakHistory{}
	for rows.Next() {
		h, err := scanSQLiteStreak(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, h)
	}
	return res, rows.Err()
}

func (s *SQLiteStore) UpsertDailyProgress(ctx context.Context, p *domain.StreakHistory) (*domain.StreakHistory, error) {
	h, err := scanSQLiteStreak(s.db.QueryRowContext(ctx, `
		INSERT INTO streak_history (user_id, date, completed_tasks, total_tasks, completion_rate, is_perfect_day)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			completed_tasks = excluded.completed_tasks,
			total_tasks = excluded.total_tasks,
			completion_rate = excluded.completion_rate,
			is_perfect_day = excluded.is_perfect_day
		RETURNING `+sqliteStreakColumns,
		p.UserID, p.Date, p.CompletedTasks, p.TotalTasks, p.CompletionRate, p.IsPerfectDay,
	))
	if err != nil {
		return nil, sqliteErr(err)
	}
	return h, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
