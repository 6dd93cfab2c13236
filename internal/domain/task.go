package domain

import "time"

type Task struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"userId"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Emoji       string    `db:"emoji" json:"emoji"`
	IsWeekend   bool      `db:"is_weekend" json:"isWeekend"`
	Streak      int       `db:"streak" json:"streak"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// TaskWithCompletion - task annotated with today's completion state (for API responses)
type TaskWithCompletion struct {
	Task
	IsCompletedToday bool   `json:"isCompletedToday"`
	CompletionDate   string `json:"completionDate,omitempty"`
}

// TaskCompletion records that a task was done on a given day.
type TaskCompletion struct {
	ID          int64     `db:"id" json:"id"`
	TaskID      int64     `db:"task_id" json:"taskId"`
	UserID      int64     `db:"user_id" json:"userId"`
	CompletedAt string    `db:"completed_at" json:"completedAt"` // YYYY-MM-DD
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// TaskPatch holds the fields of a partial task update; nil means unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Emoji       *string
	IsWeekend   *bool
	IsActive    *bool
}

// Apply copies the set fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Emoji != nil {
		t.Emoji = *p.Emoji
	}
	if p.IsWeekend != nil {
		t.IsWeekend = *p.IsWeekend
	}
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
	}
}
