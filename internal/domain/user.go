package domain

import "time"

// DefaultUserID is the implicit user every request operates on.
const DefaultUserID int64 = 1

type User struct {
	ID            int64     `db:"id" json:"id"`
	Username      string    `db:"username" json:"username"`
	CurrentStreak int       `db:"current_streak" json:"currentStreak"`
	BestStreak    int       `db:"best_streak" json:"bestStreak"`
	TotalTasks    int       `db:"total_tasks" json:"totalTasks"`
	PerfectDays   int       `db:"perfect_days" json:"perfectDays"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// RecordPerfectDay bumps the streak counters after a perfect day.
// The streak is never decremented on a missed day.
func (u *User) RecordPerfectDay() {
	u.CurrentStreak++
	if u.CurrentStreak > u.BestStreak {
		u.BestStreak = u.CurrentStreak
	}
	u.TotalTasks++
	u.PerfectDays++
}
