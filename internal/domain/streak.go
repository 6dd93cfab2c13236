package domain

// StreakHistory - per-day completion snapshot (one row per user and date)
type StreakHistory struct {
	ID             int64  `db:"id" json:"id"`
	UserID         int64  `db:"user_id" json:"userId"`
	Date           string `db:"date" json:"date"`
	CompletedTasks int    `db:"completed_tasks" json:"completedTasks"`
	TotalTasks     int    `db:"total_tasks" json:"totalTasks"`
	CompletionRate int    `db:"completion_rate" json:"completionRate"`
	IsPerfectDay   bool   `db:"is_perfect_day" json:"isPerfectDay"`
}

// NewDailyProgress builds the snapshot for completed out of total tasks.
// A day with no tasks has rate 0 and is never perfect.
func NewDailyProgress(userID int64, date string, completed, total int) StreakHistory {
	return StreakHistory{
		UserID:         userID,
		Date:           date,
		CompletedTasks: completed,
		TotalTasks:     total,
		CompletionRate: CompletionRate(completed, total),
		IsPerfectDay:   total > 0 && completed == total,
	}
}

// CompletionRate returns round(100*completed/total), or 0 when total is 0.
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	// half-up rounding in integer arithmetic
	return (200*completed + total) / (2 * total)
}

// Milestones are the streak lengths celebrated by the dashboard, ascending.
var Milestones = []int{7, 14, 21, 30, 50, 100, 365}

// MilestoneFallback is reported once every milestone has been passed.
const MilestoneFallback = 50

// NextMilestone returns the smallest milestone strictly above streak.
func NextMilestone(streak int) int {
	for _, m := range Milestones {
		if streak < m {
			return m
		}
	}
	return MilestoneFallback
}

// Momentum returns the dashboard label for a streak length.
func Momentum(streak int) string {
	switch {
	case streak >= 21:
		return "🔥 Unstoppable"
	case streak >= 14:
		return "🔥 Strong"
	case streak >= 7:
		return "⚡ Growing"
	case streak >= 3:
		return "🌱 Building"
	default:
		return "🌟 Starting"
	}
}

// Achievement - tier unlocked by the current streak
type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var achievementTiers = []struct {
	min int
	Achievement
}{
	{100, Achievement{"Century Club! 💯", "100+ day streak master"}},
	{50, Achievement{"Golden Streak! 🥇", "50+ days of excellence"}},
	{30, Achievement{"Monthly Master! 📅", "30+ days of consistency"}},
	{21, Achievement{"Habit Builder! 🏗️", "3+ weeks of growth"}},
	{14, Achievement{"Two Week Wonder! ⭐", "2+ weeks of progress"}},
	{7, Achievement{"Week Warrior! 💪", "1+ week of dedication"}},
}

// AchievementFor returns the highest tier reached by streak.
func AchievementFor(streak int) Achievement {
	for _, t := range achievementTiers {
		if streak >= t.min {
			return t.Achievement
		}
	}
	return Achievement{"Journey Beginner! 🌟", "Starting your transformation"}
}
