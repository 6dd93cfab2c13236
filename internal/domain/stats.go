package domain

// StrongDayRate is the completion rate from which a day counts as strong.
const StrongDayRate = 80

// UserStats - aggregate view for the dashboard, computed per request
type UserStats struct {
	CurrentStreak      int         `json:"currentStreak"`
	BestStreak         int         `json:"bestStreak"`
	TotalTasks         int         `json:"totalTasks"`
	PerfectDays        int         `json:"perfectDays"`
	WeekProgress       []int       `json:"weekProgress"`
	NextMilestone      int         `json:"nextMilestone"`
	TodayProgress      int         `json:"todayProgress"`
	StrongDaysThisWeek int         `json:"strongDaysThisWeek"`
	Momentum           string      `json:"momentum"`
	Achievement        Achievement `json:"achievement"`
}

// NewUserStats derives the stats for u from its trailing week of rates
// (oldest first, today last). A nil user yields the zero stats.
func NewUserStats(u *User, week []int) UserStats {
	if u == nil {
		u = &User{}
		week = make([]int, 7)
	}

	strong := 0
	for _, rate := range week {
		if rate >= StrongDayRate {
			strong++
		}
	}
	today := 0
	if len(week) > 0 {
		today = week[len(week)-1]
	}

	return UserStats{
		CurrentStreak:      u.CurrentStreak,
		BestStreak:         u.BestStreak,
		TotalTasks:         u.TotalTasks,
		PerfectDays:        u.PerfectDays,
		WeekProgress:       week,
		NextMilestone:      NextMilestone(u.CurrentStreak),
		TodayProgress:      today,
		StrongDaysThisWeek: strong,
		Momentum:           Momentum(u.CurrentStreak),
		Achievement:        AchievementFor(u.CurrentStreak),
	}
}
