package domain

import "time"

// CalendarStatus - how a day is rendered on the monthly calendar
type CalendarStatus string

const (
	CalendarStatusFuture  CalendarStatus = "future"
	CalendarStatusToday   CalendarStatus = "today"
	CalendarStatusPerfect CalendarStatus = "perfect"
	CalendarStatusPartial CalendarStatus = "partial"
	CalendarStatusMissed  CalendarStatus = "missed"
	CalendarStatusNone    CalendarStatus = "none"
)

type CalendarDay struct {
	Date           string         `json:"date"`
	CompletionRate int            `json:"completionRate"`
	Status         CalendarStatus `json:"status"`
}

type Calendar struct {
	Month string        `json:"month"`
	Days  []CalendarDay `json:"days"`
}

// BuildCalendar lays out every day of the month starting at first,
// using history rows for that month and today (YYYY-MM-DD) as the pivot.
func BuildCalendar(first time.Time, today string, history []StreakHistory) Calendar {
	byDate := make(map[string]StreakHistory, len(history))
	for _, h := range history {
		byDate[h.Date] = h
	}

	first = time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, first.Location())
	cal := Calendar{Month: first.Format(MonthLayout)}
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		date := FormatDate(d)
		day := CalendarDay{Date: date}
		h, ok := byDate[date]
		if ok {
			day.CompletionRate = h.CompletionRate
		}

		switch {
		case date > today:
			day.Status = CalendarStatusFuture
		case date == today:
			day.Status = CalendarStatusToday
		case !ok:
			day.Status = CalendarStatusNone
		case h.IsPerfectDay:
			day.Status = CalendarStatusPerfect
		case h.CompletionRate > 0:
			day.Status = CalendarStatusPartial
		default:
			day.Status = CalendarStatusMissed
		}
		cal.Days = append(cal.Days, day)
	}
	return cal
}
