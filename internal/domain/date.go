package domain

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// FormatDate renders t as a zero-padded YYYY-MM-DD string in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string. Only the canonical zero-padded
// form is accepted so that dates keep comparing lexicographically.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	if t.Format(DateLayout) != s {
		return time.Time{}, fmt.Errorf("date %q is not in YYYY-MM-DD form", s)
	}
	return t, nil
}

// ParseMonth parses a YYYY-MM string and returns the first day of that month.
func ParseMonth(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(MonthLayout, s, loc)
	if err != nil {
		return time.Time{}, err
	}
	if t.Format(MonthLayout) != s {
		return time.Time{}, fmt.Errorf("month %q is not in YYYY-MM form", s)
	}
	return t, nil
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DateInfo - wall clock snapshot used by the dashboard for time-gated banners
type DateInfo struct {
	Date                  string `json:"date"`
	IsWeekend             bool   `json:"isWeekend"`
	Hour                  int    `json:"hour"`
	Minute                int    `json:"minute"`
	IsMorningQuoteTime    bool   `json:"isMorningQuoteTime"`
	IsEveningReminderTime bool   `json:"isEveningReminderTime"`
}

// NewDateInfo describes t. The morning quote window is 6:00-6:59,
// the evening reminder window 21:30-21:59.
func NewDateInfo(t time.Time) DateInfo {
	hour, minute := t.Hour(), t.Minute()
	return DateInfo{
		Date:                  FormatDate(t),
		IsWeekend:             IsWeekend(t),
		Hour:                  hour,
		Minute:                minute,
		IsMorningQuoteTime:    hour == 6,
		IsEveningReminderTime: hour == 21 && minute >= 30,
	}
}
