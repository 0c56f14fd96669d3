// Package calendar computes the scrolling week window the planner UI
// renders and the day-key format used everywhere a task references a
// calendar day.
//
// Day keys are timezone-naive on purpose: "2022-03-05" always means the
// 5th of March as a calendar date, never an instant. Per-user timezones
// are not implemented yet, so converting through time zones here would
// shift days for users far from the server.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// DayKeyFormat is the reference layout for day keys.
const DayKeyFormat = "2006-01-02"

var ErrBadDayKey = errors.New("invalid day key, want YYYY-MM-DD")

// FormatDay renders a time as a day key, ignoring its clock component.
func FormatDay(t time.Time) string {
	return t.Format(DayKeyFormat)
}

// ParseDay parses a day key into a date at midnight UTC. Only the first
// ten characters are considered, so RFC3339 timestamps degrade to their
// date part the same way the day-key form does.
func ParseDay(key string) (time.Time, error) {
	if len(key) < len(DayKeyFormat) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDayKey, key)
	}
	t, err := time.ParseInLocation(DayKeyFormat, key[:len(DayKeyFormat)], time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDayKey, key)
	}
	return t, nil
}

// IsDayKey reports whether key parses as a valid day key.
func IsDayKey(key string) bool {
	if len(key) != len(DayKeyFormat) {
		return false
	}
	_, err := ParseDay(key)
	return err == nil
}

// Window describes how many whole weeks the grid spans on either side
// of the reference date.
type Window struct {
	WeeksBefore int
	WeeksAfter  int
}

// DefaultWindow matches the planner UI: a month of history and roughly
// a quarter of future planning room.
var DefaultWindow = Window{WeeksBefore: 4, WeeksAfter: 12}

// Weeks returns the ordered week grid around ref: each week is exactly
// seven day keys starting on a Monday, and the span always contains
// ref's own day.
func Weeks(ref time.Time, w Window) [][]string {
	if w.WeeksBefore <= 0 {
		w.WeeksBefore = DefaultWindow.WeeksBefore
	}
	if w.WeeksAfter <= 0 {
		w.WeeksAfter = DefaultWindow.WeeksAfter
	}

	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	start := startOfWeek(day.AddDate(0, 0, -7*w.WeeksBefore))
	end := day.AddDate(0, 0, 7*w.WeeksAfter)

	var weeks [][]string
	for ws := start; !ws.After(end); ws = ws.AddDate(0, 0, 7) {
		week := make([]string, 7)
		for i := 0; i < 7; i++ {
			week[i] = FormatDay(ws.AddDate(0, 0, i))
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// startOfWeek returns the Monday on or before t.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// Stats holds the per-day aggregate counts rendered as calendar badges.
type Stats struct {
	Total      map[string]int `json:"total"`
	Incomplete map[string]int `json:"incomplete"`
}
