package task

import (
	"fmt"
	"strings"
	"time"

	"planner/internal/calendar"
)

const icsDateLayout = "20060102"

// BuildTaskICS renders a scheduled task as a single all-day iCalendar
// event, for exporting into an external calendar app. The task must sit
// on a day; backlog tasks have no date to anchor the event.
func BuildTaskICS(t Task, now time.Time) (string, error) {
	if !t.Scheduled() {
		return "", fmt.Errorf("task has no date to export")
	}

	day, err := calendar.ParseDay(*t.Date)
	if err != nil {
		return "", err
	}
	end := day.AddDate(0, 0, 1)

	title := strings.TrimSpace(t.Name)
	if title == "" {
		title = "Untitled task"
	}

	uid := fmt.Sprintf("task-%s@planner", strings.TrimSpace(t.ID))
	if strings.TrimSpace(t.ID) == "" {
		uid = fmt.Sprintf("task-export-%d@planner", now.UnixNano())
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Planner//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + escapeICSText(uid),
		"DTSTAMP:" + now.UTC().Format("20060102T150405Z"),
		"SUMMARY:" + escapeICSText(title),
		"DTSTART;VALUE=DATE:" + day.Format(icsDateLayout),
		"DTEND;VALUE=DATE:" + end.Format(icsDateLayout),
	}
	if t.Complete {
		lines = append(lines, "STATUS:COMPLETED")
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR", "")

	return strings.Join(lines, "\r\n"), nil
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return repl.Replace(s)
}
