package calendar

import (
	"testing"
	"time"
)

func TestWeeksAlwaysStartOnMonday(t *testing.T) {
	for d := 0; d < 7; d++ {
		ref := time.Date(2022, 3, 7+d, 15, 30, 0, 0, time.UTC)
		weeks := Weeks(ref, DefaultWindow)
		if len(weeks) == 0 {
			t.Fatalf("no weeks for ref %s", FormatDay(ref))
		}
		for i, week := range weeks {
			if len(week) != 7 {
				t.Fatalf("week %d has %d days", i, len(week))
			}
			first, err := ParseDay(week[0])
			if err != nil {
				t.Fatalf("parse %q: %v", week[0], err)
			}
			if first.Weekday() != time.Monday {
				t.Fatalf("week %d starts on %s, want Monday", i, first.Weekday())
			}
		}
	}
}

func TestWeeksContainReferenceDay(t *testing.T) {
	ref := time.Date(2021, 12, 31, 23, 59, 0, 0, time.UTC)
	key := FormatDay(ref)

	found := false
	for _, week := range Weeks(ref, DefaultWindow) {
		for _, day := range week {
			if day == key {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("window does not contain reference day %s", key)
	}
}

func TestWeeksAreContiguous(t *testing.T) {
	ref := time.Date(2022, 6, 15, 0, 0, 0, 0, time.UTC)
	weeks := Weeks(ref, Window{WeeksBefore: 2, WeeksAfter: 3})

	var prev time.Time
	for _, week := range weeks {
		for _, day := range week {
			d, err := ParseDay(day)
			if err != nil {
				t.Fatalf("parse %q: %v", day, err)
			}
			if !prev.IsZero() && !d.Equal(prev.AddDate(0, 0, 1)) {
				t.Fatalf("gap between %s and %s", FormatDay(prev), day)
			}
			prev = d
		}
	}
}

func TestDayKeyRoundTripIgnoresProcessTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Pacific/Kiritimati")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	old := time.Local
	time.Local = loc
	defer func() { time.Local = old }()

	for _, key := range []string{"2022-01-01", "2022-02-28", "2022-12-31", "2020-02-29"} {
		d, err := ParseDay(key)
		if err != nil {
			t.Fatalf("parse %q: %v", key, err)
		}
		if got := FormatDay(d); got != key {
			t.Fatalf("round trip %q -> %q", key, got)
		}
	}
}

func TestParseDayTruncatesTimestamps(t *testing.T) {
	d, err := ParseDay("2022-03-05T10:00:00Z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := FormatDay(d); got != "2022-03-05" {
		t.Fatalf("got %q", got)
	}
}

func TestParseDayRejectsGarbage(t *testing.T) {
	for _, key := range []string{"", "march 5", "2022-3-5", "2022/03/05"} {
		if _, err := ParseDay(key); err == nil {
			t.Fatalf("expected error for %q", key)
		}
		if IsDayKey(key) {
			t.Fatalf("IsDayKey(%q) = true", key)
		}
	}
}
