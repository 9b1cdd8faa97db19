// Package timesheet implements the time-accounting engine: worked-hours
// calculation, schedule validation, vendor history normalization and
// weekly reconciliation. Everything here is a pure function over its
// inputs; times are local wall-clock HH:MM strings and dates plain
// YYYY-MM-DD strings.
package timesheet

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/carlosalbertovr/intratime-killer/models"
)

// RestDayHours is credited for rest days and bank holidays regardless of
// configured or historical events.
const RestDayHours = 8

// DayInstants holds the four meaningful instants of one day. Empty string
// means "no value" (never midnight).
type DayInstants struct {
	Entry  string
	Pause  string
	Resume string
	Exit   string
}

// clockToMinutes parses "HH:MM" (seconds tolerated and truncated) into
// minutes since midnight. ok is false for empty or malformed input.
func clockToMinutes(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// round2 rounds hours to 2 decimal places.
func round2(h float64) float64 {
	return math.Round(h*100) / 100
}

// clampHours converts worked minutes to non-negative hours.
func clampHours(minutes float64) float64 {
	return math.Max(0, minutes/60)
}

// InProgressHours computes worked hours for a day that has not finished,
// using ref as the current wall-clock time. ok is false when the day is
// already complete (an exit instant exists): callers must then use the
// authoritative completed total instead of a partial figure.
func InProgressHours(in DayInstants, ref time.Time) (float64, bool) {
	if _, done := clockToMinutes(in.Exit); done {
		return 0, false
	}

	entry, hasEntry := clockToMinutes(in.Entry)
	if !hasEntry {
		return 0, true
	}

	now := ref.Hour()*60 + ref.Minute()
	pause, hasPause := clockToMinutes(in.Pause)
	resume, hasResume := clockToMinutes(in.Resume)

	var worked int
	switch {
	case !hasPause && !hasResume:
		worked = now - entry
	case hasPause && !hasResume:
		// lunch-out still pending return: time since the pause does not count
		worked = pause - entry
	default:
		worked = (pause - entry) + (now - resume)
	}

	return clampHours(float64(worked)), true
}

// CompletedHours computes the finalized total for a day with both entry
// and exit instants: (exit - entry) minus the lunch pause only when both
// pause and resume are present. Clamped to >= 0, rounded to 2 decimals.
// Returns 0 when entry or exit is missing.
func CompletedHours(in DayInstants) float64 {
	entry, hasEntry := clockToMinutes(in.Entry)
	exit, hasExit := clockToMinutes(in.Exit)
	if !hasEntry || !hasExit {
		return 0
	}

	total := exit - entry

	pause, hasPause := clockToMinutes(in.Pause)
	resume, hasResume := clockToMinutes(in.Resume)
	if hasPause && hasResume {
		total -= resume - pause
	}

	return round2(clampHours(float64(total)))
}

// ScheduledHours computes the planned hours of a configured day using the
// same subtraction rule as CompletedHours. Rest days short-circuit to the
// fixed credit.
func ScheduledHours(d models.DaySchedule) float64 {
	if d.RestDay {
		return RestDayHours
	}
	return CompletedHours(DayInstants{
		Entry:  d.Entry,
		Pause:  d.PauseOut,
		Resume: d.PauseIn,
		Exit:   d.Exit,
	})
}

// InstantsFromEvents reduces a day's normalized events to its meaningful
// instants: earliest entry, latest exit, earliest pause and earliest
// resume. Events with unparseable times are ignored.
func InstantsFromEvents(events []models.ClockEvent) DayInstants {
	var in DayInstants
	for _, e := range events {
		t, ok := clockToMinutes(e.Time)
		if !ok {
			continue
		}
		switch e.Kind {
		case models.KindEntry:
			if cur, ok := clockToMinutes(in.Entry); !ok || t < cur {
				in.Entry = e.Time
			}
		case models.KindExit:
			if cur, ok := clockToMinutes(in.Exit); !ok || t > cur {
				in.Exit = e.Time
			}
		case models.KindPause:
			if cur, ok := clockToMinutes(in.Pause); !ok || t < cur {
				in.Pause = e.Time
			}
		case models.KindResume:
			if cur, ok := clockToMinutes(in.Resume); !ok || t < cur {
				in.Resume = e.Time
			}
		}
	}
	return in
}

// FormatHours renders decimal hours as "7h30m".
func FormatHours(hours float64) string {
	whole := int(hours)
	minutes := int(math.Round((hours - float64(whole)) * 60))
	if minutes == 60 {
		whole++
		minutes = 0
	}
	return strconv.Itoa(whole) + "h" + pad2(minutes) + "m"
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
