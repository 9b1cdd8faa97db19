package timesheet

import (
	"testing"
	"time"

	"github.com/carlosalbertovr/intratime-killer/models"
)

type fakeHolidays map[string]string

func (f fakeHolidays) IsHoliday(date string) bool {
	_, ok := f[date]
	return ok
}

func (f fakeHolidays) Name(date string) (string, bool) {
	name, ok := f[date]
	return name, ok
}

func historyDay(date string, times ...string) models.DayHistory {
	kinds := []models.EventKind{models.KindEntry, models.KindPause, models.KindResume, models.KindExit}
	var events []models.ClockEvent
	for i, tm := range times {
		if tm == "" {
			continue
		}
		events = append(events, models.ClockEvent{Date: date, Kind: kinds[i], Time: tm})
	}
	d := models.DayHistory{Date: date, Events: events}
	d.TotalHours = CompletedHours(InstantsFromEvents(events))
	return d
}

func TestMondayOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-03-02", "2026-03-02"}, // Monday maps to itself
		{"2026-03-04", "2026-03-02"}, // midweek
		{"2026-03-08", "2026-03-02"}, // Sunday belongs to the ending week
		{"2026-03-09", "2026-03-09"}, // next Monday
	}

	for _, tt := range tests {
		in, _ := time.Parse("2006-01-02", tt.in)
		got := MondayOf(in.Add(13 * time.Hour))
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("MondayOf(%s) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
		}
		if got.Hour() != 0 || got.Minute() != 0 {
			t.Errorf("MondayOf(%s) not truncated to midnight: %v", tt.in, got)
		}
	}
}

func TestDefaultWeek(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	days := DefaultWeek(monday)

	if len(days) != 5 {
		t.Fatalf("DefaultWeek() produced %d days, want 5", len(days))
	}
	if days[0].Weekday != "Lunes" || days[0].Date != "2026-03-02" {
		t.Errorf("first day = %s %s, want Lunes 2026-03-02", days[0].Weekday, days[0].Date)
	}
	for i := 0; i < 4; i++ {
		if !days[i].LunchEnabled || days[i].Hours != 8.5 {
			t.Errorf("day %d = %+v, want full day with 8.5h", i, days[i])
		}
	}
	friday := days[4]
	if friday.LunchEnabled || friday.Hours != 6 || friday.Exit != "15:00" {
		t.Errorf("friday = %+v, want 09:00-15:00 without lunch", friday)
	}
}

func TestBuildWeekEffectiveHours(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	days := DefaultWeek(monday)
	days[3].RestDay = true

	history := map[string]models.DayHistory{
		// Monday complete with a different exit than configured.
		"2026-03-02": historyDay("2026-03-02", "09:00", "14:00", "15:00", "19:00"),
		// Wednesday in progress: entry only.
		"2026-03-04": historyDay("2026-03-04", "09:00"),
	}
	holidays := fakeHolidays{"2026-03-03": "Festivo local"}
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.Local)

	view := BuildWeek(days, history, holidays, 40, now)

	if view.Start != "2026-03-02" {
		t.Errorf("Start = %s, want 2026-03-02", view.Start)
	}

	// History total wins over configuration.
	if view.Days[0].Hours != 9 || !view.Days[0].Completed {
		t.Errorf("monday = %+v, want 9h completed from history", view.Days[0])
	}
	// Holiday credits the fixed amount and carries the name.
	if view.Days[1].Hours != RestDayHours || view.Days[1].Holiday != "Festivo local" || !view.Days[1].Completed {
		t.Errorf("tuesday = %+v, want 8h holiday", view.Days[1])
	}
	// In-progress day uses the live calculator.
	if !view.Days[2].InProgress || view.Days[2].Hours != 3 {
		t.Errorf("wednesday = %+v, want 3h in progress at 12:00", view.Days[2])
	}
	// Rest day credits the fixed amount.
	if view.Days[3].Hours != RestDayHours || !view.Days[3].Completed {
		t.Errorf("thursday = %+v, want 8h rest day", view.Days[3])
	}
	// No history, no override: configured hours.
	if view.Days[4].Hours != 6 || view.Days[4].Completed {
		t.Errorf("friday = %+v, want configured 6h, not completed", view.Days[4])
	}

	if view.Completed {
		t.Error("week with open days must not be completed")
	}
	if want := 9.0 + 8 + 3 + 8 + 6; view.TotalHours != round2(float64(want)) {
		t.Errorf("TotalHours = %v, want %v", view.TotalHours, want)
	}
	if view.Difference != round2(view.TotalHours-40) {
		t.Errorf("Difference = %v, want total minus quota", view.Difference)
	}
}

func TestBuildWeekCompleted(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	days := DefaultWeek(monday)

	history := make(map[string]models.DayHistory, len(days))
	for _, d := range days {
		history[d.Date] = historyDay(d.Date, d.Entry, d.PauseOut, d.PauseIn, d.Exit)
	}

	view := BuildWeek(days, history, fakeHolidays{}, 40, monday)
	if !view.Completed {
		t.Error("week with exits on every day must be completed")
	}
	if view.TotalHours != 40 {
		t.Errorf("TotalHours = %v, want 40", view.TotalHours)
	}
	if view.Difference != 0 {
		t.Errorf("Difference = %v, want 0", view.Difference)
	}
}

func TestBuildWeekEmptyOverlay(t *testing.T) {
	// A failed history fetch degrades to configuration-only hours.
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	days := DefaultWeek(monday)

	view := BuildWeek(days, map[string]models.DayHistory{}, fakeHolidays{}, 40, monday)
	if view.TotalHours != 40 {
		t.Errorf("TotalHours = %v, want 40 from configuration", view.TotalHours)
	}
	if view.Completed {
		t.Error("configuration-only week must not be completed")
	}
}

func TestSubmissionPlan(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	days := DefaultWeek(monday)
	days[3].RestDay = true

	history := map[string]models.DayHistory{
		// Monday already has a partial punch: no events may be added.
		"2026-03-02": historyDay("2026-03-02", "09:00"),
	}
	holidays := fakeHolidays{"2026-03-03": "Festivo local"}

	plan := SubmissionPlan(days, history, holidays)

	// Wednesday: 4 events. Friday: no lunch, 2 events.
	if len(plan) != 6 {
		t.Fatalf("plan has %d events, want 6: %+v", len(plan), plan)
	}

	wantKinds := []models.EventKind{
		models.KindEntry, models.KindPause, models.KindResume, models.KindExit,
		models.KindEntry, models.KindExit,
	}
	wantDates := []string{
		"2026-03-04", "2026-03-04", "2026-03-04", "2026-03-04",
		"2026-03-06", "2026-03-06",
	}
	for i, ev := range plan {
		if ev.Kind != wantKinds[i] || ev.Date != wantDates[i] {
			t.Errorf("plan[%d] = %s %s, want %s %s", i, ev.Date, ev.Kind, wantDates[i], wantKinds[i])
		}
	}
}

func TestSubmissionPlanIdempotent(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	days := DefaultWeek(monday)

	history := make(map[string]models.DayHistory, len(days))
	for _, d := range days {
		history[d.Date] = historyDay(d.Date, d.Entry, d.PauseOut, d.PauseIn, d.Exit)
	}

	if plan := SubmissionPlan(days, history, fakeHolidays{}); len(plan) != 0 {
		t.Errorf("re-submitting a recorded week planned %d events, want 0", len(plan))
	}
}
