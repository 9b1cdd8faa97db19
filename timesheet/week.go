package timesheet

import (
	"time"

	"github.com/carlosalbertovr/intratime-killer/models"
)

// HolidayLookup is the bank-holiday collaborator the week engine needs.
type HolidayLookup interface {
	IsHoliday(date string) bool
	Name(date string) (string, bool)
}

var weekdayLabels = [5]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes"}

// Default timetable: full day with lunch Monday-Thursday, short Friday
// without lunch.
var (
	defaultFullDay  = models.DaySchedule{Entry: "09:00", PauseOut: "14:00", PauseIn: "15:00", Exit: "18:30", LunchEnabled: true}
	defaultShortDay = models.DaySchedule{Entry: "09:00", Exit: "15:00", LunchEnabled: false}
)

// MondayOf returns the Monday 00:00 of the week containing t.
func MondayOf(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // ISO: Sunday belongs to the ending week
	}
	monday := t.AddDate(0, 0, -(wd - 1))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// DefaultWeek generates the five weekday schedules for the week starting
// at monday, pre-filled with the default timetable and computed hours.
func DefaultWeek(monday time.Time) []models.DaySchedule {
	days := make([]models.DaySchedule, 0, len(weekdayLabels))
	for i, label := range weekdayLabels {
		day := defaultFullDay
		if i == 4 {
			day = defaultShortDay
		}
		day.Weekday = label
		day.Date = monday.AddDate(0, 0, i).Format("2006-01-02")
		day.Hours = ScheduledHours(day)
		days = append(days, day)
	}
	return days
}

// dayInProgress reports whether a history day has an entry but no exit.
func dayInProgress(h models.DayHistory) bool {
	return h.HasKind(models.KindEntry) && !h.HasKind(models.KindExit)
}

// BuildWeek merges the configured week with the server-side history
// overlay, holidays and the weekly quota into the ephemeral week view.
// Per-day effective hours: holiday or rest day -> fixed credit; history in
// progress -> calculator with now as reference; history complete -> the
// finalized history total; otherwise the configured hours. A history
// fetch failure must be given to this function as an empty overlay so the
// view degrades to configuration-only hours.
func BuildWeek(days []models.DaySchedule, history map[string]models.DayHistory, holidays HolidayLookup, quota float64, now time.Time) models.WeekView {
	view := models.WeekView{Quota: quota, Days: make([]models.WeekDay, 0, len(days))}
	if len(days) > 0 {
		view.Start = days[0].Date
	}

	completed := true
	for _, day := range days {
		wd := models.WeekDay{Schedule: day}
		if day.Hours == 0 && !day.RestDay {
			wd.Schedule.Hours = ScheduledHours(day)
		}
		if day.RestDay {
			wd.Schedule.Hours = RestDayHours
		}

		holiday := holidays.IsHoliday(day.Date)
		if holiday {
			if name, ok := holidays.Name(day.Date); ok {
				wd.Holiday = name
			}
		}

		h, hasHistory := history[day.Date]
		if hasHistory {
			hist := h
			wd.History = &hist
		}

		switch {
		case holiday, day.RestDay:
			wd.Hours = RestDayHours
			wd.Completed = true
		case hasHistory && dayInProgress(h):
			hours, _ := InProgressHours(InstantsFromEvents(h.Events), now)
			wd.Hours = hours
			wd.InProgress = true
		case hasHistory:
			wd.Hours = h.TotalHours
			wd.Completed = h.HasKind(models.KindExit)
		default:
			wd.Hours = wd.Schedule.Hours
		}

		if !wd.Completed {
			completed = false
		}

		view.TotalHours += wd.Hours
		view.Days = append(view.Days, wd)
	}

	view.TotalHours = round2(view.TotalHours)
	view.Completed = completed && len(days) > 0
	view.Difference = round2(view.TotalHours - quota)
	return view
}

// SubmissionPlan decides which events a "submit the week" action must
// send. Rest days, holidays and days that already have any history event
// are skipped entirely; re-submitting a week therefore never produces new
// events for a day once anything exists for it, even a partial entry.
// Per included day the events come in the vendor's required order: Entry,
// Pause (lunch enabled and configured), Resume (lunch enabled and
// configured), Exit, each only when its time field is set.
func SubmissionPlan(days []models.DaySchedule, history map[string]models.DayHistory, holidays HolidayLookup) []models.ClockEvent {
	var plan []models.ClockEvent
	for _, day := range days {
		if day.RestDay || holidays.IsHoliday(day.Date) {
			continue
		}
		if h, ok := history[day.Date]; ok && len(h.Events) > 0 {
			continue
		}

		if day.Entry != "" {
			plan = append(plan, models.ClockEvent{Date: day.Date, Kind: models.KindEntry, Time: day.Entry})
		}
		if day.LunchEnabled && day.PauseOut != "" {
			plan = append(plan, models.ClockEvent{Date: day.Date, Kind: models.KindPause, Time: day.PauseOut})
		}
		if day.LunchEnabled && day.PauseIn != "" {
			plan = append(plan, models.ClockEvent{Date: day.Date, Kind: models.KindResume, Time: day.PauseIn})
		}
		if day.Exit != "" {
			plan = append(plan, models.ClockEvent{Date: day.Date, Kind: models.KindExit, Time: day.Exit})
		}
	}
	return plan
}
