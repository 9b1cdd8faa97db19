package timesheet

import (
	"sort"
	"time"

	"github.com/carlosalbertovr/intratime-killer/models"
)

// RawRecord is a vendor clock record after wire decoding: the numeric type
// code already resolved to a kind, the combined date-time parsed into a
// local timestamp.
type RawRecord struct {
	SourceID string
	Kind     models.EventKind
	At       time.Time
}

// NormalizeHistory groups raw vendor records by calendar day and derives
// one immutable DayHistory per day: per-record normalized events with
// HH:MM display times sorted by canonical display order, plus the
// finalized total computed from the day's earliest entry, latest exit and
// earliest pause/resume instants. Days come back sorted by date
// descending for history display.
func NormalizeHistory(records []RawRecord) []models.DayHistory {
	byDay := make(map[string][]RawRecord)
	for _, r := range records {
		date := r.At.Format("2006-01-02")
		byDay[date] = append(byDay[date], r)
	}

	days := make([]models.DayHistory, 0, len(byDay))
	for date, recs := range byDay {
		// Instant extraction needs the original chronological order.
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].At.Before(recs[j].At)
		})

		events := make([]models.ClockEvent, 0, len(recs))
		for _, r := range recs {
			events = append(events, models.ClockEvent{
				SourceID: r.SourceID,
				Date:     date,
				Kind:     r.Kind,
				Time:     r.At.Format("15:04"),
			})
		}

		total := CompletedHours(InstantsFromEvents(events))

		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Kind.DisplayOrder() < events[j].Kind.DisplayOrder()
		})

		days = append(days, models.DayHistory{
			Date:       date,
			Events:     events,
			TotalHours: total,
		})
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Date > days[j].Date
	})

	return days
}

// HistoryByDate indexes normalized days for overlaying onto a week view.
// Days without events are skipped.
func HistoryByDate(days []models.DayHistory) map[string]models.DayHistory {
	m := make(map[string]models.DayHistory, len(days))
	for _, d := range days {
		if len(d.Events) > 0 {
			m[d.Date] = d
		}
	}
	return m
}
