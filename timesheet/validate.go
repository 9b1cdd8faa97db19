package timesheet

import (
	"fmt"
	"sort"

	"github.com/carlosalbertovr/intratime-killer/models"
)

// ScheduleField names one of the four time inputs of a day. Used to point
// the frontend at the offending input.
type ScheduleField string

const (
	FieldEntry    ScheduleField = "entry"
	FieldPauseOut ScheduleField = "pause_out"
	FieldPauseIn  ScheduleField = "pause_in"
	FieldExit     ScheduleField = "exit"
)

// ValidationResult is the validator output: display messages in the order
// the violations were found, plus a deduplicated per-day set of implicated
// fields keyed by date.
type ValidationResult struct {
	Errors []string
	Fields map[string]map[ScheduleField]bool
}

// Valid reports whether no violation was found.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// FieldsByDate flattens the field sets into sorted slices for JSON output.
func (r ValidationResult) FieldsByDate() map[string][]string {
	out := make(map[string][]string, len(r.Fields))
	for date, set := range r.Fields {
		names := make([]string, 0, len(set))
		for f := range set {
			names = append(names, string(f))
		}
		sort.Strings(names)
		out[date] = names
	}
	return out
}

// ValidateWeek checks every non-rest day for chronological and
// completeness consistency: each present instant must be strictly earlier
// than every later instant of the day's natural order, and pause-out /
// pause-in must appear as a pair. Absent instants are skipped, never
// compared. The input is not mutated.
func ValidateWeek(days []models.DaySchedule) ValidationResult {
	res := ValidationResult{Fields: make(map[string]map[ScheduleField]bool)}

	mark := func(date string, f ScheduleField) {
		if res.Fields[date] == nil {
			res.Fields[date] = make(map[ScheduleField]bool)
		}
		res.Fields[date][f] = true
	}

	for _, day := range days {
		if day.RestDay {
			continue
		}

		entry, hasEntry := clockToMinutes(day.Entry)
		pauseOut, hasPauseOut := clockToMinutes(day.PauseOut)
		pauseIn, hasPauseIn := clockToMinutes(day.PauseIn)
		exit, hasExit := clockToMinutes(day.Exit)

		// Each violation is tagged to the earlier-occurring field.
		if hasEntry && hasPauseOut && entry >= pauseOut {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: la entrada (%s) debe ser antes que la pausa (%s)", day.Weekday, day.Entry, day.PauseOut))
			mark(day.Date, FieldEntry)
		}
		if hasEntry && hasPauseIn && entry >= pauseIn {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: la entrada (%s) debe ser antes que el regreso (%s)", day.Weekday, day.Entry, day.PauseIn))
			mark(day.Date, FieldEntry)
		}
		if hasEntry && hasExit && entry >= exit {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: la entrada (%s) debe ser antes que la salida (%s)", day.Weekday, day.Entry, day.Exit))
			mark(day.Date, FieldEntry)
		}
		if hasPauseOut && hasPauseIn && pauseOut >= pauseIn {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: la pausa (%s) debe ser antes que el regreso (%s)", day.Weekday, day.PauseOut, day.PauseIn))
			mark(day.Date, FieldPauseOut)
		}
		if hasPauseOut && hasExit && pauseOut >= exit {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: la pausa (%s) debe ser antes que la salida (%s)", day.Weekday, day.PauseOut, day.Exit))
			mark(day.Date, FieldPauseOut)
		}
		if hasPauseIn && hasExit && pauseIn >= exit {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: el regreso (%s) debe ser antes que la salida (%s)", day.Weekday, day.PauseIn, day.Exit))
			mark(day.Date, FieldPauseIn)
		}

		// Lunch instants come as a pair or not at all.
		if hasPauseOut && !hasPauseIn {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: falta la hora de regreso de comida", day.Weekday))
			mark(day.Date, FieldPauseIn)
		}
		if hasPauseIn && !hasPauseOut {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: falta la hora de pausa de comida", day.Weekday))
			mark(day.Date, FieldPauseOut)
		}
	}

	return res
}
