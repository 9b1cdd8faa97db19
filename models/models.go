// models.go
// Defines the core data structures shared by the API handlers and the
// timesheet engine.

package models

// EventKind is the canonical tagged representation of a clock event type.
// The vendor's four-optional-field shape is converted to/from this variant
// only at the protocol boundary.
type EventKind string

const (
	KindEntry  EventKind = "in"
	KindPause  EventKind = "pause"
	KindResume EventKind = "resume"
	KindExit   EventKind = "out"
)

// Vendor wire codes for the user_action / INOUT_TYPE fields.
const (
	CodeEntry  = 0
	CodeExit   = 1
	CodePause  = 2
	CodeResume = 3
)

// KindFromCode maps a vendor numeric type code to an EventKind.
func KindFromCode(code int) (EventKind, bool) {
	switch code {
	case CodeEntry:
		return KindEntry, true
	case CodeExit:
		return KindExit, true
	case CodePause:
		return KindPause, true
	case CodeResume:
		return KindResume, true
	}
	return "", false
}

// Code returns the vendor numeric type code for the kind.
func (k EventKind) Code() int {
	switch k {
	case KindEntry:
		return CodeEntry
	case KindExit:
		return CodeExit
	case KindPause:
		return CodePause
	case KindResume:
		return CodeResume
	}
	return -1
}

// DisplayOrder returns the canonical ordering used when a day's events are
// shown: Entry < Pause < Resume < Exit.
func (k EventKind) DisplayOrder() int {
	switch k {
	case KindEntry:
		return 1
	case KindPause:
		return 2
	case KindResume:
		return 3
	case KindExit:
		return 4
	}
	return 99
}

// Label returns a human-readable name for the kind.
func (k EventKind) Label() string {
	switch k {
	case KindEntry:
		return "Entrada"
	case KindPause:
		return "Pausa"
	case KindResume:
		return "Vuelta"
	case KindExit:
		return "Salida"
	}
	return "Fichaje"
}

// ClockEvent is a single clock-in/out event, either planned for submission
// or normalized from vendor history.
type ClockEvent struct {
	SourceID string    `json:"source_id,omitempty"` // vendor record id, empty for planned events
	Date     string    `json:"date"`                // YYYY-MM-DD, plain calendar day
	Kind     EventKind `json:"kind"`
	Time     string    `json:"time"` // HH:MM local wall clock
}

// DaySchedule is a planned (not yet submitted) day configuration.
// PauseOut/PauseIn must be both present or both absent in a valid
// schedule; the validator enforces this.
type DaySchedule struct {
	Weekday      string  `json:"weekday"`
	Date         string  `json:"date"`
	Entry        string  `json:"entry"`
	PauseOut     string  `json:"pause_out,omitempty"`
	PauseIn      string  `json:"pause_in,omitempty"`
	Exit         string  `json:"exit"`
	LunchEnabled bool    `json:"lunch_enabled"`
	Hours        float64 `json:"hours"`
	RestDay      bool    `json:"rest_day,omitempty"`
}

// DayHistory is the authoritative remote record for one day, produced by
// the history normalizer and never mutated afterwards.
type DayHistory struct {
	Date       string       `json:"date"`
	Events     []ClockEvent `json:"events"`
	TotalHours float64      `json:"total_hours"`
}

// HasKind reports whether any event of the given kind exists for the day.
func (h DayHistory) HasKind(k EventKind) bool {
	for _, e := range h.Events {
		if e.Kind == k {
			return true
		}
	}
	return false
}

// WeekDay is one weekday of the ephemeral week view: the configured
// schedule overlaid with server history, holidays and effective hours.
type WeekDay struct {
	Schedule   DaySchedule `json:"schedule"`
	History    *DayHistory `json:"history,omitempty"`
	Holiday    string      `json:"holiday,omitempty"` // holiday name, empty if none
	Hours      float64     `json:"hours"`             // effective hours used for week totals
	InProgress bool        `json:"in_progress"`
	Completed  bool        `json:"completed"`
}

// WeekView aggregates the five scheduled weekdays (Mon-Fri) against the
// weekly quota. Rebuilt from scratch on every request, never persisted.
type WeekView struct {
	Start      string    `json:"start"` // Monday, YYYY-MM-DD
	Days       []WeekDay `json:"days"`
	TotalHours float64   `json:"total_hours"`
	Quota      float64   `json:"quota"`
	Difference float64   `json:"difference"` // total - quota
	Completed  bool      `json:"completed"`
}

// User is the cached vendor profile for the active session.
type User struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	WeeklyQuota float64 `json:"weekly_quota"` // target weekly worked hours
}

// LoginRequest is the payload for /api/login.
type LoginRequest struct {
	User string `json:"user"`
	Pin  string `json:"pin"`
}

// LoginResponse returns the API session token and the cached profile.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// WeekRequest carries user-edited schedules for validation or submission.
type WeekRequest struct {
	Start string        `json:"start"`
	Days  []DaySchedule `json:"days"`
}

// ValidationResponse lists human-readable violations plus the per-day
// field sets used to highlight offending inputs.
type ValidationResponse struct {
	Valid  bool                `json:"valid"`
	Errors []string            `json:"errors"`
	Fields map[string][]string `json:"fields"` // date -> implicated field names
}

// SubmitResponse reports the outcome of a week submission.
type SubmitResponse struct {
	BatchID   string `json:"batch_id"`
	Planned   int    `json:"planned"`
	Submitted int    `json:"submitted"`
	Message   string `json:"message"`
}

// QuotaRequest updates the weekly working-hours quota.
type QuotaRequest struct {
	WeeklyHours float64 `json:"weekly_hours"`
}
