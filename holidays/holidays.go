// Package holidays provides the bank-holiday lookup table. The data ships
// embedded with the binary; dates are plain YYYY-MM-DD strings so range
// filtering is a lexicographic comparison.
package holidays

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
)

//go:embed bank_holidays.json
var bankHolidaysJSON []byte

// Holiday is one bank-holiday entry.
type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// Table answers holiday queries for the embedded (or injected) data set.
type Table struct {
	holidays []Holiday
	byDate   map[string]string
}

// Load parses the embedded bank-holiday data.
func Load() (*Table, error) {
	var file struct {
		Holidays []Holiday `json:"holidays"`
	}
	if err := json.Unmarshal(bankHolidaysJSON, &file); err != nil {
		return nil, fmt.Errorf("parse embedded bank holidays: %w", err)
	}
	return NewTable(file.Holidays), nil
}

// NewTable builds a table from an explicit holiday list. Used by tests
// and by anyone overriding the embedded data.
func NewTable(list []Holiday) *Table {
	t := &Table{
		holidays: make([]Holiday, len(list)),
		byDate:   make(map[string]string, len(list)),
	}
	copy(t.holidays, list)
	sort.Slice(t.holidays, func(i, j int) bool { return t.holidays[i].Date < t.holidays[j].Date })
	for _, h := range t.holidays {
		t.byDate[h.Date] = h.Name
	}
	return t
}

// IsHoliday reports whether the date is a bank holiday.
func (t *Table) IsHoliday(date string) bool {
	_, ok := t.byDate[date]
	return ok
}

// Name returns the holiday name for the date, if any.
func (t *Table) Name(date string) (string, bool) {
	name, ok := t.byDate[date]
	return name, ok
}

// InRange returns the holidays with from <= date <= to, in date order.
func (t *Table) InRange(from, to string) []Holiday {
	var out []Holiday
	for _, h := range t.holidays {
		if h.Date >= from && h.Date <= to {
			out = append(out, h)
		}
	}
	return out
}

// All returns every known holiday in date order.
func (t *Table) All() []Holiday {
	out := make([]Holiday, len(t.holidays))
	copy(out, t.holidays)
	return out
}
