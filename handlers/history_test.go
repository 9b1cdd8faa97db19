package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/carlosalbertovr/intratime-killer/holidays"
	"github.com/carlosalbertovr/intratime-killer/intratime"
)

func newHistoryTest(t *testing.T, vendor http.Handler) *HistoryHandler {
	t.Helper()

	srv := httptest.NewServer(vendor)
	t.Cleanup(srv.Close)

	table, err := holidays.Load()
	if err != nil {
		t.Fatalf("holidays.Load() error = %v", err)
	}

	client := intratime.NewClient(srv.URL, 5*time.Second, 0)
	return NewHistoryHandler(client, table, testNow)
}

type monthResponse struct {
	Month string    `json:"month"`
	Days  []DayView `json:"days"`
	Count int       `json:"count"`
}

func TestHistoryMonth(t *testing.T) {
	h := newHistoryTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("from") != "2026-03-01 00:00:00" || q.Get("to") != "2026-03-31 23:59:59" {
			t.Errorf("month bounds = %v", q)
		}
		w.Write([]byte(`[
			{"INOUT_ID":1,"INOUT_TYPE":0,"INOUT_DATE":"2026-03-02 09:00:10"},
			{"INOUT_ID":2,"INOUT_TYPE":1,"INOUT_DATE":"2026-03-02 17:00:00"},
			{"INOUT_ID":3,"INOUT_TYPE":0,"INOUT_DATE":"2026-03-19 09:00:00"},
			{"INOUT_ID":4,"INOUT_TYPE":1,"INOUT_DATE":"2026-03-19 15:00:00"}
		]`))
	}))

	w := httptest.NewRecorder()
	h.Month(w, authedRequest(http.MethodGet, "/api/history?month=2026-03", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Month() status = %d, body %s", w.Code, w.Body.String())
	}

	var resp monthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Month != "2026-03" || resp.Count != 2 {
		t.Fatalf("response = month %s, count %d", resp.Month, resp.Count)
	}

	// Newest day first; San José (2026-03-19) carries its holiday name.
	if resp.Days[0].Date != "2026-03-19" || resp.Days[1].Date != "2026-03-02" {
		t.Errorf("day order = %s, %s", resp.Days[0].Date, resp.Days[1].Date)
	}
	if resp.Days[0].Holiday != "San José" {
		t.Errorf("holiday = %q, want San José", resp.Days[0].Holiday)
	}
	if resp.Days[1].Holiday != "" {
		t.Errorf("plain day carries holiday %q", resp.Days[1].Holiday)
	}
	if resp.Days[1].TotalHours != 8 {
		t.Errorf("2026-03-02 total = %v, want 8", resp.Days[1].TotalHours)
	}
}

func TestHistoryMonthLiveHours(t *testing.T) {
	// testNow is 2026-03-04 12:00; an open entry today shows live hours.
	h := newHistoryTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"INOUT_ID":1,"INOUT_TYPE":0,"INOUT_DATE":"2026-03-04 09:00:00"},
			{"INOUT_ID":2,"INOUT_TYPE":0,"INOUT_DATE":"2026-03-03 09:00:00"}
		]`))
	}))

	w := httptest.NewRecorder()
	h.Month(w, authedRequest(http.MethodGet, "/api/history?month=2026-03", nil))

	var resp monthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	today := resp.Days[0]
	if today.Date != "2026-03-04" || !today.InProgress || today.LiveHours != 3 {
		t.Errorf("today = %+v, want 3 live hours in progress", today)
	}
	// An open entry on a past day stays frozen: no live counter.
	if resp.Days[1].InProgress {
		t.Errorf("past open day marked in progress: %+v", resp.Days[1])
	}
}

func TestHistoryMonthBadParam(t *testing.T) {
	h := newHistoryTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	w := httptest.NewRecorder()
	h.Month(w, authedRequest(http.MethodGet, "/api/history?month=marzo", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Month() with bad param status = %d, want 400", w.Code)
	}
}

func TestHistoryMonthVendorDown(t *testing.T) {
	h := newHistoryTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	w := httptest.NewRecorder()
	h.Month(w, authedRequest(http.MethodGet, "/api/history?month=2026-03", nil))

	if w.Code != http.StatusBadGateway {
		t.Errorf("Month() with vendor down status = %d, want 502", w.Code)
	}
}

func TestHistoryExport(t *testing.T) {
	h := newHistoryTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"INOUT_ID":1,"INOUT_TYPE":0,"INOUT_DATE":"2026-03-02 09:00:00"},
			{"INOUT_ID":2,"INOUT_TYPE":1,"INOUT_DATE":"2026-03-02 17:00:00"}
		]`))
	}))

	w := httptest.NewRecorder()
	h.Export(w, authedRequest(http.MethodGet, "/api/history/export?month=2026-03", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Export() status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "text/csv" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "fichajes-2026-03.csv") {
		t.Errorf("Content-Disposition = %q", got)
	}

	rows, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("csv has %d rows, want header plus 2 events", len(rows))
	}
	if rows[0][0] != "date" || rows[0][3] != "total_hours" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "2026-03-02" || rows[1][1] != "in" || rows[1][3] != "8.00" {
		t.Errorf("first event row = %v", rows[1])
	}
}

func TestHolidaysEndpoint(t *testing.T) {
	h := newHistoryTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	w := httptest.NewRecorder()
	h.Holidays(w, authedRequest(http.MethodGet, "/api/holidays?from=2026-07-01&to=2026-07-31", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Holidays() status = %d", w.Code)
	}

	var resp struct {
		Holidays []holidays.Holiday `json:"holidays"`
		Count    int                `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("July 2026 has %d holidays, want 2 (San Fermín, Santiago)", resp.Count)
	}
	if resp.Holidays[0].Date != "2026-07-07" {
		t.Errorf("first holiday = %+v", resp.Holidays[0])
	}
}

func TestHolidaysEndpointIncompleteRange(t *testing.T) {
	h := newHistoryTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	w := httptest.NewRecorder()
	h.Holidays(w, authedRequest(http.MethodGet, "/api/holidays?from=2026-07-01", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Holidays() with half a range status = %d, want 400", w.Code)
	}
}
