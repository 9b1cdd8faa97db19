package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/carlosalbertovr/intratime-killer/holidays"
	"github.com/carlosalbertovr/intratime-killer/intratime"
	"github.com/carlosalbertovr/intratime-killer/middleware"
	"github.com/carlosalbertovr/intratime-killer/models"
	"github.com/carlosalbertovr/intratime-killer/timesheet"
)

type HistoryHandler struct {
	client   *intratime.Client
	holidays *holidays.Table
	now      func() time.Time
}

func NewHistoryHandler(client *intratime.Client, table *holidays.Table, now func() time.Time) *HistoryHandler {
	return &HistoryHandler{
		client:   client,
		holidays: table,
		now:      now,
	}
}

// DayView is a normalized history day decorated for the calendar:
// holiday name and, for today only, the live in-progress hours.
type DayView struct {
	models.DayHistory
	Holiday    string  `json:"holiday,omitempty"`
	InProgress bool    `json:"in_progress"`
	LiveHours  float64 `json:"live_hours,omitempty"`
}

// monthOf resolves the requested YYYY-MM month, defaulting to the
// current one.
func (h *HistoryHandler) monthOf(r *http.Request) (time.Time, error) {
	param := r.URL.Query().Get("month")
	if param == "" {
		now := h.now()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local), nil
	}
	t, err := time.ParseInLocation("2006-01", param, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, use YYYY-MM", param)
	}
	return t, nil
}

// fetchMonth retrieves and normalizes the vendor history for the month.
func (h *HistoryHandler) fetchMonth(r *http.Request, token string, month time.Time) ([]models.DayHistory, error) {
	from := month.Format("2006-01-02") + " 00:00:00"
	to := month.AddDate(0, 1, -1).Format("2006-01-02") + " 23:59:59"

	clockings, err := h.client.FetchClockings(r.Context(), token, from, to)
	if err != nil {
		return nil, err
	}
	return timesheet.NormalizeHistory(intratime.ToRawRecords(clockings)), nil
}

// decorate attaches holiday names and live in-progress hours. In-progress
// totals only make sense for the current calendar day.
func (h *HistoryHandler) decorate(days []models.DayHistory) []DayView {
	now := h.now()
	today := now.Format("2006-01-02")

	views := make([]DayView, 0, len(days))
	for _, day := range days {
		view := DayView{DayHistory: day}
		if name, ok := h.holidays.Name(day.Date); ok {
			view.Holiday = name
		}
		if day.Date == today && day.HasKind(models.KindEntry) && !day.HasKind(models.KindExit) {
			hours, _ := timesheet.InProgressHours(timesheet.InstantsFromEvents(day.Events), now)
			view.InProgress = true
			view.LiveHours = hours
		}
		views = append(views, view)
	}
	return views
}

// Month returns the normalized clock history for one month, newest day
// first.
func (h *HistoryHandler) Month(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, "Session not found in context", http.StatusUnauthorized)
		return
	}

	month, err := h.monthOf(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	days, err := h.fetchMonth(r, session.VendorToken, month)
	if err != nil {
		log.Printf("❌ Failed to fetch history: %v", err)
		writeVendorError(w, err)
		return
	}

	views := h.decorate(days)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"month": month.Format("2006-01"),
		"days":  views,
		"count": len(views),
	})
}

// Export streams the month's normalized events as CSV.
func (h *HistoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, "Session not found in context", http.StatusUnauthorized)
		return
	}

	month, err := h.monthOf(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	days, err := h.fetchMonth(r, session.VendorToken, month)
	if err != nil {
		log.Printf("❌ Failed to fetch history for export: %v", err)
		writeVendorError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="fichajes-%s.csv"`, month.Format("2006-01")))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"date", "kind", "time", "total_hours", "holiday"})
	for _, day := range days {
		holiday, _ := h.holidays.Name(day.Date)
		for _, ev := range day.Events {
			writer.Write([]string{
				ev.Date,
				string(ev.Kind),
				ev.Time,
				strconv.FormatFloat(day.TotalHours, 'f', 2, 64),
				holiday,
			})
		}
	}
}

// Holidays returns the bank holidays inside an inclusive date range.
func (h *HistoryHandler) Holidays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	var list []holidays.Holiday
	if from == "" && to == "" {
		list = h.holidays.All()
	} else {
		if from == "" || to == "" {
			writeError(w, "Both from and to are required", http.StatusBadRequest)
			return
		}
		list = h.holidays.InRange(from, to)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"holidays": list,
		"count":    len(list),
	})
}
