package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/carlosalbertovr/intratime-killer/holidays"
	"github.com/carlosalbertovr/intratime-killer/intratime"
	"github.com/carlosalbertovr/intratime-killer/middleware"
	"github.com/carlosalbertovr/intratime-killer/models"
	"github.com/carlosalbertovr/intratime-killer/store"
	"github.com/carlosalbertovr/intratime-killer/timesheet"
)

type WeekHandler struct {
	client   *intratime.Client
	store    *store.Store
	holidays *holidays.Table
	now      func() time.Time
}

func NewWeekHandler(client *intratime.Client, st *store.Store, table *holidays.Table, now func() time.Time) *WeekHandler {
	return &WeekHandler{
		client:   client,
		store:    st,
		holidays: table,
		now:      now,
	}
}

// weekStart resolves the requested week to its Monday. An absent or
// malformed start parameter falls back to the current week.
func (h *WeekHandler) weekStart(r *http.Request) time.Time {
	if param := r.URL.Query().Get("start"); param != "" {
		if t, err := time.ParseInLocation("2006-01-02", param, time.Local); err == nil {
			return timesheet.MondayOf(t)
		}
	}
	return timesheet.MondayOf(h.now())
}

// fetchWeekHistory retrieves and normalizes the vendor history covering
// Monday through Friday of the week.
func (h *WeekHandler) fetchWeekHistory(r *http.Request, token string, monday time.Time) (map[string]models.DayHistory, error) {
	from := monday.Format("2006-01-02") + " 00:00:00"
	to := monday.AddDate(0, 0, 4).Format("2006-01-02") + " 23:59:59"

	clockings, err := h.client.FetchClockings(r.Context(), token, from, to)
	if err != nil {
		return nil, err
	}
	return timesheet.HistoryByDate(timesheet.NormalizeHistory(intratime.ToRawRecords(clockings))), nil
}

// View builds the week view: default schedules overlaid with server
// history, holidays and the quota. A history fetch failure degrades to
// configuration-only hours instead of failing the request.
func (h *WeekHandler) View(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, "Session not found in context", http.StatusUnauthorized)
		return
	}

	monday := h.weekStart(r)
	days := timesheet.DefaultWeek(monday)

	history, err := h.fetchWeekHistory(r, session.VendorToken, monday)
	if err != nil {
		log.Printf("⚠️  History fetch failed, serving configured hours only: %v", err)
		history = map[string]models.DayHistory{}
	}

	view := timesheet.BuildWeek(days, history, h.holidays, session.WeeklyQuota, h.now())
	writeJSON(w, http.StatusOK, view)
}

// Validate checks user-edited schedules and reports violations per field.
// Validation never fails the request; an invalid week is a 200 with
// valid=false so the frontend can annotate inputs.
func (h *WeekHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.WeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := timesheet.ValidateWeek(req.Days)
	writeJSON(w, http.StatusOK, models.ValidationResponse{
		Valid:  result.Valid(),
		Errors: result.Errors,
		Fields: result.FieldsByDate(),
	})
}

// Submit validates the edited week, reconciles it against server history
// and submits the remaining events sequentially. Validation errors block
// the whole submission; days with any existing event are never
// re-submitted; a mid-sequence vendor failure aborts the rest and the
// already-accepted events stay.
func (h *WeekHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, "Session not found in context", http.StatusUnauthorized)
		return
	}

	var req models.WeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Days) == 0 {
		writeError(w, "No days to submit", http.StatusBadRequest)
		return
	}

	if result := timesheet.ValidateWeek(req.Days); !result.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, models.ValidationResponse{
			Valid:  false,
			Errors: result.Errors,
			Fields: result.FieldsByDate(),
		})
		return
	}

	// Unlike the view, submission needs the real overlay: without it the
	// idempotence guarantee is gone.
	monday, err := time.ParseInLocation("2006-01-02", req.Days[0].Date, time.Local)
	if err != nil {
		writeError(w, "Invalid day date", http.StatusBadRequest)
		return
	}
	history, err := h.fetchWeekHistory(r, session.VendorToken, timesheet.MondayOf(monday))
	if err != nil {
		log.Printf("❌ Refusing to submit without history overlay: %v", err)
		writeVendorError(w, err)
		return
	}

	plan := timesheet.SubmissionPlan(req.Days, history, h.holidays)
	if len(plan) == 0 {
		writeJSON(w, http.StatusOK, models.SubmitResponse{
			BatchID: uuid.NewString(),
			Message: "Nothing to submit: every day is already clocked, a holiday or a rest day",
		})
		return
	}

	batchID := uuid.NewString()
	submitted, submitErr := h.client.SubmitWeek(r.Context(), session.VendorToken, plan)

	for _, ev := range plan[:submitted] {
		if err := h.store.LogSubmission(batchID, session.UserID, ev); err != nil {
			log.Printf("Warning: failed to journal submission %s %s: %v", ev.Date, ev.Kind, err)
		}
	}

	if submitErr != nil {
		log.Printf("❌ Submission aborted after %d/%d events: %v", submitted, len(plan), submitErr)
		writeJSON(w, http.StatusBadGateway, models.SubmitResponse{
			BatchID:   batchID,
			Planned:   len(plan),
			Submitted: submitted,
			Message:   fmt.Sprintf("Submission aborted after %d of %d events: %v", submitted, len(plan), submitErr),
		})
		return
	}

	log.Printf("📤 Week submitted by %s: %d events (batch %s)", session.Username, submitted, batchID)

	writeJSON(w, http.StatusOK, models.SubmitResponse{
		BatchID:   batchID,
		Planned:   len(plan),
		Submitted: submitted,
		Message:   "Week submitted",
	})
}
