package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/carlosalbertovr/intratime-killer/middleware"
	"github.com/carlosalbertovr/intratime-killer/models"
	"github.com/carlosalbertovr/intratime-killer/store"
)

type UserHandler struct {
	store *store.Store
}

func NewUserHandler(st *store.Store) *UserHandler {
	return &UserHandler{store: st}
}

// Profile returns the cached vendor profile for the session user.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, "Session not found in context", http.StatusUnauthorized)
		return
	}

	user, err := h.store.GetProfile(session.UserID)
	if err != nil {
		writeError(w, "Profile not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateQuota changes the weekly working-hours target.
func (h *UserHandler) UpdateQuota(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, "Session not found in context", http.StatusUnauthorized)
		return
	}

	var req models.QuotaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.WeeklyHours <= 0 || req.WeeklyHours > 80 {
		writeError(w, "Weekly hours must be between 0 and 80", http.StatusBadRequest)
		return
	}

	if err := h.store.UpdateQuota(session.UserID, req.WeeklyHours); err != nil {
		log.Printf("Failed to update quota for user %s: %v", session.Username, err)
		writeError(w, "Failed to update quota", http.StatusInternalServerError)
		return
	}

	log.Printf("✅ Quota updated for %s: %.1fh", session.Username, req.WeeklyHours)

	writeJSON(w, http.StatusOK, map[string]float64{"weekly_hours": req.WeeklyHours})
}
