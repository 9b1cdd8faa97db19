package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/carlosalbertovr/intratime-killer/auth"
	"github.com/carlosalbertovr/intratime-killer/intratime"
	"github.com/carlosalbertovr/intratime-killer/models"
	"github.com/carlosalbertovr/intratime-killer/store"
)

type AuthHandler struct {
	client   *intratime.Client
	sessions *auth.SessionManager
	store    *store.Store
}

func NewAuthHandler(client *intratime.Client, sessions *auth.SessionManager, st *store.Store) *AuthHandler {
	return &AuthHandler{
		client:   client,
		sessions: sessions,
		store:    st,
	}
}

// Login forwards credentials to the vendor, caches the returned profile
// and issues the API session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.User == "" || req.Pin == "" {
		writeError(w, "User and pin are required", http.StatusBadRequest)
		return
	}

	result, err := h.client.Login(r.Context(), req.User, req.Pin)
	if err != nil {
		log.Printf("Login failed for user %s: %v", req.User, err)
		writeVendorError(w, err)
		return
	}

	user := models.User{
		ID:          result.UserID,
		Username:    result.Username,
		Name:        result.Name,
		Email:       result.Email,
		WeeklyQuota: result.WeeklyHours,
	}

	// Prefer a previously configured quota over the vendor default.
	if cached, err := h.store.GetProfile(user.ID); err == nil && cached.WeeklyQuota > 0 {
		user.WeeklyQuota = cached.WeeklyQuota
	}

	if err := h.store.SaveProfile(user); err != nil {
		log.Printf("Warning: failed to cache profile for user %s: %v", user.Username, err)
	}
	if err := h.store.SaveSession(result.Token, user.ID); err != nil {
		log.Printf("Warning: failed to persist session for user %s: %v", user.Username, err)
	}

	token, err := h.sessions.GenerateToken(user, result.Token)
	if err != nil {
		log.Printf("Failed to generate token for user %s: %v", user.Username, err)
		writeError(w, "Failed to generate authentication token", http.StatusInternalServerError)
		return
	}

	log.Printf("✅ User logged in: %s", user.Username)

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token: token,
		User:  user,
	})
}

// Logout clears the persisted session. The issued JWT simply expires; the
// vendor token it carried is forgotten here.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.store.ClearSession(); err != nil {
		log.Printf("Failed to clear session: %v", err)
		writeError(w, "Failed to clear session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
