package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carlosalbertovr/intratime-killer/models"
	"github.com/carlosalbertovr/intratime-killer/store"
)

func newUserTest(t *testing.T) (*UserHandler, *store.Store) {
	t.Helper()
	st, err := store.NewMemory()
	if err != nil {
		t.Fatalf("store.NewMemory() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewUserHandler(st), st
}

func TestProfile(t *testing.T) {
	h, st := newUserTest(t)
	user := models.User{ID: "42", Username: "carlos", Name: "Carlos", WeeklyQuota: 40}
	if err := st.SaveProfile(user); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	w := httptest.NewRecorder()
	h.Profile(w, authedRequest(http.MethodGet, "/api/user", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Profile() status = %d", w.Code)
	}
	var got models.User
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if got.ID != "42" || got.Username != "carlos" {
		t.Errorf("profile = %+v", got)
	}
}

func TestProfileMissing(t *testing.T) {
	h, _ := newUserTest(t)

	w := httptest.NewRecorder()
	h.Profile(w, authedRequest(http.MethodGet, "/api/user", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Profile() without cache status = %d, want 404", w.Code)
	}
}

func TestUpdateQuota(t *testing.T) {
	h, st := newUserTest(t)
	if err := st.SaveProfile(models.User{ID: "42", Username: "carlos", WeeklyQuota: 40}); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	body, _ := json.Marshal(models.QuotaRequest{WeeklyHours: 37.5})
	w := httptest.NewRecorder()
	h.UpdateQuota(w, authedRequest(http.MethodPut, "/api/user/quota", body))

	if w.Code != http.StatusOK {
		t.Fatalf("UpdateQuota() status = %d, body %s", w.Code, w.Body.String())
	}
	got, err := st.GetProfile("42")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if got.WeeklyQuota != 37.5 {
		t.Errorf("quota = %v, want 37.5", got.WeeklyQuota)
	}
}

func TestUpdateQuotaRange(t *testing.T) {
	h, st := newUserTest(t)
	if err := st.SaveProfile(models.User{ID: "42", Username: "carlos", WeeklyQuota: 40}); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	for _, hours := range []float64{0, -1, 81} {
		body, _ := json.Marshal(models.QuotaRequest{WeeklyHours: hours})
		w := httptest.NewRecorder()
		h.UpdateQuota(w, authedRequest(http.MethodPut, "/api/user/quota", body))

		if w.Code != http.StatusBadRequest {
			t.Errorf("UpdateQuota(%v) status = %d, want 400", hours, w.Code)
		}
	}
}
