package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json")
}

// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid form")
		return
	}

	email := r.PostFormValue("email")
	landing := r.PostFormValue("landing")
	device := h.service.DeviceID(w, r)

	exp, err := h.service.RequestLogin(r.Context(), email, landing, device, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmail):
			writeErr(w, http.StatusBadRequest, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, "could not send magic link")
		}
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":        true,
			"expiresAt": exp.Format(time.RFC3339),
		})
		return
	}
	http.Redirect(w, r, "/login?sent=1", http.StatusSeeOther)
}

// GET /auth/validate?token=...
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	device := ""
	if cookie, err := r.Cookie(h.service.deviceCookie); err == nil {
		device = cookie.Value
	}

	u, token, exp, landing, err := h.service.ValidateLogin(r.Context(), r.URL.Query().Get("token"), device, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidLink), errors.Is(err, ErrLinkExpired):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrWrongDevice):
			http.Error(w, err.Error(), http.StatusUnauthorized)
		default:
			http.Error(w, "could not validate magic link", http.StatusInternalServerError)
		}
		return
	}

	h.service.logger.Printf("[auth] user %s logged in", u.Email)
	h.service.SetSessionCookie(w, r, token, exp)

	if landing == "" {
		landing = "/"
	}
	http.Redirect(w, r, landing, http.StatusSeeOther)
}

// GET /api/auth/session
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	u, sess, ok := h.service.AuthenticateRequest(r, time.Now())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"id":    u.ID,
			"email": u.Email,
		},
		"expiresAt": sess.ExpiresAt.Format(time.RFC3339),
	})
}

// POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.service.RevokeSessionForRequest(r)
	h.service.ClearSessionCookie(w, r)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
