package action

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"planner/internal/auth"
	"planner/internal/bucket"
	"planner/internal/task"
)

// Handler exposes the dispatcher over form-encoded POSTs. The same
// handler serves the generic action route and the day-scoped one; a
// resolver supplies the day when the route carries it.
type Handler struct {
	dispatcher  *Dispatcher
	dayResolver func(*http.Request) string
}

func NewHandler(dispatcher *Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

func (h *Handler) SetDayResolver(fn func(*http.Request) string) {
	h.dayResolver = fn
}

func (h *Handler) dayFromRequest(r *http.Request) string {
	if h.dayResolver != nil {
		return h.dayResolver(r)
	}
	return r.PathValue("day")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// parsePayload flattens a form submission to first values, mirroring
// how the payloads are built client-side.
func parsePayload(r *http.Request) (Payload, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	p := Payload{}
	for key, values := range r.PostForm {
		if len(values) > 0 {
			p[key] = values[0]
		}
	}
	return p, nil
}

// ServeHTTP handles POST /api/actions and POST /api/calendar/{day}/actions.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	payload, err := parsePayload(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid form")
		return
	}

	cmd, err := Parse(payload, h.dayFromRequest(r))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.dispatcher.Dispatch(r.Context(), u.ID, cmd)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvariant), errors.Is(err, ErrUnknownAction):
			writeErr(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, task.ErrNotFound), errors.Is(err, bucket.ErrNotFound):
			writeErr(w, http.StatusNotFound, err.Error())
		case errors.Is(err, bucket.ErrExists):
			writeErr(w, http.StatusConflict, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	// Plain form posts (no fetch layer) follow redirects as real
	// navigations; fetch submissions read the path out of the body.
	if res.RedirectTo != "" && !wantsJSON(r) {
		http.Redirect(w, r, res.RedirectTo, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
