package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"planner/internal/auth"
	"planner/internal/calendar"
)

// Handler serves the read side: the calendar grid, per-day lists, the
// backlog, and single-task exports. Writes go through the action
// dispatcher, never here.
type Handler struct {
	repo   Repo
	window calendar.Window
	now    func() time.Time
}

func NewHandler(repo Repo) *Handler {
	return &Handler{repo: repo, window: calendar.DefaultWindow, now: time.Now}
}

func (h *Handler) SetWindow(w calendar.Window) {
	h.window = w
}

func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// Calendar answers GET /api/calendar: the week grid around today, the
// per-day task counts for badge rendering, and the backlog.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	now := h.now()
	weeks := calendar.Weeks(now, h.window)

	// The count window is exclusive on both ends, so pad it by a day
	// each way to include the grid's edge days.
	first, err := calendar.ParseDay(weeks[0][0])
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	lastWeek := weeks[len(weeks)-1]
	last, err := calendar.ParseDay(lastWeek[len(lastWeek)-1])
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	filter := CountFilter{
		Start: calendar.FormatDay(first.AddDate(0, 0, -1)),
		End:   calendar.FormatDay(last.AddDate(0, 0, 1)),
	}

	total, err := h.repo.CountsByDay(r.Context(), u.ID, filter)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	filter.IncompleteOnly = true
	incomplete, err := h.repo.CountsByDay(r.Context(), u.ID, filter)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	backlog, err := h.repo.Backlog(r.Context(), u.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"today":   calendar.FormatDay(now),
		"weeks":   weeks,
		"stats":   calendar.Stats{Total: total, Incomplete: incomplete},
		"backlog": backlog,
	})
}

// Day answers GET /api/calendar/{day}: the tasks scheduled on one day,
// plus the backlog so the client can render both sides of a move.
func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	day := r.PathValue("day")
	if !calendar.IsDayKey(day) {
		writeErr(w, http.StatusBadRequest, "bad day key")
		return
	}

	tasks, err := h.repo.ForDay(r.Context(), u.ID, day)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	backlog, err := h.repo.Backlog(r.Context(), u.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"day":     day,
		"tasks":   tasks,
		"backlog": backlog,
	})
}

// ExportICS answers GET /api/tasks/{id}/export.ics with a single
// all-day calendar event for a scheduled task.
func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	t, err := h.repo.Get(r.Context(), u.ID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeErr(w, http.StatusNotFound, "task not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	ics, err := BuildTaskICS(t, h.now())
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="task.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics))
}
