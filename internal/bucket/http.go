package bucket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"planner/internal/auth"
	"planner/internal/task"
)

// TaskLister is the slice of the task store the bucket pages need.
type TaskLister interface {
	ForBucket(ctx context.Context, userID, bucketID string) ([]task.Task, error)
	Unassigned(ctx context.Context, userID string) ([]task.Task, error)
}

// Handler serves bucket reads. Mutations go through the action
// dispatcher.
type Handler struct {
	repo  Repo
	tasks TaskLister
}

func NewHandler(repo Repo, tasks TaskLister) *Handler {
	return &Handler{repo: repo, tasks: tasks}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// List answers GET /api/buckets with every bucket plus the most
// recently touched one, which the index page redirects to.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	buckets, err := h.repo.List(r.Context(), u.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := map[string]any{"buckets": buckets}
	if recent, err := h.repo.Recent(r.Context(), u.ID); err == nil {
		out["recent"] = recent
	} else if !errors.Is(err, ErrNotFound) {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Show answers GET /api/buckets/{slug}: the bucket, its tasks, and the
// unassigned pool the client drags tasks out of.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	b, err := h.repo.BySlug(r.Context(), u.ID, r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeErr(w, http.StatusNotFound, "bucket not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	tasks, err := h.tasks.ForBucket(r.Context(), u.ID, b.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	unassigned, err := h.tasks.Unassigned(r.Context(), u.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bucket":     b,
		"tasks":      tasks,
		"unassigned": unassigned,
	})
}

// RedirectToRecent sends GET /buckets to the most recently touched
// bucket's page, or to the bucket index state when none exist yet.
func (h *Handler) RedirectToRecent(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	recent, err := h.repo.Recent(r.Context(), u.ID)
	if errors.Is(err, ErrNotFound) {
		// First visit: seed a starter bucket so the page always has
		// somewhere to land.
		recent, err = h.repo.Create(r.Context(), u.ID, newID("bucket"), "Family")
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	http.Redirect(w, r, "/buckets/"+recent.Slug, http.StatusSeeOther)
}
