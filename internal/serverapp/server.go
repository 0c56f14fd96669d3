// Package serverapp assembles the HTTP surface: repos, handlers,
// routes, and middleware. cmd/server owns process concerns (flags,
// listening, shutdown); everything request-shaped lives here.
package serverapp

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/a-h/templ"

	"planner/internal/action"
	"planner/internal/auth"
	"planner/internal/bucket"
	"planner/internal/calendar"
	"planner/internal/config"
	"planner/internal/httpmw"
	"planner/internal/store"
	"planner/internal/task"
	"planner/internal/telemetry"
	staticfiles "planner/static"
	"planner/ui/page"
)

type Options struct {
	Config *config.Config
	// Store is optional; without it everything runs on the in-memory
	// repos, which is how the tests and local hacking run.
	Store         *store.Store
	StaticDir     string
	UseDiskStatic bool
	Logger        *log.Logger
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if strings.TrimSpace(opts.StaticDir) == "" {
		opts.StaticDir = "static"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	cfg := opts.Config

	var (
		taskRepo   task.Repo
		bucketRepo bucket.Repo
		authRepo   auth.Repo
	)
	if opts.Store != nil {
		taskRepo = task.NewPGRepo(opts.Store.DB)
		bucketRepo = bucket.NewPGRepo(opts.Store.DB)
		authRepo = auth.NewPGRepo(opts.Store.DB)
	} else {
		tasks := task.NewMemoryRepo()
		buckets := bucket.NewMemoryRepo()
		// The schema does this with ON DELETE SET NULL.
		buckets.SetCascade(tasks.ClearBucketRefs)
		taskRepo = tasks
		bucketRepo = buckets
		authRepo = auth.NewMemoryRepo()
	}

	mux := http.NewServeMux()

	staticHandler := http.FileServer(http.FS(staticfiles.EmbeddedFS()))
	if opts.UseDiskStatic {
		staticHandler = http.FileServer(http.Dir(opts.StaticDir))
	}
	mux.Handle("/static/", http.StripPrefix("/static/", staticHandler))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "planner",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Store != nil {
			if err := opts.Store.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{
					"ok":    false,
					"error": "database unavailable",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "planner"})
	})

	var mailer auth.Mailer
	if cfg.Mail.Mode == "console" {
		mailer = auth.ConsoleMailer{Logger: opts.Logger}
	}
	authService := auth.NewService(authRepo, mailer, opts.Logger, auth.Options{
		CookieName:     cfg.Auth.CookieName,
		SessionTTL:     time.Duration(cfg.Auth.SessionTTLHours) * time.Hour,
		LoginTTL:       time.Duration(cfg.Auth.LoginTTLMinutes) * time.Minute,
		Origin:         cfg.Server.Origin,
		CookieSecure:   cfg.Auth.CookieSecure,
		CookieSameSite: cfg.Auth.CookieSameSite,
	})
	logSecurityHints(opts.Logger, cfg)
	authHandler := auth.NewHandler(authService)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("GET /auth/validate", authHandler.Validate)
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/session", authHandler.Session)
	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		sent := r.URL.Query().Get("sent") == "1"
		templ.Handler(page.LoginPage(sent)).ServeHTTP(w, r)
	})

	taskHandler := task.NewHandler(taskRepo)
	taskHandler.SetWindow(calendar.Window{
		WeeksBefore: cfg.Calendar.WeeksBefore,
		WeeksAfter:  cfg.Calendar.WeeksAfter,
	})
	mux.Handle("GET /api/calendar", authService.RequireAPI(http.HandlerFunc(taskHandler.Calendar)))
	mux.Handle("GET /api/calendar/{day}", authService.RequireAPI(http.HandlerFunc(taskHandler.Day)))
	mux.Handle("GET /api/tasks/{id}/export.ics", authService.RequireAPI(http.HandlerFunc(taskHandler.ExportICS)))

	bucketHandler := bucket.NewHandler(bucketRepo, taskRepo)
	mux.Handle("GET /api/buckets", authService.RequireAPI(http.HandlerFunc(bucketHandler.List)))
	mux.Handle("GET /api/buckets/{slug}", authService.RequireAPI(http.HandlerFunc(bucketHandler.Show)))

	events := telemetry.NewMemoryRepository()
	dispatcher := action.NewDispatcher(taskRepo, bucketRepo)
	dispatcher.SetRecorder(events)
	actionHandler := action.NewHandler(dispatcher)
	mux.Handle("POST /api/actions", authService.RequireAPI(actionHandler))
	mux.Handle("POST /api/calendar/{day}/actions", authService.RequireAPI(actionHandler))

	mux.Handle("GET /api/stats", authService.RequireAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		since := time.Now().AddDate(0, 0, -30)
		evs, err := events.GetEvents(since, nil)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		stats, err := telemetry.CalculateStats(evs, since)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})))

	mux.Handle("GET /{$}", authService.RequirePage(templ.Handler(page.CalendarPage())))
	mux.Handle("GET /backlog", authService.RequirePage(templ.Handler(page.BacklogPage())))
	mux.Handle("GET /days/{day}", authService.RequirePage(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		day := r.PathValue("day")
		if !calendar.IsDayKey(day) {
			http.NotFound(w, r)
			return
		}
		templ.Handler(page.DayPage(day)).ServeHTTP(w, r)
	})))
	mux.Handle("GET /buckets", authService.RequirePage(http.HandlerFunc(bucketHandler.RedirectToRecent)))
	mux.Handle("GET /buckets/{slug}", authService.RequirePage(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		templ.Handler(page.BucketPage(r.PathValue("slug"))).ServeHTTP(w, r)
	})))

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
	), nil
}

func UseDiskStaticByEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("PLANNER_DEV_STATIC"))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func logSecurityHints(logger *log.Logger, cfg *config.Config) {
	if logger == nil {
		return
	}
	env := strings.ToLower(strings.TrimSpace(os.Getenv("PLANNER_ENV")))
	if env != "production" && env != "prod" {
		return
	}
	secure := strings.ToLower(strings.TrimSpace(cfg.Auth.CookieSecure))
	if secure != "1" && secure != "true" && secure != "yes" {
		logger.Printf("[security] PLANNER_ENV=%s but auth.cookie_secure is not explicitly true", env)
	}
	if !strings.HasPrefix(cfg.Server.Origin, "https://") {
		logger.Printf("[security] PLANNER_ENV=%s with non-https origin %s; magic links will be plain http", env, cfg.Server.Origin)
	}
}
