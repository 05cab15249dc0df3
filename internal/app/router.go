package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/calendar"
	"github.com/taskhive/taskhive/internal/export"
	"github.com/taskhive/taskhive/internal/observability"
	"github.com/taskhive/taskhive/internal/projects"
	"github.com/taskhive/taskhive/internal/rbac"
	"github.com/taskhive/taskhive/internal/tasks"
	"github.com/taskhive/taskhive/internal/users"
	"github.com/taskhive/taskhive/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	TokenIssuer        *auth.TokenIssuer
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	TasksHandler       *tasks.Handler
	ProjectsHandler    *projects.Handler
	CalendarHandler    *calendar.Handler
	ExportHandler      *export.Handler
	PermissionsHandler *rbac.PermissionsHandler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with TaskHive defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		// Everything below requires a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(params.TokenIssuer))

			r.Route("/users", params.UsersHandler.MountRoutes)
			r.Route("/projects", params.ProjectsHandler.MountRoutes)
			r.Route("/tasks", params.TasksHandler.MountRoutes)
			r.Route("/events", params.CalendarHandler.MountRoutes)
			r.Route("/exports", params.ExportHandler.MountRoutes)
			if params.PermissionsHandler != nil {
				r.Route("/permissions", params.PermissionsHandler.MountRoutes)
			}
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}
