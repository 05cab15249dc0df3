package export

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/platform/httpx"
	"github.com/taskhive/taskhive/internal/rbac"
	"github.com/taskhive/taskhive/internal/shared"
)

// watchBudget caps how long a single watch request may block, staying under
// common proxy timeouts. Clients re-issue the request to keep watching.
const watchBudget = 25 * time.Second

// Handler manages export job endpoints.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	rbac         rbac.Middleware
	validator    *validator.Validate
	pollInterval time.Duration
}

// NewHandler builds a Handler instance. pollInterval paces the watch
// endpoint's status checks.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware, pollInterval time.Duration) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New(), pollInterval: pollInterval}
}

// MountRoutes registers export routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(authz.PermExportsRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/{id}/watch", h.watch)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(authz.PermExportsCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(authz.PermExportsCancel))
		r.Post("/{id}/cancel", h.cancel)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(authz.PermExportsDownload))
		r.Get("/{id}/download", h.download)
	})
}

type createRequest struct {
	Kind string `json:"kind" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if !ValidKind(Kind(req.Kind)) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown export kind")
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	job, err := h.service.Request(r.Context(), principal, Kind(req.Kind))
	if err != nil {
		h.logger.Error("request export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, job)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	principal, _ := shared.PrincipalFromContext(r.Context())
	jobs, err := h.service.List(r.Context(), principal, page, perPage)
	if err != nil {
		h.logger.Error("list exports", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"exports": jobs})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	job, err := h.service.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

// watch blocks until the job reaches a terminal status or the budget runs
// out, then returns the latest snapshot. Ownership and existence are checked
// up front so a bad id fails fast instead of spinning in the poll loop.
func (h *Handler) watch(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")

	job, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if Terminal(job.Status) {
		httpx.JSON(w, http.StatusOK, job)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), watchBudget)
	defer cancel()
	poller := NewPoller(FetcherFunc(func(ctx context.Context, id string) (*Job, error) {
		return h.service.Get(ctx, principal, id)
	}), nil, h.pollInterval, h.logger)
	last := job
	poller.OnUpdate = func(j *Job) { last = j }

	final, err := poller.Wait(ctx, id)
	if err != nil {
		// Budget exhausted or client gone; hand back the latest snapshot
		// so the caller can pick up where it left off.
		httpx.JSON(w, http.StatusOK, last)
		return
	}
	httpx.JSON(w, http.StatusOK, final)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	job, err := h.service.Cancel(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	path, filename, err := h.service.Artifact(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Type", "text/csv")
	http.ServeFile(w, r, path)
}
