package public

import (
	"errors"
	"net/http"
	"time"

	"github.com/architeacher/erp-shell/pkg/logger"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/inbound/http/handlers/shared"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/inbound/http/views"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/usecases"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/usecases/commands"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/usecases/queries"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	ViewIDParam = "viewID"

	codeNotFound      = "NOT_FOUND"
	codeInvalidID     = "INVALID_ID"
	codeInternalError = "INTERNAL_ERROR"

	msgViewNotFound  = "dashboard view not found"
	msgInvalidViewID = "invalid dashboard view id"
	msgInternalError = "internal error"
)

type (
	ViewHealthResponse struct {
		ViewID    string     `json:"viewId"`
		Status    string     `json:"status"`
		Label     string     `json:"label"`
		Icon      string     `json:"icon"`
		CheckedAt *time.Time `json:"checkedAt,omitempty"`
	}

	// EventsConfig times the keep-alive of the view events socket.
	EventsConfig struct {
		WriteWait        time.Duration
		PongWait         time.Duration
		PingPeriod       time.Duration
		HandshakeTimeout time.Duration
	}

	ShellHandler struct {
		app            *usecases.WebApplication
		renderer       *views.Renderer
		assets         *views.Assets
		log            logger.Logger
		allowedOrigins []string
		events         EventsConfig
		upgrader       websocket.Upgrader
	}

	ShellHandlerOption func(*ShellHandler)
)

func DefaultEventsConfig() EventsConfig {
	return EventsConfig{
		WriteWait:        10 * time.Second,
		PongWait:         60 * time.Second,
		PingPeriod:       54 * time.Second,
		HandshakeTimeout: 10 * time.Second,
	}
}

// WithAllowedOrigins lists cross-origin pages allowed to open the events
// socket; "*" allows any.
func WithAllowedOrigins(origins []string) ShellHandlerOption {
	return func(h *ShellHandler) {
		h.allowedOrigins = origins
	}
}

func WithEventsConfig(cfg EventsConfig) ShellHandlerOption {
	return func(h *ShellHandler) {
		h.events = cfg
	}
}

func NewShellHandler(
	app *usecases.WebApplication,
	renderer *views.Renderer,
	assets *views.Assets,
	log logger.Logger,
	opts ...ShellHandlerOption,
) *ShellHandler {
	h := &ShellHandler{
		app:      app,
		renderer: renderer,
		assets:   assets,
		log:      log,
		events:   DefaultEventsConfig(),
	}

	for _, opt := range opts {
		opt(h)
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: h.events.HandshakeTimeout,
		CheckOrigin:      h.checkOrigin,
	}

	return h
}

// Dashboard mounts a fresh view and renders it in the checking state. The
// browser follows the probe outcome through the view endpoints.
func (h *ShellHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Commands.MountDashboardView.Handle(r.Context(), commands.MountDashboardViewCommand{})
	if err != nil {
		h.writePageError(w, r, err)

		return
	}

	page := h.renderer.NewDashboardPage(r.URL.Path, result.View.Snapshot())

	w.Header().Set(shared.HeaderContentType, shared.ContentTypeHTML)
	shared.SetNoStore(w)

	if err := h.renderer.RenderDashboard(w, page); err != nil {
		h.writePageError(w, r, err)
	}
}

// NotFound renders the shell around an empty main area for paths without a
// view.
func (h *ShellHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	page := views.NotFoundPage{ShellData: h.renderer.Shell("Not available", r.URL.Path)}

	w.Header().Set(shared.HeaderContentType, shared.ContentTypeHTML)
	w.WriteHeader(http.StatusNotFound)

	if err := h.renderer.RenderNotFound(w, page); err != nil {
		reqLogger := h.log.WithContext(r.Context())
		reqLogger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to render not found page")
	}
}

func (h *ShellHandler) Static(w http.ResponseWriter, r *http.Request) {
	h.assets.ServeHTTP(w, r)
}

func (h *ShellHandler) GetViewHealth(w http.ResponseWriter, r *http.Request) {
	view, ok := h.lookupView(w, r)
	if !ok {
		return
	}

	shared.SetNoStore(w)
	shared.WriteJSON(w, http.StatusOK, newViewHealthResponse(view))
}

func (h *ShellHandler) UnmountView(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseViewID(w, r)
	if !ok {
		return
	}

	_, err := h.app.Commands.UnmountDashboardView.Handle(r.Context(), commands.UnmountDashboardViewCommand{ID: id})
	if err != nil {
		h.writeViewError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ShellHandler) lookupView(w http.ResponseWriter, r *http.Request) (*model.DashboardView, bool) {
	id, ok := h.parseViewID(w, r)
	if !ok {
		return nil, false
	}

	view, err := h.app.Queries.GetDashboardView.Execute(r.Context(), queries.GetDashboardViewQuery{ID: id})
	if err != nil {
		h.writeViewError(w, r, err)

		return nil, false
	}

	return view, true
}

func (h *ShellHandler) parseViewID(w http.ResponseWriter, r *http.Request) (model.ViewID, bool) {
	id, err := model.ParseViewID(chi.URLParam(r, ViewIDParam))
	if err != nil {
		middleware.WriteJSONError(w, http.StatusBadRequest, codeInvalidID, msgInvalidViewID)

		return model.ViewID{}, false
	}

	return id, true
}

func (h *ShellHandler) writeViewError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrViewNotFound) {
		middleware.WriteJSONError(w, http.StatusNotFound, codeNotFound, msgViewNotFound)

		return
	}

	reqLogger := h.log.WithContext(r.Context())
	reqLogger.Error().Err(err).Msg("dashboard view request failed")

	middleware.WriteJSONError(w, http.StatusInternalServerError, codeInternalError, msgInternalError)
}

func (h *ShellHandler) writePageError(w http.ResponseWriter, r *http.Request, err error) {
	reqLogger := h.log.WithContext(r.Context())
	reqLogger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to render dashboard")

	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func newViewHealthResponse(view *model.DashboardView) ViewHealthResponse {
	status := view.Health().Status()

	resp := ViewHealthResponse{
		ViewID: view.ID().String(),
		Status: string(status),
		Label:  status.Label(),
		Icon:   status.Icon(),
	}

	if status.IsTerminal() {
		checkedAt := view.Health().CheckedAt().UTC()
		resp.CheckedAt = &checkedAt
	}

	return resp
}
