package admin

import (
	"net/http"
	"runtime"
	"time"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/adapters/inbound/http/handlers/shared"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/config"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/usecases"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/usecases/queries"
)

type (
	Liveness struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
		Version   string    `json:"version"`
	}

	DependencyCheck struct {
		Status       string    `json:"status"`
		LatencyMs    uint64    `json:"latencyMs"`
		Message      string    `json:"message,omitempty"`
		LastChecked  time.Time `json:"lastChecked"`
		Error        string    `json:"error,omitempty"`
		BreakerState string    `json:"breakerState,omitempty"`
	}

	Readiness struct {
		Status    string                     `json:"status"`
		Timestamp time.Time                  `json:"timestamp"`
		Version   string                     `json:"version"`
		Checks    map[string]DependencyCheck `json:"checks,omitempty"`
	}

	MountedView struct {
		ViewID    string     `json:"viewId"`
		Status    string     `json:"status"`
		MountedAt time.Time  `json:"mountedAt"`
		CheckedAt *time.Time `json:"checkedAt,omitempty"`
	}

	MountedViews struct {
		Count int           `json:"count"`
		Views []MountedView `json:"views"`
	}

	System struct {
		GoVersion  string `json:"goVersion"`
		Goroutines int    `json:"goroutines"`
		CPUCores   int    `json:"cpuCores"`
		Uptime     string `json:"uptime"`
		CommitSHA  string `json:"commitSha,omitempty"`
	}
)

// AdminHandler serves the internal endpoints. They run on a separate port
// and must not be exposed publicly.
type AdminHandler struct {
	app       *usecases.WebApplication
	startTime time.Time
}

func NewAdminHandler(app *usecases.WebApplication) *AdminHandler {
	return &AdminHandler{
		app:       app,
		startTime: time.Now().UTC(),
	}
}

func (h *AdminHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchLiveness.Execute(r.Context(), queries.FetchLivenessQuery{})
	if err != nil {
		shared.WriteJSON(w, http.StatusServiceUnavailable, Liveness{
			Status:    string(model.ServiceStatusDown),
			Timestamp: time.Now().UTC(),
			Version:   config.ServiceVersion,
		})

		return
	}

	shared.WriteJSON(w, http.StatusOK, Liveness{
		Status:    string(result.Status),
		Timestamp: result.Timestamp,
		Version:   result.Version,
	})
}

// ReadinessCheck answers 200 while the shell can serve pages, including when
// the backend is down and readiness is only degraded.
func (h *AdminHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchReadiness.Execute(r.Context(), queries.FetchReadinessQuery{})
	if err != nil {
		shared.WriteJSON(w, http.StatusServiceUnavailable, Readiness{
			Status:    string(model.ServiceStatusDown),
			Timestamp: time.Now().UTC(),
			Version:   config.ServiceVersion,
		})

		return
	}

	httpStatus := http.StatusOK
	if result.Status == model.ServiceStatusDown {
		httpStatus = http.StatusServiceUnavailable
	}

	checks := make(map[string]DependencyCheck, len(result.Checks))
	for name, check := range result.Checks {
		checks[name] = DependencyCheck{
			Status:       string(check.Status),
			LatencyMs:    check.LatencyMs,
			Message:      check.Message,
			LastChecked:  check.LastChecked,
			Error:        check.Error,
			BreakerState: check.BreakerState,
		}
	}

	shared.WriteJSON(w, httpStatus, Readiness{
		Status:    string(result.Status),
		Timestamp: result.Timestamp,
		Version:   result.Version,
		Checks:    checks,
	})
}

// ListViews reports the mounted dashboard views, oldest first.
func (h *AdminHandler) ListViews(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.app.Queries.ListDashboardViews.Execute(r.Context(), queries.ListDashboardViewsQuery{})
	if err != nil {
		shared.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list views: " + err.Error(),
		})

		return
	}

	mounted := make([]MountedView, 0, len(snapshots))
	for _, snapshot := range snapshots {
		view := MountedView{
			ViewID:    snapshot.ViewID.String(),
			Status:    string(snapshot.Health),
			MountedAt: snapshot.MountedAt.UTC(),
		}

		if snapshot.Health.IsTerminal() {
			checkedAt := snapshot.CheckedAt.UTC()
			view.CheckedAt = &checkedAt
		}

		mounted = append(mounted, view)
	}

	shared.WriteJSON(w, http.StatusOK, MountedViews{
		Count: len(mounted),
		Views: mounted,
	})
}

func (h *AdminHandler) SystemInfo(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, System{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		CPUCores:   runtime.NumCPU(),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		CommitSHA:  config.CommitSHA,
	})
}
