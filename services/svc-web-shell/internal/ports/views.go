package ports

import (
	"time"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
)

// DashboardViews keeps the mounted dashboard views. Views leaving the
// registry through Remove, Sweep or eviction are closed by it.
type DashboardViews interface {
	// Add registers view and returns the views evicted to stay within capacity.
	Add(view *model.DashboardView) []*model.DashboardView

	// Get returns the view and marks it as seen at now.
	Get(id model.ViewID, now time.Time) (*model.DashboardView, error)

	Remove(id model.ViewID) (*model.DashboardView, error)

	// List returns the mounted views ordered by mount time.
	List() []*model.DashboardView

	// Sweep unmounts views not seen since now-idleTTL.
	Sweep(now time.Time, idleTTL time.Duration) []*model.DashboardView

	Len() int
}
