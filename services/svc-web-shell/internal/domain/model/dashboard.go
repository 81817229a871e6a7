package model

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type (
	ViewID struct {
		uuid.UUID
	}

	// Stats has no data source yet; every counter stays zero.
	Stats struct {
		TotalCustomers  uint64
		ActiveProjects  uint64
		TotalComponents uint64
		PendingQuotes   uint64
	}

	StatCard struct {
		Title string
		Value uint64
		Icon  string
		Tone  string
	}

	Activity struct {
		Title  string
		Detail string
		Tone   string
	}

	QuickAction struct {
		Label string
		Icon  string
	}

	// DashboardView is one mounted dashboard. It owns its health state and
	// stats; Close cancels the outstanding probe and suppresses late writes.
	DashboardView struct {
		id        ViewID
		mountedAt time.Time
		lastSeen  atomic.Int64
		health    *HealthState
		stats     Stats

		// mu orders Close against ResolveHealth and guards cancel.
		mu     sync.Mutex
		closed chan struct{}
		cancel context.CancelFunc
	}

	DashboardSnapshot struct {
		ViewID       ViewID
		MountedAt    time.Time
		Health       HealthStatus
		CheckedAt    time.Time
		Stats        Stats
		Cards        []StatCard
		Activities   []Activity
		QuickActions []QuickAction
	}
)

func NewViewID() ViewID {
	return ViewID{UUID: uuid.Must(uuid.NewV7())}
}

func ParseViewID(s string) (ViewID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ViewID{}, ErrInvalidViewID
	}

	return ViewID{UUID: id}, nil
}

func (v ViewID) String() string {
	return v.UUID.String()
}

func (v ViewID) IsZero() bool {
	return v.UUID == uuid.Nil
}

func NewDashboardView(now time.Time) *DashboardView {
	view := &DashboardView{
		id:        NewViewID(),
		mountedAt: now.UTC(),
		health:    NewHealthState(),
		closed:    make(chan struct{}),
	}
	view.lastSeen.Store(now.UnixNano())

	return view
}

func (v *DashboardView) ID() ViewID {
	return v.id
}

func (v *DashboardView) MountedAt() time.Time {
	return v.mountedAt
}

func (v *DashboardView) Health() *HealthState {
	return v.health
}

func (v *DashboardView) Touch(now time.Time) {
	v.lastSeen.Store(now.UnixNano())
}

func (v *DashboardView) LastSeen() time.Time {
	return time.Unix(0, v.lastSeen.Load()).UTC()
}

// BindCancel attaches the cancel func of the view's probe. A view that is
// already closed cancels immediately.
func (v *DashboardView) BindCancel(cancel context.CancelFunc) {
	v.mu.Lock()
	v.cancel = cancel
	v.mu.Unlock()

	if v.IsClosed() {
		cancel()
	}
}

// ResolveHealth writes the health check outcome unless the view was closed. Once
// Close returns, no terminal status can land on the view.
func (v *DashboardView) ResolveHealth(status HealthStatus, at time.Time) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.IsClosed() {
		return false
	}

	return v.health.Resolve(status, at)
}

func (v *DashboardView) Close() {
	v.mu.Lock()
	if v.IsClosed() {
		v.mu.Unlock()

		return
	}

	close(v.closed)
	cancel := v.cancel
	v.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (v *DashboardView) Closed() <-chan struct{} {
	return v.closed
}

func (v *DashboardView) IsClosed() bool {
	select {
	case <-v.closed:
		return true
	default:
		return false
	}
}

func (v *DashboardView) Snapshot() DashboardSnapshot {
	return DashboardSnapshot{
		ViewID:       v.id,
		MountedAt:    v.mountedAt,
		Health:       v.health.Status(),
		CheckedAt:    v.health.CheckedAt(),
		Stats:        v.stats,
		Cards:        StatCards(v.stats),
		Activities:   RecentActivity(),
		QuickActions: QuickActions(),
	}
}

func StatCards(stats Stats) []StatCard {
	return []StatCard{
		{Title: "Total Customers", Value: stats.TotalCustomers, Icon: "users", Tone: "blue"},
		{Title: "Active Projects", Value: stats.ActiveProjects, Icon: "folder-open", Tone: "green"},
		{Title: "Components", Value: stats.TotalComponents, Icon: "package", Tone: "purple"},
		{Title: "Pending Quotes", Value: stats.PendingQuotes, Icon: "file-text", Tone: "orange"},
	}
}

func RecentActivity() []Activity {
	return []Activity{
		{Title: "System initialized successfully", Detail: "Welcome to HAÜSA ERP", Tone: "green"},
		{Title: "Ready for component catalog import", Detail: "Upload your CSV files when ready", Tone: "blue"},
	}
}

// QuickActions are rendered without handlers.
func QuickActions() []QuickAction {
	return []QuickAction{
		{Label: "Add Customer", Icon: "users"},
		{Label: "Create Project", Icon: "folder-open"},
		{Label: "Import BOM", Icon: "file-text"},
	}
}
