package repos

import (
	"container/list"
	"sync"
	"time"

	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/domain/model"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/ports"
)

// ViewsRepository is the in-process registry of mounted dashboard views.
// Views live only as long as the process; nothing is persisted.
type ViewsRepository struct {
	mu         sync.Mutex
	maxMounted int
	byID       map[model.ViewID]*list.Element
	order      *list.List
}

var _ ports.DashboardViews = (*ViewsRepository)(nil)

// NewViewsRepository bounds the registry to maxMounted views; 0 means unbounded.
func NewViewsRepository(maxMounted uint) *ViewsRepository {
	return &ViewsRepository{
		maxMounted: int(maxMounted),
		byID:       make(map[model.ViewID]*list.Element),
		order:      list.New(),
	}
}

func (r *ViewsRepository) Add(view *model.DashboardView) []*model.DashboardView {
	r.mu.Lock()

	var evicted []*model.DashboardView

	if elem, ok := r.byID[view.ID()]; ok {
		r.order.Remove(elem)
	}

	r.byID[view.ID()] = r.order.PushBack(view)

	for r.maxMounted > 0 && r.order.Len() > r.maxMounted {
		oldest := r.order.Front()
		evicted = append(evicted, r.removeElement(oldest))
	}

	r.mu.Unlock()

	closeAll(evicted)

	return evicted
}

func (r *ViewsRepository) Get(id model.ViewID, now time.Time) (*model.DashboardView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	elem, ok := r.byID[id]
	if !ok {
		return nil, model.ErrViewNotFound
	}

	view := elem.Value.(*model.DashboardView)
	view.Touch(now)

	return view, nil
}

func (r *ViewsRepository) Remove(id model.ViewID) (*model.DashboardView, error) {
	r.mu.Lock()

	elem, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()

		return nil, model.ErrViewNotFound
	}

	view := r.removeElement(elem)
	r.mu.Unlock()

	view.Close()

	return view, nil
}

func (r *ViewsRepository) List() []*model.DashboardView {
	r.mu.Lock()
	defer r.mu.Unlock()

	views := make([]*model.DashboardView, 0, r.order.Len())
	for elem := r.order.Front(); elem != nil; elem = elem.Next() {
		views = append(views, elem.Value.(*model.DashboardView))
	}

	return views
}

func (r *ViewsRepository) Sweep(now time.Time, idleTTL time.Duration) []*model.DashboardView {
	cutoff := now.Add(-idleTTL)

	r.mu.Lock()

	var swept []*model.DashboardView

	for elem := r.order.Front(); elem != nil; {
		next := elem.Next()

		view := elem.Value.(*model.DashboardView)
		if view.LastSeen().Before(cutoff) {
			swept = append(swept, r.removeElement(elem))
		}

		elem = next
	}

	r.mu.Unlock()

	closeAll(swept)

	return swept
}

func (r *ViewsRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.order.Len()
}

// Close unmounts every view, used on shutdown.
func (r *ViewsRepository) Close() error {
	r.mu.Lock()

	views := make([]*model.DashboardView, 0, r.order.Len())
	for elem := r.order.Front(); elem != nil; elem = r.order.Front() {
		views = append(views, r.removeElement(elem))
	}

	r.mu.Unlock()

	closeAll(views)

	return nil
}

func (r *ViewsRepository) removeElement(elem *list.Element) *model.DashboardView {
	view := r.order.Remove(elem).(*model.DashboardView)
	delete(r.byID, view.ID())

	return view
}

func closeAll(views []*model.DashboardView) {
	for _, view := range views {
		view.Close()
	}
}
