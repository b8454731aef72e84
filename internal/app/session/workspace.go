// Package session keeps the per-browser state of the account portal: the
// selected user, the active tab, the tab location and per-tab boundaries and
// list states.
package session

import (
	"context"
	"net/url"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/boundary"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/listing"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/observability/metrics"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabs"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabsync"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/views"
)

// Workspace is the state of one browser session. All methods are safe for
// concurrent use.
type Workspace struct {
	ID string

	mu         sync.Mutex
	selection  models.Selection
	composer   *tabs.Composer
	active     int
	location   *tabsync.Location
	sync       *tabsync.Synchronizer
	syncOpts   []tabsync.Option
	boundaries map[tabs.ID]*boundary.Boundary
	lists      map[tabs.ID]any
	closed     bool
	logger     *zap.Logger
}

func NewWorkspace(id string, sel models.Selection, composer *tabs.Composer, logger *zap.Logger, syncOpts ...tabsync.Option) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workspace{
		ID:         id,
		selection:  sel,
		composer:   composer,
		location:   tabsync.NewLocation("/account", nil),
		syncOpts:   syncOpts,
		boundaries: make(map[tabs.ID]*boundary.Boundary),
		lists:      make(map[tabs.ID]any),
		logger:     logger.With(zap.String("workspace", id)),
	}
}

func (w *Workspace) Selection() models.Selection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection
}

// Tabs returns the tab set for the selected role.
func (w *Workspace) Tabs() []tabs.Descriptor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.composer.For(w.selection.Role)
}

// Active returns the active index together with the tab set it indexes.
func (w *Workspace) Active() (int, []tabs.Descriptor) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active, w.composer.For(w.selection.Role)
}

// MountPage starts a fresh page view: the location is reset to path and
// query, the previous synchronizer is closed and a new one hydrates the
// active tab from the query. A closed workspace mounts nothing.
func (w *Workspace) MountPage(path string, query url.Values) (int, []tabs.Descriptor) {
	w.mu.Lock()
	defer w.mu.Unlock()

	descs := w.composer.For(w.selection.Role)
	if w.closed {
		return w.active, descs
	}
	if w.sync != nil {
		w.sync.Close()
	}
	w.location = tabsync.NewLocation(path, query)
	opts := append([]tabsync.Option{tabsync.WithLogger(w.logger)}, w.syncOpts...)
	w.sync = tabsync.New(w.location, opts...)

	// The setter runs synchronously inside Mount, so it must not take w.mu.
	w.sync.Mount(w.active, func(i int) { w.active = i }, descs)
	return w.active, descs
}

// SetActive makes index i the active tab.
func (w *Workspace) SetActive(i int) (tabs.Descriptor, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	descs := w.composer.For(w.selection.Role)
	if i < 0 || i >= len(descs) {
		return tabs.Descriptor{}, models.ErrBadRequest
	}
	w.active = i
	if w.sync != nil {
		w.sync.Changed(i, descs)
	}
	metrics.Get().TabSwitchesTotal.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("tab", descs[i].ID.String())))
	return descs[i], nil
}

// SetSelection switches the selected user and role. Cached list state and
// captured errors belong to the previous user and are dropped. The active
// index is clamped when the new role has fewer tabs.
func (w *Workspace) SetSelection(sel models.Selection) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if sel.Role != models.RoleAdmin {
		sel.Role = models.RoleCustomer
	}
	w.selection = sel
	w.lists = make(map[tabs.ID]any)
	w.boundaries = make(map[tabs.ID]*boundary.Boundary)

	descs := w.composer.For(sel.Role)
	if w.active >= len(descs) {
		w.active = len(descs) - 1
	}
	if w.sync != nil {
		w.sync.Changed(w.active, descs)
	}
	w.logger.Info("Selection changed",
		zap.Int64("user_id", sel.UserID), zap.String("role", sel.Role.String()))
}

// Location returns the location of the current page view.
func (w *Workspace) Location() *tabsync.Location {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.location
}

// Boundary returns the error boundary of tab id, creating it on first use.
func (w *Workspace) Boundary(id tabs.ID) *boundary.Boundary {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b, ok := w.boundaries[id]; ok {
		return b
	}
	b := boundary.New(id.String(),
		boundary.WithRetryURL(views.RetryURL(id)),
		boundary.WithFallback(views.Fallback),
		boundary.WithLogger(w.logger),
		boundary.WithOnRetry(func() { w.dropList(id) }),
		boundary.WithOnCapture(func(error) {
			metrics.Get().BoundaryCapturesTotal.Add(context.Background(), 1,
				metric.WithAttributes(attribute.String("tab", id.String())))
		}),
	)
	w.boundaries[id] = b
	return b
}

func (w *Workspace) dropList(id tabs.ID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.lists, id)
}

// Close stops the tab synchronizer. The workspace keeps answering reads.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	if w.sync != nil {
		w.sync.Close()
	}
}

func (w *Workspace) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// ApplyListing records filter and the requested page in the list state of
// tab id and returns the page to show.
func ApplyListing[F comparable](w *Workspace, id tabs.ID, filter F, requested listing.Page) listing.Page {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.lists[id].(*listing.State[F])
	if !ok {
		st = &listing.State[F]{}
		w.lists[id] = st
	}
	return st.Apply(filter, requested)
}
