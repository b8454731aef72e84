package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/observability/metrics"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabs"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabsync"
	"github.com/FACorreiaa/greengrove-accounts/internal/pkg/cache"
)

// Registry holds the live workspaces. A workspace unused for the TTL is
// evicted and closed.
type Registry struct {
	store    *cache.UnifiedCache[*Workspace]
	contents map[tabs.ID]tabs.Content
	defaults models.Selection
	syncOpts []tabsync.Option
	logger   *zap.Logger
}

func NewRegistry(ttl time.Duration, defaults models.Selection, contents map[tabs.ID]tabs.Content, logger *zap.Logger, syncOpts ...tabsync.Option) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		contents: contents,
		defaults: defaults,
		syncOpts: syncOpts,
		logger:   logger,
	}
	r.store = cache.NewUnifiedCache(ttl, "workspaces", logger, func(id string, ws *Workspace) {
		ws.Close()
		metrics.Get().ActiveWorkspaces.Add(context.Background(), -1)
		r.logger.Debug("Workspace evicted", zap.String("workspace", id))
	})
	return r
}

// Get returns the workspace id and refreshes its lifetime. A closed
// workspace is dropped and reported missing so the caller starts a new one.
func (r *Registry) Get(id string) (*Workspace, bool) {
	if id == "" {
		return nil, false
	}
	ws, ok := r.store.Get(id)
	if !ok {
		return nil, false
	}
	if ws.isClosed() {
		r.store.Delete(id)
		return nil, false
	}
	return ws, true
}

// Create starts a workspace selecting the default user.
func (r *Registry) Create() *Workspace {
	ws := NewWorkspace(uuid.NewString(), r.defaults, tabs.NewComposer(r.contents), r.logger, r.syncOpts...)
	r.store.Set(ws.ID, ws)
	metrics.Get().ActiveWorkspaces.Add(context.Background(), 1)
	r.logger.Debug("Workspace created", zap.String("workspace", ws.ID))
	return ws
}

// Len evicts expired workspaces and returns how many remain.
func (r *Registry) Len() int {
	r.store.DeleteExpired()
	return r.store.Size()
}

// CacheStats reports the hit and eviction counters of the workspace store.
func (r *Registry) CacheStats() cache.CacheMetrics {
	return r.store.GetMetrics()
}
