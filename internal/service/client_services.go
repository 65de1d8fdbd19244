package service

import (
	"context"
	"sync"

	"github.com/MKhiriev/drawer-sync/internal/adapter"
	"github.com/MKhiriev/drawer-sync/internal/config"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/metrics"
	"github.com/MKhiriev/drawer-sync/internal/store"
	"github.com/MKhiriev/drawer-sync/models"
)

type ClientServices struct {
	Tokens     TokenManager
	Dispatcher MutationDispatcher
	Queue      OfflineQueue
	Conflicts  ConflictResolver
	Editor     Editor
	Remote     RemoteApplier
	SyncJob    SyncJob
}

func NewClientServices(
	cfg config.Sync,
	storages *store.Storages,
	authority adapter.AuthorityAdapter,
	tokens TokenManager,
	state InventoryState,
	channel RoomChannel,
	m *metrics.Metrics,
	log *logger.Logger,
) *ClientServices {
	dispatcher := NewMutationDispatcher(authority, tokens, log)

	// The resolver needs the editor to re-issue local versions, and the
	// editor needs the queue, which needs the resolver.
	reissuer := &lateReissuer{}
	conflicts := NewConflictResolver(storages.Conflicts, reissuer, state, m, log)
	queue := NewOfflineQueue(storages.PendingOperations, dispatcher, channel, state, conflicts, cfg, m, log)
	editor := NewEditor(state, dispatcher, queue, channel, log)
	reissuer.bind(editor)

	return &ClientServices{
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Queue:      queue,
		Conflicts:  conflicts,
		Editor:     editor,
		Remote:     NewRemoteApplier(state, queue, conflicts, log),
		SyncJob:    NewSyncJob(queue, log),
	}
}

// lateReissuer forwards to a Reissuer bound after construction.
type lateReissuer struct {
	mu     sync.RWMutex
	target Reissuer
}

func (r *lateReissuer) bind(target Reissuer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = target
}

func (r *lateReissuer) Reissue(ctx context.Context, mutation models.Mutation) error {
	r.mu.RLock()
	target := r.target
	r.mu.RUnlock()

	if target == nil {
		return ErrNotConnected
	}
	return target.Reissue(ctx, mutation)
}
