// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/drawer-sync/internal/store"
	"github.com/MKhiriev/drawer-sync/models"
)

// Service-internal collaborators are faked here rather than in internal/mock:
// the mock package would have to import service and close an import cycle.

// ── room channel ─────────────────────────────────────────────────────────────

type fakeChannel struct {
	mu        sync.Mutex
	room      string
	connected bool
	waitErr   error
	waits     int
	sent      []models.SyncMessage
}

func newFakeChannel(connected bool) *fakeChannel {
	return &fakeChannel{room: "room-1", connected: connected}
}

func (c *fakeChannel) Send(msg models.SyncMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return false
	}
	c.sent = append(c.sent, msg)
	return true
}

func (c *fakeChannel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeChannel) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *fakeChannel) WaitConnected(context.Context, time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waits++
	return c.waitErr
}

func (c *fakeChannel) setConnected(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = v
}

func (c *fakeChannel) Sent() []models.SyncMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.sent)
}

// ── dispatcher ───────────────────────────────────────────────────────────────

type dispatchCall struct {
	Mutation  models.Mutation
	UpdatedAt *time.Time
}

type batchCall struct {
	DrawerID string
	Updates  []models.SubCompartmentUpdated
}

type fakeDispatcher struct {
	mu       sync.Mutex
	calls    []dispatchCall
	batches  []batchCall
	results  map[string][]error
	onCall   func(models.Mutation)
	batchErr error

	structuralErr error
	resized       models.DrawerResized
	dividers      models.DividersChanged
	merged        models.CompartmentsMerged
	split         models.CompartmentSplit
	structural    int
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{results: make(map[string][]error)}
}

// failWith queues errs for successive dispatches of entityID; once they run
// out dispatches succeed.
func (d *fakeDispatcher) failWith(entityID string, errs ...error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.results[entityID] = append(d.results[entityID], errs...)
}

func (d *fakeDispatcher) Dispatch(_ context.Context, m models.Mutation, updatedAt *time.Time) error {
	d.mu.Lock()
	d.calls = append(d.calls, dispatchCall{Mutation: m, UpdatedAt: updatedAt})
	var err error
	if queued := d.results[m.EntityID]; len(queued) > 0 {
		err, d.results[m.EntityID] = queued[0], queued[1:]
	}
	onCall := d.onCall
	d.mu.Unlock()

	if onCall != nil {
		onCall(m)
	}
	return err
}

func (d *fakeDispatcher) DispatchBatch(_ context.Context, drawerID string, updates []models.SubCompartmentUpdated, _ *time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = append(d.batches, batchCall{DrawerID: drawerID, Updates: slices.Clone(updates)})
	return d.batchErr
}

func (d *fakeDispatcher) SetDividerCount(context.Context, string, string, int, string) (models.DividersChanged, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.structural++
	return d.dividers, d.structuralErr
}

func (d *fakeDispatcher) MergeCompartments(context.Context, string, []string) (models.CompartmentsMerged, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.structural++
	return d.merged, d.structuralErr
}

func (d *fakeDispatcher) SplitCompartment(context.Context, string, string) (models.CompartmentSplit, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.structural++
	return d.split, d.structuralErr
}

func (d *fakeDispatcher) ResizeDrawer(context.Context, string, int, int) (models.DrawerResized, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.structural++
	return d.resized, d.structuralErr
}

func (d *fakeDispatcher) Calls() []dispatchCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.calls)
}

// ── repositories ─────────────────────────────────────────────────────────────

type memPendingRepo struct {
	mu      sync.Mutex
	rows    map[string]models.PendingOperation
	saveErr error
}

func newMemPendingRepo() *memPendingRepo {
	return &memPendingRepo{rows: make(map[string]models.PendingOperation)}
}

func (r *memPendingRepo) SavePendingOperation(_ context.Context, op models.PendingOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	for id, row := range r.rows {
		if row.Mutation.Key() == op.Mutation.Key() && id != op.ID {
			delete(r.rows, id)
		}
	}
	r.rows[op.ID] = op
	return nil
}

func (r *memPendingRepo) DeletePendingOperation(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return store.ErrPendingOperationNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memPendingRepo) ListPendingOperations(context.Context) ([]models.PendingOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.PendingOperation, 0, len(r.rows))
	for _, op := range r.rows {
		out = append(out, op)
	}
	slices.SortFunc(out, func(a, b models.PendingOperation) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (r *memPendingRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type memConflictRepo struct {
	mu   sync.Mutex
	rows []models.Conflict
}

func (r *memConflictRepo) SaveConflict(_ context.Context, c models.Conflict) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, c)
	return nil
}

func (r *memConflictRepo) DeleteConflict(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.rows)
	r.rows = slices.DeleteFunc(r.rows, func(c models.Conflict) bool { return c.ID == id })
	if len(r.rows) == n {
		return store.ErrConflictNotFound
	}
	return nil
}

func (r *memConflictRepo) ListConflicts(context.Context) ([]models.Conflict, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.rows), nil
}

// ── reissuer ─────────────────────────────────────────────────────────────────

type spyReissuer struct {
	mu        sync.Mutex
	mutations []models.Mutation
	err       error
}

func (r *spyReissuer) Reissue(_ context.Context, m models.Mutation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations = append(r.mutations, m)
	return r.err
}

// ── token manager ────────────────────────────────────────────────────────────

type countingTokens struct {
	mu          sync.Mutex
	tokenCalls  int
	invalidated int
	err         error
}

func (t *countingTokens) Token(context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokenCalls++
	return "token", t.err
}

func (t *countingTokens) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.invalidated++
}
