// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package presence

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MKhiriev/drawer-sync/internal/config"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/metrics"
	"github.com/MKhiriev/drawer-sync/models"
)

// Signaler relays signaling messages to other members of the room.
type Signaler interface {
	Send(msg models.SyncMessage) bool
}

// PeerStatus is a snapshot of one peer session.
type PeerStatus struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	State       string `json:"state"`
	Attempts    int    `json:"reconnect_attempts"`
}

type stopper interface {
	Stop() bool
}

// Mesh keeps one presence session per remote member of the room.
type Mesh struct {
	cfg      config.Presence
	factory  TransportFactory
	signaler Signaler
	limiter  *rate.Limiter
	metrics  *metrics.Metrics
	logger   *logger.Logger

	// now and afterFunc are replaced in tests.
	now       func() time.Time
	afterFunc func(time.Duration, func()) stopper

	mu        sync.Mutex
	active    bool
	ctx       context.Context
	cancel    context.CancelFunc
	localID   string
	localName string
	peers     map[string]*peer
	cursors   map[string]models.RemoteCursor
	last      *models.Presence
	flush     stopper
	projector Projector
	epochs    uint64

	observersMu     sync.RWMutex
	cursorObservers []func([]models.RemoteCursor)
	goneObservers   []func(string)
	stateObservers  []func(string, models.PeerState)
}

// peer is the session with one remote member. Every transport it opens
// gets a new epoch; callbacks of older transports are ignored.
type peer struct {
	id     string
	name   string
	polite bool

	transport   Transport
	epoch       uint64
	state       models.PeerState
	offering    bool
	makingOffer bool
	remoteSet   bool
	ignoring    bool
	signaled    bool

	// candidates from the remote side waiting for its description
	candidates []models.ICECandidate
	// local candidates waiting for our description to be signaled
	outgoing []models.ICECandidate

	attempts int
	timer    stopper
}

// New creates an idle mesh. Call Initialize once the local user is known.
func New(cfg config.Presence, factory TransportFactory, signaler Signaler, m *metrics.Metrics, log *logger.Logger) *Mesh {
	limit := rate.Inf
	if cfg.BroadcastRate > 0 {
		limit = rate.Limit(cfg.BroadcastRate)
	}

	return &Mesh{
		cfg:      cfg,
		factory:  factory,
		signaler: signaler,
		limiter:  rate.NewLimiter(limit, 1),
		metrics:  m,
		logger:   log.WithComponent("presence"),
		now:      time.Now,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		peers:   make(map[string]*peer),
		cursors: make(map[string]models.RemoteCursor),
	}
}

// Initialize binds the mesh to the local user's session. A previous
// session is cleaned up first.
func (m *Mesh) Initialize(ctx context.Context, localID, displayName string) error {
	if localID == "" {
		return ErrNoLocalUser
	}
	m.Cleanup()

	runCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.active = true
	m.ctx = runCtx
	m.cancel = cancel
	m.localID = localID
	m.localName = displayName
	m.peers = make(map[string]*peer)
	m.cursors = make(map[string]models.RemoteCursor)
	m.last = nil
	m.mu.Unlock()

	if m.cfg.CursorTTL > 0 {
		go m.pruneLoop(runCtx, m.cfg.CursorTTL)
	}

	m.logger.Info().Str("user_id", localID).Msg("presence mesh initialized")
	return nil
}

// Cleanup tears down every peer session and stops handling signals.
func (m *Mesh) Cleanup() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.active = false
	m.cancel()

	var (
		transports []Transport
		notify     []func()
	)
	for _, p := range m.peers {
		t, fn := m.removePeerLocked(p)
		transports = append(transports, t)
		notify = append(notify, fn)
	}
	hadCursors := len(m.cursors) > 0
	m.cursors = make(map[string]models.RemoteCursor)
	m.last = nil
	m.stopFlushLocked()
	m.mu.Unlock()

	for _, t := range transports {
		closeTransport(t)
	}
	run(notify)
	if hadCursors {
		m.notifyCursors(nil)
	}
	m.logger.Info().Msg("presence mesh cleaned up")
}

// SyncRoster opens a session for every member without one and tears down
// sessions of members no longer in the room.
func (m *Mesh) SyncRoster(members []models.Member) {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}

	seen := make(map[string]struct{}, len(members))
	var joined []string
	for _, member := range members {
		if member.UserID == "" || member.UserID == m.localID {
			continue
		}
		seen[member.UserID] = struct{}{}
		if p, ok := m.peers[member.UserID]; ok {
			if member.DisplayName != "" {
				p.name = member.DisplayName
			}
			continue
		}
		m.addPeerLocked(member.UserID, member.DisplayName)
		joined = append(joined, member.UserID)
	}

	var (
		left       []string
		transports []Transport
		notify     []func()
	)
	for id, p := range m.peers {
		if _, ok := seen[id]; ok {
			continue
		}
		t, fn := m.removePeerLocked(p)
		transports = append(transports, t)
		notify = append(notify, fn)
		left = append(left, id)
	}
	cursors := m.cursorsLocked()
	m.mu.Unlock()

	for _, t := range transports {
		closeTransport(t)
	}
	run(notify)
	for _, id := range left {
		m.logger.Info().Str("peer", id).Msg("peer left the room")
		m.notifyGone(id)
	}
	if len(left) > 0 {
		m.notifyCursors(cursors)
	}

	slices.Sort(joined)
	for _, id := range joined {
		m.offer(id)
	}
}

// Broadcast sends the local presence to every connected peer. Nothing is
// sent on touch-first devices. Payloads over the configured rate are held
// back; the newest one is sent once the rate allows.
func (m *Mesh) Broadcast(p models.Presence) error {
	if m.cfg.TouchPrimary {
		m.metrics.PresenceDropped("touch")
		return nil
	}

	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return ErrNotInitialized
	}
	now := m.now()
	p.UserID = m.localID
	p.DisplayName = m.localName
	p.SentAt = now
	p.Selection = slices.Clone(p.Selection)
	last := p
	m.last = &last

	if !m.limiter.AllowN(now, 1) {
		m.scheduleFlushLocked(now)
		m.mu.Unlock()
		m.metrics.PresenceDropped("rate_limited")
		return nil
	}
	m.stopFlushLocked()
	targets := m.connectedTransportsLocked()
	m.mu.Unlock()

	return m.sendPresence(p, targets)
}

// scheduleFlushLocked arms the timer that sends the held-back presence once
// the limiter has a token again.
func (m *Mesh) scheduleFlushLocked(now time.Time) {
	if m.flush != nil {
		return
	}
	delay := time.Duration((1 - m.limiter.TokensAt(now)) / float64(m.limiter.Limit()) * float64(time.Second))
	if delay <= 0 {
		delay = time.Millisecond
	}
	// The callback takes m.mu, so it sees timer assigned.
	var timer stopper
	timer = m.afterFunc(delay, func() { m.flushPresence(timer) })
	m.flush = timer
}

func (m *Mesh) stopFlushLocked() {
	if m.flush != nil {
		m.flush.Stop()
		m.flush = nil
	}
}

// flushPresence sends the newest held-back presence. A timer that was
// stopped or replaced does nothing.
func (m *Mesh) flushPresence(timer stopper) {
	m.mu.Lock()
	if m.flush != timer {
		m.mu.Unlock()
		return
	}
	m.flush = nil
	if !m.active || m.last == nil {
		m.mu.Unlock()
		return
	}
	now := m.now()
	if !m.limiter.AllowN(now, 1) {
		m.scheduleFlushLocked(now)
		m.mu.Unlock()
		return
	}
	p := *m.last
	p.SentAt = now
	targets := m.connectedTransportsLocked()
	m.mu.Unlock()

	if err := m.sendPresence(p, targets); err != nil {
		m.logger.Err(err).Msg("error sending held-back presence")
	}
}

func (m *Mesh) connectedTransportsLocked() []Transport {
	var targets []Transport
	for _, s := range m.peers {
		if s.state == models.PeerConnected && s.transport != nil {
			targets = append(targets, s.transport)
		}
	}
	return targets
}

func (m *Mesh) sendPresence(p models.Presence, targets []Transport) error {
	if len(targets) == 0 {
		m.metrics.PresenceDropped("no_peers")
		return nil
	}

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	for _, t := range targets {
		if err = t.Send(data); err != nil {
			m.logger.Debug().Err(err).Msg("presence send failed")
		}
	}
	m.metrics.PresenceSent()
	return nil
}

// Cursors returns the cursors of remote users ordered by user id.
func (m *Mesh) Cursors() []models.RemoteCursor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursorsLocked()
}

// Peers returns a snapshot of all sessions ordered by user id.
func (m *Mesh) Peers() []PeerStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]PeerStatus, 0, len(m.peers))
	for _, p := range m.peers {
		out = append(out, PeerStatus{UserID: p.id, DisplayName: p.name, State: p.state.String(), Attempts: p.attempts})
	}
	slices.SortFunc(out, func(a, b PeerStatus) int { return strings.Compare(a.UserID, b.UserID) })
	return out
}

// SetProjector sets the projector used to derive screen coordinates of
// cursors. nil disables projection.
func (m *Mesh) SetProjector(p Projector) {
	m.mu.Lock()
	m.projector = p
	m.mu.Unlock()
}

// PruneCursors removes cursors not updated within the cursor TTL and
// returns how many were removed.
func (m *Mesh) PruneCursors() int {
	if m.cfg.CursorTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	deadline := m.now().Add(-m.cfg.CursorTTL)
	removed := 0
	for id, c := range m.cursors {
		if c.UpdatedAt.Before(deadline) {
			delete(m.cursors, id)
			removed++
		}
	}
	cursors := m.cursorsLocked()
	m.mu.Unlock()

	if removed > 0 {
		m.notifyCursors(cursors)
	}
	return removed
}

// OnCursorsChange registers fn to receive the cursor list after every change.
func (m *Mesh) OnCursorsChange(fn func([]models.RemoteCursor)) {
	m.observersMu.Lock()
	m.cursorObservers = append(m.cursorObservers, fn)
	m.observersMu.Unlock()
}

// OnPeerGone registers fn to be called once for every peer that left the
// room or could not be reconnected.
func (m *Mesh) OnPeerGone(fn func(userID string)) {
	m.observersMu.Lock()
	m.goneObservers = append(m.goneObservers, fn)
	m.observersMu.Unlock()
}

// OnPeerStateChange registers fn to receive session state transitions.
func (m *Mesh) OnPeerStateChange(fn func(userID string, state models.PeerState)) {
	m.observersMu.Lock()
	m.stateObservers = append(m.stateObservers, fn)
	m.observersMu.Unlock()
}

func (m *Mesh) pruneLoop(ctx context.Context, ttl time.Duration) {
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.PruneCursors(); n > 0 {
				m.logger.Debug().Int("removed", n).Msg("stale cursors pruned")
			}
		}
	}
}

func (m *Mesh) addPeerLocked(id, name string) *peer {
	p := &peer{
		id:   id,
		name: name,
		// The lower id keeps its offer on glare.
		polite: m.localID > id,
		state:  models.PeerIdle,
	}
	m.peers[id] = p
	m.metrics.PeerTransition("", p.state.String())
	return p
}

// removePeerLocked drops p and its cursor. The caller closes the returned
// transport and runs the notification after unlocking.
func (m *Mesh) removePeerLocked(p *peer) (Transport, func()) {
	stopTimer(p)
	delete(m.peers, p.id)
	delete(m.cursors, p.id)

	t := p.transport
	p.transport = nil
	p.candidates = nil
	p.outgoing = nil

	m.metrics.PeerTransition(p.state.String(), "")
	p.state = models.PeerClosed
	id := p.id
	return t, func() { m.notifyState(id, models.PeerClosed) }
}

// transitionLocked moves p to s and returns the observer notification to
// run once the lock is released.
func (m *Mesh) transitionLocked(p *peer, s models.PeerState) func() {
	if p.state == s {
		return func() {}
	}
	m.metrics.PeerTransition(p.state.String(), s.String())
	p.state = s
	id := p.id
	return func() { m.notifyState(id, s) }
}

func (m *Mesh) cursorsLocked() []models.RemoteCursor {
	return sortedCursors(m.cursors, m.projector)
}

func (m *Mesh) notifyCursors(cursors []models.RemoteCursor) {
	m.observersMu.RLock()
	observers := slices.Clone(m.cursorObservers)
	m.observersMu.RUnlock()

	for _, fn := range observers {
		m.safeCall("cursors", func() { fn(cursors) })
	}
}

func (m *Mesh) notifyGone(id string) {
	m.observersMu.RLock()
	observers := slices.Clone(m.goneObservers)
	m.observersMu.RUnlock()

	for _, fn := range observers {
		m.safeCall("peer_gone", func() { fn(id) })
	}
}

func (m *Mesh) notifyState(id string, s models.PeerState) {
	m.observersMu.RLock()
	observers := slices.Clone(m.stateObservers)
	m.observersMu.RUnlock()

	for _, fn := range observers {
		m.safeCall("peer_state", func() { fn(id, s) })
	}
}

func (m *Mesh) safeCall(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Interface("panic", r).Str("observer", kind).Msg("presence observer panicked")
		}
	}()
	fn()
}

func stopTimer(p *peer) {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func closeTransport(t Transport) {
	if t != nil {
		_ = t.Close()
	}
}

func run(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
