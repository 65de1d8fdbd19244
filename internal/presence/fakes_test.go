// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package presence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/drawer-sync/models"
)

// ── transport ────────────────────────────────────────────────────────────────

type fakeTransport struct {
	name     string
	offering bool
	events   TransportEvents

	// gather is emitted as a local candidate while the local description
	// is created.
	gather *models.ICECandidate

	mu         sync.Mutex
	local      *models.SessionDescription
	remote     *models.SessionDescription
	candidates []models.ICECandidate
	sent       [][]byte
	closed     bool
}

func (t *fakeTransport) CreateOffer(context.Context) (models.SessionDescription, error) {
	offer := models.SessionDescription{Type: "offer", SDP: t.name}
	t.mu.Lock()
	t.local = &offer
	t.mu.Unlock()
	t.emitGathered()
	return offer, nil
}

func (t *fakeTransport) AcceptOffer(_ context.Context, offer models.SessionDescription) (models.SessionDescription, error) {
	answer := models.SessionDescription{Type: "answer", SDP: t.name}
	t.mu.Lock()
	t.remote = &offer
	t.local = &answer
	t.mu.Unlock()
	t.emitGathered()
	return answer, nil
}

func (t *fakeTransport) AcceptAnswer(_ context.Context, answer models.SessionDescription) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remote = &answer
	return nil
}

func (t *fakeTransport) AddCandidate(c models.ICECandidate) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remote == nil {
		return ErrNoRemote
	}
	t.candidates = append(t.candidates, c)
	return nil
}

func (t *fakeTransport) HasRemoteDescription() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remote != nil
}

func (t *fakeTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrChannelClosed
	}
	t.sent = append(t.sent, data)
	return nil
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	// real transports report the close
	t.events.OnStateChange(TransportClosed)
	return nil
}

func (t *fakeTransport) emitGathered() {
	if t.gather != nil {
		t.events.OnCandidate(*t.gather)
	}
}

func (t *fakeTransport) remoteSDP() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remote == nil {
		return ""
	}
	return t.remote.SDP
}

func (t *fakeTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *fakeTransport) added() []models.ICECandidate {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.ICECandidate(nil), t.candidates...)
}

func (t *fakeTransport) sentCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

func (t *fakeTransport) lastSent() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sent) == 0 {
		return nil
	}
	return t.sent[len(t.sent)-1]
}

// fakeNetwork hands out fake transports and remembers them in order.
type fakeNetwork struct {
	owner string

	mu         sync.Mutex
	transports []*fakeTransport
	gather     *models.ICECandidate
	failWith   error
}

func (n *fakeNetwork) factory(offering bool, events TransportEvents) (Transport, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failWith != nil {
		return nil, n.failWith
	}
	t := &fakeTransport{
		name:     fmt.Sprintf("%s-%d", n.owner, len(n.transports)+1),
		offering: offering,
		events:   events,
		gather:   n.gather,
	}
	n.transports = append(n.transports, t)
	return t, nil
}

func (n *fakeNetwork) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.transports)
}

func (n *fakeNetwork) transport(i int) *fakeTransport {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.transports[i]
}

func (n *fakeNetwork) last() *fakeTransport {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.transports[len(n.transports)-1]
}

// ── signaling ────────────────────────────────────────────────────────────────

type envelope struct {
	from string
	to   string
	msg  models.SyncMessage
}

// signalBus queues signals until the test delivers them.
type signalBus struct {
	mu    sync.Mutex
	queue []envelope
}

type busSignaler struct {
	bus  *signalBus
	from string
}

func (s busSignaler) Send(msg models.SyncMessage) bool {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	s.bus.queue = append(s.bus.queue, envelope{from: s.from, to: target(msg), msg: msg})
	return true
}

func (b *signalBus) signaler(from string) Signaler {
	return busSignaler{bus: b, from: from}
}

func (b *signalBus) pop() (envelope, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return envelope{}, false
	}
	e := b.queue[0]
	b.queue = b.queue[1:]
	return e, true
}

func (b *signalBus) pending() []envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]envelope(nil), b.queue...)
}

// deliver relays queued signals, including those produced while relaying,
// until the bus is empty. Signals to unknown members are lost.
func (b *signalBus) deliver(meshes map[string]*Mesh) {
	for {
		e, ok := b.pop()
		if !ok {
			return
		}
		if m, ok := meshes[e.to]; ok {
			m.HandleSignal(e.from, e.msg)
		}
	}
}

// deliverReversed relays the signals queued so far newest first, then drains
// whatever they produce in order.
func (b *signalBus) deliverReversed(meshes map[string]*Mesh) {
	b.mu.Lock()
	batch := b.queue
	b.queue = nil
	b.mu.Unlock()

	for i := len(batch) - 1; i >= 0; i-- {
		if m, ok := meshes[batch[i].to]; ok {
			m.HandleSignal(batch[i].from, batch[i].msg)
		}
	}
	b.deliver(meshes)
}

func target(msg models.SyncMessage) string {
	switch s := msg.(type) {
	case models.SignalOffer:
		return s.TargetID
	case models.SignalAnswer:
		return s.TargetID
	case models.SignalCandidate:
		return s.TargetID
	}
	return ""
}

// ── clock ────────────────────────────────────────────────────────────────────

type fakeTimer struct {
	delay   time.Duration
	fire    func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) afterFunc(d time.Duration, f func()) stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{delay: d, fire: f}
	c.timers = append(c.timers, t)
	return t
}

// lastReconnect returns the newest timer that is not a negotiation timeout.
func (c *fakeClock) lastReconnect() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.timers) - 1; i >= 0; i-- {
		if c.timers[i].delay != negotiationTimeout {
			return c.timers[i]
		}
	}
	return nil
}

// ── projector ────────────────────────────────────────────────────────────────

type halfProjector struct{}

func (halfProjector) Project(w models.Vec3) (models.Vec2, bool) {
	if w.Z < 0 {
		return models.Vec2{}, false
	}
	return models.Vec2{X: w.X / 2, Y: w.Y / 2}, true
}
