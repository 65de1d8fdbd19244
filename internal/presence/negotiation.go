// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package presence

import (
	"encoding/json"
	"time"

	"github.com/MKhiriev/drawer-sync/internal/utils"
	"github.com/MKhiriev/drawer-sync/models"
)

// negotiationTimeout bounds how long a session may stay unconnected after
// an offer or answer before it counts as failed.
const negotiationTimeout = 30 * time.Second

// HandleSignal processes a signaling message relayed by the room. senderID
// overrides the sender carried in the message when set.
func (m *Mesh) HandleSignal(senderID string, msg models.SyncMessage) {
	switch s := msg.(type) {
	case models.SignalOffer:
		m.acceptOffer(sender(senderID, s.Signal), s.Description)
	case models.SignalAnswer:
		m.acceptAnswer(sender(senderID, s.Signal), s.Description)
	case models.SignalCandidate:
		m.remoteCandidate(sender(senderID, s.Signal), s.Candidate)
	}
}

func sender(senderID string, s models.Signal) string {
	if senderID != "" {
		return senderID
	}
	return s.SenderID
}

// offer opens a fresh transport for peer id and signals an offer on it.
func (m *Mesh) offer(id string) {
	m.mu.Lock()
	p, ok := m.peers[id]
	if !m.active || !ok {
		m.mu.Unlock()
		return
	}
	old := m.resetLocked(p)
	epoch := p.epoch
	p.offering = true
	p.makingOffer = true
	// remote candidates belong to a session we are replacing
	p.candidates = nil
	m.armNegotiationTimeoutLocked(p)
	notify := m.transitionLocked(p, models.PeerOffering)
	ctx := m.ctx
	m.mu.Unlock()

	notify()
	closeTransport(old)

	t, ok := m.open(id, epoch, true)
	if !ok {
		return
	}

	offer, err := t.CreateOffer(ctx)

	m.mu.Lock()
	p, ok = m.currentLocked(id, epoch)
	if !ok {
		m.mu.Unlock()
		return
	}
	p.makingOffer = false
	if err != nil {
		m.mu.Unlock()
		m.negotiationFailed(id, epoch, err)
		return
	}
	notify = m.transitionLocked(p, models.PeerNegotiating)
	m.mu.Unlock()

	notify()
	m.signaler.Send(models.SignalOffer{Signal: models.Signal{TargetID: id}, Description: offer})
	m.flushOutgoing(id, epoch)
	m.logger.Debug().Str("peer", id).Msg("offer sent")
}

func (m *Mesh) acceptOffer(id string, offer models.SessionDescription) {
	m.mu.Lock()
	if !m.active || id == "" || id == m.localID {
		m.mu.Unlock()
		return
	}
	p, ok := m.peers[id]
	if !ok {
		// The offer outran the roster update announcing its sender.
		p = m.addPeerLocked(id, "")
	}

	collision := p.makingOffer || p.state == models.PeerOffering ||
		(p.offering && p.state == models.PeerNegotiating && !p.remoteSet)
	if collision && !p.polite {
		p.ignoring = true
		p.candidates = nil
		m.mu.Unlock()
		m.logger.Debug().Str("peer", id).Msg("glare: keeping own offer")
		return
	}
	if collision {
		m.logger.Debug().Str("peer", id).Msg("glare: dropping own offer")
	}

	old := m.resetLocked(p)
	epoch := p.epoch
	m.armNegotiationTimeoutLocked(p)
	notify := m.transitionLocked(p, models.PeerNegotiating)
	ctx := m.ctx
	m.mu.Unlock()

	notify()
	closeTransport(old)

	t, ok := m.open(id, epoch, false)
	if !ok {
		return
	}

	answer, err := t.AcceptOffer(ctx, offer)

	m.mu.Lock()
	p, ok = m.currentLocked(id, epoch)
	if !ok {
		m.mu.Unlock()
		return
	}
	if err != nil {
		m.mu.Unlock()
		m.negotiationFailed(id, epoch, err)
		return
	}
	p.remoteSet = true
	pending := p.candidates
	p.candidates = nil
	m.mu.Unlock()

	m.addCandidates(t, id, pending)
	m.signaler.Send(models.SignalAnswer{Signal: models.Signal{TargetID: id}, Description: answer})
	m.flushOutgoing(id, epoch)
	m.logger.Debug().Str("peer", id).Msg("answer sent")
}

func (m *Mesh) acceptAnswer(id string, answer models.SessionDescription) {
	m.mu.Lock()
	p, ok := m.peers[id]
	if !m.active || !ok || !p.offering || p.makingOffer || p.remoteSet || p.transport == nil {
		m.mu.Unlock()
		m.logger.Debug().Str("peer", id).Msg("dropping unexpected answer")
		return
	}
	p.ignoring = false
	t := p.transport
	epoch := p.epoch
	ctx := m.ctx
	m.mu.Unlock()

	err := t.AcceptAnswer(ctx, answer)

	m.mu.Lock()
	p, ok = m.currentLocked(id, epoch)
	if !ok {
		m.mu.Unlock()
		return
	}
	if err != nil {
		m.mu.Unlock()
		m.negotiationFailed(id, epoch, err)
		return
	}
	p.remoteSet = true
	pending := p.candidates
	p.candidates = nil
	m.mu.Unlock()

	m.addCandidates(t, id, pending)
}

func (m *Mesh) remoteCandidate(id string, c models.ICECandidate) {
	m.mu.Lock()
	p, ok := m.peers[id]
	if !m.active || !ok {
		m.mu.Unlock()
		m.logger.Debug().Str("peer", id).Msg("dropping candidate without a session")
		return
	}
	if p.ignoring {
		m.mu.Unlock()
		return
	}
	if !p.remoteSet || p.transport == nil {
		p.candidates = append(p.candidates, c)
		m.mu.Unlock()
		return
	}
	t := p.transport
	m.mu.Unlock()

	m.addCandidates(t, id, []models.ICECandidate{c})
}

// open creates the transport of epoch and installs it on the session. It
// reports false when the session moved on or the factory failed.
func (m *Mesh) open(id string, epoch uint64, offering bool) (Transport, bool) {
	t, err := m.factory(offering, m.events(id, epoch))
	if err != nil {
		m.negotiationFailed(id, epoch, err)
		return nil, false
	}

	m.mu.Lock()
	p, ok := m.currentLocked(id, epoch)
	if !ok {
		m.mu.Unlock()
		closeTransport(t)
		return nil, false
	}
	p.transport = t
	m.mu.Unlock()
	return t, true
}

func (m *Mesh) events(id string, epoch uint64) TransportEvents {
	return TransportEvents{
		OnCandidate:   func(c models.ICECandidate) { m.localCandidate(id, epoch, c) },
		OnStateChange: func(s TransportState) { m.transportState(id, epoch, s) },
		OnOpen:        func() { m.channelOpen(id, epoch) },
		OnMessage:     func(data []byte) { m.receive(id, epoch, data) },
	}
}

func (m *Mesh) localCandidate(id string, epoch uint64, c models.ICECandidate) {
	m.mu.Lock()
	p, ok := m.currentLocked(id, epoch)
	if !ok {
		m.mu.Unlock()
		return
	}
	if !p.signaled {
		p.outgoing = append(p.outgoing, c)
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.signaler.Send(models.SignalCandidate{Signal: models.Signal{TargetID: id}, Candidate: c})
}

// flushOutgoing sends the local candidates gathered before our description
// went out.
func (m *Mesh) flushOutgoing(id string, epoch uint64) {
	m.mu.Lock()
	p, ok := m.currentLocked(id, epoch)
	if !ok {
		m.mu.Unlock()
		return
	}
	p.signaled = true
	out := p.outgoing
	p.outgoing = nil
	m.mu.Unlock()

	for _, c := range out {
		m.signaler.Send(models.SignalCandidate{Signal: models.Signal{TargetID: id}, Candidate: c})
	}
}

func (m *Mesh) addCandidates(t Transport, id string, candidates []models.ICECandidate) {
	for _, c := range candidates {
		if err := t.AddCandidate(c); err != nil {
			m.logger.Warn().Err(err).Str("peer", id).Msg("ice candidate rejected")
		}
	}
}

func (m *Mesh) transportState(id string, epoch uint64, s TransportState) {
	m.mu.Lock()
	p, ok := m.currentLocked(id, epoch)
	if !ok {
		m.mu.Unlock()
		return
	}

	switch s {
	case TransportConnected:
		p.attempts = 0
		stopTimer(p)
		notify := m.transitionLocked(p, models.PeerConnected)
		m.mu.Unlock()
		notify()
		m.logger.Info().Str("peer", id).Msg("peer connected")

	case TransportDisconnected:
		notify := m.transitionLocked(p, models.PeerDisconnected)
		cursors, dropped := m.dropCursorLocked(id)
		delay := m.scheduleReconnectLocked(p)
		m.mu.Unlock()
		notify()
		if dropped {
			m.notifyCursors(cursors)
		}
		m.logger.Info().Str("peer", id).Dur("delay", delay).Msg("peer disconnected, reconnect scheduled")

	case TransportFailed:
		stopTimer(p)
		notify := m.transitionLocked(p, models.PeerFailed)
		cursors, dropped := m.dropCursorLocked(id)
		m.mu.Unlock()
		notify()
		if dropped {
			m.notifyCursors(cursors)
		}
		m.logger.Warn().Str("peer", id).Msg("peer connection failed")
		m.reconnect(id, epoch)

	default:
		m.mu.Unlock()
	}
}

// dropCursorLocked removes the cursor of id. It reports the remaining
// cursors and whether there was one to remove.
func (m *Mesh) dropCursorLocked(id string) ([]models.RemoteCursor, bool) {
	if _, ok := m.cursors[id]; !ok {
		return nil, false
	}
	delete(m.cursors, id)
	return m.cursorsLocked(), true
}

// negotiationFailed handles a local negotiation error. The retry waits for
// the backoff delay so a persistent local failure cannot spin.
func (m *Mesh) negotiationFailed(id string, epoch uint64, err error) {
	m.mu.Lock()
	p, ok := m.currentLocked(id, epoch)
	if !ok {
		m.mu.Unlock()
		return
	}
	p.makingOffer = false
	notify := m.transitionLocked(p, models.PeerFailed)
	delay := m.scheduleReconnectLocked(p)
	m.mu.Unlock()

	notify()
	m.logger.Warn().Err(err).Str("peer", id).Dur("delay", delay).Msg("negotiation failed")
}

func (m *Mesh) negotiationTimedOut(id string, epoch uint64) {
	m.mu.Lock()
	p, ok := m.currentLocked(id, epoch)
	if !ok || p.state == models.PeerConnected {
		m.mu.Unlock()
		return
	}
	p.timer = nil
	m.mu.Unlock()

	m.logger.Warn().Str("peer", id).Msg("negotiation timed out")
	m.reconnect(id, epoch)
}

// reconnect rebuilds the session of epoch unless it recovered meanwhile.
// Past the attempt cap the peer is torn down and reported gone.
func (m *Mesh) reconnect(id string, epoch uint64) {
	m.mu.Lock()
	p, ok := m.currentLocked(id, epoch)
	if !ok || p.state == models.PeerConnected {
		m.mu.Unlock()
		return
	}
	p.timer = nil

	if m.cfg.ReconnectMaxAttempts > 0 && p.attempts >= m.cfg.ReconnectMaxAttempts {
		attempts := p.attempts
		t, notify := m.removePeerLocked(p)
		cursors := m.cursorsLocked()
		m.mu.Unlock()

		closeTransport(t)
		notify()
		m.metrics.PeerGone()
		m.logger.Error().Str("peer", id).Int("attempts", attempts).Msg("peer unreachable, giving up")
		m.notifyGone(id)
		m.notifyCursors(cursors)
		return
	}

	p.attempts++
	notify := m.transitionLocked(p, models.PeerReconnecting)
	attempt := p.attempts
	m.mu.Unlock()

	notify()
	m.logger.Info().Str("peer", id).Int("attempt", attempt).Msg("reconnecting peer")
	m.offer(id)
}

// scheduleReconnectLocked arms the reconnect timer for the current attempt
// and returns its delay.
func (m *Mesh) scheduleReconnectLocked(p *peer) time.Duration {
	delay := utils.Backoff(m.cfg.ReconnectBaseDelay, m.cfg.ReconnectMaxDelay, p.attempts)
	id, epoch := p.id, p.epoch
	stopTimer(p)
	p.timer = m.afterFunc(delay, func() { m.reconnect(id, epoch) })
	return delay
}

func (m *Mesh) armNegotiationTimeoutLocked(p *peer) {
	id, epoch := p.id, p.epoch
	stopTimer(p)
	p.timer = m.afterFunc(negotiationTimeout, func() { m.negotiationTimedOut(id, epoch) })
}

// resetLocked starts a new epoch for p and detaches its transport, which
// the caller closes after unlocking.
func (m *Mesh) resetLocked(p *peer) Transport {
	m.epochs++
	p.epoch = m.epochs

	old := p.transport
	p.transport = nil
	p.offering = false
	p.makingOffer = false
	p.remoteSet = false
	p.ignoring = false
	p.signaled = false
	p.outgoing = nil
	return old
}

func (m *Mesh) currentLocked(id string, epoch uint64) (*peer, bool) {
	if !m.active {
		return nil, false
	}
	p, ok := m.peers[id]
	if !ok || p.epoch != epoch {
		return nil, false
	}
	return p, true
}

func (m *Mesh) channelOpen(id string, epoch uint64) {
	m.mu.Lock()
	p, ok := m.currentLocked(id, epoch)
	if !ok {
		m.mu.Unlock()
		return
	}
	t := p.transport
	last := m.last
	m.mu.Unlock()

	m.logger.Debug().Str("peer", id).Msg("presence channel open")
	if last == nil || t == nil || m.cfg.TouchPrimary {
		return
	}
	data, err := json.Marshal(last)
	if err != nil {
		return
	}
	if err = t.Send(data); err != nil {
		m.logger.Debug().Err(err).Str("peer", id).Msg("initial presence send failed")
	}
}

func (m *Mesh) receive(id string, epoch uint64, data []byte) {
	var presence models.Presence
	if err := json.Unmarshal(data, &presence); err != nil {
		m.logger.Warn().Err(err).Str("peer", id).Msg("dropping malformed presence")
		return
	}

	m.mu.Lock()
	p, ok := m.currentLocked(id, epoch)
	if !ok {
		m.mu.Unlock()
		return
	}
	// The session identifies the sender, not the payload.
	presence.UserID = id
	if presence.DisplayName == "" {
		presence.DisplayName = p.name
	}

	if presence.Active {
		m.cursors[id] = cursorFromPresence(presence, m.now())
	} else if _, had := m.cursors[id]; had {
		delete(m.cursors, id)
	} else {
		m.mu.Unlock()
		return
	}
	cursors := m.cursorsLocked()
	m.mu.Unlock()

	m.notifyCursors(cursors)
}
