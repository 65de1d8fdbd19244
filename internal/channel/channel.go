// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package channel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/MKhiriev/drawer-sync/internal/adapter"
	"github.com/MKhiriev/drawer-sync/internal/config"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/metrics"
	"github.com/MKhiriev/drawer-sync/internal/utils"
	"github.com/MKhiriev/drawer-sync/models"
)

const (
	// Application close codes the authority uses to reject a room member.
	CloseUnauthorized = 4001
	CloseForbidden    = 4003

	writeTimeout     = 10 * time.Second
	reconnectTimeout = 30 * time.Second
)

// TokenProvider hands out a room token that is valid for at least the
// configured expiry buffer.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// tokenInvalidator is implemented by providers that cache tokens.
type tokenInvalidator interface {
	Invalidate()
}

// Inbound is a decoded message received from the room.
type Inbound struct {
	// SenderID is set by the authority on relayed frames.
	SenderID string
	Message  models.SyncMessage
}

// Channel is the duplex connection to one room of the authority.
type Channel struct {
	cfg         config.Sync
	baseURL     string
	localUserID string
	tokens      TokenProvider
	dialer      *websocket.Dialer
	ids         *utils.UUIDGenerator
	dedup       *lru.Cache[string, struct{}]
	metrics     *metrics.Metrics
	logger      *logger.Logger

	// afterFunc schedules reconnects; replaced in tests.
	afterFunc func(time.Duration, func()) stopper

	mu             sync.Mutex
	room           string
	state          State
	conn           *websocket.Conn
	generation     uint64
	hasConnected   bool
	attempts       int
	timer          stopper
	authFailedRoom string
	roster         map[string]models.Member
	changed        chan struct{}

	writeMu sync.Mutex

	observersMu      sync.RWMutex
	messageObservers []func(Inbound)
	stateObservers   []func(State)
	rosterObservers  []func([]models.Member)
}

type stopper interface {
	Stop() bool
}

// New creates a disconnected channel. baseURL is the websocket base of the
// authority (e.g. "wss://authority.example.com").
func New(cfg config.Sync, baseURL, localUserID string, tokens TokenProvider, m *metrics.Metrics, log *logger.Logger) (*Channel, error) {
	size := cfg.DedupCacheSize
	if size <= 0 {
		size = 1024
	}
	dedup, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("dedup cache: %w", err)
	}

	return &Channel{
		cfg:         cfg,
		baseURL:     strings.TrimRight(baseURL, "/"),
		localUserID: localUserID,
		tokens:      tokens,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 15 * time.Second,
		},
		ids:     utils.NewUUIDGenerator(),
		dedup:   dedup,
		metrics: m,
		logger:  log.WithComponent("channel"),
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		roster:  make(map[string]models.Member),
		changed: make(chan struct{}),
	}, nil
}

// Connect opens the channel to roomID. It is a no-op when the channel is
// already connected or connecting to that room. A room whose last attempt was
// rejected as unauthorized is refused with ErrAuthRejected until a different
// room is requested or ResetAuth is called.
func (c *Channel) Connect(ctx context.Context, roomID string) error {
	if roomID == "" {
		return ErrNoRoom
	}

	c.mu.Lock()
	if c.authFailedRoom != "" {
		if c.authFailedRoom == roomID {
			c.mu.Unlock()
			return fmt.Errorf("%w: room %s", ErrAuthRejected, roomID)
		}
		c.authFailedRoom = ""
	}

	if c.room == roomID && (c.state == StateConnected || c.state == StateConnecting) {
		c.mu.Unlock()
		return nil
	}

	var (
		notify []func()
		stale  *websocket.Conn
	)
	if c.room != roomID {
		stale = c.conn
		c.conn = nil
		c.room = roomID
		c.hasConnected = false
		notify = append(notify, c.clearRosterLocked())
	}
	c.stopTimerLocked()
	c.attempts = 0
	c.generation++
	gen := c.generation
	notify = append(notify, c.transitionLocked(StateConnecting))
	c.mu.Unlock()

	closeConn(stale)
	run(notify)
	return c.dial(ctx, gen)
}

// ReconnectNow retries immediately, dropping any pending backoff timer. It is
// meant for external triggers such as the host regaining network access.
func (c *Channel) ReconnectNow(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.room == "":
		c.mu.Unlock()
		return ErrNoRoom
	case c.state == StateConnected || c.state == StateConnecting:
		c.mu.Unlock()
		return nil
	case c.state == StateAuthFailed:
		c.mu.Unlock()
		return fmt.Errorf("%w: room %s", ErrAuthRejected, c.room)
	}

	c.stopTimerLocked()
	c.attempts = 0
	c.generation++
	gen := c.generation
	notify := c.transitionLocked(StateConnecting)
	c.mu.Unlock()

	notify()
	return c.dial(ctx, gen)
}

// Retry is the manual "try again" trigger. It behaves like ReconnectNow,
// except that after an authentication rejection it first drops the cached
// token and the rejection, so a renewed credential gets one attempt.
func (c *Channel) Retry(ctx context.Context) error {
	c.mu.Lock()
	room := c.room
	rejected := c.state == StateAuthFailed
	c.mu.Unlock()

	if room == "" {
		return ErrNoRoom
	}
	if !rejected {
		return c.ReconnectNow(ctx)
	}

	if inv, ok := c.tokens.(tokenInvalidator); ok {
		inv.Invalidate()
	}
	c.ResetAuth()
	c.logger.Info().Str("room", room).Msg("retrying rejected room")
	return c.Connect(ctx, room)
}

// ResetAuth forgets an authentication rejection, e.g. after the user
// obtained a fresh credential.
func (c *Channel) ResetAuth() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authFailedRoom = ""
	c.hasConnected = false
}

// Disconnect closes the channel and cancels any pending reconnect. It is
// safe to call repeatedly.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.stopTimerLocked()
	c.generation++
	conn := c.conn
	c.conn = nil
	c.room = ""
	c.hasConnected = false
	c.attempts = 0
	notify := []func(){c.transitionLocked(StateDisconnected)}
	notify = append(notify, c.clearRosterLocked())
	c.mu.Unlock()

	closeConn(conn)
	run(notify)
}

// Send encodes msg and writes it to the room. The message is silently
// dropped when the channel is not open; the result reports whether it was
// written.
func (c *Channel) Send(msg models.SyncMessage) bool {
	c.mu.Lock()
	conn := c.conn
	open := c.state == StateConnected
	c.mu.Unlock()

	if !open || conn == nil {
		c.logger.Debug().Str("type", string(msg.MessageType())).Msg("channel not open, message dropped")
		return false
	}

	data, err := models.EncodeMessage(c.ids.Generate(), msg)
	if err != nil {
		c.logger.Err(err).Msg("error encoding outbound message")
		return false
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err = conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.Err(err).Str("type", string(msg.MessageType())).Msg("error writing outbound message")
		return false
	}
	return true
}

// WaitConnected blocks until the channel is connected, ctx is done or
// timeout elapses.
func (c *Channel) WaitConnected(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		c.mu.Lock()
		if c.state == StateConnected {
			c.mu.Unlock()
			return nil
		}
		changed := c.changed
		c.mu.Unlock()

		select {
		case <-changed:
		case <-timer.C:
			return ErrWaitTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connected reports whether the channel is open.
func (c *Channel) Connected() bool {
	return c.State() == StateConnected
}

// Room returns the room the channel is bound to, or "" when disconnected.
func (c *Channel) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// Roster returns the current room members ordered by user id.
func (c *Channel) Roster() []models.Member {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rosterLocked()
}

// OnMessage registers fn for every inbound message, presence and signaling
// included. Messages are delivered in arrival order on the reader goroutine.
func (c *Channel) OnMessage(fn func(Inbound)) {
	c.observersMu.Lock()
	defer c.observersMu.Unlock()
	c.messageObservers = append(c.messageObservers, fn)
}

// OnStateChange registers fn for connection state transitions.
func (c *Channel) OnStateChange(fn func(State)) {
	c.observersMu.Lock()
	defer c.observersMu.Unlock()
	c.stateObservers = append(c.stateObservers, fn)
}

// OnRosterChange registers fn for room roster changes.
func (c *Channel) OnRosterChange(fn func([]models.Member)) {
	c.observersMu.Lock()
	defer c.observersMu.Unlock()
	c.rosterObservers = append(c.rosterObservers, fn)
}

func (c *Channel) dial(ctx context.Context, gen uint64) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		if !adapter.IsRetryable(err) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", errCredential, err)
		}
		return c.dialFailed(gen, nil, fmt.Errorf("room token: %w", err))
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	c.mu.Lock()
	endpoint := c.endpointLocked()
	c.mu.Unlock()

	conn, resp, err := c.dialer.DialContext(ctx, endpoint, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return c.dialFailed(gen, resp, err)
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		closeConn(conn)
		return nil
	}
	c.conn = conn
	c.attempts = 0
	c.hasConnected = true
	notify := c.transitionLocked(StateConnected)
	room := c.room
	c.mu.Unlock()

	c.logger.Info().Str("room", room).Msg("room channel connected")
	notify()

	go c.readLoop(conn, gen)
	return nil
}

func (c *Channel) dialFailed(gen uint64, resp *http.Response, cause error) error {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return nil
	}

	// Without a response or a credential verdict the authority was never
	// reached, so the failure is transport-level and retried with backoff.
	rejected := errors.Is(cause, errCredential) ||
		(resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden))
	refused := resp != nil && !c.hasConnected
	if rejected || refused {
		notify := c.authFailedLocked()
		room := c.room
		c.mu.Unlock()

		c.logger.Warn().Err(cause).Str("room", room).Msg("room channel rejected, not reconnecting")
		notify()
		return fmt.Errorf("%w: %w", ErrAuthRejected, cause)
	}

	notify := c.scheduleReconnectLocked()
	c.mu.Unlock()

	c.logger.Warn().Err(cause).Msg("room channel dial failed")
	notify()
	return fmt.Errorf("%w: %w", ErrDial, cause)
}

func (c *Channel) readLoop(conn *websocket.Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(gen, err)
			return
		}
		c.handleFrame(gen, data)
	}
}

func (c *Channel) handleClose(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.conn = nil

	var notify []func()
	switch {
	case websocket.IsCloseError(err, CloseUnauthorized, CloseForbidden, websocket.ClosePolicyViolation):
		notify = append(notify, c.authFailedLocked())
	case !c.hasConnected:
		notify = append(notify, c.authFailedLocked())
	case websocket.IsCloseError(err, websocket.CloseNormalClosure):
		notify = append(notify, c.transitionLocked(StateDisconnected))
	default:
		notify = append(notify, c.scheduleReconnectLocked())
	}
	notify = append(notify, c.clearRosterLocked())
	c.mu.Unlock()

	closeConn(conn)
	c.logger.Info().Err(err).Msg("room channel closed")
	run(notify)
}

func (c *Channel) handleFrame(gen uint64, data []byte) {
	env, msg, err := models.DecodeEnvelope(data)
	if err != nil {
		c.logger.Warn().Err(err).Msg("dropping undecodable frame")
		return
	}

	if env.ID != "" {
		if seen, _ := c.dedup.ContainsOrAdd(env.ID, struct{}{}); seen {
			c.metrics.Duplicate()
			return
		}
	}
	c.metrics.Inbound(string(env.Type))

	if env.Type.IsPresence() {
		if !c.trackRoster(gen, msg) {
			return
		}
	}

	in := Inbound{SenderID: env.SenderID, Message: msg}
	for _, fn := range c.messageObserversSnapshot() {
		c.safeCall("message", func() { fn(in) })
	}
}

// trackRoster updates the roster from a presence message. It reports false
// when the frame belongs to a superseded connection.
func (c *Channel) trackRoster(gen uint64, msg models.SyncMessage) bool {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return false
	}

	var notify []func()
	switch m := msg.(type) {
	case models.MembersSnapshot:
		c.roster = make(map[string]models.Member, len(m.Members))
		for _, member := range m.Members {
			c.roster[member.UserID] = member
		}
	case models.MemberJoined:
		c.roster[m.Member.UserID] = m.Member
	case models.MemberLeft:
		delete(c.roster, m.UserID)
	case models.MemberRevoked:
		delete(c.roster, m.UserID)
		if m.UserID == c.localUserID {
			conn := c.conn
			c.conn = nil
			c.generation++
			notify = append(notify, c.authFailedLocked(), c.clearRosterLocked())
			c.mu.Unlock()

			c.logger.Warn().Msg("access to room revoked")
			closeConn(conn)
			run(notify)
			return true
		}
	}
	notify = append(notify, c.rosterChangedLocked())
	c.mu.Unlock()

	run(notify)
	return true
}

func (c *Channel) scheduleReconnectLocked() func() {
	if c.cfg.ReconnectMaxAttempts > 0 && c.attempts >= c.cfg.ReconnectMaxAttempts {
		c.logger.Error().Int("attempts", c.attempts).Msg("room channel unreachable, giving up")
		return c.transitionLocked(StateUnreachable)
	}

	delay := utils.Backoff(c.cfg.ReconnectBaseDelay, c.cfg.ReconnectMaxDelay, c.attempts)
	c.attempts++
	gen := c.generation
	c.stopTimerLocked()
	c.timer = c.afterFunc(delay, func() { c.reconnect(gen) })
	c.metrics.Reconnect()

	c.logger.Info().Int("attempt", c.attempts).Dur("delay", delay).Msg("room channel reconnect scheduled")
	return c.transitionLocked(StateReconnecting)
}

func (c *Channel) reconnect(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.state != StateReconnecting {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.generation++
	next := c.generation
	notify := c.transitionLocked(StateConnecting)
	c.mu.Unlock()

	notify()

	ctx, cancel := context.WithTimeout(context.Background(), reconnectTimeout)
	defer cancel()
	if err := c.dial(ctx, next); err != nil && !errors.Is(err, ErrDial) {
		c.logger.Err(err).Msg("room channel reconnect failed")
	}
}

func (c *Channel) authFailedLocked() func() {
	c.stopTimerLocked()
	c.authFailedRoom = c.room
	return c.transitionLocked(StateAuthFailed)
}

func (c *Channel) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// transitionLocked moves to s and returns the observer notification to run
// once the lock is released. Repeated states are not reported.
func (c *Channel) transitionLocked(s State) func() {
	if c.state == s {
		return func() {}
	}
	c.state = s
	close(c.changed)
	c.changed = make(chan struct{})
	c.metrics.ChannelConnected(s == StateConnected)

	return func() {
		for _, fn := range c.stateObserversSnapshot() {
			c.safeCall("state", func() { fn(s) })
		}
	}
}

func (c *Channel) clearRosterLocked() func() {
	if len(c.roster) == 0 {
		return func() {}
	}
	c.roster = make(map[string]models.Member)
	return c.rosterChangedLocked()
}

func (c *Channel) rosterChangedLocked() func() {
	members := c.rosterLocked()
	return func() {
		for _, fn := range c.rosterObserversSnapshot() {
			c.safeCall("roster", func() { fn(members) })
		}
	}
}

func (c *Channel) rosterLocked() []models.Member {
	out := make([]models.Member, 0, len(c.roster))
	for _, m := range c.roster {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b models.Member) int { return strings.Compare(a.UserID, b.UserID) })
	return out
}

func (c *Channel) endpointLocked() string {
	return c.baseURL + "/rooms/" + url.PathEscape(c.room) + "/ws"
}

func (c *Channel) messageObserversSnapshot() []func(Inbound) {
	c.observersMu.RLock()
	defer c.observersMu.RUnlock()
	return slices.Clone(c.messageObservers)
}

func (c *Channel) stateObserversSnapshot() []func(State) {
	c.observersMu.RLock()
	defer c.observersMu.RUnlock()
	return slices.Clone(c.stateObservers)
}

func (c *Channel) rosterObserversSnapshot() []func([]models.Member) {
	c.observersMu.RLock()
	defer c.observersMu.RUnlock()
	return slices.Clone(c.rosterObservers)
}

// safeCall runs one observer; a panic is logged and does not reach the
// remaining observers.
func (c *Channel) safeCall(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Str("observer", kind).Msg("channel observer panicked")
		}
	}()
	fn()
}

func closeConn(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	_ = conn.Close()
}

func run(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
