// Package realtime keeps the single websocket connection to the marketplace
// hub and fans decoded frames out to registered handlers.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/bnema/ibuy-cli/internal/domain"
	"github.com/bnema/ibuy-cli/internal/ports"
	"github.com/coder/websocket"
	"go.uber.org/zap"
)

const (
	DefaultURL            = "ws://localhost:8080/ws?user_id="
	defaultReconnectDelay = 3 * time.Second
	defaultPingInterval   = 30 * time.Second
	defaultDialTimeout    = 10 * time.Second
	maxFrameBytes         = 1 << 20
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// Target identifies what the connection is opened for. ProductID is sent as
// the initial viewed product when set.
type Target struct {
	UserID    string
	ProductID domain.ProductID
}

type HandlerID uint64

type handlerEntry struct {
	id HandlerID
	fn ports.FrameHandler
}

// Manager owns at most one live socket. Reconnects after an unclean close are
// scheduled on Clock, one at a time.
type Manager struct {
	// URL is the hub endpoint ending in the user id query parameter,
	// e.g. ws://localhost:8080/ws?user_id=
	URL            string
	HTTPClient     *http.Client
	Clock          ports.Clock
	Logger         *zap.Logger
	ReconnectDelay time.Duration
	// PingInterval is the keepalive period. A negative value disables pings.
	PingInterval  time.Duration
	DialTimeout   time.Duration
	OnStateChange func(State)

	mu         sync.Mutex
	state      State
	target     Target
	generation uint64
	session    *session
	reconnect  ports.Timer
	handlers   []handlerEntry
	nextID     HandlerID
}

var _ ports.Realtime = (*Manager)(nil)

func NewManager(wsURL string, jar http.CookieJar, logger *zap.Logger) *Manager {
	return &Manager{
		URL:        wsURL,
		HTTPClient: &http.Client{Jar: jar},
		Logger:     logger,
	}
}

type session struct {
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *session) close(code websocket.StatusCode, reason string) error {
	defer s.cancel()
	return s.conn.Close(code, reason)
}

// Connect opens the socket for userID. It does nothing when the manager is
// already connected as that user.
func (m *Manager) Connect(ctx context.Context, userID string) error {
	return m.ConnectTo(ctx, Target{UserID: userID})
}

func (m *Manager) ConnectTo(ctx context.Context, target Target) error {
	if target.UserID == "" {
		return errors.New("realtime user id is required")
	}

	m.mu.Lock()
	if m.state == StateConnected && m.target == target {
		m.mu.Unlock()
		return nil
	}
	m.stopReconnectLocked()
	old := m.session
	m.session = nil
	m.target = target
	m.generation++
	gen := m.generation
	changed := m.setStateLocked(StateConnecting)
	m.mu.Unlock()

	if old != nil {
		if err := old.close(websocket.StatusNormalClosure, "switching user"); err != nil {
			m.logger().Debug("close previous realtime connection", zap.Error(err))
		}
	}
	m.notify(changed)

	return m.dial(ctx, gen)
}

func (m *Manager) dial(ctx context.Context, gen uint64) error {
	m.mu.Lock()
	target := m.target
	m.mu.Unlock()

	endpoint, err := m.endpoint(target)
	if err != nil {
		return err
	}

	dialCtx, cancel := context.WithTimeout(ctx, m.dialTimeout())
	defer cancel()

	conn, _, dialErr := websocket.Dial(dialCtx, endpoint, &websocket.DialOptions{HTTPClient: m.HTTPClient})

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		if dialErr == nil {
			_ = conn.CloseNow()
		}
		return errors.New("realtime connect superseded")
	}
	if dialErr != nil {
		changed := m.scheduleReconnectLocked(gen)
		m.mu.Unlock()
		m.notify(changed)
		return &domain.NetworkError{Err: fmt.Errorf("dial realtime: %w", dialErr)}
	}

	conn.SetReadLimit(maxFrameBytes)
	sessionCtx, sessionCancel := context.WithCancel(context.Background())
	sess := &session{conn: conn, ctx: sessionCtx, cancel: sessionCancel}
	m.session = sess
	changed := m.setStateLocked(StateConnected)
	m.mu.Unlock()

	m.logger().Info("realtime connected", zap.String("user_id", target.UserID))
	m.notify(changed)

	go m.readLoop(sess, gen)
	if m.pingInterval() > 0 {
		go m.pingLoop(sess)
	}
	return nil
}

// Disconnect closes the socket normally and cancels any pending reconnect.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	m.generation++
	m.stopReconnectLocked()
	sess := m.session
	m.session = nil
	changed := m.setStateLocked(StateDisconnected)
	m.mu.Unlock()

	m.notify(changed)
	if sess == nil {
		return nil
	}
	if err := sess.close(websocket.StatusNormalClosure, "client disconnect"); err != nil {
		m.logger().Debug("close realtime connection", zap.Error(err))
	}
	return nil
}

func (m *Manager) Connected() bool {
	return m.State() == StateConnected
}

func (m *Manager) UserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target.UserID
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Send writes payload as one JSON text frame.
func (m *Manager) Send(ctx context.Context, payload any) error {
	m.mu.Lock()
	sess := m.session
	connected := m.state == StateConnected
	m.mu.Unlock()

	if sess == nil || !connected {
		return domain.ErrNotConnected
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode realtime frame: %w", err)
	}
	if err := sess.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return &domain.NetworkError{Err: fmt.Errorf("write realtime frame: %w", err)}
	}
	return nil
}

func (m *Manager) Register(fn ports.FrameHandler) HandlerID {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	m.handlers = append(m.handlers, handlerEntry{id: m.nextID, fn: fn})
	return m.nextID
}

func (m *Manager) RemoveHandler(id HandlerID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, entry := range m.handlers {
		if entry.id == id {
			m.handlers = append(m.handlers[:i:i], m.handlers[i+1:]...)
			return
		}
	}
}

func (m *Manager) AddHandler(fn ports.FrameHandler) func() {
	id := m.Register(fn)
	var once sync.Once
	return func() {
		once.Do(func() { m.RemoveHandler(id) })
	}
}

func (m *Manager) readLoop(sess *session, gen uint64) {
	for {
		_, data, err := sess.conn.Read(sess.ctx)
		if err != nil {
			m.handleClosed(sess, gen, err)
			return
		}

		frame, known, err := domain.DecodeInboundFrame(data)
		if err != nil {
			m.logger().Warn("dropping malformed realtime frame", zap.Error(err))
			continue
		}
		if !known {
			m.logger().Debug("ignoring realtime frame", zap.String("type", string(frame.Type)))
			continue
		}
		m.dispatch(frame)
	}
}

func (m *Manager) dispatch(frame domain.InboundFrame) {
	m.mu.Lock()
	snapshot := append([]handlerEntry(nil), m.handlers...)
	m.mu.Unlock()

	for _, entry := range snapshot {
		m.invoke(entry, frame)
	}
}

func (m *Manager) invoke(entry handlerEntry, frame domain.InboundFrame) {
	defer func() {
		if r := recover(); r != nil {
			m.logger().Error("realtime handler panicked",
				zap.Uint64("handler_id", uint64(entry.id)),
				zap.Any("panic", r),
			)
		}
	}()
	entry.fn(frame)
}

func (m *Manager) handleClosed(sess *session, gen uint64, err error) {
	sess.cancel()

	m.mu.Lock()
	if gen != m.generation || m.session != sess {
		m.mu.Unlock()
		return
	}
	m.session = nil

	var changed *State
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
		changed = m.setStateLocked(StateDisconnected)
		m.mu.Unlock()
		m.logger().Info("realtime connection closed")
	} else {
		changed = m.scheduleReconnectLocked(gen)
		m.mu.Unlock()
		m.logger().Warn("realtime connection lost", zap.Error(err))
	}
	m.notify(changed)
}

func (m *Manager) scheduleReconnectLocked(gen uint64) *State {
	if m.reconnect != nil {
		return nil
	}
	m.reconnect = m.clock().AfterFunc(m.reconnectDelay(), func() {
		m.reconnectNow(gen)
	})
	return m.setStateLocked(StateReconnecting)
}

func (m *Manager) reconnectNow(gen uint64) {
	m.mu.Lock()
	if gen != m.generation || m.reconnect == nil {
		m.mu.Unlock()
		return
	}
	m.reconnect = nil
	m.generation++
	next := m.generation
	changed := m.setStateLocked(StateConnecting)
	m.mu.Unlock()

	m.notify(changed)
	if err := m.dial(context.Background(), next); err != nil {
		m.logger().Warn("realtime reconnect failed", zap.Error(err))
	}
}

func (m *Manager) stopReconnectLocked() {
	if m.reconnect != nil {
		m.reconnect.Stop()
		m.reconnect = nil
	}
}

func (m *Manager) pingLoop(sess *session) {
	ticker := time.NewTicker(m.pingInterval())
	defer ticker.Stop()

	for {
		select {
		case <-sess.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(sess.ctx, m.dialTimeout())
			err := sess.conn.Ping(ctx)
			cancel()
			if err != nil && sess.ctx.Err() == nil {
				m.logger().Debug("realtime ping failed", zap.Error(err))
				// The read loop sees the dropped socket and schedules a reconnect.
				_ = sess.conn.CloseNow()
				return
			}
		}
	}
}

// setStateLocked returns the new state when it changed so the caller can
// notify once the lock is released.
func (m *Manager) setStateLocked(state State) *State {
	if m.state == state {
		return nil
	}
	m.state = state
	return &state
}

func (m *Manager) notify(state *State) {
	if state == nil || m.OnStateChange == nil {
		return
	}
	m.OnStateChange(*state)
}

func (m *Manager) endpoint(target Target) (string, error) {
	base := m.URL
	if base == "" {
		base = DefaultURL
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse realtime url: %w", err)
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return "", errors.New("realtime url must use ws or wss")
	}

	endpoint := base + url.QueryEscape(target.UserID)
	if target.ProductID != "" {
		endpoint += "&product_id=" + url.QueryEscape(string(target.ProductID))
	}
	return endpoint, nil
}

func (m *Manager) clock() ports.Clock {
	if m.Clock != nil {
		return m.Clock
	}
	return ports.SystemClock{}
}

func (m *Manager) logger() *zap.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return zap.NewNop()
}

func (m *Manager) reconnectDelay() time.Duration {
	if m.ReconnectDelay > 0 {
		return m.ReconnectDelay
	}
	return defaultReconnectDelay
}

func (m *Manager) pingInterval() time.Duration {
	if m.PingInterval == 0 {
		return defaultPingInterval
	}
	return m.PingInterval
}

func (m *Manager) dialTimeout() time.Duration {
	if m.DialTimeout > 0 {
		return m.DialTimeout
	}
	return defaultDialTimeout
}
