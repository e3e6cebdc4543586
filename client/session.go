package client

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionState is the lifecycle of one conversation panel.
type SessionState int

const (
	StateIdle SessionState = iota
	StateConnecting
	StateJoining
	StateReady
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConnecting:
		return "Connecting"
	case StateJoining:
		return "Joining"
	case StateReady:
		return "Ready"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// SessionManager owns at most one transport for the conversation between
// the local identity and one remote participant.
type SessionManager struct {
	identity Identity
	api      API
	dialer   Dialer
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	state     SessionState
	gen       uint64
	remoteID  string
	chatID    string
	transport Transport
	relay     *Relay

	// OnDisconnect, when set, is called if the transport drops while Ready.
	// Reconnecting is an explicit Open by the caller.
	OnDisconnect func()
}

func NewSessionManager(identity Identity, api API, dialer Dialer, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{identity: identity, api: api, dialer: dialer, logger: logger, now: time.Now}
}

func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *SessionManager) ChatID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chatID
}

// Relay returns the message relay of the current or last conversation.
func (m *SessionManager) Relay() *Relay {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.relay
}

// Open connects, resolves the chat for the pair, joins its room and seeds the
// relay from history, in that order. Any failure closes what was acquired.
// Opening the pair that is already Ready returns the existing relay.
func (m *SessionManager) Open(ctx context.Context, remoteID string) (*Relay, error) {
	m.mu.Lock()
	switch {
	case m.state == StateReady && m.remoteID == remoteID:
		r := m.relay
		m.mu.Unlock()
		return r, nil
	case m.state == StateConnecting || m.state == StateJoining:
		m.mu.Unlock()
		return nil, newError(KindChatOpenFailed, "chat is already opening", nil)
	}
	prev := m.releaseLocked()
	if m.remoteID != remoteID {
		m.relay = nil
		m.chatID = ""
	}
	m.remoteID = remoteID
	m.gen++
	gen := m.gen
	m.state = StateConnecting
	m.mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}

	log := m.logger.With(zap.String("userId", m.identity.UserID), zap.String("remoteId", remoteID))

	t, err := m.dialer.Dial(ctx)
	if err != nil {
		return nil, m.abort(gen, nil, log, "connect", err)
	}

	chatID, err := m.api.GetOrCreateChat(ctx, remoteID)
	if err != nil {
		return nil, m.abort(gen, t, log, "resolve chat", err)
	}

	if !m.advance(gen, StateJoining) {
		_ = t.Close()
		return nil, newError(KindChatOpenFailed, "chat closed while opening", nil)
	}
	if err := t.JoinRoom(chatID); err != nil {
		return nil, m.abort(gen, t, log, "join room", err)
	}

	history, err := m.api.FetchHistory(ctx, chatID)
	if err != nil {
		return nil, m.abort(gen, t, log, "fetch history", err)
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		_ = t.Close()
		return nil, newError(KindChatOpenFailed, "chat closed while opening", nil)
	}
	relay := m.relay
	if relay == nil || relay.ChatID() != chatID {
		relay = newRelay(chatID, m.identity.UserID, m.now)
		m.relay = relay
	}
	relay.attach(t)
	m.transport = t
	m.chatID = chatID
	m.state = StateReady
	m.mu.Unlock()

	relay.Seed(history)
	go m.pump(gen, t, relay)

	log.Info("chat ready", zap.String("chatId", chatID), zap.Int("history", len(history)))
	return relay, nil
}

// Close tears the transport down unconditionally, including mid-open.
func (m *SessionManager) Close() error {
	m.mu.Lock()
	m.gen++
	t := m.releaseLocked()
	m.state = StateClosed
	m.mu.Unlock()
	if t != nil {
		return t.Close()
	}
	return nil
}

// releaseLocked detaches the current transport and returns it for closing.
func (m *SessionManager) releaseLocked() Transport {
	t := m.transport
	m.transport = nil
	if m.relay != nil {
		m.relay.detach()
	}
	return t
}

func (m *SessionManager) advance(gen uint64, state SessionState) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return false
	}
	m.state = state
	return true
}

func (m *SessionManager) abort(gen uint64, t Transport, log *zap.Logger, step string, err error) error {
	if t != nil {
		_ = t.Close()
	}
	m.mu.Lock()
	if m.gen == gen {
		m.state = StateClosed
	}
	m.mu.Unlock()
	log.Warn("chat open failed", zap.String("step", step), zap.Error(err))
	return newError(KindChatOpenFailed, step+" failed", err)
}

// pump forwards live messages until the transport ends.
func (m *SessionManager) pump(gen uint64, t Transport, relay *Relay) {
	for msg := range t.Incoming() {
		relay.OnIncoming(msg)
	}

	var hook func()
	m.mu.Lock()
	if m.gen == gen && m.state == StateReady {
		m.transport = nil
		relay.detach()
		m.state = StateClosed
		hook = m.OnDisconnect
	}
	m.mu.Unlock()
	_ = t.Close()

	if hook != nil {
		m.logger.Info("chat transport lost", zap.String("chatId", relay.ChatID()))
		hook()
	}
}
