package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"guruconnect/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Transport is one live socket owned by a SessionManager.
type Transport interface {
	JoinRoom(chatID string) error
	SendMessage(p models.SendMessagePayload) error
	// Incoming yields confirmed messages and is closed when the connection ends.
	Incoming() <-chan models.Message
	Close() error
}

// Dialer opens a new Transport.
type Dialer interface {
	Dial(ctx context.Context) (Transport, error)
}

// ErrTransportClosed is returned by writes after Close or a lost connection.
var ErrTransportClosed = errors.New("transport closed")

// WSDialer connects to the backend websocket with the caller's token.
type WSDialer struct {
	url      string
	identity Identity
	dialer   *websocket.Dialer
	logger   *zap.Logger
}

func NewWSDialer(cfg Config, identity Identity, logger *zap.Logger) *WSDialer {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSDialer{
		url:      cfg.WSURL,
		identity: identity,
		dialer:   &websocket.Dialer{HandshakeTimeout: cfg.HTTPTimeout},
		logger:   logger,
	}
}

func (d *WSDialer) Dial(ctx context.Context) (Transport, error) {
	u, err := url.Parse(d.url)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("token", d.identity.Token)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+d.identity.Token)
	conn, _, err := d.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, err
	}
	t := &wsTransport{
		conn:     conn,
		incoming: make(chan models.Message, 64),
		done:     make(chan struct{}),
		logger:   d.logger,
	}
	go t.readLoop()
	return t, nil
}

type wsTransport struct {
	conn     *websocket.Conn
	writeMu  sync.Mutex
	incoming chan models.Message
	logger   *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
}

func (t *wsTransport) Incoming() <-chan models.Message { return t.incoming }

func (t *wsTransport) JoinRoom(chatID string) error {
	return t.write(models.EventJoinRoom, models.JoinRoomPayload{ChatID: chatID})
}

func (t *wsTransport) SendMessage(p models.SendMessagePayload) error {
	return t.write(models.EventSendMessage, p)
}

func (t *wsTransport) write(event string, data interface{}) error {
	select {
	case <-t.done:
		return ErrTransportClosed
	default:
	}
	env, err := models.NewEnvelope(event, data)
	if err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return t.conn.WriteJSON(env)
}

// readLoop is the only sender on incoming and closes it on exit.
func (t *wsTransport) readLoop() {
	defer close(t.incoming)
	defer t.Close()

	for {
		var env models.Envelope
		if err := t.conn.ReadJSON(&env); err != nil {
			select {
			case <-t.done:
			default:
				t.logger.Debug("chat transport read ended", zap.Error(err))
			}
			return
		}
		switch env.Event {
		case models.EventReceiveMessage:
			var msg models.Message
			if err := json.Unmarshal(env.Data, &msg); err != nil {
				t.logger.Warn("dropping malformed chat message", zap.Error(err))
				continue
			}
			select {
			case t.incoming <- msg:
			case <-t.done:
				return
			}
		case models.EventError:
			var se models.SocketError
			_ = json.Unmarshal(env.Data, &se)
			t.logger.Warn("chat server rejected frame", zap.String("event", se.Event), zap.String("message", se.Message))
		}
	}
}

func (t *wsTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		t.writeMu.Lock()
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		t.writeMu.Unlock()
		err = t.conn.Close()
	})
	return err
}
