package client

import (
	"strings"
	"sync"
	"time"

	"guruconnect/models"

	"github.com/google/uuid"
)

// DeliveryState tracks whether the server has confirmed a displayed message.
type DeliveryState int

const (
	Optimistic DeliveryState = iota + 1
	Confirmed
)

// ChatMessage is one entry of the conversation view. ClientID is the
// correlation id shared by an optimistic entry and its confirmation.
type ChatMessage struct {
	ID        string
	ClientID  string
	ChatID    string
	SenderID  string
	Content   string
	CreatedAt time.Time
	State     DeliveryState
}

func confirmedFrom(m models.Message) ChatMessage {
	return ChatMessage{
		ID:        m.ID,
		ClientID:  m.ClientID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		State:     Confirmed,
	}
}

// Relay holds the ordered, de-duplicated message list of one chat.
// Entries are only ever appended or replaced in place.
type Relay struct {
	chatID   string
	senderID string
	now      func() time.Time

	mu        sync.Mutex
	messages  []ChatMessage
	transport Transport
	onChange  func([]ChatMessage)
}

func newRelay(chatID, senderID string, now func() time.Time) *Relay {
	if now == nil {
		now = time.Now
	}
	return &Relay{chatID: chatID, senderID: senderID, now: now}
}

func (r *Relay) ChatID() string { return r.chatID }

// OnChange registers a callback invoked with a snapshot after every change.
func (r *Relay) OnChange(fn func([]ChatMessage)) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

func (r *Relay) attach(t Transport) {
	r.mu.Lock()
	r.transport = t
	r.mu.Unlock()
}

func (r *Relay) detach() {
	r.mu.Lock()
	r.transport = nil
	r.mu.Unlock()
}

// notify must be called without r.mu held.
func (r *Relay) notify() {
	r.mu.Lock()
	fn := r.onChange
	snapshot := r.snapshotLocked()
	r.mu.Unlock()
	if fn != nil {
		fn(snapshot)
	}
}

func (r *Relay) snapshotLocked() []ChatMessage {
	return append([]ChatMessage(nil), r.messages...)
}

// Messages returns the display sequence.
func (r *Relay) Messages() []ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Send appends an optimistic copy and emits content over the transport. The
// copy is in place before the emit so an echo arriving during the emit
// replaces it instead of landing beside it. A failed emit removes the copy.
func (r *Relay) Send(content string) (ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return ChatMessage{}, newError(KindEmptyMessage, "message is empty", nil)
	}

	clientID := uuid.New().String()
	msg := ChatMessage{
		ID:        clientID,
		ClientID:  clientID,
		ChatID:    r.chatID,
		SenderID:  r.senderID,
		Content:   content,
		CreatedAt: r.now(),
		State:     Optimistic,
	}

	r.mu.Lock()
	t := r.transport
	if t == nil {
		r.mu.Unlock()
		return ChatMessage{}, newError(KindNotReady, "chat is not connected", nil)
	}
	r.messages = append(r.messages, msg)
	r.mu.Unlock()

	err := t.SendMessage(models.SendMessagePayload{
		ChatID:   r.chatID,
		SenderID: r.senderID,
		Message:  content,
		ClientID: clientID,
	})
	if err != nil {
		r.mu.Lock()
		r.removeOptimisticLocked(clientID)
		r.mu.Unlock()
		return ChatMessage{}, newError(KindNetwork, "message not sent", err)
	}

	r.notify()
	return msg, nil
}

func (r *Relay) removeOptimisticLocked(clientID string) {
	for i, existing := range r.messages {
		if existing.ClientID == clientID && existing.State == Optimistic {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return
		}
	}
}

// OnIncoming applies a server-confirmed message. An echo of our own message
// replaces its optimistic entry where it stands; anything else is appended
// in arrival order. Repeated deliveries of the same message are ignored.
func (r *Relay) OnIncoming(m models.Message) {
	if m.ChatID != "" && m.ChatID != r.chatID {
		return
	}
	r.mu.Lock()
	changed := r.applyLocked(confirmedFrom(m))
	r.mu.Unlock()
	if changed {
		r.notify()
	}
}

func (r *Relay) applyLocked(c ChatMessage) bool {
	for i, existing := range r.messages {
		if existing.State == Confirmed && c.ID != "" && existing.ID == c.ID {
			return false
		}
		if c.ClientID != "" && existing.ClientID == c.ClientID {
			if existing.State == Confirmed {
				return false
			}
			r.messages[i] = c
			return true
		}
	}
	r.messages = append(r.messages, c)
	return true
}

// Seed replaces the view with server history. Entries the history does not
// cover yet (unconfirmed sends, live messages newer than the fetch) are kept
// after it in their current order.
func (r *Relay) Seed(history []models.Message) {
	r.mu.Lock()
	seenIDs := make(map[string]struct{}, len(history))
	seenClientIDs := make(map[string]struct{}, len(history))
	next := make([]ChatMessage, 0, len(history)+len(r.messages))
	for _, m := range history {
		if _, dup := seenIDs[m.ID]; dup && m.ID != "" {
			continue
		}
		seenIDs[m.ID] = struct{}{}
		if m.ClientID != "" {
			seenClientIDs[m.ClientID] = struct{}{}
		}
		next = append(next, confirmedFrom(m))
	}

	for _, existing := range r.messages {
		if existing.State == Confirmed {
			if _, ok := seenIDs[existing.ID]; ok {
				continue
			}
		}
		if existing.ClientID != "" {
			if _, ok := seenClientIDs[existing.ClientID]; ok {
				continue
			}
		}
		next = append(next, existing)
	}
	r.messages = next
	r.mu.Unlock()
	r.notify()
}
