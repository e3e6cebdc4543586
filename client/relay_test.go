package client

import (
	"errors"
	"testing"
	"time"

	"guruconnect/models"
)

func readyRelay() (*Relay, *fakeTransport) {
	r := newRelay("chat-1", "student-1", func() time.Time { return wednesday })
	t := newFakeTransport(nil)
	r.attach(t)
	return r, t
}

func TestSend_RejectsBlank(t *testing.T) {
	r, tr := readyRelay()
	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := r.Send(content); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("expected EmptyMessage for %q, got %v", content, err)
		}
	}
	if len(tr.sent) != 0 || len(r.Messages()) != 0 {
		t.Fatalf("blank messages must not be sent or shown")
	}
}

func TestSend_EmitsThenAppendsOptimistic(t *testing.T) {
	r, tr := readyRelay()
	msg, err := r.Send("  hi there ")
	if err != nil {
		t.Fatal(err)
	}
	sent := tr.lastSent()
	if sent.ChatID != "chat-1" || sent.SenderID != "student-1" || sent.Message != "hi there" || sent.ClientID == "" {
		t.Fatalf("unexpected payload %+v", sent)
	}
	if msg.State != Optimistic || msg.ClientID != sent.ClientID || !msg.CreatedAt.Equal(wednesday) {
		t.Fatalf("unexpected optimistic entry %+v", msg)
	}
}

func TestSend_TransportFailureShowsNothing(t *testing.T) {
	r, tr := readyRelay()
	tr.sendErr = errBoom
	if _, err := r.Send("hi"); !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected Network, got %v", err)
	}
	if len(r.Messages()) != 0 {
		t.Fatalf("an unsent message must not be displayed")
	}
}

func TestSend_EchoDuringEmitIsNotDuplicated(t *testing.T) {
	r, tr := readyRelay()
	tr.onSend = func(p models.SendMessagePayload) {
		r.OnIncoming(models.Message{ID: "srv-1", ChatID: p.ChatID, SenderID: p.SenderID, Content: p.Message, ClientID: p.ClientID})
	}

	if _, err := r.Send("hello"); err != nil {
		t.Fatal(err)
	}
	msgs := r.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected one entry, got %+v", msgs)
	}
	if msgs[0].ID != "srv-1" || msgs[0].State != Confirmed {
		t.Fatalf("the echo must supersede the optimistic copy: %+v", msgs[0])
	}
}

func TestSend_FailureKeepsEarlierEntries(t *testing.T) {
	r, tr := readyRelay()
	r.OnIncoming(models.Message{ID: "g1", ChatID: "chat-1", SenderID: "guru-1", Content: "hi"})
	tr.sendErr = errBoom
	if _, err := r.Send("lost"); !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected Network, got %v", err)
	}
	msgs := r.Messages()
	if len(msgs) != 1 || msgs[0].ID != "g1" {
		t.Fatalf("only the failed send should be gone: %+v", msgs)
	}
}

func TestOnIncoming_ReplacesOptimisticInPlace(t *testing.T) {
	r, _ := readyRelay()
	first, _ := r.Send("first")
	r.OnIncoming(models.Message{ID: "g1", ChatID: "chat-1", SenderID: "guru-1", Content: "reply"})
	r.OnIncoming(models.Message{ID: "s1", ChatID: "chat-1", SenderID: "student-1", Content: "first", ClientID: first.ClientID})

	msgs := r.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected two entries, got %+v", msgs)
	}
	if msgs[0].ID != "s1" || msgs[0].State != Confirmed {
		t.Fatalf("the echo must replace the optimistic entry at its position: %+v", msgs[0])
	}
	if msgs[1].ID != "g1" {
		t.Fatalf("the reply must stay second: %+v", msgs[1])
	}
}

func TestOnIncoming_IgnoresRedelivery(t *testing.T) {
	r, _ := readyRelay()
	m := models.Message{ID: "g1", ChatID: "chat-1", SenderID: "guru-1", Content: "reply"}
	r.OnIncoming(m)
	r.OnIncoming(m)
	if n := len(r.Messages()); n != 1 {
		t.Fatalf("expected one entry, got %d", n)
	}
}

func TestSeed_KeepsUnconfirmedAndNewer(t *testing.T) {
	r, _ := readyRelay()
	pending, _ := r.Send("pending")
	confirmed, _ := r.Send("confirmed")

	r.Seed([]models.Message{
		{ID: "h1", ChatID: "chat-1", SenderID: "guru-1", Content: "old"},
		{ID: "h2", ChatID: "chat-1", SenderID: "student-1", Content: "confirmed", ClientID: confirmed.ClientID},
	})

	msgs := r.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 entries, got %+v", msgs)
	}
	if msgs[0].ID != "h1" || msgs[1].ID != "h2" || msgs[2].ClientID != pending.ClientID || msgs[2].State != Optimistic {
		t.Fatalf("unexpected order %+v", msgs)
	}
}

func TestOnChange_ReceivesSnapshots(t *testing.T) {
	r, _ := readyRelay()
	var sizes []int
	r.OnChange(func(msgs []ChatMessage) { sizes = append(sizes, len(msgs)) })

	_, _ = r.Send("one")
	r.OnIncoming(models.Message{ID: "g1", ChatID: "chat-1", SenderID: "guru-1", Content: "two"})
	if len(sizes) != 2 || sizes[0] != 1 || sizes[1] != 2 {
		t.Fatalf("unexpected change notifications %v", sizes)
	}
}
