package client

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the core hands back to the UI.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidWeekday is a data error: a weekday outside Sunday..Saturday.
	KindInvalidWeekday
	// KindIncompleteSelection means day or time is missing; no network call was made.
	KindIncompleteSelection
	// KindOrderCreationFailed means the payment order could not be minted.
	KindOrderCreationFailed
	// KindNetwork is any other unreachable backend or non-success status.
	KindNetwork
	// KindAlreadyBooked means the backend rejected the slot as taken.
	KindAlreadyBooked
	// KindPaymentCancelled means the payer dismissed the handshake.
	KindPaymentCancelled
	// KindPaymentFailed means the gateway reported a terminal failure.
	KindPaymentFailed
	// KindChatOpenFailed means the conversation could not be established.
	KindChatOpenFailed
	// KindEmptyMessage rejects blank outgoing messages.
	KindEmptyMessage
	// KindNotReady means the chat session is not open.
	KindNotReady
	// KindBusy means an earlier booking attempt has not finished yet.
	KindBusy
)

func (k Kind) String() string {
	switch k {
	case KindInvalidWeekday:
		return "InvalidWeekday"
	case KindIncompleteSelection:
		return "IncompleteSelection"
	case KindOrderCreationFailed:
		return "OrderCreationFailed"
	case KindNetwork:
		return "Network"
	case KindAlreadyBooked:
		return "AlreadyBooked"
	case KindPaymentCancelled:
		return "PaymentCancelled"
	case KindPaymentFailed:
		return "PaymentFailed"
	case KindChatOpenFailed:
		return "ChatOpenFailed"
	case KindEmptyMessage:
		return "EmptyMessage"
	case KindNotReady:
		return "NotReady"
	case KindBusy:
		return "Busy"
	default:
		return "Unknown"
	}
}

// Error is the only error type the orchestrators return.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrAlreadyBooked) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Sentinels for errors.Is.
var (
	ErrInvalidWeekday      = &Error{Kind: KindInvalidWeekday}
	ErrIncompleteSelection = &Error{Kind: KindIncompleteSelection}
	ErrOrderCreationFailed = &Error{Kind: KindOrderCreationFailed}
	ErrNetwork             = &Error{Kind: KindNetwork}
	ErrAlreadyBooked       = &Error{Kind: KindAlreadyBooked}
	ErrPaymentCancelled    = &Error{Kind: KindPaymentCancelled}
	ErrPaymentFailed       = &Error{Kind: KindPaymentFailed}
	ErrChatOpenFailed      = &Error{Kind: KindChatOpenFailed}
	ErrEmptyMessage        = &Error{Kind: KindEmptyMessage}
	ErrNotReady            = &Error{Kind: KindNotReady}
	ErrBusy                = &Error{Kind: KindBusy}
)

// KindOf returns the Kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
