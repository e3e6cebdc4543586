package chat

import "errors"

var (
	// ErrSelfChat rejects a pair made of the same participant twice.
	ErrSelfChat = errors.New("a chat needs two distinct participants")
	// ErrNotParticipant means the caller is not one of the chat's two members.
	ErrNotParticipant = errors.New("not a participant of this chat")
	// ErrChatNotFound means the chat id is unknown.
	ErrChatNotFound = errors.New("chat not found")
	// ErrEmptyMessage rejects blank content.
	ErrEmptyMessage = errors.New("message is empty")
)
