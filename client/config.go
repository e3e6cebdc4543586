package client

import (
	"strings"
	"time"
)

// Identity is the caller as the backend knows it. It is fixed for the
// lifetime of the component that receives it.
type Identity struct {
	UserID string
	Token  string
}

// Config points the client at a backend.
type Config struct {
	// BaseURL of the REST API, e.g. "https://api.example.com".
	BaseURL string
	// WSURL of the websocket endpoint; derived from BaseURL when empty.
	WSURL       string
	HTTPTimeout time.Duration
}

func (c Config) withDefaults() Config {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.WSURL == "" {
		ws := c.BaseURL
		switch {
		case strings.HasPrefix(ws, "https://"):
			ws = "wss://" + strings.TrimPrefix(ws, "https://")
		case strings.HasPrefix(ws, "http://"):
			ws = "ws://" + strings.TrimPrefix(ws, "http://")
		}
		c.WSURL = ws + "/ws"
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 15 * time.Second
	}
	return c
}
