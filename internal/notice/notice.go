// Package notice holds the single transient error message shown to the user.
package notice

import (
	"sync"
	"time"

	"taskmgr/internal/service"
)

// DefaultTTL is how long a notice stays visible.
const DefaultTTL = 5 * time.Second

// Board holds at most one message. A new post replaces the previous one and
// restarts its lifetime.
type Board struct {
	mu       sync.Mutex
	msg      string
	postedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

// Option configures a Board.
type Option func(*Board)

// WithClock sets the clock used to expire notices.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(b *Board) { b.ttl = ttl }
}

// NewBoard creates an empty Board.
func NewBoard(opts ...Option) *Board {
	b := &Board{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Post shows msg for the board's TTL.
func (b *Board) Post(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msg = msg
	b.postedAt = b.now()
}

// PostError posts the user-facing text for err and returns it.
// fallback is used when the service supplied no message.
func (b *Board) PostError(err error, fallback string) string {
	msg := service.Message(err, fallback)
	b.Post(msg)
	return msg
}

// Current returns the visible message, or "" once it has expired.
func (b *Board) Current() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.msg == "" {
		return ""
	}
	if b.now().Sub(b.postedAt) >= b.ttl {
		b.msg = ""
		return ""
	}
	return b.msg
}

// Dismiss clears the message immediately.
func (b *Board) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msg = ""
}
