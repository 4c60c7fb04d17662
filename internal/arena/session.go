package arena

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// ErrSessionStopped is returned by Submit once the session's Run loop has exited.
var ErrSessionStopped = errors.New("session stopped")

// inboxSize bounds the events queued between two ticks.
const inboxSize = 64

// Publisher delivers tick snapshots to the observer.
type Publisher interface {
	Publish(Snapshot) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(Snapshot) error

// Publish calls f(s).
func (f PublisherFunc) Publish(s Snapshot) error { return f(s) }

// Session is the single execution context of an Arena. Inbound events are queued
// with Submit and applied by Run between ticks, so the Arena is never touched
// from more than one goroutine.
type Session struct {
	arena  *Arena
	pub    Publisher
	inbox  chan Event
	done   chan struct{}
	logger *log.Logger
}

// NewSession binds a to pub. The session does not close the arena.
func NewSession(a *Arena, pub Publisher, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		arena:  a,
		pub:    pub,
		inbox:  make(chan Event, inboxSize),
		done:   make(chan struct{}),
		logger: logger.With("arena", a.ID()),
	}
}

// Arena returns the arena driven by the session.
func (s *Session) Arena() *Arena { return s.arena }

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} { return s.done }

// Submit queues e for the next gap between ticks.
func (s *Session) Submit(ctx context.Context, e Event) error {
	select {
	case <-s.done:
		return ErrSessionStopped
	default:
	}
	select {
	case s.inbox <- e:
		return nil
	case <-s.done:
		return ErrSessionStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run ticks the arena at its refresh rate and publishes a snapshot after every tick.
// It blocks until ctx is cancelled, returning nil, or until publishing fails, returning
// that error. Must be called at most once.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)

	ticker := time.NewTicker(s.arena.RefreshRate())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-s.inbox:
			s.arena.Apply(e)
		case <-ticker.C:
			s.arena.Tick()
			if err := s.pub.Publish(s.arena.Snapshot()); err != nil {
				s.logger.Debug("publish failed, stopping session", "err", err)
				return fmt.Errorf("publish snapshot: %w", err)
			}
		}
	}
}
