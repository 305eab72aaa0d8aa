// Package store holds the client-side copies of posts and users and applies
// optimistic mutations to them.
//
// A toggle (like, repost, follow) flips the local state and adjusts the
// counter immediately, then fires the network call in the background. The
// server call carries no payload the UI waits for, and a failure is logged
// and swallowed rather than rolled back; the next list refresh reconciles.
// Deletion is the exception: it only mutates local state after the server
// confirmed.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/itd-social/itd-client/internal/logging"
)

const sendTimeout = 15 * time.Second

// Engine serializes the fire-and-forget sends behind optimistic toggles.
// Each resource key carries a revision; when toggles race, a completion that
// arrives for an older revision is logged as superseded and otherwise
// ignored, so only the newest toggle's failure is ever reported.
type Engine struct {
	log logging.Logger

	mu  sync.Mutex
	rev map[string]uint64
	wg  sync.WaitGroup
}

func NewEngine(log logging.Logger) *Engine {
	if log == nil {
		log = logging.NewDiscard()
	}
	return &Engine{log: log, rev: make(map[string]uint64)}
}

// Dispatch runs send in the background. The send gets its own context so it
// survives the caller navigating away; it is bounded by sendTimeout.
func (e *Engine) Dispatch(key string, send func(ctx context.Context) error) {
	e.mu.Lock()
	e.rev[key]++
	rev := e.rev[key]
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		err := send(ctx)

		e.mu.Lock()
		stale := e.rev[key] != rev
		e.mu.Unlock()

		switch {
		case stale:
			e.log.Debug(ctx, "mutation superseded", "key", key)
		case err != nil:
			e.log.Warn(ctx, "mutation send failed", "key", key, "error", err)
		}
	}()
}

// Wait blocks until every dispatched send has completed. Tests use it to
// make the background work deterministic.
func (e *Engine) Wait() {
	e.wg.Wait()
}
