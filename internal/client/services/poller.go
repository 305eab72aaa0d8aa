package services

import (
	"context"
	"sync"
	"time"

	"github.com/itd-social/itd-client/internal/client/api"
	"github.com/itd-social/itd-client/internal/logging"
)

// DefaultPollInterval is how often the unread badge is refreshed.
const DefaultPollInterval = 30 * time.Second

// SessionChecker reports whether a session exists. The poller checks it on
// every tick rather than once, so it follows login and logout without being
// restarted.
type SessionChecker interface {
	IsLoggedIn(ctx context.Context) bool
}

// NotificationPoller keeps the unread-notification badge current. It polls
// the count endpoint on a fixed interval, skips the request entirely while
// logged out, and swallows transient failures, keeping the last good count.
type NotificationPoller struct {
	api      api.NotificationAPI
	session  SessionChecker
	log      logging.Logger
	interval time.Duration

	mu      sync.Mutex
	count   int
	updates chan int
}

func NewNotificationPoller(notifAPI api.NotificationAPI, session SessionChecker, log logging.Logger, interval time.Duration) *NotificationPoller {
	if log == nil {
		log = logging.NewDiscard()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &NotificationPoller{
		api:      notifAPI,
		session:  session,
		log:      log,
		interval: interval,
		updates:  make(chan int, 1),
	}
}

// Run polls until ctx is cancelled. It ticks once immediately so a freshly
// started client shows a badge without waiting a full interval.
func (p *NotificationPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *NotificationPoller) tick(ctx context.Context) {
	if !p.session.IsLoggedIn(ctx) {
		// no session, no request; the badge resets to zero
		p.publish(0)
		return
	}

	n, err := p.api.NotificationCount(ctx)
	if err != nil {
		p.log.Warn(ctx, "notification poll failed", "error", err)
		return
	}
	p.publish(n)
}

func (p *NotificationPoller) publish(n int) {
	p.mu.Lock()
	changed := p.count != n
	p.count = n
	p.mu.Unlock()
	if !changed {
		return
	}
	// keep only the latest value; a slow reader never blocks the poll loop
	select {
	case p.updates <- n:
	default:
		select {
		case <-p.updates:
		default:
		}
		select {
		case p.updates <- n:
		default:
		}
	}
}

// Count returns the last published unread count.
func (p *NotificationPoller) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Updates delivers count changes; only the most recent value is retained.
func (p *NotificationPoller) Updates() <-chan int {
	return p.updates
}
