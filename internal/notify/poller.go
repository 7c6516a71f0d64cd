// Package notify polls the backend for unread notifications on a fixed
// interval, displays them in order, and acknowledges each one before moving
// to the next. Delivery is at-least-once: a failed acknowledgment only logs,
// and the notification comes back on a later cycle.
package notify

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"coinclass/agent/internal/balance"
	"coinclass/agent/internal/metrics"
)

type Notification struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	IsRead  bool   `json:"is_read"`
}

// Displayer shows one notification to the user. Implementations must not
// block indefinitely; the poll cycle is serialized behind them.
type Displayer interface {
	Display(n Notification)
}

// Backend is the slice of the API client the poller uses.
type Backend interface {
	Get(ctx context.Context, path string, out interface{}) error
	Post(ctx context.Context, path string, body, out interface{}) error
}

const defaultInterval = 2 * time.Second

type Poller struct {
	client   Backend
	display  Displayer
	seen     SeenStore
	balances *balance.Cache
	interval time.Duration
	inFlight atomic.Bool

	// Gate, when set, must return true for a cycle to run. The agent uses it
	// to poll only while a student session is live.
	Gate func() bool
}

// New builds a poller. seen may be nil (an in-memory store is used) and
// balances may be nil (the opportunistic balance refresh is skipped).
func New(client Backend, display Displayer, seen SeenStore, balances *balance.Cache, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	if seen == nil {
		seen = NewMemorySeen()
	}
	return &Poller{
		client:   client,
		display:  display,
		seen:     seen,
		balances: balances,
		interval: interval,
	}
}

// Start runs the poll loop until ctx is cancelled. One immediate cycle fires
// before the ticker takes over, matching the dashboard's load-then-poll
// behavior.
func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	go func() {
		defer ticker.Stop()
		p.Poll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Poll(ctx)
			}
		}
	}()
}

// Poll runs one cycle. If a cycle is already in flight the call is dropped
// entirely, not queued.
func (p *Poller) Poll(ctx context.Context) {
	if p.Gate != nil && !p.Gate() {
		return
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		metrics.PollTicksDropped.Inc()
		return
	}
	defer p.inFlight.Store(false)

	var notifications []Notification
	if err := p.client.Get(ctx, "/student/notifications", &notifications); err != nil {
		log.Printf("notification poll error: %v", err)
		metrics.PollFetchFailures.Inc()
		return
	}

	for _, n := range notifications {
		if n.IsRead || p.seen.Seen(ctx, n.ID) {
			continue
		}
		p.display.Display(n)
		metrics.NotificationsDisplayed.Inc()

		path := fmt.Sprintf("/student/notifications/%d/read", n.ID)
		if err := p.client.Post(ctx, path, struct{}{}, nil); err != nil {
			// Not marked seen: the notification may be re-displayed on the
			// next cycle.
			log.Printf("mark notification %d read error: %v", n.ID, err)
			metrics.MarkReadFailures.Inc()
			continue
		}
		p.seen.Mark(ctx, n.ID)
	}
	metrics.PollCycles.Inc()

	p.refreshBalance(ctx)
}

// refreshBalance stores the latest balance after a successful cycle. Failures
// are ignored; the cache simply keeps its previous value.
func (p *Poller) refreshBalance(ctx context.Context) {
	if p.balances == nil {
		return
	}
	var resp struct {
		Balance float64 `json:"balance"`
	}
	if err := p.client.Get(ctx, "/student/dashboard", &resp); err != nil {
		return
	}
	p.balances.Set(resp.Balance)
}
