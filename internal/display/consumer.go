// Package display implements the guest display consumer: it loads an
// event's attendance backlog, follows live check-in notifications, and
// reveals queued arrivals at a fixed cadence so bursts read as a steady
// ticker instead of a wall of pop-ins.
package display

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/opencampus-id/guestbook-api/internal/broker"
	"github.com/opencampus-id/guestbook-api/internal/domain"
)

const (
	DefaultRevealInterval  = 15 * time.Second
	DefaultBacklogPageSize = 1000

	reconnectDelay = 2 * time.Second
)

type State int

const (
	StateLoading State = iota
	StateConnectedInitial
	StateLive
	StateReconnecting
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateConnectedInitial:
		return "connected-initial"
	case StateLive:
		return "live"
	case StateReconnecting:
		return "reconnecting"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Bootstrap is the collaborator the consumer uses to build its initial
// snapshot: the event metadata and the existing attendance backlog.
type Bootstrap interface {
	EventBySlug(ctx context.Context, slug string) (domain.Event, error)
	Backlog(ctx context.Context, eventID uint, pageSize int) ([]domain.AttendanceRecord, error)
}

// Stream is a live connection to the broker. Join returns a channel that
// closes when the connection drops; notifications missed while disconnected
// are not recovered.
type Stream interface {
	Join(ctx context.Context, eventID uint) (<-chan broker.Notification, error)
	Leave(eventID uint)
}

// Options tunes a Consumer. Zero values fall back to the defaults.
type Options struct {
	RevealInterval  time.Duration
	BacklogPageSize int
}

// Consumer holds two ordered sets, both newest first: the raw set of every
// notification seen, and the presented set actually rendered. The presented
// set is always a subset of the raw set; the raw set only grows for the
// life of the view.
type Consumer struct {
	bootstrap Bootstrap
	stream    Stream
	scheduler Scheduler
	opts      Options

	mu         sync.Mutex
	state      State
	event      domain.Event
	raw        []broker.Notification
	rawIDs     map[uint]struct{}
	presented  []broker.Notification
	shownIDs   map[uint]struct{}
	cancelTick func()
	closed     bool
	stop       context.CancelFunc
}

func NewConsumer(bootstrap Bootstrap, stream Stream, scheduler Scheduler, opts Options) *Consumer {
	if opts.RevealInterval <= 0 {
		opts.RevealInterval = DefaultRevealInterval
	}
	if opts.BacklogPageSize <= 0 {
		opts.BacklogPageSize = DefaultBacklogPageSize
	}

	return &Consumer{
		bootstrap: bootstrap,
		stream:    stream,
		scheduler: scheduler,
		opts:      opts,
		state:     StateLoading,
		rawIDs:    make(map[uint]struct{}),
		shownIDs:  make(map[uint]struct{}),
	}
}

// Start loads the backlog, reveals it immediately, then joins the event
// room and begins the delayed-reveal cadence. It returns once the initial
// snapshot is on screen; the live feed runs until Close.
func (c *Consumer) Start(ctx context.Context, slug string) error {
	event, err := c.bootstrap.EventBySlug(ctx, slug)
	if err != nil {
		c.setState(StateError)
		return err
	}

	backlog, err := c.bootstrap.Backlog(ctx, event.ID, c.opts.BacklogPageSize)
	if err != nil {
		c.setState(StateError)
		return err
	}

	c.mu.Lock()
	c.event = event
	// Historical records skip the reveal queue: the full snapshot shows
	// at once and becomes the dedup baseline.
	for _, record := range backlog {
		n := recordToNotification(record, event)
		if _, seen := c.rawIDs[n.ID]; seen {
			continue
		}
		c.rawIDs[n.ID] = struct{}{}
		c.raw = append(c.raw, n)
		c.shownIDs[n.ID] = struct{}{}
		c.presented = append(c.presented, n)
	}
	c.state = StateConnectedInitial

	runCtx, cancel := context.WithCancel(context.Background())
	c.stop = cancel
	c.cancelTick = c.scheduler.Every(c.opts.RevealInterval, c.RevealNext)
	c.mu.Unlock()

	go c.run(runCtx, event.ID)

	return nil
}

// Close leaves the room and stops the reveal timer. Already presented
// guests stay presented; Close only stops future updates.
func (c *Consumer) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancelTick := c.cancelTick
	stop := c.stop
	eventID := c.event.ID
	c.mu.Unlock()

	if cancelTick != nil {
		cancelTick()
	}
	if stop != nil {
		stop()
	}
	c.stream.Leave(eventID)
}

// OnNotification merges a pushed check-in into the raw set. A record whose
// identifier is already present anywhere is discarded.
func (c *Consumer) OnNotification(n broker.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, seen := c.rawIDs[n.ID]; seen {
		return
	}
	c.rawIDs[n.ID] = struct{}{}
	c.raw = append([]broker.Notification{n}, c.raw...)
}

// RevealNext promotes at most the single newest unrevealed record into the
// presented set. Called once per reveal interval regardless of how many
// records are queued.
func (c *Consumer) RevealNext() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.raw {
		if _, shown := c.shownIDs[n.ID]; shown {
			continue
		}
		c.shownIDs[n.ID] = struct{}{}
		c.presented = append([]broker.Notification{n}, c.presented...)
		return
	}
}

// Presented returns a copy of the rendered guest list, newest first.
func (c *Consumer) Presented() []broker.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]broker.Notification, len(c.presented))
	copy(out, c.presented)

	return out
}

// Pending reports how many received records are still waiting for a tick.
func (c *Consumer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.raw) - len(c.presented)
}

func (c *Consumer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *Consumer) Event() domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.event
}

// Connected reports whether the live feed is up; the UI shows this as the
// online/offline indicator without ever blanking the presented list.
func (c *Consumer) Connected() bool {
	return c.State() == StateLive
}

func (c *Consumer) run(ctx context.Context, eventID uint) {
	for {
		ch, err := c.stream.Join(ctx, eventID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.setState(StateReconnecting)
			zap.L().Warn("display feed join failed, retrying",
				zap.Uint("event_id", eventID),
				zap.Error(err),
			)
			select {
			case <-time.After(reconnectDelay):
				continue
			case <-ctx.Done():
				return
			}
		}

		c.setState(StateLive)

		for {
			select {
			case n, ok := <-ch:
				if !ok {
					// Dropped. Anything broadcast before the next
					// successful join is lost; the backlog is not
					// refetched.
					c.setState(StateReconnecting)
					ch = nil
				} else {
					c.OnNotification(n)
				}
			case <-ctx.Done():
				return
			}
			if ch == nil {
				break
			}
		}
	}
}

func (c *Consumer) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func recordToNotification(record domain.AttendanceRecord, event domain.Event) broker.Notification {
	return broker.Notification{
		ID:          record.ID,
		GuestName:   record.GuestName,
		Institution: record.Institution,
		Position:    record.Position,
		Category:    record.Category,
		ArrivalTime: record.ArrivalTime,
		EventName:   event.Name,
		EventSlug:   event.Slug,
	}
}
