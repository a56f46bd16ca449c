// Package events provides the in-process domain event bus. Producers (alert
// creation, claim transitions, chat delivery, follows) publish typed events;
// subscribers run on a background dispatcher goroutine with its own error
// boundary, so fan-out work never executes inside, nor fails, the HTTP
// request that triggered it.
package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pawtrail/pawtrail/internal/geo"
)

// Event is a typed domain event.
type Event interface {
	// Kind returns the event name used for logging and routing.
	Kind() string
}

// AlertCreated fires when a lost or found pet report is created.
type AlertCreated struct {
	AlertID    string
	AlertType  string // "lost" or "found"
	Species    string
	PetName    string
	ReporterID string
	PhotoURL   *string
	Origin     *geo.Coord // nil when the report carries no coordinates
	RadiusKm   float64
}

func (AlertCreated) Kind() string { return "alert.created" }

// ClaimStatusChanged fires when a claim transitions state.
type ClaimStatusChanged struct {
	ClaimID    string
	AlertID    string
	Status     string // "pending", "accepted", "rejected"
	ClaimantID string
	OwnerID    string // the alert reporter deciding the claim
	PetName    string
}

func (ClaimStatusChanged) Kind() string { return "claim.status_changed" }

// ChatMessageSent fires when the realtime chat layer delivers a message.
// The bus only drives push acceleration; message persistence and realtime
// delivery belong to the chat collaborator.
type ChatMessageSent struct {
	RoomID      string
	SenderID    string
	SenderName  string
	RecipientID string
	Preview     string
}

func (ChatMessageSent) Kind() string { return "chat.message_sent" }

// UserFollowed fires when one user follows another.
type UserFollowed struct {
	FollowerID   string
	FollowerName string
	FolloweeID   string
}

func (UserFollowed) Kind() string { return "user.followed" }

// Handler consumes events. Handlers run on the dispatcher goroutine; they
// must not block indefinitely.
type Handler func(ctx context.Context, event Event)

// Bus is a buffered in-process event bus with a single dispatcher.
type Bus struct {
	logger   zerolog.Logger
	queue    chan Event
	handlers []Handler

	mu      sync.RWMutex
	started bool
	done    chan struct{}
}

// NewBus creates a new event bus with the given queue capacity.
func NewBus(logger zerolog.Logger, capacity int) *Bus {
	if capacity <= 0 {
		capacity = 256
	}
	return &Bus{
		logger: logger,
		queue:  make(chan Event, capacity),
		done:   make(chan struct{}),
	}
}

// Subscribe registers a handler. Must be called before Start.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish enqueues an event for background dispatch. It never blocks the
// producer: when the queue is full the event is dropped and logged, which
// matches the best-effort delivery contract.
func (b *Bus) Publish(event Event) {
	select {
	case b.queue <- event:
	default:
		b.logger.Warn().
			Str("event", event.Kind()).
			Msg("event queue full, dropping event")
	}
}

// Start runs the dispatcher until ctx is cancelled. Each handler call is
// wrapped in a panic boundary: a crash in fan-out code is logged and never
// takes the dispatcher down.
func (b *Bus) Start(ctx context.Context) {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	go func() {
		defer close(b.done)
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-b.queue:
				b.dispatch(ctx, event)
			}
		}
	}()
}

// Wait blocks until the dispatcher has stopped.
func (b *Bus) Wait() {
	<-b.done
}

func (b *Bus) dispatch(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error().
						Str("event", event.Kind()).
						Interface("panic", r).
						Msg("event handler panicked")
				}
			}()
			h(ctx, event)
		}()
	}
}
