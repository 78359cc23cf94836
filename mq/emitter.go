package mq

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Channel is the Redis Pub/Sub channel carrying domain events.
const Channel = "domain-events"

// Event names.
const (
	ReservationCreated     = "reservation-created"
	ReservationCancelled   = "reservation-cancelled"
	ReservationDeleted     = "reservation-deleted"
	ReviewAdded            = "review-added"
	ReviewDeleted          = "review-deleted"
	SubscriptionUpgraded   = "subscription-upgraded"
	SubscriptionDowngraded = "subscription-downgraded"
	SubscriptionsExpired   = "subscriptions-expired"
	ItemCreated            = "item-created"
	ItemUpdated            = "item-updated"
	ItemDeleted            = "item-deleted"
)

// Event describes something that happened to an entity.
type Event struct {
	Name       string    `json:"name"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	ItemID     string    `json:"item_id,omitempty"`
	ItemType   string    `json:"item_type,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	At         time.Time `json:"at"`
}

// Emitter publishes events. Emission is fire-and-forget: failures are
// logged, never returned to the caller.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// Handler reacts to a dispatched event.
type Handler func(ctx context.Context, ev Event) error

// Dispatcher fans events out to every subscribed handler.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) Subscribe(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

// Dispatch runs every handler in subscription order.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	d.mu.RLock()
	handlers := append([]Handler(nil), d.handlers...)
	d.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, ev); err != nil {
			log.WithError(err).WithField("event", ev.Name).Warn("event handler failed")
		}
	}
}

// LocalEmitter dispatches in-process on a background goroutine. It is used
// when no Redis is configured.
type LocalEmitter struct {
	d  *Dispatcher
	wg sync.WaitGroup
}

func NewLocalEmitter(d *Dispatcher) *LocalEmitter {
	return &LocalEmitter{d: d}
}

func (e *LocalEmitter) Emit(_ context.Context, ev Event) {
	stamp(&ev)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		e.d.Dispatch(ctx, ev)
	}()
}

// Wait blocks until every emitted event has been dispatched.
func (e *LocalEmitter) Wait() {
	e.wg.Wait()
}

// RedisEmitter publishes events to Channel.
type RedisEmitter struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisEmitter(client redis.UniversalClient) *RedisEmitter {
	return &RedisEmitter{client: client, channel: Channel}
}

func (e *RedisEmitter) Emit(ctx context.Context, ev Event) {
	stamp(&ev)
	data, err := json.Marshal(ev)
	if err != nil {
		log.WithError(err).Error("failed to marshal event")
		return
	}
	// the request context may be cancelled as soon as the handler returns
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := e.client.Publish(pubCtx, e.channel, data).Err(); err != nil {
		log.WithError(err).WithField("event", ev.Name).Error("failed to publish event")
		return
	}
	log.WithFields(log.Fields{"event": ev.Name, "entity": ev.EntityID}).Debug("event published")
}

// RunWorker consumes Channel and dispatches every event until ctx ends.
func RunWorker(ctx context.Context, client redis.UniversalClient, d *Dispatcher) {
	sub := client.Subscribe(ctx, Channel)
	defer sub.Close()

	log.WithField("channel", Channel).Info("event worker listening")
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.WithError(err).Warn("failed to parse event")
				continue
			}
			d.Dispatch(ctx, ev)
		}
	}
}

// Nop drops every event.
type Nop struct{}

func (Nop) Emit(context.Context, Event) {}

func stamp(ev *Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
}
