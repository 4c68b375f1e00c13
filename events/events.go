// Package events is a pub/sub bus for typed events, shaped like the
// teacher's event bus. No other package in this module publishes to or
// subscribes on it (conditions, active effects and resource pools do
// not use it). Routing is
// keyed on the Ref's canonical string rather than a live pointer so two
// separately constructed refs to the same mechanic still match.
package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/xldeveloper/theinterneti-tta-solo/core"
)

// Context carries mutable, per-publish values alongside an Event, the
// way the teacher's EventContext lets handlers read/write shared state
// (e.g. the running damage total) without a bespoke struct per event.
type Context struct {
	mu     sync.Mutex
	values map[string]any
}

// NewContext creates an empty event context.
func NewContext() *Context {
	return &Context{values: make(map[string]any)}
}

// Set stores a value under key.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Get retrieves a value by key.
func (c *Context) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// GetInt retrieves an int value by key.
func (c *Context) GetInt(key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	i, ok := v.(int)
	return i, ok
}

// Event is anything that can flow through the bus: it names its own
// routing Ref and carries a mutable Context.
type Event interface {
	EventRef() *core.Ref
	Context() *Context
}

// GameEvent is the concrete Event used by engine packages that don't
// need a bespoke event type.
type GameEvent struct {
	Ref     *core.Ref
	Source  core.Entity
	Target  core.Entity
	ctx     *Context
}

// NewGameEvent constructs a GameEvent with a fresh Context.
func NewGameEvent(ref *core.Ref, source, target core.Entity) *GameEvent {
	return &GameEvent{Ref: ref, Source: source, Target: target, ctx: NewContext()}
}

// EventRef implements Event.
func (e *GameEvent) EventRef() *core.Ref { return e.Ref }

// Context implements Event.
func (e *GameEvent) Context() *Context {
	if e.ctx == nil {
		e.ctx = NewContext()
	}
	return e.ctx
}

// HandlerFunc handles a published Event.
type HandlerFunc func(ctx context.Context, event Event) error

// Bus is a synchronous, ref-routed pub/sub bus. Suspension only happens
// inside handlers that themselves perform I/O (spec.md §5); the bus
// itself never blocks beyond calling handlers in registration order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	nextID   int64
	depth    int32
	maxDepth int32
}

type subscription struct {
	id      string
	handler HandlerFunc
}

// DefaultMaxDepth bounds handler-triggered republish cascades.
const DefaultMaxDepth = 10

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]subscription), maxDepth: DefaultMaxDepth}
}

// Subscribe registers handler for events whose Ref.String() matches ref.
func (b *Bus) Subscribe(ref *core.Ref, handler HandlerFunc) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := fmt.Sprintf("sub-%d", b.nextID)
	key := ref.String()
	b.handlers[key] = append(b.handlers[key], subscription{id: id, handler: handler})
	return id
}

// Unsubscribe removes a subscription by id.
func (b *Bus) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, subs := range b.handlers {
		for i, s := range subs {
			if s.id == id {
				b.handlers[key] = append(subs[:i], subs[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("events: subscription %s not found", id)
}

// Publish delivers event to every subscriber of its Ref, in registration
// order, returning the first handler error encountered.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	depth := atomic.AddInt32(&b.depth, 1)
	defer atomic.AddInt32(&b.depth, -1)
	if depth > b.maxDepth {
		return fmt.Errorf("events: cascade depth %d exceeds max %d for %s", depth, b.maxDepth, event.EventRef())
	}

	b.mu.RLock()
	subs := append([]subscription(nil), b.handlers[event.EventRef().String()]...)
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.handler(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every subscription; useful between tests.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[string][]subscription)
}
