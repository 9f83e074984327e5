package ai

import (
	"log/slog"
	"sync"
)

// EventTag identifies a notification kind.
type EventTag int

const (
	// EventAttacked - Args: attacker Creature, damage int32.
	EventAttacked EventTag = iota + 1
	// EventPlayerEnteredVicinity - Sender is the player.
	EventPlayerEnteredVicinity
	// EventFactionCall - Sender asks for help, Args: attacker Creature.
	EventFactionCall
	// EventOwnerCommand - Args: PetCommand, model.Location (for CommandGoto).
	EventOwnerCommand
	EventBrainStarted
	EventBrainStopped
	EventBrainThink
)

// String returns human-readable tag name
func (t EventTag) String() string {
	switch t {
	case EventAttacked:
		return "ATTACKED"
	case EventPlayerEnteredVicinity:
		return "PLAYER_ENTERED_VICINITY"
	case EventFactionCall:
		return "FACTION_CALL"
	case EventOwnerCommand:
		return "OWNER_COMMAND"
	case EventBrainStarted:
		return "BRAIN_STARTED"
	case EventBrainStopped:
		return "BRAIN_STOPPED"
	case EventBrainThink:
		return "BRAIN_THINK"
	default:
		return "UNKNOWN"
	}
}

// Event is a notification delivered through the Bus.
// Scope is the object ID of the addressee, 0 for broadcast.
type Event struct {
	Tag    EventTag
	Scope  uint32
	Sender Creature
	Args   []any
}

// Arg returns Args[i] or nil.
func (e Event) Arg(i int) any {
	if i < 0 || i >= len(e.Args) {
		return nil
	}
	return e.Args[i]
}

// Handler receives events on the publisher's goroutine.
type Handler func(Event)

type subKey struct {
	tag   EventTag
	scope uint32
}

// Bus is a synchronous publish/subscribe hub. Handlers run on the caller's
// goroutine outside the bus lock; a panicking handler is logged and skipped.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[subKey]map[uint64]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[subKey]map[uint64]Handler)}
}

// Subscribe registers h for every event with tag. Returns unsubscribe func.
func (b *Bus) Subscribe(tag EventTag, h Handler) func() {
	return b.SubscribeScoped(tag, 0, h)
}

// SubscribeScoped registers h for events with tag addressed to scope.
func (b *Bus) SubscribeScoped(tag EventTag, scope uint32, h Handler) func() {
	key := subKey{tag, scope}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.subs[key] == nil {
		b.subs[key] = make(map[uint64]Handler)
	}
	b.subs[key][id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[key], id)
			if len(b.subs[key]) == 0 {
				delete(b.subs, key)
			}
		})
	}
}

// Publish broadcasts to subscribers of tag. Returns number of handlers called.
func (b *Bus) Publish(tag EventTag, sender Creature, args ...any) int {
	return b.dispatch(Event{Tag: tag, Sender: sender, Args: args})
}

// PublishTo delivers to subscribers scoped to the addressee plus broadcast subscribers.
func (b *Bus) PublishTo(scope uint32, tag EventTag, sender Creature, args ...any) int {
	return b.dispatch(Event{Tag: tag, Scope: scope, Sender: sender, Args: args})
}

func (b *Bus) dispatch(ev Event) int {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[subKey{ev.Tag, 0}])+len(b.subs[subKey{ev.Tag, ev.Scope}]))
	for _, h := range b.subs[subKey{ev.Tag, ev.Scope}] {
		handlers = append(handlers, h)
	}
	if ev.Scope != 0 {
		for _, h := range b.subs[subKey{ev.Tag, 0}] {
			handlers = append(handlers, h)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.call(h, ev)
	}
	return len(handlers)
}

func (b *Bus) call(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "tag", ev.Tag, "scope", ev.Scope, "panic", r)
		}
	}()
	h(ev)
}
