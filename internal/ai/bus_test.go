package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus()

	var got []Event
	unsub := bus.Subscribe(EventBrainStarted, func(ev Event) {
		got = append(got, ev)
	})

	assert.Equal(t, 1, bus.Publish(EventBrainStarted, nil, "x", 3))
	assert.Equal(t, 0, bus.Publish(EventBrainStopped, nil))

	if assert.Len(t, got, 1) {
		assert.Equal(t, EventBrainStarted, got[0].Tag)
		assert.Equal(t, "x", got[0].Arg(0))
		assert.Equal(t, 3, got[0].Arg(1))
		assert.Nil(t, got[0].Arg(2))
	}

	unsub()
	unsub()
	assert.Equal(t, 0, bus.Publish(EventBrainStarted, nil))
}

func TestBus_Scoped(t *testing.T) {
	bus := NewBus()

	var toA, toB, global int
	bus.SubscribeScoped(EventAttacked, 1, func(Event) { toA++ })
	bus.SubscribeScoped(EventAttacked, 2, func(Event) { toB++ })
	bus.Subscribe(EventAttacked, func(Event) { global++ })

	assert.Equal(t, 2, bus.PublishTo(1, EventAttacked, nil))
	assert.Equal(t, 1, bus.Publish(EventAttacked, nil))

	assert.Equal(t, 1, toA)
	assert.Equal(t, 0, toB)
	assert.Equal(t, 2, global)
}

func TestBus_HandlerPanicRecovered(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Subscribe(EventBrainThink, func(Event) { panic("boom") })
	bus.Subscribe(EventBrainThink, func(Event) { calls++ })

	assert.NotPanics(t, func() {
		assert.Equal(t, 2, bus.Publish(EventBrainThink, nil))
	})
	assert.Equal(t, 1, calls)
}

func TestBus_SubscribeFromHandler(t *testing.T) {
	bus := NewBus()

	bus.Subscribe(EventBrainStarted, func(Event) {
		// Handlers run outside the bus lock.
		bus.Subscribe(EventBrainStopped, func(Event) {})
	})

	assert.Equal(t, 1, bus.Publish(EventBrainStarted, nil))
	assert.Equal(t, 1, bus.Publish(EventBrainStopped, nil))
}

func TestEventTag_String(t *testing.T) {
	assert.Equal(t, "ATTACKED", EventAttacked.String())
	assert.Equal(t, "OWNER_COMMAND", EventOwnerCommand.String())
	assert.Equal(t, "UNKNOWN", EventTag(0).String())
}
