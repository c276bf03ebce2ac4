package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusDrainOrder(t *testing.T) {
	bus := NewEventBus(8)
	bus.Publish(Event{Type: EventResized, Width: 800, Height: 600})
	bus.Publish(Event{Type: EventKeyPressed, Key: KEY_W})
	bus.Publish(Event{Type: EventQuit})
	assert.Equal(t, 3, bus.Pending())

	var got []EventType
	bus.Drain(func(e Event) {
		got = append(got, e.Type)
	})

	assert.Equal(t, []EventType{EventResized, EventKeyPressed, EventQuit}, got)
	assert.Equal(t, 0, bus.Pending())
}

func TestEventBusDrainEmptyDoesNotBlock(t *testing.T) {
	bus := NewEventBus(1)
	calls := 0
	bus.Drain(func(Event) { calls++ })
	assert.Equal(t, 0, calls)
}

func TestEventBusPublishDropsWhenFull(t *testing.T) {
	bus := NewEventBus(2)
	bus.Publish(Event{Type: EventResized})
	bus.Publish(Event{Type: EventResized})
	// Queue full: the publish must return instead of blocking the caller.
	bus.Publish(Event{Type: EventQuit})
	assert.Equal(t, 2, bus.Pending())

	var got []EventType
	bus.Drain(func(e Event) { got = append(got, e.Type) })
	assert.Equal(t, []EventType{EventResized, EventResized}, got)
}
