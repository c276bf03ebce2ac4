package core

// The renderer used to learn about resizes through a callback that
// flipped a flag read by the frame loop. Events now travel over a
// buffered channel instead: platform callbacks and watcher goroutines
// publish, the main loop drains at the top of every frame, and nothing
// outside the loop touches renderer state.

type EventType uint8

const (
	// Shuts the application down on the next frame.
	EventQuit EventType = iota
	// Framebuffer size changed from the OS. Width/Height carry pixels.
	EventResized
	// Keyboard key pressed. Key carries the code.
	EventKeyPressed
	// Keyboard key released. Key carries the code.
	EventKeyReleased
	// A watched asset file was written. Path carries the file.
	EventAssetModified
	// A debug frame capture was requested.
	EventCaptureRequested
)

// KeyCode identifies keyboard keys independently of the windowing
// library. Values follow the common virtual-key layout.
type KeyCode uint16

const (
	KEY_ESCAPE   KeyCode = 0x1B
	KEY_SPACE    KeyCode = 0x20
	KEY_LEFT     KeyCode = 0x25
	KEY_UP       KeyCode = 0x26
	KEY_RIGHT    KeyCode = 0x27
	KEY_DOWN     KeyCode = 0x28
	KEY_SNAPSHOT KeyCode = 0x2C
	KEY_A        KeyCode = 0x41
	KEY_D        KeyCode = 0x44
	KEY_E        KeyCode = 0x45
	KEY_Q        KeyCode = 0x51
	KEY_S        KeyCode = 0x53
	KEY_W        KeyCode = 0x57
)

type Event struct {
	Type   EventType
	Width  uint32
	Height uint32
	Key    KeyCode
	Path   string
}

type EventBus struct {
	ch chan Event
}

func NewEventBus(capacity int) *EventBus {
	return &EventBus{ch: make(chan Event, capacity)}
}

// Publish enqueues an event without blocking. Publishers share the main
// thread with the consumer, so a full queue drops the event rather than
// deadlocking the loop.
func (b *EventBus) Publish(e Event) {
	select {
	case b.ch <- e:
	default:
		LogWarn("event queue full, dropping event type %d", e.Type)
	}
}

// Drain hands every pending event to fn and returns without blocking
// once the queue is empty.
func (b *EventBus) Drain(fn func(Event)) {
	for {
		select {
		case e := <-b.ch:
			fn(e)
		default:
			return
		}
	}
}

// Pending reports the number of queued events.
func (b *EventBus) Pending() int {
	return len(b.ch)
}
