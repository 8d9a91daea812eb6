package lifecycle

import "sync"

// Event is an app lifecycle transition reported by the host application.
type Event string

const (
	// EnteredBackground fires when the host app loses foreground; pending
	// local changes should be flushed upward while the process may still run.
	EnteredBackground Event = "entered_background"

	// BecameActive fires when the host app returns to the foreground.
	BecameActive Event = "became_active"
)

// Notifier fans lifecycle events out to subscribers. The host app reports
// transitions through the control API; the sync engine subscribes to trigger
// background syncs.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// NewNotifier returns a Notifier with no subscribers.
func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[int]func(Event)),
	}
}

// Subscribe registers fn for all future events and returns an unsubscribe
// function. Unsubscribing twice is harmless.
func (n *Notifier) Subscribe(fn func(Event)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// Emit delivers the event to every current subscriber. Callbacks run outside
// the notifier lock so a subscriber may unsubscribe from within its callback.
func (n *Notifier) Emit(event Event) {
	n.mu.Lock()
	callbacks := make([]func(Event), 0, len(n.subs))
	for _, fn := range n.subs {
		callbacks = append(callbacks, fn)
	}
	n.mu.Unlock()

	for _, fn := range callbacks {
		fn(event)
	}
}
