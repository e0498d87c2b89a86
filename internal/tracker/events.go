package tracker

import (
	"sync"

	"github.com/claude/fitcount/internal/workout"
)

// Event names published to subscribers.
const (
	EventStarted  = "started"
	EventTick     = "tick"
	EventSet      = "set"
	EventControl  = "control"
	EventComplete = "complete"
)

// Event is a snapshot published after a tracker operation.
type Event struct {
	Name     string           `json:"event"`
	Snapshot workout.Snapshot `json:"snapshot"`
	Summary  *workout.Summary `json:"summary,omitempty"`
}

type broadcaster struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func (b *broadcaster) publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// slow subscriber, skip
		}
	}
}

func (b *broadcaster) subscribe() chan Event {
	ch := make(chan Event, 32)
	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[chan Event]struct{})
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *broadcaster) unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Subscribe returns a channel of events and a function to stop receiving.
// Events are dropped for subscribers that fall behind.
func (t *Tracker) Subscribe() (<-chan Event, func()) {
	ch := t.events.subscribe()
	return ch, func() { t.events.unsubscribe(ch) }
}

// publish must be called with t.mu held.
func (t *Tracker) publish(name string) {
	e := Event{Name: name, Snapshot: t.session.Snapshot()}
	if sum, ok := t.session.Summary(); ok {
		e.Name = EventComplete
		e.Summary = &sum
	}
	t.events.publish(e)
}
