// Package notify is the per-document change bus. Publishing is synchronous:
// every listener has run by the time Publish returns.
package notify

import "sync"

// Kind identifies what changed.
type Kind int

const (
	// GeometryChanged requires full regeneration of dependent geometry.
	GeometryChanged Kind = iota
	// GeometryPercentChanged means only the count/percent scale flipped;
	// dependents rescale.
	GeometryPercentChanged
	// GeometrySectorsChanged means sector size, count or starting angle
	// moved; dependents re-bin.
	GeometrySectorsChanged
	// StatisticsChanged means a dataset's observations mutated.
	StatisticsChanged
)

func (k Kind) String() string {
	switch k {
	case GeometryChanged:
		return "geometry_changed"
	case GeometryPercentChanged:
		return "geometry_changed_percent"
	case GeometrySectorsChanged:
		return "geometry_changed_sectors"
	case StatisticsChanged:
		return "statistics_changed"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners.
type Event struct {
	Kind Kind
	// Source is the ID of the dataset for StatisticsChanged, empty otherwise.
	Source string
}

// Listener receives events.
type Listener func(Event)

type subscription struct {
	id       uint64
	listener Listener
}

// Bus dispatches events to listeners registered per kind.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Kind][]subscription
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[Kind][]subscription)}
}

// Subscribe registers l for events of kind k and returns a function that
// removes the registration.
func (b *Bus) Subscribe(k Kind, l Listener) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[k] = append(b.subs[k], subscription{id: id, listener: l})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(k, id) })
	}
}

func (b *Bus) remove(k Kind, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[k]
	for i, s := range subs {
		if s.id == id {
			b.subs[k] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish calls every listener of e.Kind in subscription order.
// Listeners may subscribe or unsubscribe while being called.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[e.Kind]...)
	b.mu.RUnlock()

	for _, s := range subs {
		s.listener(e)
	}
}

// Count returns the number of listeners registered for k.
func (b *Bus) Count(k Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[k])
}
