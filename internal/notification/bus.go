package notification

import "sync"

// Op names a ledger mutation kind carried on the change bus.
type Op string

const (
	OpAdded       Op = "added"
	OpRead        Op = "read"
	OpAllRead     Op = "all_read"
	OpDeleted     Op = "deleted"
	OpCleared     Op = "cleared"
	OpRefreshed   Op = "refreshed"
)

// Change describes one ledger mutation. ID and Module are empty for bulk
// operations that touch more than one entry.
type Change struct {
	Op     Op     `json:"op"`
	ID     string `json:"id,omitempty"`
	Module Module `json:"module,omitempty"`
}

const subscriberBuffer = 16

// Bus fans ledger changes out to every subscribed view. Publishing never
// blocks; a subscriber that stops draining loses changes, which the periodic
// ledger refresh papers over.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Change
}

// NewBus returns an empty change bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Change)}
}

// Subscribe registers a new listener. The returned cancel func must be
// called when the view goes away; leaking subscriptions leaks goroutine
// wakeups for the lifetime of the process.
func (b *Bus) Subscribe() (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Change, subscriberBuffer)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(existing)
		}
	}
}

// Publish delivers change to every subscriber without blocking.
func (b *Bus) Publish(change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

// Subscribers reports the current listener count.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
