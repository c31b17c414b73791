package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/creamcroissant/ovenboard/internal/obs"
)

// DefaultCapacity bounds the ledger; the oldest entries are evicted first.
const DefaultCapacity = 100

// Store persists the ledger as a JSON array under one well-known key.
// found=false means no ledger has been written yet.
type Store interface {
	Load(ctx context.Context) (data []byte, found bool, err error)
	Save(ctx context.Context, data []byte) error
}

// Ledger is the shared notification log. All ops are safe for concurrent
// use from any number of views; every successful mutation is persisted and
// broadcast on the bus.
//
// Storage failures never reach callers: a ledger that cannot load behaves
// as empty, a ledger that cannot save keeps serving from memory. Both are
// logged and counted.
type Ledger struct {
	mu       sync.Mutex
	entries  []Notification
	store    Store
	bus      *Bus
	logger   *slog.Logger
	dq       *obs.DataQuality
	capacity int
	now      func() time.Time
	sanitize *bluemonday.Policy
}

// LedgerOption customizes a Ledger.
type LedgerOption func(*Ledger)

// WithCapacity overrides the entry bound.
func WithCapacity(n int) LedgerOption {
	return func(l *Ledger) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithLedgerClock overrides the ledger's time source.
func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLedger builds a ledger on top of store and bus, loading whatever the
// store currently holds.
func NewLedger(ctx context.Context, store Store, bus *Bus, logger *slog.Logger, dq *obs.DataQuality, opts ...LedgerOption) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	if dq == nil {
		dq = obs.NopDataQuality()
	}
	if bus == nil {
		bus = NewBus()
	}
	l := &Ledger{
		store:    store,
		bus:      bus,
		logger:   logger,
		dq:       dq,
		capacity: DefaultCapacity,
		now:      time.Now,
		sanitize: bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	l.entries = l.load(ctx)
	return l
}

// Bus exposes the change bus for subscribers.
func (l *Ledger) Bus() *Bus { return l.bus }

// List returns entries newest first, filtered by module, type and read
// state in that order, then truncated to the filter limit. Module "all"
// (or empty) disables the module criterion.
func (l *Ledger) List(filter Filter) []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Notification, 0, len(l.entries))
	out = append(out, l.entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })

	if filter.Module != "" && filter.Module != ModuleAll {
		out = keep(out, func(n Notification) bool { return n.Module == filter.Module })
	}
	if filter.Type != "" {
		out = keep(out, func(n Notification) bool { return n.Type == filter.Type })
	}
	if filter.UnreadOnly {
		out = keep(out, func(n Notification) bool { return n.Unread })
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

// Add stamps draft with an id, the current time and unread state, prepends
// it, and evicts the oldest entry past capacity.
func (l *Ledger) Add(ctx context.Context, draft Draft) Notification {
	now := l.now()
	entry := Notification{
		ID:          uuid.NewString(),
		Type:        draft.Type,
		Title:       l.sanitize.Sanitize(draft.Title),
		Message:     l.sanitize.Sanitize(draft.Message),
		Module:      draft.Module,
		Data:        draft.Data,
		DisplayTime: RelativeTime(now, now),
		Timestamp:   now.UnixMilli(),
		Unread:      true,
		Link:        draft.Link,
	}

	l.mu.Lock()
	l.entries = append([]Notification{entry}, l.entries...)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}
	l.persistLocked(ctx)
	l.mu.Unlock()

	l.bus.Publish(Change{Op: OpAdded, ID: entry.ID, Module: entry.Module})
	return entry
}

// MarkRead flips one entry to read. Unknown ids and already-read entries
// are no-ops and do not broadcast.
func (l *Ledger) MarkRead(ctx context.Context, id string) {
	l.mu.Lock()
	var changed *Notification
	for i := range l.entries {
		if l.entries[i].ID == id && l.entries[i].Unread {
			l.entries[i].Unread = false
			changed = &l.entries[i]
			break
		}
	}
	if changed != nil {
		l.persistLocked(ctx)
	}
	l.mu.Unlock()

	if changed != nil {
		l.bus.Publish(Change{Op: OpRead, ID: changed.ID, Module: changed.Module})
	}
}

// MarkAllRead marks every entry read, optionally scoped to one module.
// Racing calls converge on the same state regardless of interleaving.
func (l *Ledger) MarkAllRead(ctx context.Context, module Module) {
	scoped := module != "" && module != ModuleAll

	l.mu.Lock()
	changed := false
	for i := range l.entries {
		if scoped && l.entries[i].Module != module {
			continue
		}
		if l.entries[i].Unread {
			l.entries[i].Unread = false
			changed = true
		}
	}
	if changed {
		l.persistLocked(ctx)
	}
	l.mu.Unlock()

	if changed {
		l.bus.Publish(Change{Op: OpAllRead, Module: module})
	}
}

// UnreadCount reports the unread entries visible under module.
func (l *Ledger) UnreadCount(module Module) int {
	return len(l.List(Filter{Module: module, UnreadOnly: true}))
}

// Delete removes one entry.
func (l *Ledger) Delete(ctx context.Context, id string) {
	l.mu.Lock()
	var removed *Notification
	for i := range l.entries {
		if l.entries[i].ID == id {
			entry := l.entries[i]
			removed = &entry
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			break
		}
	}
	if removed != nil {
		l.persistLocked(ctx)
	}
	l.mu.Unlock()

	if removed != nil {
		l.bus.Publish(Change{Op: OpDeleted, ID: removed.ID, Module: removed.Module})
	}
}

// ClearAll removes every entry.
func (l *Ledger) ClearAll(ctx context.Context) {
	l.mu.Lock()
	had := len(l.entries) > 0
	l.entries = nil
	if had {
		l.persistLocked(ctx)
	}
	l.mu.Unlock()

	if had {
		l.bus.Publish(Change{Op: OpCleared})
	}
}

// Refresh reloads the ledger from the store, picking up mutations written
// by other processes, and rebroadcasts so derived views re-evaluate.
func (l *Ledger) Refresh(ctx context.Context) {
	entries := l.load(ctx)

	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()

	l.bus.Publish(Change{Op: OpRefreshed})
}

// Len reports the current entry count.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Ledger) load(ctx context.Context) []Notification {
	if l.store == nil {
		return nil
	}
	data, found, err := l.store.Load(ctx)
	if err != nil {
		l.dq.LedgerStorageErrors.Inc()
		l.logger.Error("notification ledger load failed, starting empty", "error", err)
		return nil
	}
	if !found || len(data) == 0 {
		return nil
	}
	var entries []Notification
	if err := json.Unmarshal(data, &entries); err != nil {
		l.dq.LedgerStorageErrors.Inc()
		l.logger.Error("notification ledger payload corrupted, starting empty", "error", err)
		return nil
	}
	if len(entries) > l.capacity {
		entries = entries[:l.capacity]
	}
	return entries
}

func (l *Ledger) persistLocked(ctx context.Context) {
	if l.store == nil {
		return
	}
	data, err := json.Marshal(l.entries)
	if err != nil {
		l.dq.LedgerStorageErrors.Inc()
		l.logger.Error("notification ledger encode failed", "error", err)
		return
	}
	if err := l.store.Save(ctx, data); err != nil {
		l.dq.LedgerStorageErrors.Inc()
		l.logger.Error("notification ledger save failed", "error", err)
	}
}

func keep(entries []Notification, pred func(Notification) bool) []Notification {
	out := entries[:0]
	for _, n := range entries {
		if pred(n) {
			out = append(out, n)
		}
	}
	return out
}
