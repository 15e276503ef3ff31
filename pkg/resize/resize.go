// Package resize routes per-element height notifications to subscribers.
//
// The host's native size observer is outside this module. The host turns its
// observations into Entry values and hands a whole batch to Table.Dispatch;
// the table calls each element's subscriber and then, once per batch, every
// flush hook. A grid uses the flush hook to request a single re-render no
// matter how many elements changed together.
package resize

import (
	"sort"
	"sync"
)

// Entry is one observed size change.
type Entry struct {
	ID     int     `json:"id"`
	Height float64 `json:"height"`
}

// Table maps element ids to callbacks.
type Table struct {
	mu      sync.Mutex
	subs    map[int]func(height float64) bool
	onFlush func(changed bool)
}

// NewTable creates an empty table. onFlush, if set, runs after each
// dispatched batch with whether any subscriber reported a change.
func NewTable(onFlush func(changed bool)) *Table {
	return &Table{subs: make(map[int]func(float64) bool), onFlush: onFlush}
}

// Subscribe registers fn for id, replacing any previous subscriber.
// fn reports whether the new height changed anything.
func (t *Table) Subscribe(id int, fn func(height float64) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs[id] = fn
}

// Unsubscribe removes the subscriber for id.
func (t *Table) Unsubscribe(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.subs, id)
}

// Subscribed reports whether id has a subscriber.
func (t *Table) Subscribed(id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.subs[id]
	return ok
}

// IDs returns the subscribed ids in ascending order.
func (t *Table) IDs() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]int, 0, len(t.subs))
	for id := range t.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Clear removes every subscriber.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = make(map[int]func(float64) bool)
}

// Dispatch delivers a batch. Entries for unknown ids are ignored. When an id
// appears more than once, only its last entry is delivered. It returns
// whether any subscriber reported a change.
func (t *Table) Dispatch(entries []Entry) bool {
	if len(entries) == 0 {
		return false
	}
	last := make(map[int]int, len(entries))
	for i, e := range entries {
		last[e.ID] = i
	}

	t.mu.Lock()
	calls := make([]func() bool, 0, len(last))
	for i, e := range entries {
		if last[e.ID] != i {
			continue
		}
		if fn, ok := t.subs[e.ID]; ok {
			h := e.Height
			calls = append(calls, func() bool { return fn(h) })
		}
	}
	flush := t.onFlush
	t.mu.Unlock()

	changed := false
	for _, call := range calls {
		if call() {
			changed = true
		}
	}
	if flush != nil {
		flush(changed)
	}
	return changed
}
