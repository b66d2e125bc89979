package catalog

import (
	"sync"

	"github.com/example/lastara-storefront/internal/storefront/fetch"
)

// Snapshot is what the render surface draws
type Snapshot struct {
	Items    []Item
	Total    int
	Criteria Criteria
	Loaded   bool
}

// View keeps the filtered list in step with the source items and criteria.
// Every change re-runs Apply and notifies the change callback.
type View struct {
	mu         sync.Mutex
	items      []Item
	criteria   Criteria
	filtered   []Item
	loaded     bool
	generation uint64
	closed     bool
	onChange   func(Snapshot)
}

// NewView starts with no items and DefaultCriteria. onChange may be nil.
func NewView(onChange func(Snapshot)) *View {
	return &View{
		criteria: DefaultCriteria(),
		filtered: []Item{},
		onChange: onChange,
	}
}

// BeginLoad returns a token for a fetch about to start.
// Starting another load makes earlier tokens stale.
func (v *View) BeginLoad() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	return v.generation
}

// Complete applies the result of the load identified by token. A stale token or a
// closed view discards it and returns false. Unavailable results load an empty catalog.
func (v *View) Complete(token uint64, res fetch.Result[[]Item]) bool {
	v.mu.Lock()
	if v.closed || token != v.generation {
		v.mu.Unlock()
		return false
	}
	v.items = res.OrDefault(nil)
	v.loaded = true
	snap := v.refreshLocked()
	v.mu.Unlock()

	v.notify(snap)
	return true
}

// SetItems replaces the source collection
func (v *View) SetItems(items []Item) {
	v.update(func() {
		v.items = items
		v.loaded = true
	})
}

// SetCriteria replaces the whole selection
func (v *View) SetCriteria(c Criteria) {
	v.update(func() { v.criteria = c })
}

// Update edits the current selection in place
func (v *View) Update(edit func(*Criteria)) {
	v.update(func() { edit(&v.criteria) })
}

// ClearFilters restores DefaultCriteria
func (v *View) ClearFilters() {
	v.SetCriteria(DefaultCriteria())
}

func (v *View) update(mutate func()) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	mutate()
	snap := v.refreshLocked()
	v.mu.Unlock()

	v.notify(snap)
}

func (v *View) refreshLocked() Snapshot {
	v.filtered = Apply(v.items, v.criteria)
	return v.snapshotLocked()
}

func (v *View) snapshotLocked() Snapshot {
	return Snapshot{
		Items:    v.filtered,
		Total:    len(v.items),
		Criteria: v.criteria,
		Loaded:   v.loaded,
	}
}

func (v *View) notify(s Snapshot) {
	if v.onChange != nil {
		v.onChange(s)
	}
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// Close detaches the view; later loads and edits are ignored
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.generation++
}
