package fetch

import "sync"

// List holds the latest accepted result of a repeatable list fetch. A failed or
// empty fetch shows the fallback. Only the most recently started load may land.
type List[E any] struct {
	mu         sync.Mutex
	items      []E
	fallback   []E
	generation uint64
	closed     bool
}

// NewList starts out showing fallback
func NewList[E any](fallback []E) *List[E] {
	return &List[E]{items: fallback, fallback: fallback}
}

// BeginLoad returns a token for a fetch about to start.
// Starting another load makes earlier tokens stale.
func (l *List[E]) BeginLoad() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	return l.generation
}

// Complete installs the result of the load identified by token. A stale token or a
// closed list discards it and returns false.
func (l *List[E]) Complete(token uint64, res Result[[]E]) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || token != l.generation {
		return false
	}
	l.items = NonEmpty(res).OrDefault(l.fallback)
	return true
}

func (l *List[E]) Items() []E {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items
}

func (l *List[E]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Close makes every outstanding and future load stale
func (l *List[E]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.generation++
}
