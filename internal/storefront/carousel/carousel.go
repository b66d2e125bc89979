// Package carousel rotates through an ordered sequence with autoplay,
// manual navigation, hover pause and swipe gestures.
package carousel

import (
	"sync"
	"time"
)

const (
	DefaultInterval       = 3 * time.Second
	DefaultSwipeThreshold = 50.0
)

type State int

const (
	// Idle: the sequence has at most one entry; no timer, no navigation
	Idle State = iota
	Playing
	Paused
	// ManualTransition is held only while an explicit jump restarts the timer
	ManualTransition
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case ManualTransition:
		return "manual-transition"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the carousel state for rendering
type Snapshot struct {
	Index  int
	Length int
	State  State
}

// Option configures a Carousel
type Option func(*Carousel)

func WithClock(c Clock) Option {
	return func(cr *Carousel) { cr.clock = c }
}

func WithInterval(d time.Duration) Option {
	return func(cr *Carousel) {
		if d > 0 {
			cr.interval = d
		}
	}
}

func WithSwipeThreshold(px float64) Option {
	return func(cr *Carousel) {
		if px > 0 {
			cr.threshold = px
		}
	}
}

// WithOnChange registers a callback invoked after every state or index change.
// It runs on the caller's goroutine, or on the timer goroutine for autoplay ticks.
func WithOnChange(fn func(Snapshot)) Option {
	return func(cr *Carousel) { cr.onChange = fn }
}

type point struct{ x, y float64 }

// Carousel is safe for concurrent use. Autoplay fires on timer goroutines,
// so every transition happens under mu and at most one timer is armed.
type Carousel struct {
	mu        sync.Mutex
	index     int
	length    int
	state     State
	paused    bool
	closed    bool
	timer     Timer
	timerGen  uint64
	touch     *point
	clock     Clock
	interval  time.Duration
	threshold float64
	onChange  func(Snapshot)
}

// New creates a carousel over length entries, starting at index 0.
// With more than one entry it starts Playing.
func New(length int, opts ...Option) *Carousel {
	c := &Carousel{
		state:     Idle,
		clock:     realClock{},
		interval:  DefaultInterval,
		threshold: DefaultSwipeThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.mu.Lock()
	c.setLengthLocked(length)
	c.mu.Unlock()
	return c
}

func (c *Carousel) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Carousel) snapshotLocked() Snapshot {
	return Snapshot{Index: c.index, Length: c.length, State: c.state}
}

// Next moves to (i+1) mod n
func (c *Carousel) Next() {
	c.navigate(func(i, n int) int { return (i + 1) % n })
}

// Previous moves to (i-1) mod n
func (c *Carousel) Previous() {
	c.navigate(func(i, n int) int { return (i - 1 + n) % n })
}

// GoTo jumps to index k; out-of-range targets are ignored
func (c *Carousel) GoTo(k int) {
	c.navigate(func(i, n int) int {
		if k < 0 || k >= n {
			return -1
		}
		return k
	})
}

// navigate performs an explicit jump: ManualTransition, then Playing with the
// autoplay timer restarted from zero.
func (c *Carousel) navigate(target func(i, n int) int) {
	c.mu.Lock()
	if c.closed || c.length <= 1 {
		c.mu.Unlock()
		return
	}
	k := target(c.index, c.length)
	if k < 0 {
		c.mu.Unlock()
		return
	}

	c.index = k
	c.state = ManualTransition
	c.stopTimerLocked()
	transition := c.snapshotLocked()

	c.paused = false
	c.state = Playing
	c.startTimerLocked()
	settled := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(transition)
	c.notify(settled)
}

// SetPaused records hover or focus loss. Pausing stops the timer; resuming restarts it from zero.
func (c *Carousel) SetPaused(paused bool) {
	c.mu.Lock()
	if c.closed || c.paused == paused {
		c.mu.Unlock()
		return
	}
	c.paused = paused

	if c.state == Idle {
		c.mu.Unlock()
		return
	}
	if paused {
		c.stopTimerLocked()
		c.state = Paused
	} else {
		c.state = Playing
		c.startTimerLocked()
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Carousel) Play()  { c.SetPaused(false) }
func (c *Carousel) Pause() { c.SetPaused(true) }

// TogglePaused flips the hover flag and reports the new value
func (c *Carousel) TogglePaused() bool {
	c.mu.Lock()
	paused := !c.paused
	c.mu.Unlock()
	c.SetPaused(paused)
	return paused
}

// SetLength replaces the sequence length. The index is kept when still in range,
// otherwise it resets to 0. Any running timer is restarted.
func (c *Carousel) SetLength(n int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.setLengthLocked(n)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Carousel) setLengthLocked(n int) {
	if n < 0 {
		n = 0
	}
	c.length = n
	c.stopTimerLocked()

	if n <= 1 {
		c.index = 0
		c.state = Idle
		return
	}
	if c.index >= n {
		c.index = 0
	}
	if c.paused {
		c.state = Paused
		return
	}
	c.state = Playing
	c.startTimerLocked()
}

// TouchStart records where a drag began
func (c *Carousel) TouchStart(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch = &point{x, y}
}

// TouchEnd interprets the drag since TouchStart and navigates accordingly
func (c *Carousel) TouchEnd(x, y float64) Direction {
	c.mu.Lock()
	start := c.touch
	c.touch = nil
	c.mu.Unlock()

	if start == nil {
		return None
	}
	return c.Swipe(x-start.x, y-start.y)
}

// Swipe navigates for a drag with net displacement (dx, dy)
func (c *Carousel) Swipe(dx, dy float64) Direction {
	c.mu.Lock()
	threshold := c.threshold
	c.mu.Unlock()

	dir := Interpret(dx, dy, threshold)
	switch dir {
	case Forward:
		c.Next()
	case Backward:
		c.Previous()
	}
	return dir
}

// Close cancels the pending timer. The carousel ignores every later call.
func (c *Carousel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTimerLocked()
}

func (c *Carousel) startTimerLocked() {
	c.stopTimerLocked()
	gen := c.timerGen
	c.timer = c.clock.AfterFunc(c.interval, func() { c.tick(gen) })
}

// stopTimerLocked cancels the armed timer. Bumping the generation also
// neutralises a callback that already fired and is waiting for mu.
func (c *Carousel) stopTimerLocked() {
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// tick is the autoplay advance
func (c *Carousel) tick(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.timerGen || c.state != Playing || c.length <= 1 {
		c.mu.Unlock()
		return
	}
	c.index = (c.index + 1) % c.length
	c.startTimerLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Carousel) notify(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
