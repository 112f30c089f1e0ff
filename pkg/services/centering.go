package services

import (
	"math"
	"sync"
	"time"
)

const (
	// MinPadding is the padding of galleries without a measurable first image
	MinPadding = 20
	// ResizeDebounce is the quiet period before a resize is applied
	ResizeDebounce = 150 * time.Millisecond
)

// CenterPadding returns the symmetric padding that centres an image of
// width image in a viewport of width viewport
func CenterPadding(viewport, image float64) int {
	p := int(math.Floor((viewport - image) / 2))
	if p < MinPadding {
		return MinPadding
	}
	return p
}

// Centering keeps the first image of every registered gallery centred
type Centering struct {
	viewport  float64
	galleries []*Gallery
}

// NewCentering creates a controller for a viewport of the given width
func NewCentering(viewport float64) *Centering {
	return &Centering{viewport: viewport}
}

// Viewport returns the viewport width in use
func (c *Centering) Viewport() float64 {
	return c.viewport
}

// Register adds a gallery and applies its padding if already computable
func (c *Centering) Register(g *Gallery) {
	c.galleries = append(c.galleries, g)
	c.apply(g)
}

// ImageLoaded records the rendered width of a slot and re-centres its gallery
func (c *Centering) ImageLoaded(g *Gallery, slot *Slot, width float64) {
	g.widths[slot] = width
	c.apply(g)
}

// ImageFailed re-centres a gallery whose reference image may have changed
func (c *Centering) ImageFailed(g *Gallery) {
	c.apply(g)
}

// Resize switches to a new viewport width and recomputes every gallery
func (c *Centering) Resize(width float64) {
	c.viewport = width
	c.RecomputeAll()
}

// RecomputeAll recomputes the padding of every registered gallery
func (c *Centering) RecomputeAll() {
	for _, g := range c.galleries {
		c.apply(g)
	}
}

// apply centres g on its first image that has not failed. Until that image
// has a width the current padding is kept; galleries without any usable
// image get the minimum padding.
func (c *Centering) apply(g *Gallery) {
	for _, slot := range g.Slots() {
		if slot.State == SlotFailed {
			continue
		}
		if w, ok := g.widths[slot]; ok && slot.State == SlotLoaded {
			g.setPadding(CenterPadding(c.viewport, w))
		}
		return
	}
	g.setPadding(MinPadding)
}

// Debouncer runs only the last function triggered within its window
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timer  *time.Timer
	fn     func()
}

// NewDebouncer creates a debouncer with the given quiet window
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Trigger replaces the pending function and restarts the window
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fn = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// Flush runs the pending function now, if any
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.fire()
}

// Stop drops the pending function
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.fn = nil
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.fn
	d.fn = nil
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}
