package services

import (
	"fmt"
	"math"

	"portfolio/pkg/render"
)

// MinThumbWidth is the smallest thumb width, in px
const MinThumbWidth = 40

// ScrollMetrics is the horizontal scroll state of a gallery
type ScrollMetrics struct {
	ScrollLeft  float64 `json:"scrollLeft"`
	ScrollWidth float64 `json:"scrollWidth"`
	ClientWidth float64 `json:"clientWidth"`
}

// MaxScroll returns the largest valid scrollLeft
func (m ScrollMetrics) MaxScroll() float64 {
	return math.Max(0, m.ScrollWidth-m.ClientWidth)
}

// Overflows reports whether the content is wider than the visible area
func (m ScrollMetrics) Overflows() bool {
	return m.ScrollWidth > m.ClientWidth
}

// Scroll returns the gallery scroll state
func (g *Gallery) Scroll() ScrollMetrics {
	return g.scroll
}

// SetScroll stores new metrics and notifies subscribers
func (g *Gallery) SetScroll(m ScrollMetrics) {
	m.ScrollLeft = math.Min(math.Max(0, m.ScrollLeft), m.MaxScroll())
	g.scroll = m
	for _, fn := range g.listeners {
		fn(m)
	}
}

// ScrollTo moves the gallery to left, clamped to its scrollable range
func (g *Gallery) ScrollTo(left float64) {
	m := g.scroll
	m.ScrollLeft = left
	g.SetScroll(m)
}

// OnScroll subscribes fn to scroll changes; the returned function unsubscribes
func (g *Gallery) OnScroll(fn func(ScrollMetrics)) func() {
	id := g.nextSub
	g.nextSub++
	g.listeners[id] = fn
	return func() { delete(g.listeners, id) }
}

// Thumb is the geometry of the scrollbar thumb
type Thumb struct {
	Width  float64 `json:"width"`
	Left   float64 `json:"left"`
	Hidden bool    `json:"hidden"`
}

// ComputeThumb maps gallery metrics onto a track of the given width
func ComputeThumb(m ScrollMetrics, track float64) Thumb {
	if !m.Overflows() || track <= 0 {
		return Thumb{Hidden: true}
	}
	width := math.Max(MinThumbWidth, m.ClientWidth/m.ScrollWidth*track)
	width = math.Min(width, track)
	left := 0.0
	if maxScroll := m.MaxScroll(); maxScroll > 0 {
		left = m.ScrollLeft / maxScroll * (track - width)
	}
	return Thumb{Width: width, Left: left}
}

// Scrollbar is the single synthetic scrollbar bound to the gallery in view
type Scrollbar struct {
	Node  *render.Node
	thumb *render.Node

	track   float64
	gallery *Gallery
	detach  func()
	state   Thumb

	dragging    bool
	dragStartX  float64
	dragStartSL float64
}

// NewScrollbar creates a hidden scrollbar with a track of the given width
func NewScrollbar(track float64) *Scrollbar {
	s := &Scrollbar{
		Node:  render.El("div", "global-scrollbar").WithID("global-scrollbar"),
		thumb: render.El("div", "scrollbar-thumb").WithID("scrollbar-thumb"),
		track: track,
		state: Thumb{Hidden: true},
	}
	s.Node.Append(s.thumb)
	s.sync()
	return s
}

// Gallery returns the gallery the scrollbar follows
func (s *Scrollbar) Gallery() *Gallery {
	return s.gallery
}

// Thumb returns the current thumb geometry
func (s *Scrollbar) Thumb() Thumb {
	return s.state
}

// SetTrack changes the track width and recomputes the thumb
func (s *Scrollbar) SetTrack(track float64) {
	s.track = track
	if s.gallery != nil {
		s.update(s.gallery.Scroll())
	}
}

// Attach binds the scrollbar to g, detaching it from the previous gallery
func (s *Scrollbar) Attach(g *Gallery) {
	if g == s.gallery {
		return
	}
	if s.detach != nil {
		s.detach()
		s.detach = nil
	}
	s.dragging = false
	s.gallery = g
	if g == nil {
		s.state = Thumb{Hidden: true}
		s.sync()
		return
	}
	s.detach = g.OnScroll(s.update)
	s.update(g.Scroll())
}

func (s *Scrollbar) update(m ScrollMetrics) {
	s.state = ComputeThumb(m, s.track)
	s.sync()
}

func (s *Scrollbar) sync() {
	s.Node.Hidden = s.state.Hidden
	s.thumb.SetStyle("width", fmt.Sprintf("%.0fpx", s.state.Width))
	s.thumb.SetStyle("left", fmt.Sprintf("%.0fpx", s.state.Left))
}

// PointerDown starts a drag at track position x
func (s *Scrollbar) PointerDown(x float64) {
	if s.gallery == nil || s.state.Hidden {
		return
	}
	s.dragging = true
	s.dragStartX = x
	s.dragStartSL = s.gallery.Scroll().ScrollLeft
}

// PointerMove converts the drag delta into a proportional scroll
func (s *Scrollbar) PointerMove(x float64) {
	if !s.dragging || s.gallery == nil {
		return
	}
	free := s.track - s.state.Width
	if free <= 0 {
		return
	}
	m := s.gallery.Scroll()
	delta := (x - s.dragStartX) / free * m.MaxScroll()
	s.gallery.ScrollTo(s.dragStartSL + delta)
}

// PointerUp ends a drag
func (s *Scrollbar) PointerUp() {
	s.dragging = false
}

// Dragging reports whether a drag is in progress
func (s *Scrollbar) Dragging() bool {
	return s.dragging
}

// TrackClick jumps to the proportion of the track at x
func (s *Scrollbar) TrackClick(x float64) {
	if s.gallery == nil || s.state.Hidden || s.track <= 0 {
		return
	}
	p := math.Min(math.Max(0, x/s.track), 1)
	s.gallery.ScrollTo(p * s.gallery.Scroll().MaxScroll())
}

// TouchStart starts a drag from a touch at x
func (s *Scrollbar) TouchStart(x float64) { s.PointerDown(x) }

// TouchMove follows a touch drag the same way as a pointer drag
func (s *Scrollbar) TouchMove(x float64) { s.PointerMove(x) }

// TouchEnd ends a touch drag
func (s *Scrollbar) TouchEnd() { s.PointerUp() }
