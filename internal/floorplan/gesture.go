package floorplan

import (
	"errors"
	"sync"
)

var ErrGestureActive = errors.New("gesture already in progress")

// DragGesture moves a marker. Begin acquires the gesture and End releases it
// unconditionally; moves outside Begin/End are ignored and the last computed
// position stands.
type DragGesture struct {
	renderer MarkerRenderer

	mu       sync.Mutex
	active   bool
	position Percent
}

func NewDragGesture(renderer MarkerRenderer) *DragGesture {
	return &DragGesture{renderer: renderer}
}

func (g *DragGesture) Begin(start Percent) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active {
		return ErrGestureActive
	}
	g.active = true
	g.position = start.Clamp()
	return nil
}

// Move reports the clamped position under the pointer and whether the
// gesture was active.
func (g *DragGesture) Move(pt Point) (Percent, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return g.position, false
	}
	g.position = g.renderer.Unproject(pt)
	return g.position, true
}

// End releases the gesture and returns the final position.
func (g *DragGesture) End() Percent {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = false
	return g.position
}

func (g *DragGesture) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// ResizeGesture scales a marker by pointer distance from its center, measured
// in intrinsic image pixels so the result does not depend on zoom.
type ResizeGesture struct {
	renderer MarkerRenderer
	image    Size
	cfg      ResizeConfig

	mu     sync.Mutex
	active bool
	center Percent
	size   float64
}

func NewResizeGesture(renderer MarkerRenderer, image Size, cfg ResizeConfig) *ResizeGesture {
	return &ResizeGesture{renderer: renderer, image: image, cfg: cfg}
}

func (g *ResizeGesture) Begin(center Percent, size float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active {
		return ErrGestureActive
	}
	g.active = true
	g.center = center.Clamp()
	g.size = ClampSize(size)
	return nil
}

func (g *ResizeGesture) Move(pt Point) (float64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return g.size, false
	}
	g.size = ResizeFromPointer(g.center, g.renderer.Unproject(pt), g.image, g.cfg)
	return g.size, true
}

func (g *ResizeGesture) End() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = false
	return g.size
}
