package floorplan

import (
	"errors"
	"image"
	"image/color"
	"runtime"
	"strconv"
	"testing"
)

func TestRenderersAgreeOnStoredPosition(t *testing.T) {
	size := Size{Width: 1000, Height: 500}
	marker := Marker{ID: 1, Position: Percent{X: 25, Y: 50}, Size: 1}

	renderers := map[string]MarkerRenderer{
		"dom":    DOMRenderer{},
		"canvas": CanvasRenderer{Image: size, Viewport: Viewport{Scale: 2, PanX: 10, PanY: -5}},
		"geo":    NewGeoRenderer(size),
	}

	for name, renderer := range renderers {
		t.Run(name, func(t *testing.T) {
			placement := renderer.Project(marker)
			back := renderer.Unproject(placement.Point)
			if !almostEqual(back.X, 25) || !almostEqual(back.Y, 50) {
				t.Fatalf("Unproject(Project()) = %+v, want (25,50)", back)
			}
		})
	}
}

func TestDOMRendererStyle(t *testing.T) {
	placement := DOMRenderer{}.Project(Marker{Position: Percent{X: 120, Y: 33.5}, Size: 1, Rotation: -45})
	if placement.Style != "left:100%; top:33.5%" {
		t.Fatalf("style = %q", placement.Style)
	}
	if placement.Rotation != 315 {
		t.Fatalf("rotation = %v, want 315", placement.Rotation)
	}
}

func TestCanvasRadiusFollowsZoom(t *testing.T) {
	r := CanvasRenderer{Image: Size{Width: 100, Height: 100}, Viewport: Viewport{Scale: 2}, BaseRadius: 10}
	if got := r.Project(Marker{Size: 1.5}).Radius; !almostEqual(got, 30) {
		t.Fatalf("radius = %v, want 30", got)
	}
}

func TestDragGestureLifecycle(t *testing.T) {
	g := NewDragGesture(CanvasRenderer{Image: Size{Width: 1000, Height: 500}, Viewport: Viewport{Scale: 1}})

	if _, ok := g.Move(Point{X: 10, Y: 10}); ok {
		t.Fatalf("Move before Begin reported active")
	}
	if err := g.Begin(Percent{X: 10, Y: 10}); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := g.Begin(Percent{}); !errors.Is(err, ErrGestureActive) {
		t.Fatalf("second Begin() error = %v, want ErrGestureActive", err)
	}

	got, ok := g.Move(Point{X: -40, Y: 250})
	if !ok || got != (Percent{X: 0, Y: 50}) {
		t.Fatalf("Move() = %+v, %v", got, ok)
	}

	final := g.End()
	if final != (Percent{X: 0, Y: 50}) {
		t.Fatalf("End() = %+v", final)
	}
	if g.Active() {
		t.Fatalf("gesture still active after End")
	}

	got, ok = g.Move(Point{X: 500, Y: 250})
	if ok || got != final {
		t.Fatalf("Move after End = %+v, %v; want last value unchanged", got, ok)
	}
}

func TestResizeGestureIgnoresZoom(t *testing.T) {
	size := Size{Width: 1000, Height: 1000}
	center := Percent{X: 50, Y: 50}

	for _, scale := range []float64{0.5, 1, 4} {
		renderer := CanvasRenderer{Image: size, Viewport: Viewport{Scale: scale}}
		g := NewResizeGesture(renderer, size, DefaultResizeConfig())
		if err := g.Begin(center, 1); err != nil {
			t.Fatalf("Begin() error = %v", err)
		}
		// 100 intrinsic pixels to the right of center, in stage pixels.
		pointer := ToPixel(Percent{X: 60, Y: 50}, size, renderer.Viewport)
		got, ok := g.Move(Point{X: pointer.X, Y: pointer.Y})
		if !ok || !almostEqual(got, 2) {
			t.Fatalf("scale %v: Move() = %v, %v; want 2", scale, got, ok)
		}
		if end := g.End(); !almostEqual(end, 2) {
			t.Fatalf("End() = %v", end)
		}
	}
}

func TestRasterRendererDrawsMarkers(t *testing.T) {
	accent := color.RGBA{R: 0xff, A: 0xff}
	r, err := NewRasterRenderer(Size{Width: 2000, Height: 1000}, 400, accent)
	if err != nil {
		t.Fatalf("NewRasterRenderer() error = %v", err)
	}
	if got := r.Bounds(); got != image.Rect(0, 0, 400, 200) {
		t.Fatalf("Bounds() = %v", got)
	}

	base := image.NewRGBA(image.Rect(0, 0, 2000, 1000))
	img, err := r.Render(base, []Marker{
		{ID: 1, Label: "A1", Position: Percent{X: 25, Y: 50}, Size: 2},
		{ID: 2, Label: "B2", Position: Percent{X: 75, Y: 50}, Size: 2, Occupied: true},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	// Marker radius is 12*2*0.2 = 4.8 preview pixels; sample just left of center.
	available := img.RGBAAt(98, 100)
	if available.R < 0xc0 || available.G > 0x40 {
		t.Fatalf("available marker pixel = %+v, want accent red", available)
	}
	occupied := img.RGBAAt(298, 100)
	if !nearColor(occupied, occupiedColor) {
		t.Fatalf("occupied marker pixel = %+v, want %+v", occupied, occupiedColor)
	}
}

func TestRasterRendererAllocationBounded(t *testing.T) {
	r, err := NewRasterRenderer(Size{Width: 2000, Height: 1500}, 2000, nil)
	if err != nil {
		t.Fatalf("NewRasterRenderer() error = %v", err)
	}
	markers := make([]Marker, 0, 100)
	for i := 0; i < 100; i++ {
		markers = append(markers, Marker{
			ID:       int64(i + 1),
			Label:    "P" + strconv.Itoa(i),
			Position: Percent{X: float64(i%10)*10 + 5, Y: float64(i/10)*10 + 5},
			Size:     3,
			Rotation: float64(i * 7),
		})
	}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	if _, err := r.Render(nil, markers); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	runtime.ReadMemStats(&after)

	// The canvas itself is 12 MB; markers must not add canvas-sized buffers.
	if alloc := after.TotalAlloc - before.TotalAlloc; alloc > 64<<20 {
		t.Fatalf("Render allocated %d MB", alloc>>20)
	}
}

func TestRasterRendererCapsTotalPixels(t *testing.T) {
	r, err := NewRasterRenderer(Size{Width: 100, Height: 1_000_000}, 2000, nil)
	if err != nil {
		t.Fatalf("NewRasterRenderer() error = %v", err)
	}
	b := r.Bounds()
	if pixels := b.Dx() * b.Dy(); pixels > MaxPreviewPixels+b.Dx()+b.Dy() {
		t.Fatalf("Bounds() = %v (%d pixels), want at most %d", b, pixels, MaxPreviewPixels)
	}
}

func TestFillCircleClipsToCanvas(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	fill := color.RGBA{G: 0xff, A: 0xff}
	fillCircle(dst, Point{X: 0, Y: 0}, 6, fill)
	fillCircle(dst, Point{X: 500, Y: 500}, 6, fill)

	if got := dst.RGBAAt(1, 1); got.G < 0xf0 || got.A < 0xf0 {
		t.Fatalf("pixel inside clipped circle = %+v", got)
	}
	if got := dst.RGBAAt(15, 15); got != (color.RGBA{}) {
		t.Fatalf("pixel outside circle = %+v", got)
	}
}

func nearColor(a, b color.RGBA) bool {
	near := func(x, y uint8) bool {
		d := int(x) - int(y)
		return d >= -2 && d <= 2
	}
	return near(a.R, b.R) && near(a.G, b.G) && near(a.B, b.B)
}

func TestNewRendererBySpace(t *testing.T) {
	size := Size{Width: 800, Height: 400}
	vp := Viewport{Scale: 0.5, PanX: 20}
	marker := Marker{Position: Percent{X: 50, Y: 50}, Size: 1}

	tests := []struct {
		raw  string
		want Point
	}{
		{"dom", Point{X: 50, Y: 50}},
		{"canvas", Point{X: 220, Y: 100}},
		{"geo", Point{X: 0, Y: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			space, err := ParseSpace(tt.raw)
			if err != nil {
				t.Fatalf("ParseSpace(%q) error = %v", tt.raw, err)
			}
			renderer, err := NewRenderer(space, size, vp)
			if err != nil {
				t.Fatalf("NewRenderer() error = %v", err)
			}
			got := renderer.Project(marker).Point
			if !almostEqual(got.X, tt.want.X) || !almostEqual(got.Y, tt.want.Y) {
				t.Fatalf("point = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := ParseSpace("svg"); err == nil {
		t.Fatal("ParseSpace accepted an unknown space")
	}
	if _, err := NewRenderer(Space("svg"), size, vp); err == nil {
		t.Fatal("NewRenderer accepted an unknown space")
	}
}

func TestResizeFromPointer(t *testing.T) {
	image := Size{Width: 1000, Height: 1000}
	center := Percent{X: 50, Y: 50}

	// 10% of 1000px is 100px, twice the default sensitivity.
	if got := ResizeFromPointer(center, Percent{X: 60, Y: 50}, image, DefaultResizeConfig()); !almostEqual(got, 2) {
		t.Fatalf("size = %v, want 2", got)
	}
	if got := ResizeFromPointer(center, center, image, DefaultResizeConfig()); got != DefaultMinSize {
		t.Fatalf("size at center = %v, want %v", got, DefaultMinSize)
	}
}
