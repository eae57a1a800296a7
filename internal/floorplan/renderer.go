package floorplan

import "fmt"

// Point is a position in a renderer's own coordinate space: CSS percentages
// for DOMRenderer, stage pixels for CanvasRenderer, and X=lng, Y=lat for
// GeoRenderer.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Marker is a place as the renderers see it.
type Marker struct {
	ID       int64   `json:"id"`
	Label    string  `json:"label"`
	Position Percent `json:"position"`
	Size     float64 `json:"size"`
	Rotation float64 `json:"rotation"`
	Occupied bool    `json:"occupied"`
}

// Placement is where and how large a renderer draws a marker.
type Placement struct {
	Point    Point   `json:"point"`
	Radius   float64 `json:"radius"`
	Rotation float64 `json:"rotation"`
	Style    string  `json:"style,omitempty"`
}

// MarkerRenderer is the capability set shared by every floor renderer. All
// of them go through the mapping functions in this package; none holds its
// own coordinate math.
type MarkerRenderer interface {
	Project(m Marker) Placement
	Unproject(pt Point) Percent
}

// Space names the coordinate space of a renderer.
type Space string

const (
	SpaceDOM    Space = "dom"
	SpaceCanvas Space = "canvas"
	SpaceGeo    Space = "geo"
)

func ParseSpace(raw string) (Space, error) {
	switch s := Space(raw); s {
	case SpaceDOM, SpaceCanvas, SpaceGeo:
		return s, nil
	default:
		return "", fmt.Errorf("space must be one of dom, canvas, geo")
	}
}

// NewRenderer returns the renderer for space over an image of the given
// intrinsic size. The viewport only applies to the canvas space.
func NewRenderer(space Space, image Size, vp Viewport) (MarkerRenderer, error) {
	switch space {
	case SpaceDOM:
		return DOMRenderer{BaseRadius: DefaultBaseRadius}, nil
	case SpaceCanvas:
		return CanvasRenderer{Image: image, Viewport: vp, BaseRadius: DefaultBaseRadius}, nil
	case SpaceGeo:
		return NewGeoRenderer(image), nil
	default:
		return nil, fmt.Errorf("unknown renderer space %q", space)
	}
}

// DOMRenderer positions markers with CSS percentages inside a container that
// has the image's aspect ratio.
type DOMRenderer struct {
	BaseRadius float64
}

func (r DOMRenderer) Project(m Marker) Placement {
	p := m.Position.Clamp()
	return Placement{
		Point:    Point{X: p.X, Y: p.Y},
		Radius:   RenderRadius(baseRadius(r.BaseRadius), m.Size),
		Rotation: NormalizeRotation(m.Rotation),
		Style:    CSSPosition(p),
	}
}

func (r DOMRenderer) Unproject(pt Point) Percent {
	return Percent{X: pt.X, Y: pt.Y}.Clamp()
}

// CanvasRenderer draws on a zoomable, pannable stage.
type CanvasRenderer struct {
	Image      Size
	Viewport   Viewport
	BaseRadius float64
}

func (r CanvasRenderer) Project(m Marker) Placement {
	px := ToPixel(m.Position.Clamp(), r.Image, r.Viewport)
	return Placement{
		Point:    Point{X: px.X, Y: px.Y},
		Radius:   RenderRadius(baseRadius(r.BaseRadius), m.Size) * r.Viewport.scale(),
		Rotation: NormalizeRotation(m.Rotation),
	}
}

func (r CanvasRenderer) Unproject(pt Point) Percent {
	return FromPixel(Pixel{X: pt.X, Y: pt.Y}, r.Image, r.Viewport)
}

// GeoRenderer overlays the image on a map library's lat/lng plane.
type GeoRenderer struct {
	Bounds     GeoBounds
	BaseRadius float64
}

// NewGeoRenderer uses the synthetic bounds derived from the image size.
func NewGeoRenderer(size Size) GeoRenderer {
	return GeoRenderer{Bounds: BoundsForImage(size), BaseRadius: DefaultBaseRadius}
}

func (r GeoRenderer) Project(m Marker) Placement {
	ll := ToLatLng(m.Position.Clamp(), r.Bounds)
	return Placement{
		Point:    Point{X: ll.Lng, Y: ll.Lat},
		Radius:   RenderRadius(baseRadius(r.BaseRadius), m.Size),
		Rotation: NormalizeRotation(m.Rotation),
	}
}

func (r GeoRenderer) Unproject(pt Point) Percent {
	return FromLatLng(LatLng{Lat: pt.Y, Lng: pt.X}, r.Bounds)
}

func baseRadius(v float64) float64 {
	if !(v > 0) {
		return DefaultBaseRadius
	}
	return v
}
