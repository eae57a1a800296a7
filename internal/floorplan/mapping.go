// Package floorplan maps place positions stored as percentages of a floor
// image's intrinsic size to and from the coordinate spaces renderers draw in.
package floorplan

import (
	"fmt"
	"math"
	"strconv"
)

const (
	MinPercent = 0.0
	MaxPercent = 100.0
)

// Size is the intrinsic pixel size of a floor image.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Normalized returns s with non-positive dimensions replaced by 1. An image
// that has not loaded yet reports 0x0; markers are placed against 1x1 until
// the real dimensions arrive.
func (s Size) Normalized() Size {
	if !(s.Width > 0) {
		s.Width = 1
	}
	if !(s.Height > 0) {
		s.Height = 1
	}
	return s
}

// Percent is a position as a percentage (0..100) of the intrinsic image size.
// Y grows downward.
type Percent struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Clamp returns p with both axes clamped into [0,100].
func (p Percent) Clamp() Percent {
	return Percent{X: ClampPercent(p.X), Y: ClampPercent(p.Y)}
}

// ClampPercent clamps v into [0,100]. NaN and negative zero clamp to 0.
func ClampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v) || v <= MinPercent:
		return MinPercent
	case v > MaxPercent:
		return MaxPercent
	default:
		return v
	}
}

// Pixel is a point in stage (screen) pixels.
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the current stage zoom and pan. A non-positive scale is treated as 1.
type Viewport struct {
	Scale float64 `json:"scale"`
	PanX  float64 `json:"panX"`
	PanY  float64 `json:"panY"`
}

func (v Viewport) scale() float64 {
	if !(v.Scale > 0) {
		return 1
	}
	return v.Scale
}

// ToPixel maps a stored percentage to stage pixels:
// percent/100 * intrinsic * scale + pan.
func ToPixel(p Percent, size Size, vp Viewport) Pixel {
	size = size.Normalized()
	scale := vp.scale()
	return Pixel{
		X: p.X/100*size.Width*scale + vp.PanX,
		Y: p.Y/100*size.Height*scale + vp.PanY,
	}
}

// FromPixel inverts ToPixel and clamps the result, so a pointer outside the
// image yields a position on its edge.
func FromPixel(px Pixel, size Size, vp Viewport) Percent {
	size = size.Normalized()
	scale := vp.scale()
	return Percent{
		X: (px.X - vp.PanX) / scale / size.Width * 100,
		Y: (px.Y - vp.PanY) / scale / size.Height * 100,
	}.Clamp()
}

// CSSPosition renders p as absolute CSS offsets within a container sized to
// the image.
func CSSPosition(p Percent) string {
	p = p.Clamp()
	return fmt.Sprintf("left:%s%%; top:%s%%", formatFloat(p.X), formatFloat(p.Y))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
