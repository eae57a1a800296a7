package floorplan

import "math"

const (
	// DefaultMinSize is the smallest size coefficient a place may have.
	DefaultMinSize = 0.2
	// DefaultSensitivity is the pointer distance, in intrinsic image pixels,
	// that corresponds to a coefficient of 1.
	DefaultSensitivity = 50.0
	// DefaultBaseRadius is the marker radius in intrinsic pixels at coefficient 1.
	DefaultBaseRadius = 12.0
)

type ResizeConfig struct {
	MinSize     float64
	Sensitivity float64
}

func DefaultResizeConfig() ResizeConfig {
	return ResizeConfig{MinSize: DefaultMinSize, Sensitivity: DefaultSensitivity}
}

func (c ResizeConfig) normalized() ResizeConfig {
	if !(c.MinSize > 0) {
		c.MinSize = DefaultMinSize
	}
	if !(c.Sensitivity > 0) {
		c.Sensitivity = DefaultSensitivity
	}
	return c
}

// ResizeCoefficient converts the pointer distance from a marker center into
// a size coefficient. It is monotonic in distance and never below MinSize.
func ResizeCoefficient(distance float64, cfg ResizeConfig) float64 {
	cfg = cfg.normalized()
	if math.IsNaN(distance) || distance < 0 {
		distance = 0
	}
	return math.Max(cfg.MinSize, distance/cfg.Sensitivity)
}

// ResizeFromPointer is the size coefficient for a pointer at pointer while
// resizing a marker centered at center. The distance is measured in intrinsic
// image pixels so zoom does not change the result.
func ResizeFromPointer(center, pointer Percent, image Size, cfg ResizeConfig) float64 {
	identity := Viewport{Scale: 1}
	d := distance(ToPixel(center.Clamp(), image, identity), ToPixel(pointer.Clamp(), image, identity))
	return ResizeCoefficient(d, cfg)
}

// ClampSize raises size to the default minimum coefficient.
func ClampSize(size float64) float64 {
	if math.IsNaN(size) || size < DefaultMinSize {
		return DefaultMinSize
	}
	return size
}

// RenderRadius is the drawn marker radius for a size coefficient.
func RenderRadius(baseRadius, coefficient float64) float64 {
	return baseRadius * ClampSize(coefficient)
}

// NormalizeRotation maps degrees into [0,360).
func NormalizeRotation(degrees float64) float64 {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return 0
	}
	r := math.Mod(degrees, 360)
	if r < 0 {
		r += 360
	}
	// Tiny negative inputs round up to exactly 360.
	if r >= 360 {
		r = 0
	}
	return r
}

func distance(a, b Pixel) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
