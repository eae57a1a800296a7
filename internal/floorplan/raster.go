package floorplan

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/vector"
)

const (
	defaultPreviewWidth = 800
	// MaxPreviewPixels caps the rendered canvas regardless of aspect ratio.
	MaxPreviewPixels = 4_000_000
	labelFontSize       = 12
	// Cubic Bezier control distance for a quarter circle.
	circleKappa = 0.5522847498
)

var (
	occupiedColor   = color.RGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
	labelColor      = color.RGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff}
	backgroundColor = color.RGBA{R: 0xf9, G: 0xfa, B: 0xfb, A: 0xff}
)

// RasterRenderer draws markers onto the floor image server side. It projects
// like a CanvasRenderer whose viewport scales the intrinsic image down to the
// preview width.
type RasterRenderer struct {
	CanvasRenderer
	Accent color.Color
	font   *truetype.Font
}

// NewRasterRenderer sizes the preview to at most maxWidth pixels wide and
// MaxPreviewPixels in total.
func NewRasterRenderer(size Size, maxWidth int, accent color.Color) (*RasterRenderer, error) {
	font, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse label font: %w", err)
	}
	if maxWidth <= 0 {
		maxWidth = defaultPreviewWidth
	}
	size = size.Normalized()
	scale := 1.0
	if size.Width > float64(maxWidth) {
		scale = float64(maxWidth) / size.Width
	}
	if pixels := size.Width * size.Height * scale * scale; pixels > MaxPreviewPixels {
		scale = math.Sqrt(MaxPreviewPixels / (size.Width * size.Height))
	}
	if accent == nil {
		accent = color.RGBA{R: 0x25, G: 0x63, B: 0xeb, A: 0xff}
	}
	return &RasterRenderer{
		CanvasRenderer: CanvasRenderer{
			Image:      size,
			Viewport:   Viewport{Scale: scale},
			BaseRadius: DefaultBaseRadius,
		},
		Accent: accent,
		font:   font,
	}, nil
}

// Bounds is the pixel rectangle of the rendered preview.
func (r *RasterRenderer) Bounds() image.Rectangle {
	scale := r.Viewport.scale()
	w := int(math.Max(1, math.Round(r.Image.Width*scale)))
	h := int(math.Max(1, math.Round(r.Image.Height*scale)))
	return image.Rect(0, 0, w, h)
}

// Render scales base into the preview and draws each marker with its label.
// A nil base draws the markers on a plain background.
func (r *RasterRenderer) Render(base image.Image, markers []Marker) (*image.RGBA, error) {
	bounds := r.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.NewUniform(backgroundColor), image.Point{}, draw.Src)
	if base != nil {
		draw.CatmullRom.Scale(dst, bounds, base, base.Bounds(), draw.Over, nil)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(r.font)
	ctx.SetFontSize(labelFontSize)
	ctx.SetClip(bounds)
	ctx.SetDst(dst)
	ctx.SetSrc(image.NewUniform(labelColor))

	for _, marker := range markers {
		placement := r.Project(marker)
		fill := r.Accent
		if marker.Occupied {
			fill = occupiedColor
		}
		fillCircle(dst, placement.Point, placement.Radius, fill)
		heading := Point{
			X: placement.Point.X + placement.Radius*math.Sin(placement.Rotation*math.Pi/180),
			Y: placement.Point.Y - placement.Radius*math.Cos(placement.Rotation*math.Pi/180),
		}
		fillCircle(dst, heading, math.Max(1.5, placement.Radius/4), labelColor)

		if marker.Label == "" {
			continue
		}
		pt := freetype.Pt(int(placement.Point.X+placement.Radius+2), int(placement.Point.Y+labelFontSize/3))
		if _, err := ctx.DrawString(marker.Label, pt); err != nil {
			return nil, fmt.Errorf("draw label %q: %w", marker.Label, err)
		}
	}
	return dst, nil
}

func fillCircle(dst *image.RGBA, center Point, radius float64, fill color.Color) {
	if radius <= 0 {
		return
	}
	box := image.Rect(
		int(math.Floor(center.X-radius)), int(math.Floor(center.Y-radius)),
		int(math.Ceil(center.X+radius)), int(math.Ceil(center.Y+radius)),
	).Intersect(dst.Bounds())
	if box.Empty() {
		return
	}
	// Rasterize in box-local coordinates so the mask only covers the circle.
	z := vector.NewRasterizer(box.Dx(), box.Dy())
	cx, cy := float32(center.X-float64(box.Min.X)), float32(center.Y-float64(box.Min.Y))
	rad := float32(radius)
	k := float32(circleKappa) * rad
	z.MoveTo(cx+rad, cy)
	z.CubeTo(cx+rad, cy+k, cx+k, cy+rad, cx, cy+rad)
	z.CubeTo(cx-k, cy+rad, cx-rad, cy+k, cx-rad, cy)
	z.CubeTo(cx-rad, cy-k, cx-k, cy-rad, cx, cy-rad)
	z.CubeTo(cx+k, cy-rad, cx+rad, cy-k, cx+rad, cy)
	z.ClosePath()
	z.Draw(dst, box, image.NewUniform(fill), image.Point{})
}
