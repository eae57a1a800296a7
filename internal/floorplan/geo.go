package floorplan

// LatLng is a point in the synthetic map space a floor image is projected onto.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeoBounds is the lat/lng box covered by the floor image.
type GeoBounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// BoundsForImage derives a synthetic bounding box from the image aspect
// ratio: [-h/10, -w/10] .. [h/10, w/10].
func BoundsForImage(size Size) GeoBounds {
	size = size.Normalized()
	return GeoBounds{
		South: -size.Height / 10,
		West:  -size.Width / 10,
		North: size.Height / 10,
		East:  size.Width / 10,
	}
}

// ToLatLng interpolates p into b. Latitude grows upward while stored y grows
// downward, so y=0 maps to North.
func ToLatLng(p Percent, b GeoBounds) LatLng {
	return LatLng{
		Lat: b.North + (b.South-b.North)*p.Y/100,
		Lng: b.West + (b.East-b.West)*p.X/100,
	}
}

// FromLatLng inverts ToLatLng and clamps. A degenerate axis maps to 0.
func FromLatLng(ll LatLng, b GeoBounds) Percent {
	var p Percent
	if b.East != b.West {
		p.X = (ll.Lng - b.West) / (b.East - b.West) * 100
	}
	if b.South != b.North {
		p.Y = (ll.Lat - b.North) / (b.South - b.North) * 100
	}
	return p.Clamp()
}
