// internal/app/system/tooltip/position.go
package tooltip

// Offset is the gap between the pointer and the tooltip.
const Offset = 15

// Point is a page coordinate in pixels.
type Point struct {
	X float64 `json:"left"`
	Y float64 `json:"top"`
}

// Size is a width/height pair in pixels.
type Size struct {
	W float64
	H float64
}

// Position places a tooltip of the given size next to the pointer, flipping
// to the left or above when it would overflow the viewport.
func Position(pointer Point, tip Size, viewport Size) Point {
	p := Point{X: pointer.X + Offset, Y: pointer.Y + Offset}
	if p.X+tip.W > viewport.W {
		p.X = pointer.X - tip.W - Offset
	}
	if p.Y+tip.H > viewport.H {
		p.Y = pointer.Y - tip.H - Offset
	}
	return p
}
