package overlay

import (
	"math"

	"github.com/jezek/xgb/xproto"
)

// Geometry derives all window and arc measurements from the dot radius and
// outline width.  The same Arc value is used for the shape mask and for the
// visible redraw; if the two ever diverged, a halo of click-transparent
// pixels would appear around the dot.
type Geometry struct {
	Radius  int
	Outline int // 0 for a filled disc
}

// Size is the square window edge length.
func (g Geometry) Size() int {
	return 2*(g.Radius+g.Outline) + 2
}

// TopLeft returns the window origin that centers the dot on the pointer.
func (g Geometry) TopLeft(x, y int) (int, int) {
	off := g.Radius + g.Outline + 1
	return x - off, y - off
}

// Arc is the full-circle arc shared by mask and redraw.  For an outlined
// ring the bounding box is inset by the outline width so the stroke stays
// inside the window.
func (g Geometry) Arc() xproto.Arc {
	d := uint16(2*g.Radius + 1)
	return xproto.Arc{
		X:      int16(g.Outline),
		Y:      int16(g.Outline),
		Width:  d,
		Height: d,
		Angle1: 0,
		Angle2: 360 * 64,
	}
}

// OpacityCardinal converts a [0,1] opacity to the 32-bit cardinal stored in
// _NET_WM_WINDOW_OPACITY.
func OpacityCardinal(opacity float64) uint32 {
	return uint32(math.Round(opacity * 0xFFFFFFFF))
}
