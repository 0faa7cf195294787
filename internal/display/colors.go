package display

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jezek/xgb/xproto"
)

// Palette holds the two pixel values the dot is drawn with, allocated once
// from the default colormap.
type Palette struct {
	Released uint32
	Pressed  uint32
}

// AllocPalette resolves both color strings to colormap pixels.
func (s *Session) AllocPalette(released, pressed string) (Palette, error) {
	var p Palette
	var err error
	if p.Released, err = s.allocColor(released); err != nil {
		return Palette{}, err
	}
	if p.Pressed, err = s.allocColor(pressed); err != nil {
		return Palette{}, err
	}
	return p, nil
}

// allocColor resolves a "#rrggbb" spec client-side and anything else through
// the server's named color table.
func (s *Session) allocColor(spec string) (uint32, error) {
	cmap := s.screen.DefaultColormap
	if strings.HasPrefix(spec, "#") {
		r, g, b, err := parseHexColor(spec)
		if err != nil {
			return 0, fmt.Errorf("can't allocate color %q: %w", spec, err)
		}
		reply, err := xproto.AllocColor(s.conn, cmap, r, g, b).Reply()
		if err != nil {
			return 0, fmt.Errorf("can't allocate color %q: %w", spec, err)
		}
		return reply.Pixel, nil
	}
	reply, err := xproto.AllocNamedColor(s.conn, cmap, uint16(len(spec)), spec).Reply()
	if err != nil {
		return 0, fmt.Errorf("can't allocate color %q: %w", spec, err)
	}
	return reply.Pixel, nil
}

// parseHexColor splits "#rrggbb" into 16-bit channel values.
func parseHexColor(spec string) (r, g, b uint16, err error) {
	hex := spec[1:]
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("want #rrggbb")
	}
	var ch [3]uint16
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("want #rrggbb")
		}
		// Scale 8-bit to the protocol's 16-bit channels.
		ch[i] = uint16(v) * 0x101
	}
	return ch[0], ch[1], ch[2], nil
}
