package config

import (
	"fmt"

	"github.com/jezek/xgb/xproto"
)

// KeySpec is a parsed hotkey: a modifier mask and an X keysym name.  The
// name is resolved to keycodes once the display connection is open.
type KeySpec struct {
	Modifiers uint16
	Key       string
}

// Modifier letters accepted in key specs, in the order they are documented.
var modifierMasks = map[byte]uint16{
	'S': xproto.ModMaskShift,   // shift
	'C': xproto.ModMaskControl, // control
	'M': xproto.ModMask1,       // alt/meta
	'H': xproto.ModMask4,       // super/"windows"
}

// ParseKeySpec parses a hotkey of the form "[MOD-]...KEY", e.g. "H-Left" or
// "C-S-a".  KEY is an X keysym name and is validated later against the
// server's keysym table.
func ParseKeySpec(s string) (KeySpec, error) {
	var spec KeySpec
	rest := s
	for len(rest) >= 2 && rest[1] == '-' {
		mask, ok := modifierMasks[rest[0]]
		if !ok {
			return KeySpec{}, fmt.Errorf("unknown modifier %q in key %q", string(rest[0]), s)
		}
		spec.Modifiers |= mask
		rest = rest[2:]
	}
	if rest == "" {
		return KeySpec{}, fmt.Errorf("missing key name in %q", s)
	}
	spec.Key = rest
	return spec, nil
}
