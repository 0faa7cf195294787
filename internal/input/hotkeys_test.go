package input

import (
	"testing"

	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/assert"

	"github.com/swillner/highlight-pointer/internal/config"
)

// The collision diagnostic is printed to stderr as-is and users match on
// its exact wording.
func TestHotkeyTakenMessage(t *testing.T) {
	assert.EqualError(t, ErrHotkeyTaken,
		"Key combination already grabbed by a different process")
}

func TestLockVariants(t *testing.T) {
	assert.Equal(t,
		[]uint16{0, xproto.ModMaskLock, xproto.ModMask2, xproto.ModMask2 | xproto.ModMaskLock},
		lockVariants(xproto.ModMask2))

	// Without a NumLock modifier the four variants collapse to two;
	// grabbing the same combination twice would fail.
	assert.Equal(t, []uint16{0, xproto.ModMaskLock}, lockVariants(0))
}

func TestLookupMasksLockModifiers(t *testing.T) {
	h := &Hotkeys{
		lockMask: xproto.ModMask2 | xproto.ModMaskLock,
		bindings: []binding{
			{action: config.ActionQuit, keycodes: []xproto.Keycode{24}, modifiers: 0},
			{action: config.ActionToggleHighlight, keycodes: []xproto.Keycode{43}, modifiers: xproto.ModMask4},
		},
	}

	action, ok := h.Lookup(24, 0)
	assert.True(t, ok)
	assert.Equal(t, config.ActionQuit, action)

	// NumLock and CapsLock must not break matching.
	action, ok = h.Lookup(43, xproto.ModMask4|xproto.ModMask2|xproto.ModMaskLock)
	assert.True(t, ok)
	assert.Equal(t, config.ActionToggleHighlight, action)

	// A real extra modifier must.
	_, ok = h.Lookup(43, xproto.ModMask4|xproto.ModMaskShift)
	assert.False(t, ok)

	// Unbound keycode.
	_, ok = h.Lookup(99, 0)
	assert.False(t, ok)
}
