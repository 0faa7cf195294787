package input

import (
	"errors"
	"fmt"

	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/keybind"

	"github.com/swillner/highlight-pointer/internal/config"
	"github.com/swillner/highlight-pointer/internal/display"
)

// ErrHotkeyTaken is printed verbatim on stderr when another client already
// holds one of the requested grabs, so it reads as a diagnostic rather than
// a wrapped error.
var ErrHotkeyTaken = errors.New("Key combination already grabbed by a different process")

// binding is one grabbed hotkey: the action it triggers, the keycodes its
// keysym resolves to, and the exact (lock-free) modifier mask to match.
type binding struct {
	action    config.Action
	keycodes  []xproto.Keycode
	modifiers uint16
}

// Hotkeys holds the grabbed bindings and the lock-modifier mask that is
// stripped from incoming key events before matching.
type Hotkeys struct {
	sess     *display.Session
	bindings []binding
	lockMask uint16
}

// Grab registers every configured hotkey on the root window.  To tolerate
// lock modifiers, each combination is grabbed four times: plain, with
// CapsLock, with NumLock, and with both.  A grab already owned by another
// process surfaces as an Access error.
func Grab(sess *display.Session, specs map[config.Action]config.KeySpec) (*Hotkeys, error) {
	numLock := numLockMask(sess)
	h := &Hotkeys{
		sess:     sess,
		lockMask: numLock | xproto.ModMaskLock,
	}

	variants := lockVariants(numLock)
	for _, action := range config.Actions {
		spec, ok := specs[action]
		if !ok {
			continue
		}
		codes := keybind.StrToKeycodes(sess.XUtil(), spec.Key)
		if len(codes) == 0 {
			return nil, fmt.Errorf("could not convert key %q to keycode", spec.Key)
		}
		for _, code := range codes {
			for _, variant := range variants {
				err := xproto.GrabKeyChecked(sess.Conn(), true, sess.Root(),
					spec.Modifiers|variant, code,
					xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
				if err != nil {
					if isAccessError(err) {
						return nil, ErrHotkeyTaken
					}
					return nil, fmt.Errorf("grab key %q: %w", spec.Key, err)
				}
			}
		}
		h.bindings = append(h.bindings, binding{
			action:    action,
			keycodes:  codes,
			modifiers: spec.Modifiers,
		})
	}

	// Grabs are asynchronous on both keyboard and pointer; release any
	// frozen event processing and make sure every grab reached the server.
	xproto.AllowEvents(sess.Conn(), xproto.AllowSyncBoth, xproto.TimeCurrentTime)
	sess.Sync()
	return h, nil
}

// Lookup matches a key press against the bindings, ignoring lock modifiers.
func (h *Hotkeys) Lookup(code xproto.Keycode, state uint16) (config.Action, bool) {
	mods := state &^ h.lockMask
	for _, b := range h.bindings {
		if b.modifiers != mods {
			continue
		}
		for _, c := range b.keycodes {
			if c == code {
				return b.action, true
			}
		}
	}
	return 0, false
}

// Ungrab releases every key grab this client holds on the root.
func (h *Hotkeys) Ungrab() {
	// Keycode 0 is AnyKey.
	xproto.UngrabKey(h.sess.Conn(), 0, h.sess.Root(), xproto.ModMaskAny)
}

// lockVariants returns the deduplicated modifier variants to grab with.
// When no NumLock modifier exists, the NumLock entries collapse into the
// plain/CapsLock ones; regrabbing an identical combination would itself
// raise an Access error.
func lockVariants(numLock uint16) []uint16 {
	variants := []uint16{0, xproto.ModMaskLock, numLock, numLock | xproto.ModMaskLock}
	seen := make(map[uint16]bool, len(variants))
	out := variants[:0]
	for _, v := range variants {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// numLockMask scans the modifier mapping for the modifier the NumLock
// keysym is attached to, the way dwm does it.
func numLockMask(sess *display.Session) uint16 {
	codes := keybind.StrToKeycodes(sess.XUtil(), "Num_Lock")
	if len(codes) == 0 {
		return 0
	}
	reply, err := xproto.GetModifierMapping(sess.Conn()).Reply()
	if err != nil {
		return 0
	}
	per := int(reply.KeycodesPerModifier)
	for mod := 0; mod < 8; mod++ {
		for j := 0; j < per; j++ {
			mapped := reply.Keycodes[mod*per+j]
			for _, c := range codes {
				if mapped == c {
					return 1 << uint(mod)
				}
			}
		}
	}
	return 0
}

// isAccessError reports whether err is the X Access error a conflicting
// grab produces.
func isAccessError(err error) bool {
	_, ok := err.(xproto.AccessError)
	return ok
}
