// Package input subscribes to the global input the overlay reacts to: raw
// XInput2 pointer events on all master devices, and the grabbed hotkeys.
package input

import (
	"fmt"

	x "github.com/linuxdeepin/go-x11-client"
	"github.com/linuxdeepin/go-x11-client/ext/input"
)

// RawKind is one kind of raw pointer event.
type RawKind int

const (
	RawMotion RawKind = iota
	RawButtonPress
	RawButtonRelease
)

// Watcher delivers raw XInput2 pointer events from all master devices.
// Raw events arrive regardless of which window has focus and carry no
// window-relative coordinates; the pointer position is queried from the
// root on demand.  The watcher owns a dedicated event connection so raw
// traffic never interleaves with the overlay's request stream.
type Watcher struct {
	conn   *x.Conn
	events chan RawKind
}

// WatchRaw opens the display (the DISPLAY environment variable when name is
// empty), negotiates XInput >= 2.2, and subscribes to raw motion and button
// events on the root window.
func WatchRaw(name string) (*Watcher, error) {
	conn, err := x.NewConnDisplay(name)
	if err != nil {
		return nil, fmt.Errorf("can't open display for raw input: %w", err)
	}
	if _, err := input.XIQueryVersion(conn, 2, 2).Reply(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("xinput extension not supported: %w", err)
	}

	root := conn.GetDefaultScreen().Root
	mask := uint32(input.XIEventMaskRawMotion |
		input.XIEventMaskRawButtonPress |
		input.XIEventMaskRawButtonRelease)
	err = input.XISelectEventsChecked(conn, root, []input.EventMask{
		{
			DeviceId: input.DeviceAllMaster,
			Mask:     []uint32{mask},
		},
	}).Check(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("select raw input events: %w", err)
	}

	w := &Watcher{
		conn:   conn,
		events: make(chan RawKind, 64),
	}
	xEvents := make(chan x.GenericEvent, 64)
	conn.AddEventChan(xEvents)
	extData := conn.GetExtensionData(input.Ext())
	go w.pump(xEvents, extData.MajorOpcode)
	return w, nil
}

// Events returns the raw event channel.  It is closed when the watcher's
// connection closes.
func (w *Watcher) Events() <-chan RawKind { return w.events }

// Close shuts the event connection down, ending the pump.
func (w *Watcher) Close() { w.conn.Close() }

// pump translates the connection's generic events into raw kinds.  Raw
// events arrive as GeGeneric events tagged with the input extension's major
// opcode.
func (w *Watcher) pump(xEvents <-chan x.GenericEvent, opcode uint8) {
	defer close(w.events)
	for ev := range xEvents {
		if ev.GetEventCode() != x.GeGenericEventCode {
			continue
		}
		geEvent, err := x.NewGeGenericEvent(ev)
		if err != nil || geEvent.Extension != opcode {
			continue
		}
		switch geEvent.EventType {
		case input.RawMotionEventCode:
			w.events <- RawMotion
		case input.RawButtonPressEventCode:
			w.events <- RawButtonPress
		case input.RawButtonReleaseEventCode:
			w.events <- RawButtonRelease
		}
	}
}
