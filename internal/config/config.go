// Package config holds the immutable startup options of highlight-pointer.
package config

import (
	"fmt"
)

// Action is a hotkey-triggerable operation.
type Action int

const (
	ActionQuit Action = iota
	ActionToggleCursor
	ActionToggleHighlight
	ActionToggleAutohideCursor
	ActionToggleAutohideHighlight
)

// Actions lists all actions in a stable order, for deterministic grab and
// ungrab sequences.
var Actions = []Action{
	ActionQuit,
	ActionToggleCursor,
	ActionToggleHighlight,
	ActionToggleAutohideCursor,
	ActionToggleAutohideHighlight,
}

func (a Action) String() string {
	switch a {
	case ActionQuit:
		return "quit"
	case ActionToggleCursor:
		return "toggle-cursor"
	case ActionToggleHighlight:
		return "toggle-highlight"
	case ActionToggleAutohideCursor:
		return "toggle-auto-hide-cursor"
	case ActionToggleAutohideHighlight:
		return "toggle-auto-hide-highlight"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Options are built once from the CLI and are read-only afterwards; the
// runtime toggles (cursor/highlight desires, auto-hide) are copied into the
// controller at startup and mutated there.
type Options struct {
	ReleasedColor string
	PressedColor  string
	Radius        int
	Outline       int
	Opacity       float64
	HideTimeout   int // seconds

	WantCursor        bool // start with the system cursor shown
	WantHighlight     bool // start with the highlight shown
	AutohideCursor    bool
	AutohideHighlight bool

	// Hotkeys maps bound actions to their parsed key specs.  Unbound
	// actions are absent.
	Hotkeys map[Action]KeySpec

	Display string
	Verbose bool
}

// Default returns the option defaults of the original program.
func Default() Options {
	return Options{
		ReleasedColor: "#d62728",
		PressedColor:  "#1f77b4",
		Radius:        5,
		Outline:       0,
		Opacity:       1.0,
		HideTimeout:   3,
		WantCursor:    false,
		WantHighlight: true,
		Hotkeys:       make(map[Action]KeySpec),
	}
}

// Validate checks numeric bounds.  Key specs are validated at parse time and
// key names once the display is open.
func (o *Options) Validate() error {
	if o.Radius <= 0 {
		return fmt.Errorf("invalid radius value %d", o.Radius)
	}
	if o.Outline < 0 {
		return fmt.Errorf("invalid outline value %d", o.Outline)
	}
	if o.HideTimeout <= 0 {
		return fmt.Errorf("invalid timeout value %d", o.HideTimeout)
	}
	if o.Opacity < 0 || o.Opacity > 1 {
		return fmt.Errorf("invalid opacity value %g", o.Opacity)
	}
	return nil
}
