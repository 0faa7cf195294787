// Package controller is the overlay state machine and its event loop.
//
// The controller separates what the user asked for (wantCursor,
// wantHighlight) from what is currently on screen (cursorVisible,
// highlightVisible): auto-hide may suppress the cursor or the dot while
// idle without losing the user's toggle, and the next motion event
// re-converges the two.
package controller

import (
	"go.uber.org/zap"

	"github.com/swillner/highlight-pointer/internal/config"
)

// Display is the subset of the X session the controller drives.  Cursor
// visibility calls are fire-and-forget; failures surface on the
// connection's asynchronous error channel.
type Display interface {
	ShowCursor()
	HideCursor()
	PointerPosition() (x, y int, err error)
}

// Dot is the overlay window.  All calls are fire-and-forget, like Display.
type Dot interface {
	ShowAt(x, y int)
	MoveTo(x, y int)
	Hide()
	Redraw(pressed bool)
	Raise()
}

// Controller owns all runtime state.  It is confined to the event loop
// goroutine; none of its methods are safe for concurrent use.
type Controller struct {
	disp Display
	dot  Dot
	quit func()
	log  *zap.Logger

	// User-level desires, flipped by hotkeys.
	wantCursor        bool
	wantHighlight     bool
	autohideCursor    bool
	autohideHighlight bool

	// Current on-screen state.
	buttonPressed    bool
	cursorVisible    bool
	highlightVisible bool
}

// New builds a controller from the startup options.  quit is invoked by the
// quit hotkey and must be safe to call more than once.
func New(disp Display, dot Dot, opts config.Options, quit func(), log *zap.Logger) *Controller {
	return &Controller{
		disp:              disp,
		dot:               dot,
		quit:              quit,
		log:               log,
		wantCursor:        opts.WantCursor,
		wantHighlight:     opts.WantHighlight,
		autohideCursor:    opts.AutohideCursor,
		autohideHighlight: opts.AutohideHighlight,
		cursorVisible:     true, // the X cursor starts visible
	}
}

// Startup applies the initial desires: map the dot and hide the system
// cursor as configured.
func (c *Controller) Startup() {
	if c.wantHighlight {
		c.showHighlight()
	}
	if !c.wantCursor {
		c.hideCursor()
	}
}

// Shutdown restores the system cursor and unmaps the dot.  It must run on
// every exit path so the user is never left without a cursor.
func (c *Controller) Shutdown() {
	if !c.cursorVisible {
		c.showCursor()
	}
	c.dot.Hide()
	c.highlightVisible = false
}

// Motion handles a raw pointer motion: it ends any auto-hide suppression
// (but never overrides an explicit user toggle) and keeps the dot centered
// on the pointer.
func (c *Controller) Motion() {
	if c.autohideCursor && c.wantCursor && !c.cursorVisible {
		c.showCursor()
	}
	if c.autohideHighlight && c.wantHighlight && !c.highlightVisible {
		c.showHighlight()
	} else if c.highlightVisible {
		x, y, err := c.disp.PointerPosition()
		if err != nil {
			c.log.Warn("query pointer", zap.Error(err))
			return
		}
		c.dot.MoveTo(x, y)
	}
}

// ButtonPress repaints the dot in the pressed color.  The dot is not
// re-moved; a motion event follows if the pointer actually moved.
func (c *Controller) ButtonPress() {
	c.buttonPressed = true
	c.dot.Redraw(true)
}

// ButtonRelease repaints the dot in the released color.
func (c *Controller) ButtonRelease() {
	c.buttonPressed = false
	c.dot.Redraw(false)
}

// IdleTick fires when no event arrived for the hide timeout.
func (c *Controller) IdleTick() {
	if c.autohideCursor && c.cursorVisible {
		c.hideCursor()
	}
	if c.autohideHighlight && c.highlightVisible {
		c.hideHighlight()
	}
}

// Expose repaints the dot.
func (c *Controller) Expose() {
	c.dot.Redraw(c.buttonPressed)
}

// VisibilityChange re-asserts stays-on-top against menus and popups that
// were stacked above the dot.
func (c *Controller) VisibilityChange() {
	c.dot.Raise()
}

// Hotkey dispatches a bound action.
func (c *Controller) Hotkey(action config.Action) {
	c.log.Debug("hotkey", zap.Stringer("action", action))
	switch action {
	case config.ActionQuit:
		c.quit()

	case config.ActionToggleCursor:
		c.wantCursor = !c.wantCursor
		if c.wantCursor && !c.cursorVisible {
			c.showCursor()
		} else if !c.wantCursor && c.cursorVisible {
			c.hideCursor()
		}

	case config.ActionToggleHighlight:
		if c.wantHighlight {
			c.hideHighlight()
		} else {
			c.showHighlight()
		}
		c.wantHighlight = !c.wantHighlight

	case config.ActionToggleAutohideCursor:
		c.autohideCursor = !c.autohideCursor

	case config.ActionToggleAutohideHighlight:
		c.autohideHighlight = !c.autohideHighlight
	}
}

func (c *Controller) showCursor() {
	c.disp.ShowCursor()
	c.cursorVisible = true
}

func (c *Controller) hideCursor() {
	c.disp.HideCursor()
	c.cursorVisible = false
}

// showHighlight maps the dot centered on the current pointer position.
func (c *Controller) showHighlight() {
	x, y, err := c.disp.PointerPosition()
	if err != nil {
		c.log.Warn("query pointer", zap.Error(err))
		return
	}
	c.dot.ShowAt(x, y)
	c.dot.Redraw(c.buttonPressed)
	c.highlightVisible = true
}

func (c *Controller) hideHighlight() {
	c.dot.Hide()
	c.highlightVisible = false
}
