package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/swillner/highlight-pointer/internal/config"
)

// fakeX records everything the controller drives, in call order, and plays
// the role of both the display session and the dot window.
type fakeX struct {
	x, y int // pointer position returned by PointerPosition

	cursorShown bool
	mapped      bool
	dotX, dotY  int
	lastPressed bool

	calls []string
}

func newFakeX() *fakeX {
	return &fakeX{cursorShown: true}
}

func (f *fakeX) ShowCursor() { f.cursorShown = true; f.calls = append(f.calls, "show-cursor") }
func (f *fakeX) HideCursor() { f.cursorShown = false; f.calls = append(f.calls, "hide-cursor") }

func (f *fakeX) PointerPosition() (int, int, error) { return f.x, f.y, nil }

func (f *fakeX) ShowAt(x, y int) {
	f.mapped, f.dotX, f.dotY = true, x, y
	f.calls = append(f.calls, "show-at")
}

func (f *fakeX) MoveTo(x, y int) {
	f.dotX, f.dotY = x, y
	f.calls = append(f.calls, "move")
}

func (f *fakeX) Hide() { f.mapped = false; f.calls = append(f.calls, "hide") }

func (f *fakeX) Redraw(pressed bool) {
	f.lastPressed = pressed
	f.calls = append(f.calls, "redraw")
}

func (f *fakeX) Raise() { f.calls = append(f.calls, "raise") }

func newTestController(fx *fakeX, opts config.Options, quit func()) *Controller {
	if quit == nil {
		quit = func() {}
	}
	return New(fx, fx, opts, quit, zap.NewNop())
}

func TestStartupDefaults(t *testing.T) {
	fx := newFakeX()
	fx.x, fx.y = 100, 100
	c := newTestController(fx, config.Default(), nil)
	c.Startup()

	assert.True(t, fx.mapped, "highlight starts mapped")
	assert.False(t, fx.cursorShown, "cursor starts hidden unless --show-cursor")
	assert.False(t, fx.lastPressed, "starts in released color")
}

func TestMotionTracksPointer(t *testing.T) {
	fx := newFakeX()
	c := newTestController(fx, config.Default(), nil)
	c.Startup()

	for _, pos := range [][2]int{{100, 100}, {5, 7}, {1920, 0}} {
		fx.x, fx.y = pos[0], pos[1]
		c.Motion()
		assert.Equal(t, pos[0], fx.dotX)
		assert.Equal(t, pos[1], fx.dotY)
		assert.True(t, fx.mapped)
	}
}

func TestButtonTransitionsDriveColor(t *testing.T) {
	fx := newFakeX()
	c := newTestController(fx, config.Default(), nil)
	c.Startup()

	c.ButtonPress()
	assert.True(t, fx.lastPressed)
	c.ButtonRelease()
	assert.False(t, fx.lastPressed)

	// A redraw from an expose keeps the pressed color while held.
	c.ButtonPress()
	c.Expose()
	assert.True(t, fx.lastPressed)
}

// A press followed by motion must redraw in pressed color before moving.
func TestPressThenMotionOrdering(t *testing.T) {
	fx := newFakeX()
	c := newTestController(fx, config.Default(), nil)
	c.Startup()
	fx.calls = nil

	c.ButtonPress()
	c.Motion()
	require.Equal(t, []string{"redraw", "move"}, fx.calls)
	assert.True(t, fx.lastPressed)
}

func TestIdleHidesAndMotionRestores(t *testing.T) {
	opts := config.Default()
	opts.AutohideHighlight = true
	opts.AutohideCursor = true
	opts.WantCursor = true

	fx := newFakeX()
	fx.x, fx.y = 50, 60
	c := newTestController(fx, opts, nil)
	c.Startup()
	require.True(t, fx.mapped)
	require.True(t, fx.cursorShown)

	c.IdleTick()
	assert.False(t, fx.mapped, "idle unmaps the highlight")
	assert.False(t, fx.cursorShown, "idle hides the cursor")

	fx.x, fx.y = 70, 80
	c.Motion()
	assert.True(t, fx.mapped, "motion re-maps the highlight")
	assert.True(t, fx.cursorShown, "motion re-shows the cursor")
	assert.Equal(t, 70, fx.dotX)
	assert.Equal(t, 80, fx.dotY)
}

// With auto-hide on but the highlight toggled off, motion must not map it.
func TestMotionRespectsWantHighlight(t *testing.T) {
	opts := config.Default()
	opts.AutohideHighlight = true
	opts.WantHighlight = false

	fx := newFakeX()
	c := newTestController(fx, opts, nil)
	c.Startup()
	require.False(t, fx.mapped)

	for i := 0; i < 5; i++ {
		c.Motion()
	}
	assert.False(t, fx.mapped)
}

// With the cursor explicitly hidden, motion must not re-show it.
func TestMotionRespectsWantCursor(t *testing.T) {
	opts := config.Default()
	opts.AutohideCursor = true
	opts.WantCursor = false

	fx := newFakeX()
	c := newTestController(fx, opts, nil)
	c.Startup()
	require.False(t, fx.cursorShown)

	c.Motion()
	assert.False(t, fx.cursorShown)
}

func TestToggleCursorRoundTrip(t *testing.T) {
	fx := newFakeX()
	c := newTestController(fx, config.Default(), nil)
	c.Startup()
	before := fx.cursorShown

	c.Hotkey(config.ActionToggleCursor)
	assert.NotEqual(t, before, fx.cursorShown)
	c.Hotkey(config.ActionToggleCursor)
	assert.Equal(t, before, fx.cursorShown)
}

func TestToggleHighlight(t *testing.T) {
	opts := config.Default()
	opts.WantHighlight = false

	fx := newFakeX()
	fx.x, fx.y = 33, 44
	c := newTestController(fx, opts, nil)
	c.Startup()
	require.False(t, fx.mapped)

	c.Hotkey(config.ActionToggleHighlight)
	assert.True(t, fx.mapped, "first toggle maps at the pointer")
	assert.Equal(t, 33, fx.dotX)
	assert.Equal(t, 44, fx.dotY)

	c.Hotkey(config.ActionToggleHighlight)
	assert.False(t, fx.mapped, "second toggle unmaps")
}

func TestToggleAutohideHighlight(t *testing.T) {
	fx := newFakeX()
	c := newTestController(fx, config.Default(), nil)
	c.Startup()

	// Auto-hide off: idle keeps the highlight mapped.
	c.IdleTick()
	assert.True(t, fx.mapped)

	c.Hotkey(config.ActionToggleAutohideHighlight)
	c.IdleTick()
	assert.False(t, fx.mapped)
}

func TestQuitHotkey(t *testing.T) {
	fx := newFakeX()
	quits := 0
	c := newTestController(fx, config.Default(), func() { quits++ })
	c.Startup()

	c.Hotkey(config.ActionQuit)
	assert.Equal(t, 1, quits)
}

// The cursor must be restored on shutdown no matter how it was hidden.
func TestShutdownRestoresCursor(t *testing.T) {
	t.Run("hidden at startup", func(t *testing.T) {
		fx := newFakeX()
		c := newTestController(fx, config.Default(), nil)
		c.Startup()
		require.False(t, fx.cursorShown)

		c.Shutdown()
		assert.True(t, fx.cursorShown)
		assert.False(t, fx.mapped)
	})

	t.Run("hidden by idle", func(t *testing.T) {
		opts := config.Default()
		opts.AutohideCursor = true
		opts.WantCursor = true
		fx := newFakeX()
		c := newTestController(fx, opts, nil)
		c.Startup()
		c.IdleTick()
		require.False(t, fx.cursorShown)

		c.Shutdown()
		assert.True(t, fx.cursorShown)
	})
}

func TestVisibilityChangeRaises(t *testing.T) {
	fx := newFakeX()
	c := newTestController(fx, config.Default(), nil)
	c.Startup()
	fx.calls = nil

	c.VisibilityChange()
	assert.Equal(t, []string{"raise"}, fx.calls)
}
