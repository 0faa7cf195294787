// Package display owns the X server connection and the per-screen handles
// the rest of the program works against: the root window, the default
// colormap, and the shape/xfixes extensions.
package display

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/shape"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil"
	"github.com/jezek/xgbutil/keybind"
)

// Session is the connection to one X display.  It is created once at
// startup and closed once at exit; all fields are read-only after Connect.
type Session struct {
	xu     *xgbutil.XUtil
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	root   xproto.Window
}

// Connect opens the display (the DISPLAY environment variable when name is
// empty) and negotiates the extensions this program depends on.
func Connect(name string) (*Session, error) {
	xu, err := xgbutil.NewConnDisplay(name)
	if err != nil {
		return nil, fmt.Errorf("can't open display: %w", err)
	}
	s := &Session{
		xu:     xu,
		conn:   xu.Conn(),
		screen: xu.Screen(),
		root:   xu.RootWin(),
	}

	if err := shape.Init(s.conn); err != nil {
		s.conn.Close()
		return nil, fmt.Errorf("shape extension not supported: %w", err)
	}
	if err := xfixes.Init(s.conn); err != nil {
		s.conn.Close()
		return nil, fmt.Errorf("xfixes extension not supported: %w", err)
	}
	// Cursor show/hide needs XFixes >= 4; negotiate before any other
	// xfixes request.
	if _, err := xfixes.QueryVersion(s.conn, 5, 0).Reply(); err != nil {
		s.conn.Close()
		return nil, fmt.Errorf("query xfixes version: %w", err)
	}

	keybind.Initialize(xu)
	return s, nil
}

// Conn returns the raw protocol connection.
func (s *Session) Conn() *xgb.Conn { return s.conn }

// XUtil returns the xgbutil wrapper around the connection.
func (s *Session) XUtil() *xgbutil.XUtil { return s.xu }

// Screen returns the default screen.
func (s *Session) Screen() *xproto.ScreenInfo { return s.screen }

// Root returns the root window of the default screen.
func (s *Session) Root() xproto.Window { return s.root }

// PointerPosition queries the pointer coordinates relative to the root.
func (s *Session) PointerPosition() (int, int, error) {
	reply, err := xproto.QueryPointer(s.conn, s.root).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("query pointer: %w", err)
	}
	return int(reply.RootX), int(reply.RootY), nil
}

// ShowCursor makes the system cursor visible again.
func (s *Session) ShowCursor() {
	xfixes.ShowCursor(s.conn, s.root)
}

// HideCursor hides the system cursor on the whole screen.
func (s *Session) HideCursor() {
	xfixes.HideCursor(s.conn, s.root)
}

// Sync flushes the request buffer and waits for the server to process it.
func (s *Session) Sync() {
	s.conn.Sync()
}

// Close shuts the connection down.  Any pump goroutine blocked in
// WaitForEvent returns once the connection is closed.
func (s *Session) Close() {
	s.conn.Close()
}
