// Package overlay implements the always-on-top shaped window that draws the
// dot.  The window is override-redirect, claims no input (its input shape is
// the empty region, so clicks fall through), and is clipped to the dot by a
// 1-bit bounding-shape pixmap.
package overlay

import (
	"fmt"

	"github.com/jezek/xgb/shape"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/ewmh"
	"github.com/jezek/xgbutil/icccm"
	"github.com/jezek/xgbutil/motif"
	"github.com/jezek/xgbutil/xprop"
	"github.com/jezek/xgbutil/xwindow"

	"github.com/swillner/highlight-pointer/internal/display"
)

const (
	wmInstance = "highlight-pointer"
	wmClass    = "HighlightPointer"
)

// Window is the dot window.  Created once at startup with a fixed geometry;
// radius and outline cannot change at runtime.
type Window struct {
	sess *display.Session
	win  *xwindow.Window
	gc   xproto.Gcontext
	geom Geometry
	pal  display.Palette
}

// New creates the window, applies its window-manager properties, clips it to
// the dot shape and empties its input shape.  The window starts unmapped.
func New(sess *display.Session, geom Geometry, pal display.Palette, opacity float64) (*Window, error) {
	xu := sess.XUtil()
	win, err := xwindow.Generate(xu)
	if err != nil {
		return nil, fmt.Errorf("generate window id: %w", err)
	}

	size := geom.Size()
	err = win.CreateChecked(
		sess.Root(),
		0, 0,
		size, size,
		xproto.CwOverrideRedirect|xproto.CwEventMask,
		1,
		uint32(xproto.EventMaskExposure|xproto.EventMaskVisibilityChange),
	)
	if err != nil {
		return nil, fmt.Errorf("create highlight window: %w", err)
	}

	w := &Window{sess: sess, win: win, geom: geom, pal: pal}

	if err := ewmh.WmNameSet(xu, win.Id, wmInstance); err != nil {
		return nil, fmt.Errorf("set window name: %w", err)
	}
	if err := icccm.WmClassSet(xu, win.Id, &icccm.WmClass{Instance: wmInstance, Class: wmClass}); err != nil {
		return nil, fmt.Errorf("set window class: %w", err)
	}

	// Compositors treat DND windows as transient overlays.
	if err := ewmh.WmWindowTypeSet(xu, win.Id, []string{"_NET_WM_WINDOW_TYPE_DND"}); err != nil {
		return nil, fmt.Errorf("set window type: %w", err)
	}
	// Legacy motif hints: no decorations even without EWMH support.
	hints := &motif.Hints{Flags: motif.HintDecorations}
	if err := motif.WmHintsSet(xu, win.Id, hints); err != nil {
		return nil, fmt.Errorf("set motif hints: %w", err)
	}
	// Stays-on-top is requested from the window manager via a client
	// message to the root.
	if err := ewmh.WmStateReq(xu, win.Id, ewmh.StateAdd, "_NET_WM_STATE_STAYS_ON_TOP"); err != nil {
		return nil, fmt.Errorf("request stays-on-top: %w", err)
	}
	if err := xprop.ChangeProp32(xu, win.Id, "_NET_WM_WINDOW_OPACITY", "CARDINAL", uint(OpacityCardinal(opacity))); err != nil {
		return nil, fmt.Errorf("set opacity: %w", err)
	}

	if err := w.emptyInputShape(); err != nil {
		return nil, err
	}

	gc, err := xproto.NewGcontextId(sess.Conn())
	if err != nil {
		return nil, fmt.Errorf("new gcontext id: %w", err)
	}
	w.gc = gc
	err = xproto.CreateGCChecked(
		sess.Conn(),
		gc,
		xproto.Drawable(win.Id),
		xproto.GcForeground|xproto.GcBackground,
		[]uint32{sess.Screen().WhitePixel, sess.Screen().BlackPixel},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("create gcontext: %w", err)
	}

	if err := w.setShape(); err != nil {
		return nil, err
	}
	return w, nil
}

// emptyInputShape sets the input shape to the empty region so that pointer
// events are delivered to whatever is beneath the dot.
func (w *Window) emptyInputShape() error {
	conn := w.sess.Conn()
	region, err := xfixes.NewRegionId(conn)
	if err != nil {
		return fmt.Errorf("new region id: %w", err)
	}
	defer xfixes.DestroyRegion(conn, region)

	if err := xfixes.CreateRegionChecked(conn, region, []xproto.Rectangle{{}}).Check(); err != nil {
		return fmt.Errorf("create empty region: %w", err)
	}
	if err := xfixes.SetWindowShapeRegionChecked(conn, w.win.Id, shape.SkInput, 0, 0, region).Check(); err != nil {
		return fmt.Errorf("set input shape: %w", err)
	}
	return nil
}

// setShape clips the window to the dot by drawing the arc into a 1-bit
// pixmap and combining it as the bounding shape.
func (w *Window) setShape() error {
	conn := w.sess.Conn()
	size := uint16(w.geom.Size())

	pixmap, err := xproto.NewPixmapId(conn)
	if err != nil {
		return fmt.Errorf("new pixmap id: %w", err)
	}
	if err := xproto.CreatePixmapChecked(conn, 1, pixmap, xproto.Drawable(w.win.Id), size, size).Check(); err != nil {
		return fmt.Errorf("create mask pixmap: %w", err)
	}
	defer xproto.FreePixmap(conn, pixmap)

	maskGC, err := xproto.NewGcontextId(conn)
	if err != nil {
		return fmt.Errorf("new mask gcontext id: %w", err)
	}
	if err := xproto.CreateGCChecked(conn, maskGC, xproto.Drawable(pixmap), xproto.GcForeground, []uint32{0}).Check(); err != nil {
		return fmt.Errorf("create mask gcontext: %w", err)
	}
	defer xproto.FreeGC(conn, maskGC)

	xproto.PolyFillRectangle(conn, xproto.Drawable(pixmap), maskGC,
		[]xproto.Rectangle{{X: 0, Y: 0, Width: size, Height: size}})

	w.drawDot(xproto.Drawable(pixmap), maskGC, 1)

	shape.Mask(conn, shape.SoSet, shape.SkBounding, w.win.Id, 0, 0, pixmap)
	return nil
}

// drawDot draws the dot arc with the given foreground pixel.  Mask and
// redraw both go through here so their geometry cannot drift apart.
func (w *Window) drawDot(d xproto.Drawable, gc xproto.Gcontext, pixel uint32) {
	conn := w.sess.Conn()
	arc := w.geom.Arc()
	if w.geom.Outline > 0 {
		xproto.ChangeGC(conn, gc,
			xproto.GcForeground|xproto.GcLineWidth|xproto.GcCapStyle|xproto.GcJoinStyle,
			[]uint32{pixel, uint32(w.geom.Outline), xproto.CapStyleButt, xproto.JoinStyleBevel})
		xproto.PolyArc(conn, d, gc, []xproto.Arc{arc})
		return
	}
	xproto.ChangeGC(conn, gc, xproto.GcForeground, []uint32{pixel})
	xproto.PolyFillArc(conn, d, gc, []xproto.Arc{arc})
}

// Redraw paints the dot in the pressed or released color.
func (w *Window) Redraw(pressed bool) {
	pixel := w.pal.Released
	if pressed {
		pixel = w.pal.Pressed
	}
	w.drawDot(xproto.Drawable(w.win.Id), w.gc, pixel)
}

// ShowAt moves the window so the dot is centered on (x, y) and maps it.
// The caller redraws afterwards.
func (w *Window) ShowAt(x, y int) {
	tx, ty := w.geom.TopLeft(x, y)
	w.win.Move(tx, ty)
	w.win.Map()
}

// MoveTo recenters the mapped window on (x, y).
func (w *Window) MoveTo(x, y int) {
	tx, ty := w.geom.TopLeft(x, y)
	w.win.Move(tx, ty)
}

// Hide unmaps the window.
func (w *Window) Hide() {
	w.win.Unmap()
}

// Raise puts the window back on top of the stack; needed when menus or
// popups overlap it.
func (w *Window) Raise() {
	xproto.ConfigureWindow(w.sess.Conn(), w.win.Id,
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

// Destroy releases the graphics context and the window.
func (w *Window) Destroy() {
	w.win.Unmap()
	xproto.FreeGC(w.sess.Conn(), w.gc)
	w.win.Destroy()
}
