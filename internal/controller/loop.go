package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"go.uber.org/zap"

	"github.com/swillner/highlight-pointer/internal/display"
	"github.com/swillner/highlight-pointer/internal/input"
	"github.com/swillner/highlight-pointer/internal/logger"
)

// targetFPS throttles raw motion processing when set above zero: motions
// arriving closer together than one frame interval are dropped.  Zero
// processes every motion event.
const targetFPS = 0

// Loop multiplexes the display connection, the raw input channel, the quit
// channel, and the idle timeout, and dispatches to the controller.
// Single-threaded: the pump goroutines only ferry events into channels; all
// state changes happen on the Run goroutine.
type Loop struct {
	sess        *display.Session
	ctrl        *Controller
	keys        *input.Hotkeys
	raw         <-chan input.RawKind
	hideTimeout time.Duration

	lastMotion time.Time
}

// NewLoop wires the event loop together.
func NewLoop(sess *display.Session, ctrl *Controller, keys *input.Hotkeys, raw <-chan input.RawKind, hideTimeout time.Duration) *Loop {
	return &Loop{
		sess:        sess,
		ctrl:        ctrl,
		keys:        keys,
		raw:         raw,
		hideTimeout: hideTimeout,
	}
}

// Run blocks until ctx is cancelled (signal), quit is closed (quit hotkey),
// or a fatal display error occurs.  The caller performs shutdown.
func (l *Loop) Run(ctx context.Context, quit <-chan struct{}) error {
	log := logger.L(ctx)

	events := make(chan xgb.Event, 64)
	xerrs := make(chan xgb.Error, 16)
	go l.pump(events, xerrs)

	timer := time.NewTimer(l.hideTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("signal received, shutting down")
			return nil

		case <-quit:
			log.Info("quit requested, shutting down")
			return nil

		case xerr := <-xerrs:
			if err := classify(xerr, log); err != nil {
				return err
			}

		case kind, ok := <-l.raw:
			if !ok {
				return errors.New("raw input connection closed")
			}
			l.rawDispatch(kind, time.Now())
			if err := l.drain(events, xerrs, log); err != nil {
				return err
			}
			resetTimer(timer, l.hideTimeout)

		case ev, ok := <-events:
			if !ok {
				return errors.New("display connection closed")
			}
			l.dispatch(ev)
			if err := l.drain(events, xerrs, log); err != nil {
				return err
			}
			resetTimer(timer, l.hideTimeout)

		case <-timer.C:
			l.ctrl.IdleTick()
			timer.Reset(l.hideTimeout)
		}
	}
}

// pump ferries events and asynchronous errors off the connection.  It exits
// when the connection is closed, closing the event channel behind it.
func (l *Loop) pump(events chan<- xgb.Event, xerrs chan<- xgb.Error) {
	for {
		ev, xerr := l.sess.Conn().WaitForEvent()
		if ev == nil && xerr == nil {
			close(events)
			return
		}
		if xerr != nil {
			xerrs <- xerr
			continue
		}
		events <- ev
	}
}

// drain empties whatever else is already pending before the idle timer is
// rearmed, so a burst of events counts as one batch.
func (l *Loop) drain(events <-chan xgb.Event, xerrs <-chan xgb.Error, log *zap.Logger) error {
	for {
		select {
		case xerr := <-xerrs:
			if err := classify(xerr, log); err != nil {
				return err
			}
		case kind, ok := <-l.raw:
			if !ok {
				return errors.New("raw input connection closed")
			}
			l.rawDispatch(kind, time.Now())
		case ev, ok := <-events:
			if !ok {
				return errors.New("display connection closed")
			}
			l.dispatch(ev)
		default:
			return nil
		}
	}
}

// rawDispatch translates one raw pointer event into a controller
// transition.
func (l *Loop) rawDispatch(kind input.RawKind, now time.Time) {
	switch kind {
	case input.RawMotion:
		if throttled(targetFPS, l.lastMotion, now) {
			return
		}
		l.lastMotion = now
		l.ctrl.Motion()

	case input.RawButtonPress:
		l.ctrl.ButtonPress()

	case input.RawButtonRelease:
		l.ctrl.ButtonRelease()
	}
}

// dispatch translates one X event into a controller transition.
func (l *Loop) dispatch(ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.KeyPressEvent:
		if action, ok := l.keys.Lookup(e.Detail, e.State); ok {
			l.ctrl.Hotkey(action)
		}

	case xproto.ExposeEvent:
		// More expose events follow; repaint once on the last.
		if e.Count == 0 {
			l.ctrl.Expose()
		}

	case xproto.VisibilityNotifyEvent:
		l.ctrl.VisibilityChange()
	}
}

// throttled reports whether a motion arriving at now falls inside the
// minimum frame interval since the last processed motion.  fps <= 0
// disables the throttle.
func throttled(fps int, last, now time.Time) bool {
	if fps <= 0 {
		return false
	}
	return now.Sub(last) <= time.Second/time.Duration(fps)
}

// classify sorts an asynchronous display error into benign (logged,
// continue) or fatal (returned, ends the loop).
func classify(xerr xgb.Error, log *zap.Logger) error {
	switch xerr.(type) {
	case xproto.AtomError:
		// Optional property writes may hit servers without the atom.
		log.Warn("x warning", zap.String("error", xerr.Error()))
		return nil
	default:
		return fmt.Errorf("x error: %s", xerr.Error())
	}
}

// resetTimer rearms a timer that has not fired publicly yet.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
