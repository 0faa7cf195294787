package controller

import (
	"testing"
	"time"

	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/swillner/highlight-pointer/internal/config"
	"github.com/swillner/highlight-pointer/internal/input"
)

func TestThrottle(t *testing.T) {
	base := time.Unix(0, 0)

	// Disabled: every motion is processed.
	assert.False(t, throttled(0, base, base.Add(time.Millisecond)))
	assert.False(t, throttled(-1, base, base.Add(time.Millisecond)))

	// 50 fps leaves 20ms between processed motions.
	assert.True(t, throttled(50, base, base.Add(10*time.Millisecond)), "within the frame interval")
	assert.True(t, throttled(50, base, base.Add(20*time.Millisecond)), "exactly at the interval boundary")
	assert.False(t, throttled(50, base, base.Add(21*time.Millisecond)))
}

// Raw pointer events from the watcher must drive the same transitions as
// the corresponding controller calls.
func TestRawDispatch(t *testing.T) {
	fx := newFakeX()
	c := newTestController(fx, config.Default(), nil)
	c.Startup()
	l := &Loop{ctrl: c}

	now := time.Now()
	l.rawDispatch(input.RawButtonPress, now)
	assert.True(t, fx.lastPressed)

	fx.x, fx.y = 40, 50
	l.rawDispatch(input.RawMotion, now)
	assert.Equal(t, 40, fx.dotX)
	assert.Equal(t, 50, fx.dotY)

	l.rawDispatch(input.RawButtonRelease, now)
	assert.False(t, fx.lastPressed)
}

func TestClassify(t *testing.T) {
	log := zap.NewNop()

	assert.NoError(t, classify(xproto.AtomError{NiceName: "Atom"}, log),
		"bad atoms from optional property writes are benign")
	assert.Error(t, classify(xproto.WindowError{NiceName: "Window"}, log))
	assert.Error(t, classify(xproto.AccessError{NiceName: "Access"}, log))
}
