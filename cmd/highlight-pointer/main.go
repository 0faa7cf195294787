// Command highlight-pointer highlights the mouse pointer with a colored
// dot, useful for presentations and screen sharing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/swillner/highlight-pointer/internal/config"
	"github.com/swillner/highlight-pointer/internal/controller"
	"github.com/swillner/highlight-pointer/internal/display"
	"github.com/swillner/highlight-pointer/internal/input"
	"github.com/swillner/highlight-pointer/internal/logger"
	"github.com/swillner/highlight-pointer/internal/overlay"
)

const keyHelp = `Hotkeys are global and can only be used if not set yet by a different
process.  Keys can be given with modifiers 'S' (shift key), 'C' (ctrl key),
'M' (alt/meta key), 'H' (super/"windows" key) delimited by a '-'.  Key names
themselves are parsed by X, so chars like a...z can be given directly;
special keys are named as in X's keysym table.

Examples: 'H-Left', 'C-S-a'`

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	opts := config.Default()
	var hideHighlight, showCursor bool
	keyFlags := make(map[config.Action]*string, len(config.Actions))

	cmd := &cobra.Command{
		Use:           "highlight-pointer",
		Short:         "Highlight the mouse pointer with a colored dot",
		Long:          "Highlight the mouse pointer with a colored dot - useful for\npresentations and screen sharing.\n\n" + keyHelp,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.WantHighlight = !hideHighlight
			opts.WantCursor = showCursor
			for action, value := range keyFlags {
				if *value == "" {
					continue
				}
				spec, err := config.ParseKeySpec(*value)
				if err != nil {
					return fmt.Errorf("could not parse key value %q: %w", *value, err)
				}
				opts.Hotkeys[action] = spec
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			return highlight(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.ReleasedColor, "released-color", "c", opts.ReleasedColor, "dot color when mouse button released")
	flags.StringVarP(&opts.PressedColor, "pressed-color", "p", opts.PressedColor, "dot color when mouse button pressed")
	flags.IntVarP(&opts.Outline, "outline", "o", opts.Outline, "line width of outline or 0 for filled dot")
	flags.IntVarP(&opts.Radius, "radius", "r", opts.Radius, "dot radius in pixels")
	flags.Float64Var(&opts.Opacity, "opacity", opts.Opacity, "window opacity between 0.0 and 1.0")
	flags.IntVarP(&opts.HideTimeout, "hide-timeout", "t", opts.HideTimeout, "timeout for hiding when idle, in seconds")
	flags.BoolVar(&opts.AutohideCursor, "auto-hide-cursor", false, "hide cursor when not moving after timeout")
	flags.BoolVar(&opts.AutohideHighlight, "auto-hide-highlight", false, "hide highlighter when not moving after timeout")
	flags.BoolVar(&hideHighlight, "hide-highlight", false, "start with highlighter hidden")
	flags.BoolVar(&showCursor, "show-cursor", false, "start with cursor shown")
	flags.StringVar(&opts.Display, "display", "", "X display to connect to (defaults to the DISPLAY environment variable)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")

	keyFlagHelp := map[config.Action]string{
		config.ActionQuit:                    "quit",
		config.ActionToggleCursor:            "toggle cursor visibility",
		config.ActionToggleHighlight:         "toggle highlight visibility",
		config.ActionToggleAutohideCursor:    "toggle auto-hiding cursor when not moving",
		config.ActionToggleAutohideHighlight: "toggle auto-hiding highlight when not moving",
	}
	for _, action := range config.Actions {
		keyFlags[action] = flags.String("key-"+action.String(), "", keyFlagHelp[action])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return cmd.ExecuteContext(ctx)
}

// highlight runs the overlay until a signal, the quit hotkey, or a fatal
// display error.  Resources are acquired in a fixed order and the deferred
// releases run in reverse, on error paths included.
func highlight(ctx context.Context, opts config.Options) error {
	var l *zap.Logger
	var err error
	if opts.Verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(l)
	defer l.Sync() //nolint:errcheck
	ctx = logger.NewContext(ctx, l)

	sess, err := display.Connect(opts.Display)
	if err != nil {
		return err
	}
	defer sess.Close()

	pal, err := sess.AllocPalette(opts.ReleasedColor, opts.PressedColor)
	if err != nil {
		return err
	}

	geom := overlay.Geometry{Radius: opts.Radius, Outline: opts.Outline}
	dot, err := overlay.New(sess, geom, pal, opts.Opacity)
	if err != nil {
		return err
	}
	defer dot.Destroy()

	raw, err := input.WatchRaw(opts.Display)
	if err != nil {
		return err
	}
	defer raw.Close()

	keys, err := input.Grab(sess, opts.Hotkeys)
	if err != nil {
		return err
	}
	defer keys.Ungrab()

	quit := make(chan struct{})
	var quitOnce sync.Once
	ctrl := controller.New(sess, dot, opts, func() { quitOnce.Do(func() { close(quit) }) }, l)

	ctrl.Startup()
	sess.Sync()
	l.Info("highlighting pointer",
		zap.Int("radius", opts.Radius),
		zap.Int("outline", opts.Outline),
		zap.Int("hideTimeout", opts.HideTimeout),
		zap.Int("hotkeys", len(opts.Hotkeys)))

	loop := controller.NewLoop(sess, ctrl, keys, raw.Events(), time.Duration(opts.HideTimeout)*time.Second)
	runErr := loop.Run(ctx, quit)

	// Restore the cursor and unmap before the deferred teardown; the user
	// must never be left without a cursor.
	ctrl.Shutdown()
	sess.Sync()
	return runErr
}
