package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/example/scrollshot/internal/capture"
	"github.com/example/scrollshot/internal/gfx"
)

var (
	openSourceFn  = capture.Open
	listWindowsFn = capture.ListWindows
)

type captureCmd struct {
	*root
	fs          *flag.FlagSet
	frames      int
	interval    time.Duration
	backend     string
	region      string
	window      string
	record      string
	listWindows bool
	stitch      stitchFlags
	output      outputFlags

	rect image.Rectangle
}

func (c *captureCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseCaptureCmd(args []string, r *root) (*captureCmd, error) {
	cfg := r.cfg()
	c := &captureCmd{root: r.subcommand("capture")}
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	fs.Usage = usageFunc(c)
	c.fs = fs
	fs.IntVar(&c.frames, "frames", cfg.Capture.Frames, "number of frames to grab")
	fs.DurationVar(&c.interval, "interval", cfg.Capture.Interval, "delay between frames")
	fs.StringVar(&c.backend, "backend", cfg.Capture.Backend, "capture backend: auto, x11 or portal")
	fs.StringVar(&c.region, "region", "", "capture region as x0,y0,x1,y1 or x,y,WxH")
	fs.StringVar(&c.window, "window", "", "capture the area of a window (active, index:N, id:0x.., class:name, title:text)")
	fs.StringVar(&c.record, "record", "", "also record the frames to an MJPEG AVI file")
	fs.BoolVar(&c.listWindows, "list-windows", false, "print the available windows and exit")
	c.stitch.register(fs, cfg.Stitch)
	c.output.register(fs, cfg, "capture", "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	if c.listWindows {
		return c, nil
	}
	if c.frames <= 0 {
		return nil, fmt.Errorf("-frames must be positive, got %d", c.frames)
	}
	if c.interval < 0 {
		return nil, fmt.Errorf("-interval must not be negative, got %v", c.interval)
	}
	if _, err := capture.ParseBackend(c.backend); err != nil {
		return nil, err
	}
	if c.region != "" && c.window != "" {
		return nil, errors.New("-region cannot be used with -window")
	}
	rect, err := capture.ParseRegion(c.region)
	if err != nil {
		return nil, err
	}
	c.rect = rect
	if err := c.output.resolve(cfg.SaveDir, "capture"); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *captureCmd) Run() error {
	if c.listWindows {
		return c.printWindows()
	}
	if c.window != "" {
		windows, err := listWindowsFn()
		if err != nil {
			return fmt.Errorf("list windows: %w", err)
		}
		win, err := capture.SelectWindow(c.window, windows)
		if err != nil {
			return err
		}
		slog.Debug("capture: window selected", "id", fmt.Sprintf("0x%x", win.ID), "title", win.Title, "rect", win.Rect)
		c.rect = win.Rect
	}

	backend, err := capture.ParseBackend(c.backend)
	if err != nil {
		return err
	}
	src, err := openSourceFn(backend)
	if err != nil {
		return fmt.Errorf("open %s capture: %w", backend, err)
	}
	defer src.Close()

	st := c.stitch.stitcher()
	defer st.Close()

	session := capture.NewSession(src, c.frames, c.interval)
	session.Region = c.rect
	session.RecordPath = c.record
	fmt.Fprintf(c.errOut(), "capturing %d frames every %v, scroll now (Ctrl-C to stop early)\n", c.frames, c.interval)
	stats, err := session.Run(c.context(), func(i int, frame *gfx.Bitmap) error {
		if err := st.Add(frame); err != nil {
			frame.Dispose()
			return fmt.Errorf("frame %d: %w", i, err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) || st.Len() == 0 {
			return err
		}
		fmt.Fprintf(c.errOut(), "capture interrupted after %d frames\n", st.Len())
	}
	if stats.Recorded > 0 {
		fmt.Fprintf(c.errOut(), "recorded %d frames to %s\n", stats.Recorded, c.record)
	}

	result, err := st.Result()
	if err != nil {
		return fmt.Errorf("stitch: %w", err)
	}
	defer result.Dispose()
	detail := fmt.Sprintf("%d frames, %dx%d", st.Len(), result.Width(), result.Height())
	fmt.Fprintf(c.errOut(), "stitched %s\n", detail)
	c.notifyStitch(detail, result)
	return c.output.write(c.root, result, detail)
}

func (c *captureCmd) printWindows() error {
	windows, err := listWindowsFn()
	if err != nil {
		return fmt.Errorf("list windows: %w", err)
	}
	for _, win := range windows {
		marker := " "
		if win.Active {
			marker = "*"
		}
		fmt.Fprintf(c.out(), "%s %2d 0x%08x %4dx%-4d %q (%s)\n",
			marker, win.Index, win.ID, win.Rect.Dx(), win.Rect.Dy(), win.Title, win.Class)
	}
	return nil
}
