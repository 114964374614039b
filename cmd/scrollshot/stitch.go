package main

import (
	"flag"
	"fmt"
	"log/slog"

	"github.com/example/scrollshot/internal/config"
	"github.com/example/scrollshot/internal/gfx"
	"github.com/example/scrollshot/internal/imageio"
)

var loadBitmapFn = imageio.LoadBitmap

// stitchFlags toggle the removal steps of the stitcher. Config supplies the
// defaults; -no-* flags switch a step off for one run.
type stitchFlags struct {
	noHeader bool
	noFooter bool
	noEnd    bool
}

func (s *stitchFlags) register(fs *flag.FlagSet, cfg config.Stitch) {
	fs.BoolVar(&s.noHeader, "no-header", !cfg.RemoveHeader, "keep repeated header rows")
	fs.BoolVar(&s.noFooter, "no-footer", !cfg.RemoveFooter, "keep footer rows (footer removal is reserved)")
	fs.BoolVar(&s.noEnd, "no-end", !cfg.RemoveEnd, "keep the repeated tail of the last image")
}

func (s *stitchFlags) stitcher() *gfx.Stitcher {
	return gfx.NewStitcher(
		gfx.WithRemoveHeader(!s.noHeader),
		gfx.WithRemoveFooter(!s.noFooter),
		gfx.WithRemoveEnd(!s.noEnd),
		gfx.WithLogger(slog.Default()),
	)
}

type stitchCmd struct {
	*root
	fs          *flag.FlagSet
	files       []string
	pixelFormat string
	stitch      stitchFlags
	output      outputFlags

	format gfx.PixelFormat
}

func (s *stitchCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseStitchCmd(args []string, r *root) (*stitchCmd, error) {
	cfg := r.cfg()
	s := &stitchCmd{root: r.subcommand("stitch")}
	fs := flag.NewFlagSet("stitch", flag.ExitOnError)
	fs.Usage = usageFunc(s)
	s.fs = fs
	fs.StringVar(&s.pixelFormat, "pixel-format", gfx.Format32bppARGB.String(), "working pixel format: 24bpp-rgb, 32bpp-rgb or 32bpp-argb")
	s.stitch.register(fs, cfg.Stitch)
	s.output.register(fs, cfg, "stitched", "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	s.files = fs.Args()
	if len(s.files) == 0 {
		return nil, &UsageError{of: s}
	}
	format, err := gfx.ParsePixelFormat(s.pixelFormat)
	if err != nil {
		return nil, err
	}
	s.format = format
	if err := s.output.resolve(cfg.SaveDir, "stitched"); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *stitchCmd) Run() error {
	st := s.stitch.stitcher()
	defer st.Close()
	for i, path := range s.files {
		b, err := loadBitmapFn(path, s.format)
		if err != nil {
			return fmt.Errorf("load image %d: %w", i+1, err)
		}
		if err := st.Add(b); err != nil {
			b.Dispose()
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	result, err := st.Result()
	if err != nil {
		return fmt.Errorf("stitch: %w", err)
	}
	defer result.Dispose()
	detail := fmt.Sprintf("%d images, %dx%d", len(s.files), result.Width(), result.Height())
	fmt.Fprintf(s.errOut(), "stitched %s\n", detail)
	s.notifyStitch(detail, result)
	return s.output.write(s.root, result, detail)
}
