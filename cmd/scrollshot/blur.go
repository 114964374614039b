package main

import (
	"flag"
	"fmt"
	"image"

	"github.com/example/scrollshot/internal/capture"
	"github.com/example/scrollshot/internal/gfx"
)

type blurCmd struct {
	*root
	fs           *flag.FlagSet
	input        inputFlags
	radius       int
	area         string
	excludeAlpha bool
	output       outputFlags

	rect image.Rectangle
}

func (b *blurCmd) FlagSet() *flag.FlagSet {
	return b.fs
}

func parseBlurCmd(args []string, r *root) (*blurCmd, error) {
	cfg := r.cfg()
	b := &blurCmd{root: r.subcommand("blur")}
	fs := flag.NewFlagSet("blur", flag.ExitOnError)
	fs.Usage = usageFunc(b)
	b.fs = fs
	b.input.register(fs)
	fs.IntVar(&b.radius, "radius", cfg.Blur.Radius, "blur radius in pixels")
	fs.StringVar(&b.area, "area", "", "blur only this area, as x0,y0,x1,y1 or x,y,WxH")
	fs.BoolVar(&b.excludeAlpha, "exclude-alpha", cfg.Blur.ExcludeAlpha, "leave the alpha channel untouched")
	b.output.register(fs, cfg, "blurred", "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 || !b.input.valid() {
		return nil, &UsageError{of: b}
	}
	if b.radius < 0 {
		return nil, fmt.Errorf("-radius must not be negative, got %d", b.radius)
	}
	rect, err := capture.ParseRegion(b.area)
	if err != nil {
		return nil, err
	}
	b.rect = rect
	if err := b.output.resolve(cfg.SaveDir, "blurred"); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *blurCmd) Run() error {
	bmp, err := loadFilterInput(&b.input)
	if err != nil {
		return err
	}
	defer bmp.Dispose()
	area := areaOrBounds(b.rect, bmp)
	var opts []gfx.BlurOption
	if b.excludeAlpha {
		opts = append(opts, gfx.WithExcludeAlpha())
	}
	if err := gfx.BoxBlurArea(bmp, area, b.radius, opts...); err != nil {
		return fmt.Errorf("blur: %w", err)
	}
	return b.output.write(b.root, bmp, fmt.Sprintf("blurred %s", b.input.describe()))
}

type pixelateCmd struct {
	*root
	fs     *flag.FlagSet
	input  inputFlags
	size   int
	area   string
	output outputFlags

	rect image.Rectangle
}

func (p *pixelateCmd) FlagSet() *flag.FlagSet {
	return p.fs
}

func parsePixelateCmd(args []string, r *root) (*pixelateCmd, error) {
	cfg := r.cfg()
	p := &pixelateCmd{root: r.subcommand("pixelate")}
	fs := flag.NewFlagSet("pixelate", flag.ExitOnError)
	fs.Usage = usageFunc(p)
	p.fs = fs
	p.input.register(fs)
	fs.IntVar(&p.size, "size", cfg.Blur.PixelSize, "block size in pixels")
	fs.StringVar(&p.area, "area", "", "pixelate only this area, as x0,y0,x1,y1 or x,y,WxH")
	p.output.register(fs, cfg, "pixelated", "")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 || !p.input.valid() {
		return nil, &UsageError{of: p}
	}
	if p.size < 1 {
		return nil, fmt.Errorf("-size must be at least 1, got %d", p.size)
	}
	rect, err := capture.ParseRegion(p.area)
	if err != nil {
		return nil, err
	}
	p.rect = rect
	if err := p.output.resolve(cfg.SaveDir, "pixelated"); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *pixelateCmd) Run() error {
	bmp, err := loadFilterInput(&p.input)
	if err != nil {
		return err
	}
	defer bmp.Dispose()
	if err := gfx.Pixelate(bmp, areaOrBounds(p.rect, bmp), p.size); err != nil {
		return fmt.Errorf("pixelate: %w", err)
	}
	return p.output.write(p.root, bmp, fmt.Sprintf("pixelated %s", p.input.describe()))
}

func loadFilterInput(in *inputFlags) (*gfx.Bitmap, error) {
	img, err := in.load()
	if err != nil {
		return nil, err
	}
	return gfx.FromImage(img, gfx.Format32bppARGB)
}

// areaOrBounds maps an empty area to the whole bitmap.
func areaOrBounds(area image.Rectangle, b *gfx.Bitmap) image.Rectangle {
	if area.Empty() {
		return b.Bounds()
	}
	return area
}
