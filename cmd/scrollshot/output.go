package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/scrollshot/internal/clipboard"
	"github.com/example/scrollshot/internal/config"
	"github.com/example/scrollshot/internal/imageio"
	"github.com/example/scrollshot/internal/render"
)

var (
	writeClipboardFn = clipboard.WriteImage
	readClipboardFn  = clipboard.ReadImage
)

// outputFlags are shared by every command that produces an image.
type outputFlags struct {
	output        string
	format        string
	stdout        bool
	toClipboard   bool
	shadow        bool
	shadowRadius  int
	shadowOffset  string
	shadowPoint   image.Point
	shadowOpacity float64
	caption       string
	scale         float64
	quality       int
	colors        int

	fallback imageio.Format
}

func (o *outputFlags) register(fs *flag.FlagSet, cfg *config.Config, name string, format string) {
	defaults := render.DefaultShadowOptions()
	if format == "" {
		format = cfg.Format
	}
	fs.StringVar(&o.output, "output", "", fmt.Sprintf("write the image to this file path (default %s.<format> in the save directory)", name))
	fs.StringVar(&o.format, "format", format, fmt.Sprintf("output format when -output has no extension: %s", formatNames()))
	fs.BoolVar(&o.stdout, "stdout", false, "write the encoded image to stdout")
	fs.BoolVar(&o.toClipboard, "to-clipboard", false, "copy the image to the clipboard")
	fs.BoolVar(&o.toClipboard, "to-clip", false, "copy the image to the clipboard (alias)")
	fs.BoolVar(&o.shadow, "shadow", false, "apply a drop shadow to the image")
	fs.IntVar(&o.shadowRadius, "shadow-radius", defaults.Radius, "drop shadow blur radius in pixels")
	fs.StringVar(&o.shadowOffset, "shadow-offset", formatShadowOffset(defaults.Offset), "drop shadow offset as dx,dy")
	fs.Float64Var(&o.shadowOpacity, "shadow-opacity", defaults.Opacity, "drop shadow opacity between 0 and 1")
	fs.StringVar(&o.caption, "caption", "", "add a text strip with this caption below the image")
	fs.Float64Var(&o.scale, "scale", 1, "resize the result by this factor")
	fs.IntVar(&o.quality, "quality", 90, "JPEG quality between 1 and 100")
	fs.IntVar(&o.colors, "colors", cfg.Quantize.Colors, "GIF palette size between 2 and 256")
	o.fallback = imageio.PNG
}

// resolve validates the flags after parsing; saveDir and name build the
// default output path.
func (o *outputFlags) resolve(saveDir, name string) error {
	pt, err := parseShadowOffset(o.shadowOffset)
	if err != nil {
		return err
	}
	o.shadowPoint = pt
	if o.toClipboard && o.stdout {
		return errors.New("-stdout cannot be used with -to-clipboard")
	}
	if o.scale <= 0 {
		return fmt.Errorf("invalid -scale %v", o.scale)
	}
	if o.colors < 2 || o.colors > 256 {
		return fmt.Errorf("-colors must be between 2 and 256, got %d", o.colors)
	}
	f, err := imageio.ParseFormat(o.format)
	if err != nil {
		return err
	}
	o.fallback = f
	if o.output == "" {
		o.output = filepath.Join(saveDir, name+f.Extension())
	}
	if _, err := imageio.FormatForPath(o.output, f); err != nil {
		return err
	}
	return nil
}

func (o *outputFlags) shadowOptions() render.ShadowOptions {
	opts := render.DefaultShadowOptions()
	opts.Radius = max(0, o.shadowRadius)
	opts.Offset = o.shadowPoint
	opts.Opacity = min(1, max(0, o.shadowOpacity))
	return opts
}

func (o *outputFlags) encodeOptions() imageio.EncodeOptions {
	return imageio.EncodeOptions{Quality: o.quality, Colors: o.colors}
}

// finish applies the presentation steps in order: shadow, caption, scale.
func (o *outputFlags) finish(img image.Image) (image.Image, error) {
	if o.shadow {
		res, err := render.ApplyShadow(img, o.shadowOptions())
		if err != nil {
			return nil, fmt.Errorf("apply shadow: %w", err)
		}
		img = res.Image
	}
	if o.caption != "" {
		captioned, err := render.AddCaption(img, o.caption, render.CaptionOptions{})
		if err != nil {
			return nil, fmt.Errorf("add caption: %w", err)
		}
		img = captioned
	}
	return imageio.Scale(img, o.scale), nil
}

// write delivers img to the clipboard, stdout or the output file. detail
// describes the image in status lines and notifications.
func (o *outputFlags) write(r *root, img image.Image, detail string) error {
	img, err := o.finish(img)
	if err != nil {
		return err
	}
	if detail == "" {
		detail = "image"
	}
	if o.toClipboard {
		if err := writeClipboardFn(img); err != nil {
			return fmt.Errorf("copy PNG to clipboard: %w", err)
		}
		fmt.Fprintf(r.errOut(), "copied %s to clipboard\n", detail)
		r.notifyCopy(detail)
		return nil
	}
	if o.stdout {
		if err := imageio.Encode(r.out(), img, o.fallback, o.encodeOptions()); err != nil {
			return fmt.Errorf("write %s to stdout: %w", strings.ToUpper(string(o.fallback)), err)
		}
		fmt.Fprintf(r.errOut(), "wrote %s data to stdout\n", strings.ToUpper(string(o.fallback)))
		return nil
	}
	if dir := filepath.Dir(o.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := imageio.Save(o.output, img, o.fallback, o.encodeOptions()); err != nil {
		return err
	}
	saved := o.output
	if abs, err := filepath.Abs(o.output); err == nil {
		saved = abs
	}
	fmt.Fprintf(r.errOut(), "saved %s\n", saved)
	r.notifySave(saved)
	return nil
}

func parseShadowOffset(val string) (image.Point, error) {
	parts := strings.Split(val, ",")
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("invalid shadow offset %q", val)
	}
	vals := make([]int, 2)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Point{}, fmt.Errorf("invalid shadow offset %q", val)
		}
		vals[i] = v
	}
	return image.Pt(vals[0], vals[1]), nil
}

func formatNames() string {
	names := make([]string, 0, len(imageio.Formats()))
	for _, f := range imageio.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func formatShadowOffset(pt image.Point) string {
	return fmt.Sprintf("%d,%d", pt.X, pt.Y)
}

// inputFlags select the source image of the single image filters.
type inputFlags struct {
	file          string
	fromClipboard bool
}

func (in *inputFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&in.file, "file", "", "path to the input image")
	fs.BoolVar(&in.fromClipboard, "from-clipboard", false, "read the input image from the clipboard")
	fs.BoolVar(&in.fromClipboard, "from-clip", false, "read the input image from the clipboard (alias)")
}

func (in *inputFlags) valid() bool {
	return (in.file != "") != in.fromClipboard
}

func (in *inputFlags) describe() string {
	if in.fromClipboard {
		return "clipboard image"
	}
	return in.file
}

func (in *inputFlags) load() (image.Image, error) {
	if in.fromClipboard {
		img, err := readClipboardFn()
		if err != nil {
			return nil, fmt.Errorf("read clipboard: %w", err)
		}
		return img, nil
	}
	img, err := imageio.Load(in.file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", in.file, err)
	}
	return img, nil
}
