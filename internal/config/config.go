package config

import (
	"fmt"
	"strings"
	"time"
)

// Notify holds notification settings.
type Notify struct {
	Stitch bool
	Save   bool
	Copy   bool
}

// Stitch holds the trimming switches passed to the stitcher.
type Stitch struct {
	RemoveHeader bool
	RemoveFooter bool
	RemoveEnd    bool
}

// Capture holds the defaults for scrolling capture sessions.
type Capture struct {
	Frames   int
	Interval time.Duration
	Backend  string
}

// Blur holds the obfuscation filter defaults.
type Blur struct {
	Radius       int
	ExcludeAlpha bool
	PixelSize    int
}

// Quantize holds the palette reduction defaults.
type Quantize struct {
	Colors int
}

// Config holds the application configuration.
type Config struct {
	LogLevel string
	SaveDir  string
	Format   string
	Stitch   Stitch
	Capture  Capture
	Blur     Blur
	Quantize Quantize
	Notify   Notify
}

// Backend names accepted in [capture].
const (
	BackendAuto   = "auto"
	BackendPortal = "portal"
	BackendX11    = "x11"
)

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		LogLevel: "info",
		Format:   "png",
		Stitch: Stitch{
			RemoveHeader: true,
			RemoveFooter: true,
			RemoveEnd:    true,
		},
		Capture: Capture{
			Frames:   10,
			Interval: 500 * time.Millisecond,
			Backend:  BackendAuto,
		},
		Blur: Blur{
			Radius:    8,
			PixelSize: 10,
		},
		Quantize: Quantize{
			Colors: 256,
		},
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.LogLevel != "" {
		fmt.Fprintf(&sb, "log_level = %s\n", c.LogLevel)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.Format != "" {
		fmt.Fprintf(&sb, "format = %s\n", c.Format)
	}
	sb.WriteString("\n")

	sb.WriteString("[stitch]\n")
	fmt.Fprintf(&sb, "remove_header = %v\n", c.Stitch.RemoveHeader)
	fmt.Fprintf(&sb, "remove_footer = %v\n", c.Stitch.RemoveFooter)
	fmt.Fprintf(&sb, "remove_end = %v\n", c.Stitch.RemoveEnd)
	sb.WriteString("\n")

	sb.WriteString("[capture]\n")
	fmt.Fprintf(&sb, "frames = %d\n", c.Capture.Frames)
	fmt.Fprintf(&sb, "interval = %s\n", c.Capture.Interval)
	fmt.Fprintf(&sb, "backend = %s\n", c.Capture.Backend)
	sb.WriteString("\n")

	sb.WriteString("[blur]\n")
	fmt.Fprintf(&sb, "radius = %d\n", c.Blur.Radius)
	fmt.Fprintf(&sb, "exclude_alpha = %v\n", c.Blur.ExcludeAlpha)
	fmt.Fprintf(&sb, "pixel_size = %d\n", c.Blur.PixelSize)
	sb.WriteString("\n")

	sb.WriteString("[quantize]\n")
	fmt.Fprintf(&sb, "colors = %d\n", c.Quantize.Colors)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "stitch = %v\n", c.Notify.Stitch)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)

	return sb.String()
}
