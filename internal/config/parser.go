package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Parse reads configuration from an io.Reader. Keys missing from the input
// keep their defaults; unknown keys and sections are ignored.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			continue
		}

		// Key = Value or Key: Value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch section {
		case "":
			err = setRootField(cfg, key, value)
		case "stitch":
			err = setStitchField(&cfg.Stitch, key, value)
		case "capture":
			err = setCaptureField(&cfg.Capture, key, value)
		case "blur":
			err = setBlurField(&cfg.Blur, key, value)
		case "quantize":
			err = setQuantizeField(&cfg.Quantize, key, value)
		case "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			if section == "" {
				return nil, fmt.Errorf("line %d: error in root section: %w", lineNo, err)
			}
			return nil, fmt.Errorf("line %d: error in section [%s]: %w", lineNo, section, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch key {
	case "log_level":
		cfg.LogLevel = value
	case "save_dir":
		cfg.SaveDir = value
	case "format":
		cfg.Format = strings.ToLower(value)
	}
	return nil
}

func setStitchField(s *Stitch, key, value string) error {
	var dst *bool
	switch key {
	case "remove_header":
		dst = &s.RemoveHeader
	case "remove_footer":
		dst = &s.RemoveFooter
	case "remove_end":
		dst = &s.RemoveEnd
	default:
		return nil
	}
	return parseBool(dst, key, value)
}

func setCaptureField(c *Capture, key, value string) error {
	switch key {
	case "frames":
		return parseCount(&c.Frames, key, value)
	case "interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for key %s: %w", key, err)
		}
		if d < 0 {
			return fmt.Errorf("negative duration for key %s", key)
		}
		c.Interval = d
	case "backend":
		b := strings.ToLower(value)
		switch b {
		case BackendAuto, BackendPortal, BackendX11:
			c.Backend = b
		default:
			return fmt.Errorf("unknown capture backend %q", value)
		}
	}
	return nil
}

func setBlurField(b *Blur, key, value string) error {
	switch key {
	case "radius":
		return parseCount(&b.Radius, key, value)
	case "exclude_alpha":
		return parseBool(&b.ExcludeAlpha, key, value)
	case "pixel_size":
		return parseCount(&b.PixelSize, key, value)
	}
	return nil
}

func setQuantizeField(q *Quantize, key, value string) error {
	if key != "colors" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	if n < 2 || n > 256 {
		return fmt.Errorf("colors must be between 2 and 256, got %d", n)
	}
	q.Colors = n
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	var dst *bool
	switch key {
	case "stitch":
		dst = &n.Stitch
	case "save":
		dst = &n.Save
	case "copy":
		dst = &n.Copy
	default:
		return nil
	}
	return parseBool(dst, key, value)
}

func parseBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	*dst = b
	return nil
}

func parseCount(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	if n < 0 {
		return fmt.Errorf("negative value for key %s", key)
	}
	*dst = n
	return nil
}
