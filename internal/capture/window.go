package capture

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
)

var errNoWindows = errors.New("no windows available")

// WindowInfo describes a top-level window whose area can be captured.
type WindowInfo struct {
	Index  int
	ID     uint32
	Title  string
	Class  string
	Rect   image.Rectangle
	Active bool
}

// ListWindows returns the top-level windows of the X session, topmost first.
func ListWindows() ([]WindowInfo, error) {
	return listWindows()
}

// SelectWindow matches a selector against windows. Selectors are "active",
// "index:N", "id:0x...", "class:name", "title:text" or a bare title
// substring. The empty selector picks the active window.
func SelectWindow(selector string, windows []WindowInfo) (WindowInfo, error) {
	if len(windows) == 0 {
		return WindowInfo{}, errNoWindows
	}
	sel := strings.TrimSpace(selector)
	lower := strings.ToLower(sel)
	switch {
	case lower == "" || lower == "active":
		for _, win := range windows {
			if win.Active {
				return win, nil
			}
		}
		if lower == "" {
			return windows[0], nil
		}
		return WindowInfo{}, fmt.Errorf("no active window detected")
	case strings.HasPrefix(lower, "index:"):
		idx, err := strconv.Atoi(strings.TrimSpace(lower[6:]))
		if err != nil {
			return WindowInfo{}, fmt.Errorf("invalid index %q", sel[6:])
		}
		if idx < 0 || idx >= len(windows) {
			return WindowInfo{}, fmt.Errorf("window index %d out of range", idx)
		}
		return windows[idx], nil
	case strings.HasPrefix(lower, "id:"):
		id, err := parseWindowID(lower[3:])
		if err != nil {
			return WindowInfo{}, err
		}
		for _, win := range windows {
			if win.ID == id {
				return win, nil
			}
		}
		return WindowInfo{}, fmt.Errorf("window id 0x%x not found", id)
	case strings.HasPrefix(lower, "class:"):
		needle := strings.TrimSpace(lower[6:])
		for _, win := range windows {
			if strings.Contains(strings.ToLower(win.Class), needle) {
				return win, nil
			}
		}
		return WindowInfo{}, fmt.Errorf("window with class %q not found", needle)
	case strings.HasPrefix(lower, "title:"):
		lower = strings.TrimSpace(lower[6:])
	}
	for _, win := range windows {
		if strings.Contains(strings.ToLower(win.Title), lower) {
			return win, nil
		}
	}
	return WindowInfo{}, fmt.Errorf("no window matched %q", selector)
}

func parseWindowID(val string) (uint32, error) {
	v := strings.TrimSpace(val)
	base := 10
	if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
		v, base = v[2:], 16
	}
	parsed, err := strconv.ParseUint(v, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q", val)
	}
	return uint32(parsed), nil
}
