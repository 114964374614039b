package capture

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/example/scrollshot/internal/gfx"
)

func TestParseRegion(t *testing.T) {
	cases := map[string]image.Rectangle{
		"":              {},
		"10,20,110,220": image.Rect(10, 20, 110, 220),
		" 5, 6, 30x40 ": image.Rect(5, 6, 35, 46),
		"-100,0,100,50": image.Rect(-100, 0, 100, 50),
	}
	for in, want := range cases {
		got, err := ParseRegion(in)
		if err != nil {
			t.Fatalf("ParseRegion(%q): %v", in, err)
		}
		if !got.Eq(want) {
			t.Errorf("ParseRegion(%q) = %v, want %v", in, got, want)
		}
	}
	for _, bad := range []string{"1,2", "a,b,c,d", "1,2,3", "1,2,0x5"} {
		if _, err := ParseRegion(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
	if _, err := ParseRegion("5,5,5,9"); !errors.Is(err, ErrEmptyRegion) {
		t.Errorf("expected ErrEmptyRegion, got %v", err)
	}
}

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]Backend{"": BackendAuto, "X11": BackendX11, "portal": BackendPortal} {
		got, err := ParseBackend(in)
		if err != nil || got != want {
			t.Errorf("ParseBackend(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseBackend("pipewire"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestCropToRect(t *testing.T) {
	src, _ := gfx.NewBitmap(10, 10, gfx.Format24bppRGB)
	src.SetNRGBA(4, 6, color.NRGBA{R: 9, G: 8, B: 7, A: 255})
	screen := image.Rect(100, 100, 110, 110)

	got, err := cropToRect(src, screen, image.Rect(103, 105, 120, 120))
	if err != nil {
		t.Fatalf("cropToRect: %v", err)
	}
	if !got.Bounds().Eq(image.Rect(0, 0, 7, 5)) {
		t.Fatalf("unexpected bounds %v", got.Bounds())
	}
	if got.NRGBAAt(1, 1) != (color.NRGBA{R: 9, G: 8, B: 7, A: 255}) {
		t.Fatalf("pixel not carried over: %+v", got.NRGBAAt(1, 1))
	}
	if _, err := cropToRect(src, screen, image.Rect(0, 0, 5, 5)); !errors.Is(err, ErrEmptyRegion) {
		t.Fatalf("expected ErrEmptyRegion, got %v", err)
	}
	whole, err := cropToRect(src, screen, image.Rectangle{})
	if err != nil || whole == src || !whole.Bounds().Eq(src.Bounds()) {
		t.Fatalf("empty rect should clone the source: %v", err)
	}
}

func TestSelectWindow(t *testing.T) {
	windows := []WindowInfo{
		{Index: 0, ID: 0x400001, Title: "Docs - Browser", Class: "Firefox"},
		{Index: 1, ID: 0x600002, Title: "Terminal", Class: "XTerm", Active: true},
		{Index: 2, ID: 0x800003, Title: "Notes", Class: "Gedit"},
	}
	cases := map[string]uint32{
		"":              0x600002,
		"active":        0x600002,
		"index:2":       0x800003,
		"id:0x400001":   0x400001,
		"class:gedit":   0x800003,
		"title:browser": 0x400001,
		"notes":         0x800003,
	}
	for sel, want := range cases {
		got, err := SelectWindow(sel, windows)
		if err != nil {
			t.Fatalf("SelectWindow(%q): %v", sel, err)
		}
		if got.ID != want {
			t.Errorf("SelectWindow(%q) = 0x%x, want 0x%x", sel, got.ID, want)
		}
	}
	for _, sel := range []string{"index:9", "id:zz", "class:none", "missing"} {
		if _, err := SelectWindow(sel, windows); err == nil {
			t.Errorf("expected error for %q", sel)
		}
	}
	if _, err := SelectWindow("", nil); !errors.Is(err, errNoWindows) {
		t.Fatalf("expected errNoWindows, got %v", err)
	}
}
