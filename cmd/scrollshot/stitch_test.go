package main

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/scrollshot/internal/gfx"
	"github.com/example/scrollshot/internal/imageio"
)

func writeFrames(t *testing.T, page *gfx.Bitmap, height int, tops ...int) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(tops))
	for i, top := range tops {
		paths[i] = filepath.Join(dir, "frame"+string(rune('a'+i))+".png")
		if err := imageio.Save(paths[i], slice(t, page, top, height), imageio.PNG, imageio.EncodeOptions{}); err != nil {
			t.Fatalf("save frame: %v", err)
		}
	}
	return paths
}

func TestStitchFiles(t *testing.T) {
	page := pageBitmap(t, 32, 140)
	frames := writeFrames(t, page, 50, 0, 30, 60, 90)
	out := filepath.Join(t.TempDir(), "out", "page.png")

	tr := newTestRoot()
	args := append([]string{"-no-header", "-no-end", "-output", out}, frames...)
	cmd, err := parseStitchCmd(args, tr.root)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	img, err := imageio.Load(out)
	if err != nil {
		t.Fatalf("load result: %v", err)
	}
	if got := img.Bounds(); got.Dx() != 32 || got.Dy() != 140 {
		t.Fatalf("unexpected result size %v", got)
	}
	for _, y := range []int{0, 49, 75, 139} {
		r, _, _, _ := img.At(5, y).RGBA()
		if uint8(r>>8) != uint8(y) {
			t.Fatalf("row %d: unexpected red %d", y, r>>8)
		}
	}
	if !strings.Contains(tr.stderr.String(), "stitched 4 images, 32x140") {
		t.Fatalf("missing status line: %q", tr.stderr.String())
	}
}

func TestStitchToClipboard(t *testing.T) {
	page := pageBitmap(t, 16, 80)
	frames := writeFrames(t, page, 40, 0, 20)
	got := swapClipboardWrite(t)

	tr := newTestRoot()
	cmd, err := parseStitchCmd(append([]string{"-no-header", "-no-end", "-to-clipboard"}, frames...), tr.root)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if *got == nil {
		t.Fatal("clipboard was not written")
	}
	if b := (*got).Bounds(); b.Dy() != 60 {
		t.Fatalf("unexpected clipboard image bounds %v", b)
	}
}

func TestStitchMissingFile(t *testing.T) {
	tr := newTestRoot()
	cmd, err := parseStitchCmd([]string{"-stdout", "missing-a.png", "missing-b.png"}, tr.root)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	err = cmd.Run()
	if err == nil || !strings.Contains(err.Error(), "load image 1") {
		t.Fatalf("expected load error, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}
}

func TestStitchWidthMismatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	if err := imageio.Save(a, image.NewNRGBA(image.Rect(0, 0, 10, 10)), imageio.PNG, imageio.EncodeOptions{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := imageio.Save(b, image.NewNRGBA(image.Rect(0, 0, 12, 10)), imageio.PNG, imageio.EncodeOptions{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	tr := newTestRoot()
	cmd, err := parseStitchCmd([]string{"-stdout", a, b}, tr.root)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); !errors.Is(err, gfx.ErrWidthMismatch) {
		t.Fatalf("expected ErrWidthMismatch, got %v", err)
	}
}

func TestStitchRejectsStdoutWithClipboard(t *testing.T) {
	tr := newTestRoot()
	_, err := parseStitchCmd([]string{"-stdout", "-to-clipboard", "a.png"}, tr.root)
	if err == nil || !strings.Contains(err.Error(), "-stdout cannot be used with -to-clipboard") {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestStitchDefaultOutputUsesSaveDir(t *testing.T) {
	tr := newTestRoot()
	dir := t.TempDir()
	tr.config.SaveDir = dir
	tr.config.Format = "jpeg"
	cmd, err := parseStitchCmd([]string{"a.png"}, tr.root)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := filepath.Join(dir, "stitched.jpg"); cmd.output.output != want {
		t.Fatalf("expected default output %q, got %q", want, cmd.output.output)
	}
}

func TestParseShadowOffset(t *testing.T) {
	pt, err := parseShadowOffset(" 4, -2")
	if err != nil || pt != image.Pt(4, -2) {
		t.Fatalf("unexpected offset %v, %v", pt, err)
	}
	for _, bad := range []string{"", "4", "a,b", "1,2,3"} {
		if _, err := parseShadowOffset(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestOutputShadowAndCaptionGrowImage(t *testing.T) {
	o := outputFlags{shadow: true, shadowRadius: 2, shadowPoint: image.Pt(3, 3), shadowOpacity: 0.5, caption: "hello", scale: 1}
	src := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	img, err := o.finish(src)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	b := img.Bounds()
	if b.Dx() <= 40 || b.Dy() <= 20 {
		t.Fatalf("expected a larger image, got %v", b)
	}
}

func TestStitchPixelFormat(t *testing.T) {
	var requested []gfx.PixelFormat
	original := loadBitmapFn
	loadBitmapFn = func(path string, format gfx.PixelFormat) (*gfx.Bitmap, error) {
		requested = append(requested, format)
		return original(path, format)
	}
	t.Cleanup(func() { loadBitmapFn = original })

	page := pageBitmap(t, 12, 60)
	frames := writeFrames(t, page, 40, 0, 20)
	swapClipboardWrite(t)
	tr := newTestRoot()
	cmd, err := parseStitchCmd(append([]string{"-pixel-format", "24", "-to-clipboard"}, frames...), tr.root)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(requested) != 2 || requested[0] != gfx.Format24bppRGB || requested[1] != gfx.Format24bppRGB {
		t.Fatalf("unexpected load formats %v", requested)
	}

	if _, err := parseStitchCmd([]string{"-pixel-format", "8bpp", "a.png"}, newTestRoot().root); !errors.Is(err, gfx.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
