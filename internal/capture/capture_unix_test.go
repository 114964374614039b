//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"strings"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/jezek/xgb/xproto"
)

func TestZPixmapToBitmap(t *testing.T) {
	setup := &xproto.SetupInfo{PixmapFormats: []xproto.Format{{Depth: 24, BitsPerPixel: 32}}}
	// two pixels per row plus four bytes of row padding
	data := []byte{
		1, 2, 3, 0, 4, 5, 6, 0, 9, 9, 9, 9,
		7, 8, 9, 0, 10, 11, 12, 0, 9, 9, 9, 9,
	}
	b, err := zpixmapToBitmap(setup, 24, data, 2, 2)
	if err != nil {
		t.Fatalf("zpixmapToBitmap: %v", err)
	}
	got := b.NRGBAAt(1, 1)
	if got.R != 12 || got.G != 11 || got.B != 10 || got.A != 255 {
		t.Fatalf("unexpected pixel %+v", got)
	}
	if _, err := zpixmapToBitmap(setup, 16, data, 2, 2); err == nil {
		t.Fatal("expected error for unknown depth")
	}
}

func TestPortalHandleToken(t *testing.T) {
	a, b := newPortalHandleToken(), newPortalHandleToken()
	if a == b {
		t.Fatal("tokens should be unique")
	}
	if !strings.HasPrefix(a, "scrollshot_") || strings.Contains(a, "-") {
		t.Fatalf("token %q is not a valid object path element", a)
	}
}

func TestPortalScreenshotOptionsUsesToken(t *testing.T) {
	orig := portalHandleToken
	portalHandleToken = func() string { return "fixed" }
	t.Cleanup(func() { portalHandleToken = orig })

	opts := portalScreenshotOptions()
	if got := opts["handle_token"].Value(); got != "fixed" {
		t.Fatalf("handle_token = %v", got)
	}
	if got := opts["interactive"].Value(); got != false {
		t.Fatalf("interactive = %v", got)
	}
}

func TestPortalResult(t *testing.T) {
	ok := []interface{}{uint32(0), map[string]dbus.Variant{"uri": dbus.MakeVariant("file:///tmp/Screenshot%20one.png")}}
	path, err := portalResult(ok)
	if err != nil {
		t.Fatalf("portalResult: %v", err)
	}
	if path != "/tmp/Screenshot one.png" {
		t.Fatalf("unexpected path %q", path)
	}

	denied := []interface{}{uint32(1), map[string]dbus.Variant{}}
	if _, err := portalResult(denied); err == nil {
		t.Fatal("expected error for denied request")
	}
	if _, err := portalResult([]interface{}{uint32(0)}); err == nil {
		t.Fatal("expected error for short body")
	}
}
