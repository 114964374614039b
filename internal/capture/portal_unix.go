//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"

	"github.com/example/scrollshot/internal/gfx"
	"github.com/example/scrollshot/internal/imageio"
)

const (
	portalDest             = "org.freedesktop.portal.Desktop"
	portalPath             = "/org/freedesktop/portal/desktop"
	portalRequest          = "org.freedesktop.portal.Request"
	portalResponse         = portalRequest + ".Response"
	portalScreenshotMethod = "org.freedesktop.portal.Screenshot.Screenshot"
)

var portalHandleToken = newPortalHandleToken

// portalSource asks the xdg desktop portal for a full screenshot per frame
// and crops the region out of it.
type portalSource struct {
	conn *dbus.Conn
}

func openPortal() (Source, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("dbus connect: %w", err)
	}
	return &portalSource{conn: conn}, nil
}

func newPortalHandleToken() string {
	return "scrollshot_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

func portalScreenshotOptions() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"interactive":  dbus.MakeVariant(false),
		"modal":        dbus.MakeVariant(false),
		"handle_token": dbus.MakeVariant(portalHandleToken()),
	}
}

func (p *portalSource) Grab(ctx context.Context, region image.Rectangle) (*gfx.Bitmap, error) {
	sigc := make(chan *dbus.Signal, 4)
	p.conn.Signal(sigc)
	defer p.conn.RemoveSignal(sigc)

	obj := p.conn.Object(portalDest, portalPath)
	var handle dbus.ObjectPath
	call := obj.CallWithContext(ctx, portalScreenshotMethod, 0, "", portalScreenshotOptions())
	if call.Err != nil {
		return nil, fmt.Errorf("portal screenshot call: %w", call.Err)
	}
	if err := call.Store(&handle); err != nil {
		return nil, fmt.Errorf("portal screenshot response: %w", err)
	}

	rule := fmt.Sprintf("type='signal',interface='%s',member='Response',path='%s'", portalRequest, handle)
	if err := p.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.AddMatch", 0, rule).Err; err != nil {
		return nil, fmt.Errorf("portal screenshot subscribe: %w", err)
	}
	defer p.conn.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, rule)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sig, ok := <-sigc:
			if !ok {
				return nil, errors.New("portal screenshot: connection closed")
			}
			if sig.Path != handle || sig.Name != portalResponse {
				continue
			}
			path, err := portalResult(sig.Body)
			if err != nil {
				return nil, err
			}
			return loadPortalImage(path, region)
		}
	}
}

// portalResult extracts the file path from a Request.Response body.
func portalResult(body []interface{}) (string, error) {
	if len(body) < 2 {
		return "", errors.New("portal screenshot: malformed response")
	}
	if code, ok := body[0].(uint32); ok && code != 0 {
		return "", fmt.Errorf("portal screenshot: request denied (code %d)", code)
	}
	res, ok := body[1].(map[string]dbus.Variant)
	if !ok {
		return "", errors.New("portal screenshot: malformed response")
	}
	uriVar, ok := res["uri"]
	if !ok {
		return "", errors.New("portal screenshot: response missing image data")
	}
	uri, ok := uriVar.Value().(string)
	if !ok {
		return "", errors.New("portal screenshot: uri is not a string")
	}
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return "", fmt.Errorf("portal screenshot: unexpected uri %q", uri)
	}
	return u.Path, nil
}

func loadPortalImage(path string, region image.Rectangle) (*gfx.Bitmap, error) {
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("capture: failed to remove portal screenshot", "path", path, "error", err)
		}
	}()
	img, err := imageio.Load(path)
	if err != nil {
		return nil, fmt.Errorf("portal screenshot image: %w", err)
	}
	full, err := gfx.FromImage(img, gfx.Format32bppRGB)
	if err != nil {
		return nil, err
	}
	defer full.Dispose()
	b := img.Bounds()
	return cropToRect(full, image.Rect(0, 0, b.Dx(), b.Dy()), region)
}

func (p *portalSource) Close() error {
	return p.conn.Close()
}
