//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/example/scrollshot/internal/gfx"
)

// x11Source reads the root window through a single X connection kept open
// for the whole session.
type x11Source struct {
	conn   *xgb.Conn
	setup  *xproto.SetupInfo
	root   xproto.Window
	screen image.Rectangle
}

func runningOnWayland() bool {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")), "wayland") {
		return true
	}
	return os.Getenv("WAYLAND_DISPLAY") != ""
}

func openX11() (Source, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	setup := xproto.Setup(conn)
	if setup == nil {
		conn.Close()
		return nil, fmt.Errorf("xproto setup unavailable")
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		conn.Close()
		return nil, fmt.Errorf("xproto screen unavailable")
	}
	return &x11Source{
		conn:   conn,
		setup:  setup,
		root:   screen.Root,
		screen: image.Rect(0, 0, int(screen.WidthInPixels), int(screen.HeightInPixels)),
	}, nil
}

func (s *x11Source) Grab(ctx context.Context, region image.Rectangle) (*gfx.Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rect := s.screen
	if !region.Empty() {
		rect = region.Intersect(s.screen)
		if rect.Empty() {
			return nil, fmt.Errorf("region %v outside screen %v: %w", region, s.screen, ErrEmptyRegion)
		}
	}
	reply, err := xproto.GetImage(s.conn, xproto.ImageFormatZPixmap, xproto.Drawable(s.root),
		int16(rect.Min.X), int16(rect.Min.Y), uint16(rect.Dx()), uint16(rect.Dy()), ^uint32(0)).Reply()
	if err != nil {
		return nil, fmt.Errorf("root window pixels: %w", err)
	}
	return zpixmapToBitmap(s.setup, reply.Depth, reply.Data, rect.Dx(), rect.Dy())
}

func (s *x11Source) Close() error {
	s.conn.Close()
	return nil
}

// zpixmapToBitmap copies a 24 or 32 bit ZPixmap, which is already blue
// first, row by row into a Format32bppRGB bitmap.
func zpixmapToBitmap(setup *xproto.SetupInfo, depth byte, data []byte, width, height int) (*gfx.Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyRegion
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("root window pixels: empty image data")
	}
	bitsPerPixel := 0
	for _, format := range setup.PixmapFormats {
		if format.Depth == depth {
			bitsPerPixel = int(format.BitsPerPixel)
			break
		}
	}
	if bitsPerPixel != 24 && bitsPerPixel != 32 {
		return nil, fmt.Errorf("unsupported depth %d (%d bpp): %w", depth, bitsPerPixel, gfx.ErrUnsupportedFormat)
	}
	srcBpp := bitsPerPixel / 8
	stride := len(data) / height
	if stride*height != len(data) || stride < width*srcBpp {
		return nil, fmt.Errorf("root window pixels: unexpected stride")
	}

	b, err := gfx.NewBitmap(width, height, gfx.Format32bppRGB)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		src := data[y*stride : y*stride+width*srcBpp]
		dst := b.Row(y)
		if srcBpp == 4 {
			copy(dst, src)
			for x := 3; x < len(dst); x += 4 {
				dst[x] = 0xFF
			}
			continue
		}
		for x := 0; x < width; x++ {
			copy(dst[x*4:x*4+3], src[x*3:x*3+3])
		}
	}
	return b, nil
}

func listWindows() ([]WindowInfo, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	defer conn.Close()

	setup := xproto.Setup(conn)
	if setup == nil {
		return nil, fmt.Errorf("xproto setup unavailable")
	}
	root := setup.DefaultScreen(conn).Root

	listAtom, err := internAtom(conn, "_NET_CLIENT_LIST_STACKING")
	if err != nil {
		return nil, err
	}
	reply, err := xproto.GetProperty(conn, false, root, listAtom, xproto.AtomWindow, 0, 1<<16).Reply()
	if err != nil || reply.Format != 32 || reply.ValueLen == 0 {
		if listAtom, err = internAtom(conn, "_NET_CLIENT_LIST"); err != nil {
			return nil, err
		}
		if reply, err = xproto.GetProperty(conn, false, root, listAtom, xproto.AtomWindow, 0, 1<<16).Reply(); err != nil {
			return nil, err
		}
	}
	activeID := activeWindow(conn, root)

	windows := make([]WindowInfo, 0, reply.ValueLen)
	// Stacking order lists the topmost window last.
	for idx := int(reply.ValueLen) - 1; idx >= 0; idx-- {
		win := xproto.Window(xgb.Get32(reply.Value[idx*4:]))
		rect, err := windowRect(conn, root, win)
		if err != nil {
			continue
		}
		title := readProperty(conn, win, "_NET_WM_NAME", "UTF8_STRING")
		if title == "" {
			title = readProperty(conn, win, "WM_NAME", "STRING")
		}
		windows = append(windows, WindowInfo{
			Index:  len(windows),
			ID:     uint32(win),
			Title:  title,
			Class:  readClass(conn, win),
			Rect:   rect,
			Active: uint32(win) == activeID,
		})
	}
	if len(windows) == 0 {
		return nil, errNoWindows
	}
	return windows, nil
}

func activeWindow(conn *xgb.Conn, root xproto.Window) uint32 {
	atom, err := internAtom(conn, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return 0
	}
	reply, err := xproto.GetProperty(conn, false, root, atom, xproto.AtomWindow, 0, 1).Reply()
	if err != nil || reply.Format != 32 || reply.ValueLen == 0 {
		return 0
	}
	return xgb.Get32(reply.Value)
}

func windowRect(conn *xgb.Conn, root, win xproto.Window) (image.Rectangle, error) {
	geo, err := xproto.GetGeometry(conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return image.Rectangle{}, err
	}
	trans, err := xproto.TranslateCoordinates(conn, win, root, 0, 0).Reply()
	if err != nil {
		return image.Rectangle{}, err
	}
	x, y := int(trans.DstX), int(trans.DstY)
	return image.Rect(x, y, x+int(geo.Width), y+int(geo.Height)), nil
}

func internAtom(conn *xgb.Conn, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(conn, true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}

func readProperty(conn *xgb.Conn, win xproto.Window, name, typ string) string {
	atom, err := internAtom(conn, name)
	if err != nil {
		return ""
	}
	typeAtom := xproto.Atom(xproto.AtomString)
	if typ != "STRING" {
		if typeAtom, err = internAtom(conn, typ); err != nil {
			return ""
		}
	}
	reply, err := xproto.GetProperty(conn, false, win, atom, typeAtom, 0, 1<<16).Reply()
	if err != nil || reply.ValueLen == 0 {
		return ""
	}
	return strings.TrimRight(string(reply.Value), "\x00")
}

func readClass(conn *xgb.Conn, win xproto.Window) string {
	atom, err := internAtom(conn, "WM_CLASS")
	if err != nil {
		return ""
	}
	reply, err := xproto.GetProperty(conn, false, win, atom, xproto.AtomString, 0, 64).Reply()
	if err != nil || reply.ValueLen == 0 {
		return ""
	}
	// WM_CLASS holds the instance then the class, NUL separated.
	parts := bytes.Split(bytes.TrimRight(reply.Value, "\x00"), []byte{0})
	return string(parts[len(parts)-1])
}
