// Package clipboard moves images between scrollshot and the desktop
// clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"image"
	"os"

	"github.com/example/scrollshot/internal/imageio"
)

var (
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	errNoImage   = errors.New("clipboard does not contain image data")
)

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imageio.Encode(&buf, img, imageio.PNG, imageio.EncodeOptions{}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
