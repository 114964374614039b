package capture

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/icza/mjpeg"

	"github.com/example/scrollshot/internal/gfx"
)

// Recorder writes grabbed frames to an MJPEG AVI file so a session can be
// replayed when a stitch goes wrong.
type Recorder struct {
	aw      mjpeg.AviWriter
	width   int
	height  int
	quality int
	frames  int
	buf     bytes.Buffer
}

// NewRecorder creates the AVI at path. Frames of another size are rejected.
func NewRecorder(path string, width, height, fps int) (*Recorder, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("record: invalid frame size %dx%d", width, height)
	}
	if fps <= 0 {
		fps = 1
	}
	aw, err := mjpeg.New(path, int32(width), int32(height), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	return &Recorder{aw: aw, width: width, height: height, quality: 85}, nil
}

// AddFrame appends b as a JPEG frame.
func (r *Recorder) AddFrame(b *gfx.Bitmap) error {
	if b.Width() != r.width || b.Height() != r.height {
		return fmt.Errorf("record: frame is %dx%d, recording is %dx%d", b.Width(), b.Height(), r.width, r.height)
	}
	r.buf.Reset()
	if err := jpeg.Encode(&r.buf, b.ToNRGBA(), &jpeg.Options{Quality: r.quality}); err != nil {
		return fmt.Errorf("record: encode frame: %w", err)
	}
	if err := r.aw.AddFrame(r.buf.Bytes()); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	r.frames++
	return nil
}

// Frames reports how many frames were written.
func (r *Recorder) Frames() int {
	return r.frames
}

// Close finalises the AVI index.
func (r *Recorder) Close() error {
	return r.aw.Close()
}
