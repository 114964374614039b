package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/scrollshot/internal/gfx"
)

// FrameFunc receives every grabbed frame in order. Ownership of the bitmap
// passes to the callee.
type FrameFunc func(index int, frame *gfx.Bitmap) error

// Session grabs a fixed number of frames at a steady interval while the
// user scrolls the captured region.
type Session struct {
	ID       string
	Source   Source
	Region   image.Rectangle
	Frames   int
	Interval time.Duration
	// RecordPath, when set, receives every frame as an MJPEG AVI.
	RecordPath string
	Logger     *slog.Logger
}

// SessionStats summarises a finished session.
type SessionStats struct {
	ID       string
	Frames   int
	Recorded int
	Duration time.Duration
}

// NewSession returns a session with a fresh id reading from src.
func NewSession(src Source, frames int, interval time.Duration) *Session {
	return &Session{
		ID:       uuid.New().String(),
		Source:   src,
		Frames:   frames,
		Interval: interval,
		Logger:   slog.Default(),
	}
}

// Run grabs frames until Frames have been delivered to fn, ctx is done or
// a grab fails. Frames already delivered stay with fn on error.
func (s *Session) Run(ctx context.Context, fn FrameFunc) (stats SessionStats, err error) {
	stats.ID = s.ID
	if s.Source == nil {
		return stats, errors.New("capture: session has no source")
	}
	if s.Frames <= 0 {
		return stats, fmt.Errorf("capture: frame count must be positive, got %d", s.Frames)
	}
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	start := time.Now()
	log.Info("capture: session starting",
		"session", s.ID,
		"frames", s.Frames,
		"interval", s.Interval,
		"region", s.Region,
	)

	var ticker *time.Ticker
	if s.Interval > 0 {
		ticker = time.NewTicker(s.Interval)
		defer ticker.Stop()
	}

	var rec *Recorder
	defer func() {
		if rec == nil {
			return
		}
		stats.Recorded = rec.Frames()
		if cerr := rec.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for i := 0; i < s.Frames; i++ {
		if i > 0 && ticker != nil {
			select {
			case <-ctx.Done():
				stats.Duration = time.Since(start)
				return stats, ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}

		frame, err := s.Source.Grab(ctx, s.Region)
		if err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("failed to capture frame %d: %w", i, err)
		}
		if s.RecordPath != "" && rec == nil {
			rec, err = NewRecorder(s.RecordPath, frame.Width(), frame.Height(), s.fps())
			if err != nil {
				frame.Dispose()
				stats.Duration = time.Since(start)
				return stats, err
			}
		}
		if rec != nil {
			if err := rec.AddFrame(frame); err != nil {
				frame.Dispose()
				stats.Duration = time.Since(start)
				return stats, err
			}
		}
		log.Debug("capture: frame grabbed",
			"session", s.ID,
			"index", i,
			"width", frame.Width(),
			"height", frame.Height(),
		)
		if err := fn(i, frame); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}
		stats.Frames++
	}

	stats.Duration = time.Since(start)
	log.Info("capture: session complete",
		"session", s.ID,
		"frames", stats.Frames,
		"duration", stats.Duration,
	)
	return stats, nil
}

func (s *Session) fps() int {
	if s.Interval <= 0 {
		return 10
	}
	return max(1, int(time.Second/s.Interval))
}
