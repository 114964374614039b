// Package notify turns scrollshot events into desktop notifications.
package notify

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/scrollshot/internal/imageio"
	"github.com/example/scrollshot/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventStitch fires when a stitched image is ready.
	EventStitch Event = "stitch"
	// EventSave fires when an image is written to disk.
	EventSave Event = "save"
	// EventCopy fires when an image is placed on the clipboard.
	EventCopy Event = "copy"
)

// Events lists every event in a stable order.
func Events() []Event {
	return []Event{EventStitch, EventSave, EventCopy}
}

// envKey is the variable overriding the message text of e, for example
// SCROLLSHOT_NOTIFY_SAVE_TEXT.
func (e Event) envKey() string {
	return "SCROLLSHOT_NOTIFY_" + strings.ToUpper(string(e)) + "_TEXT"
}

// Preferences holds the notification title and one message template per
// event. A template may contain a single %s for the event detail.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the built-in title and messages.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: platform.AppName,
		Templates: map[Event]string{
			EventStitch: "Stitched %s",
			EventSave:   "Saved %s",
			EventCopy:   "Copied %s to clipboard",
		},
	}
}

// LoadPreferences applies SCROLLSHOT_NOTIFY_TITLE and the per event
// SCROLLSHOT_NOTIFY_<EVENT>_TEXT variables on top of the defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("SCROLLSHOT_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for _, e := range Events() {
		if v := strings.TrimSpace(os.Getenv(e.envKey())); v != "" {
			prefs.Templates[e] = v
		}
	}
	return prefs
}

// send delivers a notification; tests replace it.
var send = platform.Notify

// Notifier gates events and formats their messages. A nil Notifier is
// valid and sends nothing.
type Notifier struct {
	title     string
	templates map[Event]string
	enabled   map[Event]bool
}

// New returns a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	n := &Notifier{
		title:     prefs.Title,
		templates: make(map[Event]string, len(prefs.Templates)),
		enabled:   make(map[Event]bool),
	}
	for e, tmpl := range prefs.Templates {
		n.templates[e] = strings.TrimSpace(tmpl)
	}
	return n
}

// Enable switches notifications for event on or off.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Enabled reports whether event notifications are on.
func (n *Notifier) Enabled(event Event) bool {
	return n != nil && n.enabled[event]
}

// Stitch announces a finished stitch. img, when set, is shrunk into a
// temporary preview shown as the notification icon.
func (n *Notifier) Stitch(detail string, img image.Image) {
	if !n.Enabled(EventStitch) {
		return
	}
	var opts platform.Options
	if img != nil {
		p, err := writePreview(img)
		if err != nil {
			slog.Warn("notify: preview failed", "error", err)
		} else {
			defer p.Close()
			opts.IconPath = p.path
		}
	}
	n.send(EventStitch, detail, opts)
}

// Save announces a written file, using the file itself as the icon.
func (n *Notifier) Save(path string) {
	if !n.Enabled(EventSave) {
		return
	}
	var opts platform.Options
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
		if _, err := os.Stat(abs); err == nil {
			opts.IconPath = abs
		}
	}
	n.send(EventSave, path, opts)
}

// Copy announces a clipboard write.
func (n *Notifier) Copy(detail string) {
	if !n.Enabled(EventCopy) {
		return
	}
	n.send(EventCopy, detail, platform.Options{})
}

func (n *Notifier) send(event Event, detail string, opts platform.Options) {
	body := n.message(event, detail)
	if body == "" {
		return
	}
	if err := send(n.title, body, opts); err != nil {
		slog.Warn("notify: delivery failed", "event", string(event), "error", err)
	}
}

// message fills the event template with detail. Templates without a verb
// are used as they are.
func (n *Notifier) message(event Event, detail string) string {
	tmpl := n.templates[event]
	if !strings.Contains(tmpl, "%") {
		return tmpl
	}
	detail = strings.TrimSpace(detail)
	if detail == "" {
		detail = "image"
	}
	return strings.TrimSpace(fmt.Sprintf(tmpl, detail))
}

// previewHeight bounds the preview; stitched pages are often very tall.
const previewHeight = 256

// preview is a temporary PNG removed by Close.
type preview struct {
	path string
}

func writePreview(img image.Image) (p *preview, err error) {
	if h := img.Bounds().Dy(); h > previewHeight {
		img = imageio.Scale(img, float64(previewHeight)/float64(h))
	}
	f, err := os.CreateTemp("", "scrollshot-preview-*.png")
	if err != nil {
		return nil, err
	}
	p = &preview{path: f.Name()}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			_ = p.Close()
			p = nil
		}
	}()
	if err := imageio.Encode(f, img, imageio.PNG, imageio.EncodeOptions{}); err != nil {
		return p, err
	}
	return p, nil
}

func (p *preview) Close() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("notify: remove preview", "error", err)
		return err
	}
	return nil
}
