// Package platform delivers desktop notifications through the host's
// notification service.
package platform

import "time"

// AppName identifies scrollshot to notification services.
const AppName = "ScrollShot"

// DefaultTimeout is how long a notification stays visible when the host
// lets the sender choose.
const DefaultTimeout = 5 * time.Second

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file shown with the
	// notification where supported.
	IconPath string
	// Timeout overrides DefaultTimeout. Negative values ask the host to keep
	// the notification until dismissed.
	Timeout time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout == 0 {
		return DefaultTimeout
	}
	return o.Timeout
}
