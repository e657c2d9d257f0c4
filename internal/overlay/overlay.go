// Package overlay owns the borderless, always-on-top toast surface used for
// event notifications. The public Manager interface is implemented twice: a
// native X11 variant that runs a dedicated event-loop goroutine, and a no-op
// variant for platforms without native windowing support. Callers never need
// platform-conditional logic; they only see Manager.
package overlay

import (
	"errors"
	"time"
)

// Position is a screen coordinate of the overlay's top-left corner.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Category tags a payload with the event family it announces. It selects the
// text color used when the toast renders.
type Category string

const (
	CategoryHelltide  Category = "helltide"
	CategoryLegion    Category = "legion"
	CategoryWorldBoss Category = "world_boss"
	CategoryOther     Category = "other"
)

// Payload is the content of a single toast. It is immutable once submitted;
// every Show replaces the previous payload wholesale.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	// Kind is a free-form tag set by the caller (e.g. "reminder").
	Kind     string   `json:"kind,omitempty"`
	Category Category `json:"category,omitempty"`
	// BackgroundRGB is a 24-bit 0xRRGGBB color. Zero means "use default".
	BackgroundRGB uint32 `json:"bg_rgb,omitempty"`
	// BackgroundAlpha is the surface opacity. Zero means "use default";
	// non-zero values are clamped to [0.2, 1.0].
	BackgroundAlpha float64 `json:"bg_alpha,omitempty"`
	// Scale multiplies the base surface size and font size. Zero means
	// "use default"; non-zero values are clamped to [0.6, 2.0].
	Scale float64 `json:"scale,omitempty"`
}

// Status is a point-in-time snapshot of the overlay. There is no staleness
// guarantee beyond "as of read time".
type Status struct {
	Supported  bool      `json:"supported"`
	Running    bool      `json:"running"`
	Visible    bool      `json:"visible"`
	ConfigMode bool      `json:"config_mode"`
	LastError  string    `json:"last_error,omitempty"`
	Position   *Position `json:"position,omitempty"`
}

// Manager is the thread-safe command surface of the overlay. Reads are
// synchronous; writes post a command to the overlay's background context and
// return once the command is queued.
type Manager interface {
	// Status reports the current overlay state.
	Status() Status
	// Show stores the payload (and position, if non-nil) and makes the
	// toast visible. The auto-hide timer restarts on every call.
	Show(payload Payload, pos *Position) error
	// Hide removes the toast from screen. The surface is kept alive.
	Hide() error
	// EnterConfig makes the surface interactive so the user can drag it to
	// a new position.
	EnterConfig(pos *Position) error
	// ExitConfig restores the click-through toast behavior.
	ExitConfig() error
	// GetPosition returns the last known top-left coordinate, or nil if
	// the surface has never been placed.
	GetPosition() *Position
	// SetPosition moves the surface to pos.
	SetPosition(pos Position) error
}

// Geometry and timing of the toast surface.
const (
	// BaseWidth and BaseHeight are the logical surface size at scale 1.0.
	BaseWidth  = 280
	BaseHeight = 110

	// AutoHideDelay is how long a toast stays up without a further Show.
	AutoHideDelay = 5200 * time.Millisecond

	// DefaultBackgroundRGB is a dark neutral tone used when the payload
	// does not set a color.
	DefaultBackgroundRGB uint32 = 0x0b1220

	// DefaultBackgroundAlpha is the surface opacity used when the payload
	// does not set one.
	DefaultBackgroundAlpha = 0.92
)

// Errors returned by Manager operations. None of them are fatal to the
// process; a failed initialization may be retried on the next call.
var (
	// ErrInitTimeout means the native surface did not come up within the
	// initialization deadline.
	ErrInitTimeout = errors.New("overlay init timed out")
	// ErrInitFailed means surface or resource creation failed.
	ErrInitFailed = errors.New("overlay init failed")
	// ErrCommandDelivery means a command could not be posted to the
	// overlay's background context.
	ErrCommandDelivery = errors.New("overlay command delivery failed")
)

// ClampScale bounds a scale factor to [0.6, 2.0]. Zero selects the default.
func ClampScale(s float64) float64 {
	if s == 0 {
		return 1.0
	}
	if s < 0.6 {
		return 0.6
	}
	if s > 2.0 {
		return 2.0
	}
	return s
}

// ClampAlpha bounds an opacity to [0.2, 1.0]. Zero selects the default.
func ClampAlpha(a float64) float64 {
	if a == 0 {
		return DefaultBackgroundAlpha
	}
	if a < 0.2 {
		return 0.2
	}
	if a > 1.0 {
		return 1.0
	}
	return a
}

// SurfaceSize returns the effective surface size for a scale factor.
func SurfaceSize(scale float64) (width, height int) {
	s := ClampScale(scale)
	return int(float64(BaseWidth) * s), int(float64(BaseHeight) * s)
}
