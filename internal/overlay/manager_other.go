//go:build !linux

package overlay

import (
	"log/slog"

	"github.com/jonboulle/clockwork"
)

// Options mirror the native manager's configuration so call sites compile
// unchanged on platforms without X11.
type Options struct {
	Position          *Position
	Scale             float64
	BackgroundRGB     uint32
	BackgroundAlpha   float64
	OnPositionChanged func(Position)

	Clock  clockwork.Clock
	Logger *slog.Logger
}

// New returns a no-op manager on platforms without native overlay support.
func New(opts Options) Manager {
	return NewNoop()
}
