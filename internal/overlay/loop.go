package overlay

import "github.com/jonboulle/clockwork"

type cmdKind int

const (
	cmdShow cmdKind = iota
	cmdHide
	cmdEnterConfig
	cmdExitConfig
	cmdSetPosition
)

type procCmd struct {
	kind    cmdKind
	payload Payload
	pos     *Position
}

// loopState is the surface lifecycle as the run loop sees it.
type loopState int

const (
	stateHidden loopState = iota
	stateVisibleToast
	stateConfigMode
)

// surfaceOps are the native drawing operations the transition machine
// drives. The X11 run loop implements them; tests substitute a recorder.
type surfaceOps interface {
	showToastSurface()
	showConfigSurface()
	hideSurface()
	applyGeometry()
}

// toastLoop is the surface state machine, kept apart from the native
// resources so the transitions are exercisable without an X server. All
// methods run on the owning run loop goroutine.
type toastLoop struct {
	shared  *sharedState
	surface surfaceOps
	timer   clockwork.Timer

	defScale float64
	defRGB   uint32
	defAlpha float64

	phase       loopState
	prevVisible bool
	scale       float64
	bgRGB       uint32
	bgAlpha     float64
}

// applyAppearance recomputes the effective appearance from the configured
// defaults plus the payload's overrides. Starting from the defaults every
// time keeps one toast's overrides from leaking into the next.
func (l *toastLoop) applyAppearance(p Payload) {
	l.scale = l.defScale
	l.bgRGB = l.defRGB
	l.bgAlpha = l.defAlpha
	if p.Scale != 0 {
		l.scale = ClampScale(p.Scale)
	}
	if p.BackgroundRGB != 0 {
		l.bgRGB = p.BackgroundRGB
	}
	if p.BackgroundAlpha != 0 {
		l.bgAlpha = ClampAlpha(p.BackgroundAlpha)
	}
}

func (l *toastLoop) handleCommand(cmd procCmd) {
	switch cmd.kind {
	case cmdShow:
		l.applyAppearance(cmd.payload)
		if l.phase == stateConfigMode {
			// Guidance text stays up while the user is dragging;
			// the toast appears when config mode exits.
			l.prevVisible = true
			return
		}
		l.showToast()
	case cmdHide:
		l.timer.Stop()
		l.surface.hideSurface()
		l.phase = stateHidden
		l.prevVisible = false
		l.shared.setVisible(false)
		l.shared.setConfigMode(false)
	case cmdEnterConfig:
		l.timer.Stop()
		l.prevVisible = l.phase == stateVisibleToast
		l.phase = stateConfigMode
		l.surface.showConfigSurface()
		l.shared.setVisible(true)
		l.shared.setConfigMode(true)
	case cmdExitConfig:
		if l.phase != stateConfigMode {
			return
		}
		l.shared.setConfigMode(false)
		if l.prevVisible {
			l.showToast()
			return
		}
		l.surface.hideSurface()
		l.phase = stateHidden
		l.shared.setVisible(false)
	case cmdSetPosition:
		l.surface.applyGeometry()
	}
}

func (l *toastLoop) showToast() {
	l.phase = stateVisibleToast
	l.surface.showToastSurface()
	l.timer.Reset(AutoHideDelay)
	l.shared.setVisible(true)
	l.shared.setConfigMode(false)
}

func (l *toastLoop) handleAutoHide() {
	if l.phase != stateVisibleToast {
		return
	}
	l.surface.hideSurface()
	l.phase = stateHidden
	l.prevVisible = false
	l.shared.setVisible(false)
}
