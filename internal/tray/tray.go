// Package tray runs the system tray icon and menu. Menu clicks are routed
// through the visibility manager's debounce so duplicate toolkit events
// collapse into one logical action.
package tray

import (
	"log/slog"

	"fyne.io/systray"

	"github.com/Trissilein/helltime/internal/visibility"
)

// Callbacks are the actions the tray menu can trigger.
type Callbacks struct {
	// ToggleOverlay flips whether toasts are shown; returns the new state.
	ToggleOverlay func() bool
	// ToggleReminder flips the reminder loop; returns the new state.
	ToggleReminder func() bool
	// Quit shuts the application down.
	Quit func()
}

// Tray owns the icon and menu lifecycle.
type Tray struct {
	vis       *visibility.Manager
	cb        Callbacks
	log       *slog.Logger
	iconPaths []string

	overlayOn  bool
	reminderOn bool
}

// New returns a tray for the given visibility manager. iconPaths are
// candidate icon files tried in order; a generated fallback is used when
// none load.
func New(vis *visibility.Manager, cb Callbacks, iconPaths []string, overlayOn, reminderOn bool, logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{
		vis:        vis,
		cb:         cb,
		log:        logger.With("component", "tray"),
		iconPaths:  iconPaths,
		overlayOn:  overlayOn,
		reminderOn: reminderOn,
	}
}

// Run blocks servicing the tray until Quit is selected or ctx-equivalent
// shutdown calls systray.Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Stop tears the tray down from another goroutine.
func (t *Tray) Stop() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetIcon(t.loadIcon())
	systray.SetTitle("helltime")
	systray.SetTooltip("helltime companion")

	mRestore := systray.AddMenuItem("Restore", "Show the main window")
	systray.AddSeparator()
	mOverlay := systray.AddMenuItemCheckbox("Overlay", "Show event toasts", t.overlayOn)
	mReminder := systray.AddMenuItemCheckbox("Reminder", "Warn before events start", t.reminderOn)
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Exit", "Quit helltime")

	go func() {
		for {
			select {
			case <-mRestore.ClickedCh:
				if !t.vis.ShouldProcessTrayAction() {
					continue
				}
				t.vis.Restore()
			case <-mOverlay.ClickedCh:
				if !t.vis.ShouldProcessTrayAction() {
					continue
				}
				if t.cb.ToggleOverlay != nil && t.cb.ToggleOverlay() {
					mOverlay.Check()
				} else {
					mOverlay.Uncheck()
				}
			case <-mReminder.ClickedCh:
				if !t.vis.ShouldProcessTrayAction() {
					continue
				}
				if t.cb.ToggleReminder != nil && t.cb.ToggleReminder() {
					mReminder.Check()
				} else {
					mReminder.Uncheck()
				}
			case <-mQuit.ClickedCh:
				t.log.Info("quit selected")
				if t.cb.Quit != nil {
					t.cb.Quit()
				}
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	t.log.Info("tray exited")
}
