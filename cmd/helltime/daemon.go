package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Trissilein/helltime/internal/config"
	"github.com/Trissilein/helltime/internal/ipc"
	"github.com/Trissilein/helltime/internal/overlay"
	"github.com/Trissilein/helltime/internal/schedule"
	"github.com/Trissilein/helltime/internal/tray"
	"github.com/Trissilein/helltime/internal/visibility"
	"github.com/Trissilein/helltime/internal/x11"
)

// detachedWindow stands in for the host window when the tracked application
// is not running. Toolkit calls succeed as no-ops so visibility transitions
// still update tracked state and the overlay.
type detachedWindow struct{}

func (detachedWindow) Show() error               { return nil }
func (detachedWindow) Hide() error               { return nil }
func (detachedWindow) Unminimize() error         { return nil }
func (detachedWindow) SetSkipTaskbar(bool) error { return nil }
func (detachedWindow) Focus() error              { return nil }

// gatedOverlay suppresses Show while its flag is off; all other commands
// pass through. Used for both the Overlay and Reminder tray checkboxes.
type gatedOverlay struct {
	overlay.Manager
	enabled *atomic.Bool
}

func (g gatedOverlay) Show(p overlay.Payload, pos *overlay.Position) error {
	if !g.enabled.Load() {
		return nil
	}
	return g.Manager.Show(p, pos)
}

func runDaemon() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (host window class: %s)", cfg.HostWindowClass)

	// cfg is written by the overlay goroutine (position persistence) and
	// the reload path.
	var cfgMu sync.Mutex

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	clock := clockwork.NewRealClock()

	var overlayEnabled, reminderEnabled atomic.Bool
	overlayEnabled.Store(cfg.OverlayEnabled())
	reminderEnabled.Store(cfg.ReminderEnabled())

	// Overlay manager; the native surface is created lazily on first show.
	var initialPos *overlay.Position
	if p := cfg.Overlay.Position; p != nil {
		initialPos = &overlay.Position{X: p.X, Y: p.Y}
	}
	overlayMgr := overlay.New(overlay.Options{
		Position:        initialPos,
		Scale:           cfg.Overlay.Scale,
		BackgroundRGB:   cfg.BackgroundRGB(),
		BackgroundAlpha: cfg.Overlay.BackgroundAlpha,
		OnPositionChanged: func(pos overlay.Position) {
			cfgMu.Lock()
			cfg.Overlay.Position = &config.OverlayPosition{X: pos.X, Y: pos.Y}
			err := cfg.Save()
			cfgMu.Unlock()
			if err != nil {
				logger.Warn("failed to persist overlay position", "error", err)
			}
		},
		Clock:  clock,
		Logger: logger,
	})
	gated := gatedOverlay{Manager: overlayMgr, enabled: &overlayEnabled}

	// Host window tracking; the daemon stays useful without it.
	var hostWin visibility.HostWindow = detachedWindow{}
	xconn, err := x11.NewConnection()
	if err != nil {
		logger.Warn("no X connection, host window tracking disabled", "error", err)
	} else {
		defer xconn.Close()
		found, err := x11.FindByClass(xconn, cfg.HostWindowClass)
		if err != nil {
			logger.Warn("host window not found, tracking disabled", "class", cfg.HostWindowClass, "error", err)
		} else {
			hostWin = found
		}
	}

	vis := visibility.New(hostWin, overlayMgr, clock, logger)
	vis.SetDebounce(time.Duration(cfg.TrayDebounceMs) * time.Millisecond)

	if hw, ok := hostWin.(*x11.HostWindow); ok {
		err := hw.Watch(x11.Events{
			FocusGained:    vis.HandleFocusGained,
			ZeroResize:     vis.HandleZeroResize,
			CloseRequested: vis.HandleCloseRequested,
		}, logger)
		if err != nil {
			logger.Warn("failed to watch host window", "error", err)
		}
	}

	// Schedule fetcher and reminder loop
	fetcher := schedule.NewFetcher(cfg.Schedule.URL, time.Duration(cfg.Schedule.CacheTTLSeconds)*time.Second, clock)
	reminder := schedule.NewReminder(
		fetcher,
		gatedOverlay{Manager: gated, enabled: &reminderEnabled},
		time.Duration(cfg.Reminder.LeadSeconds)*time.Second,
		time.Duration(cfg.Reminder.PollSeconds)*time.Second,
		clock,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reminder.Run(ctx)

	// Create config reload channel
	reloadChan := make(chan struct{}, 1)

	// Start IPC server
	ipcServer, err := ipc.NewServer(ipc.Deps{
		Overlay:        gated,
		Visibility:     vis,
		Schedule:       fetcher,
		ReminderActive: reminderEnabled.Load,
	}, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	// System tray
	appTray := tray.New(vis, tray.Callbacks{
		ToggleOverlay: func() bool {
			next := !overlayEnabled.Load()
			overlayEnabled.Store(next)
			if !next {
				if err := overlayMgr.Hide(); err != nil {
					logger.Warn("failed to hide overlay", "error", err)
				}
			}
			return next
		},
		ToggleReminder: func() bool {
			next := !reminderEnabled.Load()
			reminderEnabled.Store(next)
			return next
		},
		Quit: cancel,
	}, cfg.Tray.IconPaths, overlayEnabled.Load(), reminderEnabled.Load(), logger)

	// Setup signal handlers
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for {
			select {
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					applyReload(cfg, &cfgMu, vis, &overlayEnabled, &reminderEnabled, logger)
				case os.Interrupt, syscall.SIGTERM:
					log.Println("Shutting down helltime daemon...")
					cancel()
					ipcServer.Stop()
					appTray.Stop()
					return
				}
			case <-reloadChan:
				log.Println("Reload requested via IPC...")
				applyReload(cfg, &cfgMu, vis, &overlayEnabled, &reminderEnabled, logger)
			case <-ctx.Done():
				ipcServer.Stop()
				appTray.Stop()
				return
			}
		}
	}()

	log.Println("helltime daemon started successfully")

	// The tray owns the foreground loop.
	appTray.Run()
}

// applyReload re-reads the config file and applies the settings that can
// change at runtime.
func applyReload(cfg *config.Config, cfgMu *sync.Mutex, vis *visibility.Manager, overlayEnabled, reminderEnabled *atomic.Bool, logger *slog.Logger) {
	newCfg, err := config.Load()
	if err != nil {
		log.Printf("Config reload failed: %v", err)
		return
	}
	cfgMu.Lock()
	*cfg = *newCfg
	cfgMu.Unlock()
	vis.SetDebounce(time.Duration(newCfg.TrayDebounceMs) * time.Millisecond)
	overlayEnabled.Store(newCfg.OverlayEnabled())
	reminderEnabled.Store(newCfg.ReminderEnabled())
	logger.Info("config reloaded")
}
