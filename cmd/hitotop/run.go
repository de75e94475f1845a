package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	godbus "github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/hitotop/internal/config"
	"github.com/jmylchreest/hitotop/internal/daemon"
	"github.com/jmylchreest/hitotop/internal/dbus"
	"github.com/jmylchreest/hitotop/internal/display"
	"github.com/jmylchreest/hitotop/internal/geometry"
	"github.com/jmylchreest/hitotop/internal/menu"
	"github.com/jmylchreest/hitotop/internal/store"
)

// appID is the GApplication ID. It differs from the control bus name
// because the control name is claimed by hand as the single-instance lock.
const appID = "io.github.hitotop.Overlay"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the quote overlay (default)",
	RunE:  runOverlay,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// session holds the components of a running overlay. Fields are only
// touched on the GTK main loop once activate has run.
type session struct {
	logger *slog.Logger
	cfg    *config.Config
	gtkApp *adw.Application

	app     *daemon.App
	conn    *godbus.Conn
	control *dbus.ControlServer
	tray    *dbus.Tray
	overlay *display.Overlay
	watcher *daemon.ConfigWatcher
	saver   *store.PositionSaver

	ctx    context.Context
	cancel context.CancelFunc
}

func runOverlay(cmd *cobra.Command, args []string) error {
	if !globalOpts.verbose {
		// The overlay is long running; keep informational logs.
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
		slog.SetDefault(logger)
	}
	logger.Info("starting hitotop", "version", version)

	s := &session{
		logger: logger,
		cfg:    getConfig(),
		gtkApp: adw.NewApplication(appID, gio.ApplicationNonUnique),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	defer s.cancel()

	s.app = daemon.NewAppFromConfig(s.cfg, logger)
	s.app.SetQuitHandler(func() {
		glib.IdleAdd(s.gtkApp.Quit)
	})
	s.app.Fetcher().SetDispatcher(func(fn func()) {
		glib.IdleAdd(fn)
	})

	if err := s.connectBus(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			s.app.Quit()
		case <-s.ctx.Done():
		}
	}()

	s.gtkApp.ConnectActivate(s.activate)
	s.gtkApp.ConnectShutdown(s.shutdown)

	status := s.gtkApp.Run([]string{os.Args[0]})
	if status != 0 {
		return fmt.Errorf("application exited with status %d", status)
	}

	logger.Info("hitotop stopped")
	return nil
}

// connectBus claims the control bus name. Without a session bus the
// overlay still runs, just without the tray and control interface.
func (s *session) connectBus() error {
	conn, err := godbus.ConnectSessionBus()
	if err != nil {
		s.logger.Warn("no session bus; tray and control interface disabled", "error", err)
		return nil
	}

	control := dbus.NewControlServer(s.app, s.logger)
	if err := control.Start(conn); err != nil {
		_ = conn.Close()
		if errors.Is(err, dbus.ErrAlreadyRunning) {
			return err
		}
		s.logger.Warn("failed to start control interface", "error", err)
		return nil
	}

	s.conn = conn
	s.control = control
	return nil
}

func (s *session) activate() {
	if s.overlay != nil {
		return
	}

	overlay, err := display.NewOverlay(&s.gtkApp.Application, s.cfg, s.logger)
	if err != nil {
		s.logger.Error("failed to create overlay", "error", err)
		s.gtkApp.Quit()
		return
	}
	s.overlay = overlay
	overlay.SetActionHandler(s.app.HandleAction)

	s.saver = &store.PositionSaver{Path: config.StatePath(), Monitor: overlay.MonitorName}
	overlay.SetDragEndCallback(s.savePosition)

	s.app.Fetcher().OnUpdate(s.publish)
	s.startTray()

	overlay.Show(s.restorePosition())

	if err := s.app.Start(s.ctx); err != nil {
		s.logger.Error("failed to start", "error", err)
		s.gtkApp.Quit()
		return
	}

	s.watcher = daemon.NewConfigWatcher(globalOpts.configPath, s.logger)
	s.watcher.SetReloadCallback(func(newConfig *config.Config) {
		glib.IdleAdd(func() {
			s.reload(newConfig)
		})
	})
	s.watcher.SetErrorCallback(func(err error) {
		s.logger.Warn("config reload rejected, keeping current settings", "error", err)
	})
	if err := s.watcher.Start(s.ctx, s.cfg); err != nil {
		s.logger.Warn("failed to start config watcher", "error", err)
	}

	s.logger.Info("hitotop ready", "control", dbus.ControlBusName, "tray", s.tray != nil)
}

// publish fans the new text out to every surface. It runs on the GTK main
// loop via the fetcher's dispatcher.
func (s *session) publish(text string) {
	s.overlay.SetText(text)
	if s.tray != nil {
		s.tray.SetText(text)
	}
	if s.control != nil {
		if err := s.control.EmitTextChanged(text); err != nil {
			s.logger.Debug("failed to emit text change", "error", err)
		}
	}
}

func (s *session) startTray() {
	if s.conn == nil || !s.cfg.Tray.Enabled {
		return
	}
	tray := dbus.NewTray(s.cfg.Tray.IconName, func(action menu.Action) {
		glib.IdleAdd(func() {
			s.app.HandleAction(action)
		})
	}, s.logger)
	tray.SetActivateHandler(func() {
		glib.IdleAdd(s.app.Refresh)
	})

	text, _ := s.app.Text()
	if err := tray.Start(s.conn, text); err != nil {
		s.logger.Warn("failed to start tray icon", "error", err)
		return
	}
	s.tray = tray
}

func (s *session) stopTray() {
	if s.tray != nil {
		s.tray.Stop()
		s.tray = nil
	}
}

func (s *session) restorePosition() *geometry.Point {
	if !s.cfg.Window.RememberPosition {
		return nil
	}
	state, err := store.LoadState(s.saver.Path)
	if err != nil {
		s.logger.Warn("failed to load window state", "error", err)
		return nil
	}
	origin, ok := state.WindowOrigin(s.overlay.MonitorName())
	if !ok {
		return nil
	}
	return &origin
}

func (s *session) savePosition(origin geometry.Point) {
	if !s.cfg.Window.RememberPosition {
		return
	}
	if err := s.saver.Save(origin); err != nil {
		s.logger.Warn("failed to save window position", "error", err)
	}
}

func (s *session) reload(newConfig *config.Config) {
	changes := s.app.ApplyConfig(newConfig)
	s.cfg = newConfig
	if !changes.Any() {
		return
	}

	if changes.Appearance || changes.Gesture {
		if err := s.overlay.ApplyConfig(newConfig); err != nil {
			s.logger.Warn("failed to apply window settings", "error", err)
		}
	}
	if changes.Tray {
		s.stopTray()
		s.startTray()
	}
	s.logger.Info("configuration reloaded",
		"appearance", changes.Appearance,
		"gesture", changes.Gesture,
		"refresh", changes.Refresh,
		"tray", changes.Tray,
	)
}

func (s *session) shutdown() {
	s.logger.Info("application shutting down")
	s.cancel()
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.app.Stop()
	s.stopTray()
	if s.control != nil {
		_ = s.control.Stop()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
}
