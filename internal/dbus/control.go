package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	// ControlInterface is the control interface name.
	ControlInterface = "io.github.hitotop.Control"
	// ControlPath is the control object path.
	ControlPath = "/io/github/hitotop"
	// ControlBusName is the bus name to claim. Owning it makes this the
	// single running instance.
	ControlBusName = "io.github.hitotop"
)

// ErrAlreadyRunning is returned by Start when another instance owns the
// control bus name.
var ErrAlreadyRunning = errors.New("hitotop is already running")

// Controller is the application the control interface drives.
type Controller interface {
	Refresh()
	Copy() error
	Quit()
	Text() (string, time.Time)
}

// ControlServer implements the io.github.hitotop.Control D-Bus interface.
type ControlServer struct {
	conn   *dbus.Conn
	logger *slog.Logger
	app    Controller

	mu      sync.RWMutex
	running bool
}

// NewControlServer creates a control server for app.
func NewControlServer(app Controller, logger *slog.Logger) *ControlServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ControlServer{
		app:    app,
		logger: logger,
	}
}

// Start exports the control object on conn and claims the bus name.
func (s *ControlServer) Start(conn *dbus.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("control server already running")
	}

	if err := conn.Export(s, ControlPath, ControlInterface); err != nil {
		return fmt.Errorf("failed to export control object: %w", err)
	}

	node := &introspect.Node{
		Name: ControlPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    ControlInterface,
				Methods: controlMethods(),
				Signals: controlSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ControlPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(ControlBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		_ = conn.Export(nil, ControlPath, ControlInterface)
		return ErrAlreadyRunning
	}

	s.conn = conn
	s.running = true
	s.logger.Info("D-Bus control interface started", "interface", ControlInterface, "path", ControlPath)
	return nil
}

// Stop releases the bus name. The shared connection is left open.
func (s *ControlServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if _, err := s.conn.ReleaseName(ControlBusName); err != nil {
		s.logger.Warn("failed to release bus name", "error", err)
	}
	_ = s.conn.Export(nil, ControlPath, ControlInterface)

	s.logger.Info("D-Bus control interface stopped")
	return nil
}

// Refresh requests an immediate fetch.
// D-Bus method: Refresh() -> nothing
func (s *ControlServer) Refresh() *dbus.Error {
	s.logger.Debug("Refresh called")
	s.app.Refresh()
	return nil
}

// Copy copies the current text to the clipboard.
// D-Bus method: Copy() -> nothing
func (s *ControlServer) Copy() *dbus.Error {
	s.logger.Debug("Copy called")
	if err := s.app.Copy(); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// Quit terminates the application.
// D-Bus method: Quit() -> nothing
func (s *ControlServer) Quit() *dbus.Error {
	s.logger.Debug("Quit called")
	// Reply before the main loop goes away.
	go s.app.Quit()
	return nil
}

// Text returns the current display text and the unix time of the last
// successful fetch (0 if none).
// D-Bus method: Text() -> (sx)
func (s *ControlServer) Text() (string, int64, *dbus.Error) {
	text, updated := s.app.Text()
	var unix int64
	if !updated.IsZero() {
		unix = updated.Unix()
	}
	return text, unix, nil
}

// EmitTextChanged emits the TextChanged signal.
func (s *ControlServer) EmitTextChanged(text string) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}
	if err := conn.Emit(ControlPath, ControlInterface+".TextChanged", text); err != nil {
		return fmt.Errorf("failed to emit TextChanged signal: %w", err)
	}
	return nil
}

// controlMethods returns the D-Bus method introspection data.
func controlMethods() []introspect.Method {
	return []introspect.Method{
		{Name: "Refresh"},
		{Name: "Copy"},
		{Name: "Quit"},
		{
			Name: "Text",
			Args: []introspect.Arg{
				{Name: "text", Type: "s", Direction: "out"},
				{Name: "updated_unix", Type: "x", Direction: "out"},
			},
		},
	}
}

// controlSignals returns the D-Bus signal introspection data.
func controlSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "TextChanged",
			Args: []introspect.Arg{
				{Name: "text", Type: "s"},
			},
		},
	}
}
