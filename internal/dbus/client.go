package dbus

import (
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

// ErrNotRunning is returned when no instance owns the control bus name.
var ErrNotRunning = errors.New("hitotop is not running")

// Client calls the control interface of a running instance.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient connects to the session bus.
func NewClient() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return NewClientWithConn(conn), nil
}

// NewClientWithConn uses an existing connection.
func NewClientWithConn(conn *dbus.Conn) *Client {
	return &Client{
		conn: conn,
		obj:  conn.Object(ControlBusName, ControlPath),
	}
}

// Refresh asks the running instance to fetch a new quote.
func (c *Client) Refresh() error {
	return c.call("Refresh")
}

// Copy asks the running instance to copy its text to the clipboard.
func (c *Client) Copy() error {
	return c.call("Copy")
}

// Quit asks the running instance to exit.
func (c *Client) Quit() error {
	return c.call("Quit")
}

// Text returns the running instance's display text and last update time.
func (c *Client) Text() (string, time.Time, error) {
	var (
		text string
		unix int64
	)
	call := c.obj.Call(ControlInterface+".Text", 0)
	if err := mapCallError(call.Err); err != nil {
		return "", time.Time{}, err
	}
	if err := call.Store(&text, &unix); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to decode Text reply: %w", err)
	}
	var updated time.Time
	if unix > 0 {
		updated = time.Unix(unix, 0)
	}
	return text, updated, nil
}

func (c *Client) call(method string) error {
	return mapCallError(c.obj.Call(ControlInterface+"."+method, 0).Err)
}

func mapCallError(err error) error {
	if err == nil {
		return nil
	}
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) && isServiceUnknown(dbusErr.Name) {
		return ErrNotRunning
	}
	return fmt.Errorf("control call failed: %w", err)
}

func isServiceUnknown(name string) bool {
	return name == "org.freedesktop.DBus.Error.ServiceUnknown" ||
		name == "org.freedesktop.DBus.Error.NameHasNoOwner"
}
