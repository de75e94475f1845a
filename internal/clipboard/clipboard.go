// Package clipboard writes the current quote to the system clipboard.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no clipboard backend is available.
var ErrUnavailable = errors.New("clipboard: no clipboard backend available")

// Writer places plain text on the clipboard.
type Writer interface {
	WriteText(text string) error
}

// New returns a command-backed writer when command is set, otherwise the
// system clipboard.
func New(command string) Writer {
	if strings.TrimSpace(command) != "" {
		return &Command{Line: command, Timeout: 5 * time.Second}
	}
	return System{}
}

// System uses the platform clipboard (wl-copy, xclip or xsel on Linux).
type System struct{}

// WriteText implements Writer.
func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}

// Command pipes text to a user-configured command's stdin.
type Command struct {
	Line    string
	Timeout time.Duration
}

// WriteText implements Writer.
func (c *Command) WriteText(text string) error {
	parts := strings.Fields(c.Line)
	if len(parts) == 0 {
		return ErrUnavailable
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Helpers such as xclip fork a child that keeps serving the selection.
	// No output pipes are attached, and WaitDelay bounds Wait if the child
	// still holds stdin when the context expires.
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Stdin = strings.NewReader(text)
	cmd.WaitDelay = time.Second
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("clipboard: %s: timed out after %s: %w", parts[0], timeout, err)
		}
		return fmt.Errorf("clipboard: %s: %w", parts[0], err)
	}
	return nil
}

// Memory keeps the last written text. It is used when no desktop session
// is available and in tests.
type Memory struct {
	Text   string
	Writes int
}

// WriteText implements Writer.
func (m *Memory) WriteText(text string) error {
	m.Text = text
	m.Writes++
	return nil
}
