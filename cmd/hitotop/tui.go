package main

import (
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/hitotop/internal/tui"
)

var tuiOpts struct {
	logFile string
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Show quotes in the terminal",
	Long: `Show the current quote in the terminal instead of an overlay window.
It refreshes on the same schedule as the overlay.

Key bindings:
  r           Refresh now
  c           Copy quote to clipboard
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVar(&tuiOpts.logFile, "log-file", "",
		"Write logs to this file (logs are discarded otherwise)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The alternate screen owns the terminal, so logs go to a file or nowhere.
	tuiLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if tuiOpts.logFile != "" {
		f, err := tea.LogToFile(tuiOpts.logFile, "hitotop")
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		level := slog.LevelInfo
		if globalOpts.verbose {
			level = slog.LevelDebug
		}
		tuiLogger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}

	return tui.Run(tui.RunOptions{
		Config: getConfig(),
		Logger: tuiLogger,
	})
}
