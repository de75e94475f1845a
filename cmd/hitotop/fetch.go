package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/hitotop/internal/adapter/output"
	"github.com/jmylchreest/hitotop/internal/daemon"
)

var fetchOpts struct {
	format   string
	template string
}

// errFetchFailed makes the command exit non-zero after the failure text
// has been printed.
var errFetchFailed = errors.New("all quote endpoints failed")

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch one quote and print it",
	Long: `Fetch a single quote, trying the primary endpoint first and the fallback
endpoint second, and print it. The overlay does not need to be running.

The command exits with status 1 when both endpoints fail; the failure text
is still printed so scripts see the same string the overlay would show.

Template fields for plain output: .Text .Quote.Text .Quote.Source
.Endpoint .FetchID .UpdatedAt .Error, plus the functions relative and upper.

Examples:
  hitotop fetch
  hitotop fetch -o json
  hitotop fetch --template '{{.Quote.Text}}'`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchOpts.format, "output", "o", "plain",
		"Output format (plain, json, yaml)")
	fetchCmd.Flags().StringVar(&fetchOpts.template, "template", "",
		"Go template for plain output")
}

func runFetch(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(fetchOpts.format)
	if err != nil {
		return err
	}

	client := daemon.NewQuoteClient(getConfig(), logger)
	outcome := client.FetchOnce(context.Background())
	if !outcome.OK() {
		logger.Warn("quote fetch failed", "fetch_id", outcome.ID, "error", outcome.Err)
	}

	formatter := output.NewFormatter(format, output.FormatterOptions{Template: fetchOpts.template})
	if err := formatter.Format(os.Stdout, output.FromOutcome(outcome)); err != nil {
		return err
	}

	if !outcome.OK() {
		return errFetchFailed
	}
	return nil
}
