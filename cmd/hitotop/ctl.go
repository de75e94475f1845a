package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/hitotop/internal/adapter/output"
	"github.com/jmylchreest/hitotop/internal/dbus"
)

var textOpts struct {
	format   string
	template string
	age      bool
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Ask the running overlay to fetch a new quote",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *dbus.Client) error {
			return c.Refresh()
		})
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy the running overlay's quote to the clipboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *dbus.Client) error {
			return c.Copy()
		})
	},
}

var quitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Close the running overlay",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *dbus.Client) error {
			return c.Quit()
		})
	},
}

var textCmd = &cobra.Command{
	Use:   "text",
	Short: "Print the running overlay's quote",
	Long: `Print the text currently shown by the running overlay and how long ago
it was fetched.

This is suitable for status bars, e.g. a Waybar custom module:

  "custom/hitokoto": {
    "exec": "hitotop text",
    "interval": 60
  }`,
	RunE: runText,
}

func init() {
	rootCmd.AddCommand(refreshCmd, copyCmd, quitCmd, textCmd)

	textCmd.Flags().StringVarP(&textOpts.format, "output", "o", "plain",
		"Output format (plain, json, yaml)")
	textCmd.Flags().StringVar(&textOpts.template, "template", "",
		"Go template for plain output")
	textCmd.Flags().BoolVar(&textOpts.age, "age", false,
		"Append how long ago the quote was fetched")
}

func withClient(fn func(c *dbus.Client) error) error {
	c, err := dbus.NewClient()
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		if errors.Is(err, dbus.ErrNotRunning) {
			return fmt.Errorf("%w (start it with: hitotop)", err)
		}
		return err
	}
	return nil
}

func runText(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(textOpts.format)
	if err != nil {
		return err
	}

	return withClient(func(c *dbus.Client) error {
		text, updated, err := c.Text()
		if err != nil {
			return err
		}

		r := output.Record{Text: text}
		if !updated.IsZero() {
			r.UpdatedAt = &updated
		}

		formatter := output.NewFormatter(format, output.FormatterOptions{
			Template: textOpts.template,
			ShowTime: textOpts.age,
		})
		return formatter.Format(os.Stdout, r)
	})
}
