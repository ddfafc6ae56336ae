package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// progressStyle is how `run` shows tests as they finish.
type progressStyle int

const (
	progressLines progressStyle = iota // a reporter line per finished test
	progressView                       // the Bubble Tea view
	progressNone                       // --quiet: summary only
)

// chooseProgress combines --ui and --quiet. In auto mode the view is used
// only when out, the stream the report goes to, is a terminal.
func chooseProgress(cmd *cobra.Command, out io.Writer) (progressStyle, error) {
	value, err := cmd.Flags().GetString("ui")
	if err != nil {
		return progressLines, fmt.Errorf("failed to get ui flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return progressLines, fmt.Errorf("failed to get quiet flag: %w", err)
	}

	var view bool
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on":
		view = true
	case "off":
	case "", "auto":
		f, ok := out.(*os.File)
		view = ok && isTerminal(f)
	default:
		return progressLines, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}

	switch {
	case quiet:
		return progressNone, nil
	case view:
		return progressView, nil
	default:
		return progressLines, nil
	}
}
