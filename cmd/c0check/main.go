package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"c0check/internal/logging"
	"c0check/internal/sandbox"
	"c0check/internal/version"
)

// errTestsFailed makes main exit with status 1 without printing an error.
var errTestsFailed = errors.New("tests failed")

var (
	logger       = zap.NewNop()
	traceCleanup = func() {}
)

var rootCmd = &cobra.Command{
	Use:           "c0check",
	Short:         "Correctness harness for C0 implementations",
	Long:          `c0check runs annotated C0 test programs against cc0, c0vm or coin and checks each run against the behavior its spec prescribes`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
		level, _ := cmd.Root().PersistentFlags().GetString("log-level")

		colorOn, err := useColor(cmd, os.Stderr)
		if err != nil {
			return err
		}
		log, err := logging.New(logging.Options{Level: level, Quiet: quiet, Color: colorOn})
		if err != nil {
			return err
		}
		logger = log

		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		traceCleanup()
		logging.Sync(logger)
	},
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")

	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|run|test|process)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer capacity in events")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")
}

func main() {
	// Must run before anything else: the same binary is re-executed as
	// the resource-limiting launcher for every child process.
	sandbox.Main()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(os.Stderr, "c0check: %v\n", err)
		}
		os.Exit(1)
	}
}

// useColor resolves --color for output going to f and applies it to the
// process-wide colour switch.
func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	var on bool
	switch mode {
	case "on":
		on = true
	case "off":
		on = false
	case "auto", "":
		on = isTerminal(f)
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	color.NoColor = !on
	return on, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
