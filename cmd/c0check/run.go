package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"c0check/internal/config"
	"c0check/internal/discover"
	"c0check/internal/executer"
	"c0check/internal/history"
	"c0check/internal/observ"
	"c0check/internal/report"
	"c0check/internal/runner"
	"c0check/internal/sandbox"
	"c0check/internal/spec"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <cc0|c0vm|coin> <test_dir>",
	Short: "Run a test suite against one implementation",
	Long: `Run every test found under test_dir against the chosen implementation.
Each immediate subdirectory of test_dir is a test directory; tests are either
files whose first line is a //test spec or lines of a sources.test manifest.`,
	Args: cobra.ExactArgs(2),
	RunE: runExecution,
}

func init() {
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	defaults := config.Defaults()
	cmd.Flags().String("c0-home", "", "C0 installation directory (default $"+config.HomeEnv+")")
	cmd.Flags().Uint64P("test-time", "t", defaults.TestTime, "CPU seconds allowed per test")
	cmd.Flags().StringP("test-memory", "m", config.FormatSize(defaults.TestMemory), "address space allowed per test")
	cmd.Flags().Uint64("compilation-time", defaults.CompilationTime, "CPU seconds allowed per compilation")
	cmd.Flags().String("compilation-mem", config.FormatSize(defaults.CompilationMemory), "address space allowed per compilation")
	cmd.Flags().IntP("jobs", "j", 0, "number of tests run in parallel (0=auto)")
	cmd.Flags().StringSlice("filter", nil, "only run tests whose name contains one of these substrings")
	cmd.Flags().Bool("failed", false, "only run tests that failed in the previous run")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().Int("output-lines", defaults.OutputLines, "lines of program output shown per failure (0=all)")
	cmd.Flags().String("work-dir", "", "directory for temporary artifacts (default: current directory)")
	cmd.Flags().Bool("verbose", false, "list passing tests too")
}

func runExecution(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	timer := observ.NewTimer()

	kind, err := executer.ParseKind(args[0])
	if err != nil {
		return err
	}
	root, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("resolve test directory: %w", err)
	}
	if info, err := os.Stat(root); err != nil {
		return err
	} else if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	phase := timer.Begin("config")
	settings, cfgPath, err := config.Resolve(root)
	if err != nil {
		return err
	}
	if cfgPath != "" {
		logger.Debug("loaded config", zap.String("path", cfgPath))
	}
	if err := applyRunFlags(cmd, &settings); err != nil {
		return err
	}
	toolchain, err := executer.NewToolchain(settings.C0Home)
	if err != nil {
		return err
	}
	if err := toolchain.Require(kind); err != nil {
		return err
	}
	timer.End(phase, "")

	phase = timer.Begin("discover")
	tests, err := selectTests(cmd, root, kind)
	if err != nil {
		return err
	}
	timer.End(phase, fmt.Sprintf("%d tests", len(tests)))

	sb, err := sandbox.New(sandbox.Options{WorkDir: settings.WorkDir, Logger: logger})
	if err != nil {
		return err
	}
	exec, err := executer.New(kind, executer.Config{
		Toolchain: toolchain,
		Sandbox:   sb,
		Compile:   sandbox.Limits{CPUSeconds: settings.CompilationTime, MemoryBytes: settings.CompilationMemory},
		Run:       sandbox.Limits{CPUSeconds: settings.TestTime, MemoryBytes: settings.TestMemory},
	})
	if err != nil {
		return err
	}

	style, err := chooseProgress(cmd, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	colorOn, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	rep := report.New(cmd.OutOrStdout(), report.Options{
		Color:       colorOn,
		OutputLines: settings.OutputLines,
		Verbose:     verbose,
	})

	logger.Info("starting run",
		zap.Stringer("implementation", kind),
		zap.String("root", root),
		zap.Int("tests", len(tests)),
		zap.Int("jobs", settings.Jobs),
		zap.Stringer("test_limits", sandbox.Limits{CPUSeconds: settings.TestTime, MemoryBytes: settings.TestMemory}))

	started := time.Now()
	phase = timer.Begin("run")
	opts := runner.Options{Jobs: settings.Jobs, Logger: logger}
	var sum *runner.Summary
	var runErr error
	switch style {
	case progressView:
		sum, runErr = runWithUI(ctx, cmd.OutOrStdout(), fmt.Sprintf("%s %s", kind, filepath.Base(root)), tests, exec, opts)
	case progressLines:
		opts.Progress = rep
		fallthrough
	default:
		sum, runErr = runner.Run(ctx, tests, exec, opts)
	}
	timer.End(phase, "")
	if sum == nil {
		return runErr
	}

	if err := rep.Summary(sum); err != nil {
		return err
	}
	if timings, _ := cmd.Root().PersistentFlags().GetBool("timings"); timings {
		printTimings(cmd.ErrOrStderr(), timer)
	}

	if runErr == nil {
		recordRun(root, kind, started, sum)
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return errors.New("interrupted")
		}
		return runErr
	}
	if !sum.OK() {
		return errTestsFailed
	}
	return nil
}

// applyRunFlags overrides settings with the flags given on the command line.
func applyRunFlags(cmd *cobra.Command, s *config.Settings) error {
	flags := cmd.Flags()
	if flags.Changed("c0-home") {
		s.C0Home, _ = flags.GetString("c0-home")
	}
	for name, dst := range map[string]*uint64{
		"test-time":        &s.TestTime,
		"compilation-time": &s.CompilationTime,
	} {
		if !flags.Changed(name) {
			continue
		}
		n, _ := flags.GetUint64(name)
		if n == 0 {
			return fmt.Errorf("--%s must be at least one second", name)
		}
		*dst = n
	}
	for name, dst := range map[string]*uint64{
		"test-memory":     &s.TestMemory,
		"compilation-mem": &s.CompilationMemory,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, _ := flags.GetString(name)
		n, err := config.ParseLimit(value)
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		*dst = n
	}
	if flags.Changed("jobs") {
		if jobs, _ := flags.GetInt("jobs"); jobs > 0 {
			s.Jobs = jobs
		}
	}
	if flags.Changed("output-lines") {
		s.OutputLines, _ = flags.GetInt("output-lines")
	}
	if flags.Changed("work-dir") {
		s.WorkDir, _ = flags.GetString("work-dir")
	}
	return nil
}

// selectTests discovers the suite and narrows it by --filter and --failed.
func selectTests(cmd *cobra.Command, root string, kind executer.Kind) ([]*spec.TestInfo, error) {
	tests, err := discover.Discover(root, logger)
	if err != nil {
		return nil, err
	}
	patterns, err := cmd.Flags().GetStringSlice("filter")
	if err != nil {
		return nil, fmt.Errorf("failed to get filter flag: %w", err)
	}
	tests = discover.Filter(tests, patterns)

	if failed, _ := cmd.Flags().GetBool("failed"); failed {
		store, err := history.Open("")
		if err != nil {
			return nil, err
		}
		rec, ok, err := store.Get(root, kind.String())
		switch {
		case err != nil:
			logger.Warn("could not read previous run, running everything", zap.Error(err))
		case !ok:
			logger.Info("no previous run recorded, running everything")
		default:
			logger.Debug("rerunning failures", zap.Stringer("run", rec.RunID), zap.Time("started", rec.StartedAt))
			tests = discover.Only(tests, rec.Rerun())
		}
	}
	return tests, nil
}

func recordRun(root string, kind executer.Kind, started time.Time, sum *runner.Summary) {
	store, err := history.Open("")
	if err != nil {
		logger.Warn("could not record run", zap.Error(err))
		return
	}
	rec := history.NewRecord(root, kind.String(), started)
	for _, o := range sum.Failures {
		rec.Failed = append(rec.Failed, o.Test.Name())
	}
	for _, o := range sum.Errors {
		rec.Errored = append(rec.Errored, o.Test.Name())
	}
	if err := store.Put(rec); err != nil {
		logger.Warn("could not record run", zap.String("dir", store.Dir()), zap.Error(err))
	}
}
