package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"c0check/internal/discover"
	"c0check/internal/executer"
	"c0check/internal/oracle"
)

var listCmd = &cobra.Command{
	Use:   "list [flags] <test_dir>",
	Short: "List the tests of a suite with their specs",
	Args:  cobra.ExactArgs(1),
	RunE:  listTests,
}

func init() {
	listCmd.Flags().StringSlice("filter", nil, "only list tests whose name contains one of these substrings")
	listCmd.Flags().String("impl", "", "show what each test expects from this implementation (cc0|c0vm|coin)")
}

func listTests(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve test directory: %w", err)
	}
	if _, err := useColor(cmd, os.Stdout); err != nil {
		return err
	}

	tests, err := discover.Discover(root, logger)
	if err != nil {
		return err
	}
	patterns, err := cmd.Flags().GetStringSlice("filter")
	if err != nil {
		return fmt.Errorf("failed to get filter flag: %w", err)
	}
	tests = discover.Filter(tests, patterns)

	implName, err := cmd.Flags().GetString("impl")
	if err != nil {
		return fmt.Errorf("failed to get impl flag: %w", err)
	}
	var kind executer.Kind
	if implName != "" {
		if kind, err = executer.ParseKind(implName); err != nil {
			return err
		}
	}

	name := color.New(color.Bold)
	dim := color.New(color.Faint)
	out := cmd.OutOrStdout()
	for _, t := range tests {
		line := fmt.Sprintf("%s: %s %s", name.Sprint(t.Name()), t.Specs, dim.Sprintf("(%s)", t.Origin))
		if implName != "" {
			expected := oracle.Applicable(t.Specs, executer.Properties(kind))
			parts := make([]string, 0, len(expected))
			for _, b := range expected {
				parts = append(parts, b.String())
			}
			if len(parts) == 0 {
				parts = append(parts, "n/a")
			}
			line += " => " + strings.Join(parts, ", ")
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d tests\n", len(tests))
	}
	return nil
}
