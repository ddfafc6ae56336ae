package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"c0check/internal/executer"
	"c0check/internal/oracle"
	"c0check/internal/specparse"
)

var parseCmd = &cobra.Command{
	Use:   "parse <spec>",
	Short: "Parse a spec and show what it expects from each implementation",
	Long: `Parse a spec string (the //test marker is optional), print its canonical
form and, for every implementation, the behaviors that apply to it.`,
	Example: `  c0check parse '//test safe => segfault; !safe => runs'`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    parseSpec,
}

func parseSpec(cmd *cobra.Command, args []string) error {
	if _, err := useColor(cmd, os.Stdout); err != nil {
		return err
	}
	input := strings.Join(args, " ")
	specs, err := specparse.Parse(input, specparse.Options{})
	if err != nil {
		return err
	}

	warn := color.New(color.FgYellow)
	label := color.New(color.Bold)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s %s\n", label.Sprint("spec:"), specs)
	for _, kind := range executer.Kinds() {
		caps := executer.Properties(kind)
		expected := oracle.Applicable(specs, caps)
		parts := make([]string, 0, len(expected))
		for _, b := range expected {
			parts = append(parts, b.String())
		}
		summary := "n/a (not run)"
		if len(parts) > 0 {
			summary = strings.Join(parts, ", ")
		}
		fmt.Fprintf(out, "  %-5s %s\n", kind, summary)
		for _, c := range oracle.Conflicts(specs, caps) {
			fmt.Fprintf(out, "        %s\n", warn.Sprintf("warning: %s; this test can never pass", c))
		}
	}
	return nil
}
