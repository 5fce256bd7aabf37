/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootCmd is jargo's top-level command; each subcommand is registered
// against it in its own init().
var RootCmd = &cobra.Command{
	Use:   "jargo",
	Short: "Jargo - a Cargo-inspired build tool for Java",
	Long:  "Jargo builds, tests, and packages Java projects from a single Jargo.toml manifest, resolving dependencies straight from Maven Central.",
}

// Execute runs the command tree; errors are printed by cobra itself, this
// only sets the process exit code. A panic escaping a command is reported
// at exit code 101, distinct from the 1/2 user/internal-error codes
// individual commands already set via jerr.CodeFor.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n", r)
			os.Exit(101)
		}
	}()
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func projectPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
