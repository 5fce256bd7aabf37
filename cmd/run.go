/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/jargo-build/jargo/internal/buildlog"
	"github.com/jargo-build/jargo/internal/jerr"
	"github.com/jargo-build/jargo/internal/orchestrate"
)

var RunCmd = &cobra.Command{
	Use:                "run [path] -- [args]",
	Short:              "Compile and run the project's main class",
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	Run: func(cmd *cobra.Command, args []string) {
		path, progArgs := splitRunArgs(args)
		if err := doRun(path, progArgs); err != nil {
			os.Exit(int(jerr.CodeFor(err)))
		}
	},
}

func init() {
	RootCmd.AddCommand(RunCmd)
}

// splitRunArgs separates an optional leading project path from the
// program arguments that follow a literal "--", e.g.
// `jargo run ./myapp -- --verbose`.
func splitRunArgs(args []string) (path string, progArgs []string) {
	path = "."
	for i, a := range args {
		if a == "--" {
			progArgs = args[i+1:]
			return path, progArgs
		}
		if i == 0 && a != "--" {
			path = a
		}
	}
	return path, nil
}

func doRun(path string, progArgs []string) error {
	p, err := orchestrate.Load(path)
	if err != nil {
		return err
	}
	log := buildlog.New()
	err = p.Run(context.Background(), log, progArgs)
	log.Finish()
	return err
}
