/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jargo-build/jargo/internal/jerr"
	"github.com/jargo-build/jargo/internal/orchestrate"
)

var CleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove the target directory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := doClean(projectPath(args)); err != nil {
			os.Exit(int(jerr.CodeFor(err)))
		}
	},
}

func init() {
	RootCmd.AddCommand(CleanCmd)
}

func doClean(path string) error {
	p, err := orchestrate.Load(path)
	if err != nil {
		return err
	}
	return p.Clean()
}
