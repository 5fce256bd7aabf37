/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jargo-build/jargo/internal/jerr"
)

var FixCmd = &cobra.Command{
	Use:   "fix [path]",
	Short: "Apply formatting fixes to the project's source tree in place",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := doFormat(projectPath(args), false); err != nil {
			os.Exit(int(jerr.CodeFor(err)))
		}
	},
}

func init() {
	RootCmd.AddCommand(FixCmd)
}
