/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jargo-build/jargo/internal/jerr"
	"github.com/jargo-build/jargo/internal/scaffold"
)

var newJavaVersion string

var NewCmd = &cobra.Command{
	Use:   "new <path>",
	Short: "Create a new jargo project in a fresh directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := scaffold.New(args[0], newJavaVersion); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(int(jerr.CodeFor(err)))
		}
	},
}

func init() {
	NewCmd.Flags().StringVar(&newJavaVersion, "java", "21", "Java release version")
	RootCmd.AddCommand(NewCmd)
}
