/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jargo-build/jargo/internal/jerr"
	"github.com/jargo-build/jargo/internal/scaffold"
)

var initJavaVersion string

var InitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Scaffold a Jargo.toml and src/ tree into an existing directory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := projectPath(args)
		name := filepath.Base(abs(path))
		if err := scaffold.Init(path, name, initJavaVersion); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(int(jerr.CodeFor(err)))
		}
	},
}

func init() {
	InitCmd.Flags().StringVar(&initJavaVersion, "java", "21", "Java release version")
	RootCmd.AddCommand(InitCmd)
}

func abs(path string) string {
	a, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return a
}
