/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jargo-build/jargo/internal/buildlog"
	"github.com/jargo-build/jargo/internal/jerr"
	"github.com/jargo-build/jargo/internal/orchestrate"
)

var BuildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Resolve dependencies, compile, and package a project",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := doBuild(projectPath(args)); err != nil {
			os.Exit(int(jerr.CodeFor(err)))
		}
	},
}

func init() {
	RootCmd.AddCommand(BuildCmd)
}

func doBuild(path string) error {
	p, err := orchestrate.Load(path)
	if err != nil {
		return err
	}
	log := buildlog.New()
	jarPath, err := p.Build(context.Background(), log)
	log.Finish()
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", jarPath)
	return nil
}
