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

var UpdateCmd = &cobra.Command{
	Use:   "update [path]",
	Short: "Discard the lock file and re-resolve from the manifest",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := doUpdate(projectPath(args)); err != nil {
			os.Exit(int(jerr.CodeFor(err)))
		}
	},
}

func init() {
	RootCmd.AddCommand(UpdateCmd)
}

func doUpdate(path string) error {
	p, err := orchestrate.Load(path)
	if err != nil {
		return err
	}
	log := buildlog.New()
	_, err = p.Resolve(context.Background(), log, true)
	log.Finish()
	return err
}
