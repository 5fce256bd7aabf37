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

var fmtCheck bool

var FmtCmd = &cobra.Command{
	Use:   "fmt [path]",
	Short: "Format the project's source tree in place",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := doFormat(projectPath(args), fmtCheck); err != nil {
			os.Exit(int(jerr.CodeFor(err)))
		}
	},
}

func init() {
	FmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "report files that would change without writing them")
	RootCmd.AddCommand(FmtCmd)
}

func doFormat(path string, check bool) error {
	p, err := orchestrate.Load(path)
	if err != nil {
		return err
	}
	log := buildlog.New()
	out, err := p.Format(context.Background(), log, check)
	log.Finish()
	if out != "" {
		fmt.Print(out)
	}
	return err
}
