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

var DocCmd = &cobra.Command{
	Use:   "doc [path]",
	Short: "Generate Javadoc HTML for the project's source tree",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := doDoc(projectPath(args)); err != nil {
			os.Exit(int(jerr.CodeFor(err)))
		}
	},
}

func init() {
	RootCmd.AddCommand(DocCmd)
}

func doDoc(path string) error {
	p, err := orchestrate.Load(path)
	if err != nil {
		return err
	}
	log := buildlog.New()
	res, err := p.Resolve(context.Background(), log, false)
	if err != nil {
		log.Finish()
		return err
	}
	cp := p.Classpaths(res)
	outDir, err := p.Doc(context.Background(), log, cp)
	log.Finish()
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", outDir)
	return nil
}
