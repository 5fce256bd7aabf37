/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jargo-build/jargo/internal/buildlog"
	"github.com/jargo-build/jargo/internal/jerr"
	"github.com/jargo-build/jargo/internal/manifest"
	"github.com/jargo-build/jargo/internal/orchestrate"
	"github.com/jargo-build/jargo/internal/search"
)

var addDev bool

var AddCmd = &cobra.Command{
	Use:   "add <group:artifact[:version]>",
	Short: "Add a dependency to Jargo.toml and re-resolve",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := doAdd(".", args[0], addDev); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(int(jerr.CodeFor(err)))
		}
	},
}

func init() {
	AddCmd.Flags().BoolVar(&addDev, "dev", false, "add as a dev-dependency")
	RootCmd.AddCommand(AddCmd)
}

func doAdd(dir, spec string, dev bool) error {
	group, artifact, version, err := splitAddSpec(spec)
	if err != nil {
		return err
	}
	if version == "" {
		version, err = search.NewClient().LatestVersion(context.Background(), group, artifact)
		if err != nil {
			return err
		}
	}
	if err := manifest.AddDependency(dir, group, artifact, version, dev); err != nil {
		return err
	}

	p, err := orchestrate.Load(dir)
	if err != nil {
		return err
	}
	log := buildlog.New()
	_, err = p.Resolve(context.Background(), log, true)
	log.Finish()
	if err != nil {
		return err
	}
	fmt.Printf("added %s:%s:%s\n", group, artifact, version)
	return nil
}

func splitAddSpec(spec string) (group, artifact, version string, err error) {
	parts := strings.Split(spec, ":")
	switch len(parts) {
	case 2:
		return parts[0], parts[1], "", nil
	case 3:
		return parts[0], parts[1], parts[2], nil
	default:
		return "", "", "", fmt.Errorf("invalid dependency %q, must be <group>:<artifact>[:<version>]", spec)
	}
}
