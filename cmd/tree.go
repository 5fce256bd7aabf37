/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jargo-build/jargo/internal/buildlog"
	"github.com/jargo-build/jargo/internal/coordinate"
	"github.com/jargo-build/jargo/internal/jerr"
	"github.com/jargo-build/jargo/internal/orchestrate"
	"github.com/jargo-build/jargo/internal/resolver"
)

var TreeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "Print the resolved dependency tree",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := doTree(projectPath(args)); err != nil {
			os.Exit(int(jerr.CodeFor(err)))
		}
	},
}

func init() {
	RootCmd.AddCommand(TreeCmd)
}

func doTree(path string) error {
	p, err := orchestrate.Load(path)
	if err != nil {
		return err
	}
	log := buildlog.New()
	res, err := p.Resolve(context.Background(), log, false)
	log.Finish()
	if err != nil {
		return err
	}

	root := coordinate.Module{Artifact: p.Manifest.Package.Name}
	node := pterm.TreeNode{Text: p.Manifest.Package.Name + " " + p.Manifest.Package.Version}
	node.Children = childNodes(root, res, map[coordinate.Module]bool{})
	return pterm.DefaultTree.WithRoot(node).Render()
}

// childNodes renders res's direct children of parent, skipping modules
// already on the path to parent to keep cycles from looping forever
// (spec §4.1 step 5 "cycle guard").
func childNodes(parent coordinate.Module, res *resolver.Result, seen map[coordinate.Module]bool) []pterm.TreeNode {
	var out []pterm.TreeNode
	seen = copySeen(seen)
	seen[parent] = true
	for _, e := range res.Edges {
		if e.Parent != parent || seen[e.Child] {
			continue
		}
		n, ok := res.Nodes[e.Child]
		if !ok {
			continue
		}
		out = append(out, pterm.TreeNode{
			Text:     n.Group + ":" + n.Artifact + " " + n.Version + " (" + string(n.Scope) + ")",
			Children: childNodes(e.Child, res, seen),
		})
	}
	return out
}

func copySeen(in map[coordinate.Module]bool) map[coordinate.Module]bool {
	out := make(map[coordinate.Module]bool, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
