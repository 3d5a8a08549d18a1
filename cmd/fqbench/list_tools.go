package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fqcompressor/fqbench/tools"
)

func newListToolsCmd(a *app) *cobra.Command {
	var showPaths bool
	cmd := &cobra.Command{
		Use:   "list-tools [id...]",
		Short: "Show configured tools and whether their binary is installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := tools.Load(a.opts.ConfigFile)
			if err != nil {
				return err
			}
			list := reg.Tools()
			if len(args) > 0 {
				if list, err = reg.Select(args); err != nil {
					return err
				}
			}
			for _, d := range list {
				fmt.Fprintln(a.out, toolLine(d, showPaths))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showPaths, "paths", false, "print the resolved binary path")
	return cmd
}

func toolLine(d *tools.Descriptor, showPath bool) string {
	mark := color.GreenString("✓")
	if !d.Available() {
		mark = color.RedString("✗")
	}
	line := fmt.Sprintf("[%s] %s: %s (%s)", mark, d.ID, d.Name, d.Category)
	if showPath && d.Available() {
		line += " " + color.New(color.Faint).Sprint(d.Path())
	}
	return line
}
