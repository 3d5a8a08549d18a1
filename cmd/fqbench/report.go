package main

import (
	"github.com/spf13/cobra"

	"github.com/fqcompressor/fqbench/report"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		jsonPath string
		quiet    bool
		out      outputs
	)
	cmd := &cobra.Command{
		Use:     "report",
		Short:   "Render reports from a saved results file",
		Example: `  fqbench report -j results.json --html report.html --charts charts`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := report.LoadJSON(jsonPath)
			if err != nil {
				return err
			}
			a.logger.WithField("run_id", suite.RunID).Debug("loaded results")
			return a.render(suite, out, quiet)
		},
	}
	cmd.Flags().StringVarP(&jsonPath, "json", "j", "", "results file written by run --json")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no report on stdout")
	out.addFlags(cmd, false)
	_ = cmd.MarkFlagRequired("json")
	return cmd
}
