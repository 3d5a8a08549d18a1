package main

import (
	"github.com/spf13/cobra"

	"github.com/fqcompressor/fqbench/tools"
)

const runExample = `  fqbench run -i reads.fastq --tools gzip,zstd -t 1 -t 8 --report report.md
  fqbench run -i reads.fastq.gz --all --json results.json --html report.html`

func newRunCmd(a *app) *cobra.Command {
	var (
		p        sweepParams
		all      bool
		out      outputs
		toolList []string
	)
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Benchmark configured tools on an input file",
		Example: runExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := tools.Load(a.opts.ConfigFile)
			if err != nil {
				return err
			}
			// unknown ids end up in the skipped list
			if !all && len(toolList) > 0 {
				p.tools = toolList
			}
			if p.quiet {
				a.quiet()
			}
			return a.sweep(cmd.Context(), reg, p, out)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&p.input, "input", "i", "", "FASTQ file to compress (.gz inputs are expanded once)")
	f.StringSliceVar(&toolList, "tools", nil, "comma separated tool ids (default every configured tool)")
	f.BoolVar(&all, "all", false, "benchmark every configured tool")
	f.IntSliceVarP(&p.threads, "threads", "t", nil, "thread counts, repeatable (default from settings)")
	f.IntVarP(&p.runs, "runs", "r", 0, "runs per configuration (default from settings)")
	f.StringVar(&p.workDir, "workdir", "", "shared work directory (default $FQBENCH_WORKDIR or a temporary one per trial)")
	f.BoolVar(&p.keepOutputs, "keep", false, "keep compressed and decompressed files in the work directory")
	f.BoolVarP(&p.quiet, "quiet", "q", false, "no progress bar and no report on stdout")
	out.addFlags(cmd, true)
	_ = cmd.MarkFlagRequired("input")
	cmd.MarkFlagsMutuallyExclusive("tools", "all")
	return cmd
}
