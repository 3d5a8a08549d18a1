package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fqcompressor/fqbench/tools"
)

// variant is one label=binary pair of the compare command.
type variant struct {
	label  string
	binary string
}

func parseVariant(s string) (variant, error) {
	label, binary, ok := strings.Cut(s, "=")
	label, binary = strings.TrimSpace(label), strings.TrimSpace(binary)
	if !ok || label == "" || binary == "" {
		return variant{}, errors.Errorf("invalid variant %q, expected label=path", s)
	}
	// the label names output files
	if strings.ContainsAny(label, "/"+string(filepath.Separator)) {
		return variant{}, errors.Errorf("invalid variant label %q, path separators are not allowed", label)
	}
	return variant{label: label, binary: binary}, nil
}

// compareRegistry returns an empty registry carrying the settings of the
// config file when there is one, the defaults otherwise.
func (a *app) compareRegistry() (*tools.Registry, error) {
	if _, err := os.Stat(a.opts.ConfigFile); err != nil {
		a.logger.WithField("config", a.opts.ConfigFile).Debug("no config file, using default settings")
		return tools.NewRegistry(tools.DefaultSettings()), nil
	}
	loaded, err := tools.Load(a.opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	return tools.NewRegistry(loaded.Settings), nil
}

func newCompareCmd(a *app) *cobra.Command {
	var (
		p        sweepParams
		out      outputs
		variants []string
	)
	cmd := &cobra.Command{
		Use:     "compare",
		Short:   "Compare two builds of the same compressor",
		Example: `  fqbench compare -i reads.fastq --variant gcc=./build-gcc/fqc --variant clang=./build-clang/fqc`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(variants) != 2 {
				return errors.Errorf("compare needs exactly two --variant flags, got %d", len(variants))
			}
			reg, err := a.compareRegistry()
			if err != nil {
				return err
			}
			for _, s := range variants {
				v, err := parseVariant(s)
				if err != nil {
					return err
				}
				d, err := reg.Variant(v.label, v.binary)
				if err != nil {
					return err
				}
				p.tools = append(p.tools, d.ID)
			}
			if len(p.threads) == 0 {
				p.threads = reg.Settings.CompareThreads
			}
			if p.quiet {
				a.quiet()
			}
			p.sharedWorkDir = true
			return a.sweep(cmd.Context(), reg, p, out)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&p.input, "input", "i", "", "FASTQ file to compress (.gz inputs are expanded once)")
	f.StringArrayVar(&variants, "variant", nil, "label=path of a build to compare, given twice")
	f.IntSliceVarP(&p.threads, "threads", "t", nil, "thread counts, repeatable (default 1,4,8)")
	f.IntVarP(&p.runs, "runs", "r", 0, "runs per configuration (default from settings)")
	f.StringVar(&p.workDir, "workdir", "", "shared work directory (default a temporary one)")
	f.BoolVar(&p.keepOutputs, "keep", false, "keep compressed and decompressed files in the work directory")
	f.BoolVarP(&p.quiet, "quiet", "q", false, "no progress bar and no report on stdout")
	out.addFlags(cmd, true)
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
