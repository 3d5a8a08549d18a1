package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fqcompressor/fqbench/config"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	opts   *config.Options
	logger *logrus.Logger
	out    io.Writer
	errOut io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var configFile, logLevel, logFormat string

	cmd := &cobra.Command{
		Use:           "fqbench",
		Short:         "Benchmark FASTQ compressors across thread counts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.Load()
			if err != nil {
				return err
			}
			if configFile != "" {
				opts.ConfigFile = configFile
			}
			if logLevel != "" {
				opts.LogLevel = logLevel
			}
			if logFormat != "" {
				opts.LogFormat = logFormat
			}
			a.opts = opts
			a.out = cmd.OutOrStdout()
			a.errOut = cmd.ErrOrStderr()
			a.logger = opts.NewLogger(a.errOut)
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "tool definition file (default $FQBENCH_CONFIG or tools.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "silent|error|warn|info|debug (default $FQBENCH_LOG_LEVEL or info)")
	pf.StringVar(&logFormat, "log-format", "", "text|json (default $FQBENCH_LOG_FORMAT or text)")

	cmd.AddCommand(newRunCmd(a))
	cmd.AddCommand(newCompareCmd(a))
	cmd.AddCommand(newListToolsCmd(a))
	cmd.AddCommand(newReportCmd(a))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// quiet keeps warnings and errors only.
func (a *app) quiet() {
	if a.logger.GetLevel() > logrus.WarnLevel {
		a.logger.SetLevel(logrus.WarnLevel)
	}
}
