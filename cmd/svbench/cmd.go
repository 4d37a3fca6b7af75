package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/benz9527/xstable/lib/infra"
)

const (
	metricsNone       = "none"
	metricsConsole    = "console"
	metricsPrometheus = "prometheus"
)

// runConfig is the run command configuration, bound from the flags.
type runConfig struct {
	configPath  string
	workers     int
	metrics     string
	metricsAddr string
	interval    time.Duration
	logLevel    string
	logText     bool
	stats       bool
}

func (cfg *runConfig) validate() error {
	if cfg.workers <= 0 {
		return infra.NewErrorStack("[svbench] --workers must be positive")
	}
	switch cfg.metrics {
	case metricsNone, metricsConsole, metricsPrometheus:
	default:
		return infra.NewErrorStack("[svbench] unknown --metrics " + cfg.metrics)
	}
	if cfg.metrics == metricsConsole && cfg.interval <= 0 {
		return infra.NewErrorStack("[svbench] --interval must be positive")
	}
	return nil
}

func newRootCmd() *cobra.Command {
	cfg := &runConfig{}
	root := &cobra.Command{
		Use:          "svbench",
		Short:        "Exercise stable vectors against a slice oracle",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfg.logLevel, "log-level", "", "log level DEBUG|INFO|WARN|ERROR, XLOG_LVL env when empty")
	root.PersistentFlags().BoolVar(&cfg.logText, "log-text", false, "plain text logs instead of JSON")

	run := &cobra.Command{
		Use:   "run",
		Short: "Run the workloads of a YAML file, the embedded ones when --config is empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.logLevel = strings.ToUpper(strings.TrimSpace(cfg.logLevel))
			if err := cfg.validate(); err != nil {
				return err
			}
			return runBench(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
	run.Flags().StringVarP(&cfg.configPath, "config", "c", "", "workload YAML file")
	run.Flags().IntVarP(&cfg.workers, "workers", "w", 4, "number of workloads run concurrently")
	run.Flags().StringVar(&cfg.metrics, "metrics", metricsNone, "metrics exporter none|console|prometheus")
	run.Flags().StringVar(&cfg.metricsAddr, "metrics-addr", "127.0.0.1:9464", "prometheus listen address")
	run.Flags().DurationVar(&cfg.interval, "interval", 5*time.Second, "console exporter push interval")
	run.Flags().BoolVar(&cfg.stats, "stats", true, "record the stable vector metrics")

	root.AddCommand(run)
	return root
}
