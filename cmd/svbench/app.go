package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/benz9527/xstable/bench"
	"github.com/benz9527/xstable/lib/xlog"
	"github.com/benz9527/xstable/observability"
)

func newLogger(cfg *runConfig) xlog.XLogger {
	opts := make([]xlog.XLoggerOption, 0, 2)
	if len(cfg.logLevel) > 0 {
		opts = append(opts, xlog.WithXLoggerLevel(xlog.LogLevel(cfg.logLevel)))
	}
	if cfg.logText {
		opts = append(opts, xlog.WithXLoggerEncoder(xlog.PlainText))
	}
	return xlog.NewXLogger(opts...)
}

// metricsExporter marks the global meter provider as installed.
type metricsExporter struct {
	kind string
}

func newMetricsExporter(lc fx.Lifecycle, cfg *runConfig, out io.Writer, logger xlog.XLogger) (*metricsExporter, error) {
	var (
		shutdown observability.ShutdownFunc
		err      error
	)
	switch cfg.metrics {
	case metricsConsole:
		shutdown, err = observability.NewConsoleMetricsExporter(cfg.interval, cfg.interval,
			stdoutmetric.WithWriter(out),
		)
		if err != nil {
			return nil, err
		}
	case metricsPrometheus:
		var handler http.Handler
		shutdown, handler, err = observability.NewPrometheusMetricsExporter(nil)
		if err != nil {
			return nil, err
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		srv := &http.Server{Addr: cfg.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				ln, err := net.Listen("tcp", srv.Addr)
				if err != nil {
					return err
				}
				go func() {
					if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error(err, "[svbench] metrics server stopped")
					}
				}()
				logger.Info("[svbench] metrics served", zap.String("addr", ln.Addr().String()))
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return srv.Shutdown(ctx)
			},
		})
	default:
		return &metricsExporter{kind: metricsNone}, nil
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return shutdown(ctx)
		},
	})
	return &metricsExporter{kind: cfg.metrics}, nil
}

// The exporter is a parameter so the global meter provider is installed
// before any vector builds its instruments.
func newRunner(lc fx.Lifecycle, cfg *runConfig, logger xlog.XLogger, exporter *metricsExporter) (*bench.Runner, error) {
	opts := []bench.RunnerOption{
		bench.WithRunnerWorkers(cfg.workers),
		bench.WithRunnerLogger(logger),
	}
	if cfg.stats && exporter.kind != metricsNone {
		opts = append(opts, bench.WithRunnerStats())
	}
	runner, err := bench.NewRunner(opts...)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			runner.Release()
			return nil
		},
	})
	return runner, nil
}

func newApp(cfg *runConfig, out io.Writer, populate ...any) *fx.App {
	return fx.New(
		fx.Supply(cfg),
		fx.Provide(
			func() io.Writer { return out },
			newLogger,
			newMetricsExporter,
			newRunner,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Populate(populate...),
	)
}

func runBench(ctx context.Context, out io.Writer, cfg *runConfig) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	workloads, err := bench.LoadWorkloads(cfg.configPath)
	if err != nil {
		return err
	}

	var (
		runner *bench.Runner
		logger xlog.XLogger
	)
	app := newApp(cfg, out, &runner, &logger)
	if err = app.Err(); err != nil {
		return err
	}
	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err = app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
		defer cancel()
		if stopErr := app.Stop(stopCtx); stopErr != nil && err == nil {
			err = stopErr
		}
		_ = logger.Sync()
	}()

	observability.InitAppStats(ctx, "svbench", nil)
	results, err := runner.Run(ctx, workloads)
	report(out, logger, results)
	if err != nil {
		logger.ErrorStack(err, "[svbench] run failed")
		return err
	}
	return nil
}

func report(out io.Writer, logger xlog.XLogger, results []bench.Result) {
	for _, res := range results {
		_, _ = fmt.Fprintf(out, "%-16s len=%-6d rejected=%-5d checks=%-8d invalidated=%-5d elapsed=%s\n",
			res.Name, res.FinalLen, res.Rejected, res.StabilityChecks, res.Invalidated, res.Elapsed)
	}
	rss, err := observability.ProcessRSS(context.Background())
	if err != nil {
		logger.Warn("[svbench] unable to read process memory", zap.Error(err))
		return
	}
	logger.Info("[svbench] process memory", zap.Uint64("rss", rss))
	_, _ = fmt.Fprintf(out, "rss=%d\n", rss)
}
