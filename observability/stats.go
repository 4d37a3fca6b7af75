package observability

import (
	"context"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const AppStatsName = "xstable/app"

var (
	once sync.Once
)

type appStats struct {
	ctx              context.Context
	shutdownCallback ShutdownFunc
	goroutines       metric.Int64ObservableUpDownCounter
	processes        metric.Int64ObservableUpDownCounter
	rss              metric.Int64ObservableGauge
}

func (stats *appStats) waitForShutdown() {
	if stats == nil || stats.shutdownCallback == nil {
		return
	}
	go func() {
		<-stats.ctx.Done()
		_ = stats.shutdownCallback(context.Background())
	}()
}

// ProcessRSS returns the resident set size of the current process in bytes.
func ProcessRSS(ctx context.Context) (uint64, error) {
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}

func appStatsName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString(AppStatsName)
	builder.WriteString("/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitAppStats registers the process level stats into the global meter
// provider once. shutdown, if not nil, is invoked after ctx is done.
func InitAppStats(ctx context.Context, name string, shutdown ShutdownFunc) {
	once.Do(func() {
		meter := otel.Meter(
			appStatsName(name),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		stats := &appStats{
			ctx:              ctx,
			shutdownCallback: shutdown,
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.NumGoroutine()))
					return nil
				}),
			)),
			processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.processes",
				metric.WithDescription(`The application processes' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.GOMAXPROCS(0)))
					return nil
				}),
			)),
			rss: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
				"app.process.rss",
				metric.WithDescription(`The application resident set size.`),
				metric.WithUnit("By"),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					rss, err := ProcessRSS(ctx)
					if err != nil {
						return err
					}
					ob.Observe(int64(rss))
					return nil
				}),
			)),
		}
		_ = otelruntime.Start()
		stats.waitForShutdown()
	})
}
