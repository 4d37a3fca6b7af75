package list

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	StableVectorStatsName = "xstable/sv"
)

type stableVectorStats struct {
	attrs        metric.MeasurementOption
	insertCount  metric.Int64Counter
	eraseCount   metric.Int64Counter
	length       metric.Int64UpDownCounter
	reindexSlots metric.Int64Histogram
}

func (stats *stableVectorStats) RecordInsert(n int) {
	if stats == nil || n <= 0 {
		return
	}
	stats.insertCount.Add(context.Background(), int64(n), stats.attrs)
	stats.length.Add(context.Background(), int64(n), stats.attrs)
}

func (stats *stableVectorStats) RecordErase(n int) {
	if stats == nil || n <= 0 {
		return
	}
	stats.eraseCount.Add(context.Background(), int64(n), stats.attrs)
	stats.length.Add(context.Background(), -int64(n), stats.attrs)
}

// RecordLenDelta tracks length changes that are neither insert nor erase,
// swap and whole content replacement.
func (stats *stableVectorStats) RecordLenDelta(delta int) {
	if stats == nil || delta == 0 {
		return
	}
	stats.length.Add(context.Background(), int64(delta), stats.attrs)
}

func (stats *stableVectorStats) RecordReindex(slots int) {
	if stats == nil {
		return
	}
	stats.reindexSlots.Record(context.Background(), int64(slots), stats.attrs)
}

func newStableVectorStats(name string) *stableVectorStats {
	meterName := StableVectorStatsName
	if len(name) > 0 {
		meterName = fmt.Sprintf("%s/%s", StableVectorStatsName, name)
	}
	meter := otel.Meter(meterName)
	return &stableVectorStats{
		attrs: metric.WithAttributeSet(attribute.NewSet(
			attribute.String("xstable.sv.name", name),
		)),
		insertCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xstable.sv.insert.count",
			metric.WithDescription("The number of elements inserted into the stable vector."),
		)),
		eraseCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xstable.sv.erase.count",
			metric.WithDescription("The number of elements erased from the stable vector."),
		)),
		length: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"xstable.sv.len",
			metric.WithDescription("The number of elements held by the stable vector."),
		)),
		reindexSlots: lo.Must[metric.Int64Histogram](meter.Int64Histogram(
			"xstable.sv.reindex.slots",
			metric.WithDescription("The number of back pointers rewritten by one reindex pass."),
			metric.WithExplicitBucketBoundaries(1, 8, 64, 512, 4096, 32768),
		)),
	}
}
