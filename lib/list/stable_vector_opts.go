package list

import (
	"github.com/benz9527/xstable/lib/infra"
	"github.com/benz9527/xstable/lib/xlog"
)

type stableVectorOption struct {
	logger    xlog.XLogger
	statsName string
	maxSize   int // 0 means unlimited
	chunkSize int
	withStats bool
}

type StableVectorOption func(opt *stableVectorOption) error

func newStableVectorOption(opts ...StableVectorOption) (*stableVectorOption, error) {
	opt := &stableVectorOption{
		chunkSize: defaultStableVectorArenaChunkSize,
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(opt); err != nil {
			return nil, err
		}
	}
	if opt.logger == nil {
		opt.logger = xlog.NewNopXLogger()
	}
	return opt, nil
}

// WithStableVectorMaxSize caps the number of elements. A mutation that would
// exceed the cap fails with ErrStableVectorFull and leaves the vector untouched.
func WithStableVectorMaxSize(size int) StableVectorOption {
	return func(opt *stableVectorOption) error {
		if size <= 0 {
			return infra.WrapErrorStackWithMessage(ErrStableVectorInvalidOption, "max size must be positive")
		}
		opt.maxSize = size
		return nil
	}
}

// WithStableVectorArenaChunkSize sets how many nodes one arena chunk holds.
func WithStableVectorArenaChunkSize(size int) StableVectorOption {
	return func(opt *stableVectorOption) error {
		if size <= 0 {
			return infra.WrapErrorStackWithMessage(ErrStableVectorInvalidOption, "arena chunk size must be positive")
		}
		opt.chunkSize = size
		return nil
	}
}

func WithStableVectorLogger(logger xlog.XLogger) StableVectorOption {
	return func(opt *stableVectorOption) error {
		if logger == nil {
			return infra.WrapErrorStackWithMessage(ErrStableVectorInvalidOption, "nil logger")
		}
		opt.logger = logger
		return nil
	}
}

// WithStableVectorStats records the vector metrics through the global otel
// meter provider, named after StableVectorStatsName/name.
func WithStableVectorStats(name string) StableVectorOption {
	return func(opt *stableVectorOption) error {
		opt.withStats = true
		opt.statsName = name
		return nil
	}
}
