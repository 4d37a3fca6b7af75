package bench

import (
	"context"
	"errors"
	"fmt"
	randv2 "math/rand/v2"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xstable/lib/infra"
	"github.com/benz9527/xstable/lib/list"
	"github.com/benz9527/xstable/lib/xlog"
)

var (
	ErrWorkloadMismatch = infra.NewErrorStack("[svbench] stable vector diverged from the oracle")
)

type Result struct {
	Name string
	// OpCounts counts the applied operations by kind.
	OpCounts map[OpKind]int
	// Rejected counts the mutations refused by the size cap.
	Rejected int
	// StabilityChecks counts the tracked iterator checks that passed.
	StabilityChecks int
	// Invalidated counts the tracked iterators observed invalid after
	// a whole content replacement.
	Invalidated int
	FinalLen    int
	Elapsed     time.Duration
}

type runnerOption struct {
	logger    xlog.XLogger
	workers   int
	withStats bool
}

type RunnerOption func(opt *runnerOption) error

func WithRunnerWorkers(workers int) RunnerOption {
	return func(opt *runnerOption) error {
		if workers <= 0 {
			return infra.NewErrorStack("[svbench] workers must be positive")
		}
		opt.workers = workers
		return nil
	}
}

func WithRunnerLogger(logger xlog.XLogger) RunnerOption {
	return func(opt *runnerOption) error {
		if logger == nil {
			return infra.NewErrorStack("[svbench] nil logger")
		}
		opt.logger = logger
		return nil
	}
}

// WithRunnerStats enables the stable vector metrics of every workload.
func WithRunnerStats() RunnerOption {
	return func(opt *runnerOption) error {
		opt.withStats = true
		return nil
	}
}

// Runner executes workloads concurrently. Every workload owns its
// containers, nothing is shared across the pool goroutines.
type Runner struct {
	pool   *ants.Pool
	logger xlog.XLogger
	opt    *runnerOption
}

func NewRunner(opts ...RunnerOption) (*Runner, error) {
	opt := &runnerOption{
		workers: 4,
	}
	for _, o := range opts {
		if err := o(opt); err != nil {
			return nil, err
		}
	}
	if opt.logger == nil {
		opt.logger = xlog.NewNopXLogger()
	}
	pool, err := ants.NewPool(
		opt.workers,
		ants.WithPreAlloc(true),
		ants.WithLogger(xlog.NewAntsXLogger(opt.logger)),
	)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	return &Runner{
		pool:   pool,
		logger: opt.logger.Named("svbench"),
		opt:    opt,
	}, nil
}

func (r *Runner) Release() {
	r.pool.Release()
}

// Run executes workloads and returns one result per workload in order.
// The errors of all failed workloads are combined.
func (r *Runner) Run(ctx context.Context, workloads []Workload) ([]Result, error) {
	results := make([]Result, len(workloads))
	errs := make([]error, len(workloads))
	wg := sync.WaitGroup{}
	for i := range workloads {
		i := i
		wg.Add(1)
		if err := r.pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = r.runWorkload(ctx, workloads[i])
		}); err != nil {
			wg.Done()
			errs[i] = infra.WrapErrorStackWithMessage(err, "[svbench] unable to submit workload "+workloads[i].Name)
		}
	}
	wg.Wait()
	return results, multierr.Combine(errs...)
}

type trackedIter struct {
	it  list.Iterator[int]
	val int
}

// svState is one container with its oracle and the iterators
// taken from it that must keep denoting their element.
type svState struct {
	sv      list.StableVector[int]
	oracle  []int
	tracked []trackedIter
}

func (s *svState) track(it list.Iterator[int], val int, limit int) {
	if len(s.tracked) < limit {
		s.tracked = append(s.tracked, trackedIter{it: it, val: val})
	}
}

// untrack drops the iterators denoting slots in [first, last).
func (s *svState) untrack(first, last int) {
	kept := s.tracked[:0]
	for _, t := range s.tracked {
		if pos := t.it.Pos(); pos < first || pos >= last {
			kept = append(kept, t)
		}
	}
	s.tracked = kept
}

func (s *svState) checkTracked() (int, error) {
	for _, t := range s.tracked {
		if !t.it.Valid() {
			return 0, infra.WrapErrorStackWithMessage(ErrWorkloadMismatch,
				fmt.Sprintf("tracked iterator of %d invalidated", t.val))
		}
		pos := t.it.Pos()
		if t.it.Value() != t.val || pos >= len(s.oracle) || s.oracle[pos] != t.val {
			return 0, infra.WrapErrorStackWithMessage(ErrWorkloadMismatch,
				fmt.Sprintf("tracked iterator of %d moved to slot %d", t.val, pos))
		}
	}
	return len(s.tracked), nil
}

func (s *svState) checkContent() error {
	if s.sv.Len() != len(s.oracle) {
		return infra.WrapErrorStackWithMessage(ErrWorkloadMismatch,
			fmt.Sprintf("len %d, expected %d", s.sv.Len(), len(s.oracle)))
	}
	return s.sv.Foreach(func(idx int, v int) error {
		if s.oracle[idx] != v {
			return infra.WrapErrorStackWithMessage(ErrWorkloadMismatch,
				fmt.Sprintf("slot %d holds %d, expected %d", idx, v, s.oracle[idx]))
		}
		return nil
	})
}

type workloadExec struct {
	w      Workload
	rng    *randv2.Rand
	active *svState
	spare  *svState
	next   int
	res    Result
}

func (e *workloadExec) nextVal() int {
	e.next++
	return e.next
}

func (e *workloadExec) freshVals(n int) []int {
	vals := make([]int, n)
	for i := range vals {
		vals[i] = e.nextVal()
	}
	return vals
}

func (r *Runner) newState(w Workload, values []int) (*svState, error) {
	opts := []list.StableVectorOption{
		list.WithStableVectorLogger(r.logger.Named(w.Name)),
	}
	if w.MaxSize > 0 {
		opts = append(opts, list.WithStableVectorMaxSize(w.MaxSize))
	}
	if w.ChunkSize > 0 {
		opts = append(opts, list.WithStableVectorArenaChunkSize(w.ChunkSize))
	}
	if r.opt.withStats {
		opts = append(opts, list.WithStableVectorStats(w.Name))
	}
	sv, err := list.NewStableVectorOf(values, opts...)
	if err != nil {
		return nil, err
	}
	oracle := make([]int, len(values))
	copy(oracle, values)
	return &svState{sv: sv, oracle: oracle}, nil
}

func (r *Runner) runWorkload(ctx context.Context, w Workload) (Result, error) {
	if err := w.validate(); err != nil {
		return Result{Name: w.Name}, err
	}
	start := time.Now()
	e := &workloadExec{
		w:   w,
		rng: randv2.New(randv2.NewPCG(uint64(w.Seed), uint64(w.Seed))),
		res: Result{Name: w.Name, OpCounts: make(map[OpKind]int, 7)},
	}
	var err error
	if e.active, err = r.newState(w, e.freshVals(w.InitialSize)); err != nil {
		return e.res, err
	}
	if e.spare, err = r.newState(w, nil); err != nil {
		return e.res, err
	}
	total := w.Mix.total()
	for i := 0; i < w.Ops; i++ {
		if err = ctx.Err(); err != nil {
			return e.res, infra.WrapErrorStackWithMessage(err, "[svbench] workload "+w.Name+" interrupted")
		}
		kind := w.Mix.pick(e.rng.IntN(total))
		if err = e.apply(kind); err != nil {
			if errors.Is(err, list.ErrStableVectorFull) {
				e.res.Rejected++
			} else {
				return e.res, infra.WrapErrorStackWithMessage(err, fmt.Sprintf("[svbench] workload %s op %d %s", w.Name, i, kind))
			}
		} else {
			e.res.OpCounts[kind]++
		}
		for _, s := range []*svState{e.active, e.spare} {
			checked, cerr := s.checkTracked()
			if cerr != nil {
				return e.res, infra.WrapErrorStackWithMessage(cerr, fmt.Sprintf("[svbench] workload %s op %d %s", w.Name, i, kind))
			}
			e.res.StabilityChecks += checked
		}
	}
	err = multierr.Combine(
		e.active.checkContent(),
		e.spare.checkContent(),
		e.active.sv.Verify(),
		e.spare.sv.Verify(),
	)
	e.res.FinalLen = e.active.sv.Len()
	e.res.Elapsed = time.Since(start)
	if err != nil {
		r.logger.ErrorStack(err, "[svbench] workload failed", zap.String("workload", w.Name))
		return e.res, err
	}
	r.logger.Info("[svbench] workload done",
		zap.String("workload", w.Name),
		zap.Any("ops", e.res.OpCounts),
		zap.Int("rejected", e.res.Rejected),
		zap.Int("stabilityChecks", e.res.StabilityChecks),
		zap.Int("invalidated", e.res.Invalidated),
		zap.Int("finalLen", e.res.FinalLen),
		zap.Duration("elapsed", e.res.Elapsed),
	)
	return e.res, nil
}

// apply runs one operation on the active container and mirrors it on the
// oracle only after the container accepted it.
func (e *workloadExec) apply(kind OpKind) error {
	s := e.active
	size := len(s.oracle)
	switch kind {
	case OpInsert:
		pos, v := e.rng.IntN(size+1), e.nextVal()
		it, err := s.sv.Insert(s.sv.Begin().Add(pos), v)
		if err != nil {
			return err
		}
		s.oracle = append(s.oracle[:pos], append([]int{v}, s.oracle[pos:]...)...)
		s.track(it, v, e.w.Tracked)
	case OpErase:
		if size <= 0 {
			return nil
		}
		pos := e.rng.IntN(size)
		s.untrack(pos, pos+1)
		s.sv.Erase(s.sv.Begin().Add(pos))
		s.oracle = append(s.oracle[:pos], s.oracle[pos+1:]...)
	case OpPushBack:
		v := e.nextVal()
		if err := s.sv.PushBack(v); err != nil {
			return err
		}
		s.oracle = append(s.oracle, v)
		s.track(s.sv.End().Prev(), v, e.w.Tracked)
	case OpPopBack:
		if size <= 0 {
			return nil
		}
		s.untrack(size-1, size)
		v, ok := s.sv.PopBack()
		if !ok || v != s.oracle[size-1] {
			return infra.WrapErrorStackWithMessage(ErrWorkloadMismatch,
				fmt.Sprintf("pop back returned %d, expected %d", v, s.oracle[size-1]))
		}
		s.oracle = s.oracle[:size-1]
	case OpResize:
		count, v := e.rng.IntN(2*size+2), e.nextVal()
		if count < size {
			s.untrack(count, size)
		}
		if err := s.sv.Resize(count, v); err != nil {
			return err
		}
		for len(s.oracle) < count {
			s.oracle = append(s.oracle, v)
		}
		s.oracle = s.oracle[:count]
	case OpSwap:
		// The iterators follow their elements into the other container.
		s.sv.Swap(e.spare.sv)
		s.oracle, e.spare.oracle = e.spare.oracle, s.oracle
		s.tracked, e.spare.tracked = e.spare.tracked, s.tracked
	case OpAssign:
		vals := e.freshVals(e.rng.IntN(size + 1))
		if err := s.sv.AssignValues(vals...); err != nil {
			return err
		}
		for _, t := range s.tracked {
			if t.it.Valid() {
				return infra.WrapErrorStackWithMessage(ErrWorkloadMismatch,
					fmt.Sprintf("iterator of %d survived an assignment", t.val))
			}
		}
		e.res.Invalidated += len(s.tracked)
		s.tracked = s.tracked[:0]
		s.oracle = vals
	default:
		return infra.WrapErrorStackWithMessage(ErrWorkloadInvalid, "unknown op "+string(kind))
	}
	return nil
}
