package list

// References:
// https://www.boost.org/doc/libs/1_85_0/doc/html/container/non_standard_containers.html#container.non_standard_containers.stable_vector
//
// Layout of a stable vector holding [a, b, c]:
//
//	index (reallocatable):  [ *a | *b | *c | *sentinel ]
//	                            ^    ^    ^        ^
//	nodes (arena, fixed):   {a,0} {b,1} {c,2} {zero,3}
//
// Every node knows the index that holds it and its slot there.
// An iterator only stores a node, so it keeps denoting the same
// element while the index shifts or reallocates around it. Any
// structural change of the index is followed by a reindex pass
// over the shifted suffix before the operation returns.

import (
	"go.uber.org/zap"

	"github.com/benz9527/xstable/lib/infra"
)

var _ StableVector[struct{}] = (*stableVector[struct{}])(nil) // Type check assertion

type stableVector[T any] struct {
	ix    *svIndex[T]
	opt   *stableVectorOption
	stats *stableVectorStats
}

func newStableVector[T any](opt *stableVectorOption, stats *stableVectorStats, capacity int) *stableVector[T] {
	return &stableVector[T]{
		ix:    newSvIndex[T](capacity, opt.chunkSize),
		opt:   opt,
		stats: stats,
	}
}

func buildStableVector[T any](opts ...StableVectorOption) (*stableVector[T], error) {
	opt, err := newStableVectorOption(opts...)
	if err != nil {
		return nil, err
	}
	var stats *stableVectorStats
	if opt.withStats {
		stats = newStableVectorStats(opt.statsName)
	}
	return newStableVector[T](opt, stats, 0), nil
}

// NewStableVector returns an empty vector holding the sentinel only.
// It panics on an invalid option.
func NewStableVector[T any](opts ...StableVectorOption) StableVector[T] {
	sv, err := buildStableVector[T](opts...)
	if err != nil {
		panic(err)
	}
	return sv
}

// NewStableVectorFilled returns a vector of count copies of v.
func NewStableVectorFilled[T any](count int, v T, opts ...StableVectorOption) (StableVector[T], error) {
	sv, err := buildStableVector[T](opts...)
	if err != nil {
		return nil, err
	}
	if err = sv.Assign(count, v); err != nil {
		return nil, err
	}
	return sv, nil
}

// NewStableVectorOf returns a vector holding a copy of values.
func NewStableVectorOf[T any](values []T, opts ...StableVectorOption) (StableVector[T], error) {
	sv, err := buildStableVector[T](opts...)
	if err != nil {
		return nil, err
	}
	if err = sv.AssignValues(values...); err != nil {
		return nil, err
	}
	return sv, nil
}

// NewStableVectorFromRange returns a vector holding a copy of [first, last).
func NewStableVectorFromRange[T any](first, last Position[T], opts ...StableVectorOption) (StableVector[T], error) {
	sv, err := buildStableVector[T](opts...)
	if err != nil {
		return nil, err
	}
	if err = sv.AssignRange(first, last); err != nil {
		return nil, err
	}
	return sv, nil
}

func (sv *stableVector[T]) Len() int {
	return sv.ix.size()
}

func (sv *stableVector[T]) IsEmpty() bool {
	return sv.ix.size() == 0
}

func (sv *stableVector[T]) At(pos int) (T, error) {
	if pos < 0 || pos >= sv.ix.size() {
		var zero T
		return zero, ErrStableVectorOutOfRange
	}
	return sv.ix.slots[pos].val, nil
}

func (sv *stableVector[T]) RefAt(pos int) (*T, error) {
	if pos < 0 || pos >= sv.ix.size() {
		return nil, ErrStableVectorOutOfRange
	}
	return &sv.ix.slots[pos].val, nil
}

func (sv *stableVector[T]) Get(pos int) T {
	return sv.ix.slots[pos].val
}

func (sv *stableVector[T]) Ref(pos int) *T {
	return &sv.ix.slots[pos].val
}

func (sv *stableVector[T]) Set(pos int, v T) {
	sv.ix.slots[pos].val = v
}

func (sv *stableVector[T]) Front() (T, error) {
	if sv.IsEmpty() {
		var zero T
		return zero, ErrStableVectorEmpty
	}
	return sv.ix.slots[0].val, nil
}

func (sv *stableVector[T]) Back() (T, error) {
	if sv.IsEmpty() {
		var zero T
		return zero, ErrStableVectorEmpty
	}
	return sv.ix.slots[sv.ix.size()-1].val, nil
}

func (sv *stableVector[T]) Begin() Iterator[T] {
	return newIterator(sv.ix.slots[0])
}

func (sv *stableVector[T]) End() Iterator[T] {
	return newIterator(sv.ix.sentinel())
}

func (sv *stableVector[T]) CBegin() ConstIterator[T] {
	return newConstIterator(sv.ix.slots[0])
}

func (sv *stableVector[T]) CEnd() ConstIterator[T] {
	return newConstIterator(sv.ix.sentinel())
}

// slotOf resolves a position of this vector into its current slot.
func (sv *stableVector[T]) slotOf(pos Position[T]) int {
	node := pos.cursor().live()
	if node.idx != sv.ix {
		panic(ErrStableVectorIteratorForeign)
	}
	return node.slot
}

// reserve checks the size cap before any structural change.
func (sv *stableVector[T]) reserve(n int) error {
	if sv.opt.maxSize <= 0 || sv.ix.size()+n <= sv.opt.maxSize {
		return nil
	}
	sv.opt.logger.Warn("[stable-vector] size cap reached, mutation rejected",
		zap.Int("len", sv.ix.size()),
		zap.Int("incoming", n),
		zap.Int("maxSize", sv.opt.maxSize),
	)
	return ErrStableVectorFull
}

// insertAt links values before slot at, then repairs the shifted suffix.
func (sv *stableVector[T]) insertAt(at int, values ...T) (Iterator[T], error) {
	if len(values) <= 0 {
		return newIterator(sv.ix.slots[at]), nil
	}
	if err := sv.reserve(len(values)); err != nil {
		return Iterator[T]{}, err
	}
	sv.ix.splice(at, values...)
	sv.stats.RecordReindex(sv.ix.reindex(at))
	sv.stats.RecordInsert(len(values))
	return newIterator(sv.ix.slots[at]), nil
}

// eraseAt frees [first, last), then repairs the shifted suffix.
func (sv *stableVector[T]) eraseAt(first, last int) Iterator[T] {
	if n := sv.ix.cut(first, last); n > 0 {
		sv.stats.RecordReindex(sv.ix.reindex(first))
		sv.stats.RecordErase(n)
	}
	return newIterator(sv.ix.slots[first])
}

func (sv *stableVector[T]) Insert(pos Position[T], v T) (Iterator[T], error) {
	return sv.insertAt(sv.slotOf(pos), v)
}

func (sv *stableVector[T]) InsertValues(pos Position[T], values ...T) (Iterator[T], error) {
	at := sv.slotOf(pos)
	// Stage a copy, values may alias a slice the caller keeps mutating.
	staged := make([]T, len(values))
	copy(staged, values)
	return sv.insertAt(at, staged...)
}

func (sv *stableVector[T]) InsertRange(pos, first, last Position[T]) (Iterator[T], error) {
	at := sv.slotOf(pos)
	// Staging the range before touching the index makes a range
	// taken from the receiver itself safe to insert.
	staged, err := collectRange(first, last)
	if err != nil {
		return Iterator[T]{}, err
	}
	return sv.insertAt(at, staged...)
}

func (sv *stableVector[T]) Erase(pos Position[T]) Iterator[T] {
	at := sv.slotOf(pos)
	if at >= sv.ix.size() {
		// The sentinel is never erased.
		return sv.End()
	}
	return sv.eraseAt(at, at+1)
}

func (sv *stableVector[T]) EraseRange(first, last Position[T]) Iterator[T] {
	f, l := sv.slotOf(first), sv.slotOf(last)
	if l > sv.ix.size() {
		l = sv.ix.size()
	}
	if f >= l {
		return newIterator(sv.ix.slots[f])
	}
	return sv.eraseAt(f, l)
}

func (sv *stableVector[T]) PushBack(v T) error {
	_, err := sv.insertAt(sv.ix.size(), v)
	return err
}

func (sv *stableVector[T]) PopBack() (T, bool) {
	if sv.IsEmpty() {
		var zero T
		return zero, false
	}
	last := sv.ix.size() - 1
	v := sv.ix.slots[last].val
	sv.eraseAt(last, last+1)
	return v, true
}

func (sv *stableVector[T]) Resize(count int, v T) error {
	if count < 0 {
		return ErrStableVectorOutOfRange
	}
	size := sv.ix.size()
	switch {
	case count > size:
		fill := make([]T, count-size)
		for i := range fill {
			fill[i] = v
		}
		if _, err := sv.insertAt(size, fill...); err != nil {
			return err
		}
	case count < size:
		sv.eraseAt(count, size)
	default:
		return nil
	}
	sv.opt.logger.Debug("[stable-vector] resized",
		zap.Int("from", size),
		zap.Int("to", count),
	)
	return nil
}

func (sv *stableVector[T]) Clear() {
	if sv.IsEmpty() {
		return
	}
	n := sv.ix.size()
	sv.eraseAt(0, n)
	sv.opt.logger.Debug("[stable-vector] cleared", zap.Int("erased", n))
}

// Swap exchanges the indexes, arenas included. Every back pointer names
// its index, so the nodes need no reindex pass and the swap is O(1).
func (sv *stableVector[T]) Swap(other StableVector[T]) {
	o, ok := other.(*stableVector[T])
	if !ok || o == nil || o == sv {
		// avoid type mismatch and self swap
		return
	}
	delta := o.ix.size() - sv.ix.size()
	sv.ix, o.ix = o.ix, sv.ix
	sv.stats.RecordLenDelta(delta)
	o.stats.RecordLenDelta(-delta)
	sv.opt.logger.Debug("[stable-vector] swapped",
		zap.Int("len", sv.ix.size()),
		zap.Int("otherLen", o.ix.size()),
	)
}

// commit installs a fully built index and releases the old one.
// Every iterator of the old content is invalidated.
func (sv *stableVector[T]) commit(ix *svIndex[T]) {
	old := sv.ix
	sv.ix = ix
	sv.stats.RecordErase(old.size())
	old.release()
}

// rebuild stages values into a fresh index, the receiver is untouched
// until the staged index is complete.
func (sv *stableVector[T]) rebuild(values []T) error {
	if sv.opt.maxSize > 0 && len(values) > sv.opt.maxSize {
		sv.opt.logger.Warn("[stable-vector] size cap reached, assignment rejected",
			zap.Int("incoming", len(values)),
			zap.Int("maxSize", sv.opt.maxSize),
		)
		return ErrStableVectorFull
	}
	ix := newSvIndex[T](len(values), sv.opt.chunkSize)
	ix.splice(0, values...)
	sv.stats.RecordReindex(ix.reindex(0))
	sv.stats.RecordInsert(len(values))
	sv.commit(ix)
	sv.opt.logger.Debug("[stable-vector] assigned", zap.Int("len", len(values)))
	return nil
}

func (sv *stableVector[T]) Assign(count int, v T) error {
	if count < 0 {
		return ErrStableVectorOutOfRange
	}
	values := make([]T, count)
	for i := range values {
		values[i] = v
	}
	return sv.rebuild(values)
}

func (sv *stableVector[T]) AssignValues(values ...T) error {
	staged := make([]T, len(values))
	copy(staged, values)
	return sv.rebuild(staged)
}

func (sv *stableVector[T]) AssignRange(first, last Position[T]) error {
	staged, err := collectRange(first, last)
	if err != nil {
		return err
	}
	return sv.rebuild(staged)
}

func (sv *stableVector[T]) CopyFrom(other StableVector[T]) error {
	if other == nil {
		return infra.NewErrorStack("[stable-vector] copy from nil")
	}
	if o, ok := other.(*stableVector[T]); ok && o == sv {
		return nil
	}
	return sv.rebuild(other.Values())
}

func (sv *stableVector[T]) Clone() StableVector[T] {
	size := sv.ix.size()
	c := newStableVector[T](sv.opt, sv.stats, size)
	c.ix.splice(0, sv.ix.values(0, size)...)
	c.stats.RecordReindex(c.ix.reindex(0))
	c.stats.RecordInsert(size)
	return c
}

func (sv *stableVector[T]) Values() []T {
	return sv.ix.values(0, sv.ix.size())
}

func (sv *stableVector[T]) Foreach(fn func(idx int, v T) error) error {
	if fn == nil {
		return nil
	}
	for i := 0; i < sv.ix.size(); i++ {
		if err := fn(i, sv.ix.slots[i].val); err != nil {
			return err
		}
	}
	return nil
}

func (sv *stableVector[T]) ReverseForeach(fn func(idx int, v T)) {
	if fn == nil {
		return
	}
	for i := sv.ix.size() - 1; i >= 0; i-- {
		fn(i, sv.ix.slots[i].val)
	}
}

func (sv *stableVector[T]) Verify() error {
	return sv.ix.verify()
}

func (sv *stableVector[T]) Release() {
	sv.commit(newSvIndex[T](0, sv.opt.chunkSize))
	sv.opt.logger.Debug("[stable-vector] released")
}

// collectRange copies [first, last) out of its vector.
func collectRange[T any](first, last Position[T]) ([]T, error) {
	fc, lc := first.cursor(), last.cursor()
	n := lc.distance(fc)
	if n < 0 {
		return nil, ErrStableVectorOutOfRange
	}
	res := make([]T, 0, n)
	for i := 0; i < n; i++ {
		res = append(res, fc.at(i).val)
	}
	return res, nil
}
