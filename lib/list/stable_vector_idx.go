package list

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xstable/lib/infra"
)

// svIndex is the ordered array of node pointers.
// The last slot always holds the sentinel node, so
// len(slots) == size + 1 and the end position is a real node.
// The arena travels with the index, a swap moves both.
type svIndex[T any] struct {
	slots []*svNode[T]
	arena *svArena[T]
}

func newSvIndex[T any](capacity, chunkSize int) *svIndex[T] {
	ix := &svIndex[T]{
		slots: make([]*svNode[T], 0, capacity+1),
		arena: newSvArena[T](chunkSize),
	}
	var zero T
	ix.slots = append(ix.slots, ix.arena.allocate(zero))
	ix.reindex(0)
	return ix
}

func (ix *svIndex[T]) size() int {
	return len(ix.slots) - 1
}

func (ix *svIndex[T]) sentinel() *svNode[T] {
	return ix.slots[len(ix.slots)-1]
}

// reindex rewrites the back pointer of every node in [from, len(slots)).
// Returns the number of visited slots.
func (ix *svIndex[T]) reindex(from int) int {
	for i := from; i < len(ix.slots); i++ {
		node := ix.slots[i]
		node.idx = ix
		node.slot = i
	}
	return len(ix.slots) - from
}

// splice allocates one node per value and links them before slot at.
// The back pointers from at onward are stale until reindex(at).
func (ix *svIndex[T]) splice(at int, values ...T) {
	n := len(values)
	if n <= 0 {
		return
	}
	oldLen := len(ix.slots)
	if cap(ix.slots)-oldLen >= n {
		ix.slots = ix.slots[:oldLen+n]
	} else {
		grown := make([]*svNode[T], oldLen+n, 2*(oldLen+n))
		copy(grown, ix.slots)
		ix.slots = grown
	}
	copy(ix.slots[at+n:], ix.slots[at:oldLen])
	for i, v := range values {
		ix.slots[at+i] = ix.arena.allocate(v)
	}
}

// cut frees the nodes in [first, last) and closes the gap.
// The back pointers from first onward are stale until reindex(first).
func (ix *svIndex[T]) cut(first, last int) int {
	if first >= last {
		return 0
	}
	for i := first; i < last; i++ {
		ix.arena.free(ix.slots[i])
	}
	n := copy(ix.slots[first:], ix.slots[last:])
	tail := ix.slots[first+n:]
	for i := range tail {
		tail[i] = nil // avoid memory leaks
	}
	ix.slots = ix.slots[:first+n]
	return last - first
}

func (ix *svIndex[T]) values(first, last int) []T {
	res := make([]T, 0, last-first)
	for i := first; i < last; i++ {
		res = append(res, ix.slots[i].val)
	}
	return res
}

// release frees every node, the sentinel included.
// The index must not be used afterward.
func (ix *svIndex[T]) release() {
	for i := range ix.slots {
		ix.arena.free(ix.slots[i])
		ix.slots[i] = nil
	}
	ix.slots = ix.slots[:0]
}

func (ix *svIndex[T]) verify() error {
	var merr error
	if len(ix.slots) == 0 {
		return infra.NewErrorStack("[stable-vector] index without sentinel")
	}
	for i, node := range ix.slots {
		switch {
		case node == nil:
			merr = multierr.Append(merr, infra.NewErrorStack(fmt.Sprintf("[stable-vector] nil node at slot %d", i)))
		case node.idx != ix:
			merr = multierr.Append(merr, infra.NewErrorStack(fmt.Sprintf("[stable-vector] node at slot %d points to another index", i)))
		case node.slot != i:
			merr = multierr.Append(merr, infra.NewErrorStack(fmt.Sprintf("[stable-vector] node at slot %d has stale back pointer %d", i, node.slot)))
		}
	}
	if live := ix.arena.liveLen(); live != len(ix.slots) {
		merr = multierr.Append(merr, infra.NewErrorStack(fmt.Sprintf("[stable-vector] arena holds %d live nodes, index holds %d", live, len(ix.slots))))
	}
	return merr
}
