package list

var (
	_ Position[struct{}] = Iterator[struct{}]{}
	_ Position[struct{}] = ConstIterator[struct{}]{}
)

// cursor holds a node and the generation it was taken at.
// The position is never cached, it is read through the node's
// back pointer, so the cursor survives any reindex.
type cursor[T any] struct {
	node *svNode[T]
	gen  uint32
}

func newCursor[T any](node *svNode[T]) cursor[T] {
	return cursor[T]{node: node, gen: node.gen}
}

func (c cursor[T]) valid() bool {
	return c.node != nil && c.node.gen == c.gen && c.node.isLinked()
}

func (c cursor[T]) live() *svNode[T] {
	if !c.valid() {
		panic(ErrStableVectorIteratorInvalid)
	}
	return c.node
}

func (c cursor[T]) pos() int {
	return c.live().slot
}

// add jumps through the back pointer into the index and steps n slots.
// Stepping out of [0, len] is a precondition violation.
func (c cursor[T]) add(n int) cursor[T] {
	node := c.live()
	return newCursor(node.idx.slots[node.slot+n])
}

func (c cursor[T]) at(n int) *svNode[T] {
	node := c.live()
	return node.idx.slots[node.slot+n]
}

func (c cursor[T]) distance(o cursor[T]) int {
	return c.pos() - o.pos()
}

func (c cursor[T]) equal(o cursor[T]) bool {
	return c.node == o.node
}

// Iterator is a read/write random access iterator.
// The zero value is invalid.
type Iterator[T any] struct {
	c cursor[T]
}

func newIterator[T any](node *svNode[T]) Iterator[T] {
	return Iterator[T]{c: newCursor(node)}
}

func (it Iterator[T]) cursor() cursor[T] { return it.c }

// Valid reports whether the denoted element is still alive.
func (it Iterator[T]) Valid() bool { return it.c.valid() }

// Value returns the denoted element. Panics with ErrStableVectorIteratorInvalid
// if the element has been erased.
func (it Iterator[T]) Value() T { return it.c.live().val }

// Ref returns a reference to the denoted element.
func (it Iterator[T]) Ref() *T { return &it.c.live().val }

func (it Iterator[T]) Set(v T) { it.c.live().val = v }

// Index returns the element n slots away without moving the iterator.
func (it Iterator[T]) Index(n int) T { return it.c.at(n).val }

// IndexRef returns a reference to the element n slots away without moving the iterator.
func (it Iterator[T]) IndexRef(n int) *T { return &it.c.at(n).val }

func (it Iterator[T]) Add(n int) Iterator[T] { return Iterator[T]{c: it.c.add(n)} }
func (it Iterator[T]) Sub(n int) Iterator[T] { return Iterator[T]{c: it.c.add(-n)} }
func (it Iterator[T]) Next() Iterator[T]     { return it.Add(1) }
func (it Iterator[T]) Prev() Iterator[T]     { return it.Add(-1) }

// Pos is the current slot, equal to it - begin.
func (it Iterator[T]) Pos() int { return it.c.pos() }

// Distance returns it - o. Both must come from the same vector.
func (it Iterator[T]) Distance(o Position[T]) int { return it.c.distance(o.cursor()) }

func (it Iterator[T]) Equal(o Position[T]) bool        { return it.c.equal(o.cursor()) }
func (it Iterator[T]) Less(o Position[T]) bool         { return it.Distance(o) < 0 }
func (it Iterator[T]) LessEqual(o Position[T]) bool    { return it.Distance(o) <= 0 }
func (it Iterator[T]) Greater(o Position[T]) bool      { return it.Distance(o) > 0 }
func (it Iterator[T]) GreaterEqual(o Position[T]) bool { return it.Distance(o) >= 0 }

func (it Iterator[T]) Const() ConstIterator[T] { return ConstIterator[T]{c: it.c} }

// ConstIterator is the read only counterpart of Iterator.
type ConstIterator[T any] struct {
	c cursor[T]
}

func newConstIterator[T any](node *svNode[T]) ConstIterator[T] {
	return ConstIterator[T]{c: newCursor(node)}
}

func (it ConstIterator[T]) cursor() cursor[T] { return it.c }

func (it ConstIterator[T]) Valid() bool   { return it.c.valid() }
func (it ConstIterator[T]) Value() T      { return it.c.live().val }
func (it ConstIterator[T]) Index(n int) T { return it.c.at(n).val }

func (it ConstIterator[T]) Add(n int) ConstIterator[T] { return ConstIterator[T]{c: it.c.add(n)} }
func (it ConstIterator[T]) Sub(n int) ConstIterator[T] { return ConstIterator[T]{c: it.c.add(-n)} }
func (it ConstIterator[T]) Next() ConstIterator[T]     { return it.Add(1) }
func (it ConstIterator[T]) Prev() ConstIterator[T]     { return it.Add(-1) }

func (it ConstIterator[T]) Pos() int                        { return it.c.pos() }
func (it ConstIterator[T]) Distance(o Position[T]) int      { return it.c.distance(o.cursor()) }
func (it ConstIterator[T]) Equal(o Position[T]) bool        { return it.c.equal(o.cursor()) }
func (it ConstIterator[T]) Less(o Position[T]) bool         { return it.Distance(o) < 0 }
func (it ConstIterator[T]) LessEqual(o Position[T]) bool    { return it.Distance(o) <= 0 }
func (it ConstIterator[T]) Greater(o Position[T]) bool      { return it.Distance(o) > 0 }
func (it ConstIterator[T]) GreaterEqual(o Position[T]) bool { return it.Distance(o) >= 0 }
