package list

const defaultStableVectorArenaChunkSize = 64

// svNode is the fixed home of one element.
// idx and slot form the back pointer: which index holds the node
// and at which slot. gen is bumped every time the node is freed,
// so a cursor taken before the free can tell it is stale.
type svNode[T any] struct {
	idx  *svIndex[T]
	slot int
	gen  uint32
	val  T // The type of value may be a small size type.
	// It should be placed at the end of the struct to avoid taking too much padding.
}

func (node *svNode[T]) isLinked() bool {
	return node != nil && node.idx != nil
}

// svArena hands out nodes from fixed capacity chunks.
// A chunk is never reallocated, so the address of a node and of its
// value stays the same for the node's whole life.
// Freed nodes are recycled before a new chunk is appended.
type svArena[T any] struct {
	chunks    [][]svNode[T]
	recycled  []*svNode[T]
	chunkSize int
	offset    int // next unused node in the last chunk
	live      int
}

func newSvArena[T any](chunkSize int) *svArena[T] {
	if chunkSize <= 0 {
		chunkSize = defaultStableVectorArenaChunkSize
	}
	return &svArena[T]{
		chunks:    make([][]svNode[T], 0, 8),
		recycled:  make([]*svNode[T], 0, chunkSize),
		chunkSize: chunkSize,
		offset:    chunkSize, // forces the first chunk
	}
}

func (arena *svArena[T]) allocate(v T) *svNode[T] {
	var node *svNode[T]
	if rl := len(arena.recycled); rl > 0 {
		node = arena.recycled[rl-1]
		arena.recycled[rl-1] = nil
		arena.recycled = arena.recycled[:rl-1]
	} else {
		if arena.offset >= arena.chunkSize {
			arena.chunks = append(arena.chunks, make([]svNode[T], arena.chunkSize))
			arena.offset = 0
		}
		node = &arena.chunks[len(arena.chunks)-1][arena.offset]
		arena.offset++
	}
	node.val = v
	arena.live++
	return node
}

func (arena *svArena[T]) free(node *svNode[T]) {
	var zero T
	node.val = zero // avoid memory leaks
	node.idx = nil
	node.slot = -1
	node.gen++
	arena.live--
	arena.recycled = append(arena.recycled, node)
}

func (arena *svArena[T]) liveLen() int {
	return arena.live
}

func (arena *svArena[T]) chunkLen() int {
	return len(arena.chunks)
}

func (arena *svArena[T]) recLen() int {
	return len(arena.recycled)
}
