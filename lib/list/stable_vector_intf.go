package list

import (
	"github.com/benz9527/xstable/lib/infra"
)

// Note that the stable vector is not thread safe.
// A single instance must be externally synchronized if it is
// mutated from multiple goroutines.

var (
	ErrStableVectorOutOfRange      = infra.NewErrorStack("[stable-vector] out of range")
	ErrStableVectorEmpty           = infra.NewErrorStack("[stable-vector] empty")
	ErrStableVectorFull            = infra.NewErrorStack("[stable-vector] full")
	ErrStableVectorIteratorInvalid = infra.NewErrorStack("[stable-vector] iterator invalidated")
	ErrStableVectorIteratorForeign = infra.NewErrorStack("[stable-vector] iterator belongs to another vector")
	ErrStableVectorInvalidOption   = infra.NewErrorStack("[stable-vector] invalid option")
)

// Position is anything denoting a slot of a stable vector,
// both Iterator and ConstIterator are positions.
type Position[T any] interface {
	cursor() cursor[T]
}

// StableVector is a random access sequence whose iterators and
// element references stay valid across insertion and erasure,
// except those denoting the erased elements.
type StableVector[T any] interface {
	Len() int
	IsEmpty() bool

	// At returns the element at pos or ErrStableVectorOutOfRange.
	At(pos int) (T, error)
	// RefAt returns a reference to the element at pos or ErrStableVectorOutOfRange.
	// The reference stays valid until the element is erased.
	RefAt(pos int) (*T, error)
	// Get is the unchecked form of At. pos must be in [0, Len()).
	Get(pos int) T
	// Ref is the unchecked form of RefAt. pos must be in [0, Len()).
	Ref(pos int) *T
	// Set overwrites the element at pos, unchecked.
	Set(pos int, v T)
	// Front returns the first element or ErrStableVectorEmpty.
	Front() (T, error)
	// Back returns the last element or ErrStableVectorEmpty.
	Back() (T, error)

	Begin() Iterator[T]
	// End returns the iterator of the sentinel slot, one past the last element.
	End() Iterator[T]
	CBegin() ConstIterator[T]
	CEnd() ConstIterator[T]

	// Insert inserts v before pos and returns the iterator of the new element.
	Insert(pos Position[T], v T) (Iterator[T], error)
	// InsertValues inserts values before pos in order and returns the iterator
	// of the first inserted element, or pos itself if values is empty.
	InsertValues(pos Position[T], values ...T) (Iterator[T], error)
	// InsertRange inserts a copy of [first, last) before pos. The range may
	// belong to the receiver itself.
	InsertRange(pos, first, last Position[T]) (Iterator[T], error)
	// Erase removes the element at pos and returns the iterator following it.
	Erase(pos Position[T]) Iterator[T]
	// EraseRange removes [first, last) and returns the iterator following
	// the last erased element.
	EraseRange(first, last Position[T]) Iterator[T]
	PushBack(v T) error
	// PopBack removes the last element. Returns false if the vector is empty.
	PopBack() (T, bool)
	// Resize grows the vector with copies of v or shrinks it to count elements.
	Resize(count int, v T) error
	Clear()
	// Swap exchanges the content of two vectors. Iterators follow their
	// elements into the other vector.
	Swap(other StableVector[T])

	// Assign replaces the content by count copies of v.
	Assign(count int, v T) error
	AssignValues(values ...T) error
	AssignRange(first, last Position[T]) error
	// CopyFrom replaces the content by a deep copy of other.
	// Every iterator of the receiver is invalidated, End included.
	CopyFrom(other StableVector[T]) error
	// Clone returns a deep copy sharing the receiver's options.
	Clone() StableVector[T]

	Values() []T
	// Foreach visits the elements in order until fn returns an error.
	// fn must not insert or erase.
	Foreach(fn func(idx int, v T) error) error
	ReverseForeach(fn func(idx int, v T))
	// Verify audits the back pointer of every slot.
	Verify() error
	// Release frees every node, the sentinel included, and leaves
	// an empty vector behind.
	Release()
}
