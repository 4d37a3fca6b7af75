package list

import (
	"github.com/benz9527/xstable/lib/infra"
)

// EqualFunc reports whether both vectors have the same length and
// pairwise equal elements. No node identity shortcut is taken.
func EqualFunc[T any](lhs, rhs StableVector[T], eq func(a, b T) bool) bool {
	if lhs.Len() != rhs.Len() {
		return false
	}
	for i := 0; i < lhs.Len(); i++ {
		if !eq(lhs.Get(i), rhs.Get(i)) {
			return false
		}
	}
	return true
}

// CompareFunc orders two vectors lexicographically.
// cmp returns a negative, zero or positive number like infra.OrderedKeyComparator.
func CompareFunc[T any](lhs, rhs StableVector[T], cmp func(a, b T) int64) int {
	n := min(lhs.Len(), rhs.Len())
	for i := 0; i < n; i++ {
		if res := cmp(lhs.Get(i), rhs.Get(i)); res < 0 {
			return -1
		} else if res > 0 {
			return 1
		}
	}
	switch {
	case lhs.Len() < rhs.Len():
		return -1
	case lhs.Len() > rhs.Len():
		return 1
	default:
	}
	return 0
}

func Equal[T comparable](lhs, rhs StableVector[T]) bool {
	return EqualFunc(lhs, rhs, func(a, b T) bool { return a == b })
}

func NotEqual[T comparable](lhs, rhs StableVector[T]) bool {
	return !Equal(lhs, rhs)
}

func Compare[K infra.OrderedKey](lhs, rhs StableVector[K]) int {
	return CompareFunc(lhs, rhs, infra.CompareOrderedKey[K])
}

func Less[K infra.OrderedKey](lhs, rhs StableVector[K]) bool {
	return Compare(lhs, rhs) < 0
}

func LessEqual[K infra.OrderedKey](lhs, rhs StableVector[K]) bool {
	return !Less(rhs, lhs)
}

func Greater[K infra.OrderedKey](lhs, rhs StableVector[K]) bool {
	return Less(rhs, lhs)
}

func GreaterEqual[K infra.OrderedKey](lhs, rhs StableVector[K]) bool {
	return !Less(lhs, rhs)
}
