package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type Integer interface {
	Signed | Unsigned
}

type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// OrderedKeyComparator
//  1. i == j, return 0
//  2. i > j, return 1
//  3. i < j, return -1
type OrderedKeyComparator[K OrderedKey] func(i, j K) int64

// CompareOrderedKey orders by the "<" operator only, so two keys
// neither less than the other (NaN included) are equivalent.
func CompareOrderedKey[K OrderedKey](i, j K) int64 {
	if i < j {
		return -1
	} else if j < i {
		return 1
	}
	return 0
}
