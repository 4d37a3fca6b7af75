package infra

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompareOrderedKey(t *testing.T) {
	require.Equal(t, int64(-1), CompareOrderedKey(1, 2))
	require.Equal(t, int64(1), CompareOrderedKey(uint8(9), uint8(2)))
	require.Equal(t, int64(0), CompareOrderedKey("abc", "abc"))
	require.Equal(t, int64(-1), CompareOrderedKey("ab", "abc"))
	require.Equal(t, int64(0), CompareOrderedKey(math.NaN(), 1.0))
	require.Equal(t, int64(1), CompareOrderedKey(math.Inf(1), 1.0))
}
