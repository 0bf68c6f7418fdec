package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleReturnsDistinctMembers(t *testing.T) {
	src := []int64{10, 20, 30, 40, 50}
	before := append([]int64(nil), src...)

	for i := 0; i < 200; i++ {
		got, err := Sample(src, 3)
		require.NoError(t, err)
		require.Len(t, got, 3)

		seen := map[int64]bool{}
		for _, v := range got {
			assert.Contains(t, src, v)
			assert.False(t, seen[v], "duplicate %d", v)
			seen[v] = true
		}
	}
	assert.Equal(t, before, src)
}

func TestSampleBounds(t *testing.T) {
	got, err := Sample([]string{"a"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)

	got, err = Sample([]string{"a", "b"}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Sample([]string{"a"}, 2)
	assert.Error(t, err)
}

// Every element should be drawn roughly k/n of the time.
func TestSampleIsRoughlyUniform(t *testing.T) {
	src := []int{0, 1, 2, 3}
	counts := make([]int, len(src))
	const rounds = 4000

	for i := 0; i < rounds; i++ {
		got, err := Sample(src, 2)
		require.NoError(t, err)
		for _, v := range got {
			counts[v]++
		}
	}

	expected := rounds * 2 / len(src)
	for v, c := range counts {
		assert.InDelta(t, expected, c, float64(expected)*0.15, "element %d", v)
	}
}
