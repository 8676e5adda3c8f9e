package watrix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestBuildRejectsSymbolOutsideAlphabet(t *testing.T) {
	_, err := New([]uint64{0, 1, 4}, WithAlphabetSize(4))
	assert.ErrorIs(t, err, ErrInvalidSymbol)
}

func TestBuildRejectsTooManyLevels(t *testing.T) {
	_, err := New([]uint64{0, 300}, WithMaxDepth(8))
	assert.ErrorIs(t, err, ErrConfiguration)

	wm, err := New([]uint64{0, 255}, WithMaxDepth(8))
	require.NoError(t, err)
	assert.Equal(t, uint64(8), wm.Depth())

	_, err = New([]uint64{math.MaxUint64})
	assert.ErrorIs(t, err, ErrConfiguration)

	wm, err = New([]uint64{math.MaxUint64, 1}, WithAlphabetSize(math.MaxUint64))
	assert.ErrorIs(t, err, ErrInvalidSymbol)
	assert.Nil(t, wm)
}

func TestBinaryLen(t *testing.T) {
	for _, tc := range []struct {
		dim, want uint64
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {256, 8}, {257, 9},
		{math.MaxUint64, 64},
	} {
		assert.Equal(t, tc.want, getBinaryLen(tc.dim), "dim %d", tc.dim)
	}
}

func TestStablePartition(t *testing.T) {
	vals := []uint64{5, 2, 7, 0, 3, 6, 1, 4}
	wm, err := New(vals)
	require.NoError(t, err)
	require.Equal(t, uint64(3), wm.Depth())

	// Level 0 holds the top bit of each value in input order.
	assert.Equal(t, "10100101", wm.layers[0].String())
	// Level 1 sees zeros of level 0 (2,0,3,1) then ones (5,7,6,4).
	assert.Equal(t, "10100110", wm.layers[1].String())
	assert.Equal(t, []uint64{4, 4, 4}, wm.zeroNum)
}

func TestBuilderReuse(t *testing.T) {
	b := NewBuilder(WithAlphabetSize(8))
	b.PushBack(1)
	b.PushBack(7)
	first, err := b.Build()
	require.NoError(t, err)
	b.PushBack(3)
	second, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), first.Num())
	assert.Equal(t, uint64(3), second.Num())
	v, err := second.Access(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)
}

func TestConcurrentQueries(t *testing.T) {
	vals := randomValues(20000, 50, 4)
	wm, err := New(vals)
	require.NoError(t, err)

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		w := w
		g.Go(func() error {
			for pos := w; pos < len(vals); pos += 8 {
				v, rank, err := wm.AccessAndRank(uint64(pos))
				if err != nil {
					return err
				}
				if v != vals[pos] {
					return assert.AnError
				}
				sel, err := wm.Select(v, rank+1)
				if err != nil {
					return err
				}
				if sel != uint64(pos) {
					return assert.AnError
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
