package bitvector

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBinary(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, num := range []int{0, 1, 32, 1000, 1024, 5555} {
		raw := randomBits(rng, num, 2)
		before, err := New(raw)
		require.NoError(t, err)

		out, err := before.MarshalBinary()
		require.NoError(t, err)

		after := new(BitVector)
		require.NoError(t, after.UnmarshalBinary(out))
		assert.Equal(t, before.Num(), after.Num())
		assert.Equal(t, before.OneNum(), after.OneNum())
		assert.Equal(t, before.String(), after.String())
		for i := uint64(0); i <= before.Num(); i++ {
			require.Equal(t, before.Rank1(i), after.Rank1(i))
		}
		for k := uint64(1); k <= before.ZeroNum(); k++ {
			require.Equal(t, before.Select0(k), after.Select0(k))
		}
	}
}

func TestUnmarshalBinaryCorrupt(t *testing.T) {
	bv, err := Parse("1100101")
	require.NoError(t, err)

	t.Run("truncated", func(t *testing.T) {
		out, err := bv.MarshalBinary()
		require.NoError(t, err)
		assert.Error(t, new(BitVector).UnmarshalBinary(out[:len(out)/2]))
	})

	t.Run("length mismatch", func(t *testing.T) {
		bad := *bv
		bad.num = 5000
		out, err := bad.MarshalBinary()
		require.NoError(t, err)
		assert.ErrorIs(t, new(BitVector).UnmarshalBinary(out), ErrCorrupt)
	})

	t.Run("bits past end", func(t *testing.T) {
		bad := *bv
		bad.words = []uint32{0xffffffff}
		out, err := bad.MarshalBinary()
		require.NoError(t, err)
		assert.ErrorIs(t, new(BitVector).UnmarshalBinary(out), ErrCorrupt)
	})

	t.Run("one count disagrees with bits", func(t *testing.T) {
		bad := *bv
		bad.oneNum = 7
		out, err := bad.MarshalBinary()
		require.NoError(t, err)
		assert.ErrorIs(t, new(BitVector).UnmarshalBinary(out), ErrCorrupt)
	})

	t.Run("rank directory disagrees with bits", func(t *testing.T) {
		long, err := New(randomBits(rand.New(rand.NewSource(3)), 3000, 2))
		require.NoError(t, err)

		bad := *long
		bad.superblockRank = append([]uint64(nil), long.superblockRank...)
		bad.superblockRank[1]++
		out, err := bad.MarshalBinary()
		require.NoError(t, err)
		assert.ErrorIs(t, new(BitVector).UnmarshalBinary(out), ErrCorrupt)

		bad = *long
		bad.blockRank = append([]uint16(nil), long.blockRank...)
		bad.blockRank[5] += 3
		out, err = bad.MarshalBinary()
		require.NoError(t, err)
		assert.ErrorIs(t, new(BitVector).UnmarshalBinary(out), ErrCorrupt)
	})

	t.Run("rejected input leaves the receiver untouched", func(t *testing.T) {
		bad := *bv
		bad.oneNum = 7
		out, err := bad.MarshalBinary()
		require.NoError(t, err)
		got := FromBools([]bool{true})
		require.Error(t, got.UnmarshalBinary(out))
		assert.Equal(t, "1", got.String())
		k, err := got.Select(1, 1)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), k)
	})
}
