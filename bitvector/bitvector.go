// Package bitvector provides an immutable bit vector supporting
// constant-time access and rank, and logarithmic-time select.
//
// Bits are grouped into 32-bit blocks and 1024-bit superblocks.
// superblockRank holds the absolute number of ones before each superblock,
// blockRank the number of ones between the start of the enclosing
// superblock and each block. The partial block is counted with two
// lookups into the shared popcount table.
package bitvector

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// BitVector represents a bit vector B[0...num).
// It is read-only after construction and safe for concurrent use.
type BitVector struct {
	words          []uint32
	superblockRank []uint64
	blockRank      []uint16
	num            uint64
	oneNum         uint64
	table          *Table
}

// New builds a BitVector from bits, each of which must be 0 or 1.
func New(bits []uint8) (*BitVector, error) {
	b := NewBuilder(uint64(len(bits)))
	for i, v := range bits {
		if v > 1 {
			return nil, fmt.Errorf("%w: bits[%d] = %d", ErrInvalidSymbol, i, v)
		}
		b.PushBack(v == 1)
	}
	return b.Build(), nil
}

// FromBools builds a BitVector from bits.
func FromBools(bits []bool) *BitVector {
	b := NewBuilder(uint64(len(bits)))
	for _, v := range bits {
		b.PushBack(v)
	}
	return b.Build()
}

// build computes the rank directory over words in one left-to-right scan.
// words must hold num/blockSize+1 entries with all bits past num cleared.
func build(words []uint32, num uint64) *BitVector {
	bv := &BitVector{
		words:          words,
		superblockRank: make([]uint64, num/superblockSize+1),
		blockRank:      make([]uint16, len(words)),
		num:            num,
		table:          PopcountTable(),
	}
	var total uint64
	var local uint16
	for j, w := range words {
		if j%blocksPerSuperblock == 0 {
			bv.superblockRank[j/blocksPerSuperblock] = total
			local = 0
		}
		bv.blockRank[j] = local
		c := bv.table.Count32(w)
		local += uint16(c)
		total += uint64(c)
	}
	bv.oneNum = total
	return bv
}

// Num returns the number of bits.
func (bv *BitVector) Num() uint64 {
	return bv.num
}

// OneNum returns the number of ones.
func (bv *BitVector) OneNum() uint64 {
	return bv.oneNum
}

// ZeroNum returns the number of zeros.
func (bv *BitVector) ZeroNum() uint64 {
	return bv.num - bv.oneNum
}

// Access returns B[pos].
func (bv *BitVector) Access(pos uint64) (uint8, error) {
	if pos >= bv.num {
		return 0, fmt.Errorf("%w: access %d, len %d", ErrOutOfRange, pos, bv.num)
	}
	if bv.Bit(pos) {
		return 1, nil
	}
	return 0, nil
}

// Rank returns the number of occurrences of bit in B[0...pos).
func (bv *BitVector) Rank(bit uint8, pos uint64) (uint64, error) {
	if bit > 1 {
		return 0, fmt.Errorf("%w: bit %d", ErrInvalidSymbol, bit)
	}
	if pos > bv.num {
		return 0, fmt.Errorf("%w: rank %d, len %d", ErrOutOfRange, pos, bv.num)
	}
	if bit == 1 {
		return bv.Rank1(pos), nil
	}
	return bv.Rank0(pos), nil
}

// Select returns the position of the k-th (1-based) occurrence of bit.
func (bv *BitVector) Select(bit uint8, k uint64) (uint64, error) {
	if bit > 1 {
		return 0, fmt.Errorf("%w: bit %d", ErrInvalidSymbol, bit)
	}
	total := bv.oneNum
	if bit == 0 {
		total = bv.ZeroNum()
	}
	if k == 0 || k > total {
		return 0, fmt.Errorf("%w: select %d of bit %d, have %d", ErrNotFound, k, bit, total)
	}
	if bit == 1 {
		return bv.Select1(k), nil
	}
	return bv.Select0(k), nil
}

// Bit returns B[pos] without bounds checking beyond the slice's own.
func (bv *BitVector) Bit(pos uint64) bool {
	return (bv.words[pos/blockSize]>>(pos%blockSize))&1 == 1
}

// Rank1 returns the number of ones in B[0...pos). pos must be <= Num().
func (bv *BitVector) Rank1(pos uint64) uint64 {
	rank := bv.superblockRank[pos/superblockSize] + uint64(bv.blockRank[pos/blockSize])
	if off := pos % blockSize; off != 0 {
		rank += uint64(bv.table.Count32(bv.words[pos/blockSize] & (uint32(1)<<off - 1)))
	}
	return rank
}

// Rank0 returns the number of zeros in B[0...pos). pos must be <= Num().
func (bv *BitVector) Rank0(pos uint64) uint64 {
	return pos - bv.Rank1(pos)
}

// Select1 returns the position of the k-th one.
// k must be in [1, OneNum()].
func (bv *BitVector) Select1(k uint64) uint64 {
	sb := sort.Search(len(bv.superblockRank), func(i int) bool {
		return bv.superblockRank[i] >= k
	}) - 1
	remain := k - bv.superblockRank[sb]

	first := sb * blocksPerSuperblock
	last := min(first+blocksPerSuperblock, len(bv.blockRank))
	blk := first + sort.Search(last-first, func(j int) bool {
		return uint64(bv.blockRank[first+j]) >= remain
	}) - 1
	remain -= uint64(bv.blockRank[blk])

	return uint64(blk)*blockSize + bv.table.selectInWord(bv.words[blk], remain)
}

// Select0 returns the position of the k-th zero.
// k must be in [1, ZeroNum()].
func (bv *BitVector) Select0(k uint64) uint64 {
	sb := sort.Search(len(bv.superblockRank), func(i int) bool {
		return uint64(i)*superblockSize-bv.superblockRank[i] >= k
	}) - 1
	remain := k - (uint64(sb)*superblockSize - bv.superblockRank[sb])

	first := sb * blocksPerSuperblock
	last := min(first+blocksPerSuperblock, len(bv.blockRank))
	blk := first + sort.Search(last-first, func(j int) bool {
		return uint64(j)*blockSize-uint64(bv.blockRank[first+j]) >= remain
	}) - 1
	remain -= uint64(blk-first)*blockSize - uint64(bv.blockRank[blk])

	return uint64(blk)*blockSize + bv.table.selectInWord(^bv.words[blk], remain)
}

// AllocSize returns the allocated size in bytes, excluding the shared table.
func (bv *BitVector) AllocSize() int {
	return len(bv.words)*4 +
		len(bv.superblockRank)*8 +
		len(bv.blockRank)*2
}

// String returns the bits as a string of '0' and '1', position 0 first.
func (bv *BitVector) String() string {
	var buf bytes.Buffer
	buf.Grow(int(bv.num))
	for i := uint64(0); i < bv.num; i++ {
		if bv.Bit(i) {
			buf.WriteByte('1')
		} else {
			buf.WriteByte('0')
		}
	}
	return buf.String()
}

// Parse builds a BitVector from a string of '0' and '1'.
// Spaces and underscores are ignored.
func Parse(s string) (*BitVector, error) {
	s = strings.NewReplacer(" ", "", "_", "").Replace(s)
	b := NewBuilder(uint64(len(s)))
	for i, c := range s {
		switch c {
		case '0':
			b.PushBack(false)
		case '1':
			b.PushBack(true)
		default:
			return nil, fmt.Errorf("%w: %q at %d", ErrInvalidSymbol, c, i)
		}
	}
	return b.Build(), nil
}
