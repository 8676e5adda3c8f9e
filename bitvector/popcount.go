package bitvector

import "sync"

const (
	// halfWidth is the number of bits covered by one popcount table lookup.
	halfWidth = 16
	halfMask  = 1<<halfWidth - 1

	// blockSize is the width of one indexing unit (one uint32 word).
	blockSize = 2 * halfWidth

	// superblockSize is the number of bits per superblock.
	// Each superblock holds blockSize blocks.
	superblockSize      = blockSize * blockSize
	blocksPerSuperblock = superblockSize / blockSize
)

// Table maps every 16-bit pattern to its number of set bits.
// Its entries are only reachable through methods, so the shared
// table cannot be modified after it is built.
type Table struct {
	counts [1 << halfWidth]uint8
}

var (
	popcountTable Table
	popcountOnce  sync.Once
)

// PopcountTable returns the process-wide popcount table, building it on
// first use.
func PopcountTable() *Table {
	popcountOnce.Do(func() {
		c := &popcountTable.counts
		for x := 1; x < len(c); x++ {
			c[x] = c[x>>1] + uint8(x&1)
		}
	})
	return &popcountTable
}

// Count16 returns the number of set bits in x.
func (t *Table) Count16(x uint16) int {
	return int(t.counts[x])
}

// Count32 returns the number of set bits in w using two table lookups.
func (t *Table) Count32(w uint32) int {
	return int(t.counts[w&halfMask]) + int(t.counts[w>>halfWidth])
}

// selectInWord returns the offset of the r-th (1-based) set bit of w.
// It returns blockSize when r exceeds the popcount of w.
func (t *Table) selectInWord(w uint32, r uint64) uint64 {
	offset := uint64(0)
	if lo := uint64(t.counts[w&halfMask]); r > lo {
		r -= lo
		w >>= halfWidth
		offset = halfWidth
	}
	for ; w != 0; offset++ {
		if w&1 == 1 {
			r--
			if r == 0 {
				return offset
			}
		}
		w >>= 1
	}
	return blockSize
}
