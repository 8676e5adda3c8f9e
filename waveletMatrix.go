// Package watrix provides a wavelet matrix over a sequence of integer
// symbols, supporting access, rank and select, and range queries
// such as counting by value range, quantile and intersection.
//
// Positions are 0-based, rank counts over the half-open prefix [0, pos),
// and select and quantile orders are 1-based.
package watrix

import (
	"fmt"

	"github.com/AlexWan0/go-succinct/bitvector"
)

// Range represents a range [Bpos, Epos)
// only valid for Bpos <= Epos
type Range struct {
	Bpos uint64
	Epos uint64
}

// Op selects the comparison used by RangedRankOp.
type Op int

const (
	// OpEqual is used in RangedRankOp()
	OpEqual Op = iota
	// OpLessThan is used in RangedRankOp()
	OpLessThan
	// OpMoreThan is used in RangedRankOp()
	OpMoreThan
	// OpMax is upper boundary for OpXXXX constants
	OpMax
)

// WaveletMatrix is an immutable sequence T[0...num) of values in [0, dim).
// Level d stores bit (blen-1-d) of every value, in the order produced by
// stably partitioning the previous level by its bit.
// It is safe for concurrent use.
type WaveletMatrix struct {
	layers  []*bitvector.BitVector
	zeroNum []uint64 // zeroNum[d] == layers[d].ZeroNum()
	dim     uint64
	num     uint64
	blen    uint64 // =len(layers)
}

// Num return the number of values in T
func (wm *WaveletMatrix) Num() uint64 {
	return wm.num
}

// Dim returns the alphabet size.
func (wm *WaveletMatrix) Dim() uint64 {
	return wm.dim
}

// Depth returns the number of levels, ceil(log2(Dim())).
func (wm *WaveletMatrix) Depth() uint64 {
	return wm.blen
}

// ZeroCount returns the number of zeros at level depth.
func (wm *WaveletMatrix) ZeroCount(depth uint64) (uint64, error) {
	if depth >= wm.blen {
		return 0, fmt.Errorf("%w: level %d, depth %d", ErrOutOfRange, depth, wm.blen)
	}
	return wm.zeroNum[depth], nil
}

// AllocSize returns the allocated size in bytes.
func (wm *WaveletMatrix) AllocSize() int {
	size := len(wm.zeroNum) * 8
	for _, bv := range wm.layers {
		size += bv.AllocSize()
	}
	return size
}

// Access returns T[pos]
func (wm *WaveletMatrix) Access(pos uint64) (uint64, error) {
	if pos >= wm.num {
		return 0, fmt.Errorf("%w: access %d, len %d", ErrOutOfRange, pos, wm.num)
	}
	val := uint64(0)
	for depth, bv := range wm.layers {
		val <<= 1
		if !bv.Bit(pos) {
			pos = bv.Rank0(pos)
		} else {
			val |= 1
			pos = wm.zeroNum[depth] + bv.Rank1(pos)
		}
	}
	return val, nil
}

// AccessAndRank returns T[pos] and Rank(T[pos], pos).
// Faster than Access followed by Rank.
func (wm *WaveletMatrix) AccessAndRank(pos uint64) (val uint64, rank uint64, err error) {
	if pos >= wm.num {
		return 0, 0, fmt.Errorf("%w: access %d, len %d", ErrOutOfRange, pos, wm.num)
	}
	bpos := uint64(0)
	epos := pos
	for depth, bv := range wm.layers {
		val <<= 1
		if !bv.Bit(epos) {
			bpos = bv.Rank0(bpos)
			epos = bv.Rank0(epos)
		} else {
			val |= 1
			bpos = wm.zeroNum[depth] + bv.Rank1(bpos)
			epos = wm.zeroNum[depth] + bv.Rank1(epos)
		}
	}
	return val, epos - bpos, nil
}

// Rank returns the number of val in T[0...pos)
func (wm *WaveletMatrix) Rank(val uint64, pos uint64) (uint64, error) {
	if err := wm.checkSymbol(val); err != nil {
		return 0, err
	}
	if pos > wm.num {
		return 0, fmt.Errorf("%w: rank %d, len %d", ErrOutOfRange, pos, wm.num)
	}
	r := wm.narrow(Range{0, pos}, val, wm.blen)
	return r.Epos - r.Bpos, nil
}

// RankLessThan returns the number of c (< val) in T[0...pos)
func (wm *WaveletMatrix) RankLessThan(val uint64, pos uint64) (uint64, error) {
	return wm.RangedRankOp(Range{0, pos}, val, OpLessThan)
}

// RankMoreThan returns the number of c (> val) in T[0...pos)
func (wm *WaveletMatrix) RankMoreThan(val uint64, pos uint64) (uint64, error) {
	return wm.RangedRankOp(Range{0, pos}, val, OpMoreThan)
}

// RangedRankOp returns the number of c that satisfies 'c op val'
// in T[ranze.Bpos, ranze.Epos).
// The op should be one of {OpEqual, OpLessThan, OpMoreThan}.
// val may lie outside the alphabet.
func (wm *WaveletMatrix) RangedRankOp(ranze Range, val uint64, op Op) (uint64, error) {
	if op < OpEqual || op >= OpMax {
		return 0, fmt.Errorf("%w: %d", ErrInvalidOp, op)
	}
	if err := wm.checkRange(ranze); err != nil {
		return 0, err
	}
	if !wm.encodable(val) {
		// val exceeds every stored value.
		if op == OpLessThan {
			return ranze.Epos - ranze.Bpos, nil
		}
		return 0, nil
	}
	rankLessThan := uint64(0)
	rankMoreThan := uint64(0)
	for depth, bv := range wm.layers {
		if getMSB(val, uint64(depth), wm.blen) {
			if op == OpLessThan {
				rankLessThan += bv.Rank0(ranze.Epos) - bv.Rank0(ranze.Bpos)
			}
			ranze.Bpos = wm.zeroNum[depth] + bv.Rank1(ranze.Bpos)
			ranze.Epos = wm.zeroNum[depth] + bv.Rank1(ranze.Epos)
		} else {
			if op == OpMoreThan {
				rankMoreThan += bv.Rank1(ranze.Epos) - bv.Rank1(ranze.Bpos)
			}
			ranze.Bpos = bv.Rank0(ranze.Bpos)
			ranze.Epos = bv.Rank0(ranze.Epos)
		}
	}
	switch op {
	case OpLessThan:
		return rankLessThan, nil
	case OpMoreThan:
		return rankMoreThan, nil
	default:
		return ranze.Epos - ranze.Bpos, nil
	}
}

// RangedRankRange searches T[ranze.Bpos, ranze.Epos) and
// returns the number of c that falls within valueRange
// i.e. [valueRange.Bpos, valueRange.Epos).
func (wm *WaveletMatrix) RangedRankRange(ranze Range, valueRange Range) (uint64, error) {
	if valueRange.Bpos >= valueRange.Epos {
		return 0, wm.checkRange(ranze)
	}
	end, err := wm.RangedRankOp(ranze, valueRange.Epos, OpLessThan)
	if err != nil {
		return 0, err
	}
	beg, err := wm.RangedRankOp(ranze, valueRange.Bpos, OpLessThan)
	if err != nil {
		return 0, err
	}
	return end - beg, nil
}

// RangedRankIgnoreLSBs searches T[ranze.Bpos, ranze.Epos) and
// returns the number of c that matches the val.
//
// If ignoreBits > 0, ignoreBits-bit portion from LSB are not considered
// for match.
// This behavior is useful for IP address prefix search such as 192.168.10.0/24
// (ignoreBits in this case, is 8).
func (wm *WaveletMatrix) RangedRankIgnoreLSBs(ranze Range, val, ignoreBits uint64) (uint64, error) {
	if err := wm.checkSymbol(val); err != nil {
		return 0, err
	}
	if err := wm.checkRange(ranze); err != nil {
		return 0, err
	}
	r := wm.narrow(ranze, val, wm.matchedLevels(ignoreBits))
	return r.Epos - r.Bpos, nil
}

// Select returns the position of the k-th (1-based) val in T.
func (wm *WaveletMatrix) Select(val uint64, k uint64) (uint64, error) {
	return wm.RangedSelectIgnoreLSBs(Range{0, wm.num}, val, k, 0)
}

// RangedSelect returns the position of the k-th val in T[ranze.Bpos, ranze.Epos).
func (wm *WaveletMatrix) RangedSelect(ranze Range, val uint64, k uint64) (uint64, error) {
	return wm.RangedSelectIgnoreLSBs(ranze, val, k, 0)
}

// RangedSelectIgnoreLSBs searches T[ranze.Bpos, ranze.Epos) and
// returns the position of the k-th c that matches the val,
// ignoring the ignoreBits least significant bits as in RangedRankIgnoreLSBs.
func (wm *WaveletMatrix) RangedSelectIgnoreLSBs(ranze Range, val, k, ignoreBits uint64) (uint64, error) {
	if err := wm.checkSymbol(val); err != nil {
		return 0, err
	}
	if err := wm.checkRange(ranze); err != nil {
		return 0, err
	}
	levels := wm.matchedLevels(ignoreBits)
	r := wm.narrow(ranze, val, levels)
	if k == 0 || k > r.Epos-r.Bpos {
		return 0, fmt.Errorf("%w: select %d of %d, have %d", ErrNotFound, k, val, r.Epos-r.Bpos)
	}
	pos := r.Bpos + k - 1
	for depth := levels; depth > 0; depth-- {
		bv := wm.layers[depth-1]
		if getMSB(val, depth-1, wm.blen) {
			pos = bv.Select1(pos - wm.zeroNum[depth-1] + 1)
		} else {
			pos = bv.Select0(pos + 1)
		}
	}
	return pos, nil
}

// Quantile returns the k-th (1-based) smallest value in T[ranze.Bpos, ranze.Epos)
func (wm *WaveletMatrix) Quantile(ranze Range, k uint64) (uint64, error) {
	if err := wm.checkRange(ranze); err != nil {
		return 0, err
	}
	if k == 0 || k > ranze.Epos-ranze.Bpos {
		return 0, fmt.Errorf("%w: quantile %d of %d values", ErrNotFound, k, ranze.Epos-ranze.Bpos)
	}
	k--
	val := uint64(0)
	bpos, epos := ranze.Bpos, ranze.Epos
	for depth, bv := range wm.layers {
		val <<= 1
		nzBpos := bv.Rank0(bpos)
		nzEpos := bv.Rank0(epos)
		nz := nzEpos - nzBpos
		if k < nz {
			bpos = nzBpos
			epos = nzEpos
		} else {
			k -= nz
			val |= 1
			bpos = wm.zeroNum[depth] + bpos - nzBpos
			epos = wm.zeroNum[depth] + epos - nzEpos
		}
	}
	return val, nil
}

// Intersect returns, in increasing order, the values that occur in at
// least k of the ranges.
func (wm *WaveletMatrix) Intersect(ranges []Range, k int) ([]uint64, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: intersect threshold %d", ErrOutOfRange, k)
	}
	for _, r := range ranges {
		if err := wm.checkRange(r); err != nil {
			return nil, err
		}
	}
	if len(ranges) < k || wm.num == 0 {
		return []uint64{}, nil
	}
	nonEmpty := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.Epos > r.Bpos {
			nonEmpty = append(nonEmpty, r)
		}
	}
	if len(nonEmpty) < k {
		return []uint64{}, nil
	}
	return wm.intersectHelper(nonEmpty, k, 0, 0), nil
}

func (wm *WaveletMatrix) intersectHelper(ranges []Range, k int, depth uint64, prefix uint64) []uint64 {
	if depth == wm.blen {
		return []uint64{prefix}
	}
	bv := wm.layers[depth]
	zeroRanges := make([]Range, 0, len(ranges))
	oneRanges := make([]Range, 0, len(ranges))
	for _, ranze := range ranges {
		bpos, epos := ranze.Bpos, ranze.Epos
		nzBpos := bv.Rank0(bpos)
		nzEpos := bv.Rank0(epos)
		noBpos := bpos - nzBpos + wm.zeroNum[depth]
		noEpos := epos - nzEpos + wm.zeroNum[depth]
		if nzEpos-nzBpos > 0 {
			zeroRanges = append(zeroRanges, Range{nzBpos, nzEpos})
		}
		if noEpos-noBpos > 0 {
			oneRanges = append(oneRanges, Range{noBpos, noEpos})
		}
	}
	ret := make([]uint64, 0)
	if len(zeroRanges) >= k {
		ret = append(ret, wm.intersectHelper(zeroRanges, k, depth+1, prefix<<1)...)
	}
	if len(oneRanges) >= k {
		ret = append(ret, wm.intersectHelper(oneRanges, k, depth+1, (prefix<<1)|1)...)
	}
	return ret
}

// narrow maps ranze through the first levels levels following the bits of
// val, returning the range of matching values at that level.
func (wm *WaveletMatrix) narrow(ranze Range, val uint64, levels uint64) Range {
	for depth := uint64(0); depth < levels; depth++ {
		bv := wm.layers[depth]
		if getMSB(val, depth, wm.blen) {
			ranze.Bpos = wm.zeroNum[depth] + bv.Rank1(ranze.Bpos)
			ranze.Epos = wm.zeroNum[depth] + bv.Rank1(ranze.Epos)
		} else {
			ranze.Bpos = bv.Rank0(ranze.Bpos)
			ranze.Epos = bv.Rank0(ranze.Epos)
		}
	}
	return ranze
}

func (wm *WaveletMatrix) matchedLevels(ignoreBits uint64) uint64 {
	if ignoreBits >= wm.blen {
		return 0
	}
	return wm.blen - ignoreBits
}

func (wm *WaveletMatrix) checkSymbol(val uint64) error {
	if val >= wm.dim {
		return fmt.Errorf("%w: %d not in alphabet of size %d", ErrInvalidSymbol, val, wm.dim)
	}
	return nil
}

func (wm *WaveletMatrix) checkRange(r Range) error {
	if r.Bpos > r.Epos || r.Epos > wm.num {
		return fmt.Errorf("%w: range [%d, %d), len %d", ErrOutOfRange, r.Bpos, r.Epos, wm.num)
	}
	return nil
}

// encodable reports whether val fits in blen bits.
func (wm *WaveletMatrix) encodable(val uint64) bool {
	return wm.blen >= 64 || val>>wm.blen == 0
}

func getMSB(x uint64, pos uint64, blen uint64) bool {
	return ((x >> (blen - pos - 1)) & 1) == 1
}
