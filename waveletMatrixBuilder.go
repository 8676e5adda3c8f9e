package watrix

import (
	"fmt"
	"math"
	"math/bits"
	"time"

	"github.com/AlexWan0/go-succinct/bitvector"
)

// Builder builds a WaveletMatrix from an integer array.
// A user calls PushBack()s followed by Build().
type Builder struct {
	vals []uint64
	opts options
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Builder{opts: o}
}

// New builds a WaveletMatrix over vals.
func New(vals []uint64, opts ...Option) (*WaveletMatrix, error) {
	wmb := NewBuilder(opts...)
	wmb.vals = vals
	return wmb.Build()
}

// PushBack appends val to the end of T.
func (wmb *Builder) PushBack(val uint64) {
	wmb.vals = append(wmb.vals, val)
}

// Build returns the WaveletMatrix of all pushed values.
// The input is left untouched and the builder may be reused.
func (wmb *Builder) Build() (*WaveletMatrix, error) {
	start := time.Now()
	num := uint64(len(wmb.vals))
	dim, err := wmb.alphabetSize()
	if err != nil {
		wmb.opts.logger.LogBuild(num, dim, 0, 0, err)
		return nil, err
	}
	blen := getBinaryLen(dim)
	if blen > wmb.opts.maxDepth {
		err = fmt.Errorf("%w: alphabet size %d needs %d levels, max %d",
			ErrConfiguration, dim, blen, wmb.opts.maxDepth)
		wmb.opts.logger.LogBuild(num, dim, blen, 0, err)
		return nil, err
	}

	layers := make([]*bitvector.BitVector, blen)
	zeroNum := make([]uint64, blen)
	zeros := wmb.vals
	ones := make([]uint64, 0)
	for depth := uint64(0); depth < blen; depth++ {
		nextZeros := make([]uint64, 0, len(wmb.vals))
		nextOnes := make([]uint64, 0, len(wmb.vals))
		bvb := bitvector.NewBuilder(num)
		filter(zeros, blen-depth-1, &nextZeros, &nextOnes, bvb)
		filter(ones, blen-depth-1, &nextZeros, &nextOnes, bvb)
		zeros = nextZeros
		ones = nextOnes
		layers[depth] = bvb.Build()
		zeroNum[depth] = uint64(len(nextZeros))
	}

	wm := &WaveletMatrix{
		layers:  layers,
		zeroNum: zeroNum,
		dim:     dim,
		num:     num,
		blen:    blen,
	}
	wmb.opts.logger.LogBuild(num, dim, blen, time.Since(start), nil)
	return wm, nil
}

func (wmb *Builder) alphabetSize() (uint64, error) {
	if dim := wmb.opts.alphabetSize; dim > 0 {
		for i, val := range wmb.vals {
			if val >= dim {
				return dim, fmt.Errorf("%w: T[%d] = %d not in alphabet of size %d",
					ErrInvalidSymbol, i, val, dim)
			}
		}
		return dim, nil
	}
	return getDim(wmb.vals)
}

// filter appends the bit at shift of every value to bvb and stably
// partitions vals into nextZeros and nextOnes by that bit.
func filter(vals []uint64, shift uint64, nextZeros *[]uint64, nextOnes *[]uint64, bvb *bitvector.Builder) {
	for _, val := range vals {
		bit := ((val >> shift) & 1) == 1
		bvb.PushBack(bit)
		if bit {
			*nextOnes = append(*nextOnes, val)
		} else {
			*nextZeros = append(*nextZeros, val)
		}
	}
}

// getDim returns max(vals)+1, or 0 for no values.
func getDim(vals []uint64) (uint64, error) {
	dim := uint64(0)
	for _, val := range vals {
		if val == math.MaxUint64 {
			return 0, fmt.Errorf("%w: value %d overflows the derived alphabet size; use WithAlphabetSize",
				ErrConfiguration, val)
		}
		if val >= dim {
			dim = val + 1
		}
	}
	return dim, nil
}

// getBinaryLen returns the number of bits needed for values in [0, dim).
func getBinaryLen(dim uint64) uint64 {
	if dim <= 1 {
		return 0
	}
	return uint64(bits.Len64(dim - 1))
}
