package bitvector

import (
	"fmt"
	"slices"

	"github.com/ugorji/go/codec"
)

// MarshalBinary encodes the BitVector into a binary form and returns the result.
func (bv *BitVector) MarshalBinary() (out []byte, err error) {
	var bh codec.MsgpackHandle
	enc := codec.NewEncoderBytes(&out, &bh)
	err = enc.Encode(bv.num)
	if err != nil {
		return
	}
	err = enc.Encode(bv.oneNum)
	if err != nil {
		return
	}
	err = enc.Encode(bv.words)
	if err != nil {
		return
	}
	err = enc.Encode(bv.superblockRank)
	if err != nil {
		return
	}
	err = enc.Encode(bv.blockRank)
	return
}

// UnmarshalBinary decodes the BitVector from a binary form generated by MarshalBinary.
func (bv *BitVector) UnmarshalBinary(in []byte) (err error) {
	var bh codec.MsgpackHandle
	dec := codec.NewDecoderBytes(in, &bh)
	var v BitVector
	err = dec.Decode(&v.num)
	if err != nil {
		return
	}
	err = dec.Decode(&v.oneNum)
	if err != nil {
		return
	}
	err = dec.Decode(&v.words)
	if err != nil {
		return
	}
	err = dec.Decode(&v.superblockRank)
	if err != nil {
		return
	}
	err = dec.Decode(&v.blockRank)
	if err != nil {
		return
	}
	return bv.restore(&v)
}

// restore rebuilds the rank directory from the decoded words and keeps
// it only if the decoded directory agrees with it.
func (bv *BitVector) restore(v *BitVector) error {
	if uint64(len(v.words)) != v.num/blockSize+1 {
		return fmt.Errorf("%w: %d words for %d bits", ErrCorrupt, len(v.words), v.num)
	}
	if tail := v.num % blockSize; v.words[len(v.words)-1]>>tail != 0 {
		return fmt.Errorf("%w: bits set past end", ErrCorrupt)
	}
	built := build(v.words, v.num)
	switch {
	case v.oneNum != built.oneNum:
		return fmt.Errorf("%w: %d ones recorded, %d stored", ErrCorrupt, v.oneNum, built.oneNum)
	case !slices.Equal(v.superblockRank, built.superblockRank):
		return fmt.Errorf("%w: superblock ranks disagree with bits", ErrCorrupt)
	case !slices.Equal(v.blockRank, built.blockRank):
		return fmt.Errorf("%w: block ranks disagree with bits", ErrCorrupt)
	}
	*bv = *built
	return nil
}
