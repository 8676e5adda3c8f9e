package bitvector

// Builder accumulates bits for a BitVector.
// A user calls PushBack()s followed by Build().
type Builder struct {
	words []uint32
	num   uint64
}

// NewBuilder returns a Builder with room for capacity bits.
func NewBuilder(capacity uint64) *Builder {
	return &Builder{
		words: make([]uint32, 0, capacity/blockSize+1),
	}
}

// PushBack appends bit to the end of the vector.
func (b *Builder) PushBack(bit bool) {
	if b.num%blockSize == 0 {
		b.words = append(b.words, 0)
	}
	if bit {
		b.words[b.num/blockSize] |= 1 << (b.num % blockSize)
	}
	b.num++
}

// Num returns the number of bits pushed so far.
func (b *Builder) Num() uint64 {
	return b.num
}

// Build returns the BitVector of all pushed bits and resets the builder.
func (b *Builder) Build() *BitVector {
	words := b.words
	if uint64(len(words)) < b.num/blockSize+1 {
		words = append(words, 0)
	}
	bv := build(words, b.num)
	b.words = nil
	b.num = 0
	return bv
}
