package watrix

import (
	"fmt"
	"os"

	"github.com/AlexWan0/go-succinct/bitvector"
	"github.com/edsrzf/mmap-go"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ugorji/go/codec"
)

// MarshalBinary encodes the WaveletMatrix into a binary form and returns the result.
func (wm *WaveletMatrix) MarshalBinary() (out []byte, err error) {
	var bh codec.MsgpackHandle
	enc := codec.NewEncoderBytes(&out, &bh)
	err = enc.Encode(wm.num)
	if err != nil {
		return
	}
	err = enc.Encode(wm.dim)
	if err != nil {
		return
	}
	err = enc.Encode(wm.blen)
	if err != nil {
		return
	}
	err = enc.Encode(wm.zeroNum)
	if err != nil {
		return
	}
	for _, bv := range wm.layers {
		var layer []byte
		layer, err = bv.MarshalBinary()
		if err != nil {
			return
		}
		err = enc.Encode(layer)
		if err != nil {
			return
		}
	}
	return
}

// UnmarshalBinary decodes the WaveletMatrix from a binary form generated by MarshalBinary.
func (wm *WaveletMatrix) UnmarshalBinary(in []byte) (err error) {
	var bh codec.MsgpackHandle
	dec := codec.NewDecoderBytes(in, &bh)
	var v WaveletMatrix
	err = dec.Decode(&v.num)
	if err != nil {
		return
	}
	err = dec.Decode(&v.dim)
	if err != nil {
		return
	}
	err = dec.Decode(&v.blen)
	if err != nil {
		return
	}
	if v.blen > MaxDepth || v.blen != getBinaryLen(v.dim) {
		return fmt.Errorf("%w: depth %d for alphabet size %d", ErrCorrupt, v.blen, v.dim)
	}
	err = dec.Decode(&v.zeroNum)
	if err != nil {
		return
	}
	if uint64(len(v.zeroNum)) != v.blen {
		return fmt.Errorf("%w: %d zero counts for depth %d", ErrCorrupt, len(v.zeroNum), v.blen)
	}
	v.layers = make([]*bitvector.BitVector, v.blen)
	for depth := range v.layers {
		var layer []byte
		err = dec.Decode(&layer)
		if err != nil {
			return
		}
		bv := new(bitvector.BitVector)
		err = bv.UnmarshalBinary(layer)
		if err != nil {
			return
		}
		if bv.Num() != v.num || bv.ZeroNum() != v.zeroNum[depth] {
			return fmt.Errorf("%w: level %d has %d bits and %d zeros, want %d and %d",
				ErrCorrupt, depth, bv.Num(), bv.ZeroNum(), v.num, v.zeroNum[depth])
		}
		v.layers[depth] = bv
	}
	*wm = v
	return nil
}

// SaveOptions configures SaveTo.
//
// The zero Compression is CompressionNone: a caller-built SaveOptions
// stores the payload uncompressed unless Compression is set. Pass nil
// to SaveTo for DefaultSaveOptions, which uses zstd.
type SaveOptions struct {
	Compression Compression
	ZstdLevel   int // zstd level 1..22, default 3
	Logger      *Logger
}

// DefaultSaveOptions returns zstd compression at the default level.
func DefaultSaveOptions() *SaveOptions {
	return &SaveOptions{
		Compression: CompressionZstd,
		ZstdLevel:   3,
		Logger:      NoopLogger(),
	}
}

// OrDefault returns DefaultSaveOptions if o is nil, otherwise normalizes o.
// Compression is kept as given, so a zero value stays CompressionNone.
func (o *SaveOptions) OrDefault() *SaveOptions {
	if o == nil {
		return DefaultSaveOptions()
	}
	if o.ZstdLevel <= 0 {
		o.ZstdLevel = 3
	}
	if o.Logger == nil {
		o.Logger = NoopLogger()
	}
	return o
}

// SaveTo writes the matrix to path atomically (write to path+".tmp", then rename).
// opts may be nil to use DefaultSaveOptions().
func (wm *WaveletMatrix) SaveTo(path string, opts *SaveOptions) (err error) {
	opts = opts.OrDefault()
	var raw, payload []byte
	c := opts.Compression
	defer func() {
		opts.Logger.LogSave(path, c, len(raw), len(payload), err)
	}()

	raw, err = wm.MarshalBinary()
	if err != nil {
		return err
	}
	payload, c, err = compress(raw, opts.Compression, opts.ZstdLevel)
	if err != nil {
		return err
	}
	h := &Header{
		Compression: c,
		StoredLen:   uint64(len(payload)),
		RawLen:      uint64(len(raw)),
	}
	head, err := SealHeader(h, payload)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err = f.Write(head); err == nil {
		_, err = f.Write(payload)
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadFrom reads a matrix written by SaveTo. The file is mapped read-only
// while decoding; the returned matrix does not reference it.
// logger may be nil.
func LoadFrom(path string, logger *Logger) (wm *WaveletMatrix, err error) {
	if logger == nil {
		logger = NoopLogger()
	}
	var h *Header
	defer func() {
		c, stored := CompressionNone, 0
		if h != nil {
			c, stored = h.Compression, int(h.StoredLen)
		}
		logger.LogLoad(path, c, stored, err)
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if st.Size() < HeaderSize {
		return nil, fmt.Errorf("%w: file too short (%d bytes)", ErrCorrupt, st.Size())
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer func() {
		if uerr := m.Unmap(); err == nil {
			err = uerr
		}
	}()

	h, err = DecodeHeader(m)
	if err != nil {
		return nil, err
	}
	if uint64(len(m)-HeaderSize) != h.StoredLen {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d",
			ErrCorrupt, len(m)-HeaderSize, h.StoredLen)
	}
	payload := m[HeaderSize:]
	if Checksum(m[:HeaderSize], payload) != h.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	raw, err := decompress(payload, h.Compression, h.RawLen)
	if err != nil {
		return nil, err
	}
	wm = new(WaveletMatrix)
	if err = wm.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return wm, nil
}

// compress returns the stored form of raw and the compression actually
// applied. Payloads that do not shrink are stored uncompressed.
func compress(raw []byte, c Compression, zstdLevel int) ([]byte, Compression, error) {
	var out []byte
	switch c {
	case CompressionNone:
		return raw, CompressionNone, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(zstdLevel)))
		if err != nil {
			return nil, c, err
		}
		out = enc.EncodeAll(raw, nil)
		if err := enc.Close(); err != nil {
			return nil, c, err
		}
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil {
			return nil, c, err
		}
		out = buf[:n] // n == 0: incompressible
	default:
		return nil, c, fmt.Errorf("%w: unknown compression %d", ErrConfiguration, c)
	}
	if len(out) == 0 || len(out) >= len(raw) {
		return raw, CompressionNone, nil
	}
	return out, c, nil
}

func decompress(payload []byte, c Compression, rawLen uint64) ([]byte, error) {
	switch c {
	case CompressionNone:
		if uint64(len(payload)) != rawLen {
			return nil, fmt.Errorf("%w: raw payload size mismatch", ErrCorrupt)
		}
		// Copy out of the mapping before it is released.
		return append([]byte(nil), payload...), nil
	case CompressionZstd:
		if rawLen == 0 || rawLen > 1<<63 {
			return nil, fmt.Errorf("%w: raw size %d", ErrCorrupt, rawLen)
		}
		// The decoder grows its output as it goes and stops at rawLen.
		dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(rawLen))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		raw, err := dec.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint64(len(raw)) != rawLen {
			return nil, fmt.Errorf("%w: decompressed %d bytes, header says %d", ErrCorrupt, len(raw), rawLen)
		}
		return raw, nil
	case CompressionLZ4:
		if rawLen > uint64(len(payload))*lz4MaxRatio {
			return nil, fmt.Errorf("%w: raw size %d for %d stored bytes", ErrCorrupt, rawLen, len(payload))
		}
		raw := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(payload, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint64(n) != rawLen {
			return nil, fmt.Errorf("%w: decompressed %d bytes, header says %d", ErrCorrupt, n, rawLen)
		}
		return raw, nil
	}
	return nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, c)
}
