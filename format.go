package watrix

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

const (
	// HeaderSize is the fixed size of a saved file header.
	HeaderSize = 32

	// Magic identifies a saved wavelet matrix file.
	Magic = "WTRX"

	// FormatVersion is the current file format version.
	FormatVersion uint16 = 1

	// checksumOffset is the offset of Header.Checksum in an encoded header.
	// The checksum covers the header bytes before it and the payload.
	checksumOffset = 24

	// lz4MaxRatio bounds how much an LZ4 block can expand on decompression.
	lz4MaxRatio = 255
)

// Compression selects how SaveTo compresses the payload.
type Compression uint8

const (
	// CompressionNone stores the payload as is.
	CompressionNone Compression = iota
	// CompressionZstd compresses with zstd (better ratio).
	CompressionZstd
	// CompressionLZ4 compresses with LZ4 block format (faster).
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression parses the names produced by Compression.String.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	}
	return 0, fmt.Errorf("%w: unknown compression %q", ErrConfiguration, s)
}

// Header precedes the payload of a saved file.
type Header struct {
	Magic       [4]byte
	Version     uint16
	Compression Compression
	_           uint8
	StoredLen   uint64 // payload bytes following the header
	RawLen      uint64 // payload bytes after decompression
	Checksum    uint32 // CRC-32 (IEEE) of the preceding header fields and the stored payload
	Reserved    [4]byte
}

// EncodeHeader returns h as HeaderSize bytes, setting magic and version.
func EncodeHeader(h *Header) ([]byte, error) {
	copy(h.Magic[:], Magic)
	h.Version = FormatVersion
	var w bytes.Buffer
	w.Grow(HeaderSize)
	if err := binary.Write(&w, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Checksum returns the CRC-32 (IEEE) of the encoded header fields that
// precede the checksum, followed by payload.
func Checksum(head, payload []byte) uint32 {
	sum := crc32.ChecksumIEEE(head[:checksumOffset])
	return crc32.Update(sum, crc32.IEEETable, payload)
}

// SealHeader encodes h with its checksum computed over the encoded
// fields and payload.
func SealHeader(h *Header, payload []byte) ([]byte, error) {
	head, err := EncodeHeader(h)
	if err != nil {
		return nil, err
	}
	h.Checksum = Checksum(head, payload)
	binary.LittleEndian.PutUint32(head[checksumOffset:], h.Checksum)
	return head, nil
}

// DecodeHeader reads a header from src, validating magic and version.
func DecodeHeader(src []byte) (*Header, error) {
	if len(src) < HeaderSize {
		return nil, fmt.Errorf("%w: header too short (%d bytes)", ErrCorrupt, len(src))
	}
	var h Header
	if err := binary.Read(bytes.NewReader(src[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if string(h.Magic[:]) != Magic {
		return nil, fmt.Errorf("%w: invalid magic %q", ErrCorrupt, h.Magic[:])
	}
	if h.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrCorrupt, h.Version)
	}
	return &h, nil
}
