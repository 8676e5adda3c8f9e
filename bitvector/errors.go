package bitvector

import "errors"

var (
	// ErrOutOfRange is returned when a position lies outside the vector.
	ErrOutOfRange = errors.New("position out of range")

	// ErrInvalidSymbol is returned for a symbol outside the alphabet
	// (anything but 0 or 1 for a bit vector).
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrNotFound is returned by select when the requested occurrence
	// does not exist.
	ErrNotFound = errors.New("occurrence not found")

	// ErrCorrupt is returned when decoding inconsistent binary data.
	ErrCorrupt = errors.New("corrupt encoding")
)
