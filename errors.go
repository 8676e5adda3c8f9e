package watrix

import (
	"errors"

	"github.com/AlexWan0/go-succinct/bitvector"
)

var (
	// ErrOutOfRange is returned when a position or range lies outside [0, Num()].
	ErrOutOfRange = bitvector.ErrOutOfRange

	// ErrInvalidSymbol is returned for a value outside [0, Dim()).
	ErrInvalidSymbol = bitvector.ErrInvalidSymbol

	// ErrNotFound is returned when a select or quantile order does not exist.
	ErrNotFound = bitvector.ErrNotFound

	// ErrCorrupt is returned when loading inconsistent data.
	ErrCorrupt = bitvector.ErrCorrupt

	// ErrConfiguration is returned when the alphabet needs more levels
	// than the configured maximum.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInvalidOp is returned by RangedRankOp for an unknown operator.
	ErrInvalidOp = errors.New("invalid operator")
)
