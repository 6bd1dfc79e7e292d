// Package hex implements the byte-level codec used throughout xorbreak.
//
// A Symbol is one byte together with its two-digit lowercase hexadecimal
// form. A Sequence is an ordered, immutable run of symbols that supports
// text and hex conversion, fixed and repeating-key XOR, and Hamming
// distance.
//
// Unlike encoding/hex, every operation that combines two sequences checks
// their lengths and reports ErrLengthMismatch instead of truncating.
package hex

import (
	"fmt"
	"math/bits"

	"github.com/sara-star-quant/xorbreak/internal/constants"
	xerrors "github.com/sara-star-quant/xorbreak/internal/errors"
)

// Symbol is a single byte value rendered as two hexadecimal digits.
type Symbol byte

// NewSymbol wraps a raw byte.
func NewSymbol(b byte) Symbol {
	return Symbol(b)
}

// SymbolFromDigits builds a symbol from its high and low hex digits.
// Digits are case-insensitive.
func SymbolFromDigits(high, low byte) (Symbol, error) {
	hv, ok := nibble(high)
	if !ok {
		return 0, xerrors.NewCodecError("hex.SymbolFromDigits",
			fmt.Errorf("%w: illegal digit %q", xerrors.ErrInvalidFormat, high))
	}
	lv, ok := nibble(low)
	if !ok {
		return 0, xerrors.NewCodecError("hex.SymbolFromDigits",
			fmt.Errorf("%w: illegal digit %q", xerrors.ErrInvalidFormat, low))
	}
	return Symbol(hv<<4 | lv), nil
}

// Byte returns the raw byte value.
func (s Symbol) Byte() byte {
	return byte(s)
}

// String returns the two-digit lowercase, zero-padded hex form.
func (s Symbol) String() string {
	return string([]byte{constants.HexDigits[s>>4], constants.HexDigits[s&0x0f]})
}

// IsPrintable reports whether the value is above the control range.
func (s Symbol) IsPrintable() bool {
	return s > constants.PrintableThreshold
}

// IsExtended reports whether the value lies outside 7-bit ASCII.
func (s Symbol) IsExtended() bool {
	return s > constants.ExtendedThreshold
}

// Xor returns the bitwise XOR of two symbols.
func (s Symbol) Xor(other Symbol) Symbol {
	return s ^ other
}

// BitDifference returns the number of differing bits (0-8).
func (s Symbol) BitDifference(other Symbol) int {
	return bits.OnesCount8(byte(s ^ other))
}

// nibble decodes one hex digit.
func nibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
