package hex

import (
	"fmt"
	"strings"

	"github.com/sara-star-quant/xorbreak/internal/constants"
	xerrors "github.com/sara-star-quant/xorbreak/internal/errors"
)

// Sequence is an ordered, immutable run of symbols. The zero value is an
// empty sequence.
type Sequence struct {
	symbols []Symbol
}

// FromText converts a string into one symbol per byte. Multi-byte UTF-8
// characters contribute one symbol for each of their bytes.
func FromText(s string) Sequence {
	symbols := make([]Symbol, len(s))
	for i := 0; i < len(s); i++ {
		symbols[i] = Symbol(s[i])
	}
	return Sequence{symbols: symbols}
}

// FromBytes copies raw bytes into a sequence.
func FromBytes(b []byte) Sequence {
	symbols := make([]Symbol, len(b))
	for i, v := range b {
		symbols[i] = Symbol(v)
	}
	return Sequence{symbols: symbols}
}

// Parse decodes hex text. The input must have even length and contain only
// hex digits; case is ignored.
func Parse(s string) (Sequence, error) {
	if len(s)%constants.HexCharsPerByte != 0 {
		return Sequence{}, xerrors.NewCodecError("hex.Parse",
			fmt.Errorf("%w: odd length %d", xerrors.ErrInvalidFormat, len(s)))
	}

	symbols := make([]Symbol, len(s)/constants.HexCharsPerByte)
	for i := range symbols {
		sym, err := SymbolFromDigits(s[2*i], s[2*i+1])
		if err != nil {
			return Sequence{}, xerrors.NewCodecError("hex.Parse",
				fmt.Errorf("%w at offset %d", xerrors.ErrInvalidFormat, 2*i))
		}
		symbols[i] = sym
	}
	return Sequence{symbols: symbols}, nil
}

// MustParse is like Parse but panics on malformed input. It is intended for
// package-level test vectors and constants only.
func MustParse(s string) Sequence {
	seq, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return seq
}

// String renders the sequence as lowercase hex.
func (q Sequence) String() string {
	var b strings.Builder
	b.Grow(len(q.symbols) * constants.HexCharsPerByte)
	for _, s := range q.symbols {
		b.WriteByte(constants.HexDigits[s>>4])
		b.WriteByte(constants.HexDigits[s&0x0f])
	}
	return b.String()
}

// Text reinterprets every symbol as a byte of a Go string.
//
// The result is only meaningful as display text when every symbol is
// printable ASCII (see IsDisplayable); other values produce arbitrary bytes
// that may not be valid UTF-8.
func (q Sequence) Text() string {
	return string(q.Bytes())
}

// Bytes returns a copy of the raw byte values.
func (q Sequence) Bytes() []byte {
	out := make([]byte, len(q.symbols))
	for i, s := range q.symbols {
		out[i] = byte(s)
	}
	return out
}

// Len returns the number of symbols.
func (q Sequence) Len() int {
	return len(q.symbols)
}

// At returns the symbol at index i.
func (q Sequence) At(i int) Symbol {
	return q.symbols[i]
}

// Slice returns the symbols in [i, j) as a new sequence.
func (q Sequence) Slice(i, j int) Sequence {
	out := make([]Symbol, j-i)
	copy(out, q.symbols[i:j])
	return Sequence{symbols: out}
}

// Equal reports whether both sequences hold the same symbols.
func (q Sequence) Equal(other Sequence) bool {
	if len(q.symbols) != len(other.symbols) {
		return false
	}
	for i := range q.symbols {
		if q.symbols[i] != other.symbols[i] {
			return false
		}
	}
	return true
}

// IsDisplayable reports whether every symbol is printable and not extended.
func (q Sequence) IsDisplayable() bool {
	for _, s := range q.symbols {
		if !s.IsPrintable() || s.IsExtended() {
			return false
		}
	}
	return true
}

// Xor combines two sequences of equal length symbol by symbol.
func (q Sequence) Xor(other Sequence) (Sequence, error) {
	if len(q.symbols) != len(other.symbols) {
		return Sequence{}, xerrors.NewCodecError("hex.Xor",
			fmt.Errorf("%w: %d != %d", xerrors.ErrLengthMismatch, len(q.symbols), len(other.symbols)))
	}
	out := make([]Symbol, len(q.symbols))
	for i := range q.symbols {
		out[i] = q.symbols[i].Xor(other.symbols[i])
	}
	return Sequence{symbols: out}, nil
}

// XorSymbol XORs every symbol with a single-byte key.
func (q Sequence) XorSymbol(key Symbol) Sequence {
	out := make([]Symbol, len(q.symbols))
	for i, s := range q.symbols {
		out[i] = s.Xor(key)
	}
	return Sequence{symbols: out}
}

// RepeatingXor splits the sequence into consecutive chunks of key.Len()
// symbols and XORs each chunk against the key from its first byte. A short
// final chunk only uses the key's leading bytes.
func (q Sequence) RepeatingXor(key Sequence) (Sequence, error) {
	if key.Len() == 0 {
		return Sequence{}, xerrors.NewCodecError("hex.RepeatingXor", xerrors.ErrEmptyKey)
	}

	out := make([]Symbol, len(q.symbols))
	for start := 0; start < len(q.symbols); start += key.Len() {
		end := min(start+key.Len(), len(q.symbols))
		for i := start; i < end; i++ {
			out[i] = q.symbols[i].Xor(key.symbols[i-start])
		}
	}
	return Sequence{symbols: out}, nil
}

// HammingDistance returns the total number of differing bits between two
// sequences of equal length.
func (q Sequence) HammingDistance(other Sequence) (int, error) {
	if len(q.symbols) != len(other.symbols) {
		return 0, xerrors.NewCodecError("hex.HammingDistance",
			fmt.Errorf("%w: %d != %d", xerrors.ErrLengthMismatch, len(q.symbols), len(other.symbols)))
	}
	dist := 0
	for i := range q.symbols {
		dist += q.symbols[i].BitDifference(other.symbols[i])
	}
	return dist, nil
}
