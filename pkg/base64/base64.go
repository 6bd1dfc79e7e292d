// Package base64 implements the standard base64 text form of byte buffers
// as an explicit sequence of 6-bit values.
//
// Padding is stored as the sentinel value constants.Base64PadValue so a
// Sequence always holds a multiple of four values and renders back to the
// exact text it was parsed from.
package base64

import (
	"fmt"
	"strings"

	"github.com/sara-star-quant/xorbreak/internal/constants"
	xerrors "github.com/sara-star-quant/xorbreak/internal/errors"
)

// Sequence is an immutable run of 6-bit values with trailing padding
// sentinels.
type Sequence struct {
	values []byte
}

// alphabetIndex maps an ASCII character to its 6-bit value, or -1.
var alphabetIndex = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(constants.Base64Alphabet); i++ {
		idx[constants.Base64Alphabet[i]] = int8(i)
	}
	return idx
}()

// Encode packs every three input bytes into four 6-bit values. A final
// group of one byte gets two padding sentinels, a group of two gets one.
func Encode(data []byte) Sequence {
	groups := (len(data) + constants.Base64GroupBytes - 1) / constants.Base64GroupBytes
	values := make([]byte, 0, groups*constants.Base64GroupSymbols)

	for i := 0; i < len(data); i += constants.Base64GroupBytes {
		rest := len(data) - i
		b0 := data[i]
		var b1, b2 byte
		if rest > 1 {
			b1 = data[i+1]
		}
		if rest > 2 {
			b2 = data[i+2]
		}

		values = append(values, b0>>2, (b0<<4|b1>>4)&0x3f)
		switch rest {
		case 1:
			values = append(values, constants.Base64PadValue, constants.Base64PadValue)
		case 2:
			values = append(values, (b1<<2)&0x3f, constants.Base64PadValue)
		default:
			values = append(values, (b1<<2|b2>>6)&0x3f, b2&0x3f)
		}
	}
	return Sequence{values: values}
}

// Parse validates base64 text. Trailing '=' characters count as padding
// (at most two), every other character must belong to the alphabet, and the
// total length must be a multiple of four.
func Parse(s string) (Sequence, error) {
	body := strings.TrimRight(s, string(constants.Base64PadChar))
	padding := len(s) - len(body)

	if padding > constants.Base64MaxPadding {
		return Sequence{}, xerrors.NewCodecError("base64.Parse",
			fmt.Errorf("%w: %d padding characters", xerrors.ErrInvalidFormat, padding))
	}

	values := make([]byte, 0, len(s))
	for i := 0; i < len(body); i++ {
		v := alphabetIndex[body[i]]
		if v < 0 {
			return Sequence{}, xerrors.NewCodecError("base64.Parse",
				fmt.Errorf("%w: illegal character %q at offset %d", xerrors.ErrInvalidFormat, body[i], i))
		}
		values = append(values, byte(v))
	}

	if (len(body)+padding)%constants.Base64GroupSymbols != 0 {
		return Sequence{}, xerrors.NewCodecError("base64.Parse",
			fmt.Errorf("%w: length %d is not a multiple of %d", xerrors.ErrInvalidFormat,
				len(body)+padding, constants.Base64GroupSymbols))
	}

	for range padding {
		values = append(values, constants.Base64PadValue)
	}
	return Sequence{values: values}, nil
}

// Decode unpacks every group of four values into up to three bytes.
// Padding sentinels contribute no bits.
func (q Sequence) Decode() []byte {
	out := make([]byte, 0, len(q.values)/constants.Base64GroupSymbols*constants.Base64GroupBytes)

	for i := 0; i < len(q.values); i += constants.Base64GroupSymbols {
		end := min(i+constants.Base64GroupSymbols, len(q.values))
		group := q.values[i:end]

		n := 0
		for n < len(group) && group[n] != constants.Base64PadValue {
			n++
		}
		if n >= 2 {
			out = append(out, group[0]<<2|group[1]>>4)
		}
		if n >= 3 {
			out = append(out, group[1]<<4|group[2]>>2)
		}
		if n >= 4 {
			out = append(out, group[2]<<6|group[3])
		}
	}
	return out
}

// String renders every value through the alphabet; sentinels render as '='.
func (q Sequence) String() string {
	var b strings.Builder
	b.Grow(len(q.values))
	for _, v := range q.values {
		b.WriteByte(constants.Base64Table[v])
	}
	return b.String()
}

// Len returns the number of stored values, padding included.
func (q Sequence) Len() int {
	return len(q.values)
}

// Padding returns the number of trailing padding sentinels.
func (q Sequence) Padding() int {
	n := 0
	for i := len(q.values) - 1; i >= 0 && q.values[i] == constants.Base64PadValue; i-- {
		n++
	}
	return n
}

// Values returns a copy of the stored values, padding sentinels included.
func (q Sequence) Values() []byte {
	out := make([]byte, len(q.values))
	copy(out, q.values)
	return out
}
