package kdf

import (
	"crypto/rand"
	"io"

	"github.com/sara-star-quant/xorbreak/internal/constants"
	xerrors "github.com/sara-star-quant/xorbreak/internal/errors"
	"github.com/sara-star-quant/xorbreak/pkg/hex"
)

// Reader is the entropy source for RandomKey. Tests may replace it.
var Reader io.Reader = rand.Reader

// RandomKey returns keyLen bytes from Reader as a repeating XOR key.
//
// A random key is only as strong as its length relative to the message;
// short keys remain recoverable by the repeating-key attack.
func RandomKey(keyLen int) (hex.Sequence, error) {
	if keyLen <= 0 || keyLen > constants.MaxDerivedKeySize {
		return hex.Sequence{}, xerrors.NewCodecError("kdf.RandomKey", xerrors.ErrInvalidKeySize)
	}
	b := make([]byte, keyLen)
	if _, err := io.ReadFull(Reader, b); err != nil {
		return hex.Sequence{}, xerrors.NewCodecError("kdf.RandomKey", err)
	}
	return hex.FromBytes(b), nil
}
