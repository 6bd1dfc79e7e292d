// Package kdf derives repeating XOR keys from passphrases.
//
// Keys are squeezed from an extendable-output function (XOF) over a
// length-prefixed encoding of a domain separator and the input:
//
//	output = XOF(
//	    len(domain) || domain ||
//	    len(input)  || input,
//	    outputLen
//	)
//
// Length prefixes are 4-byte big-endian integers so the encoding is
// unambiguous. SHAKE-256 (FIPS 202) is the default; BLAKE2Xb and
// KangarooTwelve are available for interoperability testing.
package kdf

import (
	"encoding/binary"
	"io"

	"github.com/cloudflare/circl/xof"
	"golang.org/x/crypto/sha3"

	"github.com/sara-star-quant/xorbreak/internal/constants"
	xerrors "github.com/sara-star-quant/xorbreak/internal/errors"
	"github.com/sara-star-quant/xorbreak/pkg/hex"
)

// sponge is the absorb/squeeze surface shared by every backend.
type sponge interface {
	io.Writer
	io.Reader
}

func newSponge(x constants.XOF) (sponge, error) {
	switch x {
	case constants.XOFShake256:
		return sha3.NewShake256(), nil
	case constants.XOFBlake2XB:
		return xof.BLAKE2XB.New(), nil
	case constants.XOFKangarooTwelve:
		return xof.K12D10.New(), nil
	default:
		return nil, xerrors.ErrUnsupportedXOF
	}
}

// DeriveKey derives outputLen bytes from input using SHAKE-256 with domain
// separation.
func DeriveKey(domain string, input []byte, outputLen int) ([]byte, error) {
	return DeriveKeyWith(constants.XOFShake256, domain, input, outputLen)
}

// DeriveKeyWith is DeriveKey with an explicit XOF.
func DeriveKeyWith(x constants.XOF, domain string, input []byte, outputLen int) ([]byte, error) {
	h, err := start(x, domain, outputLen)
	if err != nil {
		return nil, err
	}
	writeField(h, input)
	return squeeze(h, outputLen)
}

// DeriveKeyMultiple derives a key from several inputs. The input count is
// absorbed after the domain, then each input with its length prefix.
func DeriveKeyMultiple(x constants.XOF, domain string, inputs [][]byte, outputLen int) ([]byte, error) {
	h, err := start(x, domain, outputLen)
	if err != nil {
		return nil, err
	}
	writeUint32(h, uint32(len(inputs)))
	for _, in := range inputs {
		writeField(h, in)
	}
	return squeeze(h, outputLen)
}

// start validates outputLen and absorbs the domain separator.
func start(x constants.XOF, domain string, outputLen int) (sponge, error) {
	if outputLen <= 0 || outputLen > constants.MaxDerivedKeySize {
		return nil, xerrors.NewCodecError("kdf.DeriveKey", xerrors.ErrInvalidKeySize)
	}
	h, err := newSponge(x)
	if err != nil {
		return nil, xerrors.NewCodecError("kdf.DeriveKey", err)
	}
	writeField(h, []byte(domain))
	return h, nil
}

func writeUint32(h sponge, v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func writeField(h sponge, b []byte) {
	writeUint32(h, uint32(len(b)))
	_, _ = h.Write(b)
}

func squeeze(h sponge, n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, xerrors.NewCodecError("kdf.DeriveKey", err)
	}
	return out, nil
}

// RepeatingKey derives a keyLen-byte repeating XOR key from a passphrase
// using SHAKE-256.
func RepeatingKey(passphrase string, keyLen int) (hex.Sequence, error) {
	return RepeatingKeyWith(constants.XOFShake256, passphrase, keyLen)
}

// RepeatingKeyWith is RepeatingKey with an explicit XOF.
func RepeatingKeyWith(x constants.XOF, passphrase string, keyLen int) (hex.Sequence, error) {
	key, err := DeriveKeyWith(x, constants.DomainSeparatorRepeatingKey, []byte(passphrase), keyLen)
	if err != nil {
		return hex.Sequence{}, err
	}
	return hex.FromBytes(key), nil
}
