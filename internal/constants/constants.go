// Package constants defines codec alphabets, attack thresholds and key
// derivation parameters for xorbreak.
package constants

import "strings"

// Hexadecimal text format
const (
	// HexDigits is the lowercase output alphabet, indexed by nibble value
	HexDigits = "0123456789abcdef"

	// HexCharsPerByte is the number of hex digits that render one byte
	HexCharsPerByte = 2
)

// Base64 text format (RFC 4648 standard alphabet)
const (
	// Base64Alphabet holds the 64 data symbols, indexed by 6-bit value
	Base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

	// Base64PadChar is the trailing padding character
	Base64PadChar = '='

	// Base64PadValue is the out-of-alphabet sentinel stored for padding
	Base64PadValue = 64

	// Base64Table renders every stored value, sentinel included
	Base64Table = Base64Alphabet + "="

	// Base64GroupBytes is the number of raw bytes packed into one group
	Base64GroupBytes = 3

	// Base64GroupSymbols is the number of 6-bit values per group
	Base64GroupSymbols = 4

	// Base64MaxPadding is the largest legal padding count
	Base64MaxPadding = 2
)

// Single-byte attack parameters
const (
	// KeySpaceSize is the number of single-byte keys brute-forced per attack
	KeySpaceSize = 256

	// PrintableThreshold: byte values strictly above it are printable
	PrintableThreshold = 31

	// ExtendedThreshold: byte values strictly above it are outside ASCII
	ExtendedThreshold = 127

	// MinLetterScore is the floor a winning letter score must exceed
	MinLetterScore = 1

	// WordHitDivisor sets the word-hit threshold to len(plaintext)/WordHitDivisor
	WordHitDivisor = 10
)

// Repeating-key attack parameters
const (
	// DefaultMinKeySize is the smallest key length tried by default
	DefaultMinKeySize = 2

	// DefaultMaxKeySize is the largest key length tried by default
	DefaultMaxKeySize = 40

	// KeySizeSampleBlocks is the number of key-size blocks compared when
	// estimating the key length
	KeySizeSampleBlocks = 4

	// DefaultKeySizeCandidates is how many key sizes are attempted in full
	DefaultKeySizeCandidates = 3

	// DefaultDetectWorkers bounds concurrent line scans
	DefaultDetectWorkers = 8

	// MaxLineSize caps one line of a hex ciphertext file in bytes
	MaxLineSize = 16 << 20
)

// Key derivation parameters
const (
	// MaxDerivedKeySize caps derived key length in bytes
	MaxDerivedKeySize = 1 << 20

	// DomainSeparatorRepeatingKey is used when deriving repeating XOR keys
	DomainSeparatorRepeatingKey = "XORBREAK-RepeatingKey-v1"

	// DigestSize is the size of the dictionary corpus digest in bytes
	DigestSize = 32
)

// Strategy identifies how single-byte candidates are ranked
type Strategy uint8

const (
	// StrategyLetterScore keeps the single best letter-frequency candidate
	StrategyLetterScore Strategy = 0x01

	// StrategyWordHits reports every candidate with enough dictionary hits
	StrategyWordHits Strategy = 0x02
)

// String returns a human-readable name for the strategy
func (s Strategy) String() string {
	switch s {
	case StrategyLetterScore:
		return "letter-score"
	case StrategyWordHits:
		return "word-hits"
	default:
		return "Unknown"
	}
}

// IsSupported returns true if the strategy is implemented
func (s Strategy) IsSupported() bool {
	return s == StrategyLetterScore || s == StrategyWordHits
}

// ParseStrategy maps a strategy name back to its identifier.
func ParseStrategy(name string) (Strategy, bool) {
	switch name {
	case "letter-score", "score":
		return StrategyLetterScore, true
	case "word-hits", "words":
		return StrategyWordHits, true
	default:
		return 0, false
	}
}

// XOF identifies an extendable-output function used for key derivation
type XOF uint8

const (
	// XOFShake256 is SHAKE-256 (FIPS 202)
	XOFShake256 XOF = 0x01

	// XOFBlake2XB is BLAKE2Xb
	XOFBlake2XB XOF = 0x02

	// XOFKangarooTwelve is KangarooTwelve (K12)
	XOFKangarooTwelve XOF = 0x03
)

// String returns a human-readable name for the XOF
func (x XOF) String() string {
	switch x {
	case XOFShake256:
		return "SHAKE-256"
	case XOFBlake2XB:
		return "BLAKE2Xb"
	case XOFKangarooTwelve:
		return "KangarooTwelve"
	default:
		return "Unknown"
	}
}

// IsSupported returns true if the XOF is available for key derivation
func (x XOF) IsSupported() bool {
	return x == XOFShake256 || x == XOFBlake2XB || x == XOFKangarooTwelve
}

// ParseXOF maps a command-line XOF name to its identifier.
func ParseXOF(name string) (XOF, bool) {
	switch strings.ToLower(name) {
	case "shake256", "shake-256":
		return XOFShake256, true
	case "blake2xb":
		return XOFBlake2XB, true
	case "k12", "kangarootwelve":
		return XOFKangarooTwelve, true
	default:
		return 0, false
	}
}
