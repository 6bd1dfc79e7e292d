// Package errors defines custom error types for the xorbreak codec and
// cryptanalysis packages. Malformed input is always reported through these
// errors; no operation in the module panics on caller-supplied data.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for codec operations
var (
	// ErrInvalidFormat indicates malformed hex or base64 text
	ErrInvalidFormat = errors.New("codec: invalid format")

	// ErrLengthMismatch indicates two sequences of differing length were combined
	ErrLengthMismatch = errors.New("codec: length mismatch")

	// ErrEmptyKey indicates a repeating-key operation was given an empty key
	ErrEmptyKey = errors.New("codec: empty key")
)

// Sentinel errors for key derivation
var (
	// ErrInvalidKeySize indicates a requested key length is out of range
	ErrInvalidKeySize = errors.New("kdf: invalid key size")

	// ErrUnsupportedXOF indicates an unknown extendable-output function
	ErrUnsupportedXOF = errors.New("kdf: unsupported xof")
)

// Sentinel errors for dictionary operations
var (
	// ErrDictionaryLoad indicates the word list could not be read
	ErrDictionaryLoad = errors.New("dictionary: load failed")

	// ErrEmptyDictionary indicates the word list contained no words
	ErrEmptyDictionary = errors.New("dictionary: no words")
)

// Sentinel errors for attack operations
var (
	// ErrCiphertextTooShort indicates there is not enough ciphertext to analyse
	ErrCiphertextTooShort = errors.New("attack: ciphertext too short")

	// ErrInvalidKeyRange indicates an unusable key-size search range
	ErrInvalidKeyRange = errors.New("attack: invalid key size range")
)

// CodecError wraps a codec error with the operation that produced it
type CodecError struct {
	Op  string // Operation that failed (e.g. "hex.Parse")
	Err error  // Underlying error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// NewCodecError creates a new CodecError
func NewCodecError(op string, err error) *CodecError {
	return &CodecError{Op: op, Err: err}
}

// AttackError wraps an attack error with additional context
type AttackError struct {
	Phase string // Attack phase (e.g. "keysize", "transpose")
	Err   error  // Underlying error
}

func (e *AttackError) Error() string {
	return fmt.Sprintf("attack %s: %v", e.Phase, e.Err)
}

func (e *AttackError) Unwrap() error {
	return e.Err
}

// NewAttackError creates a new AttackError
func NewAttackError(phase string, err error) *AttackError {
	return &AttackError{Phase: phase, Err: err}
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
