package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sara-star-quant/xorbreak/internal/constants"
	"github.com/sara-star-quant/xorbreak/pkg/base64"
	"github.com/sara-star-quant/xorbreak/pkg/hex"
	"github.com/sara-star-quant/xorbreak/pkg/kdf"
)

func hex2b64Command(e *env, args []string) error {
	fs := newFlagSet(e, "hex2b64", "Convert a hex string to base64.")
	in := fs.String("in", "", "Hex input (default: stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	text, err := inputOrStdin(e, *in)
	if err != nil {
		return err
	}
	seq, err := hex.Parse(text)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, base64.Encode(seq.Bytes()))
	return nil
}

func b64Command(e *env, args []string) error {
	fs := newFlagSet(e, "b64", "Encode text to base64 or decode base64 to text.")
	encode := fs.String("encode", "", "Text to encode")
	decode := fs.String("decode", "", "Base64 to decode")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *encode != "" && *decode != "":
		return errors.New("use only one of -encode and -decode")
	case *encode != "":
		fmt.Fprintln(e.stdout, base64.Encode([]byte(*encode)))
	case *decode != "":
		seq, err := base64.Parse(*decode)
		if err != nil {
			return err
		}
		fmt.Fprintln(e.stdout, string(seq.Decode()))
	default:
		fs.Usage()
		return errors.New("one of -encode or -decode is required")
	}
	return nil
}

func xorCommand(e *env, args []string) error {
	fs := newFlagSet(e, "xor", "XOR two equal-length hex buffers.")
	a := fs.String("a", "", "First hex buffer")
	b := fs.String("b", "", "Second hex buffer")
	if err := fs.Parse(args); err != nil {
		return err
	}

	left, err := hex.Parse(*a)
	if err != nil {
		return err
	}
	right, err := hex.Parse(*b)
	if err != nil {
		return err
	}
	out, err := left.Xor(right)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, out)
	return nil
}

func repeatCommand(e *env, args []string) error {
	fs := newFlagSet(e, "repeat", "Encrypt text with repeating-key XOR and print hex.")
	key := fs.String("key", "", "Key text")
	passphrase := fs.String("passphrase", "", "Derive the key from this passphrase instead of -key")
	random := fs.Bool("random", false, "Use a random key of -keylen bytes")
	keyLen := fs.Int("keylen", 16, "Key length in bytes (with -passphrase or -random)")
	xofName := fs.String("xof", "shake256", "Derivation XOF: shake256, blake2xb, k12")
	text := fs.String("text", "", "Plaintext (default: stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sources := 0
	for _, set := range []bool{*key != "", *passphrase != "", *random} {
		if set {
			sources++
		}
	}

	var keySeq hex.Sequence
	switch {
	case sources > 1:
		return errors.New("use only one of -key, -passphrase and -random")
	case *key != "":
		keySeq = hex.FromText(*key)
	case *passphrase != "":
		x, ok := constants.ParseXOF(*xofName)
		if !ok {
			return fmt.Errorf("unknown xof: %s (use shake256, blake2xb, or k12)", *xofName)
		}
		derived, err := kdf.RepeatingKeyWith(x, *passphrase, *keyLen)
		if err != nil {
			return err
		}
		keySeq = derived
		fmt.Fprintf(e.stderr, "derived key (%s): %s\n", x, keySeq)
	case *random:
		generated, err := kdf.RandomKey(*keyLen)
		if err != nil {
			return err
		}
		keySeq = generated
		fmt.Fprintf(e.stderr, "random key: %s\n", keySeq)
	default:
		fs.Usage()
		return errors.New("one of -key, -passphrase or -random is required")
	}

	plain := *text
	if plain == "" {
		data, err := io.ReadAll(e.stdin)
		if err != nil {
			return err
		}
		plain = string(data)
	}

	ct, err := hex.FromText(plain).RepeatingXor(keySeq)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, ct)
	return nil
}

// inputOrStdin returns flagValue, or stdin with surrounding whitespace
// trimmed when the flag is empty.
func inputOrStdin(e *env, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	data, err := io.ReadAll(e.stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
