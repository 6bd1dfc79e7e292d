// Package selftest runs known-answer tests (KATs) over the codecs, the XOR
// primitives, the attacks and the key derivation function.
//
// The tests run at most once per process. The CLI runs them on demand with
// "xorbreak selftest"; library users can call Run before trusting results
// from a modified build.
package selftest

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/sara-star-quant/xorbreak/internal/constants"
	"github.com/sara-star-quant/xorbreak/pkg/attack"
	"github.com/sara-star-quant/xorbreak/pkg/base64"
	"github.com/sara-star-quant/xorbreak/pkg/dictionary"
	"github.com/sara-star-quant/xorbreak/pkg/hex"
	"github.com/sara-star-quant/xorbreak/pkg/kdf"
)

// KAT inputs and expected outputs
const (
	katHex    = "49276d206b696c6c696e6720796f757220627261696e206c696b65206120706f69736f6e6f7573206d757368726f6f6d"
	katBase64 = "SSdtIGtpbGxpbmcgeW91ciBicmFpbiBsaWtlIGEgcG9pc29ub3VzIG11c2hyb29t"

	katXorA   = "1c0111001f010100061a024b53535009181c"
	katXorB   = "686974207468652062756c6c277320657965"
	katXorOut = "746865206b696420646f6e277420706c6179"

	katHammingA = "this is a test"
	katHammingB = "wokka wokka!!!"
	katHamming  = 37

	katRepeatingPlain = "Burning 'em, if you ain't quick and nimble\nI go crazy when I hear a cymbal"
	katRepeatingKey   = "ICE"
	katRepeatingOut   = "0b3637272a2b2e63622c2e69692a23693a2a3c6324202d623d63343c2a26226324272765272a282b2f20430a652e2c652a3124333a653e2b2027630c692b20283165286326302e27282f"

	katAttackPlain = "attack at dawn"
	katAttackKey   = 0x42

	katWordsCipher = "1b37373331363f78151b7f2b783431333d78397828372d363c78373e783a393b3736"
	katWordsPlain  = "Cooking MC's like a pound of bacon"

	katKDFInput  = "correct horse battery staple"
	katKDFOutput = "acfd9904fe96c9e8eb4396e97e79b672"
)

// Result contains the results of the self-tests.
type Result struct {
	Passed       bool
	CodecPassed  bool
	XorPassed    bool
	AttackPassed bool
	KDFPassed    bool
	Errors       []string
}

var (
	result     *Result
	resultOnce sync.Once
)

// Run executes the self-tests and returns the results. Safe to call
// multiple times; the tests only run once.
func Run() *Result {
	resultOnce.Do(func() {
		result = run(dictionary.Default())
	})
	return result
}

// Ran reports whether Run has completed.
func Ran() bool {
	return result != nil
}

func run(s attack.Scorer) *Result {
	r := &Result{Passed: true}

	check := func(name string, passed *bool, err error) {
		*passed = err == nil
		if err != nil {
			r.Passed = false
			r.Errors = append(r.Errors, fmt.Sprintf("%s KAT failed: %v", name, err))
		}
	}

	check("codec", &r.CodecPassed, runCodecKAT())
	check("xor", &r.XorPassed, runXorKAT())
	check("attack", &r.AttackPassed, runAttackKAT(s))
	check("kdf", &r.KDFPassed, runKDFKAT())
	return r
}

func runCodecKAT() error {
	seq, err := hex.Parse(katHex)
	if err != nil {
		return fmt.Errorf("hex parse: %w", err)
	}
	if got := base64.Encode(seq.Bytes()).String(); got != katBase64 {
		return fmt.Errorf("base64 encode: got %s, want %s", got, katBase64)
	}

	b64, err := base64.Parse(katBase64)
	if err != nil {
		return fmt.Errorf("base64 parse: %w", err)
	}
	if !bytes.Equal(b64.Decode(), seq.Bytes()) {
		return fmt.Errorf("base64 decode mismatch")
	}

	for in, want := range map[string]string{"a": "YQ==", "ab": "YWI=", "abc": "YWJj"} {
		enc := base64.Encode([]byte(in))
		if enc.String() != want {
			return fmt.Errorf("base64 padding: Encode(%q) = %s, want %s", in, enc, want)
		}
		if string(enc.Decode()) != in {
			return fmt.Errorf("base64 padding: round trip of %q failed", in)
		}
	}
	return nil
}

func runXorKAT() error {
	out, err := hex.MustParse(katXorA).Xor(hex.MustParse(katXorB))
	if err != nil {
		return fmt.Errorf("fixed xor: %w", err)
	}
	if out.String() != katXorOut {
		return fmt.Errorf("fixed xor: got %s, want %s", out, katXorOut)
	}

	d, err := hex.FromText(katHammingA).HammingDistance(hex.FromText(katHammingB))
	if err != nil {
		return fmt.Errorf("hamming: %w", err)
	}
	if d != katHamming {
		return fmt.Errorf("hamming: got %d, want %d", d, katHamming)
	}

	ct, err := hex.FromText(katRepeatingPlain).RepeatingXor(hex.FromText(katRepeatingKey))
	if err != nil {
		return fmt.Errorf("repeating xor: %w", err)
	}
	if ct.String() != katRepeatingOut {
		return fmt.Errorf("repeating xor: got %s, want %s", ct, katRepeatingOut)
	}
	return nil
}

func runAttackKAT(s attack.Scorer) error {
	ct := hex.FromText(katAttackPlain).XorSymbol(hex.NewSymbol(katAttackKey))
	c, ok := attack.BreakSingleByteByScore(s, ct)
	if !ok || c.Key.Byte() != katAttackKey || c.Plaintext != katAttackPlain {
		return fmt.Errorf("%s: got key %s plaintext %q", constants.StrategyLetterScore, c.Key, c.Plaintext)
	}

	words := attack.BreakSingleByteByWordHits(s, hex.MustParse(katWordsCipher))
	if len(words) != 1 || words[0].Plaintext != katWordsPlain {
		return fmt.Errorf("%s: got %d candidates", constants.StrategyWordHits, len(words))
	}
	return nil
}

func runKDFKAT() error {
	key, err := kdf.RepeatingKey(katKDFInput, 16)
	if err != nil {
		return fmt.Errorf("RepeatingKey failed: %w", err)
	}
	if key.String() != katKDFOutput {
		return fmt.Errorf("KDF output mismatch: got %s, want %s", key, katKDFOutput)
	}
	return nil
}
