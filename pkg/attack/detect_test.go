package attack

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/sara-star-quant/xorbreak/pkg/dictionary"
	"github.com/sara-star-quant/xorbreak/pkg/hex"
)

// noiseLines returns n pseudo-random lines of the given length.
func noiseLines(n, length int) []hex.Sequence {
	rng := rand.New(rand.NewPCG(1, 2))
	lines := make([]hex.Sequence, n)
	for i := range lines {
		b := make([]byte, length)
		for j := range b {
			b[j] = byte(rng.UintN(256))
		}
		lines[i] = hex.FromBytes(b)
	}
	return lines
}

func TestDetectSingleByteXor(t *testing.T) {
	const secret = "now is the time for all good men to come to the aid of their country"
	lines := noiseLines(40, len(secret))
	lines[27] = encryptSingle(secret, 0x7f)

	for _, workers := range []int{0, 1, 3, 64} {
		results, err := DetectSingleByteXor(context.Background(), dictionary.Default(), lines, workers)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if len(results) != len(lines) {
			t.Fatalf("workers=%d: got %d results, want %d", workers, len(results), len(lines))
		}
		for i, r := range results {
			if r.Index != i {
				t.Errorf("workers=%d: results[%d].Index = %d", workers, i, r.Index)
			}
			if !r.Ciphertext.Equal(lines[i]) {
				t.Errorf("workers=%d: results[%d] holds the wrong ciphertext", workers, i)
			}
		}

		best, ok := BestLine(results)
		if !ok {
			t.Fatalf("workers=%d: no line detected", workers)
		}
		if best.Index != 27 || best.Candidate.Plaintext != secret || best.Candidate.Key.Byte() != 0x7f {
			t.Errorf("workers=%d: best = line %d key %s %q", workers, best.Index, best.Candidate.Key, best.Candidate.Plaintext)
		}
	}
}

func TestDetectSingleByteXorEmpty(t *testing.T) {
	results, err := DetectSingleByteXor(context.Background(), dictionary.Default(), nil, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
	if _, ok := BestLine(results); ok {
		t.Error("BestLine on no results should report false")
	}
}

func TestDetectSingleByteXorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DetectSingleByteXor(ctx, dictionary.Default(), noiseLines(5, 16), 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBestLine(t *testing.T) {
	results := []LineResult{
		{Index: 0, Found: false, Candidate: Candidate{Score: 9999}},
		{Index: 1, Found: true, Candidate: Candidate{Score: 10}},
		{Index: 2, Found: true, Candidate: Candidate{Score: 30}},
		{Index: 3, Found: true, Candidate: Candidate{Score: 30}},
	}

	best, ok := BestLine(results)
	if !ok {
		t.Fatal("expected a best line")
	}
	if best.Index != 2 {
		t.Errorf("best.Index = %d, want 2 (earliest of the tied lines)", best.Index)
	}
}
