// Package attack recovers XOR keys from ciphertext by brute force and
// English-likeness scoring.
//
// Single-byte attacks try all 256 keys and keep only decodings made entirely
// of printable, non-extended characters. Two selection strategies exist:
// letter score (corpus letter frequencies, one best candidate) and word hits
// (every candidate with enough dictionary words). Repeating-key XOR is
// broken by estimating the key size with normalized Hamming distance and
// attacking each transposed column as single-byte XOR.
//
// The package-level functions are pure. Breaker wraps them with logging,
// tracing and metrics.
package attack

import (
	"github.com/sara-star-quant/xorbreak/internal/constants"
	"github.com/sara-star-quant/xorbreak/pkg/hex"
)

// Scorer rates how English-like a text is. *dictionary.Dictionary
// implements it.
type Scorer interface {
	LetterScore(text string) int
	WordHitCount(text string) int
}

// Candidate is one decoding of a ciphertext under a single-byte key.
type Candidate struct {
	Key       hex.Symbol `json:"key"`
	Plaintext string     `json:"plaintext"`
	Score     int        `json:"score"`
	Hits      int        `json:"hits"`
}

// searchStats counts the work done by a key search.
type searchStats struct {
	tried    uint64
	accepted uint64
	rejected uint64
}

func (s *searchStats) add(o searchStats) {
	s.tried += o.tried
	s.accepted += o.accepted
	s.rejected += o.rejected
}

// decodings calls fn for every key whose decoding is displayable, in
// ascending key order.
func decodings(ct hex.Sequence, fn func(key hex.Symbol, text string)) searchStats {
	var st searchStats
	for k := range constants.KeySpaceSize {
		key := hex.NewSymbol(byte(k))
		pt := ct.XorSymbol(key)
		st.tried++
		if !pt.IsDisplayable() {
			st.rejected++
			continue
		}
		st.accepted++
		fn(key, pt.Text())
	}
	return st
}

// BreakSingleByteByScore returns the displayable decoding with the highest
// letter score. On equal scores the later key wins. The boolean is false
// when no decoding scores above constants.MinLetterScore, including for
// empty ciphertext.
func BreakSingleByteByScore(s Scorer, ct hex.Sequence) (Candidate, bool) {
	c, ok, _ := scoreSearch(s, ct)
	return c, ok
}

func scoreSearch(s Scorer, ct hex.Sequence) (Candidate, bool, searchStats) {
	best := Candidate{Score: constants.MinLetterScore}
	st := decodings(ct, func(key hex.Symbol, text string) {
		if score := s.LetterScore(text); score >= best.Score {
			best = Candidate{Key: key, Plaintext: text, Score: score}
		}
	})
	if best.Score <= constants.MinLetterScore {
		return Candidate{}, false, st
	}
	best.Hits = s.WordHitCount(best.Plaintext)
	return best, true, st
}

// BreakSingleByteByWordHits returns every displayable decoding containing
// more than len(ct)/constants.WordHitDivisor dictionary words, in ascending
// key order. The result is empty, never nil, when nothing qualifies.
func BreakSingleByteByWordHits(s Scorer, ct hex.Sequence) []Candidate {
	out, _ := wordSearch(s, ct)
	return out
}

func wordSearch(s Scorer, ct hex.Sequence) ([]Candidate, searchStats) {
	threshold := ct.Len() / constants.WordHitDivisor
	out := []Candidate{}
	st := decodings(ct, func(key hex.Symbol, text string) {
		if hits := s.WordHitCount(text); hits > threshold {
			out = append(out, Candidate{
				Key:       key,
				Plaintext: text,
				Score:     s.LetterScore(text),
				Hits:      hits,
			})
		}
	})
	return out, st
}
