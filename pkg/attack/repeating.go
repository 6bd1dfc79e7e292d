package attack

import (
	"cmp"
	"slices"

	"github.com/sara-star-quant/xorbreak/internal/constants"
	xerrors "github.com/sara-star-quant/xorbreak/internal/errors"
	"github.com/sara-star-quant/xorbreak/pkg/hex"
)

// KeySizeGuess is a candidate repeating-key length and its average
// normalized Hamming distance. Lower distances are more likely.
type KeySizeGuess struct {
	Size     int     `json:"size"`
	Distance float64 `json:"distance"`
}

// RepeatingKeyResult is a recovered repeating XOR key and the decryption it
// produces. Incomplete is set when some column had no acceptable
// single-byte candidate; those key bytes are zero.
type RepeatingKeyResult struct {
	Key        hex.Sequence `json:"-"`
	KeySize    int          `json:"key_size"`
	Plaintext  string       `json:"plaintext"`
	Hits       int          `json:"hits"`
	Incomplete bool         `json:"incomplete"`
}

// GuessKeySizes ranks key sizes in [minSize, maxSize]. For each size k the
// ciphertext is cut into len/k blocks and the Hamming distances of
// consecutive blocks, divided by k, are averaged. Sizes yielding fewer than
// constants.KeySizeSampleBlocks blocks are skipped. Guesses are sorted by
// ascending distance, then size; top > 0 truncates the list.
func GuessKeySizes(ct hex.Sequence, minSize, maxSize, top int) ([]KeySizeGuess, error) {
	if minSize < 1 || maxSize < minSize {
		return nil, xerrors.NewAttackError("keysize", xerrors.ErrInvalidKeyRange)
	}

	var guesses []KeySizeGuess
	for k := minSize; k <= maxSize; k++ {
		blocks := ct.Len() / k
		if blocks < constants.KeySizeSampleBlocks {
			continue
		}

		var total float64
		for i := range blocks - 1 {
			a := ct.Slice(i*k, (i+1)*k)
			b := ct.Slice((i+1)*k, (i+2)*k)
			d, err := a.HammingDistance(b)
			if err != nil {
				return nil, xerrors.NewAttackError("keysize", err)
			}
			total += float64(d) / float64(k)
		}
		guesses = append(guesses, KeySizeGuess{Size: k, Distance: total / float64(blocks-1)})
	}

	if len(guesses) == 0 {
		return nil, xerrors.NewAttackError("keysize", xerrors.ErrCiphertextTooShort)
	}

	slices.SortFunc(guesses, func(a, b KeySizeGuess) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Size, b.Size)
	})
	if top > 0 && top < len(guesses) {
		guesses = guesses[:top]
	}
	return guesses, nil
}

// BreakRepeatingKey recovers a keySize-byte key by transposing ct into
// keySize columns and running the letter-score attack on each.
func BreakRepeatingKey(s Scorer, ct hex.Sequence, keySize int) (RepeatingKeyResult, error) {
	r, _, err := breakRepeating(s, ct, keySize)
	return r, err
}

func breakRepeating(s Scorer, ct hex.Sequence, keySize int) (RepeatingKeyResult, searchStats, error) {
	var st searchStats
	if keySize < 1 {
		return RepeatingKeyResult{}, st, xerrors.NewAttackError("transpose", xerrors.ErrInvalidKeyRange)
	}
	if ct.Len() < keySize {
		return RepeatingKeyResult{}, st, xerrors.NewAttackError("transpose", xerrors.ErrCiphertextTooShort)
	}

	key := make([]byte, keySize)
	incomplete := false
	for col, column := range transpose(ct, keySize) {
		c, ok, cst := scoreSearch(s, column)
		st.add(cst)
		if !ok {
			incomplete = true
			continue
		}
		key[col] = c.Key.Byte()
	}

	keySeq := hex.FromBytes(key)
	pt, err := ct.RepeatingXor(keySeq)
	if err != nil {
		return RepeatingKeyResult{}, st, xerrors.NewAttackError("decrypt", err)
	}
	text := pt.Text()
	return RepeatingKeyResult{
		Key:        keySeq,
		KeySize:    keySize,
		Plaintext:  text,
		Hits:       s.WordHitCount(text),
		Incomplete: incomplete,
	}, st, nil
}

// transpose splits ct into n columns; column i holds bytes i, i+n, i+2n...
func transpose(ct hex.Sequence, n int) []hex.Sequence {
	raw := ct.Bytes()
	cols := make([][]byte, n)
	for i, b := range raw {
		cols[i%n] = append(cols[i%n], b)
	}
	out := make([]hex.Sequence, n)
	for i, c := range cols {
		out[i] = hex.FromBytes(c)
	}
	return out
}

// SolveRepeatingKey breaks repeating-key XOR without a known key size. The
// best constants.DefaultKeySizeCandidates guesses are expanded to all of
// their divisors in [minSize, guess], since multiples of the true size score
// as well as the size itself. Every size is broken and the decryption with
// the most word hits wins, ties going to the smaller size. The winning key is
// reduced to its shortest repeating period.
//
// When minSize == maxSize the size is known and is broken directly, without
// guessing, so ciphertext shorter than constants.KeySizeSampleBlocks blocks
// is accepted.
func SolveRepeatingKey(s Scorer, ct hex.Sequence, minSize, maxSize int) (RepeatingKeyResult, error) {
	if minSize == maxSize {
		r, _, err := solveSizes(s, ct, []int{minSize})
		return r, err
	}
	guesses, err := GuessKeySizes(ct, minSize, maxSize, constants.DefaultKeySizeCandidates)
	if err != nil {
		return RepeatingKeyResult{}, err
	}
	r, _, err := solveSizes(s, ct, candidateSizes(guesses, minSize))
	return r, err
}

// candidateSizes returns the divisors >= minSize of every guessed size,
// ascending and deduplicated.
func candidateSizes(guesses []KeySizeGuess, minSize int) []int {
	var sizes []int
	for _, g := range guesses {
		for d := max(minSize, 1); d <= g.Size; d++ {
			if g.Size%d == 0 {
				sizes = append(sizes, d)
			}
		}
	}
	slices.Sort(sizes)
	return slices.Compact(sizes)
}

func solveSizes(s Scorer, ct hex.Sequence, sizes []int) (RepeatingKeyResult, searchStats, error) {
	var (
		best  RepeatingKeyResult
		found bool
		total searchStats
	)
	for _, size := range sizes {
		r, st, err := breakRepeating(s, ct, size)
		total.add(st)
		if err != nil {
			return RepeatingKeyResult{}, total, err
		}
		if !found || r.Hits > best.Hits {
			best, found = r, true
		}
	}
	if !found {
		return RepeatingKeyResult{}, total, xerrors.NewAttackError("solve", xerrors.ErrCiphertextTooShort)
	}

	best.Key = shortestPeriod(best.Key)
	best.KeySize = best.Key.Len()
	return best, total, nil
}

// shortestPeriod returns the shortest prefix p of key such that key is p
// repeated a whole number of times.
func shortestPeriod(key hex.Sequence) hex.Sequence {
	n := key.Len()
	for p := 1; p < n; p++ {
		if n%p != 0 {
			continue
		}
		periodic := true
		for i := p; i < n; i++ {
			if key.At(i) != key.At(i%p) {
				periodic = false
				break
			}
		}
		if periodic {
			return key.Slice(0, p)
		}
	}
	return key
}
