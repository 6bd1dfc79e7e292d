package attack

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sara-star-quant/xorbreak/internal/constants"
	xerrors "github.com/sara-star-quant/xorbreak/internal/errors"
	"github.com/sara-star-quant/xorbreak/pkg/hex"
)

// LineResult is the outcome of the letter-score attack on one line.
type LineResult struct {
	Index      int          `json:"index"`
	Ciphertext hex.Sequence `json:"-"`
	Candidate  Candidate    `json:"candidate"`
	Found      bool         `json:"found"`
}

// DetectSingleByteXor runs BreakSingleByteByScore over every line using at
// most workers goroutines (constants.DefaultDetectWorkers when workers <= 0).
// Results are in input order. A cancelled context aborts the scan.
func DetectSingleByteXor(ctx context.Context, s Scorer, lines []hex.Sequence, workers int) ([]LineResult, error) {
	results, _, err := detect(ctx, s, lines, workers)
	return results, err
}

func detect(ctx context.Context, s Scorer, lines []hex.Sequence, workers int) ([]LineResult, searchStats, error) {
	if workers <= 0 {
		workers = constants.DefaultDetectWorkers
	}

	results := make([]LineResult, len(lines))
	var (
		mu    sync.Mutex
		total searchStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, line := range lines {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, ok, st := scoreSearch(s, line)
			results[i] = LineResult{Index: i, Ciphertext: line, Candidate: c, Found: ok}

			mu.Lock()
			total.add(st)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, total, xerrors.NewAttackError("detect", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, total, xerrors.NewAttackError("detect", err)
	}
	return results, total, nil
}

// BestLine returns the found result with the highest score. Ties go to the
// earlier line.
func BestLine(results []LineResult) (LineResult, bool) {
	var (
		best  LineResult
		found bool
	)
	for _, r := range results {
		if !r.Found {
			continue
		}
		if !found || r.Candidate.Score > best.Candidate.Score {
			best, found = r, true
		}
	}
	return best, found
}
