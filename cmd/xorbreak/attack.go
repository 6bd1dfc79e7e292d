package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sara-star-quant/xorbreak/internal/constants"
	"github.com/sara-star-quant/xorbreak/pkg/attack"
	"github.com/sara-star-quant/xorbreak/pkg/base64"
	"github.com/sara-star-quant/xorbreak/pkg/hex"
	"github.com/sara-star-quant/xorbreak/pkg/metrics"
)

// attackRun holds the state every attack command needs.
type attackRun struct {
	obs     *observability
	breaker *attack.Breaker
}

func startAttack(e *env, name string, common *commonFlags) (*attackRun, error) {
	obs, err := setupObservability(e, common, name)
	if err != nil {
		return nil, err
	}
	dict, err := loadDictionary(common, obs.logger)
	if err != nil {
		return nil, err
	}
	b := attack.NewBreaker(dict,
		attack.WithLogger(obs.logger),
		attack.WithTracer(obs.tracer),
		attack.WithCollector(obs.collector),
	)
	return &attackRun{obs: obs, breaker: b}, nil
}

func parseHexInput(r *attackRun, e *env, in string) (hex.Sequence, error) {
	text, err := inputOrStdin(e, in)
	if err != nil {
		return hex.Sequence{}, err
	}
	seq, err := hex.Parse(text)
	if err != nil {
		r.obs.collector.RecordCodecError()
		return hex.Sequence{}, err
	}
	return seq, nil
}

func scoreCommand(e *env, args []string) error {
	fs := newFlagSet(e, "score", "Break single-byte XOR, keeping the best letter-score candidate.")
	in := fs.String("in", "", "Hex ciphertext (default: stdin)")
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := startAttack(e, "score", common)
	if err != nil {
		return err
	}
	defer r.obs.finish(e, common)

	ct, err := parseHexInput(r, e, *in)
	if err != nil {
		return err
	}
	c, ok, err := r.breaker.ByScore(context.Background(), ct)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(e.stdout, "no candidate found")
		return nil
	}
	printCandidate(e, c)
	return nil
}

func wordsCommand(e *env, args []string) error {
	fs := newFlagSet(e, "words", "Break single-byte XOR, listing every candidate with enough dictionary words.")
	in := fs.String("in", "", "Hex ciphertext (default: stdin)")
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := startAttack(e, "words", common)
	if err != nil {
		return err
	}
	defer r.obs.finish(e, common)

	ct, err := parseHexInput(r, e, *in)
	if err != nil {
		return err
	}
	cands, err := r.breaker.ByWordHits(context.Background(), ct)
	if err != nil {
		return err
	}
	if len(cands) == 0 {
		fmt.Fprintln(e.stdout, "no candidate found")
		return nil
	}
	for _, c := range cands {
		printCandidate(e, c)
	}
	return nil
}

func detectCommand(e *env, args []string) error {
	fs := newFlagSet(e, "detect", "Find the line of a hex file that was encrypted with single-byte XOR.")
	file := fs.String("file", "", "File with one hex ciphertext per line (required)")
	workers := fs.Int("workers", constants.DefaultDetectWorkers, "Concurrent line scans")
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		fs.Usage()
		return fmt.Errorf("-file is required")
	}

	r, err := startAttack(e, "detect", common)
	if err != nil {
		return err
	}
	defer r.obs.finish(e, common)

	lines, lineNos, err := readHexLines(r, *file)
	if err != nil {
		return err
	}
	results, err := r.breaker.DetectLines(context.Background(), lines, *workers)
	if err != nil {
		return err
	}

	best, ok := attack.BestLine(results)
	if !ok {
		fmt.Fprintln(e.stdout, "no candidate found")
		return nil
	}
	fmt.Fprintf(e.stdout, "line: %d\n", lineNos[best.Index])
	printCandidate(e, best.Candidate)
	return nil
}

func breakCommand(e *env, args []string) error {
	fs := newFlagSet(e, "break", "Break repeating-key XOR in a base64 file.")
	file := fs.String("file", "", "Base64 ciphertext file (required)")
	minSize := fs.Int("min", constants.DefaultMinKeySize, "Smallest key size to try")
	maxSize := fs.Int("max", constants.DefaultMaxKeySize, "Largest key size to try")
	keySize := fs.Int("keysize", 0, "Known key size (overrides -min and -max)")
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		fs.Usage()
		return fmt.Errorf("-file is required")
	}

	r, err := startAttack(e, "break", common)
	if err != nil {
		return err
	}
	defer r.obs.finish(e, common)

	raw, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	seq, err := base64.Parse(strings.Join(strings.Fields(string(raw)), ""))
	if err != nil {
		r.obs.collector.RecordCodecError()
		return err
	}
	ct := hex.FromBytes(seq.Decode())

	if *keySize > 0 {
		*minSize, *maxSize = *keySize, *keySize
	}
	res, err := r.breaker.RepeatingKey(context.Background(), ct, *minSize, *maxSize)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.stdout, "key size: %d\n", res.KeySize)
	fmt.Fprintf(e.stdout, "key: %q (%s)\n", res.Key.Text(), res.Key)
	if res.Incomplete {
		fmt.Fprintln(e.stdout, "warning: some key bytes could not be recovered")
	}
	fmt.Fprintf(e.stdout, "word hits: %d\n\n%s\n", res.Hits, res.Plaintext)
	return nil
}

// readHexLines parses one hex sequence per non-empty line and returns the
// 1-based file line number of each.
func readHexLines(r *attackRun, path string) ([]hex.Sequence, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	var (
		lines   []hex.Sequence
		lineNos []int
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), constants.MaxLineSize)
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		seq, err := hex.Parse(text)
		if err != nil {
			r.obs.collector.RecordCodecError()
			return nil, nil, fmt.Errorf("%s:%d: %w", path, n, err)
		}
		lines = append(lines, seq)
		lineNos = append(lineNos, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	r.obs.logger.Debug("ciphertext lines read", metrics.Fields{"path": path, "lines": len(lines)})
	return lines, lineNos, nil
}

func printCandidate(e *env, c attack.Candidate) {
	fmt.Fprintf(e.stdout, "key: %s (%q)\n", c.Key, rune(c.Key.Byte()))
	fmt.Fprintf(e.stdout, "score: %d\nword hits: %d\nplaintext: %s\n", c.Score, c.Hits, c.Plaintext)
}
