// Package xorbreak provides hex and base64 codecs, XOR primitives and
// attacks that recover single-byte and repeating XOR keys from ciphertext.
//
// # Quick Start
//
// Recover a single-byte key with the built-in English word list:
//
//	import (
//		"github.com/sara-star-quant/xorbreak/pkg/attack"
//		"github.com/sara-star-quant/xorbreak/pkg/dictionary"
//		"github.com/sara-star-quant/xorbreak/pkg/hex"
//	)
//
//	ct, _ := hex.Parse("1b37373331363f78151b7f2b783431333d78397828372d363c78373e783a393b3736")
//	for _, c := range attack.BreakSingleByteByWordHits(dictionary.Default(), ct) {
//		fmt.Println(c.Key, c.Plaintext)
//	}
//
// Break repeating-key XOR without knowing the key size:
//
//	res, err := attack.SolveRepeatingKey(dictionary.Default(), ct, 2, 40)
//
// Attach logging, tracing and metrics with a Breaker:
//
//	b := attack.NewBreaker(dictionary.Default(),
//		attack.WithLogger(metrics.NewLogger(metrics.WithLevel(metrics.LevelDebug))),
//		attack.WithTracer(metrics.NewSimpleTracer()),
//	)
//	res, err := b.RepeatingKey(ctx, ct, 2, 40)
//
// # Package Structure
//
//   - pkg/hex: byte symbols and hex sequences, XOR, Hamming distance
//   - pkg/base64: base64 as explicit 6-bit values with padding sentinels
//   - pkg/dictionary: word corpus, letter frequencies, word hits
//   - pkg/attack: single-byte and repeating-key XOR attacks
//   - pkg/kdf: passphrase to repeating-key derivation (SHAKE-256, BLAKE2Xb, K12)
//   - pkg/selftest: known-answer tests
//   - pkg/metrics: logging, tracing, attack metrics, Prometheus export
//   - internal/constants: alphabets, thresholds and defaults
//   - internal/errors: sentinel errors and typed wrappers
//
// # Testing
//
//	go test ./...                                  # All tests
//	go test -fuzz=FuzzHexParse ./test/fuzz/        # Fuzz tests
//	go test -bench=. ./test/benchmark              # Benchmarks
//	go test -tags otel ./pkg/metrics               # OpenTelemetry tracer
package xorbreak
