// Package benchmark provides performance benchmarks for the xorbreak codecs
// and attacks.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./test/benchmark/
//
// For profiling:
//
//	go test -bench=. -cpuprofile=cpu.prof -memprofile=mem.prof ./test/benchmark/
package benchmark

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/sara-star-quant/xorbreak/internal/constants"
	"github.com/sara-star-quant/xorbreak/pkg/attack"
	"github.com/sara-star-quant/xorbreak/pkg/base64"
	"github.com/sara-star-quant/xorbreak/pkg/dictionary"
	"github.com/sara-star-quant/xorbreak/pkg/hex"
	"github.com/sara-star-quant/xorbreak/pkg/kdf"
	"github.com/sara-star-quant/xorbreak/pkg/metrics"
)

func loadCiphertext(b *testing.B, key string) hex.Sequence {
	b.Helper()
	data, err := os.ReadFile("../integration/testdata/plaintext.txt")
	if err != nil {
		b.Fatal(err)
	}
	ct, err := hex.FromBytes(data).RepeatingXor(hex.FromText(key))
	if err != nil {
		b.Fatal(err)
	}
	return ct
}

// --- Codec Benchmarks ---

func BenchmarkHexParse(b *testing.B) {
	for _, size := range []int{16, 1024, 64 * 1024} {
		text := hex.FromBytes(make([]byte, size)).String()
		b.Run(fmt.Sprintf("%dB", size), func(b *testing.B) {
			b.SetBytes(int64(size))
			for b.Loop() {
				if _, err := hex.Parse(text); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkBase64Encode(b *testing.B) {
	data := make([]byte, 4096)
	b.SetBytes(int64(len(data)))
	for b.Loop() {
		_ = base64.Encode(data).String()
	}
}

func BenchmarkBase64ParseDecode(b *testing.B) {
	text := base64.Encode(make([]byte, 4096)).String()
	b.SetBytes(4096)
	for b.Loop() {
		seq, err := base64.Parse(text)
		if err != nil {
			b.Fatal(err)
		}
		_ = seq.Decode()
	}
}

// --- XOR Benchmarks ---

func BenchmarkRepeatingXor(b *testing.B) {
	pt := hex.FromBytes(make([]byte, 4096))
	key := hex.FromText("YELLOW SUBMARINE")
	b.SetBytes(4096)
	for b.Loop() {
		if _, err := pt.RepeatingXor(key); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHammingDistance(b *testing.B) {
	x := hex.FromBytes(make([]byte, 1024))
	y := x.XorSymbol(hex.NewSymbol(0x5a))
	b.SetBytes(1024)
	for b.Loop() {
		if _, err := x.HammingDistance(y); err != nil {
			b.Fatal(err)
		}
	}
}

// --- Attack Benchmarks ---

func BenchmarkBreakSingleByteByScore(b *testing.B) {
	dict := dictionary.Default()
	ct := hex.FromText("now is the time for all good men to come to the aid of their country").
		XorSymbol(hex.NewSymbol(0x7f))
	for b.Loop() {
		if _, ok := attack.BreakSingleByteByScore(dict, ct); !ok {
			b.Fatal("no candidate")
		}
	}
}

func BenchmarkBreakSingleByteByWordHits(b *testing.B) {
	dict := dictionary.Default()
	ct := hex.MustParse("1b37373331363f78151b7f2b783431333d78397828372d363c78373e783a393b3736")
	for b.Loop() {
		_ = attack.BreakSingleByteByWordHits(dict, ct)
	}
}

func BenchmarkDetectSingleByteXor(b *testing.B) {
	dict := dictionary.Default()
	lines := make([]hex.Sequence, 256)
	for i := range lines {
		lines[i] = hex.FromText(fmt.Sprintf("line %03d of the haystack", i)).XorSymbol(hex.NewSymbol(byte(i)))
	}

	for _, workers := range []int{1, constants.DefaultDetectWorkers} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			for b.Loop() {
				if _, err := attack.DetectSingleByteXor(context.Background(), dict, lines, workers); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkGuessKeySizes(b *testing.B) {
	ct := loadCiphertext(b, "ICE")
	for b.Loop() {
		if _, err := attack.GuessKeySizes(ct, constants.DefaultMinKeySize, constants.DefaultMaxKeySize, 0); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSolveRepeatingKey(b *testing.B) {
	dict := dictionary.Default()
	ct := loadCiphertext(b, "Terminator X")
	for b.Loop() {
		if _, err := attack.SolveRepeatingKey(dict, ct, constants.DefaultMinKeySize, constants.DefaultMaxKeySize); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBreakerOverhead(b *testing.B) {
	dict := dictionary.Default()
	ct := hex.FromText("attack at dawn").XorSymbol(hex.NewSymbol(0x42))
	br := attack.NewBreaker(dict,
		attack.WithTracer(metrics.NoOpTracer{}),
		attack.WithCollector(metrics.NewCollector(nil)),
	)
	ctx := context.Background()
	for b.Loop() {
		if _, _, err := br.ByScore(ctx, ct); err != nil {
			b.Fatal(err)
		}
	}
}

// --- Dictionary and KDF Benchmarks ---

func BenchmarkLetterScore(b *testing.B) {
	dict := dictionary.Default()
	text := "the quick brown fox jumps over the lazy dog"
	for b.Loop() {
		_ = dict.LetterScore(text)
	}
}

func BenchmarkKDFRepeatingKey(b *testing.B) {
	for _, x := range []constants.XOF{constants.XOFShake256, constants.XOFBlake2XB, constants.XOFKangarooTwelve} {
		b.Run(x.String(), func(b *testing.B) {
			for b.Loop() {
				if _, err := kdf.RepeatingKeyWith(x, "correct horse battery staple", 32); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
