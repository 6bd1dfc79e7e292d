// Package integration provides end-to-end tests that chain the codecs,
// key derivation and attacks the way the CLI does.
package integration

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/sara-star-quant/xorbreak/internal/constants"
	"github.com/sara-star-quant/xorbreak/pkg/attack"
	"github.com/sara-star-quant/xorbreak/pkg/base64"
	"github.com/sara-star-quant/xorbreak/pkg/dictionary"
	"github.com/sara-star-quant/xorbreak/pkg/hex"
	"github.com/sara-star-quant/xorbreak/pkg/kdf"
	"github.com/sara-star-quant/xorbreak/pkg/metrics"
	"github.com/sara-star-quant/xorbreak/pkg/selftest"
)

func loadPlaintext(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/plaintext.txt")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

// TestBase64RepeatingKeyPipeline encrypts the fixture, ships it as wrapped
// base64 text, then recovers key and plaintext from the text alone.
func TestBase64RepeatingKeyPipeline(t *testing.T) {
	plain := loadPlaintext(t)

	ct, err := hex.FromBytes(plain).RepeatingXor(hex.FromText("YELLOW SUBMARINE"))
	if err != nil {
		t.Fatalf("RepeatingXor: %v", err)
	}
	encoded := base64.Encode(ct.Bytes()).String()

	// Line-wrapped transport form
	var wire strings.Builder
	for i := 0; i < len(encoded); i += 60 {
		wire.WriteString(encoded[i:min(i+60, len(encoded))])
		wire.WriteByte('\n')
	}

	parsed, err := base64.Parse(strings.Join(strings.Fields(wire.String()), ""))
	if err != nil {
		t.Fatalf("base64.Parse: %v", err)
	}
	received := hex.FromBytes(parsed.Decode())
	if !received.Equal(ct) {
		t.Fatal("ciphertext changed in transit")
	}

	res, err := attack.SolveRepeatingKey(dictionary.Default(), received,
		constants.DefaultMinKeySize, constants.DefaultMaxKeySize)
	if err != nil {
		t.Fatalf("SolveRepeatingKey: %v", err)
	}
	if res.Key.Text() != "YELLOW SUBMARINE" {
		t.Errorf("Key = %q", res.Key.Text())
	}
	if res.Plaintext != string(plain) {
		t.Error("recovered plaintext differs from the fixture")
	}
}

// TestDerivedKeyIsRecoverable encrypts with short passphrase-derived keys
// from every XOF and recovers each key byte from its English column.
func TestDerivedKeyIsRecoverable(t *testing.T) {
	plain := loadPlaintext(t)

	for _, x := range []constants.XOF{constants.XOFShake256, constants.XOFBlake2XB, constants.XOFKangarooTwelve} {
		t.Run(x.String(), func(t *testing.T) {
			key, err := kdf.RepeatingKeyWith(x, "hunter2", 5)
			if err != nil {
				t.Fatalf("RepeatingKeyWith: %v", err)
			}
			ct, err := hex.FromBytes(plain).RepeatingXor(key)
			if err != nil {
				t.Fatalf("RepeatingXor: %v", err)
			}

			res, err := attack.BreakRepeatingKey(dictionary.Default(), ct, key.Len())
			if err != nil {
				t.Fatalf("BreakRepeatingKey: %v", err)
			}
			if !res.Key.Equal(key) {
				t.Errorf("Key = %s, want %s", res.Key, key)
			}
			if res.Plaintext != string(plain) {
				t.Error("recovered plaintext differs from the fixture")
			}
		})
	}
}

// TestDetectWithObservability runs line detection through a Breaker and
// checks the logs, spans and exported metrics it leaves behind.
func TestDetectWithObservability(t *testing.T) {
	var logs bytes.Buffer
	logger := metrics.NewLogger(metrics.WithOutput(&logs), metrics.WithLevel(metrics.LevelInfo), metrics.WithFormat(metrics.FormatJSON))
	tracer := metrics.NewSimpleTracer()
	collector := metrics.NewCollector(metrics.Labels{"suite": "integration"})

	b := attack.NewBreaker(dictionary.Default(),
		attack.WithLogger(logger),
		attack.WithTracer(tracer),
		attack.WithCollector(collector),
	)

	secret := "i go crazy when i hear a cymbal"
	lines := []hex.Sequence{
		hex.MustParse("f1e2d3c4b5a69788796a5b4c3d2e1f00112233445566778899aabbccddeeff"),
		hex.FromText(secret).XorSymbol(hex.NewSymbol('5')),
		hex.MustParse("00112233445566778899aabbccddeeff00112233445566778899aabbccddee"),
	}

	results, err := b.DetectLines(context.Background(), lines, 2)
	if err != nil {
		t.Fatalf("DetectLines: %v", err)
	}
	best, ok := attack.BestLine(results)
	if !ok || best.Index != 1 || best.Candidate.Plaintext != secret {
		t.Fatalf("best = %+v, %v", best, ok)
	}

	if !strings.Contains(logs.String(), `"msg":"single-byte XOR line detected"`) {
		t.Errorf("missing detection log: %s", logs.String())
	}
	if spans := tracer.Spans(); len(spans) != 1 || spans[0].Name != metrics.SpanAttackDetect {
		t.Errorf("spans = %+v", spans)
	}

	var prom bytes.Buffer
	metrics.NewPrometheusExporter(collector, "xorbreak").WriteMetrics(&prom)
	for _, want := range []string{
		`xorbreak_lines_scanned_total{suite="integration"} 3`,
		`xorbreak_keys_tried_total{suite="integration"} 768`,
		`xorbreak_keys_recovered_total{suite="integration"} 1`,
	} {
		if !strings.Contains(prom.String(), want) {
			t.Errorf("missing %q in:\n%s", want, prom.String())
		}
	}
}

// TestCustomDictionaryFromFile loads a word list from disk and uses it for
// both attack strategies.
func TestCustomDictionaryFromFile(t *testing.T) {
	path := t.TempDir() + "/words.txt"
	if err := os.WriteFile(path, []byte("cooking\nlike\na\npound\nof\nbacon\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	dict, err := dictionary.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(dict.Digest()) != 2*constants.DigestSize {
		t.Errorf("Digest length %d", len(dict.Digest()))
	}

	ct := hex.MustParse("1b37373331363f78151b7f2b783431333d78397828372d363c78373e783a393b3736")
	cands := attack.BreakSingleByteByWordHits(dict, ct)
	found := false
	for _, c := range cands {
		if c.Key.Byte() == 'X' {
			found = true
		}
	}
	if !found {
		t.Errorf("key X not among %+v", cands)
	}
}

func TestSelfTestPasses(t *testing.T) {
	if r := selftest.Run(); !r.Passed {
		t.Fatalf("self-tests failed: %v", r.Errors)
	}
}
