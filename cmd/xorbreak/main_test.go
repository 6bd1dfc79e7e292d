package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sara-star-quant/xorbreak/pkg/base64"
	"github.com/sara-star-quant/xorbreak/pkg/hex"
)

func runCLI(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	e := &env{stdin: strings.NewReader(stdin), stdout: &out, stderr: &errOut}
	code = run(e, args)
	return code, out.String(), errOut.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestUsage(t *testing.T) {
	code, _, stderr := runCLI(t, "")
	if code != 1 || !strings.Contains(stderr, "USAGE:") {
		t.Errorf("no args: code %d, stderr %q", code, stderr)
	}

	code, stdout, _ := runCLI(t, "", "help")
	if code != 0 || !strings.Contains(stdout, "detect") {
		t.Errorf("help: code %d, stdout %q", code, stdout)
	}

	code, _, stderr = runCLI(t, "", "frobnicate")
	if code != 1 || !strings.Contains(stderr, "Unknown command: frobnicate") {
		t.Errorf("unknown: code %d, stderr %q", code, stderr)
	}
}

func TestCodecCommands(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			"hex2b64",
			"",
			[]string{"hex2b64", "-in", "49276d206b696c6c696e6720796f757220627261696e206c696b65206120706f69736f6e6f7573206d757368726f6f6d"},
			"SSdtIGtpbGxpbmcgeW91ciBicmFpbiBsaWtlIGEgcG9pc29ub3VzIG11c2hyb29t\n",
		},
		{"hex2b64 stdin", "616263\n", []string{"hex2b64"}, "YWJj\n"},
		{"b64 encode", "", []string{"b64", "-encode", "ab"}, "YWI=\n"},
		{"b64 decode", "", []string{"b64", "-decode", "YQ=="}, "a\n"},
		{
			"xor",
			"",
			[]string{"xor", "-a", "1c0111001f010100061a024b53535009181c", "-b", "686974207468652062756c6c277320657965"},
			"746865206b696420646f6e277420706c6179\n",
		},
		{"repeat", "", []string{"repeat", "-key", "abc", "-text", "hello"}, "09070f0d0d\n"},
		{"repeat stdin", "hell", []string{"repeat", "-key", "abc"}, "09070f0d\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.stdin, tt.args...)
			if code != 0 {
				t.Fatalf("exit code %d, stderr %q", code, stderr)
			}
			if stdout != tt.want {
				t.Errorf("stdout = %q, want %q", stdout, tt.want)
			}
		})
	}
}

func TestCodecCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad hex", []string{"hex2b64", "-in", "abc"}},
		{"bad base64", []string{"b64", "-decode", "a==="}},
		{"b64 no mode", []string{"b64"}},
		{"xor mismatch", []string{"xor", "-a", "00", "-b", "0000"}},
		{"repeat no key", []string{"repeat", "-text", "x"}},
		{"repeat both", []string{"repeat", "-key", "k", "-passphrase", "p", "-text", "x"}},
		{"repeat random and key", []string{"repeat", "-random", "-key", "k", "-text", "x"}},
		{"repeat random bad len", []string{"repeat", "-random", "-keylen", "0", "-text", "x"}},
		{"repeat bad xof", []string{"repeat", "-passphrase", "p", "-xof", "md5", "-text", "x"}},
		{"bad flag", []string{"xor", "-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := runCLI(t, "", tt.args...); code != 1 {
				t.Errorf("exit code %d, want 1", code)
			}
		})
	}
}

func TestRepeatPassphrase(t *testing.T) {
	code, stdout, stderr := runCLI(t, "", "repeat", "-passphrase", "correct horse battery staple", "-keylen", "16", "-text", strings.Repeat("\x00", 16))
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr)
	}
	// XOR with zeros exposes the derived key.
	if stdout != "acfd9904fe96c9e8eb4396e97e79b672\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "derived key (SHAKE-256)") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRepeatRandom(t *testing.T) {
	code, stdout, stderr := runCLI(t, "", "repeat", "-random", "-keylen", "8", "-text", "plaintext")
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr)
	}
	if len(strings.TrimSpace(stdout)) != 18 {
		t.Errorf("stdout = %q, want 9 hex bytes", stdout)
	}
	if !strings.HasPrefix(stderr, "random key: ") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestScoreAndWordsCommands(t *testing.T) {
	// "attack at dawn" ^ 0x42
	code, stdout, _ := runCLI(t, "", "score", "-in", "233636232129622336622623352c")
	if code != 0 || !strings.Contains(stdout, "plaintext: attack at dawn") || !strings.Contains(stdout, "key: 42") {
		t.Errorf("score: code %d, stdout %q", code, stdout)
	}

	code, stdout, _ = runCLI(t, "", "words", "-in", "1b37373331363f78151b7f2b783431333d78397828372d363c78373e783a393b3736")
	if code != 0 || !strings.Contains(stdout, "Cooking MC's like a pound of bacon") {
		t.Errorf("words: code %d, stdout %q", code, stdout)
	}

	code, stdout, _ = runCLI(t, "", "score", "-in", "")
	if code != 0 || !strings.Contains(stdout, "no candidate found") {
		t.Errorf("empty score: code %d, stdout %q", code, stdout)
	}
}

func TestScoreMetricsOutput(t *testing.T) {
	code, stdout, _ := runCLI(t, "", "score", "-in", "233636232129622336622623352c", "-metrics")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(stdout, `xorbreak_keys_tried_total{command="score",service="xorbreak"} 256`) {
		t.Errorf("missing metrics in %q", stdout)
	}
}

func TestCommonFlagErrors(t *testing.T) {
	tests := [][]string{
		{"score", "-in", "00", "-log-level", "loud"},
		{"score", "-in", "00", "-log-format", "xml"},
		{"score", "-in", "00", "-tracing", "zipkin"},
		{"score", "-in", "00", "-dict", "/nonexistent/words.txt"},
	}
	for _, args := range tests {
		if code, _, _ := runCLI(t, "", args...); code != 1 {
			t.Errorf("%v: exit code %d, want 1", args, code)
		}
	}
}

func TestCustomDictionary(t *testing.T) {
	dict := writeFile(t, "words.txt", "attack\nat\ndawn\n")
	code, stdout, stderr := runCLI(t, "", "words", "-in", "233636232129622336622623352c", "-dict", dict, "-log-level", "info")
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr)
	}
	if !strings.Contains(stdout, "plaintext: attack at dawn") {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "dictionary loaded") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestDetectCommand(t *testing.T) {
	lines := []string{
		"0e3d0dc4d5a0e0f2c7c8f3b1a9e4d6c2b8f7a1c3",
		"",
		"233636232129622336622623352c",
		"9f8e7d6c5b4a39281706f5e4d3c2b1a0",
	}
	path := writeFile(t, "lines.txt", strings.Join(lines, "\n"))

	code, stdout, stderr := runCLI(t, "", "detect", "-file", path, "-workers", "2")
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr)
	}
	if !strings.Contains(stdout, "line: 3") || !strings.Contains(stdout, "attack at dawn") {
		t.Errorf("stdout = %q", stdout)
	}

	bad := writeFile(t, "bad.txt", "00\nzz\n")
	code, _, stderr = runCLI(t, "", "detect", "-file", bad)
	if code != 1 || !strings.Contains(stderr, "bad.txt:2") {
		t.Errorf("bad file: code %d, stderr %q", code, stderr)
	}

	if code, _, _ := runCLI(t, "", "detect"); code != 1 {
		t.Error("missing -file should fail")
	}
}

func TestDetectCommandLongLine(t *testing.T) {
	// 0x00 and 0x80 alternate, so no key makes this line displayable.
	long := hex.FromBytes(bytes.Repeat([]byte{0x00, 0x80}, 40*1024)).String()
	path := writeFile(t, "long.txt", long+"\n233636232129622336622623352c\n")

	code, stdout, stderr := runCLI(t, "", "detect", "-file", path)
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr)
	}
	if !strings.Contains(stdout, "line: 2") || !strings.Contains(stdout, "attack at dawn") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestBreakCommandKnownSizeShortInput(t *testing.T) {
	ct, err := hex.FromText("attack at dawn on the hill").RepeatingXor(hex.FromText("abcdefgh"))
	if err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "short.b64", base64.Encode(ct.Bytes()).String())

	if code, _, _ := runCLI(t, "", "break", "-file", path, "-min", "8", "-max", "9"); code != 1 {
		t.Errorf("size search on 26 bytes: exit code %d, want 1", code)
	}
	code, stdout, stderr := runCLI(t, "", "break", "-file", path, "-keysize", "8")
	if code != 0 {
		t.Fatalf("-keysize 8: exit code %d, stderr %q", code, stderr)
	}
	if !strings.Contains(stdout, "key size: ") || !strings.Contains(stdout, "word hits: ") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestSelftestAndVersion(t *testing.T) {
	code, stdout, stderr := runCLI(t, "", "selftest")
	if code != 0 {
		t.Fatalf("selftest: exit code %d, stderr %q", code, stderr)
	}
	if strings.Count(stdout, "PASS") != 4 {
		t.Errorf("selftest stdout = %q", stdout)
	}

	code, stdout, _ = runCLI(t, "", "version")
	if code != 0 || !strings.HasPrefix(stdout, "xorbreak version v") {
		t.Errorf("version: code %d, stdout %q", code, stdout)
	}
}

func TestBreakCommand(t *testing.T) {
	plain, err := os.ReadFile("testdata/plaintext.txt")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	ct, err := hex.FromBytes(plain).RepeatingXor(hex.FromText("Terminator X"))
	if err != nil {
		t.Fatalf("RepeatingXor: %v", err)
	}

	// Wrap at 60 columns like typical base64 files.
	b64 := base64.Encode(ct.Bytes()).String()
	var wrapped strings.Builder
	for len(b64) > 60 {
		wrapped.WriteString(b64[:60] + "\n")
		b64 = b64[60:]
	}
	wrapped.WriteString(b64 + "\n")
	path := writeFile(t, "ct.b64", wrapped.String())

	code, stdout, stderr := runCLI(t, "", "break", "-file", path, "-tracing", "simple", "-log-level", "debug")
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr)
	}
	if !strings.Contains(stdout, "key size: 12") || !strings.Contains(stdout, `key: "Terminator X"`) {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stdout, string(plain)) {
		t.Error("plaintext missing from output")
	}
	if !strings.Contains(stderr, "span=xorbreak.attack.repeating") || !strings.Contains(stderr, "attack.key_size=12") {
		t.Errorf("expected span debug log, stderr = %q", stderr)
	}

	code, stdout, _ = runCLI(t, "", "break", "-file", path, "-keysize", "12")
	if code != 0 || !strings.Contains(stdout, "key size: 12") {
		t.Errorf("-keysize: code %d, stdout %q", code, stdout)
	}

	bad := writeFile(t, "bad.b64", "!!!!")
	if code, _, _ := runCLI(t, "", "break", "-file", bad); code != 1 {
		t.Error("invalid base64 should fail")
	}
}
