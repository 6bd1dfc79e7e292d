// Package dictionary holds the reference word corpus used to rank decoded
// candidates.
//
// A Dictionary is immutable once built. Its per-character frequency table
// is derived from the corpus on first use, exactly once, and shared
// read-only by every caller afterwards, so a single Dictionary can score
// candidates from many goroutines.
package dictionary

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/sha3"

	xerrors "github.com/sara-star-quant/xorbreak/internal/errors"
	"github.com/sara-star-quant/xorbreak/pkg/hex"
)

//go:embed data/words.txt
var defaultWords string

// Dictionary is a loaded word list with a lazily derived letter table.
type Dictionary struct {
	words []string
	set   map[string]struct{}

	lettersOnce sync.Once
	letters     map[rune]int
}

var (
	defaultDict     *Dictionary
	defaultDictOnce sync.Once
)

// Default returns the built-in English word list.
func Default() *Dictionary {
	defaultDictOnce.Do(func() {
		defaultDict = New(splitWords(defaultWords))
	})
	return defaultDict
}

// New builds a dictionary from an in-memory word list. Empty entries are
// dropped; order is preserved.
func New(words []string) *Dictionary {
	d := &Dictionary{
		words: make([]string, 0, len(words)),
		set:   make(map[string]struct{}, len(words)),
	}
	for _, w := range words {
		if w == "" {
			continue
		}
		d.words = append(d.words, w)
		d.set[w] = struct{}{}
	}
	return d
}

// Load reads a newline-separated word list. Carriage returns are stripped
// and empty lines ignored.
func Load(r io.Reader) (*Dictionary, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrDictionaryLoad, err)
	}
	d := New(splitWords(string(raw)))
	if len(d.words) == 0 {
		return nil, xerrors.ErrEmptyDictionary
	}
	return d, nil
}

// LoadFile reads a word list from disk.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrDictionaryLoad, err)
	}
	defer f.Close()
	return Load(f)
}

func splitWords(raw string) []string {
	return strings.Split(strings.ReplaceAll(raw, "\r", ""), "\n")
}

// WordHitCount counts whitespace-separated tokens of text that exactly
// match a dictionary word. Matching is case-sensitive.
func (d *Dictionary) WordHitCount(text string) int {
	hits := 0
	for _, token := range strings.Fields(text) {
		if _, ok := d.set[token]; ok {
			hits++
		}
	}
	return hits
}

// LetterScore sums, for every character of text, how often that character
// occurs across the whole corpus. Characters absent from the corpus score 0.
func (d *Dictionary) LetterScore(text string) int {
	letters := d.letterTable()
	score := 0
	for _, c := range text {
		score += letters[c]
	}
	return score
}

func (d *Dictionary) letterTable() map[rune]int {
	d.lettersOnce.Do(func() {
		counts := make(map[rune]int)
		for _, w := range d.words {
			for _, c := range w {
				counts[c]++
			}
		}
		d.letters = counts
	})
	return d.letters
}

// Letters returns a copy of the character frequency table.
func (d *Dictionary) Letters() map[rune]int {
	table := d.letterTable()
	out := make(map[rune]int, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out
}

// Contains reports whether word is in the corpus.
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.set[word]
	return ok
}

// Len returns the number of words, duplicates included.
func (d *Dictionary) Len() int {
	return len(d.words)
}

// Words returns a copy of the word list in load order.
func (d *Dictionary) Words() []string {
	out := make([]string, len(d.words))
	copy(out, d.words)
	return out
}

// Digest returns the hex SHA3-256 of the newline-joined corpus. Two
// dictionaries with the same words in the same order share a digest.
func (d *Dictionary) Digest() string {
	sum := sha3.Sum256([]byte(strings.Join(d.words, "\n")))
	return hex.FromBytes(sum[:]).String()
}
