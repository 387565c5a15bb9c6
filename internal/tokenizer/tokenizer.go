// Package tokenizer provides language-aware text tokenisation for the search
// engine. Latin-script runs are lower-cased and split on non-alphanumeric
// boundaries; runs containing CJK ideographs are segmented with a dictionary
// longest-match segmenter with an HMM fallback for unknown sequences. Mixed
// input is segmented per contiguous script run and concatenated in original
// order.
package tokenizer

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-ego/gse"

	apperr "github.com/mankihq/manki/pkg/errors"
)

// Token represents a single normalised term and its position in the original
// text.
type Token struct {
	Term     string
	Position int
}

var (
	segOnce sync.Once
	segErr  error
	seg     gse.Segmenter
)

// loadSegmenter initialises the shared Chinese segmenter once. The embedded
// dictionary load is slow enough that per-call loading would dominate
// indexing time.
func loadSegmenter() error {
	segOnce.Do(func() {
		segErr = seg.LoadDict()
	})
	return segErr
}

// Tokenize breaks text into lowercased Tokens. It fails only on malformed
// byte sequences; any unrecognised character is a token boundary.
func Tokenize(text string) ([]Token, error) {
	if !utf8.ValidString(text) {
		return nil, apperr.ErrEncoding
	}
	tokens := make([]Token, 0, len(text)/6)
	pos := 0
	for _, run := range splitScriptRuns(text) {
		var words []string
		if run.cjk {
			words = segmentCJK(run.text)
		} else {
			words = splitLatin(run.text)
		}
		for _, w := range words {
			tokens = append(tokens, Token{Term: w, Position: pos})
			pos++
		}
	}
	return tokens, nil
}

// Terms is Tokenize reduced to the term strings.
func Terms(text string) ([]string, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms, nil
}

type scriptRun struct {
	text string
	cjk  bool
}

// splitScriptRuns splits text into maximal runs of CJK and non-CJK
// characters, preserving order.
func splitScriptRuns(text string) []scriptRun {
	runs := make([]scriptRun, 0, 2)
	var b strings.Builder
	current := false
	started := false
	for _, r := range text {
		c := isCJK(r)
		if started && c != current {
			runs = append(runs, scriptRun{text: b.String(), cjk: current})
			b.Reset()
		}
		b.WriteRune(r)
		current = c
		started = true
	}
	if b.Len() > 0 {
		runs = append(runs, scriptRun{text: b.String(), cjk: current})
	}
	return runs
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r)
}

func splitLatin(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func segmentCJK(text string) []string {
	if err := loadSegmenter(); err != nil {
		// Dictionary load failure degrades to per-rune tokens rather than
		// dropping the text from the index.
		return splitRunes(text)
	}
	cut := seg.Cut(text, true)
	words := make([]string, 0, len(cut))
	for _, w := range cut {
		w = strings.TrimSpace(w)
		if w == "" || isPunctOnly(w) {
			continue
		}
		words = append(words, w)
	}
	return words
}

func splitRunes(text string) []string {
	words := make([]string, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			continue
		}
		words = append(words, string(r))
	}
	return words
}

func isPunctOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
