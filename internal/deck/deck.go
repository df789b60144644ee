// Package deck edits the shapes of PowerPoint (.pptx) slides in place.
//
// Only what the yard map needs is supported: naming, filling, outlining,
// labelling, resizing, adding and removing plain shapes. Every other part of the
// package is copied through untouched on save.
package deck

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Shape is one shape of a slide.
type Shape interface {
	Name() string
	SetName(name string)
	// Text is the visible text, paragraphs joined with "\n".
	Text() string
	Fill() (RGB, bool)
	SetFill(c RGB)
	SetOutline(c RGB, width Length)
	SetSize(width, height Length)
	// SetLabel replaces the text with centered, auto-fitting lines.
	SetLabel(text string)
}

// Slide is the capability the map colorizer depends on.
type Slide interface {
	Shapes() []Shape
	// FindByKey returns the shape whose name equals key.
	FindByKey(key string) (Shape, bool)
	// FindByTextFallback returns the first shape whose text holds any token as
	// a whole word. Shapes whose name starts with claimed are skipped.
	FindByTextFallback(tokens []string, claimed string) (Shape, bool)
	AddRectangle(name string, x, y, width, height Length) Shape
	Remove(s Shape) bool
}

// Find looks a shape up by exact key, then by tokens in the text of shapes not
// yet named with the claimed prefix. Shapes renamed by hand in the template are
// still found through their label, but a shape that already belongs to someone
// is never taken over.
func Find(s Slide, key, claimed string, tokens ...string) (Shape, bool) {
	if sh, ok := s.FindByKey(key); ok {
		return sh, true
	}
	return s.FindByTextFallback(tokens, claimed)
}

// MatchesAny reports whether text holds at least one non-empty token as a
// whole word.
func MatchesAny(text string, tokens []string) bool {
	for _, tok := range tokens {
		if ContainsWord(text, tok) {
			return true
		}
	}
	return false
}

// ContainsWord reports whether token occurs in text with no word character
// directly before or after it. Letters, digits and the decimal point are word
// characters, so "41" is found in "Berg (41)" but neither in "412" nor in the
// size label "11.0x4.1".
func ContainsWord(text, token string) bool {
	if token == "" {
		return false
	}
	for i := 0; i < len(text); {
		j := strings.Index(text[i:], token)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(token)
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		i = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.')
}
