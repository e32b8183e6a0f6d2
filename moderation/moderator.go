// Package moderation masks forbidden words in message text.
package moderation

import (
	"chat-room/errors"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// folded is the searchable form of a text. Positions[i] is the index, in the
// original runes, of Runes[i].
type folded struct {
	Runes     []rune
	Positions []int
}

// NewModerator builds the Aho-Corasick automaton over the folded form of words.
// Blank words are skipped; ErrEmptyWords is returned when none is left.
func NewModerator(words []string, replacement rune) (*Moderator, error) {
	var patterns [][]rune
	for _, word := range words {
		pattern := fold([]rune(strings.TrimSpace(word))).Runes
		if len(pattern) > 0 {
			patterns = append(patterns, pattern)
		}
	}
	if len(patterns) == 0 {
		return nil, errors.ErrEmptyWords
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, replacement: replacement}, nil
}

// Censor replaces every character of a matched word with the replacement rune.
// Characters skipped during matching (spaces, punctuation) inside a match are masked too.
func (m *Moderator) Censor(text string) string {
	original := []rune(text)
	f := fold(original)
	if len(f.Runes) == 0 {
		return text
	}
	hits := m.matcher.MultiPatternSearch(f.Runes, false)
	if len(hits) == 0 {
		return text
	}
	for _, hit := range hits {
		start, end := hit.Pos, hit.Pos+len(hit.Word)
		if start < 0 || end > len(f.Positions) {
			continue
		}
		for i := f.Positions[start]; i <= f.Positions[end-1]; i++ {
			original[i] = m.replacement
		}
	}
	return string(original)
}

func fold(runes []rune) folded {
	f := folded{
		Runes:     make([]rune, 0, len(runes)),
		Positions: make([]int, 0, len(runes)),
	}
	for i, r := range runes {
		r = unleet(runes, i)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		f.Runes = append(f.Runes, unicode.ToLower(r))
		f.Positions = append(f.Positions, i)
	}
	return f
}

// unleet maps common leet speak characters back to letters.
// '!' and '|' only stand for 'i' inside a word, otherwise they stay punctuation.
func unleet(runes []rune, i int) rune {
	switch r := runes[i]; r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1':
		return 'i'
	case '!', '|':
		if betweenLetters(runes, i) {
			return 'i'
		}
		return r
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func betweenLetters(runes []rune, i int) bool {
	return i > 0 && i < len(runes)-1 && unicode.IsLetter(runes[i-1]) && unicode.IsLetter(runes[i+1])
}
