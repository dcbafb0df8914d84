package hl7

import (
	"bytes"
	"strings"
)

// Split divides text on delim, keeping escape sequences (text between two escape
// characters, such as \F\ or \X0D\) atomic. An escape sequence never spans delim,
// any of stops or a line break: an escape character whose partner lies beyond one
// of those is a literal. Split never drops input: joining the result with delim
// reproduces text exactly.
func Split(text string, delim, escape byte, stops ...byte) []string {
	parts := make([]string, 0, strings.Count(text, string(delim))+1)
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if escape != 0 && c == escape {
			if end := sequenceEnd(text, i, delim, escape, stops); end > 0 {
				i = end
			}
			continue
		}
		if c == delim {
			parts = append(parts, text[start:i])
			start = i + 1
		}
	}
	return append(parts, text[start:])
}

// Join is the inverse of Split.
func Join(parts []string, delim byte) string {
	return strings.Join(parts, string(delim))
}

// sequenceEnd returns the index of the escape character closing the sequence
// opened at text[open], or -1 when the sequence is unterminated.
func sequenceEnd(text string, open int, delim, escape byte, stops []byte) int {
	for j := open + 1; j < len(text); j++ {
		switch c := text[j]; {
		case c == escape:
			return j
		case c == delim, c == '\r', c == '\n':
			return -1
		case bytes.IndexByte(stops, c) >= 0:
			return -1
		}
	}
	return -1
}

// split divides text on one of d's delimiters with every other delimiter of d
// closing open escape sequences.
func (d Delimiters) split(text string, delim byte) []string {
	return Split(text, delim, d.Escape, d.Field, d.Component, d.Repetition, d.SubComponent)
}
