package hl7

import (
	"encoding/hex"
	"strings"
)

// Escape converts plain text into wire form for d, replacing delimiter characters
// with the standard escape sequences (\F\ \S\ \T\ \R\ \E\ and \P\ for truncation).
// Carriage returns and line feeds become \X0D\ and \X0A\.
func Escape(s string, d Delimiters) string {
	if !strings.ContainsAny(s, string([]byte{d.Field, d.Component, d.Repetition, d.Escape, d.SubComponent, '\r', '\n'})) &&
		(d.Truncation == 0 || strings.IndexByte(s, d.Truncation) < 0) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		var code byte
		switch s[i] {
		case '\r':
			b.WriteByte(d.Escape)
			b.WriteString("X0D")
			b.WriteByte(d.Escape)
			continue
		case '\n':
			b.WriteByte(d.Escape)
			b.WriteString("X0A")
			b.WriteByte(d.Escape)
			continue
		case d.Escape:
			code = 'E'
		case d.Field:
			code = 'F'
		case d.Component:
			code = 'S'
		case d.SubComponent:
			code = 'T'
		case d.Repetition:
			code = 'R'
		default:
			if d.Truncation != 0 && s[i] == d.Truncation {
				code = 'P'
			}
		}
		if code == 0 {
			b.WriteByte(s[i])
			continue
		}
		b.WriteByte(d.Escape)
		b.WriteByte(code)
		b.WriteByte(d.Escape)
	}
	return b.String()
}

// Unescape converts wire text into plain text. Delimiter sequences and \Xhh..\ hex
// data are decoded; formatting sequences (\.br\, \H\, \N\ and friends) are left as-is.
func Unescape(s string, d Delimiters) string {
	if strings.IndexByte(s, d.Escape) < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != d.Escape {
			b.WriteByte(s[i])
			continue
		}
		end := strings.IndexByte(s[i+1:], d.Escape)
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		seq := s[i+1 : i+1+end]
		if strings.ContainsAny(seq, string([]byte{d.Field, d.Component, d.Repetition, d.SubComponent, '\r', '\n'})) {
			b.WriteByte(d.Escape)
			continue
		}
		if decoded, ok := decodeSequence(seq, d); ok {
			b.WriteString(decoded)
		} else {
			b.WriteString(s[i : i+end+2])
		}
		i += end + 1
	}
	return b.String()
}

func decodeSequence(seq string, d Delimiters) (string, bool) {
	switch seq {
	case "F":
		return string(d.Field), true
	case "S":
		return string(d.Component), true
	case "T":
		return string(d.SubComponent), true
	case "R":
		return string(d.Repetition), true
	case "E":
		return string(d.Escape), true
	case "P":
		if d.Truncation != 0 {
			return string(d.Truncation), true
		}
		return "", false
	}
	if len(seq) > 1 && seq[0] == 'X' {
		raw, err := hex.DecodeString(seq[1:])
		if err != nil {
			return "", false
		}
		return string(raw), true
	}
	return "", false
}
