package hl7

import (
	"strings"
)

// MLLP framing bytes tolerated around parse input.
const (
	startBlock = 0x0B
	endBlock   = 0x1C
)

// splitLines applies the line policy: CRLF, CR and LF all terminate a segment,
// blank or whitespace-only lines are skipped, and leading spaces or tabs before
// a segment name are dropped. Everything else is kept verbatim.
func splitLines(raw string) []string {
	raw = strings.TrimLeft(raw, string([]byte{startBlock}))
	raw = strings.TrimRight(raw, string([]byte{endBlock, '\r', '\n'}))

	lines := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\r' || r == '\n'
	})

	out := lines[:0]
	for _, l := range lines {
		l = strings.TrimLeft(l, " \t")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// decode splits raw text into segments using the delimiters declared by MSH.
// The returned segments have no owner yet.
func decode(raw string) (Delimiters, []*Segment, error) {
	lines := splitLines(raw)
	if len(lines) == 0 {
		return Delimiters{}, nil, newParseError(ErrMissingHeader, 0, "no segments")
	}

	d, err := headerDelimiters(lines[0])
	if err != nil {
		return Delimiters{}, nil, err
	}

	segments := make([]*Segment, 0, len(lines))
	for i, line := range lines {
		s, err := decodeSegment(line, d)
		if err != nil {
			return Delimiters{}, nil, newParseError(ErrMalformedSegment, i+1, err.Error())
		}
		segments = append(segments, s)
	}
	return d, segments, nil
}

// headerDelimiters reads MSH.1 and MSH.2 from the first line.
func headerDelimiters(line string) (Delimiters, error) {
	if !strings.HasPrefix(line, headerName) {
		name := line
		if len(name) > 3 {
			name = name[:3]
		}
		return Delimiters{}, newParseError(ErrMissingHeader, 1, "first segment is "+name)
	}
	if len(line) < 4 {
		return Delimiters{}, newParseError(ErrMissingHeader, 1, "MSH has no field separator")
	}

	sep := line[3]
	rest := line[4:]
	encoding := rest
	if i := strings.IndexByte(rest, sep); i >= 0 {
		encoding = rest[:i]
	}

	d, err := delimitersFrom(sep, encoding)
	if err != nil {
		return Delimiters{}, newParseError(ErrMissingHeader, 1, err.Error())
	}
	return d, nil
}

type segmentReason string

func (r segmentReason) Error() string { return string(r) }

// decodeSegment splits one line into fields, repetitions, components and
// sub-components.
func decodeSegment(line string, d Delimiters) (*Segment, error) {
	if len(line) < 3 || !validSegmentName(line[:3]) {
		return nil, segmentReason("invalid segment name in " + truncate(line, 12))
	}
	name := line[:3]
	s := &Segment{name: name}

	if len(line) == 3 {
		if s.isHeader() {
			return nil, segmentReason("MSH has no encoding characters")
		}
		return s, nil
	}
	if line[3] != d.Field {
		return nil, segmentReason("segment " + name + " is not followed by the field separator")
	}

	body := line[4:]
	if s.isHeader() {
		s.fields = []field{emptyField(), emptyField()}
		i := strings.IndexByte(body, d.Field)
		if i < 0 {
			return s, nil
		}
		body = body[i+1:]
	}

	for _, raw := range d.split(body, d.Field) {
		s.fields = append(s.fields, parseField(raw, d))
	}
	return s, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
