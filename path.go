package hl7

import (
	"strconv"
	"strings"
)

// Coordinate addresses a position inside a message.
// All numbers are 1-based; zero means the level is not addressed.
type Coordinate struct {
	Segment      string
	Occurrence   int // n-th segment with this name, from SEG[n]
	Field        int
	Repetition   int // r-th field repetition, from F[r]
	Component    int
	SubComponent int
}

// Resolve parses a dotted path such as "MSH.9.2", "PID.13[2].1" or "OBX[3].5".
func Resolve(path string) (Coordinate, error) {
	var c Coordinate
	if path == "" {
		return c, newPathError(path, "empty path")
	}

	parts := strings.Split(path, ".")
	if len(parts) > 4 {
		return c, newPathError(path, "too many levels")
	}

	name, occ, err := splitSelector(parts[0])
	if err != nil {
		return c, newPathError(path, err.Error())
	}
	if !validSegmentName(name) {
		return c, newPathError(path, "invalid segment name")
	}
	c.Segment = name
	c.Occurrence = occ

	if len(parts) > 1 {
		field, rep, err := splitSelector(parts[1])
		if err != nil {
			return c, newPathError(path, err.Error())
		}
		if c.Field, err = parseIndex(field); err != nil {
			return c, newPathError(path, "field "+err.Error())
		}
		c.Repetition = rep
	}
	if len(parts) > 2 {
		if c.Component, err = parseIndex(parts[2]); err != nil {
			return c, newPathError(path, "component "+err.Error())
		}
	}
	if len(parts) > 3 {
		if c.SubComponent, err = parseIndex(parts[3]); err != nil {
			return c, newPathError(path, "sub-component "+err.Error())
		}
	}
	return c, nil
}

// MustResolve is like Resolve but panics on error. Intended for constant paths.
func MustResolve(path string) Coordinate {
	c, err := Resolve(path)
	if err != nil {
		panic(err)
	}
	return c
}

// String renders the coordinate back into path form.
func (c Coordinate) String() string {
	var b strings.Builder
	b.WriteString(c.Segment)
	if c.Occurrence > 0 {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(c.Occurrence))
		b.WriteByte(']')
	}
	if c.Field == 0 {
		return b.String()
	}
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(c.Field))
	if c.Repetition > 0 {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(c.Repetition))
		b.WriteByte(']')
	}
	if c.Component == 0 {
		return b.String()
	}
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(c.Component))
	if c.SubComponent == 0 {
		return b.String()
	}
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(c.SubComponent))
	return b.String()
}

// Depth is 0 for a whole segment, 1 for a field, 2 for a component and 3 for a sub-component.
func (c Coordinate) Depth() int {
	switch {
	case c.SubComponent > 0:
		return 3
	case c.Component > 0:
		return 2
	case c.Field > 0:
		return 1
	default:
		return 0
	}
}

// Contains reports whether o lies strictly below c in the same segment: every
// level c addresses is matched by o, and o addresses at least one more.
func (c Coordinate) Contains(o Coordinate) bool {
	if c.Segment != o.Segment || c.SubComponent > 0 || o.Field == 0 {
		return false
	}
	if c.Field > 0 && o.Field != c.Field {
		return false
	}
	if c.Repetition > 0 && o.Repetition != c.Repetition {
		return false
	}
	if c.Component > 0 {
		if o.Component != c.Component || (c.Repetition == 0 && o.Repetition > 1) {
			return false
		}
	}
	c.Occurrence, o.Occurrence = 0, 0
	return c != o
}

// less orders coordinates coarser-first within field order.
func (c Coordinate) less(o Coordinate) bool {
	if c.Field != o.Field {
		return c.Field < o.Field
	}
	if c.Repetition != o.Repetition {
		return c.Repetition < o.Repetition
	}
	if c.Component != o.Component {
		return c.Component < o.Component
	}
	return c.SubComponent < o.SubComponent
}

// splitSelector splits "NAME[n]" into its name and index.
func splitSelector(s string) (string, int, error) {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		if strings.IndexByte(s, ']') >= 0 {
			return "", 0, errUnbalanced
		}
		return s, 0, nil
	}
	if !strings.HasSuffix(s, "]") || open == 0 {
		return "", 0, errUnbalanced
	}
	n, err := parseIndex(s[open+1 : len(s)-1])
	if err != nil {
		return "", 0, err
	}
	return s[:open], n, nil
}

type pathReason string

func (r pathReason) Error() string { return string(r) }

const (
	errUnbalanced  pathReason = "unbalanced brackets"
	errNotPositive pathReason = "must be a positive integer"
	errLeadingZero pathReason = "must not have a leading zero"
)

// parseIndex accepts canonical positive integers only, so that String round-trips.
func parseIndex(s string) (int, error) {
	if s == "" {
		return 0, errNotPositive
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, errNotPositive
		}
	}
	if s[0] == '0' {
		if len(s) == 1 {
			return 0, errNotPositive
		}
		return 0, errLeadingZero
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errNotPositive
	}
	return n, nil
}

// validSegmentName accepts names like MSH, PID, NK1, ZPI.
func validSegmentName(name string) bool {
	if len(name) != 3 || name[0] < 'A' || name[0] > 'Z' {
		return false
	}
	for i := 1; i < 3; i++ {
		c := name[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// isNumeric reports whether s is a bare number, used for relative mapping keys.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
