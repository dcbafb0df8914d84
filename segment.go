package hl7

import (
	"fmt"
	"strings"
)

const headerName = "MSH"

type (
	component  []string
	repetition []component
	field      []repetition
)

// Segment is a named line-record: an ordered run of fields, each holding one or
// more repetitions of components and sub-components.
//
// Values are stored in wire form. Setting a value splits it on the delimiters
// below the addressed level, so SetField(9, "ADT^A08") yields two components.
type Segment struct {
	name   string
	fields []field
	owner  *Message
}

// NewSegment returns a detached segment encoded with the default delimiters.
func NewSegment(name string) (*Segment, error) {
	if !validSegmentName(name) {
		return nil, newPathError(name, "invalid segment name")
	}
	return newSegment(name, nil), nil
}

func newSegment(name string, owner *Message) *Segment {
	s := &Segment{name: name, owner: owner}
	if s.isHeader() {
		s.fields = []field{emptyField(), emptyField()}
	}
	return s
}

// Name returns the three-character segment name.
func (s *Segment) Name() string {
	return s.name
}

// Len returns the number of fields, counting MSH.1 and MSH.2 for headers.
func (s *Segment) Len() int {
	return len(s.fields)
}

// Repetitions returns how many repetitions field n holds, or 0 past the end.
func (s *Segment) Repetitions(n int) int {
	if n < 1 || n > len(s.fields) {
		return 0
	}
	if s.isHeader() && n <= 2 {
		return 1
	}
	return len(s.fields[n-1])
}

// Field returns field n in wire form.
func (s *Segment) Field(n int) string {
	return s.Get(Coordinate{Field: n})
}

// Component returns component c of the first repetition of field f.
func (s *Segment) Component(f, c int) string {
	return s.Get(Coordinate{Field: f, Component: c})
}

// SubComponent returns sub-component sc of component c of field f.
func (s *Segment) SubComponent(f, c, sc int) string {
	return s.Get(Coordinate{Field: f, Component: c, SubComponent: sc})
}

// Get reads the value at c. Field 0 is the segment name. Any address beyond the
// current extent yields an empty string. The Segment and Occurrence parts of c are ignored.
func (s *Segment) Get(c Coordinate) string {
	if c.Field < 0 || c.Repetition < 0 || c.Component < 0 || c.SubComponent < 0 {
		return ""
	}
	if c.Field == 0 {
		if c.Depth() == 0 {
			return s.name
		}
		return ""
	}
	if s.isHeader() && c.Field <= 2 {
		if c.Repetition > 1 || c.Component > 1 || c.SubComponent > 1 {
			return ""
		}
		return s.headerValue(c.Field)
	}
	if c.Field > len(s.fields) {
		return ""
	}

	d := s.delims()
	f := s.fields[c.Field-1]
	if c.Depth() == 1 {
		if c.Repetition == 0 {
			return f.encode(d)
		}
		if c.Repetition > len(f) {
			return ""
		}
		return f[c.Repetition-1].encode(d)
	}

	r := max(c.Repetition, 1)
	if r > len(f) || c.Component > len(f[r-1]) {
		return ""
	}
	comp := f[r-1][c.Component-1]
	if c.Depth() == 2 {
		return comp.encode(d)
	}
	if c.SubComponent > len(comp) {
		return ""
	}
	return comp[c.SubComponent-1]
}

// SetField replaces field n, splitting value into repetitions and components.
func (s *Segment) SetField(n int, value string) error {
	return s.Set(Coordinate{Field: n}, value)
}

// SetComponent replaces component c of the first repetition of field f.
func (s *Segment) SetComponent(f, c int, value string) error {
	return s.Set(Coordinate{Field: f, Component: c}, value)
}

// SetSubComponent replaces a single sub-component.
func (s *Segment) SetSubComponent(f, c, sc int, value string) error {
	return s.Set(Coordinate{Field: f, Component: c, SubComponent: sc}, value)
}

// Set writes value at c, materialising empty placeholders up to the addressed
// position. A scalar field widened by a component write keeps its value as
// component 1.
func (s *Segment) Set(c Coordinate, value string) error {
	if c.Segment != "" && c.Segment != s.name {
		return newPathError(c.String(), "path addresses segment "+c.Segment+", not "+s.name)
	}
	if c.Field < 1 || c.Repetition < 0 || c.Component < 0 || c.SubComponent < 0 ||
		(c.SubComponent > 0 && c.Component == 0) {
		return newPathError(c.String(), "field, component and sub-component must be positive")
	}
	if s.isHeader() && c.Field <= 2 {
		if c.Depth() > 1 || c.Repetition > 1 {
			return newPathError(c.String(), "MSH.1 and MSH.2 cannot be addressed below field level")
		}
		return s.setHeader(c.Field, value)
	}

	d := s.delims()
	if err := checkValue(c, value, d); err != nil {
		return err
	}
	s.fields = grow(s.fields, c.Field, emptyField)
	fi := c.Field - 1

	if c.Depth() == 1 {
		if c.Repetition == 0 {
			s.fields[fi] = parseField(value, d)
			return nil
		}
		s.fields[fi] = grow(s.fields[fi], c.Repetition, emptyRepetition)
		s.fields[fi][c.Repetition-1] = parseRepetition(value, d)
		return nil
	}

	ri := max(c.Repetition, 1) - 1
	s.fields[fi] = grow(s.fields[fi], ri+1, emptyRepetition)
	rep := grow(s.fields[fi][ri], c.Component, emptyComponent)
	if c.Depth() == 2 {
		rep[c.Component-1] = parseComponent(value, d)
	} else {
		comp := grow(rep[c.Component-1], c.SubComponent, emptyString)
		comp[c.SubComponent-1] = value
		rep[c.Component-1] = comp
	}
	s.fields[fi][ri] = rep
	return nil
}

// String encodes the segment as a single line without terminator.
func (s *Segment) String() string {
	d := s.delims()
	var b strings.Builder
	b.WriteString(s.name)

	start := 0
	if s.isHeader() {
		b.WriteByte(d.Field)
		b.WriteString(d.EncodingCharacters())
		start = min(2, len(s.fields))
	}
	for _, f := range s.fields[start:] {
		b.WriteByte(d.Field)
		b.WriteString(f.encode(d))
	}
	return b.String()
}

// Clone returns a detached deep copy.
func (s *Segment) Clone() *Segment {
	return s.cloneInto(nil)
}

func (s *Segment) cloneInto(owner *Message) *Segment {
	out := &Segment{name: s.name, owner: owner, fields: make([]field, len(s.fields))}
	for i, f := range s.fields {
		nf := make(field, len(f))
		for j, r := range f {
			nr := make(repetition, len(r))
			for k, c := range r {
				nr[k] = append(component(nil), c...)
			}
			nf[j] = nr
		}
		out.fields[i] = nf
	}
	return out
}

func (s *Segment) isHeader() bool {
	return s.name == headerName
}

func (s *Segment) delims() Delimiters {
	if s.owner != nil {
		return s.owner.delims
	}
	return DefaultDelimiters()
}

func (s *Segment) headerValue(n int) string {
	d := s.delims()
	if n == 1 {
		return string(d.Field)
	}
	return d.EncodingCharacters()
}

// setHeader routes MSH.1 / MSH.2 writes to the owning message's delimiter set.
func (s *Segment) setHeader(n int, value string) error {
	current := s.delims()
	next := current

	var err error
	if n == 1 {
		if len(value) != 1 {
			return newParseError(ErrMissingHeader, 0, "field separator must be a single character")
		}
		next.Field = value[0]
		err = next.Validate()
	} else {
		next, err = delimitersFrom(current.Field, value)
	}
	if err != nil {
		return newParseError(ErrMissingHeader, 0, err.Error())
	}

	if next == current {
		return nil
	}
	if s.owner == nil || s.owner.locked {
		return ErrDelimitersLocked
	}
	s.owner.delims = next
	return nil
}

// rewrite replaces every non-empty stored leaf under c with fn(leaf) and reports
// how many were replaced. Unlike Get, a coordinate without a repetition index
// covers every repetition of the field.
func (s *Segment) rewrite(c Coordinate, fn func(string) (string, error)) (int, error) {
	if c.Field < 1 || c.Field > len(s.fields) || (s.isHeader() && c.Field <= 2) {
		return 0, nil
	}
	n := 0
	for ri, rep := range s.fields[c.Field-1] {
		if c.Repetition > 0 && ri != c.Repetition-1 {
			continue
		}
		for ci, comp := range rep {
			if c.Component > 0 && ci != c.Component-1 {
				continue
			}
			for si, leaf := range comp {
				if (c.SubComponent > 0 && si != c.SubComponent-1) || leaf == "" {
					continue
				}
				v, err := fn(leaf)
				if err != nil {
					return n, err
				}
				comp[si] = v
				n++
			}
		}
	}
	return n, nil
}

func (f field) encode(d Delimiters) string {
	if len(f) == 1 {
		return f[0].encode(d)
	}
	reps := make([]string, len(f))
	for i, r := range f {
		reps[i] = r.encode(d)
	}
	return Join(reps, d.Repetition)
}

func (r repetition) encode(d Delimiters) string {
	if len(r) == 1 {
		return r[0].encode(d)
	}
	comps := make([]string, len(r))
	for i, c := range r {
		comps[i] = c.encode(d)
	}
	return Join(comps, d.Component)
}

func (c component) encode(d Delimiters) string {
	if len(c) == 1 {
		return c[0]
	}
	return Join(c, d.SubComponent)
}

func parseField(value string, d Delimiters) field {
	raw := d.split(value, d.Repetition)
	f := make(field, len(raw))
	for i, r := range raw {
		f[i] = parseRepetition(r, d)
	}
	return f
}

func parseRepetition(value string, d Delimiters) repetition {
	raw := d.split(value, d.Component)
	r := make(repetition, len(raw))
	for i, c := range raw {
		r[i] = parseComponent(c, d)
	}
	return r
}

func parseComponent(value string, d Delimiters) component {
	return component(d.split(value, d.SubComponent))
}

// checkValue rejects wire values holding a line break or a delimiter that
// belongs above the addressed level.
func checkValue(c Coordinate, value string, d Delimiters) error {
	above := []byte{d.Field, '\r', '\n'}
	switch {
	case c.Depth() == 3:
		above = append(above, d.Repetition, d.Component)
	case c.Depth() == 2, c.Repetition > 0:
		above = append(above, d.Repetition)
	}
	if i := strings.IndexAny(value, string(above)); i >= 0 {
		return fmt.Errorf("%w at %s: %q holds delimiter %q", ErrInvalidValue, c.String(), value, value[i])
	}
	return nil
}

func emptyField() field           { return field{emptyRepetition()} }
func emptyRepetition() repetition { return repetition{emptyComponent()} }
func emptyComponent() component   { return component{""} }
func emptyString() string         { return "" }

// grow pads s with fresh empty values until it holds n elements.
func grow[T any](s []T, n int, empty func() T) []T {
	for len(s) < n {
		s = append(s, empty())
	}
	return s
}
