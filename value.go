package hl7

import (
	"fmt"
	"sort"
)

// Value is a node of a path-value tree: either a Scalar or a Composite.
type Value interface {
	isValue()
}

// Scalar is a leaf value written at its key's path.
type Scalar string

// Composite maps sub-paths to values. Keys are absolute paths below the parent
// key ("MSH.9.1" under "MSH.9") or bare numbers relative to it ("1" under "MSH.9").
type Composite map[string]Value

func (Scalar) isValue()    {}
func (Composite) isValue() {}

// FromMap converts a loosely typed literal, as decoded from JSON or written
// inline, into a Composite. Accepted leaf types are string, fmt.Stringer and nil;
// nested maps may be map[string]any or map[string]string.
func FromMap(m map[string]any) (Composite, error) {
	out := make(Composite, len(m))
	for k, v := range m {
		val, err := toValue(v)
		if err != nil {
			return nil, fmt.Errorf("%w at %q: %v", ErrInvalidValue, k, err)
		}
		out[k] = val
	}
	return out, nil
}

func toValue(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Scalar(""), nil
	case string:
		return Scalar(t), nil
	case Scalar:
		return t, nil
	case Composite:
		return t, nil
	case fmt.Stringer:
		return Scalar(t.String()), nil
	case map[string]string:
		out := make(Composite, len(t))
		for k, s := range t {
			out[k] = Scalar(s)
		}
		return out, nil
	case map[string]any:
		return FromMap(t)
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

// entry is a resolved key of a Composite.
type entry struct {
	coord Coordinate
	value Value
}

// resolveEntries resolves and orders the keys of c beneath parent. A zero parent
// means top level: keys must address fields of the named segment.
func (c Composite) resolveEntries(segment string, parent *Coordinate) ([]entry, error) {
	entries := make([]entry, 0, len(c))
	for key, val := range c {
		path := key
		if isNumeric(key) {
			if parent == nil {
				return nil, newPathError(key, "relative key outside a composite")
			}
			path = parent.String() + "." + key
		}

		coord, err := Resolve(path)
		if err != nil {
			return nil, err
		}
		if coord.Occurrence > 0 {
			return nil, newPathError(path, "mapping keys cannot select a segment occurrence")
		}
		if coord.Segment != segment {
			return nil, newPathError(path, "key does not address segment "+segment)
		}
		if coord.Field == 0 {
			return nil, newPathError(path, "key must address a field")
		}
		if parent != nil && !parent.Contains(coord) {
			return nil, newPathError(path, "key is not below "+parent.String())
		}
		if val == nil {
			val = Scalar("")
		}
		entries = append(entries, entry{coord: coord, value: val})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].coord.less(entries[j].coord)
	})
	return entries, nil
}

// apply writes the tree onto s. Entries are resolved and checked up front so a
// malformed key or value leaves the segment untouched.
func (c Composite) apply(s *Segment) error {
	entries, err := c.flatten(s.name, nil)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if s.isHeader() && e.coord.Field <= 2 {
			continue
		}
		if err := checkValue(e.coord, string(e.value.(Scalar)), s.delims()); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if err := s.Set(e.coord, string(e.value.(Scalar))); err != nil {
			return err
		}
	}
	return nil
}

// flatten expands nested composites into an ordered list of scalar writes.
func (c Composite) flatten(segment string, parent *Coordinate) ([]entry, error) {
	entries, err := c.resolveEntries(segment, parent)
	if err != nil {
		return nil, err
	}

	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		switch v := e.value.(type) {
		case Scalar:
			out = append(out, e)
		case Composite:
			coord := e.coord
			nested, err := v.flatten(segment, &coord)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		default:
			return nil, fmt.Errorf("%w at %q: unsupported node %T", ErrInvalidValue, e.coord.String(), e.value)
		}
	}
	return out, nil
}
