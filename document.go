package hl7

import (
	"encoding/xml"
)

// Document is the ordered structured view of a message. Every field position is
// present, empty ones included, so a document converts back to the exact
// message it was taken from.
type Document struct {
	XMLName  xml.Name `json:"-" yaml:"-" msgpack:"-" bson:"-" xml:"message"`
	Segments []Node   `json:"segments" yaml:"segments" msgpack:"segments" bson:"segments" xml:"segment"`
}

// Node is one addressed element. A node either carries a wire-form Value or,
// when the element has more than one part, Children addressed one level down.
type Node struct {
	Path     string `json:"path" yaml:"path" msgpack:"path" bson:"path" xml:"path,attr"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty" msgpack:"value,omitempty" bson:"value,omitempty" xml:"value,attr,omitempty"`
	Children []Node `json:"children,omitempty" yaml:"children,omitempty" msgpack:"children,omitempty" bson:"children,omitempty" xml:"node"`
}

// Transformed returns the structured result of the last successful Transform,
// or nil before one has completed.
func (m *Message) Transformed() *Document {
	return m.transformed
}

// Document exports the current content of m.
func (m *Message) Document() *Document {
	d := m.delims
	doc := &Document{Segments: make([]Node, len(m.segments))}
	for i, s := range m.segments {
		node := Node{Path: s.name, Children: make([]Node, len(s.fields))}
		for fi, f := range s.fields {
			c := Coordinate{Segment: s.name, Field: fi + 1}
			if s.isHeader() && fi < 2 {
				node.Children[fi] = Node{Path: c.String(), Value: s.headerValue(fi + 1)}
				continue
			}
			node.Children[fi] = fieldNode(c, f, d)
		}
		doc.Segments[i] = node
	}
	return doc
}

func fieldNode(c Coordinate, f field, d Delimiters) Node {
	if len(f) == 1 {
		return repetitionNode(c, f[0], d)
	}
	n := Node{Path: c.String(), Children: make([]Node, len(f))}
	for i, r := range f {
		rc := c
		rc.Repetition = i + 1
		n.Children[i] = repetitionNode(rc, r, d)
	}
	return n
}

func repetitionNode(c Coordinate, r repetition, d Delimiters) Node {
	if len(r) == 1 {
		return Node{Path: c.String(), Value: r.encode(d)}
	}
	n := Node{Path: c.String(), Children: make([]Node, len(r))}
	for i, comp := range r {
		cc := c
		cc.Component = i + 1
		n.Children[i] = componentNode(cc, comp, d)
	}
	return n
}

func componentNode(c Coordinate, comp component, d Delimiters) Node {
	if len(comp) == 1 {
		return Node{Path: c.String(), Value: comp[0]}
	}
	n := Node{Path: c.String(), Children: make([]Node, len(comp))}
	for i, sub := range comp {
		sc := c
		sc.SubComponent = i + 1
		n.Children[i] = Node{Path: sc.String(), Value: sub}
	}
	return n
}

// FromDocument rebuilds a message from its structured view. When the document
// starts with MSH, the delimiters it declares are adopted and then fixed.
func FromDocument(doc *Document, opts ...Option) (*Message, error) {
	m := New(opts...)
	for i, node := range doc.Segments {
		s, err := m.CreateSegment(node.Path)
		if err != nil {
			return nil, err
		}
		values, err := nodesToComposite(node.Children)
		if err != nil {
			return nil, err
		}
		if err := values.apply(s); err != nil {
			return nil, err
		}
		if i == 0 && s.isHeader() {
			m.locked = true
		}
	}
	return m, nil
}

func nodesToComposite(nodes []Node) (Composite, error) {
	out := make(Composite, len(nodes))
	for _, n := range nodes {
		if _, dup := out[n.Path]; dup {
			return nil, newPathError(n.Path, "duplicate node")
		}
		if len(n.Children) == 0 {
			out[n.Path] = Scalar(n.Value)
			continue
		}
		children, err := nodesToComposite(n.Children)
		if err != nil {
			return nil, err
		}
		out[n.Path] = children
	}
	return out, nil
}

// AsDocument returns the value a structured codec should encode: a *Message
// is replaced by its Document, anything else is returned as is.
func AsDocument(v any) any {
	if m, ok := v.(*Message); ok && m != nil {
		return m.Document()
	}
	return v
}

// DecodeDocument runs decode on v. When v is a *Message, decode fills a
// Document instead and the message is rebuilt from it.
func DecodeDocument(v any, decode func(any) error) error {
	m, ok := v.(*Message)
	if !ok {
		return decode(v)
	}
	var doc Document
	if err := decode(&doc); err != nil {
		return err
	}
	out, err := FromDocument(&doc)
	if err != nil {
		return err
	}
	m.adopt(out)
	return nil
}

// adopt moves the content of other into m.
func (m *Message) adopt(other *Message) {
	*m = *other
	for _, s := range m.segments {
		s.owner = m
	}
}
