package hl7

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// Message is an ordered sequence of segments sharing one delimiter set.
//
// A Message is not safe for concurrent mutation; use one instance per input
// when processing messages in parallel.
type Message struct {
	delims     Delimiters
	locked     bool
	segments   []*Segment
	terminator string

	raw         string
	pending     bool
	transformed *Document
}

// Option configures a Message.
type Option func(*Message)

// WithDelimiters sets the delimiters of a fresh message. Parsed input always
// takes its delimiters from MSH and ignores this option.
func WithDelimiters(d Delimiters) Option {
	return func(m *Message) {
		m.delims = d
	}
}

// WithSegmentTerminator sets the string written between segments by Build.
// The default is "\r".
func WithSegmentTerminator(t string) Option {
	return func(m *Message) {
		m.terminator = t
	}
}

// New returns an empty message ready for CreateSegment.
func New(opts ...Option) *Message {
	m := &Message{
		delims:     DefaultDelimiters(),
		terminator: "\r",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FromString returns a message holding raw text that is decoded by Transform.
func FromString(raw string, opts ...Option) *Message {
	m := New(opts...)
	m.raw = raw
	m.pending = true
	return m
}

// Parse decodes raw into a new message.
func Parse(raw string, opts ...Option) (*Message, error) {
	m := New(opts...)
	if err := m.Parse(raw); err != nil {
		return nil, err
	}
	return m, nil
}

// Parse replaces the content of m with the decoded raw text. The delimiters
// declared by the MSH segment become fixed for the rest of the message's life.
func (m *Message) Parse(raw string) error {
	start := time.Now()
	ctx := context.Background()
	emitParseStart(ctx, len(raw))

	d, segments, err := decode(raw)
	if err == nil && m.locked && d != m.delims {
		err = ErrDelimitersLocked
	}
	if err != nil {
		emitParseComplete(ctx, len(raw), 0, time.Since(start), err)
		return err
	}

	m.delims = d
	m.locked = true
	for _, s := range m.segments {
		s.owner = nil
	}
	for _, s := range segments {
		s.owner = m
	}
	m.segments = segments
	m.pending = false
	emitParseComplete(ctx, len(raw), len(m.segments), time.Since(start), nil)
	return nil
}

// Build encodes the message. Segments are joined by the segment terminator.
func (m *Message) Build() string {
	start := time.Now()
	lines := make([]string, len(m.segments))
	for i, s := range m.segments {
		lines[i] = s.String()
	}
	out := joinLines(lines, m.terminator)
	emitBuildComplete(context.Background(), len(out), len(m.segments), time.Since(start))
	return out
}

// String implements fmt.Stringer using Build.
func (m *Message) String() string {
	return m.Build()
}

// Delimiters returns the delimiter set in effect.
func (m *Message) Delimiters() Delimiters {
	return m.delims
}

// CreateSegment appends a new empty segment. No cardinality or ordering rules
// are enforced.
func (m *Message) CreateSegment(name string) (*Segment, error) {
	if !validSegmentName(name) {
		return nil, newPathError(name, "invalid segment name")
	}
	s := newSegment(name, m)
	m.segments = append(m.segments, s)
	return s, nil
}

// InsertSegment inserts a new empty segment at index (0 <= index <= len).
func (m *Message) InsertSegment(index int, name string) (*Segment, error) {
	if !validSegmentName(name) {
		return nil, newPathError(name, "invalid segment name")
	}
	if index < 0 || index > len(m.segments) {
		return nil, &SegmentError{Selector: fmt.Sprintf("#%d", index)}
	}
	s := newSegment(name, m)
	m.segments = slices.Insert(m.segments, index, s)
	return s, nil
}

// RemoveSegment detaches seg from the message.
func (m *Message) RemoveSegment(seg *Segment) error {
	i := slices.Index(m.segments, seg)
	if i < 0 {
		name := "<nil>"
		if seg != nil {
			name = seg.name
		}
		return &SegmentError{Selector: name}
	}
	m.segments = slices.Delete(m.segments, i, i+1)
	seg.owner = nil
	return nil
}

// Segments returns the segments in order, optionally only those whose name is
// one of filter. Each call returns a new slice.
func (m *Message) Segments(filter ...string) []*Segment {
	out := make([]*Segment, 0, len(m.segments))
	for _, s := range m.segments {
		if len(filter) == 0 || slices.Contains(filter, s.name) {
			out = append(out, s)
		}
	}
	return out
}

// SegmentAt returns the segment at a 0-based position.
func (m *Message) SegmentAt(index int) (*Segment, error) {
	if index < 0 || index >= len(m.segments) {
		return nil, &SegmentError{Selector: fmt.Sprintf("#%d", index)}
	}
	return m.segments[index], nil
}

// Find returns the segment matched by a selector such as "PID" or "NK1[2]".
func (m *Message) Find(selector string) (*Segment, error) {
	name, occ, err := splitSelector(selector)
	if err != nil || !validSegmentName(name) {
		return nil, newPathError(selector, "invalid segment selector")
	}
	return m.find(name, occ)
}

func (m *Message) find(name string, occurrence int) (*Segment, error) {
	want := max(occurrence, 1)
	seen := 0
	for _, s := range m.segments {
		if s.name != name {
			continue
		}
		seen++
		if seen == want {
			return s, nil
		}
	}
	sel := name
	if occurrence > 0 {
		sel = fmt.Sprintf("%s[%d]", name, occurrence)
	}
	return nil, &SegmentError{Selector: sel}
}

// Set applies a path-value tree to the segment matched by selector.
//
//	m.Set("MSH", hl7.Composite{
//	    "MSH.9": hl7.Composite{"MSH.9.1": hl7.Scalar("ADT"), "MSH.9.2": hl7.Scalar("A08")},
//	})
func (m *Message) Set(selector string, values Composite) error {
	s, err := m.Find(selector)
	if err != nil {
		return err
	}
	return values.apply(s)
}

// SetAt applies a path-value tree to the segment at a 0-based position.
func (m *Message) SetAt(index int, values Composite) error {
	s, err := m.SegmentAt(index)
	if err != nil {
		return err
	}
	return values.apply(s)
}

// SetPath writes a single value, e.g. SetPath("PID.5.1", "DOE").
func (m *Message) SetPath(path, value string) error {
	c, s, err := m.locate(path)
	if err != nil {
		return err
	}
	return s.Set(c, value)
}

// Get reads the value at path. A missing segment is an error; any address
// beyond the segment's extent reads as an empty string.
func (m *Message) Get(path string) (string, error) {
	c, s, err := m.locate(path)
	if err != nil {
		return "", err
	}
	return s.Get(c), nil
}

// Text reads the value at path and decodes escape sequences.
func (m *Message) Text(path string) (string, error) {
	v, err := m.Get(path)
	if err != nil {
		return "", err
	}
	return Unescape(v, m.delims), nil
}

// SetText escapes value for this message's delimiters and writes it at path.
func (m *Message) SetText(path, value string) error {
	return m.SetPath(path, Escape(value, m.delims))
}

func (m *Message) locate(path string) (Coordinate, *Segment, error) {
	c, err := Resolve(path)
	if err != nil {
		return c, nil, err
	}
	s, err := m.find(c.Segment, c.Occurrence)
	if err != nil {
		return c, nil, err
	}
	return c, s, nil
}

// Type returns MSH.9.1 and MSH.9.2 (message code and trigger event).
func (m *Message) Type() (code, trigger string) {
	h, err := m.find(headerName, 0)
	if err != nil {
		return "", ""
	}
	return h.Component(9, 1), h.Component(9, 2)
}

// ControlID returns MSH.10.
func (m *Message) ControlID() string {
	return m.headerField(10)
}

// Version returns MSH.12.
func (m *Message) Version() string {
	return m.headerField(12)
}

func (m *Message) headerField(n int) string {
	h, err := m.find(headerName, 0)
	if err != nil {
		return ""
	}
	return h.Component(n, 1)
}

// Clone returns a deep copy that shares nothing with m.
func (m *Message) Clone() *Message {
	out := &Message{
		delims:     m.delims,
		locked:     m.locked,
		terminator: m.terminator,
		raw:        m.raw,
		pending:    m.pending,
		segments:   make([]*Segment, len(m.segments)),
	}
	for i, s := range m.segments {
		out.segments[i] = s.cloneInto(out)
	}
	if m.transformed != nil {
		out.transformed = out.Document()
	}
	return out
}

func joinLines(lines []string, terminator string) string {
	switch len(lines) {
	case 0:
		return ""
	case 1:
		return lines[0]
	}
	n := len(terminator) * (len(lines) - 1)
	for _, l := range lines {
		n += len(l)
	}
	b := make([]byte, 0, n)
	for i, l := range lines {
		if i > 0 {
			b = append(b, terminator...)
		}
		b = append(b, l...)
	}
	return string(b)
}
