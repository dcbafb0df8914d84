package hl7

import "fmt"

// ContentTypeER7 is the MIME type for pipe-delimited HL7 v2 text.
const ContentTypeER7 = "x-application/hl7-v2+er7"

type er7Codec struct {
	opts []Option
}

// ER7 returns a Codec that encodes a *Document, Document or *Message as wire
// text and decodes wire text into a *Document or *Message. Options apply to
// the messages it builds, for example WithSegmentTerminator.
func ER7(opts ...Option) Codec {
	return &er7Codec{opts: opts}
}

func (c *er7Codec) ContentType() string {
	return ContentTypeER7
}

func (c *er7Codec) Marshal(v any) ([]byte, error) {
	var m *Message
	switch t := v.(type) {
	case *Message:
		if t == nil {
			return nil, errNilMessage
		}
		m = t
	case *Document:
		if t == nil {
			return nil, errNilMessage
		}
		var err error
		if m, err = FromDocument(t, c.opts...); err != nil {
			return nil, err
		}
	case Document:
		var err error
		if m, err = FromDocument(&t, c.opts...); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("er7: cannot marshal %T", v)
	}
	return []byte(m.Build()), nil
}

func (c *er7Codec) Unmarshal(data []byte, v any) error {
	m, err := Parse(string(data), c.opts...)
	if err != nil {
		return err
	}
	switch t := v.(type) {
	case *Message:
		t.adopt(m)
	case *Document:
		*t = *m.Document()
	default:
		return fmt.Errorf("er7: cannot unmarshal into %T", v)
	}
	return nil
}
