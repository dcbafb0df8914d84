// Package xml provides an XML codec for HL7 documents.
//
// Documents encode as <message><segment path="PID"><node path="PID.1" value="..."/>...
package xml

import (
	"encoding/xml"

	"github.com/zoobzio/hl7"
)

// xmlCodec implements hl7.Codec for XML.
type xmlCodec struct{}

// New returns an XML codec.
func New() hl7.Codec {
	return &xmlCodec{}
}

// ContentType returns the MIME type for XML.
func (c *xmlCodec) ContentType() string {
	return "application/xml"
}

// Marshal encodes v as XML. A *hl7.Message is encoded as its Document.
func (c *xmlCodec) Marshal(v any) ([]byte, error) {
	return xml.Marshal(hl7.AsDocument(v))
}

// Unmarshal decodes XML data into v, which may be a *hl7.Message.
func (c *xmlCodec) Unmarshal(data []byte, v any) error {
	return hl7.DecodeDocument(v, func(target any) error {
		return xml.Unmarshal(data, target)
	})
}
