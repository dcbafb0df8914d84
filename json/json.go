// Package json provides a JSON codec for HL7 documents.
package json

import (
	"encoding/json"

	"github.com/zoobzio/hl7"
)

// jsonCodec implements hl7.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() hl7.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON. A *hl7.Message is encoded as its Document.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(hl7.AsDocument(v))
}

// Unmarshal decodes JSON data into v, which may be a *hl7.Message.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return hl7.DecodeDocument(v, func(target any) error {
		return json.Unmarshal(data, target)
	})
}
