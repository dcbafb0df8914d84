// Package yaml provides a YAML codec for HL7 documents.
package yaml

import (
	"github.com/zoobzio/hl7"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements hl7.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() hl7.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes v as YAML. A *hl7.Message is encoded as its Document.
func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(hl7.AsDocument(v))
}

// Unmarshal decodes YAML data into v, which may be a *hl7.Message.
func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	return hl7.DecodeDocument(v, func(target any) error {
		return yaml.Unmarshal(data, target)
	})
}
