// Package bson provides a BSON codec for HL7 documents, suitable for storing
// messages in MongoDB collections.
package bson

import (
	"github.com/zoobzio/hl7"
	"go.mongodb.org/mongo-driver/bson"
)

// bsonCodec implements hl7.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() hl7.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as BSON. A *hl7.Message is encoded as its Document.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(hl7.AsDocument(v))
}

// Unmarshal decodes BSON data into v, which may be a *hl7.Message.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	return hl7.DecodeDocument(v, func(target any) error {
		return bson.Unmarshal(data, target)
	})
}
