// Package msgpack provides a MessagePack codec for HL7 documents.
package msgpack

import (
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/hl7"
)

// msgpackCodec implements hl7.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() hl7.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack. A *hl7.Message is encoded as its Document.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(hl7.AsDocument(v))
}

// Unmarshal decodes MessagePack data into v, which may be a *hl7.Message.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	return hl7.DecodeDocument(v, func(target any) error {
		return msgpack.Unmarshal(data, target)
	})
}
