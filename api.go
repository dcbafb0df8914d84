// Package hl7 builds, parses and edits HL7 v2 messages in ER7 (pipe-delimited)
// form.
//
// A Message is an ordered list of segments. Each segment holds fields, each
// field one or more repetitions, each repetition components, and each
// component sub-components. Values are stored in wire form: escape sequences
// such as \F\ pass through untouched, and Text/SetText convert to and from
// plain text.
//
// # Paths
//
// Positions are addressed with dotted paths:
//
//	MSH.9       field 9 of the first MSH
//	MSH.9.2     component 2 of that field
//	PID.5.1.2   sub-component 2 of component 1
//	PID.13[2]   second repetition of field 13
//	NK1[2].2.1  component 1 of field 2 of the second NK1
//
// # Building
//
//	m := hl7.New()
//	msh, _ := m.CreateSegment("MSH")
//	_ = m.Set("MSH", hl7.Composite{
//	    "MSH.9": hl7.Composite{"MSH.9.1": hl7.Scalar("ADT"), "MSH.9.2": hl7.Scalar("A08")},
//	})
//	_ = msh.SetField(12, "2.5")
//	raw := m.Build() // MSH|^~\&|||||||ADT^A08|||2.5
//
// # Parsing
//
//	m := hl7.FromString(raw)
//	if err := <-m.Transform(ctx, nil); err != nil {
//	    return err
//	}
//	code, trigger := m.Type()
//
// Parse is the synchronous equivalent. The delimiters declared in MSH.1 and
// MSH.2 are fixed once a message has been parsed.
//
// # Structured Documents
//
// Document is an ordered, lossless tree view of a message that the codec
// subpackages (json, xml, yaml, msgpack, bson) encode. ER7 encodes the same
// view as wire text.
//
// # Processing
//
// A Processor applies a Policy of context-aware actions as messages cross a
// boundary:
//
//	receive.hash:"sha256"   - Hash on receive (pseudonymous identifiers)
//	load.decrypt:"aes"      - Decrypt on load
//	store.encrypt:"aes"     - Encrypt on store
//	send.mask:"name"        - Mask on send
//	send.redact:"***"       - Redact on send
//
// Policies can be written as maps or derived from struct tags with PolicyOf.
// Decode and Encode bind tagged structs to message fields.
package hl7

// Codec provides content-type aware marshaling of Documents.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}
