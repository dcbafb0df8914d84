package hl7

import "fmt"

// Delimiters is the character set a message is encoded with.
// Truncation is optional (zero when absent) and only preserved, never interpreted.
type Delimiters struct {
	Field        byte
	Component    byte
	Repetition   byte
	Escape       byte
	SubComponent byte
	Truncation   byte
}

// DefaultDelimiters returns the standard |^~\& set.
func DefaultDelimiters() Delimiters {
	return Delimiters{
		Field:        '|',
		Component:    '^',
		Repetition:   '~',
		Escape:       '\\',
		SubComponent: '&',
	}
}

// EncodingCharacters returns the MSH.2 value for this set.
func (d Delimiters) EncodingCharacters() string {
	enc := []byte{d.Component, d.Repetition, d.Escape, d.SubComponent}
	if d.Truncation != 0 {
		enc = append(enc, d.Truncation)
	}
	return string(enc)
}

// Validate reports whether every delimiter is printable, non-alphanumeric and distinct.
func (d Delimiters) Validate() error {
	set := []byte{d.Field, d.Component, d.Repetition, d.Escape, d.SubComponent}
	if d.Truncation != 0 {
		set = append(set, d.Truncation)
	}
	seen := make(map[byte]bool, len(set))
	for _, c := range set {
		if c <= ' ' || c > '~' || isAlnum(c) {
			return fmt.Errorf("invalid delimiter %q", c)
		}
		if seen[c] {
			return fmt.Errorf("duplicate delimiter %q", c)
		}
		seen[c] = true
	}
	return nil
}

// delimitersFrom builds a set from a field separator and an MSH.2 value.
func delimitersFrom(field byte, encoding string) (Delimiters, error) {
	if len(encoding) != 4 && len(encoding) != 5 {
		return Delimiters{}, fmt.Errorf("encoding characters %q must be 4 or 5 characters", encoding)
	}
	d := Delimiters{
		Field:        field,
		Component:    encoding[0],
		Repetition:   encoding[1],
		Escape:       encoding[2],
		SubComponent: encoding[3],
	}
	if len(encoding) == 5 {
		d.Truncation = encoding[4]
	}
	if err := d.Validate(); err != nil {
		return Delimiters{}, err
	}
	return d, nil
}

func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
