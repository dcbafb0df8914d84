package hl7

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AckCode is the MSA.1 acknowledgment code.
type AckCode string

// Original and enhanced mode acknowledgment codes.
const (
	AckAccept       AckCode = "AA"
	AckError        AckCode = "AE"
	AckReject       AckCode = "AR"
	AckCommitAccept AckCode = "CA"
	AckCommitError  AckCode = "CE"
	AckCommitReject AckCode = "CR"
)

const (
	timestampLayout  = "20060102150405"
	controlIDMaxSize = 20
)

// now is replaced in tests.
var now = time.Now

// NewControlID returns a fresh MSH.10 value: a random UUID without dashes,
// cut to the 20 characters the field allows.
func NewControlID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:controlIDMaxSize]
}

// Ack builds an acknowledgment for m. The sending and receiving application
// and facility are swapped, MSH.9 becomes ACK^<trigger>^ACK and MSA carries the
// code, the original control ID and the optional text.
func (m *Message) Ack(code AckCode, text string) (*Message, error) {
	h, err := m.find(headerName, 0)
	if err != nil {
		return nil, err
	}
	_, trigger := m.Type()

	ack := New(WithDelimiters(m.delims), WithSegmentTerminator(m.terminator))
	if _, err := ack.CreateSegment(headerName); err != nil {
		return nil, err
	}
	if _, err := ack.CreateSegment("MSA"); err != nil {
		return nil, err
	}

	header := Composite{
		"MSH.3":  Scalar(h.Field(5)),
		"MSH.4":  Scalar(h.Field(6)),
		"MSH.5":  Scalar(h.Field(3)),
		"MSH.6":  Scalar(h.Field(4)),
		"MSH.7":  Scalar(now().Format(timestampLayout)),
		"MSH.9":  Composite{"1": Scalar("ACK"), "2": Scalar(trigger), "3": Scalar("ACK")},
		"MSH.10": Scalar(NewControlID()),
		"MSH.11": Scalar(h.Field(11)),
		"MSH.12": Scalar(h.Field(12)),
	}
	if err := ack.SetAt(0, header); err != nil {
		return nil, err
	}

	msa := Composite{
		"MSA.1": Scalar(string(code)),
		"MSA.2": Scalar(h.Field(10)),
	}
	if text != "" {
		msa["MSA.3"] = Scalar(Escape(text, m.delims))
	}
	if err := ack.SetAt(1, msa); err != nil {
		return nil, err
	}
	ack.locked = true
	return ack, nil
}
