// Package testing provides fixtures and helpers for tests of hl7 and its codecs.
package testing

import (
	"testing"

	"github.com/zoobzio/hl7"
)

// MinimalHeader is the smallest useful message: an MSH with type ADT^A04.
const MinimalHeader = `MSH|^~\&|EPIC|EPICADT|SMS|SMSADT|199912271408|CHARRIS|ADT^A04|1817457|D|2.5|`

// ADT is an admission message as commonly received from interface engines:
// LF line endings, blank lines between segments and a trailing empty field.
const ADT = "MSH|^~\\&|EPIC|EPICADT|SMS|SMSADT|199912271408|CHARRIS|ADT^A04|1817457|D|2.5|\n\n" +
	"PID||0493575^^^2^ID 1|454721||DOE^JOHN^^^^|DOE^JOHN^^^^|19480203|M||B|254 MYSTREET AVE^^MYTOWN^OH^44123^USA||(216)123-4567|||M|NON|400003403~1129086|\n\n" +
	"NK1||ROE^MARIE^^^^|SPO||(216)123-4567||EC|||||||||||||||||||||||||||\n\n" +
	"PV1||O|168 ~219~C~PMA^^^^^^^^^||||277^ALLEN MYLASTNAME^BONNIE^^^^|||||||||| ||2688684|||||||||||||||||||||||||199912271408||||||002376853\n"

// ADTSegments is the number of segments in ADT.
const ADTSegments = 4

// Lab is a result message with repeated OBX segments and an escaped value.
const Lab = "MSH|^~\\&|LAB|HOSP|EMR|HOSP|20240102083000||ORU^R01|MSG00042|P|2.5.1\r" +
	"PID|1||123456789^^^HOSP^MR||SMITH^ANNA^M||19610615|F|||12 ELM ST^^SPRINGFIELD^IL^62701||(217)555-0142\r" +
	"OBR|1||LAB-77|CBC^Complete blood count\r" +
	"OBX|1|NM|WBC^White cells||7.2|10\\S\\9/L|4.0-11.0|N\r" +
	"OBX|2|NM|HGB^Hemoglobin||13.1|g/dL|12.0-16.0|N\r" +
	"OBX|3|TX|NOTE^Comment||Fasting \\T\\ hydrated|"

// Patient is a bound view of the PID segment with processing tags.
type Patient struct {
	MRN       string   `hl7:"PID.3.1" receive.hash:"sha256"`
	Family    string   `hl7:"PID.5.1" send.mask:"name"`
	Given     string   `hl7:"PID.5.2" send.mask:"name"`
	BirthDate string   `hl7:"PID.7" send.mask:"date"`
	Sex       string   `hl7:"PID.8"`
	Phone     string   `hl7:"PID.13" store.encrypt:"aes" load.decrypt:"aes" send.mask:"phone"`
	SSN       string   `hl7:"PID.19" send.redact:"***"`
	Accounts  []string `hl7:"PID.18"`
	Visit     *Visit
}

// Visit is a nested view of PV1.
type Visit struct {
	Class    string `hl7:"PV1.2"`
	Location string `hl7:"PV1.3.1"`
}

// TestKey returns a valid 32-byte AES key for testing.
func TestKey(t testing.TB) []byte {
	t.Helper()
	return []byte("32-byte-key-for-aes-256-encrypt!")
}

// TestEncryptor returns an AES encryptor configured for testing.
func TestEncryptor(t testing.TB) hl7.Encryptor {
	t.Helper()
	enc, err := hl7.AES(TestKey(t))
	if err != nil {
		t.Fatalf("AES() error: %v", err)
	}
	return enc
}

// MustParse parses raw or fails the test.
func MustParse(t testing.TB, raw string) *hl7.Message {
	t.Helper()
	m, err := hl7.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return m
}

// MustGet reads path from m or fails the test.
func MustGet(t testing.TB, m *hl7.Message, path string) string {
	t.Helper()
	v, err := m.Get(path)
	if err != nil {
		t.Fatalf("Get(%q) error: %v", path, err)
	}
	return v
}
