package hl7

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedNow(t *testing.T) {
	t.Helper()
	prev := now
	now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	t.Cleanup(func() { now = prev })
}

func TestAck(t *testing.T) {
	fixedNow(t)
	m := mustParse(t, adt)

	ack, err := m.Ack(AckAccept, "stored & indexed")
	if err != nil {
		t.Fatalf("Ack() error: %v", err)
	}

	for path, want := range map[string]string{
		"MSH.3":  "SMS",
		"MSH.4":  "SMSADT",
		"MSH.5":  "EPIC",
		"MSH.6":  "EPICADT",
		"MSH.7":  "20240102030405",
		"MSH.8":  "",
		"MSH.9":  "ACK^A04^ACK",
		"MSH.11": "D",
		"MSH.12": "2.5",
		"MSA.1":  "AA",
		"MSA.2":  "1817457",
		"MSA.3":  `stored \T\ indexed`,
	} {
		if got, err := ack.Get(path); err != nil || got != want {
			t.Errorf("Get(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if id := ack.ControlID(); len(id) != 20 || id == m.ControlID() {
		t.Errorf("ControlID() = %q", id)
	}
	if got, _ := ack.Text("MSA.3"); got != "stored & indexed" {
		t.Errorf("Text(MSA.3) = %q", got)
	}
	if got := len(ack.Segments()); got != 2 {
		t.Errorf("Segments() = %d, want 2", got)
	}
	if err := ack.SetPath("MSH.1", "#"); !errors.Is(err, ErrDelimitersLocked) {
		t.Errorf("SetPath(MSH.1) error = %v, want ErrDelimitersLocked", err)
	}
	if !strings.HasPrefix(ack.Build(), "MSH|^~\\&|SMS|SMSADT|EPIC|EPICADT|20240102030405||ACK^A04^ACK|") {
		t.Errorf("Build() = %q", ack.Build())
	}
}

func TestAck_NoText(t *testing.T) {
	fixedNow(t)
	ack, err := mustParse(t, header).Ack(AckReject, "")
	if err != nil {
		t.Fatalf("Ack() error: %v", err)
	}
	msa, _ := ack.Find("MSA")
	if got := msa.String(); got != "MSA|AR|1817457" {
		t.Errorf("MSA = %q", got)
	}
}

func TestAck_CustomDelimiters(t *testing.T) {
	fixedNow(t)
	m := mustParse(t, "MSH#$*!%#APP#FAC#EMR#HOSP###ORU$R01#42#P#2.5")
	ack, err := m.Ack(AckError, "bad#value")
	if err != nil {
		t.Fatalf("Ack() error: %v", err)
	}
	if ack.Delimiters() != m.Delimiters() {
		t.Errorf("Delimiters() = %+v", ack.Delimiters())
	}
	if got, _ := ack.Get("MSH.9"); got != "ACK$R01$ACK" {
		t.Errorf("MSH.9 = %q", got)
	}
	if got, _ := ack.Get("MSA.3"); got != "bad!F!value" {
		t.Errorf("MSA.3 = %q", got)
	}
}

func TestAck_NoHeader(t *testing.T) {
	m := New()
	_, _ = m.CreateSegment("PID")
	if _, err := m.Ack(AckAccept, ""); !errors.Is(err, ErrSegmentNotFound) {
		t.Errorf("Ack() error = %v, want ErrSegmentNotFound", err)
	}
}

func TestNewControlID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewControlID()
		if len(id) != 20 || strings.Contains(id, "-") {
			t.Fatalf("NewControlID() = %q", id)
		}
		if seen[id] {
			t.Fatalf("NewControlID() repeated %q", id)
		}
		seen[id] = true
	}
}
