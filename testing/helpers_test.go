package testing

import (
	"testing"
)

func TestTestKey(t *testing.T) {
	key := TestKey(t)
	if len(key) != 32 {
		t.Errorf("TestKey() length = %d, want 32", len(key))
	}
}

func TestTestEncryptor(t *testing.T) {
	enc := TestEncryptor(t)

	plaintext := []byte("test")
	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	decrypted, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Errorf("round-trip failed")
	}
}

func TestFixturesParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		segments int
		msgType  string
	}{
		{"minimal", MinimalHeader, 1, "ADT"},
		{"adt", ADT, ADTSegments, "ADT"},
		{"lab", Lab, 6, "ORU"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MustParse(t, tt.raw)
			if got := len(m.Segments()); got != tt.segments {
				t.Errorf("len(Segments()) = %d, want %d", got, tt.segments)
			}
			if got := MustGet(t, m, "MSH.9.1"); got != tt.msgType {
				t.Errorf("MSH.9.1 = %q, want %q", got, tt.msgType)
			}
		})
	}
}
