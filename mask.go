package hl7

import (
	"strings"
	"unicode"
)

// MaskType represents a kind of patient data with masking rules.
type MaskType string

const (
	MaskName       MaskType = "name"       // DOE -> D**
	MaskPhone      MaskType = "phone"      // (555)555-2004 -> (***) ***-2004
	MaskSSN        MaskType = "ssn"        // 123-45-6789 -> ***-**-6789
	MaskEmail      MaskType = "email"      // jdoe@example.com -> j***@example.com
	MaskDate       MaskType = "date"       // 19610615 -> 1961****
	MaskIdentifier MaskType = "identifier" // 0123456789 -> ******6789
	MaskPostal     MaskType = "postal"     // 90210-1234 -> 902**-****
)

// Masker applies content-aware masking to a plain-text value.
type Masker interface {
	Mask(value string) string
}

// MaskerFunc adapts a function to the Masker interface.
type MaskerFunc func(string) string

// Mask calls f(value).
func (f MaskerFunc) Mask(value string) string {
	return f(value)
}

// NameMasker keeps the first letter of each word.
func NameMasker() Masker {
	return MaskerFunc(func(value string) string {
		words := strings.Fields(value)
		for i, word := range words {
			runes := []rune(word)
			words[i] = string(runes[0]) + strings.Repeat("*", len(runes)-1)
		}
		return strings.Join(words, " ")
	})
}

// PhoneMasker keeps the last 4 digits.
func PhoneMasker() Masker {
	return MaskerFunc(func(value string) string {
		digits := extractDigits(value)
		if len(digits) < 4 {
			return strings.Repeat("*", len(value))
		}
		last4 := digits[len(digits)-4:]
		switch {
		case strings.HasPrefix(value, "(") && len(digits) >= 10:
			return "(***) ***-" + last4
		case len(digits) >= 10:
			return "***-***-" + last4
		default:
			return "***-" + last4
		}
	})
}

// SSNMasker keeps the last 4 digits.
func SSNMasker() Masker {
	return MaskerFunc(func(value string) string {
		digits := extractDigits(value)
		if len(digits) < 4 {
			return strings.Repeat("*", len(value))
		}
		return "***-**-" + digits[len(digits)-4:]
	})
}

// EmailMasker keeps the first character of the local part and the domain.
func EmailMasker() Masker {
	return MaskerFunc(func(value string) string {
		at := strings.LastIndex(value, "@")
		if at < 1 {
			return strings.Repeat("*", len(value))
		}
		return value[:1] + "***" + value[at:]
	})
}

// DateMasker keeps the year of an HL7 date or timestamp (YYYY[MM[DD[HHMM...]]]).
// Time zone offsets are masked with the rest.
func DateMasker() Masker {
	return MaskerFunc(func(value string) string {
		if len(value) < 4 || len(extractDigits(value[:4])) != 4 {
			return strings.Repeat("*", len(value))
		}
		return value[:4] + maskAlnum(value[4:], 0)
	})
}

// IdentifierMasker keeps the last 4 characters of an identifier such as an MRN
// or account number, preserving its length.
func IdentifierMasker() Masker {
	return MaskerFunc(func(value string) string {
		if len(value) <= 4 {
			return strings.Repeat("*", len(value))
		}
		return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
	})
}

// PostalMasker keeps the first 3 alphanumerics of a postal code, which for US
// ZIP codes is the largest prefix permitted in de-identified data.
func PostalMasker() Masker {
	return MaskerFunc(func(value string) string {
		return maskAlnum(value, 3)
	})
}

// extractDigits returns only the digit characters from a string.
func extractDigits(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

// maskAlnum replaces letters and digits after the first keep of them, leaving
// separators in place.
func maskAlnum(s string, keep int) string {
	var b strings.Builder
	b.Grow(len(s))
	seen := 0
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		seen++
		if seen <= keep {
			b.WriteRune(r)
		} else {
			b.WriteByte('*')
		}
	}
	return b.String()
}

func builtinMaskers() map[MaskType]Masker {
	return map[MaskType]Masker{
		MaskName:       NameMasker(),
		MaskPhone:      PhoneMasker(),
		MaskSSN:        SSNMasker(),
		MaskEmail:      EmailMasker(),
		MaskDate:       DateMasker(),
		MaskIdentifier: IdentifierMasker(),
		MaskPostal:     PostalMasker(),
	}
}
