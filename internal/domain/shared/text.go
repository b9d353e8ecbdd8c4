package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeSearchText joins the non-empty parts and folds them into a
// lowercase, diacritic-free form so "İstanbul Öğrenci" matches "istanbul ogrenci".
func NormalizeSearchText(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return ""
	}

	// Casers and transformers are stateful, so they are built per call.
	lowered := cases.Lower(language.Turkish).String(strings.Join(kept, " "))
	lowered = strings.ReplaceAll(lowered, "ı", "i")

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, lowered)
	if err != nil {
		return lowered
	}
	return folded
}

// UpperTurkish uppercases s with Turkish casing rules (i → İ, ı → I)
func UpperTurkish(s string) string {
	return cases.Upper(language.Turkish).String(s)
}

// NormalizePhone keeps only the digits of a phone number
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
