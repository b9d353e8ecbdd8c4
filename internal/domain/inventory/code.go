package inventory

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/erp/retail/internal/domain/shared"
)

const (
	// DefaultCodePrefix is used when a name yields no initials
	DefaultCodePrefix = "UR"
	// BlankNameCode is returned for an empty product name
	BlankNameCode = "X101"
	// FirstCodeNumber is the number given to the first product of a prefix
	FirstCodeNumber = 101
)

// CodePrefix derives the product-code prefix from the initials of the name's words
func CodePrefix(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteString(shared.UpperTurkish(string(r)))
				break
			}
		}
	}
	if b.Len() == 0 {
		return DefaultCodePrefix
	}
	return b.String()
}

// NextCode returns prefix plus one more than the highest numeric suffix among existing codes
func NextCode(prefix string, existing []string) string {
	highest, found := 0, false
	for _, code := range existing {
		if !strings.HasPrefix(code, prefix) {
			continue
		}
		n, err := strconv.Atoi(code[len(prefix):])
		if err != nil || n < 0 {
			continue
		}
		if !found || n > highest {
			highest, found = n, true
		}
	}
	if !found {
		return prefix + strconv.Itoa(FirstCodeNumber)
	}
	return prefix + strconv.Itoa(highest+1)
}
