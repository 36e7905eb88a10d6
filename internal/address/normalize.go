package address

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MinLength = 3
	// MaxLength is the DNS label limit.
	MaxLength = 63
)

// letters NFKD does not decompose into base + mark
var foldReplacer = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "Æ", "ae", "ø", "o", "Ø", "o",
	"œ", "oe", "Œ", "oe", "ł", "l", "Ł", "l", "đ", "d", "Đ", "d", "þ", "th",
)

// Normalize turns raw operator input into a candidate name. Diacritics are
// folded, everything outside [a-z0-9] collapses into single hyphens, and
// leading/trailing hyphens are trimmed. Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, foldReplacer.Replace(raw))
	if err != nil {
		folded = raw
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// FormatError describes why a name fails the format rules.
type FormatError struct {
	Name   string
	Detail string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid address %q: %s", e.Name, e.Detail)
}

// CheckFormat applies the naming rules to an already normalized name.
func CheckFormat(name string) error {
	if len(name) < MinLength {
		return &FormatError{Name: name, Detail: fmt.Sprintf("must be at least %d characters", MinLength)}
	}
	if len(name) > MaxLength {
		return &FormatError{Name: name, Detail: fmt.Sprintf("must be at most %d characters", MaxLength)}
	}
	for _, r := range name {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return &FormatError{Name: name, Detail: "only lowercase letters, digits and hyphens are allowed"}
		}
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return &FormatError{Name: name, Detail: "must not start or end with a hyphen"}
	}
	return nil
}
