package render

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
)

// ContactEntry is one rendered contact method.
type ContactEntry struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Value string `json:"value"`
	Href  string `json:"href,omitempty"`
}

var contactLabels = map[string]string{
	domain.ContactPhone:     "Phone",
	domain.ContactEmail:     "Email",
	domain.ContactWebsite:   "Website",
	domain.ContactAddress:   "Address",
	domain.ContactWhatsApp:  "WhatsApp",
	domain.ContactInstagram: "Instagram",
	domain.ContactFacebook:  "Facebook",
	domain.ContactText:      "Contact",
}

func contactEntries(methods domain.ContactMethods) []ContactEntry {
	out := make([]ContactEntry, 0, len(methods))
	for _, m := range methods {
		label, ok := contactLabels[m.Type]
		if !ok && m.Type != "" {
			label = titleFirst(m.Type)
		}
		out = append(out, ContactEntry{
			Type:  m.Type,
			Label: label,
			Value: m.Value,
			Href:  contactHref(m.Type, m.Value),
		})
	}
	return out
}

// titleFirst upper-cases the first rune only.
func titleFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func contactHref(kind, value string) string {
	value = strings.TrimSpace(value)
	switch kind {
	case domain.ContactPhone:
		if d := dialable(value); d != "" {
			return "tel:" + d
		}
	case domain.ContactEmail:
		if strings.Contains(value, "@") && !strings.ContainsAny(value, " <>\"") {
			return "mailto:" + value
		}
	case domain.ContactWebsite:
		return webURL(value)
	case domain.ContactWhatsApp:
		if d := strings.TrimPrefix(dialable(value), "+"); d != "" {
			return "https://wa.me/" + d
		}
	case domain.ContactInstagram:
		return socialURL("https://instagram.com/", value)
	case domain.ContactFacebook:
		return socialURL("https://facebook.com/", value)
	case domain.ContactAddress:
		if value != "" {
			return "https://maps.google.com/?q=" + url.QueryEscape(value)
		}
	}
	return ""
}

func dialable(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	if b.Len() < 3 {
		return ""
	}
	return b.String()
}

func webURL(s string) string {
	if s == "" || strings.ContainsAny(s, " <>\"") {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return u.String()
}

func socialURL(base, handle string) string {
	if strings.HasPrefix(handle, "http://") || strings.HasPrefix(handle, "https://") {
		return webURL(handle)
	}
	handle = strings.TrimPrefix(handle, "@")
	if handle == "" || strings.ContainsAny(handle, " /?#<>\"") {
		return ""
	}
	return base + handle
}
