package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// 联系方式类型
const (
	ContactPhone     = "phone"
	ContactEmail     = "email"
	ContactWebsite   = "website"
	ContactAddress   = "address"
	ContactWhatsApp  = "whatsapp"
	ContactInstagram = "instagram"
	ContactFacebook  = "facebook"
	ContactText      = "text"
)

// ContactMethod 单个联系方式
type ContactMethod struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ContactMethods accepts the stored shapes seen in the wild: a list of
// {type,value} objects or plain strings, an object keyed by type, or a single
// free-text string. Entries it cannot read are dropped instead of failing the
// whole document. It always encodes as a list.
type ContactMethods []ContactMethod

func (c *ContactMethods) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*c = nil
		return nil
	}

	switch trimmed[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		list := make([]ContactMethod, 0, len(raw))
		for _, item := range raw {
			if m, ok := decodeContactEntry(item); ok {
				list = append(list, m)
			}
		}
		*c = compactContacts(list)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		list := make([]ContactMethod, 0, len(keys))
		for _, k := range keys {
			// nested objects and arrays (e.g. a "social" block) are skipped
			if v, ok := scalarString(obj[k]); ok {
				list = append(list, ContactMethod{Type: k, Value: v})
			}
		}
		*c = compactContacts(list)
	default:
		v, ok := scalarString(data)
		if !ok || strings.TrimSpace(v) == "" {
			*c = nil
			return nil
		}
		*c = ContactMethods{{Type: ContactText, Value: strings.TrimSpace(v)}}
	}
	return nil
}

// decodeContactEntry reads one list element: a {type,value} object or a bare
// string whose type is inferred from its content.
func decodeContactEntry(raw json.RawMessage) (ContactMethod, bool) {
	if v, ok := scalarString(raw); ok {
		return ContactMethod{Type: InferContactType(v), Value: v}, true
	}
	var obj struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ContactMethod{}, false
	}
	v, ok := scalarString(obj.Value)
	if !ok {
		return ContactMethod{}, false
	}
	if obj.Type == "" {
		obj.Type = InferContactType(v)
	}
	return ContactMethod{Type: obj.Type, Value: v}, true
}

// scalarString returns a JSON string or number as text.
func scalarString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// InferContactType 根据内容猜测联系方式类型，猜不出时为 text
func InferContactType(v string) string {
	v = strings.TrimSpace(v)
	lower := strings.ToLower(v)
	switch {
	case v == "":
		return ContactText
	case strings.HasPrefix(lower, "mailto:"), strings.Contains(v, "@") && !strings.ContainsAny(v, " /"):
		return ContactEmail
	case strings.HasPrefix(lower, "tel:"):
		return ContactPhone
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "www."):
		return ContactWebsite
	}
	digits := 0
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')' || r == '/' || r == '.':
		default:
			return ContactText
		}
	}
	if digits >= 3 {
		return ContactPhone
	}
	return ContactText
}

func compactContacts(in []ContactMethod) ContactMethods {
	out := make(ContactMethods, 0, len(in))
	for _, m := range in {
		m.Type = strings.ToLower(strings.TrimSpace(m.Type))
		m.Value = strings.TrimSpace(m.Value)
		if m.Value == "" {
			continue
		}
		if m.Type == "" {
			m.Type = ContactText
		}
		out = append(out, m)
	}
	return out
}
