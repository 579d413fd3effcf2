package quiz

import (
	"strings"
	"unicode"
)

// ContactInfo holds the contact details found in a submission. A nil field
// means the submission did not provide it.
type ContactInfo struct {
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// ExtractContactInfo scans the responses in order and collects contact
// details. Later responses overwrite earlier ones field by field.
func ExtractContactInfo(questions Questions, raw []RawResponse) ContactInfo {
	return extractContact(Bind(questions, raw))
}

func extractContact(responses []Response) ContactInfo {
	var info ContactInfo

	for _, r := range responses {
		switch r.Question.(type) {
		case *EmailQuestion:
			if s, ok := r.Answer.(StringAnswer); ok {
				if email := strings.TrimSpace(string(s)); email != "" {
					info.Email = ptr(strings.ToLower(email))
				}
			}
		case *PhoneQuestion:
			if s, ok := r.Answer.(StringAnswer); ok && strings.TrimSpace(string(s)) != "" {
				info.Phone = ptr(NormalizePhone(string(s)))
			}
		case *NameQuestion:
			switch a := r.Answer.(type) {
			case ObjectAnswer:
				if first, ok := a.Field("firstName"); ok {
					info.FirstName = ptr(first)
				}
				if last, ok := a.Field("lastName"); ok {
					info.LastName = ptr(last)
				}
			case StringAnswer:
				parts := strings.Fields(string(a))
				if len(parts) == 0 {
					continue
				}
				info.FirstName = ptr(parts[0])
				if len(parts) > 1 {
					info.LastName = ptr(strings.Join(parts[1:], " "))
				}
			}
		}
	}

	return info
}

// NormalizePhone strips spaces, hyphens and parentheses and prefixes a
// leading "+" when the number starts with a digit. It never rejects input.
func NormalizePhone(phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '(' || r == ')' {
			return -1
		}
		return r
	}, phone)

	if cleaned != "" && cleaned[0] >= '0' && cleaned[0] <= '9' {
		return "+" + cleaned
	}
	return cleaned
}

func ptr[T any](v T) *T {
	return &v
}
