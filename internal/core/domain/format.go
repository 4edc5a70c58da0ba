package domain

import (
	"regexp"
	"strings"
	"unicode"
)

var nonDigits = regexp.MustCompile(`\D`)

// FormatPhone renders ten-digit numbers as (###) ###-####. Other values are
// returned unchanged, and a missing value renders as N/A.
func FormatPhone(phone *string) string {
	if phone == nil || *phone == "" {
		return NoValue
	}
	digits := nonDigits.ReplaceAllString(*phone, "")
	if len(digits) != 10 {
		return *phone
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
}

// PreviewMemberID mirrors how the API derives a family id for a new primary
// member: three letters of the last name and two of the first, each part
// capitalised, padded with spaces when a name is short.
func PreviewMemberID(name, lastName string) string {
	name = strings.TrimSpace(name)
	lastName = strings.TrimSpace(lastName)
	if name == "" || lastName == "" {
		return ""
	}
	return capitalise(padRunes(lastName, 3)) + capitalise(padRunes(name, 2))
}

func padRunes(s string, n int) []rune {
	r := []rune(s)
	for len(r) < n {
		r = append(r, ' ')
	}
	return r[:n]
}

func capitalise(r []rune) string {
	out := make([]rune, len(r))
	for i, c := range r {
		if i == 0 {
			out[i] = unicode.ToUpper(c)
		} else {
			out[i] = unicode.ToLower(c)
		}
	}
	return string(out)
}
