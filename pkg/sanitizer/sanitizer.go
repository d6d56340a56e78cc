package sanitizer

import (
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

func lower(s string) string {
	return strings.ToLower(s)
}

// SanitizeEmail trims and lowercases an address. Shape is checked by the validator.
func SanitizeEmail(input string) string {
	return Pipeline{trim, lower}.Apply(input)
}

func SanitizeName(input string) string {
	return Pipeline{TrimAndNormalize}.Apply(input)
}

// SanitizeFreeText trims surrounding space but keeps line breaks inside the text.
func SanitizeFreeText(input string) string {
	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = TrimAndNormalize(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SanitizeClock trims an HH:MM value and pads a single-digit hour, so "9:30"
// becomes "09:30". Anything else is returned trimmed for the validator to reject.
func SanitizeClock(input string) string {
	s := trim(input)
	if len(s) == 4 && s[1] == ':' && s[0] >= '0' && s[0] <= '9' {
		return "0" + s
	}
	return s
}
