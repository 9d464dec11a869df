// Package normalize holds the pure field-cleaning helpers shared by all
// provider adapters.
package normalize

import (
	"html"
	"regexp"
	"strings"
)

// Column limits for the persisted job record. Truncation is a hard
// cutoff, not word-aware.
const (
	MaxTitle     = 512
	MaxURL       = 1024
	MaxLocation  = 512
	MaxWorkplace = 128
	MaxSalary    = 255
	MaxCompany   = 255
)

var (
	salaryRe = regexp.MustCompile(`(?i)(\$|€|£)\s?\d[\d,\. ]{2,}\s?(?:-\s?(\$|€|£)?\s?\d[\d,\. ]{2,})?`)
	tagRe    = regexp.MustCompile(`<[^>]*>`)
)

// Truncate trims surrounding whitespace and cuts value to max runes.
func Truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if len(runes) > max {
		return string(runes[:max])
	}
	return value
}

// ExtractSalary returns the first currency-anchored amount (optionally a
// range) found in text, or "" when there is none.
func ExtractSalary(text string) string {
	if text == "" {
		return ""
	}
	match := salaryRe.FindString(text)
	if match == "" {
		return ""
	}
	return Truncate(match, MaxSalary)
}

// StripHTML converts rich-text markup to plain text, collapsing runs of
// whitespace to single spaces.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	// Unescape first: some boards ship the markup entity-escaped.
	s = html.UnescapeString(s)
	s = tagRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Workplace infers the remote flag from the raw location string.
func Workplace(location string) string {
	if strings.Contains(strings.ToLower(location), "remote") {
		return "Remote"
	}
	return ""
}
