package sanitize

import (
	"html"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const maxPasses = 8

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy

	octets     = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	whitespace = regexp.MustCompile(`[\r\n\t ]+`)
)

// Text reduces user input to a single line of plain text: markup is stripped,
// entities decoded, percent-encoded octets removed and runs of whitespace
// collapsed to one space. The result is stable under a second pass.
func Text(raw string) string {
	if raw == "" {
		return ""
	}
	if !utf8.ValidString(raw) {
		raw = strings.ToValidUTF8(raw, "")
	}

	current := raw
	for range maxPasses {
		next := textPass(current)
		if next == current {
			break
		}
		current = next
	}
	return current
}

func textPass(value string) string {
	cleaned := textSanitizer().Sanitize(value)
	cleaned = html.UnescapeString(cleaned)
	cleaned = octets.ReplaceAllString(cleaned, "")
	cleaned = whitespace.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// Texts applies Text to each value, dropping entries that sanitize to empty.
func Texts(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if cleaned := Text(value); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
