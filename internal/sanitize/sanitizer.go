package sanitize

import (
	"errors"
	"net/url"
	"strings"
)

// Sanitizer replaces secrets in text with placeholders.
type Sanitizer struct {
	patterns []Pattern
	literals []string
}

// NewSanitizer creates a new Sanitizer with default patterns
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		patterns: GetSecretPatterns(),
	}
}

// NewSanitizerWithPatterns creates a Sanitizer with custom patterns
func NewSanitizerWithPatterns(patterns []Pattern) *Sanitizer {
	return &Sanitizer{
		patterns: patterns,
	}
}

// WithLiteral returns a copy that also redacts the exact value s, for keys
// that match no pattern. Values shorter than four bytes are ignored.
func (s *Sanitizer) WithLiteral(v string) *Sanitizer {
	v = strings.TrimSpace(v)
	if len(v) < 4 {
		return s
	}
	out := &Sanitizer{patterns: s.patterns}
	out.literals = append(append(out.literals, s.literals...), v)
	return out
}

// Sanitize removes sensitive data from the input string
// Returns the sanitized string with secrets replaced by placeholders
func (s *Sanitizer) Sanitize(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, lit := range s.literals {
		result = strings.ReplaceAll(result, lit, "[REDACTED]")
	}
	for _, p := range s.patterns {
		result = p.Regex.ReplaceAllString(result, p.Replacement)
	}
	return result
}

// URLError returns err with the request URL of a *url.Error redacted. The
// underlying cause is kept, so errors.Is still matches context errors.
func (s *Sanitizer) URLError(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	return &url.Error{Op: ue.Op, URL: s.Sanitize(ue.URL), Err: ue.Err}
}

// DefaultSanitizer is a package-level sanitizer for convenience
var DefaultSanitizer = NewSanitizer()

// Sanitize uses the default sanitizer to sanitize input
func Sanitize(input string) string {
	return DefaultSanitizer.Sanitize(input)
}

// URLError uses the default sanitizer to redact a *url.Error.
func URLError(err error) error {
	return DefaultSanitizer.URLError(err)
}
