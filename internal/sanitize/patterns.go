// Package sanitize redacts API keys and similar secrets from text before it
// reaches logs, error messages or the screen.
package sanitize

import "regexp"

// Pattern represents a compiled regex pattern for secret detection
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// secretPatterns run in order. The query parameter pattern comes first so a
// key in a request URL keeps its parameter name.
var secretPatterns = []Pattern{
	{
		Name:        "Key Query Parameter",
		Regex:       regexp.MustCompile(`([?&](?:key|api_key|access_token)=)[^&#\s"']+`),
		Replacement: "${1}[REDACTED]",
	},
	{
		Name:        "Google API Key",
		Regex:       regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
		Replacement: "[API_KEY_REDACTED]",
	},
	{
		Name:        "Generic Secret",
		Regex:       regexp.MustCompile(`(?i)\b(api_key|apikey|token|secret)\s*[=:]\s*[^\s&"']+`),
		Replacement: "$1=[REDACTED]",
	},
	{
		Name:        "Bearer Token",
		Regex:       regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._-]{20,}`),
		Replacement: "Bearer [TOKEN_REDACTED]",
	},
}

// GetSecretPatterns returns a copy of the secret detection patterns list.
func GetSecretPatterns() []Pattern {
	result := make([]Pattern, len(secretPatterns))
	copy(result, secretPatterns)
	return result
}
