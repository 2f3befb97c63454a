package tools

import (
	"regexp"
	"strings"
)

// MaskedSecretValue replaces secret material in user-facing text.
const MaskedSecretValue = "**********"

// Secrets shorter than this are not masked; masking them would mangle
// ordinary words.
const minSecretLen = 6

var tokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._~+/=-]{8,}`),
	regexp.MustCompile(`(?i)("(?:access_token|refresh_token|id_token|client_secret|private_key|password|api_key)"\s*:\s*")[^"]*`),
	regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z ]*PRIVATE KEY-----`),
}

// Redactor masks known credential values and token-shaped substrings.
type Redactor struct {
	secrets []string
}

func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{}
	for _, s := range secrets {
		if s = strings.TrimSpace(s); len(s) >= minSecretLen {
			r.secrets = append(r.secrets, s)
		}
	}
	return r
}

// Redact returns s with secret material masked.
func (r *Redactor) Redact(s string) string {
	if r == nil || s == "" {
		return s
	}
	for _, secret := range r.secrets {
		s = strings.ReplaceAll(s, secret, MaskedSecretValue)
	}
	s = tokenPatterns[0].ReplaceAllString(s, "${1}"+MaskedSecretValue)
	s = tokenPatterns[1].ReplaceAllString(s, "${1}"+MaskedSecretValue)
	s = tokenPatterns[2].ReplaceAllString(s, MaskedSecretValue)
	return s
}
