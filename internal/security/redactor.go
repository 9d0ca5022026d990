package security

import (
	"regexp"
	"strings"
	"sync"
)

// RedactPlaceholder replaces every secret found in a string.
const RedactPlaceholder = "***REDACTED***"

// botTokenPattern matches Telegram bot tokens, including when they appear
// inside an API URL path as bot<token>.
var botTokenPattern = regexp.MustCompile(`\b(?:bot)?\d{5,}:[A-Za-z0-9_-]{30,}`)

// Redactor hides bot tokens and webhook secrets in log output.
// It is safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	literals []string
}

// NewRedactor returns a Redactor that recognises Telegram bot tokens and
// every literal given.
func NewRedactor(literals ...string) *Redactor {
	r := &Redactor{patterns: []*regexp.Regexp{botTokenPattern}}
	for _, l := range literals {
		r.AddLiteral(l)
	}
	return r
}

// AddPattern registers an extra pattern.
func (r *Redactor) AddPattern(pattern *regexp.Regexp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, pattern)
}

// AddLiteral registers a value that must never be logged. Empty strings
// are ignored.
func (r *Redactor) AddLiteral(secret string) {
	if secret == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.literals = append(r.literals, secret)
}

// Redact replaces known secrets in s with RedactPlaceholder.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	patterns := r.patterns
	literals := r.literals
	r.mu.RUnlock()

	// Literals first: a configured token is also matched by the pattern,
	// and replacing it whole keeps the output stable.
	for _, lit := range literals {
		if strings.Contains(s, lit) {
			s = strings.ReplaceAll(s, lit, RedactPlaceholder)
		}
	}
	for _, p := range patterns {
		s = p.ReplaceAllString(s, RedactPlaceholder)
	}
	return s
}
