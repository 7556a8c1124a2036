// Package modfilter screens chat messages for external links and server
// invites, which are disallowed in the community channels.
package modfilter

import "strings"

// defaultPatterns are the substrings that mark a message as containing a
// link or invite.
var defaultPatterns = []string{
	"discord.gg/",
	"http://",
	"https://",
	"www.",
}

// Verdict is the result of checking a single message.
type Verdict struct {
	Blocked bool   `json:"blocked"`
	Pattern string `json:"pattern,omitempty"` // first pattern that matched
}

// Filter checks message content against a set of blocked substrings.
// Matching is case-insensitive.
type Filter struct {
	patterns []string
}

// New creates a Filter with the default pattern set.
func New() *Filter {
	return &Filter{patterns: defaultPatterns}
}

// NewWithPatterns creates a Filter with a custom pattern set. Patterns are
// matched case-insensitively; empty patterns are ignored.
func NewWithPatterns(patterns []string) *Filter {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p != "" {
			cleaned = append(cleaned, strings.ToLower(p))
		}
	}
	return &Filter{patterns: cleaned}
}

// Check inspects content and returns the verdict for it.
func (f *Filter) Check(content string) Verdict {
	lowered := strings.ToLower(content)
	for _, p := range f.patterns {
		if strings.Contains(lowered, p) {
			return Verdict{Blocked: true, Pattern: p}
		}
	}
	return Verdict{}
}
