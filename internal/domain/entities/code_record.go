package entities

import (
	"regexp"
	"strings"
	"time"
)

// DefaultSource is used when a record carries no provenance label.
const DefaultSource = "OBD-Codes.com"

// CodeRecord is one diagnostic trouble code with its stored explanation and
// any previously generated DIY guidance.
type CodeRecord struct {
	Code          string     `json:"code" db:"code"`
	Description   string     `json:"description" db:"description"`
	Summary       string     `json:"summary" db:"summary"`
	DiyChecks     string     `json:"diy_checks" db:"diy_checks"`
	Source        string     `json:"source" db:"source"`
	AILastUpdated *time.Time `json:"ai_last_updated" db:"ai_last_updated"`
}

var sentenceEnd = regexp.MustCompile(`(?s)(.*?[.!?])(?:\s+|$)`)

const (
	summaryMaxSentences = 3
	summaryMaxWidth     = 500
)

// Summarize derives a short summary from a description: the first three
// sentences, capped at 500 characters with a trailing ellipsis.
func Summarize(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "No summary available."
	}

	var sentences []string
	rest := trimmed
	for len(sentences) < summaryMaxSentences {
		loc := sentenceEnd.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		sentences = append(sentences, rest[loc[2]:loc[3]])
		rest = rest[loc[1]:]
	}
	if len(sentences) == 0 {
		sentences = []string{trimmed}
	}

	summary := strings.Join(sentences, " ")
	if len(summary) > summaryMaxWidth {
		cut := summaryMaxWidth - len("...")
		if idx := strings.LastIndex(summary[:cut], " "); idx > 0 {
			cut = idx
		}
		summary = strings.TrimRight(summary[:cut], " ") + "..."
	}
	return summary
}
