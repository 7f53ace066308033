package search

import (
	"strings"

	"github.com/ternarybob/respondeo/internal/models"
)

// Decider classifies whether a user message warrants web search augmentation.
// It is a pure function of the message and history: deterministic, no I/O,
// no side effects. The trigger table marks informational or time-sensitive
// intent and is tunable via configuration; the default set is deliberately
// coarse.
type Decider struct {
	triggers []string
}

// NewDecider creates a search decider with the given trigger keywords.
func NewDecider(triggers []string) *Decider {
	lowered := make([]string, 0, len(triggers))
	for _, t := range triggers {
		if trimmed := strings.TrimSpace(strings.ToLower(t)); trimmed != "" {
			lowered = append(lowered, trimmed)
		}
	}
	return &Decider{triggers: lowered}
}

// NeedsSearch reports whether the message matches any trigger keyword,
// case-insensitively. History is accepted for future refinement but does not
// influence the decision today.
func (d *Decider) NeedsSearch(message string, history []models.ChatMessage) bool {
	lowered := strings.ToLower(message)
	for _, trigger := range d.triggers {
		if strings.Contains(lowered, trigger) {
			return true
		}
	}
	return false
}
