// ABOUTME: Assembles the prompt context from conversation history and sources
// ABOUTME: Trims history before sources; the top-ranked source is never dropped
package conversation

import (
	"strings"

	"github.com/HelloJC24/BNGCIA/internal/models"
)

// ContextBuilder formats retrieved sources and recent history into the
// user-prompt context block.
type ContextBuilder struct {
	maxHistoryTurns int
	budget          int
}

// NewContextBuilder creates a context builder. maxHistoryTurns caps the
// turns included in the prompt; budget caps the total context characters
// (0 disables the cap).
func NewContextBuilder(maxHistoryTurns, budget int) *ContextBuilder {
	return &ContextBuilder{maxHistoryTurns: maxHistoryTurns, budget: budget}
}

// Build renders history and source pieces into one prompt context string.
// When the result exceeds the budget, history is trimmed oldest-first, then
// sources lowest-ranked-first; the first source piece is always kept.
func (b *ContextBuilder) Build(history []models.Turn, pieces []string) string {
	if b.maxHistoryTurns > 0 && len(history) > b.maxHistoryTurns {
		history = history[len(history)-b.maxHistoryTurns:]
	}

	rendered := render(history, pieces)
	if b.budget <= 0 || len(rendered) <= b.budget {
		return rendered
	}

	// Over budget: shed history from the oldest end first
	for len(history) > 0 && len(rendered) > b.budget {
		history = history[1:]
		rendered = render(history, pieces)
	}
	// Still over: shed sources from the lowest-ranked end, keeping pieces[0]
	for len(pieces) > 1 && len(rendered) > b.budget {
		pieces = pieces[:len(pieces)-1]
		rendered = render(history, pieces)
	}
	return rendered
}

func render(history []models.Turn, pieces []string) string {
	var sb strings.Builder

	if len(history) > 0 {
		sb.WriteString("PREVIOUS CONVERSATION:\n")
		for _, turn := range history {
			sb.WriteString(roleLabel(turn.Role))
			sb.WriteString(": ")
			sb.WriteString(turn.Content)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(pieces) > 0 {
		sb.WriteString("SOURCES:\n")
		sb.WriteString(strings.Join(pieces, "\n---\n"))
	}

	return sb.String()
}

func roleLabel(role models.Role) string {
	if role == models.RoleAssistant {
		return "ASSISTANT"
	}
	return "USER"
}
