package services

import (
	"fmt"
	"strings"
)

const selectionPromptTemplate = `You are a vehicle diagnostics assistant.
Select the 5 most relevant troubleshooting steps from the list below
based on this issue description.

Issue: %q

List of steps:
%s

Respond with exactly 5 steps from the list, one per line, no extra text.
`

// buildSelectionPrompt embeds the issue description and the full candidate
// pool into the instruction sent to the completion backend.
func buildSelectionPrompt(description string, pool []string) string {
	var list strings.Builder
	for _, step := range pool {
		list.WriteString("- ")
		list.WriteString(step)
		list.WriteString("\n")
	}
	return fmt.Sprintf(selectionPromptTemplate, description, strings.TrimRight(list.String(), "\n"))
}
