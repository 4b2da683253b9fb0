package assistant

import "strings"

// SystemPrompt is the default instruction placed first in every prompt.
const SystemPrompt = "You are a helpful and proactive financial assistant. " +
	"You help the user understand, analyze, and project their personal spending based on uploaded bills. " +
	"All amounts are in Icelandic króna (kr). " +
	"DATES ARE IN THE FORMAT YYYY-MM-DD. " +
	"Be concise and clear."

// BuildPrompt assembles the full completion prompt: the system line with the
// data block appended, a one-line summary of turns older than maxTurns, then
// the recent turns verbatim.
func BuildPrompt(system, dataContext string, turns []Turn, maxTurns int) string {
	if system == "" {
		system = SystemPrompt
	}
	if dataContext != "" {
		system = system + "\n\n" + dataContext
	}

	older, recent := Split(turns, maxTurns)
	lines := make([]string, 0, len(recent)+2)
	lines = append(lines, "System: "+system)
	if summary := Summarize(older); summary != "" {
		lines = append(lines, "(Summary of earlier conversation): "+summary)
	}
	for _, t := range recent {
		if t.Role == RoleUser {
			lines = append(lines, "User: "+t.Content)
		} else {
			lines = append(lines, "Assistant: "+t.Content)
		}
	}
	return strings.Join(lines, "\n")
}
