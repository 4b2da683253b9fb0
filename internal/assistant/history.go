package assistant

import (
	"fmt"
	"strings"
	"sync"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultMaxTurns is how many of the most recent turns are kept verbatim.
// A turn is one message, so twelve turns are six question and answer pairs.
const DefaultMaxTurns = 12

const synopsisReplyRunes = 100

// Turn is one message of the conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History is an append-only conversation log owned by one session.
type History struct {
	mu    sync.RWMutex
	turns []Turn
}

// Append adds a turn at the end.
func (h *History) Append(t Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, t)
}

// Turns returns a copy of every turn in order.
func (h *History) Turns() []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of turns.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}

// Reset drops every turn.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}

// dropLast removes the final turn if it matches t.
func (h *History) dropLast(t Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.turns); n > 0 && h.turns[n-1] == t {
		h.turns = h.turns[:n-1]
	}
}

// Split divides turns into the older part and the most recent maxTurns.
func Split(turns []Turn, maxTurns int) (older, recent []Turn) {
	if maxTurns <= 0 || len(turns) <= maxTurns {
		return nil, turns
	}
	cut := len(turns) - maxTurns
	return turns[:cut], turns[cut:]
}

// Synopsis collapses one turn into a short line.
func Synopsis(t Turn) string {
	if t.Role == RoleUser {
		return "User asked about: " + t.Content
	}
	return fmt.Sprintf("Assistant replied briefly: %s...", firstRunes(t.Content, synopsisReplyRunes))
}

// Summarize joins the synopses of turns into one line, or returns "" for none.
func Summarize(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	parts := make([]string, len(turns))
	for i, t := range turns {
		parts[i] = Synopsis(t)
	}
	return strings.Join(parts, " | ")
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
