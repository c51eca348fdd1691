package chatbot

import (
	"strings"

	"github.com/dokuchat/dokuchat/types"
)

// History is the caller-owned conversation log for one request. It is never
// retained by the service; the only mutation is appending the current
// exchange before the updated log is handed back to the caller.
type History struct {
	turns []types.Turn
}

// NewHistory wraps the caller-supplied turns.
func NewHistory(turns []types.Turn) *History {
	return &History{turns: turns}
}

// Append adds one turn.
func (h *History) Append(role types.Role, content string) {
	h.turns = append(h.turns, types.Turn{Role: role, Content: content})
}

// Turns returns the full log, oldest first.
func (h *History) Turns() []types.Turn {
	return h.turns
}

// Render formats the most recent maxTurns*2 entries as prompt text, one
// "<label>: <content>" line per turn. Bounding by maxTurns*2 keeps the window
// symmetric over user and assistant turns. Empty history renders as "".
func (h *History) Render(maxTurns int) string {
	if len(h.turns) == 0 {
		return ""
	}

	recent := h.turns
	if bound := maxTurns * 2; len(recent) > bound {
		recent = recent[len(recent)-bound:]
	}

	lines := make([]string, 0, len(recent))
	for _, turn := range recent {
		label := "Asisten"
		if turn.Role == types.RoleUser {
			label = "Pengguna"
		}
		lines = append(lines, label+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}
