package chatbot

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dokuchat/dokuchat/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRenderEmpty(t *testing.T) {
	h := NewHistory(nil)
	assert.Equal(t, "", h.Render(5))
}

func TestHistoryRenderLabels(t *testing.T) {
	h := NewHistory([]types.Turn{
		types.UserTurn("apa isi bab 3?"),
		types.AssistantTurn("Bab 3 membahas kebijakan kas."),
	})

	got := h.Render(5)
	assert.Equal(t, "Pengguna: apa isi bab 3?\nAsisten: Bab 3 membahas kebijakan kas.", got)
}

func TestHistoryRenderWindow(t *testing.T) {
	h := NewHistory(nil)
	for i := 0; i < 7; i++ {
		h.Append(types.RoleUser, fmt.Sprintf("pertanyaan %d", i))
		h.Append(types.RoleAssistant, fmt.Sprintf("jawaban %d", i))
	}

	got := h.Render(5)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 10)

	// Window keeps the most recent exchanges only.
	assert.Equal(t, "Pengguna: pertanyaan 2", lines[0])
	assert.Equal(t, "Asisten: jawaban 6", lines[9])
	assert.NotContains(t, got, "pertanyaan 0")
	assert.NotContains(t, got, "pertanyaan 1")
}

func TestHistoryAppendPreservesOrder(t *testing.T) {
	h := NewHistory([]types.Turn{types.UserTurn("a")})
	h.Append(types.RoleAssistant, "b")
	h.Append(types.RoleUser, "c")

	turns := h.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "a", turns[0].Content)
	assert.Equal(t, "b", turns[1].Content)
	assert.Equal(t, "c", turns[2].Content)
}
