package conversation

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodorico/property-assistant/internal/model"
	"github.com/dodorico/property-assistant/pkg/logger"
)

func userText(text string) model.Turn {
	return model.NewUserText(text)
}

func assistantText(text string) model.Turn {
	return model.Turn{
		Role:    model.RoleAssistant,
		Content: []model.ContentBlock{{Type: model.BlockTypeText, Text: text}},
	}
}

func assistantToolUse(ids ...string) model.Turn {
	blocks := []model.ContentBlock{{Type: model.BlockTypeText, Text: "buscando..."}}
	for _, id := range ids {
		blocks = append(blocks, model.ContentBlock{
			Type:  model.BlockTypeToolUse,
			ID:    id,
			Name:  SearchToolName,
			Input: []byte(`{}`),
		})
	}
	return model.Turn{Role: model.RoleAssistant, Content: blocks}
}

func userToolResults(ids ...string) model.Turn {
	var blocks []model.ContentBlock
	for _, id := range ids {
		blocks = append(blocks, model.ContentBlock{
			Type:      model.BlockTypeToolResult,
			ToolUseID: id,
			Content:   "resultado",
		})
	}
	return model.NewToolResults(blocks)
}

// assertWellFormed checks the pairing contract that the model API enforces:
// every assistant tool_use turn must be immediately followed by a user turn
// carrying exactly the matching result set, and the sequence must start with
// a user turn and end with an assistant turn.
func assertWellFormed(t *testing.T, turns []model.Turn) {
	t.Helper()
	if len(turns) == 0 {
		return
	}
	assert.Equal(t, model.RoleUser, turns[0].Role)
	assert.Equal(t, model.RoleAssistant, turns[len(turns)-1].Role)

	for i, turn := range turns {
		uses := turn.ToolUses()
		if len(uses) == 0 {
			continue
		}
		require.Less(t, i+1, len(turns), "tool_use turn at %d has no successor", i)
		next := turns[i+1]
		require.Equal(t, model.RoleUser, next.Role)

		var useIDs []string
		for _, u := range uses {
			useIDs = append(useIDs, u.ID)
		}
		assert.ElementsMatch(t, useIDs, next.ToolResultIDs())
	}
}

func TestSanitizeEmptyHistory(t *testing.T) {
	assert.Nil(t, Sanitize(nil, logger.NewNop()))
	assert.Nil(t, Sanitize([]model.Turn{}, logger.NewNop()))
}

func TestSanitizeWellFormedHistoryUnchanged(t *testing.T) {
	history := []model.Turn{
		userText("hola"),
		assistantText("¡Hola! ¿Qué estás buscando?"),
		userText("un depto en Palermo"),
		assistantToolUse("toolu_1"),
		userToolResults("toolu_1"),
		assistantText("Encontré estas opciones"),
	}

	got := Sanitize(history, logger.NewNop())
	assert.Equal(t, history, got)
}

func TestSanitizeDropsUnpairedToolUse(t *testing.T) {
	history := []model.Turn{
		userText("hola"),
		assistantText("hola"),
		userText("buscame algo"),
		assistantToolUse("toolu_lost"),
		// Crash before the tool result was stored: next turn is plain text.
		userText("seguís ahí?"),
		assistantText("sí, acá estoy"),
	}

	got := Sanitize(history, logger.NewNop())
	assertWellFormed(t, got)
	for _, turn := range got {
		assert.Empty(t, turn.ToolUses(), "no tool_use turn should survive without its pair")
	}
}

func TestSanitizeDropsMismatchedResultSet(t *testing.T) {
	history := []model.Turn{
		userText("hola"),
		assistantToolUse("toolu_a", "toolu_b"),
		userToolResults("toolu_a"), // partial results
		assistantText("listo"),
	}

	got := Sanitize(history, logger.NewNop())
	assertWellFormed(t, got)
}

func TestSanitizeToolUseAtEnd(t *testing.T) {
	history := []model.Turn{
		userText("hola"),
		assistantText("hola"),
		userText("buscá"),
		assistantToolUse("toolu_tail"),
	}

	got := Sanitize(history, logger.NewNop())
	assertWellFormed(t, got)
	assert.Equal(t, []model.Turn{userText("hola"), assistantText("hola")}, got)
}

func TestSanitizePairedToolUseAtEnd(t *testing.T) {
	// A completed tool call can be the last thing stored when the process
	// died before the follow-up assistant turn. Trimming the trailing user
	// turn must not leave the tool_use turn behind without its results.
	history := []model.Turn{
		userText("hola"),
		assistantText("hola"),
		userText("buscá"),
		assistantToolUse("toolu_tail"),
		userToolResults("toolu_tail"),
	}

	got := Sanitize(history, logger.NewNop())
	assertWellFormed(t, got)
	assert.Equal(t, []model.Turn{userText("hola"), assistantText("hola")}, got)

	again := Sanitize(got, logger.NewNop())
	assert.Equal(t, got, again)
}

func TestSanitizeTrimsEnds(t *testing.T) {
	history := []model.Turn{
		assistantText("colgado de una sesión anterior"),
		userText("hola"),
		assistantText("hola"),
		userText("sin respuesta todavía"),
	}

	got := Sanitize(history, logger.NewNop())
	require.Len(t, got, 2)
	assert.Equal(t, model.RoleUser, got[0].Role)
	assert.Equal(t, model.RoleAssistant, got[1].Role)
}

func TestSanitizeResultOrderMatchesBySet(t *testing.T) {
	// Results delivered in a different order than the uses still pair.
	history := []model.Turn{
		userText("hola"),
		assistantToolUse("toolu_1", "toolu_2"),
		userToolResults("toolu_2", "toolu_1"),
		assistantText("listo"),
	}

	got := Sanitize(history, logger.NewNop())
	assert.Equal(t, history, got)
}

func TestSanitizeIdempotent(t *testing.T) {
	history := []model.Turn{
		assistantText("ruido"),
		userText("hola"),
		assistantToolUse("toolu_x"),
		userText("texto suelto"),
		assistantToolUse("toolu_y"),
		userToolResults("toolu_y"),
		assistantText("fin"),
	}

	once := Sanitize(history, logger.NewNop())
	twice := Sanitize(once, logger.NewNop())
	assert.Equal(t, once, twice)
}

func TestSanitizeRandomizedHistoriesAlwaysWellFormed(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	log := logger.NewNop()

	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(12)
		history := make([]model.Turn, 0, n)
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("toolu_%d_%d", trial, i)
			switch rng.Intn(5) {
			case 0:
				history = append(history, userText("consulta"))
			case 1:
				history = append(history, assistantText("respuesta"))
			case 2:
				history = append(history, assistantToolUse(id))
			case 3:
				history = append(history, userToolResults(id))
			case 4:
				history = append(history, assistantToolUse(id), userToolResults(id))
			}
		}

		got := Sanitize(history, log)
		assertWellFormed(t, got)

		again := Sanitize(got, log)
		assert.Equal(t, got, again, "sanitize must be idempotent (trial %d)", trial)
	}
}
