package conversation

import (
	"go.uber.org/zap"

	"github.com/dodorico/property-assistant/internal/model"
	"github.com/dodorico/property-assistant/pkg/logger"
	"github.com/dodorico/property-assistant/pkg/metrics"
)

// Sanitize repairs a stored history so that every assistant turn with
// tool_use blocks is immediately followed by a user turn carrying exactly
// the matching set of tool_result blocks. Broken pairs are discarded, which
// is the repair action, not an error: submitting them would be rejected by
// the model API. The result is trimmed to start with a user turn and end
// with an assistant turn, and may be empty.
func Sanitize(history []model.Turn, log *logger.Logger) []model.Turn {
	if len(history) == 0 {
		return nil
	}

	result := make([]model.Turn, 0, len(history))
	i := 0

	for i < len(history) {
		turn := history[i]

		var toolUseIDs []string
		if turn.Role == model.RoleAssistant {
			for _, use := range turn.ToolUses() {
				toolUseIDs = append(toolUseIDs, use.ID)
			}
		}

		if len(toolUseIDs) == 0 {
			result = append(result, turn)
			i++
			continue
		}

		if i+1 < len(history) && history[i+1].Role == model.RoleUser &&
			sameIDSet(toolUseIDs, history[i+1].ToolResultIDs()) {
			result = append(result, turn, history[i+1])
			i += 2
			continue
		}

		// Broken pair. Drop the assistant turn, and the following user turn
		// too so a stray partial result set does not survive.
		log.Warn("history sanitized: dropped unpaired tool_use turn",
			zap.Strings("tool_use_ids", toolUseIDs),
		)
		metrics.HistoryRepairsTotal.Inc()
		if i+1 < len(history) && history[i+1].Role == model.RoleUser {
			i += 2
		} else {
			i++
		}
	}

	// Normalize the ends: the protocol requires a user turn first and an
	// assistant turn last. Trimming a trailing user turn can expose an
	// assistant tool_use turn whose result turn was just removed, so keep
	// popping until the last turn is an assistant turn without tool uses.
	for len(result) > 0 && result[0].Role != model.RoleUser {
		result = result[1:]
	}
	for len(result) > 0 {
		last := result[len(result)-1]
		if last.Role == model.RoleAssistant && len(last.ToolUses()) == 0 {
			break
		}
		result = result[:len(result)-1]
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// sameIDSet reports whether both slices contain the same set of ids,
// ignoring order and duplicates.
func sameIDSet(a, b []string) bool {
	setA := make(map[string]struct{}, len(a))
	for _, id := range a {
		setA[id] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, id := range b {
		setB[id] = struct{}{}
	}
	if len(setA) != len(setB) {
		return false
	}
	for id := range setA {
		if _, ok := setB[id]; !ok {
			return false
		}
	}
	return true
}
