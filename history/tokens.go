package history

import "github.com/mirubot/chatmem-go/core"

// messageOverheadTokens is the fixed structural cost charged per message
// for role and separator bookkeeping in the model's context window.
const messageOverheadTokens = 5

// heuristicCharsPerToken is the characters-per-token divisor used when no
// tokenizer is configured. Rough, but cheap and direction-correct.
const heuristicCharsPerToken = 4

// EstimateTokens estimates the total context-window cost of a transcript.
// Messages with empty content contribute nothing, not even the structural
// overhead. Note this differs from EstimateMessageTokens, which always
// charges the overhead for the single message it is given.
func (m *Manager) EstimateTokens(msgs []core.Message) int {
	total := 0
	for _, msg := range msgs {
		content := msg.Content()
		if content == "" {
			continue
		}
		total += m.countTokens(content) + messageOverheadTokens
	}
	return total
}

// EstimateMessageTokens estimates one message's context-window cost,
// including the per-message structural overhead.
func (m *Manager) EstimateMessageTokens(msg core.Message) int {
	return m.countTokens(msg.Content()) + messageOverheadTokens
}

func (m *Manager) countTokens(content string) int {
	if m.tokenizer != nil {
		return len(m.tokenizer.Encode(content))
	}
	return len(content) / heuristicCharsPerToken
}
