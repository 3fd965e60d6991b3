package history

import "github.com/mirubot/chatmem-go/core"

// importantScoreFloor is the score at or above which a message counts as
// important in Stats.
const importantScoreFloor = 1.3

// Stats is a read-only aggregate view of a transcript.
type Stats struct {
	Total           int `json:"total"`
	UserCount       int `json:"user_count"`
	ModelCount      int `json:"model_count"`
	ImportantCount  int `json:"important_count"`
	EstimatedTokens int `json:"estimated_tokens"`
}

// Stats computes transcript statistics. No side effects.
func (m *Manager) Stats(msgs []core.Message) Stats {
	s := Stats{Total: len(msgs)}
	for _, msg := range msgs {
		if msg.IsUser() {
			s.UserCount++
		} else {
			s.ModelCount++
		}
		if score, _ := m.Score(msg); score >= importantScoreFloor {
			s.ImportantCount++
		}
	}
	s.EstimatedTokens = m.EstimateTokens(msgs)
	return s
}
