package history

import (
	"regexp"

	"github.com/mirubot/chatmem-go/core"
)

// scoreRule is one entry of the static importance table. A message matching
// the pattern scores at least the rule's weight.
type scoreRule struct {
	name    string
	weight  float64
	pattern *regexp.Regexp
}

// scoreRules is the ordered importance table. Patterns are case-insensitive
// and deliberately avoid \b word boundaries so Thai text (no word
// separators) matches the same way English does.
var scoreRules = []scoreRule{
	{
		name:    "name_declaration",
		weight:  2.0,
		pattern: regexp.MustCompile(`(?i)(my name is|call me|i am called|ผมชื่อ|ฉันชื่อ|เรียกผมว่า|เรียกฉันว่า)`),
	},
	{
		name:    "preference",
		weight:  1.6,
		pattern: regexp.MustCompile(`(?i)(i like|i love|i prefer|i hate|my favorite|ชอบ|ไม่ชอบ|เกลียด)`),
	},
	{
		name:    "personal_info",
		weight:  1.5,
		pattern: regexp.MustCompile(`(?i)(i live in|i work a|my birthday|years old|ฉันอยู่|ผมอยู่|อายุ|ทำงานที่|วันเกิด)`),
	},
	{
		name:    "gratitude",
		weight:  1.3,
		pattern: regexp.MustCompile(`(?i)(thank you|thanks a|appreciate|love you|miss you|ขอบคุณ|รักนะ|คิดถึง)`),
	},
	{
		name:    "remember_instruction",
		weight:  2.5,
		pattern: regexp.MustCompile(`(?i)(remember this|remember that|don't forget|keep in mind|จำไว้|อย่าลืม|จำให้ดี|สำคัญ)`),
	},
	{
		name:    "rule_statement",
		weight:  2.0,
		pattern: regexp.MustCompile(`(?i)(you must|you should never|you should always|from now on|ห้าม|ต้องไม่|ตั้งแต่นี้|กฎ)`),
	},
	{
		name:    "context_setting",
		weight:  1.2,
		pattern: regexp.MustCompile(`(?i)(because|since then|so that|เพราะว่า|เนื่องจาก|ดังนั้น)`),
	},
	{
		name:    "roleplay_tag",
		weight:  1.4,
		pattern: regexp.MustCompile(`(?i)(\*[^*]+\*|\[character\]|\(ooc[):]|\(ic[):])`),
	},
}

// Boost factors applied after rule matching.
const (
	longContentBoost  = 1.1
	userRoleBoost     = 1.1
	longContentLength = 200
)

// Score computes a message's retention importance. Every message starts at
// 1.0; each matching rule raises the score to at least its weight; long
// content and user authorship each apply a 1.1x boost. The returned rule
// names are for logging and stats only, trimming uses the numeric score.
//
// Deterministic for a given role and content, with no side effects.
func (m *Manager) Score(msg core.Message) (float64, []string) {
	content := msg.Content()

	if cached, ok := m.cachedScore(msg.Role, content); ok {
		return cached.score, copyRules(cached.rules)
	}

	score := 1.0
	var matched []string
	for _, rule := range scoreRules {
		if rule.pattern.MatchString(content) {
			if rule.weight > score {
				score = rule.weight
			}
			matched = append(matched, rule.name)
		}
	}

	if len(content) > longContentLength {
		score *= longContentBoost
	}
	if msg.Role == core.RoleUser {
		score *= userRoleBoost
	}

	// The cache keeps its own copy of the rule list so callers may mutate
	// what Score hands back without corrupting later lookups.
	m.storeScore(msg.Role, content, scoreResult{score: score, rules: copyRules(matched)})
	return score, matched
}

func copyRules(rules []string) []string {
	if rules == nil {
		return nil
	}
	out := make([]string, len(rules))
	copy(out, rules)
	return out
}

// scoreAll scores every message in msgs, in order.
func (m *Manager) scoreAll(msgs []core.Message) []float64 {
	scores := make([]float64, len(msgs))
	for i, msg := range msgs {
		scores[i], _ = m.Score(msg)
	}
	return scores
}
