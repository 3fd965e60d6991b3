package history

import (
	"regexp"
	"strings"

	"github.com/mirubot/chatmem-go/core"
)

// UserFacts groups the durable facts extracted from a transcript's user
// messages, ready for long-term memory seeding.
type UserFacts struct {
	Names        []string `json:"names"`
	Preferences  []string `json:"preferences"`
	PersonalInfo []string `json:"personal_info"`
	Rules        []string `json:"rules"`
}

// Extraction patterns. These are separate from the importance table: the
// importance rules only need to detect a match, these need to capture the
// stated value.
var (
	nameDeclarationRe = regexp.MustCompile(`(?i)(?:my name is|call me|i am called|ผมชื่อ|ฉันชื่อ|เรียกผมว่า|เรียกฉันว่า)\s*([^\s.,!?;]+)`)
	preferenceRe      = regexp.MustCompile(`(?i)(?:i (?:like|love|prefer|hate)|ชอบ|ไม่ชอบ)\s*(\S[^.!?\n]*)`)
)

// maxPreferenceRunes caps an individual extracted preference string.
const maxPreferenceRunes = 50

// ExtractUserFacts scans user messages only and pulls out declared names,
// stated preferences, personal info, and standing rules. Extracted strings
// are deduplicated per category by exact match; no scoring is involved.
func (m *Manager) ExtractUserFacts(msgs []core.Message) UserFacts {
	var facts UserFacts
	seen := map[string]map[string]bool{
		"names":         {},
		"preferences":   {},
		"personal_info": {},
		"rules":         {},
	}

	add := func(category string, dst *[]string, value string) {
		value = strings.TrimSpace(value)
		if value == "" || seen[category][value] {
			return
		}
		seen[category][value] = true
		*dst = append(*dst, value)
	}

	for _, msg := range msgs {
		if !msg.IsUser() {
			continue
		}
		content := msg.Content()
		if content == "" {
			continue
		}

		for _, match := range nameDeclarationRe.FindAllStringSubmatch(content, -1) {
			add("names", &facts.Names, match[1])
		}
		for _, match := range preferenceRe.FindAllStringSubmatch(content, -1) {
			add("preferences", &facts.Preferences, truncateRunes(match[1], maxPreferenceRunes))
		}
		if ruleFor("personal_info").pattern.MatchString(content) {
			add("personal_info", &facts.PersonalInfo, content)
		}
		if ruleFor("rule_statement").pattern.MatchString(content) {
			add("rules", &facts.Rules, content)
		}
	}

	return facts
}

func ruleFor(name string) scoreRule {
	for _, rule := range scoreRules {
		if rule.name == name {
			return rule
		}
	}
	return scoreRule{pattern: regexp.MustCompile(`$^`)}
}

// truncateRunes shortens s to at most n runes. Rune-based so Thai text is
// never cut mid-codepoint.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
