// Package core provides the shared conversation types consumed by the
// history and memory subsystems.
package core

import "strings"

// Message roles. The transcript uses the Gemini convention where the
// assistant side is "model" rather than "assistant".
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part is a single text fragment of a message. Messages arriving from the
// chat layer may carry several fragments (e.g. split tool output followed
// by prose); they are joined on demand by Content.
type Part struct {
	Text string `json:"text"`
}

// Message is one turn in a conversation transcript. Messages are treated as
// immutable values: trimming operations build new slices and never modify a
// message in place.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Text builds a single-part message.
func Text(role, text string) Message {
	return Message{Role: role, Parts: []Part{{Text: text}}}
}

// Content returns the message's derived textual content: the texts of all
// non-empty parts joined with single spaces. A message with no parts (or
// only empty parts) has empty content.
func (m Message) Content() string {
	switch len(m.Parts) {
	case 0:
		return ""
	case 1:
		return m.Parts[0].Text
	}
	texts := make([]string, 0, len(m.Parts))
	for _, p := range m.Parts {
		if p.Text == "" {
			continue
		}
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, " ")
}

// IsUser reports whether the message was authored by the human side.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}
