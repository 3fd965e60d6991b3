// Package claude implements history.Summarizer against the Anthropic
// Messages API.
package claude

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/mirubot/chatmem-go/core"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 1024
)

const systemPrompt = "You compress chat transcripts. Produce a compact prose summary " +
	"that preserves stated facts about the user (names, preferences, rules, " +
	"personal details) and the thread of the conversation. Reply with the " +
	"summary only."

// Summarizer condenses discarded transcript messages via Claude.
type Summarizer struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// Option configures the summarizer.
type Option func(*Summarizer)

// WithModel overrides the Claude model.
func WithModel(model string) Option {
	return func(s *Summarizer) {
		s.model = model
	}
}

// WithMaxTokens overrides the response token cap.
func WithMaxTokens(maxTokens int64) Option {
	return func(s *Summarizer) {
		s.maxTokens = maxTokens
	}
}

// New creates a Summarizer using the given Anthropic client.
func New(client *anthropic.Client, opts ...Option) *Summarizer {
	s := &Summarizer{
		client:    client,
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize condenses up to maxMessages of msgs into one text summary.
// An empty transcript yields an empty summary without an API call.
func (s *Summarizer) Summarize(ctx context.Context, msgs []core.Message, maxMessages int) (string, error) {
	if len(msgs) == 0 {
		return "", nil
	}
	if maxMessages > 0 && len(msgs) > maxMessages {
		msgs = msgs[:maxMessages]
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: s.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(renderTranscript(msgs))),
		},
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude summarize: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	summary := strings.TrimSpace(text.String())
	log.Printf("[SUMMARIZER] condensed %d messages into %d chars", len(msgs), len(summary))
	return summary, nil
}

// renderTranscript flattens messages into role-prefixed lines for the
// summarization prompt.
func renderTranscript(msgs []core.Message) string {
	var sb strings.Builder
	sb.WriteString("Summarize this conversation excerpt:\n\n")
	for _, m := range msgs {
		content := m.Content()
		if content == "" {
			continue
		}
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String()
}
