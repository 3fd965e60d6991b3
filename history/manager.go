// Package history scores, trims, and token-budgets conversation transcripts.
//
// A transcript is an ordered slice of core.Message, oldest first. The
// Manager never mutates an input transcript: every trim builds and returns
// a fresh slice, so a caller that cancels mid-operation simply keeps its
// old transcript.
//
// The Manager is designed for single-writer use per transcript. Callers
// must serialize access per conversation (e.g. one owner per channel);
// there is no internal locking.
package history

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/dgraph-io/ristretto"

	"github.com/mirubot/chatmem-go/core"
)

// Summarizer condenses discarded messages into a single text summary.
// Implementations live outside this package (see summarizer/claude).
// A nil or empty summary means no summary could be produced; failures
// should be returned as errors and are absorbed by the Manager.
type Summarizer interface {
	Summarize(ctx context.Context, msgs []core.Message, maxMessages int) (string, error)
}

// Tokenizer provides precise token counts. When absent the Manager falls
// back to a characters/4 heuristic; the substitution is invisible to
// callers (same units either way).
type Tokenizer interface {
	Encode(text string) []int
}

// Config holds Manager construction parameters.
type Config struct {
	// KeepRecent is the number of most recent messages always preserved
	// verbatim by SmartTrim. Default 200.
	KeepRecent int

	// MaxHistory is the absolute message-count ceiling callers should trim
	// toward. Default 10000.
	MaxHistory int

	// CompressThreshold is advisory: the transcript length at which callers
	// are encouraged to trim. It is not enforced here. Default 5000.
	CompressThreshold int

	// MaxTokens is the token-budget ceiling for SmartTrimByTokens callers.
	// Default 1200000.
	MaxTokens int
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		KeepRecent:        200,
		MaxHistory:        10000,
		CompressThreshold: 5000,
		MaxTokens:         1200000,
	}
}

// Option configures the Manager.
type Option func(*Manager)

// WithSummarizer attaches a summarizer used to compress discarded messages
// during SmartTrim. Without one, trimming is importance-only.
func WithSummarizer(s Summarizer) Option {
	return func(m *Manager) {
		m.summarizer = s
	}
}

// WithTokenizer attaches a precise tokenizer for token estimation.
func WithTokenizer(t Tokenizer) Option {
	return func(m *Manager) {
		m.tokenizer = t
	}
}

// Manager reduces oversized transcripts to fit count and token budgets
// while preferentially retaining high-importance and recent messages.
type Manager struct {
	cfg        Config
	summarizer Summarizer
	tokenizer  Tokenizer
	scores     *ristretto.Cache
}

// scoreResult is the memoized output of Score.
type scoreResult struct {
	score float64
	rules []string
}

// NewManager validates cfg (zero fields take defaults) and builds a
// Manager. Negative KeepRecent or non-positive ceilings are caller errors.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	def := DefaultConfig()
	if cfg.KeepRecent == 0 {
		cfg.KeepRecent = def.KeepRecent
	}
	if cfg.MaxHistory == 0 {
		cfg.MaxHistory = def.MaxHistory
	}
	if cfg.CompressThreshold == 0 {
		cfg.CompressThreshold = def.CompressThreshold
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = def.MaxTokens
	}

	if cfg.KeepRecent < 0 {
		return nil, fmt.Errorf("history: KeepRecent must be >= 0, got %d", cfg.KeepRecent)
	}
	if cfg.MaxHistory < 0 || cfg.MaxTokens < 0 {
		return nil, errors.New("history: MaxHistory and MaxTokens must be >= 0")
	}

	m := &Manager{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}

	// Score memoization. The greedy token trim rescans the remaining
	// transcript after every eviction, so repeated Score calls on the
	// same content dominate its cost without this.
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 14,
		MaxCost:     1 << 22,
		BufferItems: 64,
	})
	if err != nil {
		log.Printf("[HISTORY] score cache unavailable, scoring uncached: %v", err)
	} else {
		m.scores = cache
	}

	return m, nil
}

// Config returns the manager's effective configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

func scoreKey(role, content string) string {
	return role + "\x00" + content
}

func (m *Manager) cachedScore(role, content string) (scoreResult, bool) {
	if m.scores == nil {
		return scoreResult{}, false
	}
	v, ok := m.scores.Get(scoreKey(role, content))
	if !ok {
		return scoreResult{}, false
	}
	res, ok := v.(scoreResult)
	return res, ok
}

func (m *Manager) storeScore(role, content string, res scoreResult) {
	if m.scores == nil {
		return
	}
	m.scores.Set(scoreKey(role, content), res, int64(len(content))+1)
}

// SmartTrim reduces msgs to at most maxMessages, keeping the configured
// recent window verbatim and filling the remaining slots with the
// highest-scoring older messages in their original chronological order.
// When a summarizer is configured and at least 10 messages are discarded,
// one slot is spent on a synthetic summary of up to 50 discarded messages.
//
// Transcripts already within budget are returned unchanged. The only error
// returned is context cancellation; summarizer failures degrade to
// "no summary" and are logged.
func (m *Manager) SmartTrim(ctx context.Context, msgs []core.Message, maxMessages int) ([]core.Message, error) {
	if len(msgs) <= maxMessages {
		return msgs, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keep := m.cfg.KeepRecent
	if keep > len(msgs) {
		keep = len(msgs)
	}
	recent := msgs[len(msgs)-keep:]
	older := msgs[:len(msgs)-keep]

	availableSlots := maxMessages - len(recent)
	summarySlots := 0
	if m.summarizer != nil && availableSlots > 0 {
		summarySlots = 1
	}
	messageSlots := availableSlots - summarySlots
	if messageSlots < 0 {
		// The recent window alone exceeds the budget. Degraded but valid:
		// drop every older message and keep the protected window intact.
		log.Printf("[HISTORY] keep_recent=%d exceeds max_messages=%d, dropping all older messages", keep, maxMessages)
		messageSlots = 0
	}

	scores := m.scoreAll(older)

	// Stable sort of indices by descending score: ties keep original
	// relative order, which keeps trimming deterministic.
	order := make([]int, len(older))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if messageSlots > len(older) {
		messageSlots = len(older)
	}
	kept := make([]bool, len(older))
	for _, idx := range order[:messageSlots] {
		kept[idx] = true
	}

	var keptOlder, discarded []core.Message
	for i, msg := range older {
		if kept[i] {
			keptOlder = append(keptOlder, msg)
		} else {
			discarded = append(discarded, msg)
		}
	}

	var summary *core.Message
	if m.summarizer != nil && summarySlots > 0 && len(discarded) >= minDiscardForSummary {
		summary = m.summarizeDiscarded(ctx, discarded)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	result := make([]core.Message, 0, len(keptOlder)+len(recent)+1)
	if summary != nil {
		result = append(result, *summary)
	}
	result = append(result, keptOlder...)
	result = append(result, recent...)

	log.Printf("[HISTORY] trimmed %d -> %d messages (kept %d older, summary=%v)",
		len(msgs), len(result), len(keptOlder), summary != nil)
	return result, nil
}

const (
	// minDiscardForSummary is the discard count below which summarization
	// isn't worth a model call.
	minDiscardForSummary = 10

	// maxSummarizeInput caps how many discarded messages are fed to the
	// summarizer in one call.
	maxSummarizeInput = 50
)

// summarizeDiscarded asks the summarizer to compress the oldest discarded
// messages into one synthetic model message. Any failure is absorbed.
func (m *Manager) summarizeDiscarded(ctx context.Context, discarded []core.Message) *core.Message {
	subset := discarded
	if len(subset) > maxSummarizeInput {
		subset = subset[:maxSummarizeInput]
	}

	text, err := m.summarizer.Summarize(ctx, subset, maxSummarizeInput)
	if err != nil {
		log.Printf("[HISTORY] summarizer failed, continuing without summary: %v", err)
		return nil
	}
	if text == "" {
		return nil
	}

	msg := core.Text(core.RoleModel, fmt.Sprintf("[summary of %d earlier messages] %s", len(discarded), text))
	return &msg
}

// SmartTrimByTokens greedily evicts the lowest-scoring unprotected message
// until the estimated token total fits within maxTokens-reserveTokens. The
// last min(KeepRecent, len/2) messages are protected for the whole pass.
// Ties pick the earliest message. When only protected messages remain the
// pass stops early and returns the best effort, logged rather than raised.
func (m *Manager) SmartTrimByTokens(ctx context.Context, msgs []core.Message, maxTokens, reserveTokens int) ([]core.Message, error) {
	target := maxTokens - reserveTokens
	total := m.EstimateTokens(msgs)
	if total <= target {
		return msgs, nil
	}

	protected := m.cfg.KeepRecent
	if half := len(msgs) / 2; protected > half {
		protected = half
	}

	work := make([]core.Message, len(msgs))
	copy(work, msgs)

	for total > target {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		removable := len(work) - protected
		if removable <= 0 {
			log.Printf("[HISTORY] cannot trim below %d tokens without touching the protected window (target %d)", total, target)
			break
		}

		lowest := 0
		lowestScore, _ := m.Score(work[0])
		for i := 1; i < removable; i++ {
			if s, _ := m.Score(work[i]); s < lowestScore {
				lowest, lowestScore = i, s
			}
		}

		work = append(work[:lowest], work[lowest+1:]...)
		total = m.EstimateTokens(work)
	}

	log.Printf("[HISTORY] token trim %d -> %d messages (~%d tokens, target %d)", len(msgs), len(work), total, target)
	return work, nil
}

// QuickTrim is the synchronous fallback for callers that cannot await a
// summarizer: it keeps the first maxMessages/10 messages plus the newest
// remainder, with no scoring. Pure index slicing.
func (m *Manager) QuickTrim(msgs []core.Message, maxMessages int) []core.Message {
	if maxMessages <= 0 {
		// Degraded but valid: nothing fits, so keep nothing.
		log.Printf("[HISTORY] quick trim with max_messages=%d, dropping all %d messages", maxMessages, len(msgs))
		return nil
	}
	if len(msgs) <= maxMessages {
		return msgs
	}
	head := maxMessages / 10
	tail := maxMessages - head

	result := make([]core.Message, 0, maxMessages)
	result = append(result, msgs[:head]...)
	result = append(result, msgs[len(msgs)-tail:]...)
	return result
}
