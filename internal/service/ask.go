package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks xyian-bot/internal/service LLMClient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"xyian-bot/internal/contextutil"
	"xyian-bot/internal/knowledge"
)

const (
	// maxQuestionLen guards against payloads no chat surface could have
	// produced.
	maxQuestionLen = 2000
	// maxLimit caps how many matches a single ask may request.
	maxLimit = 10
)

// LLMClient is an interface for the optional answer-enrichment model.
// This interface is defined from the service layer's perspective
// (consumer-first); an error return is the "unavailable" signal and the
// composed answer is used as-is.
type LLMClient interface {
	// Chat sends a prompt to the LLM and returns the reply.
	Chat(ctx context.Context, prompt string) (string, error)
}

// AskRequest represents an ask request in the domain layer.
type AskRequest struct {
	Question string
	Username string
	Limit    int
}

// MatchSummary is the ranked-entry view returned to callers.
type MatchSummary struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Score    int    `json:"score"`
}

// AskResponse represents an ask response in the domain layer.
type AskResponse struct {
	Answer     string
	Confidence string // Empty on the fallback path
	Matches    []MatchSummary
	Enriched   bool
}

// AskService answers free-text questions against the published knowledge
// store.
type AskService interface {
	// Ask ranks the question and composes an answer, optionally enriched
	// by the LLM.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
	// Publish atomically swaps in a freshly built store. Queries running
	// concurrently keep reading the store they started with.
	Publish(store *knowledge.Store)
	// Ready reports whether a store has been published.
	Ready() bool
}

// askService implements AskService.
type askService struct {
	store     atomic.Pointer[knowledge.Store]
	llmClient LLMClient
	logger    *slog.Logger
}

// NewAskService creates a new AskService. llmClient may be nil, which
// disables enrichment.
func NewAskService(llmClient LLMClient) AskService {
	return &askService{
		llmClient: llmClient,
		logger:    slog.Default(),
	}
}

func (s *askService) Publish(store *knowledge.Store) {
	s.store.Store(store)
}

func (s *askService) Ready() bool {
	return s.store.Load() != nil
}

// Ask processes one question. An empty question or one with no match is not
// an error: both produce the fallback answer.
func (s *askService) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(req.Question) > maxQuestionLen {
		return AskResponse{}, &ValidationError{
			Field:   "question",
			Message: fmt.Sprintf("must be at most %d characters", maxQuestionLen),
		}
	}

	store := s.store.Load()
	if store == nil {
		return AskResponse{}, ErrStoreUnavailable
	}

	limit := req.Limit
	if limit < 0 {
		limit = 0
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	matches := store.Rank(req.Question, limit)
	answer := knowledge.Compose(req.Username, matches)

	resp := AskResponse{
		Answer:  answer,
		Matches: make([]MatchSummary, 0, len(matches)),
	}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, MatchSummary{
			ID:       m.ID,
			Category: string(m.Category),
			Title:    m.Title,
			Score:    m.Score,
		})
	}
	if len(matches) > 0 {
		resp.Confidence = knowledge.Confidence(matches[0].Score)
	}

	// Optional enrichment: the LLM may rewrite the composed answer, but it
	// is never the sole answer path. Any failure keeps the composed text.
	if s.llmClient != nil && len(matches) > 0 {
		enriched, err := s.llmClient.Chat(ctx, enrichmentPrompt(req.Question, matches))
		if err != nil {
			logger.WarnContext(ctx, "enrichment unavailable, using composed answer", "error", err)
		} else if strings.TrimSpace(enriched) != "" {
			resp.Answer = enriched
			resp.Enriched = true
		}
	}

	logger.InfoContext(ctx, "ask processed",
		"question_length", len(req.Question),
		"matches", len(matches),
		"confidence", resp.Confidence,
		"enriched", resp.Enriched,
	)

	return resp, nil
}

// enrichmentPrompt packs the ranked entries into a grounding prompt.
func enrichmentPrompt(question string, matches []knowledge.Match) string {
	var b strings.Builder
	b.WriteString("You are a helpful Archero 2 community assistant. Answer the question ")
	b.WriteString("using only the knowledge entries below. Keep the answer short and factual.\n\n")
	b.WriteString("--- Knowledge entries ---\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.Category, m.Title, m.Content)
	}
	b.WriteString("--- End entries ---\n\n")
	fmt.Fprintf(&b, "Question: %s", question)
	return b.String()
}
