package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"xyian-bot/internal/knowledge"
	"xyian-bot/internal/service/mocks"
)

func publishedService(t *testing.T, llmClient LLMClient) AskService {
	t.Helper()
	svc := NewAskService(llmClient)
	svc.Publish(knowledge.NewStore([]knowledge.Candidate{
		{
			Category: knowledge.CategoryWeapons,
			Content:  "The Oracle Staff weapon deals high magic damage in PvP",
			Label:    "facts_weapons_a",
		},
	}))
	return svc
}

func TestAskStoreUnavailable(t *testing.T) {
	svc := NewAskService(nil)

	if svc.Ready() {
		t.Error("Ready() = true before any store was published")
	}

	_, err := svc.Ask(context.Background(), AskRequest{Question: "best weapon"})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Ask() error = %v, want ErrStoreUnavailable", err)
	}
}

func TestAskQuestionTooLong(t *testing.T) {
	svc := publishedService(t, nil)

	_, err := svc.Ask(context.Background(), AskRequest{Question: strings.Repeat("x", maxQuestionLen+1)})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Ask() error = %v, want *ValidationError", err)
	}
	if verr.Field != "question" {
		t.Errorf("ValidationError field = %q, want question", verr.Field)
	}
}

func TestAskComposesAnswer(t *testing.T) {
	svc := publishedService(t, nil)

	resp, err := svc.Ask(context.Background(), AskRequest{
		Question: "best weapon for pvp",
		Username: "Ares",
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if !strings.Contains(resp.Answer, "The Oracle Staff weapon deals high magic damage in PvP") {
		t.Errorf("Ask() answer = %q, want it to contain the entry content", resp.Answer)
	}
	if resp.Confidence != "Good match" {
		t.Errorf("Ask() confidence = %q, want Good match", resp.Confidence)
	}
	if len(resp.Matches) != 1 || resp.Matches[0].Score != 15 {
		t.Errorf("Ask() matches = %+v, want one match with score 15", resp.Matches)
	}
	if resp.Enriched {
		t.Error("Ask() enriched = true without an LLM client")
	}
}

func TestAskNoMatchesIsFallbackNotError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// The LLM must not be consulted on the fallback path, so no Chat
	// expectation is registered.
	llm := mocks.NewMockLLMClient(ctrl)
	svc := publishedService(t, llm)

	resp, err := svc.Ask(context.Background(), AskRequest{Question: "", Username: "Ares"})
	if err != nil {
		t.Fatalf("Ask() error = %v, want fallback answer", err)
	}
	if !strings.Contains(resp.Answer, "Hey Ares!") {
		t.Errorf("Ask() fallback = %q, want it addressed to the requester", resp.Answer)
	}
	if resp.Confidence != "" {
		t.Errorf("Ask() confidence = %q, want empty on fallback", resp.Confidence)
	}
	if len(resp.Matches) != 0 {
		t.Errorf("Ask() matches = %+v, want none", resp.Matches)
	}
}

func TestAskEnrichment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	llm := mocks.NewMockLLMClient(ctrl)
	llm.EXPECT().Chat(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, prompt string) (string, error) {
			if !strings.Contains(prompt, "The Oracle Staff weapon deals high magic damage in PvP") {
				t.Errorf("enrichment prompt missing entry content:\n%s", prompt)
			}
			if !strings.Contains(prompt, "Question: best weapon for pvp") {
				t.Errorf("enrichment prompt missing question:\n%s", prompt)
			}
			return "The Oracle Staff is the strongest PvP weapon.", nil
		})

	svc := publishedService(t, llm)
	resp, err := svc.Ask(context.Background(), AskRequest{Question: "best weapon for pvp"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !resp.Enriched {
		t.Error("Ask() enriched = false, want true")
	}
	if resp.Answer != "The Oracle Staff is the strongest PvP weapon." {
		t.Errorf("Ask() answer = %q, want the enriched reply", resp.Answer)
	}
}

func TestAskEnrichmentFailureKeepsComposedAnswer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	llm := mocks.NewMockLLMClient(ctrl)
	llm.EXPECT().Chat(gomock.Any(), gomock.Any()).Return("", errors.New("model offline"))

	svc := publishedService(t, llm)
	resp, err := svc.Ask(context.Background(), AskRequest{Question: "best weapon for pvp"})
	if err != nil {
		t.Fatalf("Ask() error = %v, enrichment failure must not fail the ask", err)
	}
	if resp.Enriched {
		t.Error("Ask() enriched = true after LLM failure")
	}
	if !strings.Contains(resp.Answer, "The Oracle Staff weapon deals high magic damage in PvP") {
		t.Errorf("Ask() answer = %q, want the composed answer", resp.Answer)
	}
}

func TestAskEnrichmentBlankReplyKeepsComposedAnswer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	llm := mocks.NewMockLLMClient(ctrl)
	llm.EXPECT().Chat(gomock.Any(), gomock.Any()).Return("   \n", nil)

	svc := publishedService(t, llm)
	resp, err := svc.Ask(context.Background(), AskRequest{Question: "best weapon for pvp"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if resp.Enriched {
		t.Error("Ask() enriched = true for a blank LLM reply")
	}
}

func TestPublishSwapsStore(t *testing.T) {
	svc := NewAskService(nil)
	svc.Publish(knowledge.NewStore(nil))
	if !svc.Ready() {
		t.Error("Ready() = false after Publish")
	}

	resp, err := svc.Ask(context.Background(), AskRequest{Question: "best weapon for pvp", Username: "Ares"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(resp.Matches) != 0 {
		t.Errorf("Ask() matches = %+v, want none from an empty store", resp.Matches)
	}

	svc.Publish(knowledge.NewStore([]knowledge.Candidate{
		{Category: knowledge.CategoryWeapons, Content: "The Oracle Staff weapon deals high magic damage in PvP", Label: "a"},
	}))
	resp, err = svc.Ask(context.Background(), AskRequest{Question: "best weapon for pvp", Username: "Ares"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(resp.Matches) != 1 {
		t.Errorf("Ask() matches = %+v, want the republished entry", resp.Matches)
	}
}
