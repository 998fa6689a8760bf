package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatServer(t *testing.T, reply string, check func(*testing.T, ChatRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q, want /v1/chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q, want Bearer test-key", auth)
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if check != nil {
			check(t, req)
		}

		resp := ChatResponse{
			ID:     "chat-1",
			Object: "chat.completion",
			Choices: []ChatChoice{
				{Message: Message{Role: "assistant", Content: reply}, FinishReason: "stop"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestClientChat(t *testing.T) {
	server := chatServer(t, "The Oracle Staff.", func(t *testing.T, req ChatRequest) {
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v, want single user message", req.Messages)
		}
	})
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	reply, err := client.Chat(context.Background(), "best weapon?")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "The Oracle Staff." {
		t.Errorf("Chat() = %q, want The Oracle Staff.", reply)
	}
}

func TestClientChatWithMessagesParamOverrides(t *testing.T) {
	server := chatServer(t, "ok", func(t *testing.T, req ChatRequest) {
		if req.Model != "override-model" {
			t.Errorf("model = %q, want override-model", req.Model)
		}
		if req.MaxTokens != 64 {
			t.Errorf("max_tokens = %d, want 64", req.MaxTokens)
		}
	})
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	_, err := client.ChatWithMessages(context.Background(),
		[]Message{{Role: "user", Content: "hi"}},
		ChatParams{Model: "override-model", MaxTokens: 64})
	if err != nil {
		t.Fatalf("ChatWithMessages() error = %v", err)
	}
}

func TestClientChatBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	if _, err := client.Chat(context.Background(), "hi"); err == nil {
		t.Fatal("Chat() succeeded on a 503, want error")
	}
}

func TestClientChatNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ChatResponse{ID: "chat-2"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	if _, err := client.Chat(context.Background(), "hi"); err == nil {
		t.Fatal("Chat() succeeded with no choices, want error")
	}
}
