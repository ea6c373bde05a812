package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// --- ParseModelString Tests (table-driven) ---

func TestParseModelString(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantProvider Provider
		wantModel    string
	}{
		{
			name:         "anthropic prefix",
			input:        "anthropic/claude-3",
			wantProvider: ProviderAnthropic,
			wantModel:    "claude-3",
		},
		{
			name:         "openai prefix",
			input:        "openai/gpt-4",
			wantProvider: ProviderOpenAI,
			wantModel:    "gpt-4",
		},
		{
			name:         "claude model name inferred as anthropic",
			input:        "claude-sonnet-4-20250514",
			wantProvider: ProviderAnthropic,
			wantModel:    "claude-sonnet-4-20250514",
		},
		{
			name:         "gpt model name inferred as openai",
			input:        "gpt-4o",
			wantProvider: ProviderOpenAI,
			wantModel:    "gpt-4o",
		},
		{
			name:         "unknown model defaults to openai",
			input:        "llama3.2",
			wantProvider: ProviderOpenAI,
			wantModel:    "llama3.2",
		},
		{
			name:         "case-insensitive prefix",
			input:        "Anthropic/claude-3.5",
			wantProvider: ProviderAnthropic,
			wantModel:    "claude-3.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotProvider, gotModel := ParseModelString(tt.input)
			if gotProvider != tt.wantProvider {
				t.Errorf("ParseModelString(%q) provider = %q, want %q", tt.input, gotProvider, tt.wantProvider)
			}
			if gotModel != tt.wantModel {
				t.Errorf("ParseModelString(%q) model = %q, want %q", tt.input, gotModel, tt.wantModel)
			}
		})
	}
}

// --- OpenAIClient Tests ---

func TestOpenAIClientChat(t *testing.T) {
	var gotReq oaiRequest
	var gotAuth string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(oaiResponse{
			Choices: []oaiChoice{{
				Message:      oaiMessage{Role: "assistant", Content: "hello back"},
				FinishReason: "stop",
			}},
			Usage: oaiUsage{PromptTokens: 12, CompletionTokens: 4},
		})
	}))
	defer ts.Close()

	client := NewOpenAIClient("sk-test", WithBaseURL(ts.URL))
	temperature := 0.0
	resp, err := client.Chat(context.Background(), ChatRequest{
		Model:       "gpt-4o",
		Messages:    []Message{{Role: RoleSystem, Content: "be brief"}, {Role: RoleUser, Content: "hi"}},
		MaxTokens:   2000,
		Temperature: &temperature,
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if resp.Content != "hello back" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.StopReason != StopEndTurn {
		t.Errorf("stop reason = %q", resp.StopReason)
	}
	if resp.Usage.Total() != 16 {
		t.Errorf("usage total = %d", resp.Usage.Total())
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth = %q", gotAuth)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("wire messages = %+v", gotReq.Messages)
	}
	if gotReq.Temperature == nil || *gotReq.Temperature != 0 {
		t.Error("temperature not forwarded")
	}
	if gotReq.MaxTokens != 2000 {
		t.Errorf("max tokens = %d", gotReq.MaxTokens)
	}
}

func TestOpenAIClientToolCalls(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req oaiRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Tools) != 1 || req.Tools[0].Function.Name != "search_programs" {
			t.Errorf("wire tools = %+v", req.Tools)
		}
		_ = json.NewEncoder(w).Encode(oaiResponse{
			Choices: []oaiChoice{{
				Message: oaiMessage{
					Role: "assistant",
					ToolCalls: []oaiToolCall{{
						ID:   "call_abc",
						Type: "function",
						Function: oaiToolCallFunc{
							Name:      "search_programs",
							Arguments: `{"query": "MBA programs"}`,
						},
					}},
				},
				FinishReason: "tool_calls",
			}},
		})
	}))
	defer ts.Close()

	client := NewOpenAIClient("sk-test", WithBaseURL(ts.URL))
	resp, err := client.Chat(context.Background(), ChatRequest{
		Model:    "gpt-4o",
		Messages: []Message{{Role: RoleUser, Content: "find MBAs"}},
		Tools: []ToolDefinition{{
			Name:        "search_programs",
			Description: "search",
			InputSchema: map[string]interface{}{"type": "object"},
		}},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if resp.StopReason != StopToolUse {
		t.Errorf("stop reason = %q", resp.StopReason)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("tool calls = %d", len(resp.ToolCalls))
	}
	call := resp.ToolCalls[0]
	if call.Name != "search_programs" || call.ID != "call_abc" {
		t.Errorf("call = %+v", call)
	}
	if call.RawInput != `{"query": "MBA programs"}` {
		t.Errorf("raw input = %q", call.RawInput)
	}
	if call.Input["query"] != "MBA programs" {
		t.Errorf("decoded input = %v", call.Input)
	}
}

func TestOpenAIClientAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(oaiResponse{
			Error: &oaiError{Type: "invalid_request_error", Message: "bad key"},
		})
	}))
	defer ts.Close()

	client := NewOpenAIClient("bad", WithBaseURL(ts.URL))
	_, err := client.Chat(context.Background(), ChatRequest{Model: "gpt-4o"})
	if err == nil {
		t.Fatal("expected error from API error envelope")
	}
}

// --- MockClient Tests ---

func TestMockClientSequence(t *testing.T) {
	mock := NewMockClient(
		MockResponse{Content: "first"},
		MockResponse{Content: "second"},
	)
	ctx := context.Background()

	for _, want := range []string{"first", "second", "second"} {
		resp, err := mock.Chat(ctx, ChatRequest{Model: "test"})
		if err != nil {
			t.Fatalf("Chat: %v", err)
		}
		if resp.Content != want {
			t.Errorf("content = %q, want %q", resp.Content, want)
		}
	}

	if len(mock.Calls()) != 3 {
		t.Errorf("calls = %d, want 3", len(mock.Calls()))
	}

	mock.Reset()
	if len(mock.Calls()) != 0 {
		t.Error("calls not cleared by Reset")
	}
	resp, _ := mock.Chat(ctx, ChatRequest{Model: "test"})
	if resp.Content != "first" {
		t.Errorf("content after reset = %q, want first", resp.Content)
	}
}

func TestMockClientError(t *testing.T) {
	mock := NewMockClient(MockResponse{Error: fmt.Errorf("api error")})
	if _, err := mock.Chat(context.Background(), ChatRequest{Model: "test"}); err == nil {
		t.Fatal("expected error from mock")
	}

	empty := NewMockClient()
	if _, err := empty.Chat(context.Background(), ChatRequest{Model: "test"}); err == nil {
		t.Fatal("expected error when no responses configured")
	}
}
