package inference

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"justiniano-server/chat-gateway/internal/config"
	"justiniano-server/chat-gateway/internal/domain/conversation"
	"justiniano-server/chat-gateway/internal/utils/platformerrors"
)

func newTestClient(baseURL string) *Client {
	cfg := &config.Config{
		InferenceBaseURL: baseURL,
		InferenceTimeout: 5 * time.Second,
	}
	return NewClient(cfg, zerolog.Nop())
}

func TestStreamChatWireFormat(t *testing.T) {
	var gotBody ChatRequest
	var gotTier string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotTier = r.Header.Get("X-User-Tier")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}

		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "Hola")
		flusher.Flush()
		io.WriteString(w, " mundo")
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	history := []conversation.Turn{{Role: "user", Content: "antes"}}

	stream, err := client.StreamChat(context.Background(), "Saluda", history, "pro", "turn-9")
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if string(data) != "Hola mundo" {
		t.Fatalf("expected %q, got %q", "Hola mundo", string(data))
	}

	if gotTier != "pro" {
		t.Fatalf("expected tier header pro, got %q", gotTier)
	}
	if gotBody.Query != "Saluda" || gotBody.MessageID != "turn-9" {
		t.Fatalf("unexpected wire body: %+v", gotBody)
	}
	if len(gotBody.History) != 1 || gotBody.History[0].Content != "antes" {
		t.Fatalf("unexpected history: %+v", gotBody.History)
	}
}

func TestStreamChatEmptyHistorySerializesAsArray(t *testing.T) {
	var raw map[string]json.RawMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &raw); err != nil {
			t.Errorf("unmarshal request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	stream, err := client.StreamChat(context.Background(), "hola", nil, "free", "turn-1")
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	stream.Close()

	if string(raw["history"]) != "[]" {
		t.Fatalf("expected empty history as [], got %s", raw["history"])
	}
}

func TestStreamChatUpstreamStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.StreamChat(context.Background(), "hola", nil, "free", "turn-1")
	if err == nil {
		t.Fatal("expected error for upstream 503")
	}

	var platformErr *platformerrors.PlatformError
	if !errors.As(err, &platformErr) {
		t.Fatalf("expected platform error, got %T", err)
	}
	if platformErr.GetErrorType() != platformerrors.ErrorTypeExternal {
		t.Fatalf("expected EXTERNAL error type, got %v", platformErr.GetErrorType())
	}
}

func TestStreamChatInterruptedMidStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Declare more bytes than are sent, then drop the connection.
		w.Header().Set("Content-Length", "64")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "parcial")
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	stream, err := client.StreamChat(context.Background(), "hola", nil, "free", "turn-1")
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer stream.Close()

	_, err = io.ReadAll(stream)
	if err == nil {
		t.Fatal("expected read error for truncated stream")
	}
	if !errors.Is(err, ErrStreamInterrupted) {
		t.Fatalf("expected ErrStreamInterrupted, got %v", err)
	}
}

func TestPollEvaluationPending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.PollEvaluation(context.Background(), "turn-1")
	if err != nil {
		t.Fatalf("a missing evaluation is not an error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result for pending evaluation, got %+v", result)
	}
}

func TestPollEvaluationCompleted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/evaluation/turn-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(EvaluationResult{Faithfulness: 0.91, AnswerRelevancy: 0.84})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.PollEvaluation(context.Background(), "turn-1")
	if err != nil {
		t.Fatalf("PollEvaluation: %v", err)
	}
	if result == nil || result.Faithfulness != 0.91 || result.AnswerRelevancy != 0.84 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestPollEvaluationUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.PollEvaluation(context.Background(), "turn-1")
	if err == nil {
		t.Fatal("expected error for upstream 500")
	}
}
