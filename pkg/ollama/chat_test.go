package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChat(t *testing.T) {
	var got chatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(chatResp{Message: Message{Role: "assistant", Content: `{"ok":true}`}, Done: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.1", nil)
	out, err := c.Chat(context.Background(), []Message{System("sys"), User("hi")}, json.RawMessage(`{"type":"object"}`))
	if err != nil {
		t.Fatal(err)
	}
	if out != `{"ok":true}` {
		t.Fatalf("expected content passthrough, got %q", out)
	}
	if got.Model != "llama3.1" || got.Stream || len(got.Messages) != 2 || string(got.Format) != `{"type":"object"}` {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestChatStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "missing", nil).Chat(context.Background(), []Message{User("hi")}, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound || se.Body != "model not found" {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
}

func TestChatMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "m", nil).Chat(context.Background(), nil, nil); err == nil {
		t.Fatal("expected decode error")
	}
}
