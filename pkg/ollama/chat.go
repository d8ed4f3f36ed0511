// Package ollama is a minimal client for Ollama's chat endpoint in
// structured-output mode.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// System and User build chat turns.
func System(content string) Message { return Message{Role: "system", Content: content} }
func User(content string) Message   { return Message{Role: "user", Content: content} }

type chatReq struct {
	Model    string          `json:"model"`
	Messages []Message       `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format,omitempty"`
}

type chatResp struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// StatusError is returned for a non-200 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ollama chat: status %d: %s", e.Code, e.Body)
}

// Client talks to one Ollama server and model.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates an Ollama chat client. A nil hc uses a default client.
func NewClient(baseURL, model string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{baseURL: baseURL, model: model, client: hc}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Chat sends messages and returns the assistant's content. A non-empty
// format constrains the reply to that JSON schema.
func (c *Client) Chat(ctx context.Context, messages []Message, format json.RawMessage) (string, error) {
	body, err := json.Marshal(chatReq{Model: c.model, Messages: messages, Format: format})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}

	var result chatResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("ollama chat decode: %w", err)
	}
	return result.Message.Content, nil
}
