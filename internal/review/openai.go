// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/arxiv-crawler/internal/httputil"
)

// openAIChatURL is the chat completions endpoint used when the
// configuration leaves Endpoint empty. Package-level var for test
// substitution.
var openAIChatURL = "https://api.openai.com/v1/chat/completions"

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage counts the tokens of one completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Completion is a model reply.
type Completion struct {
	Content string
	Usage   Usage
}

// ChatBackend abstracts the chat completion API so tests can supply a mock.
type ChatBackend interface {
	Complete(ctx context.Context, messages []Message) (Completion, error)
}

// OpenAIBackend calls an OpenAI-compatible chat completions endpoint.
type OpenAIBackend struct {
	APIKey   string
	Model    string
	Endpoint string
	Client   *http.Client
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Complete sends the conversation and returns the first choice.
func (b *OpenAIBackend) Complete(ctx context.Context, messages []Message) (Completion, error) {
	body, err := json.Marshal(chatRequest{Model: b.Model, Messages: messages})
	if err != nil {
		return Completion{}, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := b.Endpoint
	if endpoint == "" {
		endpoint = openAIChatURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.APIKey)

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Completion{}, fmt.Errorf("calling chat API: %w", err)
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return Completion{}, err
	}
	defer resp.Body.Close()

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Completion{}, fmt.Errorf("decoding chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return Completion{}, errors.New("chat API returned no choices")
	}
	return Completion{Content: cr.Choices[0].Message.Content, Usage: cr.Usage}, nil
}
