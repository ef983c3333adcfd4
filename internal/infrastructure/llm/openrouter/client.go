// Package openrouter is the external AI collaborator: a chat-completions
// client for OpenRouter-compatible providers. The pipeline hands it an
// already-budgeted PromptPayload and a model id; transport, auth, and
// retry policy are this package's concern alone.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/inklyn/docchat/internal/core/domain"
	"github.com/inklyn/docchat/internal/infrastructure/resilience"
)

type Config struct {
	BaseURL     string
	APIKey      string
	AppName     string
	Referer     string
	MaxTokens   int
	Temperature float32
}

type Client struct {
	cfg  Config
	http *http.Client
	exec *resilience.Executor
}

func New(cfg Config, exec *resilience.Executor) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   60 * time.Second,
			Transport: newLoggingTransport(http.DefaultTransport),
		},
		exec: exec,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the payload and returns the assistant's reply text.
func (c *Client) Complete(ctx context.Context, payload domain.PromptPayload, model string) (string, error) {
	var reply string
	err := c.exec.Execute(ctx, "chat_complete", func(ctx context.Context) error {
		var callErr error
		reply, callErr = c.complete(ctx, payload, model)
		return callErr
	}, func(err error) bool {
		return domain.IsKind(err, domain.ErrTemporary)
	})
	return reply, err
}

func (c *Client) complete(ctx context.Context, payload domain.PromptPayload, model string) (string, error) {
	messages := make([]chatMessage, 0, len(payload.Messages))
	for _, m := range payload.Messages {
		messages = append(messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.AppName != "" {
		req.Header.Set("X-Title", c.cfg.AppName)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", domain.WrapError(domain.ErrTemporary, "chat request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return "", domain.WrapError(domain.ErrTemporary, "chat request", fmt.Errorf("status %d", resp.StatusCode))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := ""
		if parsed.Error != nil {
			detail = ": " + parsed.Error.Message
		}
		return "", fmt.Errorf("chat request: status %d%s", resp.StatusCode, detail)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
