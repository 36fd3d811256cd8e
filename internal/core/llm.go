package core

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	groqBaseURL = "https://api.groq.com/openai/v1"

	completionMaxTokens   = 500
	completionTemperature = 0.7
)

// Completer is the single capability the responder needs from an LLM
// provider. Implementations are configured once at startup and shared by all
// requests; any error selects the rule-based fallback.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// GroqCompleter talks to Groq's OpenAI-compatible chat completion API.
type GroqCompleter struct {
	client *openai.Client
	model  string
}

func NewGroqCompleter(apiKey, model string) *GroqCompleter {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL
	return &GroqCompleter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *GroqCompleter) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("groq chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("groq returned an empty completion")
	}
	return content, nil
}
