package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to the OpenAI API or any server compatible with it.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

var _ contract.ModelClient = &OpenAIClient{} // Compile-time check

// NewOpenAIClient creates a client. An empty baseURL uses the public API.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Generate sends prompt as the system message and content as the user message.
func (c *OpenAIClient) Generate(ctx context.Context, prompt, content string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("chat completion returned an empty message")
	}
	return text, nil
}

// IsAvailable lists models as a liveness probe.
func (c *OpenAIClient) IsAvailable(ctx context.Context) bool {
	_, err := c.client.ListModels(ctx)
	return err == nil
}

// Name returns the provider and model.
func (c *OpenAIClient) Name() string {
	return "openai/" + c.model
}
