package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JexSrs/go-ollama"
	"github.com/huangsam/legacylens/internal/contract"
)

// OllamaClient talks to a local Ollama server.
type OllamaClient struct {
	client  *ollama.Ollama
	baseURL *url.URL
	model   string
	http    *http.Client
}

var _ contract.ModelClient = &OllamaClient{} // Compile-time check

// NewOllamaClient creates a client for the server at rawURL. Every HTTP call,
// including one abandoned by Generate, gives up after timeout.
func NewOllamaClient(rawURL, model string, timeout time.Duration) (*OllamaClient, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid Ollama URL %q: scheme and host are required", rawURL)
	}
	if timeout <= 0 {
		timeout = contract.DefaultModelTimeout
	}
	httpClient := &http.Client{Timeout: timeout}
	client := ollama.New(*u)
	client.Http = httpClient
	return &OllamaClient{
		client:  client,
		baseURL: u,
		model:   model,
		http:    httpClient,
	}, nil
}

type ollamaResult struct {
	text string
	err  error
}

// Generate sends prompt as the system message and content as the prompt. The
// library call has no context, so it runs in its own goroutine and is
// abandoned when ctx ends.
func (c *OllamaClient) Generate(ctx context.Context, prompt, content string) (string, error) {
	done := make(chan ollamaResult, 1)
	go func() {
		res, err := c.client.Generate(
			c.client.Generate.WithModel(c.model),
			c.client.Generate.WithSystem(prompt),
			c.client.Generate.WithPrompt(content),
		)
		if err != nil {
			done <- ollamaResult{err: fmt.Errorf("failed to call Ollama generate: %w", err)}
			return
		}
		if !res.Done {
			done <- ollamaResult{err: errors.New("ollama response is not complete")}
			return
		}
		done <- ollamaResult{text: strings.TrimSpace(res.Response)}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("ollama generate: %w", ctx.Err())
	case r := <-done:
		if r.err == nil && r.text == "" {
			return "", errors.New("ollama returned an empty response")
		}
		return r.text, r.err
	}
}

// IsAvailable checks that the server answers its model listing.
func (c *OllamaClient) IsAvailable(ctx context.Context) bool {
	return probe(ctx, c.http, c.baseURL.JoinPath("api", "tags").String())
}

// Name returns the provider and model.
func (c *OllamaClient) Name() string {
	return "ollama/" + c.model
}
