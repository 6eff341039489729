package providers

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"github.com/oryxcli/oryx/internal/conversation"
)

// OpenAIClient talks to the OpenAI chat completions API, or any
// OpenAI-compatible endpoint when a base URL is set.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a client. baseURL may be empty for the
// official API.
func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *OpenAIClient) buildRequest(system string, msgs []conversation.Message) openai.ChatCompletionRequest {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	if system != "" {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range msgs {
		role := openai.ChatMessageRoleUser
		if m.Role == conversation.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		content := m.Content
		// Empty content serializes as null and the API rejects it.
		if content == "" {
			content = " "
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: content})
	}
	return openai.ChatCompletionRequest{Model: c.model, Messages: out}
}

// Complete sends the frame history and returns the full response text.
func (c *OpenAIClient) Complete(ctx context.Context, system string, msgs []conversation.Message) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(system, msgs))
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from provider")
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream delivers the response incrementally. The chunk channel closes
// when the stream ends; the error channel then yields at most one error.
func (c *OpenAIClient) Stream(ctx context.Context, system string, msgs []conversation.Message) (<-chan string, <-chan error) {
	chunks := make(chan string, 10)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		req := c.buildRequest(system, msgs)
		req.Stream = true

		stream, err := c.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			errs <- fmt.Errorf("openai stream failed: %w", err)
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errs <- fmt.Errorf("openai stream read failed: %w", err)
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if delta := resp.Choices[0].Delta.Content; delta != "" {
				select {
				case chunks <- delta:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return chunks, errs
}
