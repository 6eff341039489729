// Package providers adapts language-model SDKs to the narrow client
// contract the loop consumes: a system prompt plus the replayed frame
// stack in, one assistant response out. Tool use is expressed in the
// response text, not via provider tool-call APIs, so the loop's own
// validation and gating always apply.
package providers

import (
	"context"
	"fmt"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/oryxcli/oryx/internal/conversation"
)

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicClient builds a client for the given model.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		client:    anthropic.NewClient(apiKey),
		model:     model,
		maxTokens: 4096,
	}
}

func (c *AnthropicClient) buildRequest(system string, msgs []conversation.Message) anthropic.MessagesRequest {
	out := make([]anthropic.Message, 0, len(msgs))
	for _, m := range msgs {
		role := anthropic.RoleUser
		if m.Role == conversation.RoleAssistant {
			role = anthropic.RoleAssistant
		}
		content := m.Content
		// The API rejects empty content blocks.
		if content == "" {
			content = " "
		}
		out = append(out, anthropic.Message{
			Role:    role,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(content)},
		})
	}

	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		Messages:  out,
		MaxTokens: c.maxTokens,
	}
	if system != "" {
		req.System = system
	}
	return req
}

// Complete sends the frame history and returns the full response text.
func (c *AnthropicClient) Complete(ctx context.Context, system string, msgs []conversation.Message) (string, error) {
	resp, err := c.client.CreateMessages(ctx, c.buildRequest(system, msgs))
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text += *block.Text
		}
	}
	return text, nil
}

// Stream delivers the response incrementally. The chunk channel closes
// when the stream ends; the error channel then yields at most one error.
func (c *AnthropicClient) Stream(ctx context.Context, system string, msgs []conversation.Message) (<-chan string, <-chan error) {
	chunks := make(chan string, 10)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		req := anthropic.MessagesStreamRequest{
			MessagesRequest: c.buildRequest(system, msgs),
		}
		req.OnContentBlockDelta = func(delta anthropic.MessagesEventContentBlockDeltaData) {
			if delta.Delta.Type == "text_delta" && delta.Delta.Text != nil {
				select {
				case chunks <- *delta.Delta.Text:
				case <-ctx.Done():
				}
			}
		}

		if _, err := c.client.CreateMessagesStream(ctx, req); err != nil {
			errs <- fmt.Errorf("anthropic stream failed: %w", err)
		}
	}()

	return chunks, errs
}
