package openaichat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/graphragio/gateway/internal/core/domain"
	"github.com/graphragio/gateway/internal/infrastructure/resilience"
)

// Client talks to an OpenAI-compatible chat-completions backend, the model
// type a GraphRAG settings.yaml names for its default_chat_model.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey, model string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionsRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type completionsResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *Client) Complete(ctx context.Context, messages []domain.ConversationTurn) (*domain.Completion, error) {
	request := completionsRequest{
		Model:    c.model,
		Messages: toWireMessages(messages),
	}

	var response completionsResponse
	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/chat/completions", request, &response, "complete")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "llm_complete", call, classifyError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("llm complete", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("llm complete: response has no choices")
	}
	return &domain.Completion{
		Text:             strings.TrimSpace(response.Choices[0].Message.Content),
		PromptTokens:     response.Usage.PromptTokens,
		CompletionTokens: response.Usage.CompletionTokens,
	}, nil
}

// StreamComplete starts a streaming completion and yields content deltas.
// The stream is not retried once response bytes have been produced.
func (c *Client) StreamComplete(ctx context.Context, messages []domain.ConversationTurn) (<-chan string, error) {
	request := completionsRequest{
		Model:    c.model,
		Messages: toWireMessages(messages),
		Stream:   true,
	}

	body, err := c.postStream(ctx, "/chat/completions", request, "stream")
	if err != nil {
		return nil, wrapTemporaryIfNeeded("llm stream", err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer body.Close()
		if err := readSSEDeltas(ctx, body, out); err != nil {
			select {
			case out <- fmt.Sprintf("\n\nError during search: %v", err):
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

func toWireMessages(messages []domain.ConversationTurn) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, wireMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
