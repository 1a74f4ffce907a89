package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/resilience"
)

const DefaultModel = "gpt-4.1-mini"

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client generates advisory JSON through the Chat Completions API.
type Client struct {
	client   *goopenai.Client
	model    string
	executor *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "create openai client", errors.New("OPENAI_API_KEY is not set"))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Client{
		client:   goopenai.NewClientWithConfig(clientCfg),
		model:    model,
		executor: executor,
	}, nil
}

func (c *Client) GenerateJSON(ctx context.Context, prompt domain.AdvisoryPrompt) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if prompt.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: prompt.System})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: prompt.User})

	req := goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: prompt.Temperature,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := resilience.Call(ctx, c.executor, "openai.chat", func(callCtx context.Context) (goopenai.ChatCompletionResponse, error) {
		return c.client.CreateChatCompletion(callCtx, req)
	}, classifyOpenAIError)
	if err != nil {
		return "", resilience.WrapTemporaryIfNeeded("openai chat completion", err, classifyOpenAIError)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai chat completion: empty content")
	}
	return content, nil
}

func classifyOpenAIError(err error) resilience.ErrorClassification {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return statusClassification(apiErr.HTTPStatusCode)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return statusClassification(reqErr.HTTPStatusCode)
	}
	return resilience.ClassifyHTTPError(err)
}

func statusClassification(status int) resilience.ErrorClassification {
	if resilience.IsRetryableHTTPStatus(status) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
}
