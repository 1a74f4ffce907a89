package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/resilience"
)

const defaultTimeout = 60 * time.Second

// Client talks to a local Ollama server in JSON mode.
type Client struct {
	baseURL    string
	genModel   string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel string) *Client {
	return NewWithExecutor(baseURL, genModel, nil)
}

func NewWithExecutor(baseURL, genModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
		executor:   executor,
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system,omitempty"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Format  string          `json:"format"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float32 `json:"temperature"`
}

// GenerateJSON returns the raw model output; callers extract and validate the JSON object.
func (c *Client) GenerateJSON(ctx context.Context, prompt domain.AdvisoryPrompt) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   c.genModel,
		System:  prompt.System,
		Prompt:  prompt.User,
		Format:  "json",
		Options: generateOptions{Temperature: prompt.Temperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	out, err := resilience.Call(ctx, c.executor, "ollama.generate", func(callCtx context.Context) (string, error) {
		return c.generate(callCtx, body)
	}, resilience.ClassifyHTTPError)
	if err != nil {
		return "", resilience.WrapTemporaryIfNeeded("ollama generate", err, resilience.ClassifyHTTPError)
	}
	if out == "" {
		return "", fmt.Errorf("ollama generate: empty response")
	}
	return out, nil
}

func (c *Client) generate(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama generate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", resilience.NewHTTPStatusError("ollama", "generate", resp)
	}
	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	return strings.TrimSpace(response.Response), nil
}
