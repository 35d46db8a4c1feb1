package localllm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is where LM Studio and similar servers listen by default.
const DefaultBaseURL = "http://localhost:1234/v1"

// Client represents a client for a local OpenAI-compatible LLM server.
type Client struct {
	http        *resty.Client
	Temperature float64
	MaxTokens   int
}

// NewClient creates a new client for the local LLM.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &Client{http: c, Temperature: 0.2, MaxTokens: 4096}
}

// Request represents the request body for the local LLM.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response represents the response from the local LLM.
type Response struct {
	Choices []Choice `json:"choices"`
}

// Choice represents a choice in the response.
type Choice struct {
	Message Message `json:"message"`
}

type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("local llm returned status %d: %s", e.Status, e.Body)
}

// GenerateWithModel sends a system and user message to the named model and
// returns the first choice's content.
func (c *Client) GenerateWithModel(ctx context.Context, model, system, user string) (string, error) {
	reqBody := Request{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(reqBody).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &APIError{Status: resp.StatusCode(), Body: resp.String()}
	}

	var llmResp Response
	if err := json.Unmarshal(resp.Body(), &llmResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}
	if len(llmResp.Choices) == 0 || strings.TrimSpace(llmResp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("no content found in response")
	}
	return llmResp.Choices[0].Message.Content, nil
}

// ListModels returns the ids served at /models.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/models")
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode(), Body: resp.String()}
	}

	var list modelList
	if err := json.Unmarshal(resp.Body(), &list); err != nil {
		return nil, fmt.Errorf("failed to decode model list: %w", err)
	}
	names := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		if m.ID != "" {
			names = append(names, m.ID)
		}
	}
	return names, nil
}

// IsModelNotFound reports whether the server rejected the model name. Servers
// answer 404, or 400 with a "model ... not found" message.
func (c *Client) IsModelNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Status == http.StatusNotFound {
		return true
	}
	body := strings.ToLower(apiErr.Body)
	return apiErr.Status == http.StatusBadRequest && strings.Contains(body, "model") && strings.Contains(body, "not found")
}
