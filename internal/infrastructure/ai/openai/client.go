// Package openai provides OpenAI chat-completions integration. Any server
// that speaks the same API, including Ollama's /v1 endpoint, works too.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/ai/prompt"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/config"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

var _ outbound.AIProvider = (*Client)(nil)

// Client implements outbound.AIProvider using the OpenAI API
type Client struct {
	apiKey         string
	baseURL        string
	model          string
	embeddingModel string
	client         *http.Client
	logger         *zap.Logger
}

// NewClient creates a new OpenAI client
func NewClient(cfg config.OpenAIConfig, timeout time.Duration, logger *zap.Logger) *Client {
	logger.Info("OpenAI client initialized", zap.String("base_url", cfg.BaseURL), zap.String("model", cfg.Model))

	return &Client{
		apiKey:         cfg.APIKey,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named("openai-client"),
	}
}

// ChatCompletionRequest is the body of POST /chat/completions
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat forces JSON output
type ResponseFormat struct {
	Type string `json:"type"`
}

// Message is a single chat turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse is the answer of /chat/completions
type ChatCompletionResponse struct {
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is one completion alternative
type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage reports token consumption
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Name returns the provider name
func (c *Client) Name() string { return "openai" }

// Generate creates a recipe draft from a prompt
func (c *Client) Generate(ctx context.Context, req outbound.GenerationRequest) (recipe.Draft, error) {
	content, err := c.complete(ctx, prompt.GenerationSystem(req), prompt.GenerationUser(req), 0.7+0.05*float64(req.Variation))
	if err != nil {
		return recipe.Draft{}, err
	}

	draft, err := prompt.ParseRecipe(content)
	if err != nil {
		c.logger.Warn("Failed to parse OpenAI response", zap.Error(err))
		return recipe.Draft{}, fmt.Errorf("openai: %w", err)
	}
	return draft, nil
}

// Annotate asks the model to split the recipe into tracks
func (c *Client) Annotate(ctx context.Context, r *recipe.Recipe) (stepgraph.Document, error) {
	content, err := c.complete(ctx, prompt.AnnotationSystem(), prompt.AnnotationUser(r), 0.2)
	if err != nil {
		return stepgraph.Document{}, err
	}

	doc, err := prompt.ParseAnnotations(content)
	if err != nil {
		c.logger.Warn("Failed to parse annotations", zap.Error(err), zap.String("recipe_id", r.ID().String()))
		return stepgraph.Document{}, fmt.Errorf("openai: %w", err)
	}
	return doc, nil
}

// Embed returns the embedding vector for text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embeddingResponse
	if err := c.do(ctx, http.MethodPost, "/embeddings", embeddingRequest{Model: c.embeddingModel, Input: text}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("openai: empty embedding")
	}
	return resp.Data[0].Embedding, nil
}

// Ping lists the models to verify credentials and connectivity
func (c *Client) Ping(ctx context.Context) error {
	var out json.RawMessage
	return c.do(ctx, http.MethodGet, "/models", nil, &out)
}

func (c *Client) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	request := ChatCompletionRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    temperature,
		MaxTokens:      2000,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	var resp ChatCompletionResponse
	if err := c.do(ctx, http.MethodPost, "/chat/completions", request, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}

	c.logger.Debug("OpenAI API call successful",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("finish_reason", resp.Choices[0].FinishReason))

	return resp.Choices[0].Message.Content, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
