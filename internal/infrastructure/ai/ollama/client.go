// Package ollama provides Ollama integration for local AI inference
package ollama

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

// Client implements outbound.AIProvider using the Ollama API
type Client struct {
	baseURL        string
	model          string
	embeddingModel string
	client         *http.Client
	logger         *zap.Logger
}

// NewClient creates a new Ollama client
func NewClient(cfg config.OllamaConfig, timeout time.Duration, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	logger.Info("Ollama client initialized",
		zap.String("base_url", baseURL),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", timeout))

	return &Client{
		baseURL:        baseURL,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named("ollama-client"),
	}
}

// ChatMessage is a single chat turn
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Model    string         `json:"model"`
	Messages []ChatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

// ChatResponse is the non-streaming answer of /api/chat
type ChatResponse struct {
	Model           string      `json:"model"`
	Message         ChatMessage `json:"message"`
	Done            bool        `json:"done"`
	TotalDuration   int64       `json:"total_duration,omitempty"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
	EvalCount       int         `json:"eval_count,omitempty"`
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Name returns the provider name
func (c *Client) Name() string { return "ollama" }

// Generate creates a recipe draft from a prompt
func (c *Client) Generate(ctx context.Context, req outbound.GenerationRequest) (recipe.Draft, error) {
	content, err := c.chat(ctx, []ChatMessage{
		{Role: "system", Content: prompt.GenerationSystem(req)},
		{Role: "user", Content: prompt.GenerationUser(req)},
	}, 0.7+0.05*float64(req.Variation))
	if err != nil {
		return recipe.Draft{}, err
	}

	draft, err := prompt.ParseRecipe(content)
	if err != nil {
		c.logger.Warn("Failed to parse generated recipe", zap.Error(err), zap.Int("response_length", len(content)))
		return recipe.Draft{}, fmt.Errorf("ollama: %w", err)
	}
	return draft, nil
}

// Annotate asks the model to split the recipe into tracks
func (c *Client) Annotate(ctx context.Context, r *recipe.Recipe) (stepgraph.Document, error) {
	content, err := c.chat(ctx, []ChatMessage{
		{Role: "system", Content: prompt.AnnotationSystem()},
		{Role: "user", Content: prompt.AnnotationUser(r)},
	}, 0.2)
	if err != nil {
		return stepgraph.Document{}, err
	}

	doc, err := prompt.ParseAnnotations(content)
	if err != nil {
		c.logger.Warn("Failed to parse annotations", zap.Error(err), zap.String("recipe_id", r.ID().String()))
		return stepgraph.Document{}, fmt.Errorf("ollama: %w", err)
	}
	return doc, nil
}

// Embed returns the embedding vector for text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embeddingResponse
	if err := c.post(ctx, "/api/embeddings", embeddingRequest{Model: c.embeddingModel, Prompt: text}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama: empty embedding")
	}
	return resp.Embedding, nil
}

// Ping checks that the Ollama server answers
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health check returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) chat(ctx context.Context, messages []ChatMessage, temperature float64) (string, error) {
	request := ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Format:   "json",
		Options: map[string]any{
			"temperature": temperature,
			"num_predict": 2048,
			"num_ctx":     4096,
		},
	}

	start := time.Now()
	var resp ChatResponse
	if err := c.post(ctx, "/api/chat", request, &resp); err != nil {
		return "", err
	}

	c.logger.Debug("Ollama chat completion successful",
		zap.String("model", resp.Model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("prompt_tokens", resp.PromptEvalCount),
		zap.Int("completion_tokens", resp.EvalCount))

	if strings.TrimSpace(resp.Message.Content) == "" {
		return "", fmt.Errorf("ollama: empty response")
	}
	return resp.Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
