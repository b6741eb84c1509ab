// Package gemini provides Google Gemini integration through the official
// genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/ai/prompt"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/config"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model answers without candidates
var ErrEmptyResponse = errors.New("gemini: empty response")

var _ outbound.AIProvider = (*Client)(nil)

// models is the subset of *genai.Models the client calls
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// Client implements outbound.AIProvider on top of genai
type Client struct {
	models         models
	model          string
	embeddingModel string
	limiter        *rate.Limiter
	maxRetries     int
	backoff        time.Duration
	logger         *zap.Logger
}

// NewClient creates a Gemini client. Every API call waits on a shared
// token bucket of cfg.RequestsPerSecond.
func NewClient(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logger.Info("Gemini client initialized", zap.String("model", cfg.Gemini.Model))
	return newClient(cli.Models, cfg, logger), nil
}

func newClient(m models, cfg config.AIConfig, logger *zap.Logger) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	retries := cfg.MaxRetries
	if retries < 1 {
		retries = 1
	}
	return &Client{
		models:         m,
		model:          cfg.Gemini.Model,
		embeddingModel: cfg.Gemini.EmbeddingModel,
		limiter:        rate.NewLimiter(limit, 1),
		maxRetries:     retries,
		backoff:        300 * time.Millisecond,
		logger:         logger.Named("gemini-client"),
	}
}

// Name returns the provider name
func (c *Client) Name() string { return "gemini" }

// Generate creates a recipe draft from a prompt
func (c *Client) Generate(ctx context.Context, req outbound.GenerationRequest) (recipe.Draft, error) {
	text, err := c.generateJSON(ctx, prompt.GenerationSystem(req), prompt.GenerationUser(req), 0.7+0.05*float32(req.Variation))
	if err != nil {
		return recipe.Draft{}, err
	}
	draft, err := prompt.ParseRecipe(text)
	if err != nil {
		return recipe.Draft{}, fmt.Errorf("gemini: %w", err)
	}
	return draft, nil
}

// Annotate asks the model to split the recipe into tracks
func (c *Client) Annotate(ctx context.Context, r *recipe.Recipe) (stepgraph.Document, error) {
	text, err := c.generateJSON(ctx, prompt.AnnotationSystem(), prompt.AnnotationUser(r), 0.2)
	if err != nil {
		return stepgraph.Document{}, err
	}
	doc, err := prompt.ParseAnnotations(text)
	if err != nil {
		return stepgraph.Document{}, fmt.Errorf("gemini: %w", err)
	}
	return doc, nil
}

// Embed returns the embedding vector for text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, ErrEmptyResponse
	}
	return resp.Embeddings[0].Values, nil
}

// Ping fetches the configured model's metadata
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.models.Get(ctx, c.model, nil)
	return err
}

func (c *Client) generateJSON(ctx context.Context, system, user string, temperature float32) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr(temperature),
	}
	contents := genai.Text(user)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		// each attempt consumes a token
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
		switch {
		case err != nil:
			lastErr = err
		case resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0:
			lastErr = ErrEmptyResponse
		default:
			return resp.Text(), nil
		}

		c.logger.Warn("Gemini request failed", zap.Int("attempt", attempt+1), zap.Error(lastErr))
		if attempt == c.maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.backoff * time.Duration(1<<attempt)):
		}
	}
	return "", fmt.Errorf("gemini: %w", lastErr)
}
