// Package recipe provides the application layer for recipes: generation,
// parsing into cooking tracks and semantic search.
// This implements the use cases defined in the inbound ports
package recipe

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/shared"
	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealplanner/internal/ports/inbound"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/alchemorsel/mealplanner/pkg/errors"
	"github.com/alchemorsel/mealplanner/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCandidates  = 3
	maxCandidates      = 6
	defaultSearchLimit = 10
	maxSearchLimit     = 50
	backgroundTimeout  = 30 * time.Second
	untitledRecipe     = "Untitled recipe"
)

var _ inbound.RecipeService = (*RecipeService)(nil)

// Options tunes the recipe service
type Options struct {
	MaxConcurrency     int
	WarnDuplicates     bool
	DefaultSearchLimit int
}

// Dependencies are the ports the recipe service drives. Index and Archiver
// may be nil when search or archiving is disabled; Heuristic may be nil, in
// which case a failed annotation degrades straight to a single track.
type Dependencies struct {
	AI        outbound.AIService
	Heuristic outbound.RecipeAnnotator
	Recipes   outbound.RecipeRepository
	Parsed    outbound.ParsedRecipeRepository
	Cache     outbound.GraphCache
	Index     outbound.RecipeIndex
	Archiver  outbound.GraphArchiver
	Events    shared.EventPublisher
	Metrics   *monitoring.Metrics
	Tracing   *monitoring.TracingProvider
	Logger    *zap.Logger
}

// RecipeService implements the recipe use cases
type RecipeService struct {
	ai        outbound.AIService
	heuristic outbound.RecipeAnnotator
	recipes   outbound.RecipeRepository
	parsed    outbound.ParsedRecipeRepository
	cache     outbound.GraphCache
	index     outbound.RecipeIndex
	archiver  outbound.GraphArchiver
	events    shared.EventPublisher
	metrics   *monitoring.Metrics
	tracer    trace.Tracer
	logger    *zap.Logger
	opts      Options

	mu         sync.Mutex
	closed     bool
	background sync.WaitGroup
}

// NewRecipeService creates a new recipe service
func NewRecipeService(deps Dependencies, opts Options) *RecipeService {
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	if opts.DefaultSearchLimit < 1 {
		opts.DefaultSearchLimit = defaultSearchLimit
	}
	return &RecipeService{
		ai:        deps.AI,
		heuristic: deps.Heuristic,
		recipes:   deps.Recipes,
		parsed:    deps.Parsed,
		cache:     deps.Cache,
		index:     deps.Index,
		archiver:  deps.Archiver,
		events:    deps.Events,
		metrics:   deps.Metrics,
		tracer:    deps.Tracing.Tracer(),
		logger:    deps.Logger.Named("recipe-service"),
		opts:      opts,
	}
}

// GenerateRecipes asks the AI service for several candidates concurrently.
// Failed candidates are skipped; the call fails only when none succeeded.
func (s *RecipeService) GenerateRecipes(ctx context.Context, cmd inbound.GenerateRecipesCommand) ([]*inbound.RecipeDTO, error) {
	ctx, span := s.tracer.Start(ctx, "recipe.generate")
	defer span.End()
	log := logger.FromContext(ctx, s.logger)

	count := cmd.Count
	if count < 1 {
		count = defaultCandidates
	}
	if count > maxCandidates {
		count = maxCandidates
	}

	log.Info("Generating recipes",
		zap.String("prompt", cmd.Prompt),
		zap.Int("count", count),
		zap.Strings("dietary", cmd.Dietary))

	results := make([]*recipe.Recipe, count)
	failures := make([]error, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxConcurrency)
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			r, err := s.generateOne(gctx, cmd, i)
			if err != nil {
				// one bad candidate must not cancel its siblings
				failures[i] = err
				log.Warn("Recipe candidate failed", zap.Int("variation", i), zap.Error(err))
				return nil
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*inbound.RecipeDTO, 0, count)
	for _, r := range results {
		if r != nil {
			out = append(out, inbound.NewRecipeDTO(r))
		}
	}
	if len(out) == 0 {
		err := stderrors.Join(failures...)
		monitoring.RecordError(ctx, err)
		return nil, errors.NewAIServiceError("generate recipes", err)
	}

	s.metrics.RecipesGenerated(len(out))
	span.SetAttributes(attribute.Int("recipes.generated", len(out)))
	log.Info("Recipes generated", zap.Int("requested", count), zap.Int("generated", len(out)))
	return out, nil
}

func (s *RecipeService) generateOne(ctx context.Context, cmd inbound.GenerateRecipesCommand, variation int) (*recipe.Recipe, error) {
	draft, provider, err := s.ai.Generate(ctx, outbound.GenerationRequest{
		Prompt:    cmd.Prompt,
		Dietary:   cmd.Dietary,
		Cuisine:   cmd.Cuisine,
		Variation: variation,
	})
	if err != nil {
		return nil, err
	}
	draft.Source = recipe.SourceGenerated

	r, err := recipe.NewRecipe(draft)
	if err != nil {
		return nil, fmt.Errorf("invalid generated recipe: %w", err)
	}
	r.MarkGenerated(provider, cmd.Prompt)

	if err := s.recipes.Save(ctx, r); err != nil {
		return nil, errors.NewDatabaseError("save recipe", err)
	}
	events := r.Events()
	if s.indexRecipe(ctx, r) {
		events = append(events, recipe.RecipeIndexedEvent{RecipeID: r.ID(), IndexedAt: time.Now().UTC()})
	}
	s.publish(ctx, events...)
	return r, nil
}

// ParseRecipe resolves a recipe and returns its cooking-track graph
func (s *RecipeService) ParseRecipe(ctx context.Context, cmd inbound.ParseRecipeCommand) (*inbound.ParseRecipeResponse, error) {
	return s.ParseStream(ctx, cmd, nil)
}

// ParseStream is ParseRecipe with progress reporting. progress may be nil.
func (s *RecipeService) ParseStream(ctx context.Context, cmd inbound.ParseRecipeCommand, progress func(inbound.ParseProgress)) (*inbound.ParseRecipeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "recipe.parse")
	defer span.End()
	log := logger.FromContext(ctx, s.logger)

	emit := func(stage, message string) {
		if progress != nil {
			progress(inbound.ParseProgress{Stage: stage, Message: message, At: time.Now().UTC()})
		}
	}

	emit(inbound.StageResolving, "")
	r, stored, err := s.resolve(ctx, cmd)
	if err != nil {
		monitoring.RecordError(ctx, err)
		return nil, err
	}
	hash := r.ContentHash()
	span.SetAttributes(attribute.String("recipe.content_hash", hash))

	if !cmd.ForceRefresh {
		if resp, ok := s.lookup(ctx, r, stored, hash); ok {
			log.Debug("Parse served from cache", zap.String("content_hash", hash))
			emit(inbound.StageCache, hash)
			emit(inbound.StageDone, "cached")
			return resp, nil
		}
	}

	emit(inbound.StageAnnotating, "")
	doc, provider := s.annotate(ctx, r)

	emit(inbound.StageBuilding, provider)
	parsed := recipe.NewParsedRecipe(r, doc, provider, stepgraph.Options{WarnDuplicateArtifacts: s.opts.WarnDuplicates})
	s.metrics.GraphBuilt(parsed.Graph, parsed.Diagnostics)
	for _, d := range parsed.Diagnostics {
		log.Warn("Graph warning", zap.String("kind", string(d.Kind)), zap.String("step_id", d.StepID), zap.String("message", d.Message))
	}

	if err := s.parsed.Save(ctx, parsed); err != nil {
		monitoring.RecordError(ctx, err)
		return nil, errors.NewDatabaseError("save parsed recipe", err)
	}
	if err := s.cache.Set(ctx, hash, cachedGraph(parsed)); err != nil {
		log.Warn("Failed to cache graph", zap.String("content_hash", hash), zap.Error(err))
	}
	s.publish(ctx, parsed.Event())
	s.afterParse(ctx, parsed)

	span.SetAttributes(
		attribute.Int("graph.tracks", len(parsed.Graph.Tracks)),
		attribute.Int("graph.joins", len(parsed.Graph.Joins)),
		attribute.Bool("graph.fallback", parsed.Graph.IsFallback()),
	)
	log.Info("Recipe parsed",
		zap.String("parsed_id", parsed.ID.String()),
		zap.String("recipe_id", r.ID().String()),
		zap.String("provider", provider),
		zap.Int("tracks", len(parsed.Graph.Tracks)),
		zap.Int("joins", len(parsed.Graph.Joins)),
		zap.Int("warnings", len(parsed.Graph.Warnings)))

	emit(inbound.StageDone, "")
	return parsedResponse(parsed, false), nil
}

// resolve returns the recipe to parse and whether it is already stored. An
// inline recipe keeps its id only when the stored recipe has the same
// content; otherwise it is new content and gets a fresh id.
func (s *RecipeService) resolve(ctx context.Context, cmd inbound.ParseRecipeCommand) (*recipe.Recipe, bool, error) {
	switch {
	case cmd.Recipe != nil:
		r, err := recipe.NewRecipe(cmd.Recipe.Draft())
		if err != nil {
			return nil, false, errors.NewValidationError(err.Error())
		}
		if cmd.Recipe.ID == uuid.Nil {
			return r, false, nil
		}
		stored, err := s.recipes.FindByID(ctx, cmd.Recipe.ID)
		switch {
		case err == nil:
			if stored.ContentHash() == r.ContentHash() {
				return stored, true, nil
			}
			logger.FromContext(ctx, s.logger).Debug("Inline recipe differs from stored recipe, parsing as new",
				zap.String("recipe_id", cmd.Recipe.ID.String()))
			return r, false, nil
		case stderrors.Is(err, recipe.ErrRecipeNotFound):
			return r, false, nil
		default:
			return nil, false, errors.NewDatabaseError("find recipe", err)
		}

	case cmd.RecipeID != nil:
		r, err := s.recipes.FindByID(ctx, *cmd.RecipeID)
		if stderrors.Is(err, recipe.ErrRecipeNotFound) {
			return nil, false, errors.NewRecipeNotFoundError(cmd.RecipeID.String())
		}
		if err != nil {
			return nil, false, errors.NewDatabaseError("find recipe", err)
		}
		return r, true, nil

	case strings.TrimSpace(cmd.RawText) != "":
		title := strings.TrimSpace(cmd.Title)
		if title == "" {
			title = untitledRecipe
		}
		r, err := recipe.NewRecipe(recipe.Draft{
			Title:        title,
			Instructions: recipe.SplitInstructions(cmd.RawText),
			Source:       recipe.SourceUser,
		})
		if err != nil {
			return nil, false, errors.NewValidationError(err.Error())
		}
		return r, false, nil
	}
	return nil, false, errors.NewValidationError("one of recipe, recipe_id or raw_text is required")
}

// lookup checks the graph cache, then the newest stored parse of the same
// content. A store hit warms the cache. Hits answer with a stored recipe:
// r itself when it is stored, otherwise the recipe the hit was parsed from.
func (s *RecipeService) lookup(ctx context.Context, r *recipe.Recipe, stored bool, hash string) (*inbound.ParseRecipeResponse, bool) {
	log := logger.FromContext(ctx, s.logger)

	entry, err := s.cache.Get(ctx, hash)
	switch {
	case err == nil:
		owner := r
		if !stored {
			owner = s.cachedOwner(ctx, entry)
		}
		if owner != nil {
			return &inbound.ParseRecipeResponse{
				ID:          entry.ParsedID,
				Recipe:      inbound.NewRecipeDTO(owner),
				Graph:       entry.Graph,
				Annotations: entry.Annotations,
				Diagnostics: entry.Diagnostics,
				Provider:    entry.Provider,
				Cached:      true,
				ParsedAt:    entry.ParsedAt,
			}, true
		}
	case !stderrors.Is(err, outbound.ErrCacheMiss):
		log.Warn("Graph cache lookup failed", zap.String("content_hash", hash), zap.Error(err))
	}

	latest, err := s.parsed.FindLatestByHash(ctx, hash)
	if err != nil {
		if !stderrors.Is(err, recipe.ErrParsedNotFound) {
			log.Warn("Parsed recipe lookup failed", zap.String("content_hash", hash), zap.Error(err))
		}
		return nil, false
	}
	if err := s.cache.Set(ctx, hash, cachedGraph(latest)); err != nil {
		log.Warn("Failed to cache graph", zap.String("content_hash", hash), zap.Error(err))
	}

	resp := parsedResponse(latest, true)
	if stored {
		resp.Recipe = inbound.NewRecipeDTO(r)
	}
	return resp, true
}

// cachedOwner loads the recipe a cache entry was parsed from. nil sends the
// lookup on to the parse store.
func (s *RecipeService) cachedOwner(ctx context.Context, entry *outbound.CachedGraph) *recipe.Recipe {
	if entry.RecipeID == uuid.Nil {
		return nil
	}
	owner, err := s.recipes.FindByID(ctx, entry.RecipeID)
	if err != nil {
		logger.FromContext(ctx, s.logger).Debug("Cached graph recipe unavailable",
			zap.String("recipe_id", entry.RecipeID.String()), zap.Error(err))
		return nil
	}
	return owner
}

// annotate never fails: a provider error degrades to the heuristic
// annotator and then to an unannotated document, which the builder turns
// into the single fallback track.
func (s *RecipeService) annotate(ctx context.Context, r *recipe.Recipe) (stepgraph.Document, string) {
	log := logger.FromContext(ctx, s.logger)

	doc, provider, err := s.ai.Annotate(ctx, r)
	if err == nil {
		return doc, provider
	}
	log.Warn("Annotation failed, using heuristic annotator", zap.String("recipe_id", r.ID().String()), zap.Error(err))

	if s.heuristic != nil {
		doc, herr := s.heuristic.Annotate(ctx, r)
		if herr == nil {
			return doc, s.heuristic.Name()
		}
		log.Warn("Heuristic annotation failed", zap.Error(herr))
	}
	return flatDocument(r), "none"
}

func flatDocument(r *recipe.Recipe) stepgraph.Document {
	doc := stepgraph.Document{Artifacts: []stepgraph.Artifact{}}
	for i, line := range r.Instructions() {
		doc.Steps = append(doc.Steps, stepgraph.StepRecord{
			StepID:      fmt.Sprintf("step-%d", i+1),
			Number:      i + 1,
			Instruction: line,
			Role:        stepgraph.RoleSimple,
		})
	}
	return doc
}

// afterParse archives and indexes the parse in the background. Both are
// best effort and outlive the request. Once Wait has been called the work
// is skipped.
func (s *RecipeService) afterParse(ctx context.Context, p *recipe.ParsedRecipe) {
	if s.archiver == nil && s.index == nil {
		return
	}
	log := logger.FromContext(ctx, s.logger)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		log.Debug("Service draining, skipping archive and index", zap.String("parsed_id", p.ID.String()))
		return
	}
	s.background.Add(1)
	s.mu.Unlock()

	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundTimeout)
	go func() {
		defer s.background.Done()
		defer cancel()

		if s.archiver != nil {
			key, err := s.archiver.Archive(bg, p)
			s.metrics.Archived(err)
			if err != nil {
				log.Warn("Failed to archive parsed recipe", zap.String("parsed_id", p.ID.String()), zap.Error(err))
			} else {
				log.Debug("Parsed recipe archived", zap.String("key", key))
			}
		}
		if s.indexRecipe(bg, p.Recipe) {
			s.publish(bg, recipe.RecipeIndexedEvent{RecipeID: p.Recipe.ID(), IndexedAt: time.Now().UTC()})
		}
	}()
}

// Wait stops new background work and blocks until the running archive and
// index work finished or ctx ends
func (s *RecipeService) Wait(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetParsedRecipe loads a stored parse result
func (s *RecipeService) GetParsedRecipe(ctx context.Context, id uuid.UUID) (*inbound.ParseRecipeResponse, error) {
	p, err := s.parsed.FindByID(ctx, id)
	if stderrors.Is(err, recipe.ErrParsedNotFound) {
		return nil, errors.NewParsedRecipeNotFoundError(id.String())
	}
	if err != nil {
		return nil, errors.NewDatabaseError("find parsed recipe", err)
	}
	return parsedResponse(p, false), nil
}

// BuildGraph runs the builder on caller-supplied annotations without any LLM
func (s *RecipeService) BuildGraph(ctx context.Context, cmd inbound.BuildGraphCommand) (*inbound.GraphResponse, error) {
	_, span := s.tracer.Start(ctx, "recipe.build_graph")
	defer span.End()

	steps, skipped := cmd.Annotations.Decode()
	result := stepgraph.BuildWithOptions(cmd.Annotations.Artifacts, steps, stepgraph.Options{
		WarnDuplicateArtifacts: cmd.WarnDuplicates || s.opts.WarnDuplicates,
	})
	s.metrics.GraphBuilt(result.Graph, result.Diagnostics)

	diags := result.Diagnostics
	if diags == nil {
		diags = []stepgraph.Diagnostic{}
	}
	return &inbound.GraphResponse{
		Graph:       result.Graph,
		Diagnostics: diags,
		Skipped:     skipped,
	}, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*inbound.RecipeDTO, error) {
	r, err := s.recipes.FindByID(ctx, id)
	if stderrors.Is(err, recipe.ErrRecipeNotFound) {
		return nil, errors.NewRecipeNotFoundError(id.String())
	}
	if err != nil {
		return nil, errors.NewDatabaseError("find recipe", err)
	}
	return inbound.NewRecipeDTO(r), nil
}

// SearchRecipes ranks stored recipes by embedding similarity to the query
func (s *RecipeService) SearchRecipes(ctx context.Context, query inbound.SearchQuery) ([]inbound.SearchHit, error) {
	if s.index == nil {
		return nil, errors.NewAppError(errors.CodeServiceUnavailable, "Search is disabled", "")
	}
	q := strings.TrimSpace(query.Query)
	if q == "" {
		return nil, errors.NewValidationError("query is required")
	}
	limit := query.Limit
	if limit < 1 {
		limit = s.opts.DefaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	ctx, span := s.tracer.Start(ctx, "recipe.search")
	defer span.End()

	vector, err := s.ai.Embed(ctx, q)
	if err != nil {
		return nil, err
	}
	scored, err := s.index.Query(ctx, vector, limit)
	if err != nil {
		return nil, errors.NewExternalServiceError("recipe index", err)
	}
	if len(scored) == 0 {
		return []inbound.SearchHit{}, nil
	}

	ids := make([]uuid.UUID, len(scored))
	scores := make(map[uuid.UUID]float64, len(scored))
	for i, hit := range scored {
		ids[i] = hit.ID
		scores[hit.ID] = hit.Score
	}
	recipes, err := s.recipes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.NewDatabaseError("load search results", err)
	}

	hits := make([]inbound.SearchHit, 0, len(recipes))
	for _, r := range recipes {
		hits = append(hits, inbound.SearchHit{Recipe: inbound.NewRecipeDTO(r), Score: scores[r.ID()]})
	}
	span.SetAttributes(attribute.Int("search.hits", len(hits)))
	return hits, nil
}

// indexRecipe embeds and indexes r, reporting whether it succeeded
func (s *RecipeService) indexRecipe(ctx context.Context, r *recipe.Recipe) bool {
	if s.index == nil {
		return false
	}
	log := logger.FromContext(ctx, s.logger)

	vector, err := s.ai.Embed(ctx, SearchText(r))
	if err != nil {
		log.Warn("Failed to embed recipe", zap.String("recipe_id", r.ID().String()), zap.Error(err))
		return false
	}
	if err := s.index.Upsert(ctx, r.ID(), vector); err != nil {
		log.Warn("Failed to index recipe", zap.String("recipe_id", r.ID().String()), zap.Error(err))
		return false
	}
	return true
}

func (s *RecipeService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		logger.FromContext(ctx, s.logger).Error("Failed to publish events", zap.Error(err))
	}
}

// SearchText is the text embedded for a recipe
func SearchText(r *recipe.Recipe) string {
	var b strings.Builder
	b.WriteString(r.Title())
	if r.Cuisine() != "" {
		b.WriteString(". ")
		b.WriteString(r.Cuisine())
	}
	if r.Description() != "" {
		b.WriteString(". ")
		b.WriteString(r.Description())
	}
	if len(r.Ingredients()) > 0 {
		names := make([]string, len(r.Ingredients()))
		for i, ing := range r.Ingredients() {
			names[i] = ing.Name
		}
		b.WriteString(". Ingredients: ")
		b.WriteString(strings.Join(names, ", "))
	}
	if len(r.Tags()) > 0 {
		b.WriteString(". Tags: ")
		b.WriteString(strings.Join(r.Tags(), ", "))
	}
	return b.String()
}

func cachedGraph(p *recipe.ParsedRecipe) *outbound.CachedGraph {
	return &outbound.CachedGraph{
		ParsedID:    p.ID,
		RecipeID:    p.Recipe.ID(),
		Annotations: p.Annotations,
		Graph:       p.Graph,
		Diagnostics: p.Diagnostics,
		Provider:    p.Provider,
		ParsedAt:    p.ParsedAt,
	}
}

func parsedResponse(p *recipe.ParsedRecipe, cached bool) *inbound.ParseRecipeResponse {
	return &inbound.ParseRecipeResponse{
		ID:          p.ID,
		Recipe:      inbound.NewRecipeDTO(p.Recipe),
		Graph:       p.Graph,
		Annotations: p.Annotations,
		Diagnostics: p.Diagnostics,
		Provider:    p.Provider,
		Cached:      cached,
		ParsedAt:    p.ParsedAt,
	}
}
