package mock

import (
	"context"
	"math"
	"testing"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ProviderTestSuite struct {
	suite.Suite
	provider *Provider
	ctx      context.Context
}

func (s *ProviderTestSuite) SetupTest() {
	s.provider = NewProvider(0)
	s.ctx = context.Background()
}

func (s *ProviderTestSuite) TestGenerate_ProducesValidRecipe() {
	draft, err := s.provider.Generate(s.ctx, outbound.GenerationRequest{Prompt: "a quick pasta dinner", Cuisine: "italian"})
	s.Require().NoError(err)

	r, err := recipe.NewRecipe(draft)
	s.Require().NoError(err)
	s.Equal("Italian Classic Chicken Pasta", r.Title())
	s.Equal(recipe.SourceGenerated, r.Source())
}

func (s *ProviderTestSuite) TestGenerate_VariationsDiffer() {
	a, err := s.provider.Generate(s.ctx, outbound.GenerationRequest{Prompt: "dinner", Variation: 0})
	s.Require().NoError(err)
	b, err := s.provider.Generate(s.ctx, outbound.GenerationRequest{Prompt: "dinner", Variation: 1})
	s.Require().NoError(err)

	s.NotEqual(a.Title, b.Title)
}

func (s *ProviderTestSuite) TestGenerate_PlantBased() {
	draft, err := s.provider.Generate(s.ctx, outbound.GenerationRequest{Prompt: "beef curry", Dietary: []string{"vegan"}})
	s.Require().NoError(err)
	s.Contains(draft.Title, "Tofu")
	s.Contains(draft.Title, "Rice")
}

func (s *ProviderTestSuite) TestAnnotate_GeneratedRecipeHasParallelTracks() {
	draft, err := s.provider.Generate(s.ctx, outbound.GenerationRequest{Prompt: "pasta"})
	s.Require().NoError(err)
	r, err := recipe.NewRecipe(draft)
	s.Require().NoError(err)

	doc, err := s.provider.Annotate(s.ctx, r)
	s.Require().NoError(err)

	graph := doc.Build(stepgraph.Options{}).Graph
	s.Len(graph.Tracks, 4)
	s.Require().Len(graph.Joins, 1)
	s.ElementsMatch([]string{"sauce", "pasta", "protein"}, graph.Joins[0].DependsOn)
	s.Empty(graph.Warnings)

	pasta := graph.Tracks[1]
	s.Equal("pasta", pasta.TrackID)
	s.Require().NotNil(pasta.Steps[0].DurationMinutes)
	s.Equal(10, *pasta.Steps[0].DurationMinutes)
}

func (s *ProviderTestSuite) TestAnnotate_UnmatchedStepsUsePrepTrack() {
	r, err := recipe.NewRecipe(recipe.Draft{Title: "Toast", Instructions: []string{"Slice bread", "Toast for 2-3 minutes"}})
	s.Require().NoError(err)

	doc, err := s.provider.Annotate(s.ctx, r)
	s.Require().NoError(err)

	s.Require().Len(doc.Artifacts, 1)
	s.Equal("prep", doc.Artifacts[0].ID)
	s.Require().NotNil(doc.Steps[1].DurationMinutes)
	s.Equal(3, *doc.Steps[1].DurationMinutes)
}

func TestProviderTestSuite(t *testing.T) {
	suite.Run(t, new(ProviderTestSuite))
}

func TestEmbed(t *testing.T) {
	p := NewProvider(32)

	a, err := p.Embed(context.Background(), "Tomato basil pasta")
	require.NoError(t, err)
	b, err := p.Embed(context.Background(), "tomato, basil & PASTA")
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.Equal(t, a, b)

	var norm float64
	for _, v := range a {
		norm += float64(v * v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)

	empty, err := p.Embed(context.Background(), "   ")
	require.NoError(t, err)
	assert.Len(t, empty, 32)
}

func TestDuration(t *testing.T) {
	cases := map[string]int{
		"Bake for 25 minutes":     25,
		"Rest 1 hour":             60,
		"Simmer 10-15 mins":       15,
		"Boil for 2 hrs, covered": 120,
	}
	for line, want := range cases {
		got := duration(line)
		require.NotNil(t, got, line)
		assert.Equal(t, want, *got, line)
	}
	assert.Nil(t, duration("Season to taste"))
}
