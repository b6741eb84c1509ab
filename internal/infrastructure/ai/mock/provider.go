// Package mock provides a deterministic, offline AI provider. It backs local
// development and tests, and serves as the fallback when a real provider fails.
package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
)

// DefaultDimensions is the embedding size used when none is configured
const DefaultDimensions = 64

var _ outbound.AIProvider = (*Provider)(nil)

// Provider implements outbound.AIProvider without any network access
type Provider struct {
	dimensions int
}

// NewProvider creates a mock provider producing vectors of the given size
func NewProvider(dimensions int) *Provider {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Provider{dimensions: dimensions}
}

// Name returns the provider name
func (p *Provider) Name() string { return "mock" }

// Ping always succeeds
func (p *Provider) Ping(context.Context) error { return nil }

var (
	bases    = []string{"pasta", "rice", "noodles"}
	proteins = []string{"chicken", "beef", "shrimp", "tofu", "fish"}
	styles   = []string{"Classic", "Rustic", "Spicy", "Herbed", "Smoky"}
)

// Generate builds a recipe from keyword matching on the prompt. Different
// variations of the same prompt yield different recipes.
func (p *Provider) Generate(ctx context.Context, req outbound.GenerationRequest) (recipe.Draft, error) {
	if err := ctx.Err(); err != nil {
		return recipe.Draft{}, err
	}

	text := strings.ToLower(req.Prompt)
	base := pick(text, bases, bases[0])
	if strings.Contains(text, "curry") || strings.Contains(text, "stir fry") {
		base = "rice"
	}

	protein := pick(text, proteins, proteins[req.Variation%len(proteins)])
	if isPlantBased(req.Dietary) {
		protein = "tofu"
	}

	title := fmt.Sprintf("%s %s %s", styles[req.Variation%len(styles)], capitalize(protein), capitalize(base))
	if req.Cuisine != "" {
		title = capitalize(req.Cuisine) + " " + title
	}

	description := fmt.Sprintf("A recipe inspired by your request: %s.", req.Prompt)
	if len(req.Dietary) > 0 {
		description += fmt.Sprintf(" This recipe is %s-friendly.", strings.Join(req.Dietary, " and "))
	}

	tags := append([]string{base, protein}, req.Dietary...)

	return recipe.Draft{
		Title:       title,
		Description: description,
		Cuisine:     req.Cuisine,
		Ingredients: []recipe.Ingredient{
			{Name: base, Quantity: 300, Unit: "g"},
			{Name: protein, Quantity: 400, Unit: "g"},
			{Name: "onion", Quantity: 1},
			{Name: "garlic", Quantity: 2, Unit: "cloves"},
			{Name: "crushed tomatoes", Quantity: 400, Unit: "g"},
			{Name: "olive oil", Quantity: 2, Unit: "tbsp"},
		},
		Instructions: []string{
			"Dice the onion and mince the garlic.",
			fmt.Sprintf("Cook the %s in salted water for 10 minutes, then drain.", base),
			fmt.Sprintf("Sear the %s in olive oil for 6 minutes until browned.", protein),
			"Simmer the sauce with the onion, garlic and crushed tomatoes for 12 minutes.",
			fmt.Sprintf("Combine the %s, %s and sauce, then serve.", base, protein),
		},
		Tags:        tags,
		Servings:    4,
		PrepMinutes: 10,
		CookMinutes: 25,
		Source:      recipe.SourceGenerated,
	}, nil
}

type component struct {
	artifact stepgraph.Artifact
	keywords []string
}

// catalogue order is the tie-break when a step mentions several components
var catalogue = []component{
	{stepgraph.Artifact{ID: "sauce", Title: "Sauce", Glyph: "🥫"}, []string{"sauce", "gravy", "glaze", "tomatoes"}},
	{stepgraph.Artifact{ID: "dressing", Title: "Dressing", Glyph: "🫙"}, []string{"dressing", "vinaigrette"}},
	{stepgraph.Artifact{ID: "dough", Title: "Dough", Glyph: "🥖"}, []string{"dough", "batter", "crust"}},
	{stepgraph.Artifact{ID: "pasta", Title: "Pasta", Glyph: "🍝"}, []string{"pasta", "noodle", "spaghetti"}},
	{stepgraph.Artifact{ID: "rice", Title: "Rice", Glyph: "🍚"}, []string{"rice", "risotto", "quinoa"}},
	{stepgraph.Artifact{ID: "protein", Title: "Protein", Glyph: "🍗"}, []string{"chicken", "beef", "pork", "fish", "salmon", "shrimp", "tofu", "meat"}},
	{stepgraph.Artifact{ID: "salad", Title: "Salad", Glyph: "🥗"}, []string{"salad", "lettuce", "greens"}},
	{stepgraph.Artifact{ID: "vegetables", Title: "Vegetables", Glyph: "🥦"}, []string{"onion", "garlic", "carrot", "pepper", "broccoli", "spinach", "vegetable"}},
}

var prepArtifact = stepgraph.Artifact{ID: "prep", Title: "Preparation", Glyph: "🔪"}

var joinVerbs = []string{"combine", "toss", "mix together", "fold", "assemble", "serve", "pour", "spoon", "top "}

var durationPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:-\s*(\d+)\s*)?(minutes?|mins?|hours?|hrs?)\b`)

// Annotate assigns every instruction to a component track by keyword and
// marks steps that bring two started components together as joins.
func (p *Provider) Annotate(ctx context.Context, r *recipe.Recipe) (stepgraph.Document, error) {
	if err := ctx.Err(); err != nil {
		return stepgraph.Document{}, err
	}

	var (
		artifacts []stepgraph.Artifact
		steps     []stepgraph.StepRecord
		started   = map[string]bool{}
		current   string
	)
	use := func(a stepgraph.Artifact) {
		if !started[a.ID] {
			started[a.ID] = true
			artifacts = append(artifacts, a)
		}
	}

	for i, line := range r.Instructions() {
		matches := mentions(line)
		rec := stepgraph.StepRecord{
			StepID:      fmt.Sprintf("s%d", i+1),
			Number:      i + 1,
			Instruction: line,
		}

		var deps []string
		for _, a := range matches {
			if started[a.ID] {
				deps = append(deps, a.ID)
			}
		}

		switch {
		case len(deps) >= 2 && hasJoinVerb(line):
			rec.Role = stepgraph.RoleJoin
			rec.DependsOn = deps
		case len(matches) > 0:
			use(matches[0])
			current = matches[0].ID
			rec.Role = stepgraph.RoleSimple
			rec.TrackID = current
		default:
			if current == "" {
				use(prepArtifact)
				current = prepArtifact.ID
			}
			rec.Role = stepgraph.RoleSimple
			rec.TrackID = current
		}
		rec.DurationMinutes = duration(line)
		steps = append(steps, rec)
	}

	return stepgraph.Document{Artifacts: artifacts, Steps: steps}, nil
}

// Embed hashes words into a fixed-size, L2-normalised vector
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, p.dimensions)
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[h.Sum32()%uint32(p.dimensions)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm == 0 {
		return vec, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

func mentions(line string) []stepgraph.Artifact {
	lower := strings.ToLower(line)
	var out []stepgraph.Artifact
	for _, c := range catalogue {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				out = append(out, c.artifact)
				break
			}
		}
	}
	return out
}

func hasJoinVerb(line string) bool {
	lower := strings.ToLower(line)
	for _, v := range joinVerbs {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return false
}

// duration returns the upper bound of the first time span in line
func duration(line string) *int {
	m := durationPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	n, _ := strconv.Atoi(m[1])
	if m[2] != "" {
		n, _ = strconv.Atoi(m[2])
	}
	if strings.HasPrefix(strings.ToLower(m[3]), "h") {
		n *= 60
	}
	return &n
}

func pick(text string, options []string, fallback string) string {
	for _, o := range options {
		if strings.Contains(text, strings.TrimSuffix(o, "s")) {
			return o
		}
	}
	return fallback
}

func isPlantBased(dietary []string) bool {
	for _, d := range dietary {
		switch strings.ToLower(d) {
		case "vegan", "vegetarian", "plant-based":
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
