// Package prompt holds the prompts shared by every LLM adapter and the
// decoding of their JSON answers into domain values.
package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alchemorsel/mealplanner/internal/domain/recipe"
	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
)

// ErrNoJSON is returned when a model answer contains no JSON object
var ErrNoJSON = errors.New("no valid JSON found in response")

const generationSystem = `You are an expert chef and recipe developer. Create detailed, practical recipes that are easy to follow.

CRITICAL: Respond with ONLY a valid JSON object in this exact format:
{
  "title": "Recipe Name",
  "description": "Brief description of the dish",
  "cuisine": "cuisine_type",
  "prep_time_minutes": 15,
  "cook_time_minutes": 25,
  "servings": 4,
  "ingredients": [
    {"name": "ingredient name", "amount": 1.5, "unit": "cups"}
  ],
  "instructions": [
    "Detailed instruction",
    "Next step"
  ],
  "tags": ["tag1", "tag2"]
}

Requirements:`

const annotationSystem = `You are a kitchen planner. Split a recipe's instructions into parallel preparation tracks so that a cook can work on several components at once.

CRITICAL: Respond with ONLY a valid JSON object in this exact format:
{
  "artifacts": [
    {"id": "sauce", "title": "Tomato sauce", "emoji": "🍅"}
  ],
  "steps": [
    {"step_id": "s1", "number": 1, "instruction": "Dice the onions", "role": "simple", "track_id": "sauce", "duration_minutes": 5},
    {"step_id": "s7", "number": 7, "instruction": "Toss the pasta with the sauce", "role": "join", "depends_on": ["pasta", "sauce"]}
  ]
}

Rules:
- Artifact ids are short lowercase slugs and must be unique.
- Emit one step per instruction, in the original order; "number" is the 1-based instruction index.
- A "simple" step belongs to exactly one artifact via "track_id".
- A "join" step combines two or more artifacts listed in "depends_on".
- "duration_minutes" is optional and only set when the instruction states or clearly implies a time.

Remember: Respond with ONLY valid JSON. No additional text, explanations, or formatting.`

// GenerationSystem returns the system prompt for recipe generation
func GenerationSystem(req outbound.GenerationRequest) string {
	var b strings.Builder
	b.WriteString(generationSystem)
	if len(req.Dietary) > 0 {
		fmt.Fprintf(&b, "\n- Dietary restrictions: %s", strings.Join(req.Dietary, ", "))
	}
	if req.Cuisine != "" {
		fmt.Fprintf(&b, "\n- Cuisine style: %s", req.Cuisine)
	}
	b.WriteString("\n- Write each instruction as a single action.")
	b.WriteString("\n\nRemember: Respond with ONLY valid JSON. No additional text, explanations, or formatting.")
	return b.String()
}

// GenerationUser returns the user prompt for recipe generation
func GenerationUser(req outbound.GenerationRequest) string {
	p := fmt.Sprintf("Create a recipe for: %s", req.Prompt)
	if req.Variation > 0 {
		p += fmt.Sprintf("\nThis is alternative #%d; make it clearly different from a standard take.", req.Variation+1)
	}
	return p
}

// AnnotationSystem returns the system prompt for recipe annotation
func AnnotationSystem() string {
	return annotationSystem
}

// AnnotationUser renders the recipe the annotator should split
func AnnotationUser(r *recipe.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recipe: %s\n", r.Title())
	if len(r.Ingredients()) > 0 {
		b.WriteString("Ingredients:\n")
		for _, ing := range r.Ingredients() {
			fmt.Fprintf(&b, "- %s\n", ing.String())
		}
	}
	b.WriteString("Instructions:\n")
	for i, line := range r.Instructions() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}
	return b.String()
}

// EmbeddingText is the text embedded for semantic search
func EmbeddingText(r *recipe.Recipe) string {
	parts := []string{r.Title(), r.Description(), r.Cuisine()}
	for _, ing := range r.Ingredients() {
		parts = append(parts, ing.Name)
	}
	parts = append(parts, r.Tags()...)
	return strings.Join(nonEmpty(parts), " ")
}

func nonEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// ExtractJSON returns the outermost JSON object embedded in a model answer.
// Models sometimes wrap the object in prose or code fences.
func ExtractJSON(response string) (string, error) {
	response = strings.TrimSpace(response)
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return "", ErrNoJSON
	}
	return response[start : end+1], nil
}

type generatedRecipe struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Cuisine     string `json:"cuisine"`
	PrepTime    int    `json:"prep_time_minutes"`
	CookTime    int    `json:"cook_time_minutes"`
	Servings    int    `json:"servings"`
	Ingredients []struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
		Unit   string  `json:"unit"`
	} `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Tags         []string `json:"tags"`
}

// ParseRecipe decodes a generation answer into a recipe draft
func ParseRecipe(response string) (recipe.Draft, error) {
	raw, err := ExtractJSON(response)
	if err != nil {
		return recipe.Draft{}, err
	}

	var g generatedRecipe
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return recipe.Draft{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	ingredients := make([]recipe.Ingredient, 0, len(g.Ingredients))
	for _, ing := range g.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			continue
		}
		amount := ing.Amount
		if amount < 0 {
			amount = 0
		}
		ingredients = append(ingredients, recipe.Ingredient{Name: ing.Name, Quantity: amount, Unit: ing.Unit})
	}

	instructions := make([]string, 0, len(g.Instructions))
	for _, line := range g.Instructions {
		instructions = append(instructions, recipe.SplitInstructions(line)...)
	}

	return recipe.Draft{
		Title:        g.Title,
		Description:  g.Description,
		Cuisine:      g.Cuisine,
		Ingredients:  ingredients,
		Instructions: instructions,
		Tags:         g.Tags,
		Servings:     max(g.Servings, 0),
		PrepMinutes:  max(g.PrepTime, 0),
		CookMinutes:  max(g.CookTime, 0),
		Source:       recipe.SourceGenerated,
	}, nil
}

// ParseAnnotations decodes an annotation answer. The document is returned as
// the model produced it; referential checks belong to the graph builder.
func ParseAnnotations(response string) (stepgraph.Document, error) {
	raw, err := ExtractJSON(response)
	if err != nil {
		return stepgraph.Document{}, err
	}

	var doc stepgraph.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return stepgraph.Document{}, fmt.Errorf("failed to parse annotation JSON: %w", err)
	}
	if len(doc.Steps) == 0 {
		return stepgraph.Document{}, errors.New("annotation contains no steps")
	}
	return doc, nil
}
