package recipe

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Source tells where a recipe came from
type Source string

const (
	SourceUser      Source = "user"
	SourceGenerated Source = "generated"
)

// Ingredient is a single line of a recipe's ingredient list
type Ingredient struct {
	Name     string
	Quantity float64
	Unit     string
}

// Validate validates the ingredient
func (i Ingredient) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return errors.New("ingredient name is required")
	}
	if i.Quantity < 0 {
		return errors.New("ingredient quantity cannot be negative")
	}
	return nil
}

// String renders "2 cup flour" style text, omitting empty parts.
func (i Ingredient) String() string {
	parts := make([]string, 0, 3)
	if i.Quantity > 0 {
		parts = append(parts, strconv.FormatFloat(i.Quantity, 'f', -1, 64))
	}
	if i.Unit != "" {
		parts = append(parts, i.Unit)
	}
	parts = append(parts, i.Name)
	return strings.Join(parts, " ")
}

var stepPrefix = regexp.MustCompile(`^(?i:step\s*\d+\s*[.):-]?\s*|\d+\s*[.):-]\s*|[-*•]\s+)`)

// SplitInstructions turns free text into instruction lines. Blank lines are
// dropped and list markers such as "1.", "2)", "Step 3:" or "-" are stripped.
func SplitInstructions(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(stepPrefix.ReplaceAllString(line, ""))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
