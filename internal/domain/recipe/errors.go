package recipe

import "errors"

// Domain errors for recipe operations

var (
	// Entity validation errors
	ErrTitleTooShort       = errors.New("recipe title must be at least 3 characters")
	ErrTitleTooLong        = errors.New("recipe title must not exceed 200 characters")
	ErrDescriptionTooLong  = errors.New("recipe description must not exceed 2000 characters")
	ErrInvalidServings     = errors.New("servings cannot be negative")
	ErrInvalidDuration     = errors.New("prep and cook minutes cannot be negative")
	ErrNoInstructions      = errors.New("recipe must have at least one instruction")
	ErrTooManyInstructions = errors.New("recipe must not exceed 60 instructions")

	// Lookup errors
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrParsedNotFound = errors.New("parsed recipe not found")
)
