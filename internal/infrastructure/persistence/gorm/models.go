// Package gorm provides GORM model definitions and repositories
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeModel represents the GORM model for recipes
type RecipeModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Title       string    `gorm:"type:varchar(255);not null;index"`
	Description string    `gorm:"type:text"`
	Cuisine     string    `gorm:"type:varchar(50);index"`

	Ingredients  JSONField[[]IngredientJSON] `gorm:"type:json"`
	Instructions StringSlice                 `gorm:"type:json"`
	Tags         StringSlice                 `gorm:"type:json"`

	// Timing (stored in minutes)
	PrepTimeMinutes int `gorm:"column:prep_time_minutes;default:0"`
	CookTimeMinutes int `gorm:"column:cook_time_minutes;default:0"`
	Servings        int `gorm:"default:0"`

	Source      string `gorm:"type:varchar(20);default:'user';index"`
	ContentHash string `gorm:"type:char(64);index"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// IngredientJSON is the stored form of an ingredient
type IngredientJSON struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
}

// ParsedRecipeModel represents the GORM model for parse results. The graph
// is stored as built so reads never depend on builder changes.
type ParsedRecipeModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	RecipeID    uuid.UUID `gorm:"type:char(36);not null;index"`
	ContentHash string    `gorm:"type:char(64);not null;index"`
	Provider    string    `gorm:"type:varchar(50);not null"`

	Annotations JSONField[stepgraph.Document]     `gorm:"type:json"`
	Graph       JSONField[stepgraph.StepGraph]    `gorm:"type:json"`
	Diagnostics JSONField[[]stepgraph.Diagnostic] `gorm:"type:json"`

	TrackCount   int  `gorm:"default:0"`
	JoinCount    int  `gorm:"default:0"`
	WarningCount int  `gorm:"default:0"`
	Fallback     bool `gorm:"default:false"`

	ParsedAt time.Time `gorm:"index"`

	// Relationships
	Recipe RecipeModel `gorm:"foreignKey:RecipeID"`
}

// FavoriteModel represents the GORM model for favorites
type FavoriteModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_favorites_user_recipe"`
	RecipeID  uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_favorites_user_recipe"`
	Title     string    `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"index"`
}

// SwipeModel represents the GORM model for the swipe history
type SwipeModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(64);not null;index:idx_swipes_user_direction"`
	RecipeID  uuid.UUID `gorm:"type:char(36);not null;index"`
	Direction string    `gorm:"type:varchar(10);not null;index:idx_swipes_user_direction"`
	SwipedAt  time.Time
}

// ShoppingListModel represents the GORM model for shopping lists
type ShoppingListModel struct {
	ID        uuid.UUID                     `gorm:"type:char(36);primaryKey"`
	UserID    string                        `gorm:"type:varchar(64);not null;index"`
	RecipeID  uuid.UUID                     `gorm:"type:char(36);index"`
	Title     string                        `gorm:"type:varchar(255)"`
	Items     JSONField[[]ShoppingItemJSON] `gorm:"type:json"`
	CreatedAt time.Time                     `gorm:"index"`
	UpdatedAt time.Time
}

// ShoppingItemJSON is the stored form of a shopping item
type ShoppingItemJSON struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
	Checked  bool    `json:"checked"`
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	return string(b), err
}

// JSONField stores any JSON-serialisable value in a json column
type JSONField[T any] struct {
	Data T
}

// NewJSONField wraps v
func NewJSONField[T any](v T) JSONField[T] {
	return JSONField[T]{Data: v}
}

// Scan implements the sql.Scanner interface
func (j *JSONField[T]) Scan(value interface{}) error {
	if value == nil {
		var zero T
		j.Data = zero
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, &j.Data)
	case string:
		return json.Unmarshal([]byte(v), &j.Data)
	default:
		return fmt.Errorf("cannot scan %T into JSONField", value)
	}
}

// Value implements the driver.Valuer interface
func (j JSONField[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Data)
	return string(b), err
}

// BeforeCreate hook for RecipeModel
func (r *RecipeModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for SwipeModel
func (s *SwipeModel) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName methods for custom table names
func (RecipeModel) TableName() string {
	return "recipes"
}

func (ParsedRecipeModel) TableName() string {
	return "parsed_recipes"
}

func (FavoriteModel) TableName() string {
	return "favorites"
}

func (SwipeModel) TableName() string {
	return "swipes"
}

func (ShoppingListModel) TableName() string {
	return "shopping_lists"
}

// AllModels lists every model for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&RecipeModel{},
		&ParsedRecipeModel{},
		&FavoriteModel{},
		&SwipeModel{},
		&ShoppingListModel{},
	}
}
