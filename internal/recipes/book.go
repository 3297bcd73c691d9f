// Package recipes holds the recipe book and the cart of recipes the user plans
// to cook.
package recipes

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"` // per serving, "<number> [unit]" or free text
	Image    string `json:"image,omitempty"`
}

// Nutrition is per serving unless it came out of TotalNutrition.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (n Nutrition) Add(o Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
	}
}

func (n Nutrition) Scale(f float64) Nutrition {
	return Nutrition{
		Calories: n.Calories * f,
		Protein:  n.Protein * f,
		Carbs:    n.Carbs * f,
		Fat:      n.Fat * f,
	}
}

type Recipe struct {
	Title       string       `json:"title" jsonschema:"required"`
	Ingredients []Ingredient `json:"ingredients"`
	Nutrition   Nutrition    `json:"nutrition"`
}

type bookDocument struct {
	Recipes []Recipe `json:"recipes"`
}

// Book is a read-only recipe catalog keyed by title.
type Book struct {
	order   []string
	recipes map[string]Recipe
	images  map[string]string
}

// NewBook indexes recipes by title; later duplicates replace earlier ones.
func NewBook(recipes ...Recipe) *Book {
	b := &Book{
		recipes: make(map[string]Recipe, len(recipes)),
		images:  make(map[string]string),
	}
	for _, r := range recipes {
		if _, exists := b.recipes[r.Title]; !exists {
			b.order = append(b.order, r.Title)
		}
		b.recipes[r.Title] = r
		for _, ing := range r.Ingredients {
			key := imageKey(ing.Name)
			if ing.Image == "" || key == "" {
				continue
			}
			if _, ok := b.images[key]; !ok {
				b.images[key] = ing.Image
			}
		}
	}
	return b
}

// LoadBook reads {"recipes": [...]} or a bare array of recipes.
func LoadBook(r io.Reader) (*Book, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read recipe book: %w", err)
	}
	var doc bookDocument
	if err := json.Unmarshal(data, &doc); err == nil {
		return NewBook(doc.Recipes...), nil
	}
	var list []Recipe
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("unmarshal recipe book: %w", err)
	}
	return NewBook(list...), nil
}

func (b *Book) Recipe(title string) (Recipe, bool) {
	r, ok := b.recipes[title]
	return r, ok
}

// Titles returns recipe titles in load order.
func (b *Book) Titles() []string {
	return append([]string(nil), b.order...)
}

// IngredientImage is the first image any recipe gives for the ingredient.
func (b *Book) IngredientImage(name string) string {
	return b.images[imageKey(name)]
}

func imageKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
