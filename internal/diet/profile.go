// Package diet models a user's dietary profile and finds shopping list entries
// that conflict with it.
package diet

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
)

type Allergen string

const (
	Nuts      Allergen = "nuts"
	Shellfish Allergen = "shellfish"
	Dairy     Allergen = "dairy"
	Soy       Allergen = "soy"
	Eggs      Allergen = "eggs"
)

// Allergens is the supported vocabulary.
var Allergens = []Allergen{Nuts, Shellfish, Dairy, Soy, Eggs}

// ParseAllergen accepts any casing of a known allergen.
func ParseAllergen(s string) (Allergen, error) {
	a := Allergen(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Allergens, a) {
		return "", fmt.Errorf("unknown allergen %q", s)
	}
	return a, nil
}

type Profile struct {
	Vegan      bool       `json:"vegan"`
	Vegetarian bool       `json:"vegetarian"`
	GlutenFree bool       `json:"glutenFree"`
	Allergens  []Allergen `json:"allergens"`
}

// Empty reports whether the profile restricts nothing.
func (p Profile) Empty() bool {
	return !p.Vegan && !p.Vegetarian && !p.GlutenFree && len(p.Allergens) == 0
}

// LoadProfile decodes a profile, normalizing allergen names and dropping
// duplicates. Unknown allergens are an error.
func LoadProfile(r io.Reader) (Profile, error) {
	var raw struct {
		Vegan      bool     `json:"vegan"`
		Vegetarian bool     `json:"vegetarian"`
		GlutenFree bool     `json:"glutenFree"`
		Allergens  []string `json:"allergens"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	p := Profile{Vegan: raw.Vegan, Vegetarian: raw.Vegetarian, GlutenFree: raw.GlutenFree}
	for _, s := range raw.Allergens {
		a, err := ParseAllergen(s)
		if err != nil {
			return Profile{}, err
		}
		if !slices.Contains(p.Allergens, a) {
			p.Allergens = append(p.Allergens, a)
		}
	}
	return p, nil
}
