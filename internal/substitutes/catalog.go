// Package substitutes maps an ingredient that violates a diet to replacement
// candidates.
//
// The tables in seed.go are written against ingredient display names because
// that is how they are curated. Compile resolves those names to ingredient ids
// once, and every runtime lookup goes through the id.
package substitutes

import (
	"slices"

	"github.com/samber/lo"
)

// Kind selects a dietary table.
type Kind string

const (
	Vegan      Kind = "vegan"
	Vegetarian Kind = "vegetarian"
	GlutenFree Kind = "gluten_free"
)

// Candidate is one possible replacement. QuantityAdjustment scales the
// recipe-needed amount; ID is the replacement's catalog ingredient id.
type Candidate struct {
	Name               string  `json:"name"`
	ID                 string  `json:"id"`
	Note               string  `json:"note,omitempty"`
	QuantityAdjustment float64 `json:"quantityAdjustment"`
	Image              string  `json:"image,omitempty"`
}

// Ratio is QuantityAdjustment with the unset value read as 1.
func (c Candidate) Ratio() float64 {
	if c.QuantityAdjustment <= 0 {
		return 1.0
	}
	return c.QuantityAdjustment
}

// Table maps an ingredient display name to its candidates.
type Table map[string][]Candidate

// Seed is the curated, name-keyed data.
type Seed struct {
	Vegan      Table
	Vegetarian Table
	GlutenFree Table
	Allergen   map[string]Table
}

// Resolver turns an ingredient display name into its stable id.
type Resolver func(name string) string

// Catalog is the compiled, id-keyed lookup. Read only after Compile.
type Catalog struct {
	byKind     map[Kind]map[string][]Candidate
	byAllergen map[string]map[string][]Candidate
}

// Compile keys every seed table by ingredient id and fills in candidate ids
// left empty by the seed. When two names resolve to the same id the first
// name, in sorted order, wins.
func Compile(seed Seed, resolve Resolver) *Catalog {
	c := &Catalog{
		byKind: map[Kind]map[string][]Candidate{
			Vegan:      compileTable(seed.Vegan, resolve),
			Vegetarian: compileTable(seed.Vegetarian, resolve),
			GlutenFree: compileTable(seed.GlutenFree, resolve),
		},
		byAllergen: make(map[string]map[string][]Candidate, len(seed.Allergen)),
	}
	for allergen, table := range seed.Allergen {
		c.byAllergen[allergen] = compileTable(table, resolve)
	}
	return c
}

func compileTable(t Table, resolve Resolver) map[string][]Candidate {
	out := make(map[string][]Candidate, len(t))
	for _, name := range sortedKeys(t) {
		id := resolve(name)
		if _, ok := out[id]; ok {
			continue
		}
		cands := append([]Candidate(nil), t[name]...)
		for i := range cands {
			if cands[i].ID == "" {
				cands[i].ID = resolve(cands[i].Name)
			}
		}
		out[id] = cands
	}
	return out
}

// Lookup returns candidates for an ingredient under a diet. Vegetarian falls
// back to the vegan table since every non-vegetarian item is also non-vegan.
func (c *Catalog) Lookup(kind Kind, ingredientID string) []Candidate {
	if got := c.byKind[kind][ingredientID]; len(got) > 0 {
		return clone(got)
	}
	if kind == Vegetarian {
		return clone(c.byKind[Vegan][ingredientID])
	}
	return nil
}

// ForAllergen returns candidates replacing an ingredient for one allergen.
func (c *Catalog) ForAllergen(allergen, ingredientID string) []Candidate {
	return clone(c.byAllergen[allergen][ingredientID])
}

// ForAllergens merges candidates for several allergens in order, keeping the
// first candidate seen for each id.
func (c *Catalog) ForAllergens(allergens []string, ingredientID string) []Candidate {
	var out []Candidate
	for _, a := range allergens {
		out = append(out, c.byAllergen[a][ingredientID]...)
	}
	return lo.UniqBy(out, func(c Candidate) string { return c.ID })
}

func clone(in []Candidate) []Candidate {
	if len(in) == 0 {
		return nil
	}
	return append([]Candidate(nil), in...)
}

func sortedKeys(t Table) []string {
	keys := lo.Keys(t)
	slices.Sort(keys)
	return keys
}
