// Package shopping turns a recipe cart into a priced shopping list.
package shopping

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"basket/internal/quantity"
	"basket/internal/recipes"
)

// aggregateTolerance is looser than quantity.IntegerTolerance because sums of
// many scaled amounts drift further from whole numbers.
const aggregateTolerance = 1e-6

// Requirement is the total amount of one ingredient the cart needs.
type Requirement struct {
	Name string
	// Amounts holds one numeric total per unit, in the order units were first seen.
	Amounts []quantity.Quantity
	// FallbackCount counts servings whose quantity didn't parse.
	FallbackCount int
	// FallbackBase is the first non-empty unparsable quantity string.
	FallbackBase string
}

// Numeric reports whether any quantity for this ingredient parsed.
func (r Requirement) Numeric() bool {
	return len(r.Amounts) > 0
}

// Value renders the requirement: "4 Oz", "2 cup + 100 g", "3 × a pinch",
// "2 cup (plus 1 × to taste)".
func (r Requirement) Value() string {
	fallback := ""
	if r.FallbackCount > 0 {
		fallback = fmt.Sprintf("%d", r.FallbackCount)
		if r.FallbackBase != "" {
			fallback = fmt.Sprintf("%d × %s", r.FallbackCount, r.FallbackBase)
		}
	}
	if !r.Numeric() {
		return fallback
	}

	parts := make([]string, 0, len(r.Amounts))
	for _, a := range r.Amounts {
		s := quantity.FormatValueWithin(a.Value, aggregateTolerance)
		if a.Unit != "" {
			s += " " + a.Unit
		}
		parts = append(parts, s)
	}
	out := strings.Join(parts, " + ")
	if fallback != "" {
		out += " (plus " + fallback + ")"
	}
	return out
}

// RecipeSource is the read side of the recipe catalog the aggregator needs.
type RecipeSource interface {
	Recipe(title string) (recipes.Recipe, bool)
}

type accumulator struct {
	req     Requirement
	unitIdx map[string]int
}

// Aggregate multiplies every recipe ingredient in the cart by its servings and
// merges them per ingredient name. Names merge case-insensitively and keep the
// first spelling seen; output follows first appearance in cart order.
func Aggregate(ctx context.Context, cart *recipes.Cart, book RecipeSource) []Requirement {
	var order []string
	byName := make(map[string]*accumulator)

	for _, ce := range cart.Entries() {
		r, ok := book.Recipe(ce.Title)
		if !ok {
			slog.WarnContext(ctx, "recipe in cart not found in book", "title", ce.Title)
			continue
		}
		for _, ing := range r.Ingredients {
			name := strings.TrimSpace(ing.Name)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			acc, seen := byName[key]
			if !seen {
				acc = &accumulator{req: Requirement{Name: name}, unitIdx: make(map[string]int)}
				byName[key] = acc
				order = append(order, key)
			}

			q := quantity.Parse(ing.Quantity)
			if !q.OK {
				acc.req.FallbackCount += ce.Servings
				if acc.req.FallbackBase == "" {
					acc.req.FallbackBase = strings.TrimSpace(ing.Quantity)
				}
				continue
			}
			unitKey := strings.ToLower(q.Unit)
			idx, ok := acc.unitIdx[unitKey]
			if !ok {
				idx = len(acc.req.Amounts)
				acc.unitIdx[unitKey] = idx
				acc.req.Amounts = append(acc.req.Amounts, quantity.Quantity{OK: true, Unit: q.Unit})
			}
			acc.req.Amounts[idx].Value += q.Value * float64(ce.Servings)
		}
	}

	out := make([]Requirement, 0, len(order))
	for _, key := range order {
		out = append(out, byName[key].req)
	}
	return out
}
