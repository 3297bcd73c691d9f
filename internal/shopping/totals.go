package shopping

import (
	"math"

	"github.com/samber/lo"

	"basket/internal/recipes"
)

type Totals struct {
	Entries   int               `json:"entries"`
	Packages  int               `json:"packages"`
	Cost      float64           `json:"cost"`
	Nutrition recipes.Nutrition `json:"nutrition"`
}

// Summarize totals a list. Cost is rounded to cents.
func Summarize(entries []Entry, nutrition recipes.Nutrition) Totals {
	cost := lo.SumBy(entries, func(e Entry) float64 { return e.Subtotal() })
	return Totals{
		Entries:   len(entries),
		Packages:  lo.SumBy(entries, func(e Entry) int { return e.Quantity }),
		Cost:      math.Round(cost*100) / 100,
		Nutrition: nutrition,
	}
}
