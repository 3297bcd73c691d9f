// Package resolve applies and reverts user choices for conflicting shopping
// list entries.
package resolve

import (
	"errors"
	"fmt"

	"basket/internal/diet"
	"basket/internal/shopping"
	"basket/internal/substitutes"
)

var (
	ErrSubstituteNotFound = errors.New("substitute not in catalog")
	ErrOriginalNotFound   = errors.New("original ingredient unknown")
	ErrInvalidRatio       = errors.New("substitution ratio must be positive")
)

type Resolver struct {
	catalog shopping.Catalog
}

func New(c shopping.Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Apply swaps e for the candidate's catalog product and scales the needed
// amounts by ratio. On error e is left untouched.
func (r *Resolver) Apply(e *shopping.Entry, c substitutes.Candidate, ratio float64) error {
	if !(ratio > 0) {
		return fmt.Errorf("apply %q: %w", c.Name, ErrInvalidRatio)
	}
	m, ok := r.catalog.Lookup(c.ID)
	if !ok {
		return fmt.Errorf("apply %q (%s): %w", c.Name, c.ID, ErrSubstituteNotFound)
	}

	if e.OriginalIngredientID == "" {
		e.OriginalIngredientID = e.IngredientID
		e.OriginalName = e.Name
	} else if e.SubstitutionRatio > 0 {
		// back to the pre-substitution amount before scaling again
		e.ScaleNeeded(1 / e.SubstitutionRatio)
	}

	shopping.ApplyMatch(e, m)
	e.ScaleNeeded(ratio)
	e.Recount()
	e.Substituted = true
	e.SubstitutionRatio = ratio
	e.SubstituteName = m.Item.Name
	return nil
}

// Link marks e as already being the substitute for originalID without
// touching its product or amounts. Used when a rebuilt list contains the
// substitute itself.
func (r *Resolver) Link(e *shopping.Entry, originalID, originalName string) {
	e.OriginalIngredientID = originalID
	e.OriginalName = originalName
	e.Substituted = true
	e.SubstitutionRatio = 1
	e.SubstituteName = e.Name
}

// Revert restores the original product. Entries that were never substituted
// are left alone.
func (r *Resolver) Revert(e *shopping.Entry) error {
	if e.OriginalIngredientID == "" {
		return nil
	}
	m, ok := r.catalog.Lookup(e.OriginalIngredientID)
	if !ok && e.OriginalName == "" {
		return fmt.Errorf("revert %s: %w", e.OriginalIngredientID, ErrOriginalNotFound)
	}

	ratio := e.SubstitutionRatio
	if ok {
		shopping.ApplyMatch(e, m)
	} else {
		shopping.ApplyFallback(e, e.OriginalName)
	}
	if ratio > 0 {
		e.ScaleNeeded(1 / ratio)
	}
	e.Recount()
	e.OriginalIngredientID = ""
	e.OriginalName = ""
	e.Substituted = false
	e.SubstitutionRatio = 1
	e.SubstituteName = ""
	return nil
}

// SetToZero drops e from the purchase and marks c resolved. c may be nil.
func (r *Resolver) SetToZero(e *shopping.Entry, c *diet.Conflict) {
	e.Quantity = 0
	if c != nil {
		c.Resolved = true
	}
}
