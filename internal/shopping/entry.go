package shopping

import (
	"basket/internal/quantity"
)

// Entry is one line of the shopping list.
type Entry struct {
	IngredientID string  `json:"ingredientId"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	Quantity     int     `json:"quantity"` // packages to buy
	Aisle        string  `json:"aisle"`
	UnitPrice    float64 `json:"unitPrice"`
	SKUName      string  `json:"skuName"`
	SKUSpec      string  `json:"skuSpec"`
	SKUImage     string  `json:"skuImage"`
	Image        string  `json:"image"`
	Matched      bool    `json:"matched"`

	NeededValue float64                `json:"neededValue"`
	NeededUnit  string                 `json:"neededUnit"`
	NeededText  string                 `json:"neededText"`
	ExtraNeeded []quantity.Quantity    `json:"extraNeeded,omitempty"`
	UnitCheck   quantity.Compatibility `json:"unitCheck"`

	// Set on first substitution and kept until revert.
	OriginalIngredientID string  `json:"originalIngredientId,omitempty"`
	OriginalName         string  `json:"originalName,omitempty"`
	SubstitutionRatio    float64 `json:"substitutionRatio"`
	Substituted          bool    `json:"substituted"`
	SubstituteName       string  `json:"substituteName,omitempty"`
}

// Key identifies the entry across substitutions: the original ingredient id
// once substituted, the current one otherwise.
func (e Entry) Key() string {
	if e.OriginalIngredientID != "" {
		return e.OriginalIngredientID
	}
	return e.IngredientID
}

// Needed returns every amount the recipes call for, primary unit first.
func (e Entry) Needed() []quantity.Quantity {
	out := make([]quantity.Quantity, 0, 1+len(e.ExtraNeeded))
	out = append(out, quantity.Quantity{OK: true, Value: e.NeededValue, Unit: e.NeededUnit})
	return append(out, e.ExtraNeeded...)
}

// ScaleNeeded multiplies every needed amount by f.
func (e *Entry) ScaleNeeded(f float64) {
	e.NeededValue *= f
	for i := range e.ExtraNeeded {
		e.ExtraNeeded[i] = e.ExtraNeeded[i].Scale(f)
	}
}

func (e Entry) Subtotal() float64 {
	return float64(e.Quantity) * e.UnitPrice
}

// Clone copies the entry including its ExtraNeeded slice.
func (e Entry) Clone() Entry {
	if e.ExtraNeeded != nil {
		e.ExtraNeeded = append([]quantity.Quantity(nil), e.ExtraNeeded...)
	}
	return e
}

// CloneAll deep copies a list.
func CloneAll(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

// PurchaseCount works out how many packages described by spec cover the
// needed amounts. Unparsable specs, non-positive needs and mismatched units buy
// one package. The returned compatibility is the primary amount's.
func PurchaseCount(spec string, needed []quantity.Quantity) (int, quantity.Compatibility) {
	pkg := quantity.Parse(spec)
	if len(needed) == 0 {
		return 1, quantity.Unknown
	}
	primary := quantity.Compare(needed[0].Unit, pkg.Unit)
	if !pkg.OK {
		return 1, primary
	}

	total := 0
	positive := false
	for _, n := range needed {
		if n.Value <= 0 {
			continue
		}
		positive = true
		if !quantity.Compare(n.Unit, pkg.Unit).Compatible() {
			total++
			continue
		}
		total += quantity.PackageCount(n.Value, pkg.Value)
	}
	if !positive {
		return 1, primary
	}
	return total, primary
}
