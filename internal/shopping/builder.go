package shopping

import (
	"context"
	"log/slog"

	"basket/internal/catalog"
	"basket/internal/quantity"
)

// Used for ingredients the catalog doesn't carry.
const (
	FallbackUnitPrice = 2.99
	FallbackUnit      = "generic"
	FallbackAisle     = "General"
)

// Catalog is the product lookup the builder and resolver depend on.
type Catalog interface {
	Lookup(id string) (catalog.Match, bool)
	Find(name string) (catalog.Match, bool)
}

// ImageSource supplies recipe-provided ingredient images.
type ImageSource interface {
	IngredientImage(name string) string
}

type Builder struct {
	catalog Catalog
	images  ImageSource
}

// NewBuilder returns a builder; images may be nil.
func NewBuilder(c Catalog, images ImageSource) *Builder {
	return &Builder{catalog: c, images: images}
}

// Build maps every requirement onto a list entry, keeping requirement order.
func (b *Builder) Build(ctx context.Context, reqs []Requirement) []Entry {
	entries := make([]Entry, 0, len(reqs))
	for _, r := range reqs {
		entries = append(entries, b.Entry(ctx, r))
	}
	return entries
}

// Entry builds a single list entry for a requirement.
func (b *Builder) Entry(ctx context.Context, r Requirement) Entry {
	e := Entry{
		NeededText:        r.Value(),
		SubstitutionRatio: 1.0,
	}
	if r.Numeric() {
		e.NeededValue = r.Amounts[0].Value
		e.NeededUnit = r.Amounts[0].Unit
		if len(r.Amounts) > 1 {
			e.ExtraNeeded = append([]quantity.Quantity(nil), r.Amounts[1:]...)
		}
	} else {
		// each unparsable serving counts as one unit
		e.NeededValue = float64(r.FallbackCount)
	}

	var image string
	if b.images != nil {
		image = b.images.IngredientImage(r.Name)
	}

	if m, ok := b.catalog.Find(r.Name); ok {
		ApplyMatch(&e, m)
	} else {
		slog.DebugContext(ctx, "no catalog match, using fallback", "ingredient", r.Name)
		ApplyFallback(&e, r.Name)
	}
	if image != "" {
		e.Image = image
	}

	e.Recount()
	if e.UnitCheck == quantity.Mismatch {
		slog.WarnContext(ctx, "recipe unit does not match package unit",
			"ingredient", e.Name,
			"neededUnit", e.NeededUnit,
			"packageSpec", e.SKUSpec,
		)
	}
	return e
}

// ApplyMatch copies catalog identity, pricing and SKU data onto e.
func ApplyMatch(e *Entry, m catalog.Match) {
	e.IngredientID = m.Item.IngredientID
	e.Name = m.Item.Name
	e.Unit = m.Item.Unit
	e.Aisle = m.Item.Aisle
	e.Matched = true
	e.Image = m.Image()
	if m.HasOption {
		e.UnitPrice = m.Price()
		e.SKUName = m.Option.DisplayName
		e.SKUSpec = m.Option.Size
		e.SKUImage = m.Option.ImageURL
		return
	}
	e.UnitPrice = FallbackUnitPrice
	e.SKUName = m.Item.Name
	e.SKUSpec = ""
	if m.Item.DefaultQuantity > 0 {
		e.SKUSpec = quantity.Quantity{OK: true, Value: m.Item.DefaultQuantity, Unit: m.Item.Unit}.String()
	}
	e.SKUImage = m.Item.ImageURL
}

// ApplyFallback gives e a synthesized identity derived from name.
func ApplyFallback(e *Entry, name string) {
	e.IngredientID = catalog.FallbackID(name)
	e.Name = name
	e.Unit = FallbackUnit
	e.Aisle = FallbackAisle
	e.UnitPrice = FallbackUnitPrice
	e.Matched = false
	e.SKUName = name
	e.SKUSpec = ""
	e.SKUImage = ""
	e.Image = ""
}

// Recount recomputes the purchase quantity from the SKU spec and needed amounts.
func (e *Entry) Recount() {
	e.Quantity, e.UnitCheck = PurchaseCount(e.SKUSpec, e.Needed())
}
