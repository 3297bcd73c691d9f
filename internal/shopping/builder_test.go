package shopping

import (
	"context"
	"testing"

	"basket/internal/catalog"
	"basket/internal/quantity"
	"basket/internal/recipes"
)

func testCatalog() *catalog.Store {
	return catalog.NewStore(
		[]catalog.Item{
			{IngredientID: "ing_tofu", Name: "Tofu", Unit: "oz", Aisle: "Refrigerated", ImageURL: "tofu.png", DefaultOptionID: "opt_tofu"},
			{IngredientID: "ing_egg", Name: "Egg", Unit: "each", Aisle: "Dairy"},
			{IngredientID: "ing_rice", Name: "Brown Rice", Unit: "cup", DefaultQuantity: 4, Aisle: "Grains"},
			{IngredientID: "ing_milk", Name: "Milk", Unit: "cup", Aisle: "Dairy"},
		},
		[]catalog.Option{
			{IngredientID: "ing_tofu", OptionID: "opt_tofu", DisplayName: "Extra Firm Tofu", Size: "14 oz", UnitPrice: 2.5, ImageURL: "firm.png"},
			{IngredientID: "ing_egg", OptionID: "opt_egg", DisplayName: "Large Eggs", Size: "12", UnitPrice: 3.5},
			{IngredientID: "ing_milk", OptionID: "opt_milk", DisplayName: "Whole Milk", Size: "half gallon", UnitPrice: 4},
		},
	)
}

func TestBuilder_CatalogMatch(t *testing.T) {
	b := NewBuilder(testCatalog(), nil)
	e := b.Entry(context.Background(), Requirement{
		Name:    "tofu",
		Amounts: []quantity.Quantity{{OK: true, Value: 30, Unit: "Oz"}},
	})

	if e.IngredientID != "ing_tofu" || e.Name != "Tofu" || !e.Matched {
		t.Fatalf("unexpected identity %+v", e)
	}
	if e.Quantity != 3 {
		t.Fatalf("expected ceil(30/14)=3 packages, got %d", e.Quantity)
	}
	if e.UnitCheck != quantity.Match {
		t.Fatalf("expected unit match, got %s", e.UnitCheck)
	}
	if e.SKUName != "Extra Firm Tofu" || e.SKUSpec != "14 oz" || e.UnitPrice != 2.5 {
		t.Fatalf("unexpected sku data %+v", e)
	}
	if e.Image != "firm.png" {
		t.Fatalf("expected catalog option image, got %q", e.Image)
	}
	if e.SubstitutionRatio != 1.0 || e.Substituted || e.OriginalIngredientID != "" {
		t.Fatalf("unexpected substitution defaults %+v", e)
	}
}

func TestBuilder_Fallback(t *testing.T) {
	b := NewBuilder(testCatalog(), nil)
	e := b.Entry(context.Background(), Requirement{
		Name:    "Smoked Paprika",
		Amounts: []quantity.Quantity{{OK: true, Value: 2, Unit: "tsp"}},
	})
	if e.Matched {
		t.Fatal("expected fallback entry")
	}
	if e.IngredientID != "smoked_paprika" || e.Unit != FallbackUnit || e.Aisle != FallbackAisle || e.UnitPrice != FallbackUnitPrice {
		t.Fatalf("unexpected fallback %+v", e)
	}
	if e.Quantity != 1 {
		t.Fatalf("expected fallback to buy one, got %d", e.Quantity)
	}
}

func TestBuilder_PurchaseRules(t *testing.T) {
	b := NewBuilder(testCatalog(), nil)
	ctx := context.Background()

	// unit-less need against unit-less package spec
	e := b.Entry(ctx, Requirement{Name: "Egg", Amounts: []quantity.Quantity{{OK: true, Value: 13}}})
	if e.Quantity != 2 || e.UnitCheck != quantity.Unknown {
		t.Fatalf("expected 2 dozen with unknown unit check, got %d %s", e.Quantity, e.UnitCheck)
	}

	// unparsable package spec buys one
	e = b.Entry(ctx, Requirement{Name: "Milk", Amounts: []quantity.Quantity{{OK: true, Value: 9, Unit: "cup"}}})
	if e.Quantity != 1 {
		t.Fatalf("expected unparsable spec to buy one, got %d", e.Quantity)
	}

	// mismatched units buy one and are flagged
	e = b.Entry(ctx, Requirement{Name: "Tofu", Amounts: []quantity.Quantity{{OK: true, Value: 900, Unit: "g"}}})
	if e.Quantity != 1 || e.UnitCheck != quantity.Mismatch {
		t.Fatalf("expected flagged mismatch buying one, got %d %s", e.Quantity, e.UnitCheck)
	}

	// item without options derives its spec from defaultQuantity
	e = b.Entry(ctx, Requirement{Name: "Brown Rice", Amounts: []quantity.Quantity{{OK: true, Value: 6, Unit: "cup"}}})
	if e.SKUSpec != "4 cup" || e.Quantity != 2 || e.UnitPrice != FallbackUnitPrice {
		t.Fatalf("unexpected option-less entry %+v", e)
	}

	// fallback-only requirement counts occurrences
	e = b.Entry(ctx, Requirement{Name: "Egg", FallbackCount: 3, FallbackBase: "a few"})
	if e.NeededValue != 3 || e.NeededText != "3 × a few" || e.Quantity != 1 {
		t.Fatalf("unexpected fallback-only entry %+v", e)
	}
}

func TestBuilder_MixedUnitsAddPackages(t *testing.T) {
	b := NewBuilder(testCatalog(), nil)
	e := b.Entry(context.Background(), Requirement{
		Name: "Tofu",
		Amounts: []quantity.Quantity{
			{OK: true, Value: 20, Unit: "oz"},
			{OK: true, Value: 200, Unit: "g"},
		},
	})
	if len(e.ExtraNeeded) != 1 {
		t.Fatalf("expected extra amount kept, got %+v", e.ExtraNeeded)
	}
	if e.Quantity != 3 {
		t.Fatalf("expected 2 packages for oz plus 1 for g, got %d", e.Quantity)
	}
	if e.NeededText != "20 oz + 200 g" {
		t.Fatalf("unexpected needed text %q", e.NeededText)
	}
}

func TestBuilder_RecipeImageWins(t *testing.T) {
	book := recipes.NewBook(recipes.Recipe{
		Title:       "Bowl",
		Ingredients: []recipes.Ingredient{{Name: "Tofu", Quantity: "1 oz", Image: "recipe-tofu.png"}},
	})
	b := NewBuilder(testCatalog(), book)
	e := b.Entry(context.Background(), Requirement{Name: "Tofu", Amounts: []quantity.Quantity{{OK: true, Value: 1, Unit: "oz"}}})
	if e.Image != "recipe-tofu.png" {
		t.Fatalf("expected recipe image, got %q", e.Image)
	}

	e = b.Entry(context.Background(), Requirement{Name: "Kale", Amounts: []quantity.Quantity{{OK: true, Value: 1}}})
	if e.Image != "" {
		t.Fatalf("expected empty image, got %q", e.Image)
	}
}

func TestPurchaseCount_EdgeCases(t *testing.T) {
	if n, _ := PurchaseCount("5", nil); n != 1 {
		t.Fatalf("expected 1 without needs, got %d", n)
	}
	if n, _ := PurchaseCount("5", []quantity.Quantity{{OK: true, Value: 0}}); n != 1 {
		t.Fatalf("expected 1 for zero need, got %d", n)
	}
	if n, _ := PurchaseCount("0 oz", []quantity.Quantity{{OK: true, Value: 3, Unit: "oz"}}); n != 1 {
		t.Fatalf("expected 1 for zero package size, got %d", n)
	}
}

func TestSummarize(t *testing.T) {
	entries := []Entry{
		{Quantity: 2, UnitPrice: 1.115},
		{Quantity: 1, UnitPrice: 2.99},
		{Quantity: 0, UnitPrice: 10},
	}
	tot := Summarize(entries, recipes.Nutrition{Calories: 10})
	if tot.Entries != 3 || tot.Packages != 3 {
		t.Fatalf("unexpected counts %+v", tot)
	}
	if tot.Cost != 5.22 {
		t.Fatalf("expected cost 5.22, got %v", tot.Cost)
	}
	if tot.Nutrition.Calories != 10 {
		t.Fatalf("nutrition not carried: %+v", tot.Nutrition)
	}
}
