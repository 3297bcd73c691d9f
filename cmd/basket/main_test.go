package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"basket/internal/config"
	"basket/internal/diet"
	"basket/internal/shopping"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	data := filepath.Join("..", "..", "data")
	return &config.Config{
		Catalog: config.CatalogConfig{
			ItemsPath:   filepath.Join(data, "items.json"),
			OptionsPath: filepath.Join(data, "options.json"),
		},
		Recipes: filepath.Join(data, "recipes.json"),
		Profile: filepath.Join(data, "profile.json"),
		Storage: config.StorageConfig{
			Backend: config.BackendFile,
			Dir:     t.TempDir(),
		},
		Namespace: "test",
		LogLevel:  "error",
	}
}

func runText(t *testing.T, cfg *config.Config, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := run(context.Background(), cfg, args, output{w: &buf}); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return buf.String()
}

func runJSON(t *testing.T, cfg *config.Config, v any, args ...string) {
	t.Helper()
	var buf bytes.Buffer
	if err := run(context.Background(), cfg, args, output{w: &buf, json: true}); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	if err := json.Unmarshal(buf.Bytes(), v); err != nil {
		t.Fatalf("decode %v output: %v\n%s", args, err, buf.String())
	}
}

func TestStatePersistsAcrossRuns(t *testing.T) {
	cfg := testConfig(t)

	out := runText(t, cfg, "add", "Chicken Stir Fry", "2")
	if !strings.Contains(out, "Chicken Stir Fry") || !strings.Contains(out, "2") {
		t.Fatalf("unexpected cart output:\n%s", out)
	}

	out = runText(t, cfg, "conflicts")
	if !strings.Contains(out, "only checked in preference mode") {
		t.Fatalf("default mode should not report conflicts:\n%s", out)
	}

	runText(t, cfg, "mode", "preference")
	var conflicts []diet.Conflict
	runJSON(t, cfg, &conflicts, "conflicts")
	found := map[string]diet.ConflictType{}
	for _, c := range conflicts {
		found[c.IngredientID] = c.Type
	}
	if found["ing_chicken_breast"] != diet.VegetarianConflict || found["ing_soy_sauce"] != diet.GlutenConflict {
		t.Fatalf("unexpected conflicts %+v", conflicts)
	}

	runText(t, cfg, "sub", "ing_chicken_breast", "ing_tofu")
	runText(t, cfg, "zero", "ing_soy_sauce")

	var doc struct {
		Entries []shopping.Entry `json:"entries"`
		Totals  shopping.Totals  `json:"totals"`
	}
	runJSON(t, cfg, &doc, "list")
	byKey := map[string]shopping.Entry{}
	for _, e := range doc.Entries {
		byKey[e.Key()] = e
	}
	if e := byKey["ing_chicken_breast"]; e.IngredientID != "ing_tofu" || !e.Substituted {
		t.Fatalf("substitution not persisted: %+v", e)
	}
	if e := byKey["ing_soy_sauce"]; e.Quantity != 0 {
		t.Fatalf("zero not persisted: %+v", e)
	}
	if doc.Totals.Entries != len(doc.Entries) {
		t.Fatalf("totals out of date: %+v", doc.Totals)
	}

	runText(t, cfg, "toggle")
	runJSON(t, cfg, &doc, "list")
	for _, e := range doc.Entries {
		if e.Substituted {
			t.Fatalf("default mode should show originals, got %+v", e)
		}
	}

	out = runText(t, cfg, "namespaces")
	if strings.TrimSpace(out) != "test" {
		t.Fatalf("unexpected namespaces %q", out)
	}

	runText(t, cfg, "reset")
	out = runText(t, cfg, "cart")
	if !strings.Contains(out, "cart is empty") {
		t.Fatalf("reset kept the cart:\n%s", out)
	}
}

func TestSchema(t *testing.T) {
	out := runText(t, testConfig(t), "schema", "options")
	if !strings.Contains(out, "optionId") {
		t.Fatalf("schema missing fields:\n%s", out)
	}
}

func TestItems(t *testing.T) {
	out := runText(t, testConfig(t), "items")
	if !strings.Contains(out, "ing_tofu") || !strings.Contains(out, "ID") {
		t.Fatalf("items missing from output:\n%s", out)
	}
}

func TestUsageErrors(t *testing.T) {
	cfg := testConfig(t)
	for _, args := range [][]string{
		{"bogus"},
		{"servings", "Pancakes"},
		{"servings", "Pancakes", "lots"},
		{"mode", "strict"},
		{"schema"},
	} {
		err := run(context.Background(), cfg, args, output{w: &bytes.Buffer{}})
		if !errors.Is(err, errUsage) {
			t.Errorf("%v: expected usage error, got %v", args, err)
		}
	}
}
